package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/kpauljoseph/pdf2cbz/pkg/models"
)

// ErrOrderingViolation means the writer received a page out of
// sequence. The render pool guarantees ordering, so hitting this is an
// internal bug, not bad input.
var ErrOrderingViolation = errors.New("archive ordering violation")

// minPadWidth keeps entry names at least four digits, the common
// convention for comic archives.
const minPadWidth = 4

// Writer assembles rendered pages into a CBZ (zip) archive. Entry
// names are zero-padded page indices so that lexical order equals page
// order. Pages must arrive in strictly ascending index order, failures
// included; failed pages leave a gap in the entry names.
type Writer struct {
	file     *os.File
	zw       *zip.Writer
	path     string
	padWidth int
	next     int
	entries  int
	closed   bool
}

// NewWriter creates the archive file at path. The padding width is
// fixed up front from the page count so every entry name in the
// archive has the same width.
func NewWriter(path string, totalPages int) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %s: %w", path, err)
	}

	return &Writer{
		file:     file,
		zw:       zip.NewWriter(file),
		path:     path,
		padWidth: padWidth(totalPages),
	}, nil
}

// padWidth returns the entry name width for a page count: at least
// minPadWidth digits, wider once the count itself needs more.
func padWidth(totalPages int) int {
	width := len(strconv.Itoa(totalPages))
	if width < minPadWidth {
		width = minPadWidth
	}
	return width
}

// WriteNext appends one page outcome. Failed pages advance the
// sequence without producing an entry.
func (w *Writer) WriteNext(page models.RenderedPage) error {
	if page.PageIndex != w.next {
		return fmt.Errorf("%w: got page %d, expected page %d", ErrOrderingViolation, page.PageIndex, w.next)
	}
	w.next++

	if !page.Outcome.OK() {
		return nil
	}

	name := fmt.Sprintf("%0*d%s", w.padWidth, page.PageIndex, page.Format.Extension())

	// JPEG and PNG payloads are already compressed; Store avoids
	// deflating them a second time.
	entry, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("failed to add entry %s: %w", name, err)
	}
	if _, err := entry.Write(page.Data); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}

	w.entries++
	return nil
}

// EntryCount returns the number of entries written so far.
func (w *Writer) EntryCount() int {
	return w.entries
}

// Close finalizes the central directory and flushes the file. A
// failure here removes the partial file: the archive is either valid
// or absent, never half-written at the target path.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.zw.Close(); err != nil {
		w.file.Close()
		os.Remove(w.path)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.path)
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	return nil
}

// Abort discards the partial archive. Used on fatal errors and
// cancellation.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.zw.Close()
	w.file.Close()
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove partial archive: %w", err)
	}
	return nil
}
