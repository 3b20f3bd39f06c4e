package pdf

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// go-fitz expresses scale as DPI; 72 DPI is a 1:1 mapping from points.
const baseDPI = 72.0

// Document adapts a go-fitz document to the PageSource interface.
// A fitz handle is not safe for concurrent use, so all calls into it
// are serialized here; callers parallelize the encode stage instead.
type Document struct {
	mu  sync.Mutex
	doc *fitz.Document
}

// Open loads the PDF at path. Failing to open is the fatal
// source-unavailable case, as opposed to individual bad pages.
func Open(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.NumPage()
}

func (d *Document) PageSize(index int) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bounds, err := d.doc.Bound(index)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get bounds for page %d: %w", index, err)
	}
	return float64(bounds.Dx()), float64(bounds.Dy()), nil
}

func (d *Document) RenderPage(ctx context.Context, index int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := d.doc.ImageDPI(index, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize page %d: %w", index, err)
	}
	return img, nil
}

// Metadata returns the document info dictionary (title, author, ...).
// Used by the inspect tool, not by conversion.
func (d *Document) Metadata() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Metadata()
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}
