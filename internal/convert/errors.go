package convert

import "errors"

// Fatal error categories. Per-page render and encode failures are not
// errors at this level; they travel inside the job summary.
var (
	// ErrInvalidParameter means the job options are unusable; nothing
	// is attempted.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrSourceUnavailable means the PDF itself could not be opened,
	// as opposed to individual bad pages.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrArchiveWrite means the output archive could not be written
	// or finalized. The partial file is removed before this is
	// returned.
	ErrArchiveWrite = errors.New("archive write failed")
)
