package pdf

import (
	"context"
	"image"
)

// PageSource is the rendering capability the conversion pipeline
// consumes. Anything that can report page geometry and rasterize a
// page at a scale factor can drive a conversion; the tests use fakes.
type PageSource interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageSize returns the native page size in PDF points.
	PageSize(index int) (width, height float64, err error)

	// RenderPage rasterizes one page at the given scale factor
	// (1.0 = native size at 72 DPI).
	RenderPage(ctx context.Context, index int, scale float64) (image.Image, error)

	Close() error
}
