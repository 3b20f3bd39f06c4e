package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/kpauljoseph/pdf2cbz/internal/pdf"
	"github.com/kpauljoseph/pdf2cbz/pkg/models"
)

const DefaultJPEGQuality = 85

// Renderer turns one page into encoded image bytes: rasterize via the
// page source, snap to the planned dimensions, encode.
type Renderer struct {
	source  pdf.PageSource
	format  models.Format
	quality int
}

func NewRenderer(source pdf.PageSource, format models.Format, quality int) *Renderer {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Renderer{
		source:  source,
		format:  format,
		quality: quality,
	}
}

// Render produces exactly one RenderedPage per call. Rasterization and
// encoding problems become the page's outcome; nothing is thrown past
// this boundary.
func (r *Renderer) Render(ctx context.Context, desc models.PageDescriptor, plan models.RenderPlan) models.RenderedPage {
	page := models.RenderedPage{
		PageIndex: desc.Index,
		Format:    r.format,
	}

	if plan.Degenerate {
		page.Outcome = models.RenderFailure(
			fmt.Errorf("page %d has no usable height (%gx%g points)", desc.Index, desc.Width, desc.Height))
		return page
	}

	img, err := r.source.RenderPage(ctx, desc.Index, plan.Scale)
	if err != nil {
		page.Outcome = models.RenderFailure(
			fmt.Errorf("failed to rasterize page %d: %w", desc.Index, err))
		return page
	}

	img = resample(img, plan)

	data, err := encode(img, r.format, r.quality)
	if err != nil {
		page.Outcome = models.EncodeFailure(
			fmt.Errorf("failed to encode page %d: %w", desc.Index, err))
		return page
	}

	bounds := img.Bounds()
	page.Data = data
	page.Width = bounds.Dx()
	page.Height = bounds.Dy()
	page.Outcome = models.Success()
	return page
}

// resample snaps the raster to the exact planned dimensions. The
// rasterizer works off a DPI value, so its pixel grid can be a pixel
// off from the plan's rounded size.
func resample(img image.Image, plan models.RenderPlan) image.Image {
	if plan.OutputWidth <= 0 || plan.OutputHeight <= 0 {
		return img
	}

	bounds := img.Bounds()
	if bounds.Dx() == plan.OutputWidth && bounds.Dy() == plan.OutputHeight {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, plan.OutputWidth, plan.OutputHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

func encode(img image.Image, format models.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case models.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
