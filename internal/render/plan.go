package render

import (
	"math"

	"github.com/kpauljoseph/pdf2cbz/pkg/models"
)

// PlanPage computes the rasterization scale and final pixel size for
// one page. targetHeight <= 0 means native size (scale 1.0). Width
// rounding is half-up everywhere so pages with the same aspect ratio
// get the same width across a run.
func PlanPage(desc models.PageDescriptor, targetHeight int) models.RenderPlan {
	if desc.Height <= 0 {
		// Can't derive a scale; flag the page so the renderer fails
		// it instead of dividing by zero here.
		return models.RenderPlan{
			PageIndex:  desc.Index,
			Scale:      1.0,
			Degenerate: true,
		}
	}

	if targetHeight <= 0 {
		return models.RenderPlan{
			PageIndex:    desc.Index,
			Scale:        1.0,
			OutputWidth:  roundHalfUp(desc.Width),
			OutputHeight: roundHalfUp(desc.Height),
		}
	}

	scale := float64(targetHeight) / desc.Height
	return models.RenderPlan{
		PageIndex:    desc.Index,
		Scale:        scale,
		OutputWidth:  roundHalfUp(desc.Width * scale),
		OutputHeight: targetHeight,
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
