package models

import "fmt"

// Format selects the encoding used for rendered page images.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat accepts the format names used in config files and on the
// command line, including the common "jpg" spelling.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "jpeg", "jpg", "":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want jpeg or png)", s)
	}
}

// Extension returns the file extension used for archive entries.
func (f Format) Extension() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// PageDescriptor holds a page's native geometry in PDF points.
// Descriptors are built once at job start and never mutated.
type PageDescriptor struct {
	Index  int
	Width  float64
	Height float64
}

// RenderPlan is the rasterization decision for one page: the scale to
// render at and the exact pixel size of the output image. Degenerate
// marks pages whose native height was zero or unreadable; those pages
// are failed at render time instead of dividing by zero here.
type RenderPlan struct {
	PageIndex    int
	Scale        float64
	OutputWidth  int
	OutputHeight int
	Degenerate   bool
}

// FailureKind classifies per-page failures.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureRender
	FailureEncode
)

func (k FailureKind) String() string {
	switch k {
	case FailureRender:
		return "render"
	case FailureEncode:
		return "encode"
	default:
		return "none"
	}
}

// Outcome records whether a page made it through the pipeline.
// Per-page failures are data, not errors: they travel with the page so
// the job can keep going and report them at the end.
type Outcome struct {
	Kind   FailureKind
	Reason string
}

func Success() Outcome {
	return Outcome{Kind: FailureNone}
}

func RenderFailure(err error) Outcome {
	return Outcome{Kind: FailureRender, Reason: err.Error()}
}

func EncodeFailure(err error) Outcome {
	return Outcome{Kind: FailureEncode, Reason: err.Error()}
}

func (o Outcome) OK() bool {
	return o.Kind == FailureNone
}

// RenderedPage is the unit handed from the render pool to the archive
// writer. Exactly one is produced per attempted page. Data is nil when
// the outcome is a failure.
type RenderedPage struct {
	PageIndex int
	Data      []byte
	Format    Format
	Width     int
	Height    int
	Outcome   Outcome
}

// PageFailure is one failed page in a job summary.
type PageFailure struct {
	Index  int
	Reason string
}

// JobSummary is the per-job accounting returned to the caller.
// Succeeded and Failed are both in ascending page order and together
// cover every attempted page exactly once.
type JobSummary struct {
	TotalPages int
	Succeeded  []int
	Failed     []PageFailure
}

func (s JobSummary) SucceededCount() int { return len(s.Succeeded) }

func (s JobSummary) FailedCount() int { return len(s.Failed) }
