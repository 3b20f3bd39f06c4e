package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/kpauljoseph/pdf2cbz/internal/archive"
	"github.com/kpauljoseph/pdf2cbz/internal/pdf"
	"github.com/kpauljoseph/pdf2cbz/internal/render"
	"github.com/kpauljoseph/pdf2cbz/pkg/logger"
	"github.com/kpauljoseph/pdf2cbz/pkg/models"
)

// Options configures one conversion job.
type Options struct {
	// TargetHeight is the output page height in pixels. 0 keeps each
	// page at its native raster size; negative is invalid.
	TargetHeight int

	// Format is the encoding for page images. Zero value means JPEG.
	Format models.Format

	// Quality is the JPEG quality (1-100); 0 selects the default.
	Quality int

	// Workers is the render pool size; 0 derives it from available
	// parallelism.
	Workers int

	// PageLimit converts only the first N pages when positive.
	PageLimit int

	// RetryTransient grants failed pages one extra render attempt.
	RetryTransient bool
}

func (o Options) validate() error {
	if o.TargetHeight < 0 {
		return fmt.Errorf("%w: target height must be positive, got %d", ErrInvalidParameter, o.TargetHeight)
	}
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("%w: quality must be in 1..100, got %d", ErrInvalidParameter, o.Quality)
	}
	if o.PageLimit < 0 {
		return fmt.Errorf("%w: page limit must be positive, got %d", ErrInvalidParameter, o.PageLimit)
	}
	if o.Format != "" {
		if _, err := models.ParseFormat(string(o.Format)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
	}
	return nil
}

// Job converts one page source into one CBZ archive.
type Job struct {
	source pdf.PageSource
	opts   Options
	log    *logger.Logger
}

// NewJob validates the options up front; option problems surface here,
// before any page work starts.
func NewJob(source pdf.PageSource, opts Options, log *logger.Logger) (*Job, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = models.FormatJPEG
	}
	return &Job{
		source: source,
		opts:   opts,
		log:    log,
	}, nil
}

// Run converts the document into a CBZ at outPath and returns the
// per-page accounting. Individual page failures never abort the run;
// only archive write errors and cancellation do, and both remove the
// partial output file.
func (j *Job) Run(ctx context.Context, outPath string) (models.JobSummary, error) {
	total := j.source.PageCount()
	if j.opts.PageLimit > 0 && j.opts.PageLimit < total {
		total = j.opts.PageLimit
	}

	summary := models.JobSummary{TotalPages: total}
	if total == 0 {
		j.log.Warn("document has no pages; writing an empty archive")
	}

	descs := make([]models.PageDescriptor, total)
	plans := make([]models.RenderPlan, total)
	for i := 0; i < total; i++ {
		width, height, err := j.source.PageSize(i)
		if err != nil {
			// Geometry unreadable: plan degenerates and the page is
			// recorded as failed at render time.
			j.log.Warn("could not read size of page %d: %v", i, err)
			descs[i] = models.PageDescriptor{Index: i}
		} else {
			descs[i] = models.PageDescriptor{Index: i, Width: width, Height: height}
		}
		plans[i] = render.PlanPage(descs[i], j.opts.TargetHeight)
	}

	writer, err := archive.NewWriter(outPath, total)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}

	renderer := render.NewRenderer(j.source, j.opts.Format, j.opts.Quality)
	pool := render.NewPool(renderer, j.opts.Workers, j.opts.RetryTransient)
	j.log.Debug("rendering %d pages with %d workers", total, pool.Workers())

	sink := func(page models.RenderedPage) error {
		if err := writer.WriteNext(page); err != nil {
			if errors.Is(err, archive.ErrOrderingViolation) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
		}
		if page.Outcome.OK() {
			summary.Succeeded = append(summary.Succeeded, page.PageIndex)
			j.log.Debug("page %d done (%dx%d, %d bytes)", page.PageIndex, page.Width, page.Height, len(page.Data))
		} else {
			summary.Failed = append(summary.Failed, models.PageFailure{
				Index:  page.PageIndex,
				Reason: page.Outcome.Reason,
			})
			j.log.Warn("page %d skipped: %s", page.PageIndex, page.Outcome.Reason)
		}
		return nil
	}

	if err := pool.RenderAll(ctx, descs, plans, sink); err != nil {
		if abortErr := writer.Abort(); abortErr != nil {
			j.log.Warn("cleanup after failure: %v", abortErr)
		}
		return summary, err
	}

	if err := writer.Close(); err != nil {
		return summary, fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}

	j.log.Info("wrote %d of %d pages", summary.SucceededCount(), total)
	if summary.FailedCount() > 0 {
		j.log.Warn("%d pages failed and were skipped", summary.FailedCount())
	}
	return summary, nil
}

// Run opens the PDF at pdfPath and converts it to a CBZ at outPath.
// This is the whole pipeline behind the CLI.
func Run(ctx context.Context, pdfPath, outPath string, opts Options, log *logger.Logger) (models.JobSummary, error) {
	source, err := pdf.Open(pdfPath)
	if err != nil {
		return models.JobSummary{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer source.Close()

	job, err := NewJob(source, opts, log)
	if err != nil {
		return models.JobSummary{}, err
	}
	return job.Run(ctx, outPath)
}
