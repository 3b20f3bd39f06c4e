package render

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kpauljoseph/pdf2cbz/pkg/models"
)

// Worker sizing constants.
const (
	MinWorkers = 1

	// MaxWorkers caps concurrent page buffers; rendered pages can run
	// to several MB each.
	MaxWorkers = 8
)

// reorderSlack is how many completed pages beyond the worker count may
// wait in the reordering buffer before dispatch stalls.
const reorderSlack = 2

// SinkFunc receives rendered pages in strictly ascending page order,
// failures included. A non-nil error aborts the run.
type SinkFunc func(models.RenderedPage) error

// Pool renders pages with bounded parallelism and releases results to
// the sink in page order, whatever order the workers finish in. At
// most workers+slack rendered pages are held in memory at once; the
// dispatcher stalls until the writer catches up.
type Pool struct {
	renderer *Renderer
	workers  int
	retry    bool
}

// NewPool creates a pool of the given size. workers <= 0 selects
// DefaultWorkerCount. retry grants failed pages a single second
// attempt before their failure is recorded.
func NewPool(renderer *Renderer, workers int, retry bool) *Pool {
	if workers <= 0 {
		workers = DefaultWorkerCount()
	}
	return &Pool{
		renderer: renderer,
		workers:  workers,
		retry:    retry,
	}
}

func (p *Pool) Workers() int {
	return p.workers
}

// DefaultWorkerCount sizes the pool from GOMAXPROCS (container-aware
// via automaxprocs in the CLI), clamped to [MinWorkers, MaxWorkers].
func DefaultWorkerCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// RenderAll renders every page in descs and hands results to sink in
// ascending index order. Per-page failures flow through as data; the
// returned error is only ever a sink error or the context's error
// after cancellation.
func (p *Pool) RenderAll(ctx context.Context, descs []models.PageDescriptor, plans []models.RenderPlan, sink SinkFunc) error {
	if len(descs) == 0 {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indices := make(chan int)
	results := make(chan models.RenderedPage, p.workers)

	// One permit per rendered-but-not-yet-released page. Acquired
	// before dispatch, released when the page reaches the sink; this
	// is what bounds memory on large documents.
	permits := make(chan struct{}, p.workers+reorderSlack)

	go func() {
		defer close(indices)
		for i := range descs {
			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case indices <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	workers, wctx := errgroup.WithContext(ctx)
	for w := 0; w < p.workers; w++ {
		workers.Go(func() error {
			for i := range indices {
				page := p.renderer.Render(wctx, descs[i], plans[i])
				if p.retry && !page.Outcome.OK() && wctx.Err() == nil {
					page = p.renderer.Render(wctx, descs[i], plans[i])
				}
				select {
				case results <- page:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		_ = workers.Wait()
		close(results)
	}()

	// Reordering buffer: completions keyed by index, released while
	// the next expected index is present.
	pending := make(map[int]models.RenderedPage, p.workers+reorderSlack)
	next := 0
	var sinkErr error

	for page := range results {
		pending[page.PageIndex] = page
		for {
			buffered, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			<-permits
			if sinkErr == nil {
				if err := sink(buffered); err != nil {
					sinkErr = err
					cancel()
				}
			}
		}
	}

	if sinkErr != nil {
		return sinkErr
	}
	return ctx.Err()
}
