package action

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultParallelism = 4

// ExecutorOptions tunes an Executor. The zero value is usable.
type ExecutorOptions struct {
	// Parallelism bounds concurrently running actions (4 when <= 0).
	Parallelism int
	Logger      *slog.Logger
}

// Executor runs model-proposed requests against a Catalog.
type Executor struct {
	catalog *Catalog
	limit   int
	log     *slog.Logger
}

func NewExecutor(catalog *Catalog, opts ExecutorOptions) *Executor {
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Executor{catalog: catalog, limit: opts.Parallelism, log: opts.Logger}
}

// Catalog returns the catalog the executor dispatches to.
func (e *Executor) Catalog() *Catalog { return e.catalog }

// Execute runs every request and returns one result per request, in request
// order. A failing or panicking action only affects its own result.
func (e *Executor) Execute(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = e.run(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Executor) run(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Failuref(req.Name, "action %s panicked: %v", req.Name, r)
		}
		attrs := []any{"tool", string(req.Name), "success", res.Success, "elapsed", time.Since(start)}
		if !res.Success {
			attrs = append(attrs, "error", res.Error)
		}
		e.log.DebugContext(ctx, "action executed", attrs...)
	}()

	t, ok := e.catalog.Lookup(req.Name)
	if !ok {
		return Failure(req.Name, fmt.Sprintf("unsupported action %q", string(req.Name)))
	}
	if err := ctx.Err(); err != nil {
		return Failure(req.Name, err.Error())
	}
	return t.Run(ctx, req.Arguments)
}
