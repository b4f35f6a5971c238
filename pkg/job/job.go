package job

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

type job struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
}

// Runner executes registered jobs on their intervals until the context is
// cancelled. Each job runs once immediately on Start, then once per tick.
type Runner struct {
	jobs []job
	wg   sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Register(name string, interval time.Duration, fn func(ctx context.Context) error) *Runner {
	return r.TryRegister(true, name, interval, fn)
}

func (r *Runner) TryRegister(enabled bool, name string, interval time.Duration, fn func(ctx context.Context) error) *Runner {
	if !enabled {
		return r
	}

	r.jobs = append(r.jobs, job{
		name:     name,
		interval: interval,
		fn:       fn,
	})

	return r
}

func (r *Runner) Start(ctx context.Context) {
	for _, j := range r.jobs {
		r.wg.Add(1)

		go r.runJob(ctx, j)
	}
}

func (r *Runner) runJob(ctx context.Context, j job) {
	defer r.wg.Done()

	l := slog.Default().With("job", j.name)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		err := runRecovered(ctx, l, j.fn)
		if err != nil {
			l.Error("job failed", "error", err)
		}

		select {
		case <-ctx.Done():
			l.Debug("context done")
			return

		case <-ticker.C:
		}
	}
}

func runRecovered(ctx context.Context, l *slog.Logger, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.Error("job panic", "error", r, "stack", string(debug.Stack()))
		}
	}()

	return fn(ctx)
}

// Stop blocks until every running job observes the cancelled context.
func (r *Runner) Stop() {
	r.wg.Wait()
}
