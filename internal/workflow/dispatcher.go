package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/report"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 5

// ErrNoUpdater is returned when a dispatcher is built without an updater.
var ErrNoUpdater = errors.New("workflow: updater is required")

// Updater updates the equivalences of one item. The boolean reports whether
// the attempt succeeded; finding no equivalence is still a success.
type Updater[T model.Candidate] interface {
	Update(ctx context.Context, item T) (bool, error)
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc[T model.Candidate] func(ctx context.Context, item T) (bool, error)

func (f UpdaterFunc[T]) Update(ctx context.Context, item T) (bool, error) {
	return f(ctx, item)
}

// Stats summarises the items a dispatcher has processed.
type Stats struct {
	Batches   int64
	Submitted int64
	Succeeded int64
	Failed    int64
	Panicked  int64
}

// Dispatcher runs updates on a pool shared by every submitted batch.
type Dispatcher[T model.Candidate] struct {
	updater  Updater[T]
	reporter report.Reporter
	logger   *slog.Logger
	workers  int

	pool    errgroup.Group
	batches sync.WaitGroup

	batchCount atomic.Int64
	submitted  atomic.Int64
	succeeded  atomic.Int64
	failed     atomic.Int64
	panicked   atomic.Int64
}

// NewDispatcher returns a dispatcher with workers goroutines. A
// non-positive count uses DefaultWorkers.
func NewDispatcher[T model.Candidate](updater Updater[T], reporter report.Reporter, workers int, logger *slog.Logger) (*Dispatcher[T], error) {
	if updater == nil {
		return nil, ErrNoUpdater
	}
	if reporter == nil {
		reporter = report.Noop{}
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	d := &Dispatcher[T]{
		updater:  updater,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		workers:  workers,
	}
	d.pool.SetLimit(workers)
	return d, nil
}

// Workers returns the pool size.
func (d *Dispatcher[T]) Workers() int { return d.workers }

// Submit opens a reporting run named name, schedules every item and
// returns the run id without waiting for the updates. The run is closed
// once its last item finishes.
func (d *Dispatcher[T]) Submit(ctx context.Context, name string, items []T) string {
	runID := d.reporter.StartReporting(ctx, name)
	ctx = logging.WithRunID(ctx, runID)
	d.batchCount.Add(1)
	d.submitted.Add(int64(len(items)))

	d.logger.Info("batch submitted",
		logging.String(logging.FieldRunID, runID),
		logging.String("batch", name),
		logging.Int("items", len(items)),
		logging.Int("workers", d.workers),
	)

	pending := append([]T(nil), items...)
	d.batches.Add(1)
	go func() {
		defer d.batches.Done()
		var batch sync.WaitGroup
		for _, item := range pending {
			batch.Add(1)
			d.pool.Go(func() error {
				defer batch.Done()
				d.process(ctx, item)
				return nil
			})
		}
		batch.Wait()
		d.reporter.EndReporting(ctx)
		d.logger.Info("batch finished",
			logging.String(logging.FieldRunID, runID),
			logging.String("batch", name),
		)
	}()
	return runID
}

// Wait blocks until every submitted batch has finished.
func (d *Dispatcher[T]) Wait() {
	d.batches.Wait()
}

// Stats returns counters accumulated since the dispatcher was created.
func (d *Dispatcher[T]) Stats() Stats {
	return Stats{
		Batches:   d.batchCount.Load(),
		Submitted: d.submitted.Load(),
		Succeeded: d.succeeded.Load(),
		Failed:    d.failed.Load(),
		Panicked:  d.panicked.Load(),
	}
}

func (d *Dispatcher[T]) process(ctx context.Context, item T) {
	ctx = logging.WithTarget(ctx, item.Key())
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			d.panicked.Add(1)
			logging.ErrorWithContext(d.logger, "update panicked", "update_panic",
				logging.String(logging.FieldTarget, item.Key()),
				logging.String(logging.FieldPublisher, string(item.Source())),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			d.reporter.ReportFailedEvent(ctx, fmt.Sprintf("panic: %v", r), report.Payload{"item": item.Key()})
		}
	}()

	if err := ctx.Err(); err != nil {
		d.failed.Add(1)
		d.reporter.ReportFailedEvent(ctx, "update skipped: "+err.Error(), report.Payload{"item": item.Key()})
		return
	}

	ok, err := d.updater.Update(ctx, item)
	switch {
	case err != nil:
		d.failed.Add(1)
		logging.ErrorWithContext(d.logger, "update failed", "update_failed",
			logging.String(logging.FieldTarget, item.Key()),
			logging.String(logging.FieldPublisher, string(item.Source())),
			logging.Error(err),
		)
		d.reporter.ReportFailedEvent(ctx, err.Error(), report.Payload{"item": item.Key()})
	case !ok:
		d.failed.Add(1)
	default:
		d.succeeded.Add(1)
	}
}
