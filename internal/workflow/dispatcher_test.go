package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/report"
	"equiv/internal/workflow"
)

type stubReporter struct {
	mu       sync.Mutex
	starts   []string
	ends     int
	failures []string
}

func (r *stubReporter) StartReporting(ctx context.Context, name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, name)
	return report.RunID(ctx)
}

func (r *stubReporter) ReportSuccessfulEvent(context.Context, string, report.Payload) {}

func (r *stubReporter) ReportFailedEvent(ctx context.Context, reason string, _ report.Payload) {
	target, _ := logging.TargetFromContext(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, target+": "+reason)
}

func (r *stubReporter) EndReporting(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends++
}

func items(n int) []model.Content {
	out := make([]model.Content, n)
	for i := range out {
		out[i] = model.Content{URI: fmt.Sprintf("http://pa/%d", i), Publisher: model.PublisherPA}
	}
	return out
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	updater := workflow.UpdaterFunc[model.Content](func(context.Context, model.Content) (bool, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return true, nil
	})
	d, err := workflow.NewDispatcher[model.Content](updater, nil, 3, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	d.Submit(context.Background(), "content", items(20))
	d.Wait()

	if got := peak.Load(); got > 3 {
		t.Fatalf("expected at most 3 concurrent updates, saw %d", got)
	}
	stats := d.Stats()
	if stats.Submitted != 20 || stats.Succeeded != 20 || stats.Failed != 0 || stats.Batches != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	updater := workflow.UpdaterFunc[model.Content](func(_ context.Context, c model.Content) (bool, error) {
		switch c.URI {
		case "http://pa/1":
			return false, errors.New("store unavailable")
		case "http://pa/2":
			panic("nil candidate")
		case "http://pa/3":
			return false, nil
		}
		return true, nil
	})
	rep := &stubReporter{}
	d, err := workflow.NewDispatcher[model.Content](updater, rep, 0, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	if d.Workers() != workflow.DefaultWorkers {
		t.Fatalf("expected default pool size, got %d", d.Workers())
	}
	d.Submit(context.Background(), "content", items(6))
	d.Wait()

	stats := d.Stats()
	if stats.Succeeded != 3 || stats.Failed != 3 || stats.Panicked != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(rep.starts) != 1 || rep.ends != 1 {
		t.Fatalf("expected one reporting bracket, got %d starts and %d ends", len(rep.starts), rep.ends)
	}
	joined := strings.Join(rep.failures, "\n")
	if len(rep.failures) != 2 || !strings.Contains(joined, "http://pa/1: store unavailable") || !strings.Contains(joined, "http://pa/2: panic: nil candidate") {
		t.Fatalf("unexpected failure reports:\n%s", joined)
	}
}

func TestSubmitDoesNotWaitForUpdates(t *testing.T) {
	release := make(chan struct{})
	var seenRunID atomic.Value
	updater := workflow.UpdaterFunc[model.Content](func(ctx context.Context, _ model.Content) (bool, error) {
		if id, ok := logging.RunIDFromContext(ctx); ok {
			seenRunID.Store(id)
		}
		<-release
		return true, nil
	})
	rep := &stubReporter{}
	d, err := workflow.NewDispatcher[model.Content](updater, rep, 2, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	runID := d.Submit(context.Background(), "channels", items(4))
	if runID == "" {
		t.Fatal("expected a run id")
	}
	rep.mu.Lock()
	ends := rep.ends
	rep.mu.Unlock()
	if ends != 0 {
		t.Fatal("batch closed before its updates ran")
	}

	close(release)
	d.Wait()
	if got, _ := seenRunID.Load().(string); got != runID {
		t.Fatalf("updates saw run id %q, want %q", got, runID)
	}
	if rep.ends != 1 {
		t.Fatalf("expected batch to be closed once, got %d", rep.ends)
	}
}

func TestCancelledBatchReportsSkippedItems(t *testing.T) {
	var calls atomic.Int32
	updater := workflow.UpdaterFunc[model.Content](func(context.Context, model.Content) (bool, error) {
		calls.Add(1)
		return true, nil
	})
	rep := &stubReporter{}
	d, err := workflow.NewDispatcher[model.Content](updater, rep, 1, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Submit(ctx, "content", items(3))
	d.Wait()

	if calls.Load() != 0 {
		t.Fatalf("expected no updates after cancellation, got %d", calls.Load())
	}
	if d.Stats().Failed != 3 || len(rep.failures) != 3 {
		t.Fatalf("expected every item reported as skipped, got %+v / %v", d.Stats(), rep.failures)
	}
}

func TestNewDispatcherRequiresUpdater(t *testing.T) {
	if _, err := workflow.NewDispatcher[model.Content](nil, nil, 1, nil); !errors.Is(err, workflow.ErrNoUpdater) {
		t.Fatalf("expected ErrNoUpdater, got %v", err)
	}
}
