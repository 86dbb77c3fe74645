package report

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"equiv/internal/logging"
)

// Payload carries the details of one reported event, typically the
// publisher -> candidate pairs that were written.
type Payload map[string]string

// Clone returns an independent copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Reporter receives audit events for update runs.
type Reporter interface {
	// StartReporting opens a run and returns its identifier.
	StartReporting(ctx context.Context, name string) string
	// ReportSuccessfulEvent records a persisted mutation for id.
	ReportSuccessfulEvent(ctx context.Context, id string, payload Payload)
	// ReportFailedEvent records a failed update.
	ReportFailedEvent(ctx context.Context, reason string, payload Payload)
	// EndReporting closes the run carried by ctx.
	EndReporting(ctx context.Context)
}

// RunID returns the run identifier carried by ctx, or a fresh one.
func RunID(ctx context.Context) string {
	if id, ok := logging.RunIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}

// Noop discards every event.
type Noop struct{}

func (Noop) StartReporting(ctx context.Context, _ string) string    { return RunID(ctx) }
func (Noop) ReportSuccessfulEvent(context.Context, string, Payload) {}
func (Noop) ReportFailedEvent(context.Context, string, Payload)     {}
func (Noop) EndReporting(context.Context)                           {}

// Multi fans events out to several reporters under one run identifier.
type Multi struct {
	reporters []Reporter
}

// NewMulti drops nil entries and returns a fan-out reporter.
func NewMulti(reporters ...Reporter) *Multi {
	kept := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Multi{reporters: kept}
}

func (m *Multi) StartReporting(ctx context.Context, name string) string {
	id := RunID(ctx)
	ctx = logging.WithRunID(ctx, id)
	for _, r := range m.reporters {
		r.StartReporting(ctx, name)
	}
	return id
}

func (m *Multi) ReportSuccessfulEvent(ctx context.Context, id string, payload Payload) {
	for _, r := range m.reporters {
		r.ReportSuccessfulEvent(ctx, id, payload.Clone())
	}
}

func (m *Multi) ReportFailedEvent(ctx context.Context, reason string, payload Payload) {
	for _, r := range m.reporters {
		r.ReportFailedEvent(ctx, reason, payload.Clone())
	}
}

func (m *Multi) EndReporting(ctx context.Context) {
	for _, r := range m.reporters {
		r.EndReporting(ctx)
	}
}

// tally counts outcomes per run for reporters that summarise at the end.
type tally struct {
	mu   sync.Mutex
	runs map[string]*runCounts
}

type runCounts struct {
	name      string
	succeeded int
	failed    int
}

func (t *tally) start(id, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runs == nil {
		t.runs = make(map[string]*runCounts)
	}
	t.runs[id] = &runCounts{name: name}
}

func (t *tally) name(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rc, ok := t.runs[id]; ok {
		return rc.name
	}
	return ""
}

func (t *tally) add(id string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rc, found := t.runs[id]
	if !found {
		return
	}
	if ok {
		rc.succeeded++
	} else {
		rc.failed++
	}
}

func (t *tally) finish(id string) (runCounts, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rc, ok := t.runs[id]
	if !ok {
		return runCounts{}, false
	}
	delete(t.runs, id)
	return *rc, true
}
