package report

import (
	"context"
	"log/slog"

	"equiv/internal/logging"
	"equiv/internal/store"
)

// EventRecorder persists report events.
type EventRecorder interface {
	RecordEvent(ctx context.Context, ev store.Event) error
}

// StoreReporter persists every event so runs can be inspected later.
type StoreReporter struct {
	recorder EventRecorder
	logger   *slog.Logger
	runs     tally
}

// NewStoreReporter wraps recorder. Write failures are logged and dropped.
func NewStoreReporter(recorder EventRecorder, logger *slog.Logger) *StoreReporter {
	return &StoreReporter{
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "report"),
	}
}

func (r *StoreReporter) StartReporting(ctx context.Context, name string) string {
	id := RunID(ctx)
	r.runs.start(id, name)
	r.record(ctx, store.Event{RunID: id, RunName: name, Kind: store.EventRunStarted})
	return id
}

func (r *StoreReporter) ReportSuccessfulEvent(ctx context.Context, id string, payload Payload) {
	runID := RunID(ctx)
	r.record(ctx, store.Event{
		RunID:   runID,
		RunName: r.runs.name(runID),
		Kind:    store.EventSuccess,
		Subject: id,
		Payload: payload,
	})
}

func (r *StoreReporter) ReportFailedEvent(ctx context.Context, reason string, payload Payload) {
	runID := RunID(ctx)
	subject, _ := logging.TargetFromContext(ctx)
	r.record(ctx, store.Event{
		RunID:   runID,
		RunName: r.runs.name(runID),
		Kind:    store.EventFailure,
		Subject: subject,
		Reason:  reason,
		Payload: payload,
	})
}

func (r *StoreReporter) EndReporting(ctx context.Context) {
	runID := RunID(ctx)
	counts, _ := r.runs.finish(runID)
	r.record(ctx, store.Event{RunID: runID, RunName: counts.name, Kind: store.EventRunFinished})
}

func (r *StoreReporter) record(ctx context.Context, ev store.Event) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordEvent(context.WithoutCancel(ctx), ev); err != nil {
		logging.WarnWithContext(r.logger, "report event not persisted", "report_persist_failed",
			logging.String(logging.FieldRunID, ev.RunID),
			logging.String("kind", string(ev.Kind)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "event missing from equiv events output"),
		)
	}
}
