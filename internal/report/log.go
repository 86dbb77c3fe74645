package report

import (
	"context"
	"log/slog"
	"slices"

	"equiv/internal/logging"
)

// LogReporter writes events to a structured logger.
type LogReporter struct {
	logger *slog.Logger
	runs   tally
}

// NewLogReporter returns a reporter logging under the "report" component.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logging.NewComponentLogger(logger, "report")}
}

func (r *LogReporter) StartReporting(ctx context.Context, name string) string {
	id := RunID(ctx)
	r.runs.start(id, name)
	r.logger.Info("update run started",
		logging.String(logging.FieldRunID, id),
		logging.String("run_name", name),
		logging.String(logging.FieldEventType, "run_started"),
	)
	return id
}

func (r *LogReporter) ReportSuccessfulEvent(ctx context.Context, id string, payload Payload) {
	runID := RunID(ctx)
	r.runs.add(runID, true)
	attrs := []logging.Attr{
		logging.String(logging.FieldRunID, runID),
		logging.String("subject", id),
		logging.String(logging.FieldEventType, "equivalence_written"),
	}
	r.logger.Debug("equivalence update reported", logging.Args(append(attrs, payloadAttrs(payload)...)...)...)
}

func (r *LogReporter) ReportFailedEvent(ctx context.Context, reason string, payload Payload) {
	runID := RunID(ctx)
	r.runs.add(runID, false)
	attrs := []logging.Attr{
		logging.String(logging.FieldRunID, runID),
		logging.String("reason", reason),
		logging.String(logging.FieldEventType, "equivalence_failed"),
	}
	r.logger.Warn("equivalence update failed", logging.Args(append(attrs, payloadAttrs(payload)...)...)...)
}

func (r *LogReporter) EndReporting(ctx context.Context) {
	runID := RunID(ctx)
	counts, ok := r.runs.finish(runID)
	if !ok {
		return
	}
	r.logger.Info("update run finished",
		logging.String(logging.FieldRunID, runID),
		logging.String("run_name", counts.name),
		logging.Int("succeeded", counts.succeeded),
		logging.Int("failed", counts.failed),
		logging.String(logging.FieldEventType, "run_finished"),
	)
}

func payloadAttrs(payload Payload) []logging.Attr {
	if len(payload) == 0 {
		return nil
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	attrs := make([]logging.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, logging.String("payload."+k, payload[k]))
	}
	return attrs
}
