package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/report"
	"equiv/internal/result"
	"equiv/internal/store"
)

// EquivalenceWriter persists the strong equivalences of a target.
// *store.Store satisfies it.
type EquivalenceWriter interface {
	SaveEquivalences(ctx context.Context, targetURI string, eqs []store.Equivalence) error
}

// StoreHandler replaces a target's stored equivalences with the strong
// equivalences of each new result and reports the write.
type StoreHandler struct {
	writer   EquivalenceWriter
	reporter report.Reporter
	logger   *slog.Logger
}

func NewStoreHandler(writer EquivalenceWriter, reporter report.Reporter, logger *slog.Logger) *StoreHandler {
	if reporter == nil {
		reporter = report.Noop{}
	}
	return &StoreHandler{
		writer:   writer,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

func (h *StoreHandler) Handle(ctx context.Context, res result.EquivalenceResult[model.Content]) error {
	runID, _ := logging.RunIDFromContext(ctx)
	winners := res.AllStrongEquivalences()
	eqs := make([]store.Equivalence, 0, len(winners))
	payload := make(report.Payload, len(winners))
	for _, w := range winners {
		eq := store.Equivalence{
			TargetURI:    res.Target.URI,
			Publisher:    w.Candidate.Publisher,
			CandidateURI: w.Candidate.URI,
			RunID:        runID,
		}
		if w.Score.IsReal() {
			v := w.Score.Value()
			eq.Score = &v
		}
		eqs = append(eqs, eq)
		if prev, ok := payload[string(w.Candidate.Publisher)]; ok {
			payload[string(w.Candidate.Publisher)] = prev + "," + w.Candidate.URI
		} else {
			payload[string(w.Candidate.Publisher)] = w.Candidate.URI
		}
	}
	if err := h.writer.SaveEquivalences(ctx, res.Target.URI, eqs); err != nil {
		return fmt.Errorf("save equivalences: %w", err)
	}
	h.logger.Info("equivalences written",
		logging.String(logging.FieldTarget, res.Target.URI),
		logging.Int("strong", len(eqs)),
	)
	h.reporter.ReportSuccessfulEvent(ctx, res.Target.URI, payload)
	return nil
}
