package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/report"
	"equiv/internal/result"
)

// ErrNoUpdater is returned when no updater is configured for a publisher.
var ErrNoUpdater = errors.New("resolver: no updater for publisher")

// ErrNotExplainable is returned by Explain when the publisher's updater
// cannot resolve without writing.
var ErrNotExplainable = errors.New("resolver: updater does not support explain")

// Updater resolves and records equivalences for one item.
type Updater[T model.Candidate] interface {
	Update(ctx context.Context, target T) (bool, error)
	Metadata(publisher model.Publisher) UpdaterMetadata
}

// Router dispatches content to the updater configured for its publisher.
// Failures are logged and reported and never returned.
type Router struct {
	updaters map[model.Publisher]Updater[model.Content]
	reporter report.Reporter
	logger   *slog.Logger
}

func NewRouter(updaters map[model.Publisher]Updater[model.Content], reporter report.Reporter, logger *slog.Logger) *Router {
	if reporter == nil {
		reporter = report.Noop{}
	}
	return &Router{
		updaters: maps.Clone(updaters),
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// Publishers lists the publishers with a configured updater.
func (r *Router) Publishers() []model.Publisher {
	out := slices.Collect(maps.Keys(r.updaters))
	model.SortPublishers(out)
	return out
}

// Update resolves target with its publisher's updater.
func (r *Router) Update(ctx context.Context, target model.Content) (bool, error) {
	ctx = logging.WithTarget(ctx, target.URI)
	updater, ok := r.updaters[target.Publisher]
	if !ok {
		logging.ErrorWithContext(r.logger, "no content updater for publisher", "content_publisher_unknown",
			logging.String(logging.FieldTarget, target.URI),
			logging.String(logging.FieldPublisher, string(target.Publisher)),
			logging.String(logging.FieldErrorHint, "add the publisher to content.publishers"),
		)
		r.reporter.ReportFailedEvent(ctx, "no updater for publisher "+string(target.Publisher), report.Payload{"content": target.URI})
		return false, nil
	}
	success, err := updater.Update(ctx, target)
	if err != nil {
		logging.ErrorWithContext(r.logger, "content equivalence update failed", "content_update_failed",
			logging.String(logging.FieldTarget, target.URI),
			logging.String(logging.FieldPublisher, string(target.Publisher)),
			logging.Error(err),
		)
		r.reporter.ReportFailedEvent(ctx, err.Error(), report.Payload{"content": target.URI})
		return false, nil
	}
	return success, nil
}

// Metadata describes every configured publisher's updater, restricted to
// publishers when any are given.
func (r *Router) Metadata(publishers ...model.Publisher) map[model.Publisher]UpdaterMetadata {
	if len(publishers) == 0 {
		publishers = r.Publishers()
	}
	out := make(map[model.Publisher]UpdaterMetadata, len(publishers))
	for _, p := range publishers {
		if u, ok := r.updaters[p]; ok {
			out[p] = u.Metadata(p)
		}
	}
	return out
}

// Explain resolves target without handling the result, so nothing is
// written or reported.
func (r *Router) Explain(ctx context.Context, target model.Content) (result.EquivalenceResult[model.Content], error) {
	updater, ok := r.updaters[target.Publisher]
	if !ok {
		return result.EquivalenceResult[model.Content]{}, fmt.Errorf("%w %s", ErrNoUpdater, target.Publisher)
	}
	explainer, ok := updater.(interface {
		Resolve(context.Context, model.Content) (result.EquivalenceResult[model.Content], error)
	})
	if !ok {
		return result.EquivalenceResult[model.Content]{}, ErrNotExplainable
	}
	return explainer.Resolve(ctx, target)
}
