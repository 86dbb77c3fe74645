package channels

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/report"
)

// Router dispatches channels to the updater registered for their publisher.
// Errors never escape: they are logged, reported as failed events and turned
// into a false result.
type Router struct {
	updaters map[model.Publisher]Updater
	reporter report.Reporter
	logger   *slog.Logger
}

// NewRouter returns a router over updaters keyed by publisher.
func NewRouter(updaters map[model.Publisher]Updater, reporter report.Reporter, logger *slog.Logger) *Router {
	if reporter == nil {
		reporter = report.Noop{}
	}
	return &Router{
		updaters: maps.Clone(updaters),
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "channels"),
	}
}

// Publishers lists the publishers with a registered updater.
func (r *Router) Publishers() []model.Publisher {
	out := slices.Collect(maps.Keys(r.updaters))
	model.SortPublishers(out)
	return out
}

// Update runs the updater for subject's publisher.
func (r *Router) Update(ctx context.Context, subject model.Channel) (bool, error) {
	ctx = logging.WithTarget(ctx, subject.URI)
	updater, ok := r.updaters[subject.Publisher]
	if !ok {
		logging.ErrorWithContext(r.logger, "no channel updater for publisher", "channel_publisher_unknown",
			logging.String(logging.FieldTarget, subject.URI),
			logging.String(logging.FieldPublisher, string(subject.Publisher)),
			logging.String(logging.FieldErrorHint, "add the publisher to channels.source_publishers or channels.forced_publisher"),
		)
		r.reporter.ReportFailedEvent(ctx, "no updater for publisher "+string(subject.Publisher), report.Payload{"channel": subject.URI})
		return false, nil
	}

	success, err := updater.Update(ctx, subject)
	if err != nil {
		logging.ErrorWithContext(r.logger, "channel equivalence update failed", "channel_update_failed",
			logging.String(logging.FieldTarget, subject.URI),
			logging.String(logging.FieldPublisher, string(subject.Publisher)),
			logging.Error(err),
		)
		r.reporter.ReportFailedEvent(ctx, err.Error(), report.Payload{"channel": subject.URI})
		return false, nil
	}
	if !success {
		r.reporter.ReportFailedEvent(ctx, "channel update unsuccessful", report.Payload{"channel": subject.URI})
	}
	return success, nil
}
