package channels

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"equiv/internal/logging"
	"equiv/internal/model"
)

// Updater recomputes the same-as link of one channel. The boolean reports
// whether the attempt succeeded; finding no equivalent is a success.
type Updater interface {
	Update(ctx context.Context, subject model.Channel) (bool, error)
}

// SourceSpecificUpdater links channels of one publisher to the first matching
// channel from the candidate publishers.
type SourceSpecificUpdater struct {
	publisher  model.Publisher
	candidates []model.Publisher
	matcher    Matcher
	store      Store
	linker     *Linker
	logger     *slog.Logger
}

// NewSourceSpecificUpdater builds an updater for publisher.
func NewSourceSpecificUpdater(publisher model.Publisher, candidates []model.Publisher, matcher Matcher, st Store, linker *Linker, logger *slog.Logger) (*SourceSpecificUpdater, error) {
	if publisher == "" {
		return nil, fmt.Errorf("source-specific updater: publisher is required")
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("source-specific updater for %s: candidate publishers are required", publisher)
	}
	if matcher == nil || st == nil || linker == nil {
		return nil, fmt.Errorf("source-specific updater for %s: matcher, store and linker are required", publisher)
	}
	return &SourceSpecificUpdater{
		publisher:  publisher,
		candidates: slices.Clone(candidates),
		matcher:    matcher,
		store:      st,
		linker:     linker,
		logger:     logging.NewComponentLogger(logger, "channels").With(logging.String(logging.FieldPublisher, string(publisher))),
	}, nil
}

func (u *SourceSpecificUpdater) Update(ctx context.Context, subject model.Channel) (bool, error) {
	if subject.Publisher != u.publisher {
		return false, fmt.Errorf("%w: %s is from %s, updater handles %s", ErrPublisherMismatch, subject.URI, subject.Publisher, u.publisher)
	}
	pool, err := u.store.ChannelsByPublisher(ctx, u.candidates...)
	if err != nil {
		return false, fmt.Errorf("load candidate channels: %w", err)
	}
	for _, candidate := range pool {
		if candidate.URI == subject.URI || !u.matcher.IsMatch(subject, candidate) {
			continue
		}
		if err := u.linker.Link(ctx, subject, candidate); err != nil {
			return false, err
		}
		return true, nil
	}
	u.logger.Debug("no matching candidate channel",
		logging.String(logging.FieldTarget, subject.URI),
		logging.Int("pool_size", len(pool)),
	)
	return true, nil
}

// ForcedUpdater links channels of one publisher through the mapping file,
// keyed by the channel's alias in namespace.
type ForcedUpdater struct {
	publisher model.Publisher
	namespace string
	mappings  *Mappings
	store     Store
	linker    *Linker
	logger    *slog.Logger
}

// NewForcedUpdater builds a forced updater for publisher.
func NewForcedUpdater(publisher model.Publisher, namespace string, mappings *Mappings, st Store, linker *Linker, logger *slog.Logger) (*ForcedUpdater, error) {
	if publisher == "" || namespace == "" {
		return nil, fmt.Errorf("forced updater: publisher and alias namespace are required")
	}
	if mappings == nil || st == nil || linker == nil {
		return nil, fmt.Errorf("forced updater for %s: mappings, store and linker are required", publisher)
	}
	return &ForcedUpdater{
		publisher: publisher,
		namespace: namespace,
		mappings:  mappings,
		store:     st,
		linker:    linker,
		logger:    logging.NewComponentLogger(logger, "channels").With(logging.String(logging.FieldPublisher, string(publisher))),
	}, nil
}

func (u *ForcedUpdater) Update(ctx context.Context, subject model.Channel) (bool, error) {
	if subject.Publisher != u.publisher {
		return false, fmt.Errorf("%w: %s is from %s, updater handles %s", ErrPublisherMismatch, subject.URI, subject.Publisher, u.publisher)
	}
	code, ok := subject.AliasValue(u.namespace)
	if !ok {
		logging.ErrorWithContext(u.logger, "channel has no station alias", "channel_alias_missing",
			logging.String(logging.FieldTarget, subject.URI),
			logging.String("namespace", u.namespace),
			logging.Error(ErrMissingAlias),
			logging.String(logging.FieldErrorHint, "re-ingest the channel with its station code alias"),
		)
		return false, nil
	}

	uri, found, err := u.mappings.Lookup(code)
	if err != nil {
		return false, err
	}
	if !found {
		u.logger.Debug("no forced mapping, removing any existing link",
			logging.String(logging.FieldTarget, subject.URI),
			logging.String("alias", code),
		)
		if err := u.linker.RemoveLink(ctx, subject); err != nil {
			return false, err
		}
		return true, nil
	}

	candidate, err := u.store.Resolve(ctx, uri)
	if err != nil {
		return false, fmt.Errorf("resolve mapped channel %s: %w", uri, err)
	}
	if candidate == nil {
		logging.ErrorWithContext(u.logger, "forced mapping points at unknown channel", "channel_mapping_unresolvable",
			logging.String(logging.FieldTarget, subject.URI),
			logging.String("alias", code),
			logging.String(logging.FieldCandidate, uri),
			logging.Error(ErrUnresolvable),
			logging.String(logging.FieldErrorHint, "fix the entry in "+u.mappings.Path()),
		)
		return false, nil
	}
	if err := u.linker.Link(ctx, subject, *candidate); err != nil {
		return false, err
	}
	return true, nil
}
