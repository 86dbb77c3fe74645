package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/report"
)

// Linker performs same-as mutations. One Linker must be shared by every
// updater writing to the same store; it holds a lock across each
// read-modify-write so two updates claiming the same channel cannot lose a
// side of a link.
type Linker struct {
	store    Store
	reporter report.Reporter
	logger   *slog.Logger

	mu sync.Mutex
}

// NewLinker returns a linker writing to st.
func NewLinker(st Store, reporter report.Reporter, logger *slog.Logger) *Linker {
	if reporter == nil {
		reporter = report.Noop{}
	}
	return &Linker{
		store:    st,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "channels"),
	}
}

// RemoveLink clears subject's link when the linked channel still points back
// at subject. An empty or one-sided link is left alone and nothing is written.
func (l *Linker) RemoveLink(ctx context.Context, subject model.Channel) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.refresh(ctx, subject.URI)
	if err != nil {
		return err
	}
	_, err = l.removeLocked(ctx, current)
	return err
}

// Link makes subject and candidate point at each other. A different link held
// by either side is removed first.
func (l *Linker) Link(ctx context.Context, subject, candidate model.Channel) error {
	if subject.URI == candidate.URI {
		return fmt.Errorf("link %s: channel cannot be linked to itself", subject.URI)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, err := l.refresh(ctx, subject.URI)
	if err != nil {
		return err
	}
	c, err := l.refresh(ctx, candidate.URI)
	if err != nil {
		return err
	}

	if s.LinksTo(c.URI) && c.LinksTo(s.URI) {
		l.logger.Debug("channels already linked",
			logging.String(logging.FieldTarget, s.URI),
			logging.String(logging.FieldCandidate, c.URI),
		)
		return nil
	}
	if ref, ok := s.LinkedRef(); ok && ref.URI != c.URI {
		if s, err = l.removeLocked(ctx, s); err != nil {
			return err
		}
	}
	if ref, ok := c.LinkedRef(); ok && ref.URI != s.URI {
		if c, err = l.removeLocked(ctx, c); err != nil {
			return err
		}
	}

	s, err = l.store.CreateOrUpdate(ctx, s.WithSameAs(model.RefTo(c)))
	if err != nil {
		return fmt.Errorf("persist link on %s: %w", subject.URI, err)
	}
	if _, err = l.store.CreateOrUpdate(ctx, c.WithSameAs(model.RefTo(s))); err != nil {
		return fmt.Errorf("persist link on %s: %w", candidate.URI, err)
	}

	l.logger.Info("channel equivalence linked",
		logging.String(logging.FieldTarget, s.URI),
		logging.String(logging.FieldCandidate, c.URI),
		logging.String(logging.FieldPublisher, string(c.Publisher)),
		logging.String(logging.FieldEventType, "channel_linked"),
	)
	l.reporter.ReportSuccessfulEvent(ctx, s.URI, report.Payload{string(c.Publisher): c.URI})
	return nil
}

func (l *Linker) removeLocked(ctx context.Context, subject model.Channel) (model.Channel, error) {
	ref, ok := subject.LinkedRef()
	if !ok {
		return subject, nil
	}
	other, err := l.resolveRef(ctx, ref)
	if err != nil {
		return subject, err
	}
	if other == nil || !other.LinksTo(subject.URI) {
		l.logger.Debug("link already removed on the other side",
			logging.String(logging.FieldTarget, subject.URI),
			logging.String(logging.FieldCandidate, ref.URI),
		)
		return subject, nil
	}

	updated, err := l.store.CreateOrUpdate(ctx, subject.WithoutSameAs())
	if err != nil {
		return subject, fmt.Errorf("clear link on %s: %w", subject.URI, err)
	}
	if _, err := l.store.CreateOrUpdate(ctx, other.WithoutSameAs()); err != nil {
		return updated, fmt.Errorf("clear link on %s: %w", other.URI, err)
	}

	l.logger.Info("channel equivalence removed",
		logging.String(logging.FieldTarget, subject.URI),
		logging.String(logging.FieldCandidate, other.URI),
		logging.String(logging.FieldEventType, "channel_unlinked"),
	)
	l.reporter.ReportSuccessfulEvent(ctx, subject.URI, report.Payload{"removed": other.URI})
	return updated, nil
}

func (l *Linker) refresh(ctx context.Context, uri string) (model.Channel, error) {
	ch, err := l.store.Resolve(ctx, uri)
	if err != nil {
		return model.Channel{}, fmt.Errorf("resolve %s: %w", uri, err)
	}
	if ch == nil {
		return model.Channel{}, fmt.Errorf("%w: %s", ErrUnresolvable, uri)
	}
	return *ch, nil
}

func (l *Linker) resolveRef(ctx context.Context, ref model.ChannelRef) (*model.Channel, error) {
	if ref.ID > 0 {
		ch, err := l.store.ResolveID(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve channel %d: %w", ref.ID, err)
		}
		if ch != nil {
			return ch, nil
		}
	}
	if ref.URI == "" {
		return nil, nil
	}
	ch, err := l.store.Resolve(ctx, ref.URI)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref.URI, err)
	}
	return ch, nil
}
