package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"equiv/internal/audit"
	"equiv/internal/logging"
	"equiv/internal/model"
	"equiv/internal/result"
	"equiv/internal/score"
)

// ErrIncompleteUpdater is returned when an updater is assembled without
// generators, a result builder or a handler.
var ErrIncompleteUpdater = errors.New("resolver: incomplete updater configuration")

// UpdaterConfig wires a ContentUpdater.
type UpdaterConfig[T model.Candidate] struct {
	Generators []Generator[T]
	Scorers    []Scorer[T]
	Builder    *result.Builder[T]
	Handler    ResultHandler[T]
}

// UpdaterMetadata describes how an updater resolves one publisher.
type UpdaterMetadata struct {
	Generators []string
	Scorers    []string
	Stages     result.Stages
}

// ContentUpdater runs generation, scoring and result building for one
// target and hands the result to its handler.
type ContentUpdater[T model.Candidate] struct {
	generators []Generator[T]
	scorers    []Scorer[T]
	builder    *result.Builder[T]
	handler    ResultHandler[T]
	logger     *slog.Logger
}

// NewContentUpdater validates cfg and returns an updater.
func NewContentUpdater[T model.Candidate](cfg UpdaterConfig[T], logger *slog.Logger) (*ContentUpdater[T], error) {
	if len(cfg.Generators) == 0 {
		return nil, fmt.Errorf("%w: at least one generator is required", ErrIncompleteUpdater)
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("%w: result builder is required", ErrIncompleteUpdater)
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("%w: result handler is required", ErrIncompleteUpdater)
	}
	return &ContentUpdater[T]{
		generators: append([]Generator[T](nil), cfg.Generators...),
		scorers:    append([]Scorer[T](nil), cfg.Scorers...),
		builder:    cfg.Builder,
		handler:    cfg.Handler,
		logger:     logging.NewComponentLogger(logger, "resolver"),
	}, nil
}

// Update implements the dispatcher's update function.
func (u *ContentUpdater[T]) Update(ctx context.Context, target T) (bool, error) {
	return u.UpdateEquivalences(ctx, target)
}

// UpdateEquivalences resolves target. It returns true once the result has
// been handed off, including when no equivalences were found.
func (u *ContentUpdater[T]) UpdateEquivalences(ctx context.Context, target T) (bool, error) {
	res, err := u.Resolve(ctx, target)
	if err != nil {
		return false, err
	}
	if err := u.handler.Handle(ctx, res); err != nil {
		return false, fmt.Errorf("handle result for %s: %w", target.Key(), err)
	}
	return true, nil
}

// Resolve computes the equivalence result for target without handling it.
func (u *ContentUpdater[T]) Resolve(ctx context.Context, target T) (result.EquivalenceResult[T], error) {
	start := time.Now()
	desc := audit.New()

	desc.StartStage("Generating candidates")
	perSource := make([]score.ScoredCandidates[T], 0, len(u.generators)+len(u.scorers))
	var candidates []T
	seen := make(map[string]struct{})
	for _, g := range u.generators {
		if err := ctx.Err(); err != nil {
			return result.EquivalenceResult[T]{}, err
		}
		generated, err := g.Generate(ctx, target, desc)
		if err != nil {
			return result.EquivalenceResult[T]{}, fmt.Errorf("generator %s: %w", g.Name(), err)
		}
		perSource = append(perSource, generated)
		for _, c := range generated.OrderedCandidates() {
			if _, dup := seen[c.Candidate.Key()]; dup {
				continue
			}
			seen[c.Candidate.Key()] = struct{}{}
			candidates = append(candidates, c.Candidate)
		}
	}
	desc.FinishStage()

	if len(candidates) > 0 && len(u.scorers) > 0 {
		desc.StartStage(fmt.Sprintf("Scoring %d candidates", len(candidates)))
		for _, s := range u.scorers {
			if err := ctx.Err(); err != nil {
				return result.EquivalenceResult[T]{}, err
			}
			scored, err := s.Score(ctx, target, candidates, desc)
			if err != nil {
				return result.EquivalenceResult[T]{}, fmt.Errorf("scorer %s: %w", s.Name(), err)
			}
			perSource = append(perSource, scored)
		}
		desc.FinishStage()
	}

	res := u.builder.ResultFor(target, perSource, desc)
	u.logger.Debug("resolved equivalences",
		logging.String(logging.FieldTarget, target.Key()),
		logging.Int("candidates", len(candidates)),
		logging.Int("strong", res.StrongCount()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Metadata describes the sources and stages used for publisher.
func (u *ContentUpdater[T]) Metadata(publisher model.Publisher) UpdaterMetadata {
	meta := UpdaterMetadata{Stages: u.builder.Describe(publisher)}
	for _, g := range u.generators {
		meta.Generators = append(meta.Generators, g.Name())
	}
	for _, s := range u.scorers {
		meta.Scorers = append(meta.Scorers, s.Name())
	}
	return meta
}
