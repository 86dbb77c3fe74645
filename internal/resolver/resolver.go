package resolver

import (
	"context"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/result"
	"equiv/internal/score"
)

// Generator finds candidates for a target and scores them.
type Generator[T model.Candidate] interface {
	Name() string
	Generate(ctx context.Context, target T, desc *audit.Description) (score.ScoredCandidates[T], error)
}

// Scorer scores candidates found by the generators.
type Scorer[T model.Candidate] interface {
	Name() string
	Score(ctx context.Context, target T, candidates []T, desc *audit.Description) (score.ScoredCandidates[T], error)
}

// ResultHandler receives every finished resolution.
type ResultHandler[T model.Candidate] interface {
	Handle(ctx context.Context, res result.EquivalenceResult[T]) error
}

// HandlerFunc adapts a function to ResultHandler.
type HandlerFunc[T model.Candidate] func(ctx context.Context, res result.EquivalenceResult[T]) error

func (f HandlerFunc[T]) Handle(ctx context.Context, res result.EquivalenceResult[T]) error {
	return f(ctx, res)
}
