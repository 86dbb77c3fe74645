// Package result assembles an EquivalenceResult from per-source scores:
// combine, filter, partition by publisher, extract per publisher bin.
//
// Each publisher bin is decided independently so that one catalogue's
// abundance of weak matches cannot crowd out another catalogue's single
// strong match, and so each catalogue can use its own extraction policy.
package result

import (
	"slices"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/score"
)

// EquivalenceResult is the immutable outcome of one resolution run.
type EquivalenceResult[T model.Candidate] struct {
	Target      T
	RawScores   []score.ScoredCandidates[T]
	Combined    score.ScoredCandidates[T]
	strong      map[model.Publisher][]score.ScoredCandidate[T]
	Description *audit.Description
}

// New assembles a result directly. Winners are grouped by their publisher.
func New[T model.Candidate](target T, raw []score.ScoredCandidates[T], combined score.ScoredCandidates[T], winners []score.ScoredCandidate[T], desc *audit.Description) EquivalenceResult[T] {
	strong := make(map[model.Publisher][]score.ScoredCandidate[T])
	for _, w := range winners {
		p := w.Candidate.Source()
		strong[p] = append(strong[p], w)
	}
	return EquivalenceResult[T]{
		Target:      target,
		RawScores:   slices.Clone(raw),
		Combined:    combined,
		strong:      strong,
		Description: desc,
	}
}

// Publishers lists the publishers with at least one strong equivalence, in
// key order.
func (r EquivalenceResult[T]) Publishers() []model.Publisher {
	out := make([]model.Publisher, 0, len(r.strong))
	for p := range r.strong {
		out = append(out, p)
	}
	model.SortPublishers(out)
	return out
}

// StrongEquivalences returns the winners chosen for publisher.
func (r EquivalenceResult[T]) StrongEquivalences(publisher model.Publisher) []score.ScoredCandidate[T] {
	return slices.Clone(r.strong[publisher])
}

// AllStrongEquivalences returns every winner, grouped by publisher in key
// order.
func (r EquivalenceResult[T]) AllStrongEquivalences() []score.ScoredCandidate[T] {
	var out []score.ScoredCandidate[T]
	for _, p := range r.Publishers() {
		out = append(out, r.strong[p]...)
	}
	return out
}

// StrongCount returns the number of winners across all publishers.
func (r EquivalenceResult[T]) StrongCount() int {
	n := 0
	for _, winners := range r.strong {
		n += len(winners)
	}
	return n
}
