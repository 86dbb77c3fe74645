// Package filter removes candidates that fail acceptance rules before
// extraction. Filters are independent predicates over (candidate, target):
// a Conjunction keeps a candidate only when every member accepts it, and
// the order of members affects only the audit trail.
package filter

import (
	"fmt"
	"strings"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/score"
)

// Filter prunes scored candidates against a target.
type Filter[T model.Candidate] interface {
	Apply(candidates []score.ScoredCandidate[T], target T, desc *audit.Description) []score.ScoredCandidate[T]
}

// Check is a single acceptance rule. It returns false plus a short reason
// when the candidate is rejected.
type Check[T model.Candidate] func(candidate score.ScoredCandidate[T], target T) (bool, string)

// Predicate turns a Check into a named Filter.
type Predicate[T model.Candidate] struct {
	Name  string
	Check Check[T]
}

// NewPredicate builds a named filter from a check.
func NewPredicate[T model.Candidate](name string, check Check[T]) Predicate[T] {
	return Predicate[T]{Name: name, Check: check}
}

func (p Predicate[T]) Apply(candidates []score.ScoredCandidate[T], target T, desc *audit.Description) []score.ScoredCandidate[T] {
	out := make([]score.ScoredCandidate[T], 0, len(candidates))
	for _, candidate := range candidates {
		ok, reason := p.Check(candidate, target)
		if !ok {
			desc.AppendText("%s removed by %s: %s", candidate.Candidate, p.Name, reason)
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func (p Predicate[T]) String() string { return p.Name }

// Conjunction applies each member in turn; survivors must pass all of them.
type Conjunction[T model.Candidate] struct {
	filters []Filter[T]
}

// All builds a conjunction. Nil members are skipped.
func All[T model.Candidate](filters ...Filter[T]) Conjunction[T] {
	kept := make([]Filter[T], 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	return Conjunction[T]{filters: kept}
}

// Len returns the number of member filters.
func (c Conjunction[T]) Len() int { return len(c.filters) }

// Names lists the member filters for metadata output.
func (c Conjunction[T]) Names() []string {
	names := make([]string, 0, len(c.filters))
	for _, f := range c.filters {
		names = append(names, filterName(f))
	}
	return names
}

func (c Conjunction[T]) String() string { return strings.Join(c.Names(), " & ") }

func (c Conjunction[T]) Apply(candidates []score.ScoredCandidate[T], target T, desc *audit.Description) []score.ScoredCandidate[T] {
	desc.StartStage("Filtering")
	defer desc.FinishStage()

	remaining := candidates
	for _, f := range c.filters {
		if len(remaining) == 0 {
			break
		}
		remaining = f.Apply(remaining, target, desc)
	}
	desc.AppendText("%d of %d candidates survived", len(remaining), len(candidates))
	return remaining
}

func filterName(f any) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", f)
}
