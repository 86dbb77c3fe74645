package score

import (
	"slices"
	"strings"

	"equiv/internal/model"
)

// ScoredCandidate pairs a candidate with the score it received.
type ScoredCandidate[T model.Candidate] struct {
	Candidate T
	Score     Score
}

// NewScoredCandidate builds a pair.
func NewScoredCandidate[T model.Candidate](candidate T, s Score) ScoredCandidate[T] {
	return ScoredCandidate[T]{Candidate: candidate, Score: s}
}

// CompareCandidates orders by score descending, then by the candidate's
// string form so ties resolve the same way on every run.
func CompareCandidates[T model.Candidate](a, b ScoredCandidate[T]) int {
	if c := Compare(a.Score, b.Score); c != 0 {
		return c
	}
	return strings.Compare(a.Candidate.String(), b.Candidate.String())
}

// SortCandidates sorts in place using CompareCandidates.
func SortCandidates[T model.Candidate](candidates []ScoredCandidate[T]) {
	slices.SortStableFunc(candidates, CompareCandidates[T])
}

// Sorted returns a sorted copy.
func Sorted[T model.Candidate](candidates []ScoredCandidate[T]) []ScoredCandidate[T] {
	out := slices.Clone(candidates)
	SortCandidates(out)
	return out
}

// ScoredCandidates is the set of scores one source (a generator or scorer)
// assigned. Entries keep insertion order; each candidate key appears once.
type ScoredCandidates[T model.Candidate] struct {
	source  string
	entries []ScoredCandidate[T]
	index   map[string]int
}

// Empty returns a named group with no entries.
func Empty[T model.Candidate](source string) ScoredCandidates[T] {
	return ScoredCandidates[T]{source: source}
}

// FromList builds a group from pairs; repeat keys are summed.
func FromList[T model.Candidate](source string, pairs []ScoredCandidate[T]) ScoredCandidates[T] {
	b := NewBuilder[T](source)
	for _, pair := range pairs {
		b.AddScore(pair.Candidate, pair.Score)
	}
	return b.Build()
}

// Source names the generator or scorer that produced the scores.
func (s ScoredCandidates[T]) Source() string { return s.source }

// Len returns the number of distinct candidates.
func (s ScoredCandidates[T]) Len() int { return len(s.entries) }

// Candidates returns the entries in insertion order.
func (s ScoredCandidates[T]) Candidates() []ScoredCandidate[T] {
	return slices.Clone(s.entries)
}

// OrderedCandidates returns the entries sorted by CompareCandidates.
func (s ScoredCandidates[T]) OrderedCandidates() []ScoredCandidate[T] {
	return Sorted(s.entries)
}

// ScoreFor returns the score recorded for key and whether the source
// mentioned the candidate at all.
func (s ScoredCandidates[T]) ScoreFor(key string) (Score, bool) {
	idx, ok := s.index[key]
	if !ok {
		return Null(), false
	}
	return s.entries[idx].Score, true
}

// Builder accumulates scores for a source.
type Builder[T model.Candidate] struct {
	source  string
	entries []ScoredCandidate[T]
	index   map[string]int
}

// NewBuilder starts a group for source.
func NewBuilder[T model.Candidate](source string) *Builder[T] {
	return &Builder[T]{source: source, index: make(map[string]int)}
}

// AddScore records a score, adding it to any score already present for the
// same candidate.
func (b *Builder[T]) AddScore(candidate T, s Score) *Builder[T] {
	key := candidate.Key()
	if idx, ok := b.index[key]; ok {
		b.entries[idx].Score = b.entries[idx].Score.Add(s)
		return b
	}
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, ScoredCandidate[T]{Candidate: candidate, Score: s})
	return b
}

// Build snapshots the builder.
func (b *Builder[T]) Build() ScoredCandidates[T] {
	index := make(map[string]int, len(b.index))
	for k, v := range b.index {
		index[k] = v
	}
	return ScoredCandidates[T]{
		source:  b.source,
		entries: slices.Clone(b.entries),
		index:   index,
	}
}
