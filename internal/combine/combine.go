// Package combine merges the per-source score groups produced by candidate
// generators and scorers into a single combined group.
//
// Three strategies are provided: Adding sums real scores, Averaging divides
// sums by the per-publisher maximum number of sources that had an opinion,
// and RequiredScoreFiltering decorates either of them so that a named
// source must approve a candidate before its combined score counts.
package combine

import (
	"errors"
	"fmt"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/score"
)

// CombinedSource is the source name carried by combined groups.
const CombinedSource = "combined"

// ErrNilDelegate is returned when a decorating combiner is built without a
// delegate.
var ErrNilDelegate = errors.New("combine: delegate combiner is nil")

// Combiner merges several sources' scores into one group.
type Combiner[T model.Candidate] interface {
	Combine(sources []score.ScoredCandidates[T], desc *audit.Description) score.ScoredCandidates[T]
}

// Func adapts a plain function to Combiner.
type Func[T model.Candidate] func(sources []score.ScoredCandidates[T], desc *audit.Description) score.ScoredCandidates[T]

func (f Func[T]) Combine(sources []score.ScoredCandidates[T], desc *audit.Description) score.ScoredCandidates[T] {
	return f(sources, desc)
}

// Adding sums every real score a candidate received. A candidate that no
// source gave a real score ends up null.
type Adding[T model.Candidate] struct{}

// NewAdding returns the summing combiner.
func NewAdding[T model.Candidate]() Adding[T] { return Adding[T]{} }

func (Adding[T]) String() string { return "adding" }

func (Adding[T]) Combine(sources []score.ScoredCandidates[T], desc *audit.Description) score.ScoredCandidates[T] {
	b := score.NewBuilder[T](CombinedSource)
	for _, source := range sources {
		for _, entry := range source.Candidates() {
			b.AddScore(entry.Candidate, entry.Score)
		}
	}
	combined := b.Build()
	desc.AppendText("adding combiner: %d sources, %d candidates", len(sources), combined.Len())
	return combined
}

// Averaging divides each candidate's summed real scores by the highest
// number of real scores any candidate of the same publisher received. This
// keeps candidates comparable when some generators only fire for part of a
// publisher's catalogue.
type Averaging[T model.Candidate] struct {
	// IgnoreNullScoringCandidate forces candidates that only one source had
	// an opinion about to an explicit zero. That source is usually the
	// generator that found the candidate, so no scorer agreed with it.
	IgnoreNullScoringCandidate bool
}

// NewAveraging returns the null-score-aware averaging combiner.
func NewAveraging[T model.Candidate](ignoreNullScoringCandidate bool) Averaging[T] {
	return Averaging[T]{IgnoreNullScoringCandidate: ignoreNullScoringCandidate}
}

func (a Averaging[T]) String() string {
	if a.IgnoreNullScoringCandidate {
		return "averaging(ignore-null-scoring)"
	}
	return "averaging"
}

func (a Averaging[T]) Combine(sources []score.ScoredCandidates[T], desc *audit.Description) score.ScoredCandidates[T] {
	sums := score.NewBuilder[T](CombinedSource)
	counts := make(map[string]int)
	for _, source := range sources {
		for _, entry := range source.Candidates() {
			sums.AddScore(entry.Candidate, entry.Score)
			if entry.Score.IsReal() {
				counts[entry.Candidate.Key()]++
			}
		}
	}
	summed := sums.Build()

	maxByPublisher := make(map[model.Publisher]int)
	for _, entry := range summed.Candidates() {
		publisher := entry.Candidate.Source()
		if n := counts[entry.Candidate.Key()]; n > maxByPublisher[publisher] {
			maxByPublisher[publisher] = n
		}
	}

	out := score.NewBuilder[T](CombinedSource)
	for _, entry := range summed.Candidates() {
		key := entry.Candidate.Key()
		s := entry.Score
		switch {
		case s.IsNull():
			// no opinion anywhere; stays null
		case a.IgnoreNullScoringCandidate && counts[key] == 1:
			desc.AppendText("%s scored by a single source, forcing zero", entry.Candidate)
			s = score.Zero
		default:
			s = s.Average(maxByPublisher[entry.Candidate.Source()])
		}
		out.AddScore(entry.Candidate, s)
	}
	combined := out.Build()
	desc.AppendText("averaging combiner: %d sources, %d candidates, %d publishers",
		len(sources), combined.Len(), len(maxByPublisher))
	return combined
}

// Threshold decides whether a required source's score approves a candidate.
type Threshold func(score.Score) bool

// GreaterThan approves real scores strictly above min.
func GreaterThan(min float64) Threshold {
	return func(s score.Score) bool { return s.GreaterThan(min) }
}

// RequiredScoreFiltering wraps another combiner. After the delegate has
// combined, any candidate the required source did not score, or scored
// below its threshold, has its combined score replaced with null.
type RequiredScoreFiltering[T model.Candidate] struct {
	delegate  Combiner[T]
	source    string
	threshold Threshold
}

// RequiredOption configures a RequiredScoreFiltering combiner.
type RequiredOption func(*requiredOptions)

type requiredOptions struct {
	threshold Threshold
}

// WithThreshold replaces the default score > 0 approval rule.
func WithThreshold(threshold Threshold) RequiredOption {
	return func(o *requiredOptions) {
		if threshold != nil {
			o.threshold = threshold
		}
	}
}

// NewRequiredScoreFiltering decorates delegate with a required source.
func NewRequiredScoreFiltering[T model.Candidate](delegate Combiner[T], source string, opts ...RequiredOption) (*RequiredScoreFiltering[T], error) {
	if delegate == nil {
		return nil, ErrNilDelegate
	}
	if source == "" {
		return nil, fmt.Errorf("combine: required source name is empty")
	}
	options := requiredOptions{threshold: GreaterThan(0)}
	for _, opt := range opts {
		opt(&options)
	}
	return &RequiredScoreFiltering[T]{delegate: delegate, source: source, threshold: options.threshold}, nil
}

// RequiredSource returns the name of the source that must approve candidates.
func (r *RequiredScoreFiltering[T]) RequiredSource() string { return r.source }

func (r *RequiredScoreFiltering[T]) String() string {
	return fmt.Sprintf("required(%s) over %v", r.source, r.delegate)
}

func (r *RequiredScoreFiltering[T]) Combine(sources []score.ScoredCandidates[T], desc *audit.Description) score.ScoredCandidates[T] {
	combined := r.delegate.Combine(sources, desc)

	required, ok := findSource(sources, r.source)
	if !ok {
		desc.AppendText("required source %s not present, scores unfiltered", r.source)
		return combined
	}

	out := score.NewBuilder[T](combined.Source())
	for _, entry := range combined.Candidates() {
		s := entry.Score
		requiredScore, scored := required.ScoreFor(entry.Candidate.Key())
		if !scored || !r.threshold(requiredScore) {
			if s.IsReal() {
				desc.AppendText("%s failed required source %s (%s), score nulled", entry.Candidate, r.source, requiredScore)
			}
			s = score.Null()
		}
		out.AddScore(entry.Candidate, s)
	}
	return out.Build()
}

func findSource[T model.Candidate](sources []score.ScoredCandidates[T], name string) (score.ScoredCandidates[T], bool) {
	for _, source := range sources {
		if source.Source() == name {
			return source, true
		}
	}
	return score.ScoredCandidates[T]{}, false
}
