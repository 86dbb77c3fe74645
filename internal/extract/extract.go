// Package extract selects the strong equivalences for one publisher bin.
//
// Every Extractor receives the bin's surviving candidates already sorted by
// score descending (ties broken by the candidate's string form) and returns
// zero, one or many winners. A MultipleCandidate pre-check runs before the
// configured extractor and can claim the bin when more than one winner is
// correct.
package extract

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/score"
)

// epsilon is the tolerance used when comparing scores for ties.
const epsilon = 1e-6

// ErrInvalidParameter marks extractor construction failures.
var ErrInvalidParameter = errors.New("extract: invalid parameter")

// Extractor chooses winners from a sorted, publisher-scoped candidate list.
type Extractor[T model.Candidate] interface {
	Extract(candidates []score.ScoredCandidate[T], target T, desc *audit.Description) []score.ScoredCandidate[T]
}

// MultipleCandidate decides whether a bin legitimately has several winners.
// When it returns false the configured Extractor handles the bin.
type MultipleCandidate[T model.Candidate] interface {
	ExtractMultiple(candidates []score.ScoredCandidate[T], target T, desc *audit.Description) ([]score.ScoredCandidate[T], bool)
}

// Top picks the highest-scored candidate unconditionally.
type Top[T model.Candidate] struct{}

// NewTop returns the top extractor.
func NewTop[T model.Candidate]() Top[T] { return Top[T]{} }

func (Top[T]) String() string { return "top" }

func (Top[T]) Extract(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) []score.ScoredCandidate[T] {
	if len(candidates) == 0 {
		return nil
	}
	desc.AppendText("top: %s (%s)", candidates[0].Candidate, candidates[0].Score)
	return candidates[:1:1]
}

// AllOverOrEqualThreshold extracts every candidate scoring at least the
// threshold.
type AllOverOrEqualThreshold[T model.Candidate] struct {
	threshold float64
}

// NewAllOverOrEqualThreshold returns the threshold extractor.
func NewAllOverOrEqualThreshold[T model.Candidate](threshold float64) AllOverOrEqualThreshold[T] {
	return AllOverOrEqualThreshold[T]{threshold: threshold}
}

func (a AllOverOrEqualThreshold[T]) String() string {
	return fmt.Sprintf("all>=%g", a.threshold)
}

func (a AllOverOrEqualThreshold[T]) Extract(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) []score.ScoredCandidate[T] {
	out := atLeast(candidates, a.threshold)
	desc.AppendText("%s: %d of %d extracted", a, len(out), len(candidates))
	return out
}

// MultiStageThreshold finds the highest threshold any candidate meets and
// extracts every candidate meeting that threshold, ignoring lower brackets.
type MultiStageThreshold[T model.Candidate] struct {
	thresholds []float64
}

// NewMultiStageThreshold validates that thresholds are non-empty and
// strictly descending.
func NewMultiStageThreshold[T model.Candidate](thresholds ...float64) (MultiStageThreshold[T], error) {
	if len(thresholds) == 0 {
		return MultiStageThreshold[T]{}, fmt.Errorf("%w: multi-stage thresholds empty", ErrInvalidParameter)
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] >= thresholds[i-1] {
			return MultiStageThreshold[T]{}, fmt.Errorf("%w: multi-stage thresholds must be strictly descending, got %v", ErrInvalidParameter, thresholds)
		}
	}
	cp := make([]float64, len(thresholds))
	copy(cp, thresholds)
	return MultiStageThreshold[T]{thresholds: cp}, nil
}

func (m MultiStageThreshold[T]) String() string {
	parts := make([]string, 0, len(m.thresholds))
	for _, t := range m.thresholds {
		parts = append(parts, strconv.FormatFloat(t, 'g', -1, 64))
	}
	return "multi-stage(" + strings.Join(parts, ",") + ")"
}

func (m MultiStageThreshold[T]) Extract(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) []score.ScoredCandidate[T] {
	for _, threshold := range m.thresholds {
		out := atLeast(candidates, threshold)
		if len(out) > 0 {
			desc.AppendText("%s: %d candidates at or above %g", m, len(out), threshold)
			return out
		}
	}
	desc.AppendText("%s: no candidate met any threshold", m)
	return nil
}

// PercentThreshold extracts the top candidate when its score exceeds the
// given percentage of the sum of every candidate's score. Negative scores
// lower the sum, so a lone positive candidate among negatives is accepted;
// a top candidate that is not positive never is.
type PercentThreshold[T model.Candidate] struct {
	fraction float64
}

// NewPercentThreshold accepts percent in (0, 100].
func NewPercentThreshold[T model.Candidate](percent float64) (PercentThreshold[T], error) {
	if percent <= 0 || percent > 100 || math.IsNaN(percent) {
		return PercentThreshold[T]{}, fmt.Errorf("%w: percent %g outside (0,100]", ErrInvalidParameter, percent)
	}
	return PercentThreshold[T]{fraction: percent / 100}, nil
}

func (p PercentThreshold[T]) String() string {
	return fmt.Sprintf("percent(%g%%)", p.fraction*100)
}

func (p PercentThreshold[T]) Extract(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) []score.ScoredCandidate[T] {
	if len(candidates) == 0 {
		return nil
	}
	top := candidates[0]
	if !top.Score.GreaterThan(0) {
		desc.AppendText("%s: top %s score %s not positive", p, top.Candidate, top.Score)
		return nil
	}
	var total float64
	for _, c := range candidates {
		total += c.Score.Value()
	}
	required := total * p.fraction
	if top.Score.Value() > required {
		desc.AppendText("%s: %s (%s) exceeds %g of total %g", p, top.Candidate, top.Score, required, total)
		return candidates[:1:1]
	}
	desc.AppendText("%s: %s (%s) does not exceed %g of total %g", p, top.Candidate, top.Score, required, total)
	return nil
}

// PercentAboveNextBest extracts the top candidate when it is alone or its
// score is at least multiplier times the next best.
type PercentAboveNextBest[T model.Candidate] struct {
	multiplier float64
}

// NewPercentAboveNextBest requires a positive multiplier.
func NewPercentAboveNextBest[T model.Candidate](multiplier float64) (PercentAboveNextBest[T], error) {
	if multiplier <= 0 || math.IsNaN(multiplier) {
		return PercentAboveNextBest[T]{}, fmt.Errorf("%w: next-best multiplier %g must be positive", ErrInvalidParameter, multiplier)
	}
	return PercentAboveNextBest[T]{multiplier: multiplier}, nil
}

func (p PercentAboveNextBest[T]) String() string {
	return fmt.Sprintf("above-next-best(x%g)", p.multiplier)
}

func (p PercentAboveNextBest[T]) Extract(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) []score.ScoredCandidate[T] {
	if len(candidates) == 0 {
		return nil
	}
	top := candidates[0]
	if top.Score.IsNull() {
		return nil
	}
	if len(candidates) == 1 || candidates[1].Score.IsNull() {
		desc.AppendText("%s: %s is the only scored candidate", p, top.Candidate)
		return candidates[:1:1]
	}
	next := candidates[1]
	if top.Score.Value() >= next.Score.Value()*p.multiplier {
		desc.AppendText("%s: %s (%s) clears next best %s (%s)", p, top.Candidate, top.Score, next.Candidate, next.Score)
		return candidates[:1:1]
	}
	desc.AppendText("%s: %s (%s) too close to %s (%s)", p, top.Candidate, top.Score, next.Candidate, next.Score)
	return nil
}

// AllWithSameHighscoreAndPublisher extracts every leading candidate that
// ties with the top score and shares the top candidate's publisher. With no
// tie it extracts the top candidate alone.
type AllWithSameHighscoreAndPublisher[T model.Candidate] struct{}

// NewAllWithSameHighscoreAndPublisher returns the tie-aware extractor.
func NewAllWithSameHighscoreAndPublisher[T model.Candidate]() AllWithSameHighscoreAndPublisher[T] {
	return AllWithSameHighscoreAndPublisher[T]{}
}

func (AllWithSameHighscoreAndPublisher[T]) String() string { return "same-highscore-and-publisher" }

func (a AllWithSameHighscoreAndPublisher[T]) Extract(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) []score.ScoredCandidate[T] {
	out := leadingTies(candidates, epsilon)
	if len(out) > 0 {
		desc.AppendText("%s: %d extracted at %s", a, len(out), out[0].Score)
	}
	return out
}

// SameHighscoreMultiple claims a bin when two or more leading candidates tie
// exactly on a real score at or above MinScore and share a publisher, which
// happens when a catalogue ingests the same title more than once.
type SameHighscoreMultiple[T model.Candidate] struct {
	MinScore float64
}

// NewSameHighscoreMultiple returns the pre-check.
func NewSameHighscoreMultiple[T model.Candidate](minScore float64) SameHighscoreMultiple[T] {
	return SameHighscoreMultiple[T]{MinScore: minScore}
}

func (s SameHighscoreMultiple[T]) String() string {
	return fmt.Sprintf("same-highscore-multiple(>=%g)", s.MinScore)
}

func (s SameHighscoreMultiple[T]) ExtractMultiple(candidates []score.ScoredCandidate[T], _ T, desc *audit.Description) ([]score.ScoredCandidate[T], bool) {
	if len(candidates) < 2 || !candidates[0].Score.AtLeast(s.MinScore) {
		return nil, false
	}
	ties := leadingTies(candidates, 0)
	if len(ties) < 2 {
		return nil, false
	}
	desc.AppendText("%s: %d candidates from %s tie at %s", s, len(ties), ties[0].Candidate.Source(), ties[0].Score)
	return ties, true
}

func atLeast[T model.Candidate](candidates []score.ScoredCandidate[T], threshold float64) []score.ScoredCandidate[T] {
	var out []score.ScoredCandidate[T]
	for _, c := range candidates {
		if c.Score.AtLeast(threshold) {
			out = append(out, c)
		}
	}
	return out
}

// leadingTies returns the run of candidates from the head of the sorted
// list whose score is within tolerance of the top and whose publisher
// matches the top candidate's.
func leadingTies[T model.Candidate](candidates []score.ScoredCandidate[T], tolerance float64) []score.ScoredCandidate[T] {
	if len(candidates) == 0 || candidates[0].Score.IsNull() {
		return nil
	}
	top := candidates[0]
	out := []score.ScoredCandidate[T]{top}
	for _, c := range candidates[1:] {
		if c.Score.IsNull() || math.Abs(c.Score.Value()-top.Score.Value()) > tolerance {
			break
		}
		if c.Candidate.Source() != top.Candidate.Source() {
			continue
		}
		out = append(out, c)
	}
	return out
}
