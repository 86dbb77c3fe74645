package resolver

import (
	"context"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/score"
	"equiv/internal/textutil"
)

// contentScorer adapts a per-candidate function to Scorer.
type contentScorer struct {
	name string
	fn   func(target, candidate model.Content) score.Score
}

func (s contentScorer) Name() string { return s.name }

func (s contentScorer) Score(_ context.Context, target model.Content, candidates []model.Content, desc *audit.Description) (score.ScoredCandidates[model.Content], error) {
	b := score.NewBuilder[model.Content](s.name)
	scored := 0
	for _, c := range candidates {
		sc := s.fn(target, c)
		if sc.IsReal() {
			scored++
		}
		b.AddScore(c, sc)
	}
	desc.AppendText("%s: scored %d of %d candidates", s.name, scored, len(candidates))
	return b.Build(), nil
}

// TitleScorer awards the exact title score for titles equal after folding,
// the partial score for close titles and zero otherwise. Blank titles get
// no score.
func TitleScorer(policy Policy) Scorer[model.Content] {
	policy = policy.normalized()
	return contentScorer{name: "title", fn: func(target, candidate model.Content) score.Score {
		a, b := textutil.TitleKey(target.Title), textutil.TitleKey(candidate.Title)
		if a == "" || b == "" {
			return score.Null()
		}
		if a == b {
			return score.Of(policy.ExactTitleScore)
		}
		if textutil.TitleSimilarity(target.Title, candidate.Title) >= policy.PartialTitleSimilarity {
			return score.Of(policy.PartialTitleScore)
		}
		return score.Zero
	}}
}

// YearScorer scores one for the same year, zero when a year apart and minus
// one otherwise. Unknown years get no score.
func YearScorer() Scorer[model.Content] {
	return contentScorer{name: "year", fn: func(target, candidate model.Content) score.Score {
		if target.Year == 0 || candidate.Year == 0 {
			return score.Null()
		}
		switch diff := target.Year - candidate.Year; {
		case diff == 0:
			return score.Of(1)
		case diff == 1 || diff == -1:
			return score.Zero
		default:
			return score.Of(-1)
		}
	}}
}

// SequenceScorer compares series and episode numbers. Agreement on every
// number both sides know scores one; any disagreement scores minus one.
func SequenceScorer() Scorer[model.Content] {
	return contentScorer{name: "sequence", fn: func(target, candidate model.Content) score.Score {
		compared := 0
		for _, pair := range [][2]int{
			{target.SeriesNumber, candidate.SeriesNumber},
			{target.EpisodeNumber, candidate.EpisodeNumber},
		} {
			if pair[0] == 0 || pair[1] == 0 {
				continue
			}
			if pair[0] != pair[1] {
				return score.Of(-1)
			}
			compared++
		}
		if compared == 0 {
			return score.Null()
		}
		return score.Of(1)
	}}
}
