package result_test

import (
	"errors"
	"fmt"
	"testing"

	"equiv/internal/audit"
	"equiv/internal/combine"
	"equiv/internal/extract"
	"equiv/internal/filter"
	"equiv/internal/model"
	"equiv/internal/result"
	"equiv/internal/score"
)

var target = model.Content{URI: "http://bbc.co.uk/target", Publisher: model.PublisherBBC, Title: "Target"}

func topBuilder(t *testing.T) *result.Builder[model.Content] {
	t.Helper()
	b, err := result.NewBuilder(result.BuilderConfig[model.Content]{
		Combiner:  combine.NewAdding[model.Content](),
		Filter:    filter.AlwaysTrue[model.Content](),
		Extractor: extract.NewTop[model.Content](),
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func samePublisherScores(source string, publisher model.Publisher, values ...float64) score.ScoredCandidates[model.Content] {
	b := score.NewBuilder[model.Content](source)
	for i, v := range values {
		c := model.Content{URI: fmt.Sprintf("http://%s/%d", publisher, i), Publisher: publisher}
		b.AddScore(c, score.Of(v))
	}
	return b.Build()
}

func TestTopExtractorYieldsOneEquivalencePerPublisher(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"ties at the top", []float64{5.0, 5.0, 4.5, 4.5}, 5.0},
		{"single highest", []float64{1, 2, 2, 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := topBuilder(t).ResultFor(target, []score.ScoredCandidates[model.Content]{
				samePublisherScores("title", model.PublisherPA, tt.scores...),
			}, audit.New())

			winners := res.StrongEquivalences(model.PublisherPA)
			if len(winners) != 1 {
				t.Fatalf("expected exactly one strong equivalence, got %d", len(winners))
			}
			if winners[0].Score.Value() != tt.want {
				t.Fatalf("unexpected winner score %s", winners[0].Score)
			}
			if res.StrongCount() != 1 {
				t.Fatalf("expected one strong equivalence overall, got %d", res.StrongCount())
			}
		})
	}
}

func TestTopExtractorTieBreakIsDeterministic(t *testing.T) {
	var first string
	for i := 0; i < 20; i++ {
		res := topBuilder(t).ResultFor(target, []score.ScoredCandidates[model.Content]{
			samePublisherScores("title", model.PublisherPA, 1, 2, 2, 2),
		}, nil)
		uri := res.StrongEquivalences(model.PublisherPA)[0].Candidate.URI
		if first == "" {
			first = uri
		}
		if uri != first {
			t.Fatalf("tie-break changed between runs: %s vs %s", first, uri)
		}
	}
	if first != "http://pressassociation.com/1" {
		t.Fatalf("expected lowest string key among ties, got %s", first)
	}
}

func TestPublisherBinsAreDecidedIndependently(t *testing.T) {
	threshold := extract.NewAllOverOrEqualThreshold[model.Content](1)
	b, err := result.NewBuilder(result.BuilderConfig[model.Content]{
		Combiner:  combine.NewAdding[model.Content](),
		Filter:    filter.All[model.Content](filter.MinimumScore[model.Content](0.2)),
		Extractor: extract.NewTop[model.Content](),
		PublisherExtractors: map[model.Publisher]extract.Extractor[model.Content]{
			model.PublisherITV: threshold,
		},
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	pa := samePublisherScores("title", model.PublisherPA, 0.3, 0.3, 0.3, 0.3, 0.3)
	itv := samePublisherScores("title", model.PublisherITV, 2, 1.5, 0.5)
	c4 := samePublisherScores("title", model.PublisherC4, 0.1)
	merged := score.NewBuilder[model.Content]("title")
	for _, g := range []score.ScoredCandidates[model.Content]{pa, itv, c4} {
		for _, c := range g.Candidates() {
			merged.AddScore(c.Candidate, c.Score)
		}
	}

	res := b.ResultFor(target, []score.ScoredCandidates[model.Content]{merged.Build()}, nil)

	if got := len(res.StrongEquivalences(model.PublisherPA)); got != 1 {
		t.Fatalf("PA: expected one winner from top extractor, got %d", got)
	}
	if got := len(res.StrongEquivalences(model.PublisherITV)); got != 2 {
		t.Fatalf("ITV: expected two winners from threshold extractor, got %d", got)
	}
	if got := len(res.StrongEquivalences(model.PublisherC4)); got != 0 {
		t.Fatalf("C4: expected filtered bin to be empty, got %d", got)
	}
	pubs := res.Publishers()
	if len(pubs) != 2 || pubs[0] != model.PublisherITV || pubs[1] != model.PublisherPA {
		t.Fatalf("unexpected publishers %v", pubs)
	}
	if res.Combined.Len() != 9 {
		t.Fatalf("expected all candidates in combined scores, got %d", res.Combined.Len())
	}
}

func TestMultipleCandidatePreemptsExtractor(t *testing.T) {
	b, err := result.NewBuilder(result.BuilderConfig[model.Content]{
		Combiner:  combine.NewAdding[model.Content](),
		Filter:    filter.AlwaysTrue[model.Content](),
		Extractor: extract.NewTop[model.Content](),
		Multiple:  extract.NewSameHighscoreMultiple[model.Content](1),
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	desc := audit.New()
	res := b.ResultFor(target, []score.ScoredCandidates[model.Content]{
		samePublisherScores("title", model.PublisherPA, 3, 3, 1),
		samePublisherScores("title", model.PublisherITV, 3, 2),
	}, desc)

	if got := len(res.StrongEquivalences(model.PublisherPA)); got != 2 {
		t.Fatalf("PA: expected pre-check to extract both tied candidates, got %d", got)
	}
	if got := len(res.StrongEquivalences(model.PublisherITV)); got != 1 {
		t.Fatalf("ITV: expected top extractor, got %d", got)
	}
	if !desc.Contains("Extracting strong equivalences") {
		t.Fatalf("expected extraction stage in audit trail:\n%s", desc)
	}
}

func TestEmptyInputProducesEmptyResult(t *testing.T) {
	res := topBuilder(t).ResultFor(target, nil, nil)
	if res.StrongCount() != 0 || res.Combined.Len() != 0 {
		t.Fatalf("expected empty result, got %d strong / %d combined", res.StrongCount(), res.Combined.Len())
	}
	if res.Description == nil {
		t.Fatal("expected a description to be created")
	}
}

func TestNewBuilderRequiresStages(t *testing.T) {
	cases := []result.BuilderConfig[model.Content]{
		{Filter: filter.AlwaysTrue[model.Content](), Extractor: extract.NewTop[model.Content]()},
		{Combiner: combine.NewAdding[model.Content](), Extractor: extract.NewTop[model.Content]()},
		{Combiner: combine.NewAdding[model.Content](), Filter: filter.AlwaysTrue[model.Content]()},
	}
	for i, cfg := range cases {
		if _, err := result.NewBuilder(cfg); !errors.Is(err, result.ErrIncompleteConfig) {
			t.Fatalf("case %d: expected ErrIncompleteConfig, got %v", i, err)
		}
	}
}
