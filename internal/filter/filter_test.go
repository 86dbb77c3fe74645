package filter_test

import (
	"slices"
	"testing"

	"equiv/internal/audit"
	"equiv/internal/filter"
	"equiv/internal/model"
	"equiv/internal/score"
)

func scored(c model.Content, v float64) score.ScoredCandidate[model.Content] {
	return score.NewScoredCandidate(c, score.Of(v))
}

func keys(candidates []score.ScoredCandidate[model.Content]) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Candidate.URI)
	}
	return out
}

func TestConjunctionRequiresEveryFilter(t *testing.T) {
	target := model.Content{URI: "t", Publisher: model.PublisherBBC, MediaType: model.MediaVideo, Published: true}
	candidates := []score.ScoredCandidate[model.Content]{
		scored(model.Content{ID: 1, URI: "keep", Publisher: model.PublisherPA, MediaType: model.MediaVideo, Published: true}, 2),
		scored(model.Content{ID: 2, URI: "low", Publisher: model.PublisherPA, MediaType: model.MediaVideo, Published: true}, 0.1),
		scored(model.Content{ID: 3, URI: "audio", Publisher: model.PublisherPA, MediaType: model.MediaAudio, Published: true}, 2),
		scored(model.Content{ID: 4, URI: "hidden", Publisher: model.PublisherPA, MediaType: model.MediaVideo}, 2),
		scored(model.Content{ID: 5, URI: "same", Publisher: model.PublisherBBC, MediaType: model.MediaVideo, Published: true}, 2),
		scored(model.Content{ID: 6, URI: "excluded", Publisher: model.PublisherPA, Published: true}, 2),
		scored(model.Content{ID: 7, URI: "byid", Publisher: model.PublisherPA, Published: true}, 2),
	}

	members := []filter.Filter[model.Content]{
		filter.MinimumScore[model.Content](0.5),
		filter.MediaTypeCompatible(),
		filter.Unpublished(),
		filter.PublisherPolicy[model.Content](),
		filter.ExcludeKeys[model.Content]("excluded"),
		filter.ExcludeIDs[model.Content](7),
	}

	desc := audit.New()
	got := filter.All(members...).Apply(candidates, target, desc)
	if !slices.Equal(keys(got), []string{"keep"}) {
		t.Fatalf("unexpected survivors: %v", keys(got))
	}
	if !desc.Contains("low removed by minimum-score(0.5)") {
		t.Fatalf("expected audit reason, got:\n%s", desc)
	}

	// Independent predicates: reversing the order yields the same survivors.
	slices.Reverse(members)
	reversed := filter.All(members...).Apply(candidates, target, nil)
	if !slices.Equal(keys(reversed), keys(got)) {
		t.Fatalf("order changed survivors: %v vs %v", keys(reversed), keys(got))
	}
}

func TestMinimumScoreRejectsNull(t *testing.T) {
	target := model.Content{URI: "t"}
	candidates := []score.ScoredCandidate[model.Content]{
		score.NewScoredCandidate(model.Content{URI: "n"}, score.Null()),
		scored(model.Content{URI: "z"}, 0),
	}
	got := filter.MinimumScore[model.Content](0).Apply(candidates, target, nil)
	if !slices.Equal(keys(got), []string{"z"}) {
		t.Fatalf("unexpected survivors: %v", keys(got))
	}
}

func TestContentHierarchyPolicies(t *testing.T) {
	episode := model.Content{URI: "ep", Kind: model.KindEpisode, ContainerURI: "brand"}
	tests := []struct {
		name      string
		target    model.Content
		candidate model.Content
		filter    filter.Filter[model.Content]
		keep      bool
	}{
		{"episode vs episode", episode, model.Content{URI: "c", Kind: model.KindEpisode, ContainerURI: "b2"}, filter.ContainerHierarchy(), true},
		{"episode vs item", episode, model.Content{URI: "c", Kind: model.KindItem}, filter.ContainerHierarchy(), false},
		{"item vs orphan episode", model.Content{URI: "t", Kind: model.KindItem}, model.Content{URI: "c", Kind: model.KindEpisode}, filter.ContainerHierarchy(), true},
		{"brand vs series", model.Content{URI: "t", Kind: model.KindBrand}, model.Content{URI: "c", Kind: model.KindSeries}, filter.KindCompatible(), true},
		{"brand vs item", model.Content{URI: "t", Kind: model.KindBrand}, model.Content{URI: "c", Kind: model.KindItem}, filter.KindCompatible(), false},
		{"tv vs film", model.Content{URI: "t", Specialization: model.SpecializationTV}, model.Content{URI: "c", Specialization: model.SpecializationFilm}, filter.SpecializationCompatible(), false},
		{"tv vs unknown", model.Content{URI: "t", Specialization: model.SpecializationTV}, model.Content{URI: "c"}, filter.SpecializationCompatible(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply([]score.ScoredCandidate[model.Content]{scored(tt.candidate, 1)}, tt.target, nil)
			if (len(got) == 1) != tt.keep {
				t.Fatalf("keep=%v, survivors=%v", tt.keep, keys(got))
			}
		})
	}
}

func TestConjunctionNamesSkipsNil(t *testing.T) {
	c := filter.All[model.Content](nil, filter.AlwaysTrue[model.Content](), filter.Unpublished())
	if c.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", c.Len())
	}
	if !slices.Equal(c.Names(), []string{"always-true", "unpublished"}) {
		t.Fatalf("unexpected names: %v", c.Names())
	}
}
