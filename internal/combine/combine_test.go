package combine_test

import (
	"math"
	"testing"

	"equiv/internal/audit"
	"equiv/internal/combine"
	"equiv/internal/model"
	"equiv/internal/score"
)

func content(uri string, publisher model.Publisher) model.Content {
	return model.Content{URI: uri, Publisher: publisher, Title: uri}
}

type entry struct {
	c model.Content
	s score.Score
}

func group(source string, entries ...entry) score.ScoredCandidates[model.Content] {
	b := score.NewBuilder[model.Content](source)
	for _, e := range entries {
		b.AddScore(e.c, e.s)
	}
	return b.Build()
}

func mustScore(t *testing.T, got score.ScoredCandidates[model.Content], key string) score.Score {
	t.Helper()
	s, ok := got.ScoreFor(key)
	if !ok {
		t.Fatalf("expected combined result to contain %s", key)
	}
	return s
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAddingSumsRealScores(t *testing.T) {
	a := content("a", model.PublisherBBC)
	b := content("b", model.PublisherBBC)
	c := content("c", model.PublisherPA)

	got := combine.NewAdding[model.Content]().Combine([]score.ScoredCandidates[model.Content]{
		group("title", entry{a, score.Of(1)}, entry{b, score.Null()}, entry{c, score.Of(0.5)}),
		group("year", entry{a, score.Of(0.5)}, entry{b, score.Null()}),
		group("seq", entry{c, score.Of(-1)}),
	}, audit.New())

	if s := mustScore(t, got, "a"); !approx(s.Value(), 1.5) {
		t.Fatalf("a: got %s want 1.5", s)
	}
	if s := mustScore(t, got, "b"); !s.IsNull() {
		t.Fatalf("b: got %s want null", s)
	}
	if s := mustScore(t, got, "c"); !approx(s.Value(), -0.5) {
		t.Fatalf("c: got %s want -0.5", s)
	}
	if got.Source() != combine.CombinedSource {
		t.Fatalf("unexpected source %q", got.Source())
	}
}

func TestAddingEmptyInput(t *testing.T) {
	got := combine.NewAdding[model.Content]().Combine(nil, nil)
	if got.Len() != 0 {
		t.Fatalf("expected empty combination, got %d", got.Len())
	}
}

func TestAveragingDividesByPublisherMaximumCount(t *testing.T) {
	a := content("a", model.PublisherBBC)
	b := content("b", model.PublisherBBC)
	c := content("c", model.PublisherPA)
	n := content("n", model.PublisherPA)

	sources := []score.ScoredCandidates[model.Content]{
		group("generator", entry{a, score.Of(1)}, entry{b, score.Of(1)}, entry{c, score.Of(1)}, entry{n, score.Null()}),
		group("title", entry{a, score.Of(1)}, entry{c, score.Of(0.5)}),
		group("year", entry{a, score.Of(1)}),
	}

	got := combine.NewAveraging[model.Content](false).Combine(sources, audit.New())

	// BBC max count is 3 (a), PA max count is 2 (c).
	if s := mustScore(t, got, "a"); !approx(s.Value(), 1) {
		t.Fatalf("a: got %s want 1", s)
	}
	if s := mustScore(t, got, "b"); !approx(s.Value(), 1.0/3.0) {
		t.Fatalf("b: got %s want 1/3", s)
	}
	if s := mustScore(t, got, "c"); !approx(s.Value(), 0.75) {
		t.Fatalf("c: got %s want 0.75", s)
	}
	if s := mustScore(t, got, "n"); !s.IsNull() {
		t.Fatalf("n: got %s want null", s)
	}
}

func TestAveragingIgnoresSingleSourceCandidates(t *testing.T) {
	a := content("a", model.PublisherBBC)
	b := content("b", model.PublisherBBC)

	sources := []score.ScoredCandidates[model.Content]{
		group("generator", entry{a, score.Of(5)}, entry{b, score.Of(5)}),
		group("title", entry{a, score.Of(1)}, entry{b, score.Null()}),
	}

	got := combine.NewAveraging[model.Content](true).Combine(sources, audit.New())
	if s := mustScore(t, got, "a"); !approx(s.Value(), 3) {
		t.Fatalf("a: got %s want 3", s)
	}
	s := mustScore(t, got, "b")
	if !s.Equal(score.Zero) {
		t.Fatalf("b: got %s want explicit zero", s)
	}
}

func TestRequiredScoreFilteringNullsUnapprovedCandidates(t *testing.T) {
	a := content("a", model.PublisherBBC)
	b := content("b", model.PublisherBBC)
	c := content("c", model.PublisherBBC)

	sources := []score.ScoredCandidates[model.Content]{
		group("generator", entry{a, score.Of(10)}, entry{b, score.Of(10)}, entry{c, score.Of(10)}),
		group("title", entry{a, score.Of(1)}, entry{b, score.Of(0)}),
	}

	combiner, err := combine.NewRequiredScoreFiltering[model.Content](combine.NewAdding[model.Content](), "title")
	if err != nil {
		t.Fatalf("NewRequiredScoreFiltering: %v", err)
	}
	desc := audit.New()
	got := combiner.Combine(sources, desc)

	if s := mustScore(t, got, "a"); !approx(s.Value(), 11) {
		t.Fatalf("a: got %s want 11", s)
	}
	if s := mustScore(t, got, "b"); !s.IsNull() {
		t.Fatalf("b: got %s want null (required score fails threshold)", s)
	}
	if s := mustScore(t, got, "c"); !s.IsNull() {
		t.Fatalf("c: got %s want null (required source silent)", s)
	}
	if !desc.Contains("failed required source title") {
		t.Fatalf("expected audit entry, got:\n%s", desc)
	}
}

func TestRequiredScoreFilteringPassesThroughWhenSourceAbsent(t *testing.T) {
	a := content("a", model.PublisherBBC)
	combiner, err := combine.NewRequiredScoreFiltering[model.Content](combine.NewAdding[model.Content](), "title")
	if err != nil {
		t.Fatalf("NewRequiredScoreFiltering: %v", err)
	}
	got := combiner.Combine([]score.ScoredCandidates[model.Content]{
		group("generator", entry{a, score.Of(2)}),
	}, nil)
	if s := mustScore(t, got, "a"); !approx(s.Value(), 2) {
		t.Fatalf("a: got %s want 2", s)
	}
}

func TestRequiredScoreFilteringCustomThreshold(t *testing.T) {
	a := content("a", model.PublisherBBC)
	b := content("b", model.PublisherBBC)
	combiner, err := combine.NewRequiredScoreFiltering[model.Content](
		combine.NewAdding[model.Content](), "title", combine.WithThreshold(combine.GreaterThan(0.5)))
	if err != nil {
		t.Fatalf("NewRequiredScoreFiltering: %v", err)
	}
	got := combiner.Combine([]score.ScoredCandidates[model.Content]{
		group("title", entry{a, score.Of(0.6)}, entry{b, score.Of(0.4)}),
	}, nil)
	if s := mustScore(t, got, "a"); !s.IsReal() {
		t.Fatalf("a: expected real score, got %s", s)
	}
	if s := mustScore(t, got, "b"); !s.IsNull() {
		t.Fatalf("b: expected null, got %s", s)
	}
}

func TestRequiredScoreFilteringRejectsNilDelegate(t *testing.T) {
	if _, err := combine.NewRequiredScoreFiltering[model.Content](nil, "title"); err == nil {
		t.Fatal("expected error for nil delegate")
	}
	if _, err := combine.NewRequiredScoreFiltering[model.Content](combine.NewAdding[model.Content](), ""); err == nil {
		t.Fatal("expected error for empty source")
	}
}
