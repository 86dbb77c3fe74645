package resolver

import (
	"context"
	"fmt"
	"slices"

	"equiv/internal/audit"
	"equiv/internal/model"
	"equiv/internal/score"
	"equiv/internal/store"
	"equiv/internal/textutil"
)

// ContentSource is the catalogue the reference generators read from.
// *store.Store satisfies it.
type ContentSource interface {
	SearchContent(ctx context.Context, q store.ContentQuery) ([]model.Content, error)
	ContentByAlias(ctx context.Context, alias model.Alias) ([]model.Content, error)
	ContentInContainer(ctx context.Context, containerURI string) ([]model.Content, error)
	EquivalencesFor(ctx context.Context, targetURI string) ([]store.Equivalence, error)
}

// TitleSearchGenerator proposes content of the same media type from the
// candidate publishers whose title resembles the target's, scored by title
// similarity.
type TitleSearchGenerator struct {
	source     ContentSource
	publishers []model.Publisher
	policy     Policy
}

// NewTitleSearchGenerator searches publishers; an empty list searches every
// publisher other than the target's.
func NewTitleSearchGenerator(source ContentSource, publishers []model.Publisher, policy Policy) *TitleSearchGenerator {
	return &TitleSearchGenerator{source: source, publishers: slices.Clone(publishers), policy: policy.normalized()}
}

func (g *TitleSearchGenerator) Name() string { return "title-search" }

func (g *TitleSearchGenerator) Generate(ctx context.Context, target model.Content, desc *audit.Description) (score.ScoredCandidates[model.Content], error) {
	if textutil.TitleKey(target.Title) == "" {
		desc.AppendText("%s: target has no title", g.Name())
		return score.Empty[model.Content](g.Name()), nil
	}
	hits, err := g.source.SearchContent(ctx, store.ContentQuery{
		MediaType:        target.MediaType,
		Publishers:       g.publishers,
		ExcludePublisher: target.Publisher,
	})
	if err != nil {
		return score.ScoredCandidates[model.Content]{}, fmt.Errorf("title search: %w", err)
	}

	scored := make([]score.ScoredCandidate[model.Content], 0, len(hits))
	for _, hit := range hits {
		if hit.URI == target.URI {
			continue
		}
		sim := textutil.TitleSimilarity(target.Title, hit.Title)
		if sim < g.policy.MinTitleSimilarity {
			continue
		}
		scored = append(scored, score.NewScoredCandidate(hit, score.Of(sim)))
	}
	score.SortCandidates(scored)
	if len(scored) > g.policy.MaxCandidates {
		scored = scored[:g.policy.MaxCandidates]
	}
	desc.AppendText("%s: %d of %d search hits kept", g.Name(), len(scored), len(hits))
	return score.FromList(g.Name(), scored), nil
}

// AliasGenerator proposes content that shares an alias with the target.
// Every hit scores one.
type AliasGenerator struct {
	source ContentSource
}

func NewAliasGenerator(source ContentSource) *AliasGenerator {
	return &AliasGenerator{source: source}
}

func (g *AliasGenerator) Name() string { return "alias" }

func (g *AliasGenerator) Generate(ctx context.Context, target model.Content, desc *audit.Description) (score.ScoredCandidates[model.Content], error) {
	b := score.NewBuilder[model.Content](g.Name())
	seen := make(map[string]struct{})
	for _, alias := range target.Aliases {
		hits, err := g.source.ContentByAlias(ctx, alias)
		if err != nil {
			return score.ScoredCandidates[model.Content]{}, fmt.Errorf("alias lookup %s:%s: %w", alias.Namespace, alias.Value, err)
		}
		for _, hit := range hits {
			if hit.URI == target.URI || hit.Publisher == target.Publisher {
				continue
			}
			if _, dup := seen[hit.URI]; dup {
				continue
			}
			seen[hit.URI] = struct{}{}
			b.AddScore(hit, score.Of(1))
		}
	}
	out := b.Build()
	desc.AppendText("%s: %d candidates from %d aliases", g.Name(), out.Len(), len(target.Aliases))
	return out, nil
}

// ContainerGenerator proposes the children of containers already resolved
// as equivalent to the target's container. It has no opinion on how good a
// match they are, so every candidate carries a null score.
type ContainerGenerator struct {
	source ContentSource
}

func NewContainerGenerator(source ContentSource) *ContainerGenerator {
	return &ContainerGenerator{source: source}
}

func (g *ContainerGenerator) Name() string { return "container" }

func (g *ContainerGenerator) Generate(ctx context.Context, target model.Content, desc *audit.Description) (score.ScoredCandidates[model.Content], error) {
	if target.ContainerURI == "" {
		return score.Empty[model.Content](g.Name()), nil
	}
	equivalents, err := g.source.EquivalencesFor(ctx, target.ContainerURI)
	if err != nil {
		return score.ScoredCandidates[model.Content]{}, fmt.Errorf("container equivalences: %w", err)
	}
	b := score.NewBuilder[model.Content](g.Name())
	for _, eq := range equivalents {
		children, err := g.source.ContentInContainer(ctx, eq.CandidateURI)
		if err != nil {
			return score.ScoredCandidates[model.Content]{}, fmt.Errorf("children of %s: %w", eq.CandidateURI, err)
		}
		for _, child := range children {
			if child.URI != target.URI {
				b.AddScore(child, score.Null())
			}
		}
	}
	out := b.Build()
	desc.AppendText("%s: %d candidates from %d equivalent containers", g.Name(), out.Len(), len(equivalents))
	return out, nil
}
