package result

import (
	"errors"
	"fmt"
	"slices"

	"equiv/internal/audit"
	"equiv/internal/combine"
	"equiv/internal/extract"
	"equiv/internal/filter"
	"equiv/internal/model"
	"equiv/internal/score"
)

// ErrIncompleteConfig is returned when a builder is assembled without one of
// its required stages.
var ErrIncompleteConfig = errors.New("result: incomplete builder configuration")

// BuilderConfig wires the stages of the pipeline.
type BuilderConfig[T model.Candidate] struct {
	Combiner  combine.Combiner[T]
	Filter    filter.Filter[T]
	Extractor extract.Extractor[T]
	// PublisherExtractors overrides Extractor for specific publishers.
	PublisherExtractors map[model.Publisher]extract.Extractor[T]
	// Multiple, when set, runs before the extractor on every bin.
	Multiple extract.MultipleCandidate[T]
}

// Builder turns per-source scores into an EquivalenceResult.
type Builder[T model.Candidate] struct {
	combiner  combine.Combiner[T]
	filter    filter.Filter[T]
	extractor extract.Extractor[T]
	perPub    map[model.Publisher]extract.Extractor[T]
	multiple  extract.MultipleCandidate[T]
}

// NewBuilder validates the configuration up front so a missing stage fails at
// wiring time rather than on the first resolution.
func NewBuilder[T model.Candidate](cfg BuilderConfig[T]) (*Builder[T], error) {
	if cfg.Combiner == nil {
		return nil, fmt.Errorf("%w: combiner is required", ErrIncompleteConfig)
	}
	if cfg.Filter == nil {
		return nil, fmt.Errorf("%w: filter is required", ErrIncompleteConfig)
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("%w: extractor is required", ErrIncompleteConfig)
	}
	perPub := make(map[model.Publisher]extract.Extractor[T], len(cfg.PublisherExtractors))
	for p, ex := range cfg.PublisherExtractors {
		if ex == nil {
			return nil, fmt.Errorf("%w: extractor for %s is nil", ErrIncompleteConfig, p)
		}
		perPub[p] = ex
	}
	return &Builder[T]{
		combiner:  cfg.Combiner,
		filter:    cfg.Filter,
		extractor: cfg.Extractor,
		perPub:    perPub,
		multiple:  cfg.Multiple,
	}, nil
}

// ExtractorFor returns the extractor used for a publisher's bin.
func (b *Builder[T]) ExtractorFor(publisher model.Publisher) extract.Extractor[T] {
	if ex, ok := b.perPub[publisher]; ok {
		return ex
	}
	return b.extractor
}

// Stages names the pipeline stages applied to one publisher's bin.
type Stages struct {
	Combiner  string
	Filter    string
	Extractor string
	Multiple  string
}

// Describe names the stages used for publisher.
func (b *Builder[T]) Describe(publisher model.Publisher) Stages {
	stages := Stages{
		Combiner:  stageName(b.combiner),
		Filter:    stageName(b.filter),
		Extractor: stageName(b.ExtractorFor(publisher)),
	}
	if b.multiple != nil {
		stages.Multiple = stageName(b.multiple)
	}
	return stages
}

func stageName(stage any) string {
	if s, ok := stage.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", stage)
}

// ResultFor runs combine, filter, partition and extract for target.
func (b *Builder[T]) ResultFor(target T, perSource []score.ScoredCandidates[T], desc *audit.Description) EquivalenceResult[T] {
	if desc == nil {
		desc = audit.New()
	}

	desc.StartStage("Combining scores")
	combined := b.combiner.Combine(perSource, desc)
	desc.FinishStage()

	survivors := b.filter.Apply(combined.OrderedCandidates(), target, desc)

	bins := partition(survivors)

	desc.StartStage("Extracting strong equivalences")
	strong := make(map[model.Publisher][]score.ScoredCandidate[T], len(bins))
	for _, publisher := range sortedKeys(bins) {
		candidates := bins[publisher]
		desc.StartStage(fmt.Sprintf("%s: %d candidates", publisher, len(candidates)))
		winners := b.extractBin(candidates, target, publisher, desc)
		if len(winners) > 0 {
			strong[publisher] = winners
		}
		desc.FinishStage()
	}
	desc.FinishStage()

	return EquivalenceResult[T]{
		Target:      target,
		RawScores:   slices.Clone(perSource),
		Combined:    combined,
		strong:      strong,
		Description: desc,
	}
}

func (b *Builder[T]) extractBin(candidates []score.ScoredCandidate[T], target T, publisher model.Publisher, desc *audit.Description) []score.ScoredCandidate[T] {
	if b.multiple != nil {
		if winners, ok := b.multiple.ExtractMultiple(candidates, target, desc); ok {
			return slices.Clone(winners)
		}
	}
	return slices.Clone(b.ExtractorFor(publisher).Extract(candidates, target, desc))
}

// partition groups candidates by publisher and sorts each bin.
func partition[T model.Candidate](candidates []score.ScoredCandidate[T]) map[model.Publisher][]score.ScoredCandidate[T] {
	bins := make(map[model.Publisher][]score.ScoredCandidate[T])
	for _, c := range candidates {
		p := c.Candidate.Source()
		bins[p] = append(bins[p], c)
	}
	for _, bin := range bins {
		score.SortCandidates(bin)
	}
	return bins
}

func sortedKeys[T model.Candidate](bins map[model.Publisher][]score.ScoredCandidate[T]) []model.Publisher {
	out := make([]model.Publisher, 0, len(bins))
	for p := range bins {
		out = append(out, p)
	}
	model.SortPublishers(out)
	return out
}
