package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"equiv/internal/combine"
	"equiv/internal/config"
	"equiv/internal/extract"
	"equiv/internal/filter"
	"equiv/internal/model"
	"equiv/internal/report"
	"equiv/internal/result"
)

// Catalogue is everything the configured pipeline reads and writes.
// *store.Store satisfies it.
type Catalogue interface {
	ContentSource
	EquivalenceWriter
}

// NewBuilder assembles the content result builder described by cfg.
func NewBuilder(cfg config.Content) (*result.Builder[model.Content], error) {
	var combiner combine.Combiner[model.Content]
	switch cfg.Combiner {
	case config.CombinerAveraging:
		combiner = combine.NewAveraging[model.Content](cfg.IgnoreNullScoringCandidate)
	default:
		combiner = combine.NewAdding[model.Content]()
	}
	if source := strings.TrimSpace(cfg.RequiredSource); source != "" {
		required, err := combine.NewRequiredScoreFiltering(combiner, source,
			combine.WithThreshold(combine.GreaterThan(cfg.RequiredThreshold)))
		if err != nil {
			return nil, err
		}
		combiner = required
	}

	extractor, err := newExtractor(cfg, cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("content.extractor: %w", err)
	}
	perPublisher := make(map[model.Publisher]extract.Extractor[model.Content], len(cfg.PublisherExtractors))
	for name, kind := range cfg.PublisherExtractors {
		ex, err := newExtractor(cfg, kind)
		if err != nil {
			return nil, fmt.Errorf("content.publisher_extractors.%s: %w", name, err)
		}
		perPublisher[model.ParsePublisher(name)] = ex
	}

	bc := result.BuilderConfig[model.Content]{
		Combiner: combiner,
		Filter: filter.All[model.Content](
			filter.MinimumScore[model.Content](cfg.MinimumScore),
			filter.PublisherPolicy[model.Content](),
			filter.Unpublished(),
			filter.MediaTypeCompatible(),
			filter.SpecializationCompatible(),
			filter.KindCompatible(),
			filter.ContainerHierarchy(),
		),
		Extractor:           extractor,
		PublisherExtractors: perPublisher,
	}
	if cfg.MultipleCandidates {
		bc.Multiple = extract.NewSameHighscoreMultiple[model.Content](cfg.MultipleMinScore)
	}
	return result.NewBuilder(bc)
}

// newExtractor builds the named extractor. The threshold extractor uses the
// first configured threshold.
func newExtractor(cfg config.Content, name string) (extract.Extractor[model.Content], error) {
	switch name {
	case "", config.ExtractorTop:
		return extract.NewTop[model.Content](), nil
	case config.ExtractorThreshold:
		if len(cfg.Thresholds) == 0 {
			return nil, fmt.Errorf("threshold extractor needs content.thresholds")
		}
		return extract.NewAllOverOrEqualThreshold[model.Content](cfg.Thresholds[0]), nil
	case config.ExtractorMultiStage:
		return extract.NewMultiStageThreshold[model.Content](cfg.Thresholds...)
	case config.ExtractorPercent:
		return extract.NewPercentThreshold[model.Content](cfg.Percent)
	case config.ExtractorNextBest:
		return extract.NewPercentAboveNextBest[model.Content](cfg.Multiplier)
	case config.ExtractorSameHighscore:
		return extract.NewAllWithSameHighscoreAndPublisher[model.Content](), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}

// NewFromConfig wires one content updater per configured target publisher.
// Every updater uses the reference generators and scorers over catalogue.
func NewFromConfig(cfg *config.Config, catalogue Catalogue, reporter report.Reporter, logger *slog.Logger) (*Router, error) {
	builder, err := NewBuilder(cfg.Content)
	if err != nil {
		return nil, err
	}
	policy := DefaultPolicy()
	handler := NewStoreHandler(catalogue, reporter, logger)

	updaters := make(map[model.Publisher]Updater[model.Content])
	for _, publisher := range cfg.ContentPublishers() {
		u, err := NewContentUpdater(UpdaterConfig[model.Content]{
			Generators: []Generator[model.Content]{
				NewTitleSearchGenerator(catalogue, cfg.ContentCandidatePublishers(), policy),
				NewAliasGenerator(catalogue),
				NewContainerGenerator(catalogue),
			},
			Scorers: []Scorer[model.Content]{TitleScorer(policy), YearScorer(), SequenceScorer()},
			Builder: builder,
			Handler: handler,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("content updater for %s: %w", publisher, err)
		}
		updaters[publisher] = u
	}
	return NewRouter(updaters, reporter, logger), nil
}
