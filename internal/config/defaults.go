package config

const (
	defaultDataDir            = "~/.local/share/equiv"
	defaultLogDir             = "~/.local/share/equiv/logs"
	defaultForcedMappingsPath = "~/.config/equiv/forced_mappings.yaml"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultWorkers            = 5
	defaultCombiner           = CombinerAdding
	defaultExtractor          = ExtractorTop
	defaultPercent            = 90
	defaultMultiplier         = 2
	defaultMultipleMinScore   = 1
	defaultAliasNamespace     = "pa:station"
	defaultNtfyTimeout        = 10
)

// Combiner names accepted in content.combiner.
const (
	CombinerAdding    = "adding"
	CombinerAveraging = "averaging"
)

// Extractor names accepted in content.extractor and
// content.publisher_extractors.
const (
	ExtractorTop           = "top"
	ExtractorThreshold     = "threshold"
	ExtractorMultiStage    = "multi_stage"
	ExtractorPercent       = "percent"
	ExtractorNextBest      = "next_best"
	ExtractorSameHighscore = "same_highscore"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:        defaultDataDir,
			LogDir:         defaultLogDir,
			ForcedMappings: defaultForcedMappingsPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Content: Content{
			Publishers:          []string{"pressassociation.com"},
			CandidatePublishers: []string{"bbc.co.uk", "itv.com", "channel4.com", "five.tv", "radiotimes.com"},
			Combiner:            defaultCombiner,
			Extractor:           defaultExtractor,
			Thresholds:          []float64{2, 1.5, 1},
			Percent:             defaultPercent,
			Multiplier:          defaultMultiplier,
			MinimumScore:        0.2,
			MultipleMinScore:    defaultMultipleMinScore,
		},
		Channels: Channels{
			SourcePublishers:    []string{"bbc.co.uk"},
			CandidatePublishers: []string{"metabroadcast.com"},
			ForcedPublisher:     "youview.com",
			AliasNamespace:      defaultAliasNamespace,
		},
	}
}
