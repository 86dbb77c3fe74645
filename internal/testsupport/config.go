package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"equiv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ForcedMappings = filepath.Join(base, "forced_mappings.yaml")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithForcedMappings writes body to the config's forced mapping file.
func WithForcedMappings(body string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Paths.ForcedMappings, []byte(body), 0o644); err != nil {
			b.t.Fatalf("write forced mappings: %v", err)
		}
	}
}

// WithExtractor selects the default content extractor.
func WithExtractor(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Content.Extractor = name
	}
}

// WithWorkers sets the dispatcher pool size.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
