package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"equiv/internal/config"
	"equiv/internal/model"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("EQUIV_DATA_DIR", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "equiv")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "equiv.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Workflow.Workers != 5 {
		t.Fatalf("expected default pool of 5 workers, got %d", cfg.Workflow.Workers)
	}
	if cfg.Content.Combiner != config.CombinerAdding || cfg.Content.Extractor != config.ExtractorTop {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Content)
	}
	if got := cfg.ContentPublishers(); len(got) != 1 || got[0] != model.PublisherPA {
		t.Fatalf("unexpected content publishers: %v", got)
	}
	if cfg.ForcedPublisher() != model.PublisherYouView {
		t.Fatalf("unexpected forced publisher: %q", cfg.ForcedPublisher())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadHonoursDataDirEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("EQUIV_DATA_DIR", dataDir)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("expected env data dir %q, got %q", dataDir, cfg.Paths.DataDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EQUIV_DATA_DIR", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "equiv.toml")

	type payload struct {
		Content struct {
			Publishers          []string          `toml:"publishers"`
			Combiner            string            `toml:"combiner"`
			Extractor           string            `toml:"extractor"`
			Thresholds          []float64         `toml:"thresholds"`
			PublisherExtractors map[string]string `toml:"publisher_extractors"`
		} `toml:"content"`
		Workflow struct {
			Workers int `toml:"workers"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Content.Publishers = []string{" ITV.com ", "itv.com", ""}
	custom.Content.Combiner = " Averaging "
	custom.Content.Extractor = "multi_stage"
	custom.Content.Thresholds = []float64{3, 2, 1}
	custom.Content.PublisherExtractors = map[string]string{" BBC.co.uk ": "PERCENT"}
	custom.Workflow.Workers = 2

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if got := cfg.ContentPublishers(); len(got) != 1 || got[0] != model.PublisherITV {
		t.Fatalf("unexpected publishers: %v", got)
	}
	if cfg.Content.Combiner != config.CombinerAveraging {
		t.Fatalf("unexpected combiner: %q", cfg.Content.Combiner)
	}
	if cfg.Content.PublisherExtractors["bbc.co.uk"] != config.ExtractorPercent {
		t.Fatalf("unexpected publisher extractors: %v", cfg.Content.PublisherExtractors)
	}
	if cfg.Workflow.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Workflow.Workers)
	}
}

func TestValidateRejectsBadPipeline(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown combiner", func(c *config.Config) { c.Content.Combiner = "max" }, "content.combiner"},
		{"unknown extractor", func(c *config.Config) { c.Content.Extractor = "best" }, "content.extractor"},
		{"ascending multi-stage", func(c *config.Config) {
			c.Content.Extractor = config.ExtractorMultiStage
			c.Content.Thresholds = []float64{1, 2}
		}, "strictly descending"},
		{"repeated multi-stage", func(c *config.Config) {
			c.Content.Extractor = config.ExtractorMultiStage
			c.Content.Thresholds = []float64{2, 2}
		}, "strictly descending"},
		{"percent out of range", func(c *config.Config) { c.Content.Percent = 120 }, "content.percent"},
		{"negative workers", func(c *config.Config) { c.Workflow.Workers = -1 }, "workflow.workers"},
		{"bad per-publisher extractor", func(c *config.Config) {
			c.Content.PublisherExtractors = map[string]string{"itv.com": "nope"}
		}, "content.publisher_extractors.itv.com"},
		{"forced publisher also source", func(c *config.Config) {
			c.Channels.SourcePublishers = []string{"youview.com"}
		}, "channels.forced_publisher"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"ntfy topic without scheme", func(c *config.Config) { c.Notifications.NtfyTopic = "ntfy.sh/equiv" }, "notifications.ntfy_topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	cfg.Notifications.NtfyTopic = "https://ntfy.sh/equiv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("ntfy topic URL should validate: %v", err)
	}
	if cfg.Notifications.RequestTimeout != 10 {
		t.Fatalf("unexpected ntfy timeout default: %d", cfg.Notifications.RequestTimeout)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EQUIV_DATA_DIR", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Channels.AliasNamespace != "pa:station" {
		t.Fatalf("unexpected alias namespace: %q", cfg.Channels.AliasNamespace)
	}
}
