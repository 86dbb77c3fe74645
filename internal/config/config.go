package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"equiv/internal/model"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the on-disk locations equiv reads and writes.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	LogDir         string `toml:"log_dir"`
	ForcedMappings string `toml:"forced_mappings"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Workflow contains configuration for the update dispatcher.
type Workflow struct {
	Workers int `toml:"workers"`
}

// Metrics toggles the Prometheus reporter.
type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Notifications configures run summaries pushed to ntfy.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Content configures the content resolution pipeline.
type Content struct {
	// Publishers are the catalogues whose records are resolved as targets.
	Publishers []string `toml:"publishers"`
	// CandidatePublishers are the catalogues candidates may come from.
	CandidatePublishers []string `toml:"candidate_publishers"`

	Combiner                   string `toml:"combiner"`
	IgnoreNullScoringCandidate bool   `toml:"ignore_null_scoring_candidate"`
	// RequiredSource, when set, drops candidates that did not score above
	// RequiredThreshold in that source.
	RequiredSource    string  `toml:"required_source"`
	RequiredThreshold float64 `toml:"required_threshold"`

	Extractor           string            `toml:"extractor"`
	Thresholds          []float64         `toml:"thresholds"`
	Percent             float64           `toml:"percent"`
	Multiplier          float64           `toml:"multiplier"`
	MinimumScore        float64           `toml:"minimum_score"`
	MultipleCandidates  bool              `toml:"multiple_candidates"`
	MultipleMinScore    float64           `toml:"multiple_min_score"`
	PublisherExtractors map[string]string `toml:"publisher_extractors"`
}

// Channels configures the channel equivalence updaters.
type Channels struct {
	// SourcePublishers are matched against CandidatePublishers by title or
	// alias.
	SourcePublishers    []string `toml:"source_publishers"`
	CandidatePublishers []string `toml:"candidate_publishers"`
	// ForcedPublisher channels are linked through the forced mapping file,
	// keyed by the alias in AliasNamespace.
	ForcedPublisher string `toml:"forced_publisher"`
	AliasNamespace  string `toml:"alias_namespace"`
}

// Config encapsulates all configuration values for equiv.
//
// Configuration sections by subsystem:
//   - Paths: database, logs and the forced mapping file
//   - Logging: log format and level
//   - Workflow: dispatcher pool size
//   - Metrics: Prometheus reporter
//   - Notifications: ntfy run summaries
//   - Content: combiner, filter and extractor selection
//   - Channels: source-specific and forced channel updaters
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Workflow      Workflow      `toml:"workflow"`
	Metrics       Metrics       `toml:"metrics"`
	Notifications Notifications `toml:"notifications"`
	Content       Content       `toml:"content"`
	Channels      Channels      `toml:"channels"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/equiv/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("equiv.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "equiv.db")
}

// LockPath returns the process lock guarding batch runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "equiv.lock")
}

// MetricsPath returns the Prometheus textfile written after each run.
func (c *Config) MetricsPath() string {
	return filepath.Join(c.Paths.DataDir, "equiv.prom")
}

// ContentPublishers returns the configured target publishers.
func (c *Config) ContentPublishers() []model.Publisher {
	return model.ParsePublishers(c.Content.Publishers)
}

// ContentCandidatePublishers returns the publishers candidates are drawn from.
func (c *Config) ContentCandidatePublishers() []model.Publisher {
	return model.ParsePublishers(c.Content.CandidatePublishers)
}

// ChannelSourcePublishers returns publishers handled by the source-specific
// channel updater.
func (c *Config) ChannelSourcePublishers() []model.Publisher {
	return model.ParsePublishers(c.Channels.SourcePublishers)
}

// ChannelCandidatePublishers returns publishers whose channels are link
// targets.
func (c *Config) ChannelCandidatePublishers() []model.Publisher {
	return model.ParsePublishers(c.Channels.CandidatePublishers)
}

// ForcedPublisher returns the publisher handled by the forced channel updater,
// or the empty publisher when none is configured.
func (c *Config) ForcedPublisher() model.Publisher {
	return model.ParsePublisher(c.Channels.ForcedPublisher)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
