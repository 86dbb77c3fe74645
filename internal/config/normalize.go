package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeContent()
	c.normalizeChannels()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("EQUIV_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ForcedMappings, err = expandPath(strings.TrimSpace(c.Paths.ForcedMappings)); err != nil {
		return fmt.Errorf("paths.forced_mappings: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers == 0 {
		c.Workflow.Workers = defaultWorkers
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeContent() {
	c.Content.Publishers = normalizePublisherList(c.Content.Publishers)
	c.Content.CandidatePublishers = normalizePublisherList(c.Content.CandidatePublishers)
	c.Content.Combiner = strings.ToLower(strings.TrimSpace(c.Content.Combiner))
	if c.Content.Combiner == "" {
		c.Content.Combiner = defaultCombiner
	}
	c.Content.RequiredSource = strings.TrimSpace(c.Content.RequiredSource)
	c.Content.Extractor = strings.ToLower(strings.TrimSpace(c.Content.Extractor))
	if c.Content.Extractor == "" {
		c.Content.Extractor = defaultExtractor
	}
	if c.Content.Percent == 0 {
		c.Content.Percent = defaultPercent
	}
	if c.Content.Multiplier == 0 {
		c.Content.Multiplier = defaultMultiplier
	}
	if len(c.Content.PublisherExtractors) > 0 {
		normalized := make(map[string]string, len(c.Content.PublisherExtractors))
		for publisher, extractor := range c.Content.PublisherExtractors {
			key := strings.ToLower(strings.TrimSpace(publisher))
			if key == "" {
				continue
			}
			normalized[key] = strings.ToLower(strings.TrimSpace(extractor))
		}
		c.Content.PublisherExtractors = normalized
	}
}

func (c *Config) normalizeChannels() {
	c.Channels.SourcePublishers = normalizePublisherList(c.Channels.SourcePublishers)
	c.Channels.CandidatePublishers = normalizePublisherList(c.Channels.CandidatePublishers)
	c.Channels.ForcedPublisher = strings.ToLower(strings.TrimSpace(c.Channels.ForcedPublisher))
	c.Channels.AliasNamespace = strings.TrimSpace(c.Channels.AliasNamespace)
	if c.Channels.AliasNamespace == "" {
		c.Channels.AliasNamespace = defaultAliasNamespace
	}
}

func normalizePublisherList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
