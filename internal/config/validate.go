package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateContent() error {
	switch c.Content.Combiner {
	case CombinerAdding, CombinerAveraging:
	default:
		return fmt.Errorf("content.combiner: unsupported value %q (want %q or %q)", c.Content.Combiner, CombinerAdding, CombinerAveraging)
	}
	if err := c.validateExtractorName("content.extractor", c.Content.Extractor); err != nil {
		return err
	}
	for publisher, name := range c.Content.PublisherExtractors {
		if err := c.validateExtractorName("content.publisher_extractors."+publisher, name); err != nil {
			return err
		}
	}
	if c.Content.Percent <= 0 || c.Content.Percent > 100 {
		return errors.New("content.percent must be greater than 0 and at most 100")
	}
	if c.Content.Multiplier <= 0 || math.IsNaN(c.Content.Multiplier) {
		return errors.New("content.multiplier must be positive")
	}
	return nil
}

func (c *Config) validateExtractorName(key, name string) error {
	switch name {
	case ExtractorTop, ExtractorPercent, ExtractorNextBest, ExtractorSameHighscore:
		return nil
	case ExtractorThreshold:
		if len(c.Content.Thresholds) == 0 {
			return fmt.Errorf("%s: %q requires content.thresholds", key, name)
		}
		return nil
	case ExtractorMultiStage:
		if len(c.Content.Thresholds) == 0 {
			return fmt.Errorf("%s: %q requires content.thresholds", key, name)
		}
		if !slices.IsSortedFunc(c.Content.Thresholds, func(a, b float64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			}
			return 0
		}) || hasDuplicates(c.Content.Thresholds) {
			return errors.New("content.thresholds must be strictly descending for multi_stage")
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported extractor %q", key, name)
	}
}

func (c *Config) validateChannels() error {
	if len(c.Channels.SourcePublishers) > 0 && len(c.Channels.CandidatePublishers) == 0 {
		return errors.New("channels.candidate_publishers must be set when channels.source_publishers is set")
	}
	if c.Channels.ForcedPublisher != "" && slices.Contains(c.Channels.SourcePublishers, c.Channels.ForcedPublisher) {
		return fmt.Errorf("channels.forced_publisher %q is also listed in channels.source_publishers", c.Channels.ForcedPublisher)
	}
	if c.Channels.ForcedPublisher != "" && c.Paths.ForcedMappings == "" {
		return errors.New("paths.forced_mappings must be set when channels.forced_publisher is set")
	}
	return nil
}

func hasDuplicates(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] == values[i-1] {
			return true
		}
	}
	return false
}
