package report

import (
	"log/slog"
	"time"

	"equiv/internal/config"
)

// NewFromConfig builds the reporters enabled in cfg. The log reporter is
// always present; recorder may be nil when no store is open.
func NewFromConfig(cfg *config.Config, recorder EventRecorder, logger *slog.Logger) (*Multi, *MetricsReporter) {
	reporters := []Reporter{NewLogReporter(logger)}
	if recorder != nil {
		reporters = append(reporters, NewStoreReporter(recorder, logger))
	}
	var metrics *MetricsReporter
	if cfg != nil && cfg.Metrics.Enabled {
		metrics = NewMetricsReporter(cfg.MetricsPath(), logger)
		reporters = append(reporters, metrics)
	}
	if cfg != nil && cfg.Notifications.NtfyTopic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		reporters = append(reporters, NewNtfyReporter(cfg.Notifications.NtfyTopic, timeout, logger))
	}
	return NewMulti(reporters...), metrics
}
