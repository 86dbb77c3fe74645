package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"equiv/internal/logging"
)

const metricsNamespace = "equiv"

// MetricsReporter keeps Prometheus counters for update runs on a private
// registry. When a textfile path is set the registry is written there at the
// end of every run.
type MetricsReporter struct {
	registry *prometheus.Registry
	textfile string
	logger   *slog.Logger
	runs     tally

	mu      sync.Mutex
	started map[string]time.Time

	RunsStarted   *prometheus.CounterVec
	RunsFinished  *prometheus.CounterVec
	Succeeded     *prometheus.CounterVec
	Failed        *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	LastRunFailed *prometheus.GaugeVec
}

// NewMetricsReporter registers the run metrics. textfile may be empty.
func NewMetricsReporter(textfile string, logger *slog.Logger) *MetricsReporter {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &MetricsReporter{
		registry: registry,
		textfile: textfile,
		logger:   logging.NewComponentLogger(logger, "report"),
		started:  make(map[string]time.Time),
		RunsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_started_total",
			Help:      "Update runs started, by run name",
		}, []string{"run"}),
		RunsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_finished_total",
			Help:      "Update runs finished, by run name",
		}, []string{"run"}),
		Succeeded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_succeeded_total",
			Help:      "Persisted equivalence mutations, by run name",
		}, []string{"run"}),
		Failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_failed_total",
			Help:      "Failed equivalence updates, by run name",
		}, []string{"run"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of update runs",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"run"}),
		LastRunFailed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_failed_events",
			Help:      "Failed events in the most recent run, by run name",
		}, []string{"run"}),
	}
}

// Registry exposes the private registry for scraping or tests.
func (r *MetricsReporter) Registry() *prometheus.Registry { return r.registry }

func (r *MetricsReporter) StartReporting(ctx context.Context, name string) string {
	id := RunID(ctx)
	r.runs.start(id, name)
	r.mu.Lock()
	r.started[id] = time.Now()
	r.mu.Unlock()
	r.RunsStarted.WithLabelValues(name).Inc()
	return id
}

func (r *MetricsReporter) ReportSuccessfulEvent(ctx context.Context, _ string, _ Payload) {
	id := RunID(ctx)
	r.runs.add(id, true)
	r.Succeeded.WithLabelValues(r.runs.name(id)).Inc()
}

func (r *MetricsReporter) ReportFailedEvent(ctx context.Context, _ string, _ Payload) {
	id := RunID(ctx)
	r.runs.add(id, false)
	r.Failed.WithLabelValues(r.runs.name(id)).Inc()
}

func (r *MetricsReporter) EndReporting(ctx context.Context) {
	id := RunID(ctx)
	r.mu.Lock()
	started, hasStart := r.started[id]
	delete(r.started, id)
	r.mu.Unlock()

	counts, ok := r.runs.finish(id)
	if !ok {
		return
	}
	r.RunsFinished.WithLabelValues(counts.name).Inc()
	r.LastRunFailed.WithLabelValues(counts.name).Set(float64(counts.failed))
	if hasStart {
		r.RunDuration.WithLabelValues(counts.name).Observe(time.Since(started).Seconds())
	}
	if err := r.WriteTextfile(); err != nil {
		logging.WarnWithContext(r.logger, "metrics textfile not written", "metrics_write_failed",
			logging.String("path", r.textfile),
			logging.Error(err),
			logging.String(logging.FieldImpact, "node exporter shows stale equiv metrics"),
		)
	}
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func (r *MetricsReporter) WriteTextfile() error {
	if r.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.textfile, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
