package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"equiv/internal/logging"
)

const userAgent = "equiv/0.1.0"

// NtfyReporter pushes a summary to an ntfy topic when a run ends. Individual
// events are only counted.
type NtfyReporter struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	runs     tally
}

// NewNtfyReporter posts to endpoint, a full topic URL.
func NewNtfyReporter(endpoint string, timeout time.Duration, logger *slog.Logger) *NtfyReporter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfyReporter{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
		logger:   logging.NewComponentLogger(logger, "report"),
	}
}

type notification struct {
	title    string
	message  string
	tags     []string
	priority string
}

func (n *NtfyReporter) StartReporting(ctx context.Context, name string) string {
	id := RunID(ctx)
	n.runs.start(id, name)
	return id
}

func (n *NtfyReporter) ReportSuccessfulEvent(ctx context.Context, _ string, _ Payload) {
	n.runs.add(RunID(ctx), true)
}

func (n *NtfyReporter) ReportFailedEvent(ctx context.Context, _ string, _ Payload) {
	n.runs.add(RunID(ctx), false)
}

func (n *NtfyReporter) EndReporting(ctx context.Context) {
	counts, ok := n.runs.finish(RunID(ctx))
	if !ok {
		return
	}
	if err := n.send(context.WithoutCancel(ctx), summarize(counts)); err != nil {
		logging.WarnWithContext(n.logger, "run summary not delivered", "ntfy_failed",
			logging.String("endpoint", n.endpoint),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification for this run"),
		)
	}
}

func summarize(counts runCounts) notification {
	name := strings.TrimSpace(counts.name)
	if name == "" {
		name = "update"
	}
	if counts.failed == 0 {
		return notification{
			title:   "equiv - Run Complete",
			message: fmt.Sprintf("%s run complete: %d equivalences written", name, counts.succeeded),
			tags:    []string{"equiv", name, "completed"},
		}
	}
	return notification{
		title:    "equiv - Run Complete (with errors)",
		message:  fmt.Sprintf("%s run complete: %d written, %d failed", name, counts.succeeded, counts.failed),
		tags:     []string{"equiv", name, "failed"},
		priority: "high",
	}
}

func (n *NtfyReporter) send(ctx context.Context, data notification) error {
	if n == nil || n.client == nil || n.endpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
