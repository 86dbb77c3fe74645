package report_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"equiv/internal/logging"
	"equiv/internal/report"
	"equiv/internal/store"
	"equiv/internal/testsupport"
)

type recordingSink struct {
	mu     sync.Mutex
	events []store.Event
	err    error
}

func (r *recordingSink) RecordEvent(_ context.Context, ev store.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func counterValue(t *testing.T, m *report.MetricsReporter, name, run string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "run" && label.GetValue() == run {
					if metric.GetCounter() != nil {
						return metric.GetCounter().GetValue()
					}
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMultiSharesRunIDAcrossReporters(t *testing.T) {
	sink := &recordingSink{}
	multi := report.NewMulti(report.NewStoreReporter(sink, nil), nil, report.Noop{})

	ctx := context.Background()
	id := multi.StartReporting(ctx, "content")
	if id == "" {
		t.Fatal("expected run id")
	}
	ctx = logging.WithRunID(ctx, id)
	multi.ReportSuccessfulEvent(ctx, "http://pa/1", report.Payload{"bbc.co.uk": "http://bbc/1"})
	multi.ReportFailedEvent(logging.WithTarget(ctx, "http://pa/2"), "boom", nil)
	multi.EndReporting(ctx)

	if len(sink.events) != 4 {
		t.Fatalf("expected four events, got %d", len(sink.events))
	}
	for _, ev := range sink.events {
		if ev.RunID != id {
			t.Fatalf("event %s carried run id %q, want %q", ev.Kind, ev.RunID, id)
		}
		if ev.RunName != "content" {
			t.Fatalf("event %s carried run name %q", ev.Kind, ev.RunName)
		}
	}
	if sink.events[2].Kind != store.EventFailure || sink.events[2].Subject != "http://pa/2" || sink.events[2].Reason != "boom" {
		t.Fatalf("unexpected failure event: %+v", sink.events[2])
	}
}

func TestStartReportingReusesContextRunID(t *testing.T) {
	ctx := logging.WithRunID(context.Background(), "fixed")
	if got := report.NewMulti(report.Noop{}).StartReporting(ctx, "channels"); got != "fixed" {
		t.Fatalf("expected context run id, got %q", got)
	}
}

func TestStoreReporterSwallowsErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	r := report.NewStoreReporter(sink, nil)
	ctx := logging.WithRunID(context.Background(), r.StartReporting(context.Background(), "content"))
	r.ReportSuccessfulEvent(ctx, "http://pa/1", nil)
	r.EndReporting(ctx)
}

func TestStoreReporterPersistsToSQLite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	r := report.NewStoreReporter(st, nil)

	ctx := context.Background()
	ctx = logging.WithRunID(ctx, r.StartReporting(ctx, "channels"))
	r.ReportSuccessfulEvent(ctx, "http://bbc/one", report.Payload{"metabroadcast.com": "http://mb/one"})
	r.EndReporting(ctx)

	events, err := st.Events(ctx, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 3 || events[0].Kind != store.EventRunFinished || events[1].Payload["metabroadcast.com"] != "http://mb/one" {
		t.Fatalf("unexpected persisted events: %+v", events)
	}
}

func TestMetricsReporterCountsAndWritesTextfile(t *testing.T) {
	path := t.TempDir() + "/equiv.prom"
	m := report.NewMetricsReporter(path, nil)

	ctx := context.Background()
	ctx = logging.WithRunID(ctx, m.StartReporting(ctx, "content"))
	m.ReportSuccessfulEvent(ctx, "a", nil)
	m.ReportSuccessfulEvent(ctx, "b", nil)
	m.ReportFailedEvent(ctx, "boom", nil)
	m.EndReporting(ctx)

	if got := counterValue(t, m, "equiv_events_succeeded_total", "content"); got != 2 {
		t.Fatalf("succeeded = %v, want 2", got)
	}
	if got := counterValue(t, m, "equiv_events_failed_total", "content"); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
	if got := counterValue(t, m, "equiv_last_run_failed_events", "content"); got != 1 {
		t.Fatalf("last run failed = %v, want 1", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "equiv_runs_finished_total") {
		t.Fatalf("textfile missing run counter:\n%s", data)
	}
}

func TestNtfyReporterSummarisesRun(t *testing.T) {
	tests := []struct {
		name          string
		failures      int
		expectTitle   string
		expectMessage string
		expectPrio    string
	}{
		{"clean run", 0, "equiv - Run Complete", "content run complete: 2 equivalences written", ""},
		{"run with failures", 1, "equiv - Run Complete (with errors)", "content run complete: 2 written, 1 failed", "high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTitle, gotBody, gotPrio string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
				gotTitle = r.Header.Get("Title")
				gotPrio = r.Header.Get("Priority")
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			n := report.NewNtfyReporter(server.URL, time.Second, nil)
			ctx := context.Background()
			ctx = logging.WithRunID(ctx, n.StartReporting(ctx, "content"))
			n.ReportSuccessfulEvent(ctx, "a", nil)
			n.ReportSuccessfulEvent(ctx, "b", nil)
			for i := 0; i < tt.failures; i++ {
				n.ReportFailedEvent(ctx, "boom", nil)
			}
			n.EndReporting(ctx)

			if gotTitle != tt.expectTitle {
				t.Fatalf("title = %q, want %q", gotTitle, tt.expectTitle)
			}
			if gotBody != tt.expectMessage {
				t.Fatalf("message = %q, want %q", gotBody, tt.expectMessage)
			}
			if gotPrio != tt.expectPrio {
				t.Fatalf("priority = %q, want %q", gotPrio, tt.expectPrio)
			}
		})
	}
}

func TestNewFromConfigHonoursToggles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, metrics := report.NewFromConfig(cfg, nil, nil); metrics != nil {
		t.Fatal("expected metrics reporter to be disabled by default")
	}
	cfg.Metrics.Enabled = true
	if _, metrics := report.NewFromConfig(cfg, nil, nil); metrics == nil {
		t.Fatal("expected metrics reporter when enabled")
	}
}
