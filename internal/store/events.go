package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EventKind classifies a report event row.
type EventKind string

const (
	EventRunStarted  EventKind = "start"
	EventSuccess     EventKind = "success"
	EventFailure     EventKind = "failure"
	EventRunFinished EventKind = "end"
)

// Event is one row of the audit trail written by the reporting sink.
type Event struct {
	ID        int64
	RunID     string
	RunName   string
	Kind      EventKind
	Subject   string
	Reason    string
	Payload   map[string]string
	CreatedAt time.Time
}

// RecordEvent appends ev to the audit trail.
func (s *Store) RecordEvent(ctx context.Context, ev Event) error {
	var payload any
	if len(ev.Payload) > 0 {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		payload = string(data)
	}
	created := ev.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
            INSERT INTO report_events (run_id, run_name, kind, subject, reason, payload_json, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.RunID,
			nullableString(ev.RunName),
			string(ev.Kind),
			nullableString(ev.Subject),
			nullableString(ev.Reason),
			payload,
			created.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Events returns the most recent events, newest first. A non-positive limit
// returns every event.
func (s *Store) Events(ctx context.Context, limit int) ([]Event, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, run_id, run_name, kind, subject, reason, payload_json, created_at FROM report_events ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev                               Event
			kind                             string
			runName, subject, reason, detail sql.NullString
			created                          string
		)
		if err := rows.Scan(&ev.ID, &ev.RunID, &runName, &kind, &subject, &reason, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = EventKind(kind)
		ev.RunName = runName.String
		ev.Subject = subject.String
		ev.Reason = reason.String
		if detail.String != "" {
			if err := json.Unmarshal([]byte(detail.String), &ev.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload %d: %w", ev.ID, err)
			}
		}
		if ts, err := parseTimeString(created); err == nil {
			ev.CreatedAt = ts
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
