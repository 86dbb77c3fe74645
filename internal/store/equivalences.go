package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"equiv/internal/model"
)

// Equivalence is one persisted strong equivalence of a target.
type Equivalence struct {
	TargetURI    string
	Publisher    model.Publisher
	CandidateURI string
	// Score is nil when the candidate won with a null score.
	Score     *float64
	RunID     string
	CreatedAt time.Time
}

// SaveEquivalences replaces every stored equivalence of targetURI with
// equivalences.
func (s *Store) SaveEquivalences(ctx context.Context, targetURI string, equivalences []Equivalence) error {
	targetURI = strings.TrimSpace(targetURI)
	if targetURI == "" {
		return fmt.Errorf("save equivalences: target uri is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM equivalences WHERE target_uri = ?", targetURI); err != nil {
			return fmt.Errorf("clear equivalences: %w", err)
		}
		stamp := now()
		for _, eq := range equivalences {
			var score any
			if eq.Score != nil {
				score = *eq.Score
			}
			if _, err := tx.ExecContext(ctx, `
                INSERT OR REPLACE INTO equivalences (target_uri, publisher, candidate_uri, score, run_id, created_at)
                VALUES (?, ?, ?, ?, ?, ?)`,
				targetURI, string(eq.Publisher), eq.CandidateURI, score, nullableString(eq.RunID), stamp,
			); err != nil {
				return fmt.Errorf("insert equivalence: %w", err)
			}
		}
		return nil
	})
}

// EquivalencesFor returns the stored equivalences of targetURI ordered by
// publisher then candidate.
func (s *Store) EquivalencesFor(ctx context.Context, targetURI string) ([]Equivalence, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
        SELECT target_uri, publisher, candidate_uri, score, run_id, created_at
        FROM equivalences WHERE target_uri = ?
        ORDER BY publisher, candidate_uri`,
		strings.TrimSpace(targetURI),
	)
	if err != nil {
		return nil, fmt.Errorf("equivalences for: %w", err)
	}
	defer rows.Close()

	var out []Equivalence
	for rows.Next() {
		var (
			eq        Equivalence
			publisher string
			score     sql.NullFloat64
			runID     sql.NullString
			created   string
		)
		if err := rows.Scan(&eq.TargetURI, &publisher, &eq.CandidateURI, &score, &runID, &created); err != nil {
			return nil, fmt.Errorf("scan equivalence: %w", err)
		}
		eq.Publisher = model.Publisher(publisher)
		if score.Valid {
			v := score.Float64
			eq.Score = &v
		}
		eq.RunID = runID.String
		if ts, err := parseTimeString(created); err == nil {
			eq.CreatedAt = ts
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}
