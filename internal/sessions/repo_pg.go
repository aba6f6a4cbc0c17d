package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert inserts or replaces a session row keyed by anon_session_id.
func (r *PGRepo) Upsert(ctx context.Context, session Session) error {
	const query = `
INSERT INTO anonymous_sessions (anon_session_id, channel, email, payload, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (anon_session_id) DO UPDATE
SET channel = EXCLUDED.channel,
    email = EXCLUDED.email,
    payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at`

	payload, err := json.Marshal(session.Payload)
	if err != nil {
		return fmt.Errorf("marshal session payload: %w", err)
	}

	var email any
	if session.Email != "" {
		email = session.Email
	}

	_, err = r.DB.ExecContext(ctx, query,
		session.AnonSessionID,
		session.Channel,
		email,
		payload,
		session.UpdatedAt,
	)
	return err
}

// ListScores reads every analyzed session payload in the channel and extracts
// the stored overall score.
func (r *PGRepo) ListScores(ctx context.Context, channel string) ([]int, error) {
	const query = `
SELECT payload
FROM anonymous_sessions
WHERE channel = $1 AND payload->'analysis' IS NOT NULL`

	rows, err := r.DB.QueryContext(ctx, query, channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if score, ok := scoreFromPayload(raw); ok {
			scores = append(scores, score)
		}
	}
	return scores, rows.Err()
}

// scoreFromPayload digs the overall score out of a stored payload, accepting
// the legacy "score" field when "overallScore" is absent.
func scoreFromPayload(raw []byte) (int, bool) {
	var payload struct {
		Analysis struct {
			OverallScore *float64 `json:"overallScore"`
			Score        *float64 `json:"score"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, false
	}
	if payload.Analysis.OverallScore != nil {
		return int(math.Round(*payload.Analysis.OverallScore)), true
	}
	if payload.Analysis.Score != nil {
		return int(math.Round(*payload.Analysis.Score)), true
	}
	return 0, false
}

var _ Repo = (*PGRepo)(nil)
