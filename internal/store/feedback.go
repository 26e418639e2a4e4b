package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/velours-studio/reflet/internal/feedback"
)

// UpsertFeedbackSession writes a session and its current status.
func (s *Store) UpsertFeedbackSession(ctx context.Context, sess feedback.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback_sessions (id, user_id, trigger_event, prompt, status, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = $5,
			resolved_at = $7`,
		sess.ID, sess.UserID, string(sess.Trigger), sess.Prompt, string(sess.Status), sess.CreatedAt, sess.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert feedback session: %w", err)
	}
	return nil
}

// WriteFeedbackRecord persists a parsed answer. Records are immutable: a
// conflicting insert is a no-op.
func (s *Store) WriteFeedbackRecord(ctx context.Context, rec feedback.Record) error {
	prefsJSON, err := json.Marshal(rec.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	planJSON, err := json.Marshal(rec.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	var rating *int
	var method *string
	if rec.Rating != nil {
		rating = &rec.Rating.Value
		method = &rec.Rating.Method
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO feedback_records (session_id, user_id, raw_text, rating, rating_method, sentiment, sentiment_confidence, preferences, suggestions, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING`,
		rec.SessionID, rec.UserID, rec.RawText, rating, method,
		rec.Sentiment.Label, rec.Sentiment.Confidence, prefsJSON, rec.Suggestions, planJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback record: %w", err)
	}
	return nil
}
