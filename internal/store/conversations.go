package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velours-studio/reflet/internal/features"
	"github.com/velours-studio/reflet/internal/reflection"
)

// WriteConversation persists one processed exchange with its score.
func (s *Store) WriteConversation(ctx context.Context, rec features.Record, score reflection.Score) error {
	contextJSON, err := json.Marshal(rec.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	emotionJSON, err := json.Marshal(rec.Emotion)
	if err != nil {
		return fmt.Errorf("marshal emotion: %w", err)
	}
	themeJSON, err := json.Marshal(rec.Theme)
	if err != nil {
		return fmt.Errorf("marshal theme: %w", err)
	}
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversations (id, user_id, session_id, created_at, user_text, assistant_text, context, emotion, intent, intent_confidence, theme, score, overall)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Context.UserID, rec.Context.SessionID, rec.Timestamp,
		rec.UserText, rec.AssistantText, contextJSON, emotionJSON,
		rec.Intent.Label, rec.Intent.Confidence, themeJSON, scoreJSON, score.Overall,
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// ConversationSummary is the light row used for history queries.
type ConversationSummary struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserText  string    `json:"user_text"`
	Intent    string    `json:"intent"`
	Theme     string    `json:"theme"`
	Overall   float64   `json:"overall"`
}

// ConversationsByUser returns the most recent conversations for a user.
func (s *Store) ConversationsByUser(ctx context.Context, userID string, limit int) ([]ConversationSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, user_text, intent, theme->>'label', overall
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []ConversationSummary
	for rows.Next() {
		var c ConversationSummary
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UserText, &c.Intent, &c.Theme, &c.Overall); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}
