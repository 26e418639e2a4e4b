package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/velours-studio/reflet/internal/memory"
)

// UpsertProfile writes the full profile document keyed by user id.
func (s *Store) UpsertProfile(ctx context.Context, p memory.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, created_at, updated_at, engagement_tier, personalization_score, profile)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			updated_at = $3,
			engagement_tier = $4,
			personalization_score = $5,
			profile = $6`,
		p.UserID, p.CreatedAt, p.LastUpdated, p.Metadata.EngagementTier, p.Metadata.PersonalizationScore, doc,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile loads a profile document. Returns (nil, nil) when the user has
// none yet.
func (s *Store) GetProfile(ctx context.Context, userID string) (*memory.Profile, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `
		SELECT profile FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	var p memory.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}
