package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WriteErrorRecord keeps a trace of dependency failures for later analysis.
func (s *Store) WriteErrorRecord(ctx context.Context, component, message string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO error_records (id, component, message, created_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), component, message, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert error record: %w", err)
	}
	return nil
}
