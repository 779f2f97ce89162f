package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/userhub/auth-server/internal/core/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event domain.SessionEvent) error {
	query := `INSERT INTO session_events (user_id, kind, at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, event.UserID, string(event.Kind), event.At.UTC()); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}
