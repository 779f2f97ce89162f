package ports

import (
	"context"

	"github.com/userhub/auth-server/internal/core/domain"
)

// EventPublisher hands session events off for asynchronous persistence.
// Publish must not block the caller.
type EventPublisher interface {
	Publish(event domain.SessionEvent)
}

// AuditRepository persists session events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event domain.SessionEvent) error
}
