package ports

import (
	"context"
	"time"

	"github.com/userhub/auth-server/internal/core/domain"
)

// UserRepository is the session store adapter over user records.
// Lookups that miss return domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update writes the profile fields: name, email, password hash and role.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error

	// SetRefreshToken overwrites the session slot of user id.
	SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// ClearRefreshToken empties the session slot of user id.
	ClearRefreshToken(ctx context.Context, id string) error
	// RotateRefreshToken atomically replaces current with next, provided that
	// some record holds current with an expiry not before now. It returns the
	// updated record, or domain.ErrInvalidOrExpiredRefreshToken.
	RotateRefreshToken(ctx context.Context, current, next string, expiresAt, now time.Time) (*domain.User, error)
}
