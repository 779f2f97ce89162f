package ports

import "github.com/userhub/auth-server/internal/core/domain"

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs short-lived access tokens.
type TokenIssuer interface {
	Issue(userID, email string, role domain.Role) (string, error)
}

type RefreshTokenGenerator interface {
	Generate() (string, error)
}
