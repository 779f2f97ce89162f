package ports

import (
	"context"
)

// RegisterInput carries the fields accepted on signup. Role is free text and
// falls back to User when it does not name a role.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput replaces every profile field of a user. Password is always
// rehashed.
type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	RefreshToken string
	AccessToken  string
}

// UserView is the public projection of a user record. It never carries the
// password hash.
type UserView struct {
	ID           string
	Name         string
	Email        string
	IsActive     bool
	Role         string
	RefreshToken *string
}

// CredentialService defines the credential and session use cases.
type CredentialService interface {
	Register(ctx context.Context, input RegisterInput) (*UserView, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID string) error
	GetUserByID(ctx context.Context, id string) (*UserView, error)
	ListUsers(ctx context.Context) ([]UserView, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*UserView, error)
	DeleteUser(ctx context.Context, id string) error
}
