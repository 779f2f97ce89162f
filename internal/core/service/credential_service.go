package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-server/internal/core/domain"
	"github.com/userhub/auth-server/internal/core/ports"
	"github.com/userhub/auth-server/internal/pkg/metrics"
)

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so both failure paths pay the same bcrypt cost.
const dummyPassword = "unknown-account-placeholder"

// RefreshGuard abstracts the refresh replay guard (Redis). Claim returns
// false when another caller already presented the same token.
type RefreshGuard interface {
	Claim(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) error
}

// CredentialService implements registration, login, refresh, logout and the
// user record operations.
type CredentialService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	signer  ports.TokenIssuer
	refresh ports.RefreshTokenGenerator
	log     zerolog.Logger

	guard  RefreshGuard
	events ports.EventPublisher
	now    func() time.Time
	newID  func() string

	dummyOnce sync.Once
	dummyHash string
}

var _ ports.CredentialService = (*CredentialService)(nil)

type Option func(*CredentialService)

func WithRefreshGuard(g RefreshGuard) Option {
	return func(s *CredentialService) { s.guard = g }
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *CredentialService) { s.events = p }
}

// WithClock replaces time.Now; expiry arithmetic uses this clock.
func WithClock(now func() time.Time) Option {
	return func(s *CredentialService) { s.now = now }
}

func NewCredentialService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	signer ports.TokenIssuer,
	refresh ports.RefreshTokenGenerator,
	log zerolog.Logger,
	opts ...Option,
) *CredentialService {
	s := &CredentialService{
		repo:    repo,
		hasher:  hasher,
		signer:  signer,
		refresh: refresh,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CredentialService) Register(ctx context.Context, in ports.RegisterInput) (view *ports.UserView, err error) {
	defer func() { metrics.ObserveResult(metrics.RegistrationsTotal, err, domain.ErrorKind) }()

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("registration failed: %w", domain.ErrDuplicateEmail)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	user := &domain.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		Role:         domain.ParseRole(in.Role),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.log.Error().Err(err).Msg("failed to create user")
		}
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	s.publish(user.ID, domain.EventRegistered)

	v := toView(user)
	return &v, nil
}

func (s *CredentialService) Login(ctx context.Context, email, password string) (pair *ports.TokenPair, err error) {
	defer func() { metrics.ObserveResult(metrics.LoginsTotal, err, domain.ErrorKind) }()

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login failed: %w", err)
		}
		s.hasher.Verify(password, s.placeholderHash())
		return nil, fmt.Errorf("login failed: %w", domain.ErrInvalidCredentials)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, fmt.Errorf("login failed: %w", domain.ErrInvalidCredentials)
	}

	pair, err = s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken, s.now().Add(domain.RefreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	s.publish(user.ID, domain.EventLogin)
	return pair, nil
}

// RefreshSession consumes presented and returns a rotated token pair. The
// swap is a conditional update in the store, so of two concurrent calls with
// the same token at most one succeeds.
func (s *CredentialService) RefreshSession(ctx context.Context, presented string) (pair *ports.TokenPair, err error) {
	defer func() { metrics.ObserveResult(metrics.RefreshesTotal, err, domain.ErrorKind) }()

	if presented == "" {
		return nil, fmt.Errorf("refresh token error: %w", domain.ErrInvalidOrExpiredRefreshToken)
	}

	if s.guard != nil {
		claimed, gerr := s.guard.Claim(ctx, presented)
		switch {
		case gerr != nil:
			s.log.Warn().Err(gerr).Msg("refresh guard unavailable, relying on store")
		case !claimed:
			return nil, fmt.Errorf("refresh token error: %w", domain.ErrInvalidOrExpiredRefreshToken)
		}
	}

	next, err := s.refresh.Generate()
	if err != nil {
		s.releaseGuard(ctx, presented)
		return nil, fmt.Errorf("refresh token error: %w", err)
	}

	now := s.now()
	user, err := s.repo.RotateRefreshToken(ctx, presented, next, now.Add(domain.RefreshTokenTTL), now)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidOrExpiredRefreshToken) {
			s.releaseGuard(ctx, presented)
			s.log.Error().Err(err).Msg("failed to rotate refresh token")
		}
		return nil, fmt.Errorf("refresh token error: %w", err)
	}

	access, err := s.signer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		// The caller never sees next, so hand the slot back to presented.
		s.restoreRefreshToken(ctx, next, presented)
		s.releaseGuard(ctx, presented)
		return nil, fmt.Errorf("refresh token error: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("session refreshed")
	s.publish(user.ID, domain.EventRefresh)
	return &ports.TokenPair{RefreshToken: next, AccessToken: access}, nil
}

// Logout clears the session slot of userID. Logging out twice is a no-op.
func (s *CredentialService) Logout(ctx context.Context, userID string) (err error) {
	defer func() { metrics.ObserveResult(metrics.LogoutsTotal, err, domain.ErrorKind) }()

	if err := s.repo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("user logged out")
	s.publish(userID, domain.EventLogout)
	return nil
}

func (s *CredentialService) GetUserByID(ctx context.Context, id string) (*ports.UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	v := toView(user)
	return &v, nil
}

func (s *CredentialService) ListUsers(ctx context.Context) ([]ports.UserView, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]ports.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, toView(u))
	}
	return out, nil
}

// UpdateUser replaces every profile field of id. The password is rehashed on
// every call, even when it did not change.
func (s *CredentialService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*ports.UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if other, err := s.repo.FindByEmail(ctx, in.Email); err == nil && other.ID != id {
		return nil, fmt.Errorf("update user: %w", domain.ErrDuplicateEmail)
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("update user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.Name = in.Name
	user.Email = in.Email
	user.PasswordHash = hash
	user.Role = domain.ParseRole(in.Role)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info().Str("user_id", id).Msg("user updated")
	v := toView(user)
	return &v, nil
}

func (s *CredentialService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("user_id", id).Msg("user deleted")
	s.publish(id, domain.EventDeleted)
	return nil
}

// issue builds a fresh token pair without persisting anything.
func (s *CredentialService) issue(user *domain.User) (*ports.TokenPair, error) {
	access, err := s.signer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.refresh.Generate()
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{RefreshToken: refresh, AccessToken: access}, nil
}

func (s *CredentialService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare placeholder hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// restoreRefreshToken swaps next back to presented with a fresh expiry. It
// is a conditional swap too, so a concurrent logout or login wins over it.
func (s *CredentialService) restoreRefreshToken(ctx context.Context, next, presented string) {
	now := s.now()
	if _, err := s.repo.RotateRefreshToken(ctx, next, presented, now.Add(domain.RefreshTokenTTL), now); err != nil {
		s.log.Error().Err(err).Msg("failed to restore refresh token after signing error")
	}
}

func (s *CredentialService) releaseGuard(ctx context.Context, token string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, token); err != nil {
		s.log.Warn().Err(err).Msg("failed to release refresh guard")
	}
}

func (s *CredentialService) publish(userID string, kind domain.SessionEventKind) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.SessionEvent{UserID: userID, Kind: kind, At: s.now().UTC()})
}

func toView(u *domain.User) ports.UserView {
	v := ports.UserView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsActive: u.IsActive,
		Role:     u.Role.String(),
	}
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		v.RefreshToken = &token
	}
	return v
}
