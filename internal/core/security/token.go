package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhub/auth-server/internal/core/domain"
)

// AccessTokenTTL is the lifetime of an access token.
const AccessTokenTTL = time.Minute

// TokenConfig is the signing configuration provisioned out of band.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// AccessClaims are the identity claims carried by an access token. The user
// id travels as the registered "sub" claim.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTSigner issues and verifies HS256 access tokens.
type JWTSigner struct {
	cfg TokenConfig
	now func() time.Time
}

// NewJWTSigner fails with domain.ErrConfiguration when the secret is empty.
func NewJWTSigner(cfg TokenConfig) (*JWTSigner, error) {
	if cfg.Secret == "" {
		return nil, domain.ErrConfiguration
	}
	return &JWTSigner{cfg: cfg, now: time.Now}, nil
}

// Issue signs a token for the given identity that expires AccessTokenTTL
// after issuance.
func (s *JWTSigner) Issue(userID, email string, role domain.Role) (string, error) {
	if s == nil || s.cfg.Secret == "" {
		return "", domain.ErrConfiguration
	}

	now := s.now().UTC()
	claims := AccessClaims{
		Email: email,
		Role:  role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

var ErrInvalidAccessToken = errors.New("invalid access token")

// Verify checks signature, expiry, issuer and audience and returns the claims.
func (s *JWTSigner) Verify(token string) (*AccessClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidAccessToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}
