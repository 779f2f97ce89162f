package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const refreshTokenBytes = 32

// RefreshTokenGenerator produces opaque refresh tokens: 32 random bytes,
// standard base64. Uniqueness rests on entropy alone.
type RefreshTokenGenerator struct {
	random io.Reader
}

func NewRefreshTokenGenerator() *RefreshTokenGenerator {
	return &RefreshTokenGenerator{random: rand.Reader}
}

func (g *RefreshTokenGenerator) Generate() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
