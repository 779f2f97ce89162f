package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/userhub/auth-server/internal/core/domain"
	"github.com/userhub/auth-server/internal/core/security"
)

func newSigner(t *testing.T) *security.JWTSigner {
	t.Helper()
	s, err := security.NewJWTSigner(security.TokenConfig{Secret: "secret", Issuer: "test", Audience: "test"})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return s
}

func runAuth(t *testing.T, verifier TokenVerifier, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(verifier)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signer := newSigner(t)
	token, err := signer.Issue("u-1", "alice@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	called := false
	rec := runAuth(t, signer, "Bearer "+token, func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "u-1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(CtxEmail) != "alice@example.com" {
			t.Fatalf("email not set")
		}
		if c.Get(CtxRole) != "Admin" {
			t.Fatalf("role not set: %v", c.Get(CtxRole))
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	signer := newSigner(t)
	other, err := security.NewJWTSigner(security.TokenConfig{Secret: "other", Issuer: "test", Audience: "test"})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	foreign, _ := other.Issue("u-1", "a@b.c", domain.RoleUser)

	cases := map[string]string{
		"missing header":    "",
		"wrong scheme":      "Token abc",
		"empty token":       "Bearer ",
		"malformed token":   "Bearer not-a-token",
		"foreign signature": "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := runAuth(t, signer, header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
