package domain

import (
	"strings"
	"time"
)

// RefreshTokenTTL is how long a refresh token stays valid after issuance.
const RefreshTokenTTL = 7 * 24 * time.Hour

// Role is the closed set of authorization roles a user can hold.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:  "User",
	RoleAdmin: "Admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[RoleUser]
}

// ParseRole matches s against the role names ignoring case and surrounding
// whitespace. Anything unrecognised resolves to RoleUser.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	for role, name := range roleNames {
		if strings.EqualFold(s, name) {
			return role
		}
	}
	return RoleUser
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText never fails: unknown names fall back to RoleUser.
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// User is the identity and credential state of an account.
// RefreshToken and RefreshTokenExpiry are either both set or both nil.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	IsActive           bool
	Role               Role
	RefreshToken       *string
	RefreshTokenExpiry *time.Time
}

// HasSession reports whether the user holds a refresh token that has not
// expired at now. Expiry equal to now is still valid.
func (u *User) HasSession(now time.Time) bool {
	if u.RefreshToken == nil || u.RefreshTokenExpiry == nil {
		return false
	}
	return !u.RefreshTokenExpiry.Before(now)
}

// SetRefreshToken stores token together with its expiry.
func (u *User) SetRefreshToken(token string, expiresAt time.Time) {
	exp := expiresAt.UTC()
	u.RefreshToken = &token
	u.RefreshTokenExpiry = &exp
}

// ClearRefreshToken drops the session slot.
func (u *User) ClearRefreshToken() {
	u.RefreshToken = nil
	u.RefreshTokenExpiry = nil
}

// Clone returns a deep copy so callers never share the pointer fields.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		c.RefreshToken = &token
	}
	if u.RefreshTokenExpiry != nil {
		exp := *u.RefreshTokenExpiry
		c.RefreshTokenExpiry = &exp
	}
	return &c
}
