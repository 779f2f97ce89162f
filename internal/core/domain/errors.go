package domain

import "errors"

var (
	ErrDuplicateEmail               = errors.New("user with this email already exists")
	ErrInvalidCredentials           = errors.New("invalid credentials")
	ErrInvalidOrExpiredRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound                 = errors.New("user not found")
	ErrConfiguration                = errors.New("token signing is not configured")
)

const kindInternal = "Internal"

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrDuplicateEmail, "DuplicateEmail"},
	{ErrInvalidCredentials, "InvalidCredentials"},
	{ErrInvalidOrExpiredRefreshToken, "InvalidOrExpiredRefreshToken"},
	{ErrUserNotFound, "UserNotFound"},
	{ErrConfiguration, "ConfigurationError"},
}

// ErrorKind returns the stable kind name of err, or "Internal" when err is
// not one of the domain errors.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return kindInternal
}
