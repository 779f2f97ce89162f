package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-server/internal/api/handler"
	"github.com/userhub/auth-server/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the response envelope with success=false and data=null.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.Envelope) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.Envelope{Message: fmt.Sprintf("%v", he.Message)}
	}

	kind := domain.ErrorKind(err)
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, handler.Envelope{Message: domain.ErrDuplicateEmail.Error(), Kind: kind}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.Envelope{Message: domain.ErrInvalidCredentials.Error(), Kind: kind}
	case errors.Is(err, domain.ErrInvalidOrExpiredRefreshToken):
		return http.StatusUnauthorized, handler.Envelope{Message: domain.ErrInvalidOrExpiredRefreshToken.Error(), Kind: kind}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.Envelope{Message: domain.ErrUserNotFound.Error(), Kind: kind}
	}

	// Configuration errors and infrastructure failures alike: log the cause,
	// answer with a generic message.
	log.Error().
		Err(err).
		Str("kind", kind).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.Envelope{Message: "internal server error", Kind: kind}
}
