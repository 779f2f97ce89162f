package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/auth-server/internal/api/middleware"
)

// ctxUserID returns the caller id injected by the Auth middleware. An empty
// value means the route was mounted without Auth.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.CtxUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
