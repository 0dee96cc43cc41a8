package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/httperr"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/utils"
)

// UserLoader is the slice of the user repository the gate needs to turn a
// token subject into a live principal.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Context keys under which the gate stores the authenticated principal and
// the raw bearer token.
const (
	ctxUserKey  = "auth_user"
	ctxTokenKey = "auth_token"
)

// Auth returns the authentication gate every protected route passes through.
// The request terminates in one of three states: unauthenticated (header
// absent, wrong scheme or no token text), token invalid, or authenticated
// with the live user attached to the context.  A structurally valid token
// whose subject no longer exists is reported as AUTH_TOKEN_INVALID, the same
// as a forged one, so callers cannot probe whether an id ever existed.
func Auth(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return httperr.Unauthorized("AUTH_MISSING")
			}

			// The scheme comparison is case-insensitive: "bearer", "Bearer"
			// and "BEARER" are all acceptable.
			scheme, rest, _ := strings.Cut(header, " ")
			if !strings.EqualFold(scheme, "bearer") {
				return httperr.Unauthorized("AUTH_WRONG_TYPE")
			}
			raw := strings.TrimSpace(rest)
			if raw == "" {
				return httperr.Unauthorized("AUTH_TOKEN_MISSING")
			}

			id, err := utils.ParseSubject(secret, raw)
			if err != nil {
				return httperr.Unauthorized("AUTH_TOKEN_INVALID")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return httperr.Unauthorized("AUTH_TOKEN_INVALID")
				}
				return httperr.Internal(err)
			}

			c.Set(ctxUserKey, u)
			c.Set(ctxTokenKey, raw)
			return next(c)
		}
	}
}

// CurrentUser returns the principal attached by Auth.  It must only be
// called from handlers behind the gate.
func CurrentUser(c echo.Context) model.User {
	u, _ := c.Get(ctxUserKey).(model.User)
	return u
}

// CurrentToken returns the raw bearer token attached by Auth.
func CurrentToken(c echo.Context) string {
	t, _ := c.Get(ctxTokenKey).(string)
	return t
}
