package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/handler"
)

// RegisterUsers registers the user endpoints under /api/v1/users.  Register
// and login are open; the directory listing sits behind the authentication
// gate and, when enabled, the response cache.  The cache middleware must run
// after the gate because cache keys include the principal.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, gate, cache echo.MiddlewareFunc) {
	g := e.Group("/api/v1/users")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("", h.List, gate, cache)
}
