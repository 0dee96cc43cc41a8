package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/handler"
)

// RegisterPosts registers the post endpoints under /api/v1/posts.  Every
// route requires an authenticated principal; eligibility beyond that is
// decided per row inside the repository queries.  Only the listing is
// cacheable.
func RegisterPosts(e *echo.Echo, h *handler.PostHandler, gate, cache echo.MiddlewareFunc) {
	g := e.Group("/api/v1/posts", gate)
	g.GET("", h.List, cache)
	g.POST("", h.Create)
	g.GET("/:id", h.Show)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
