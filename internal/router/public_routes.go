package router

import (
	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/handler"
)

// RegisterPublic registers unauthenticated discovery routes.  The
// optional middleware (response cache and rate limiter) is applied to
// the whole group; pass none when Redis is unavailable and the routes
// serve uncached.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/categories", b.ListCategories)
	g.GET("/events", b.ListEvents)
	g.GET("/events/:slug", b.GetEvent)
	g.GET("/banners", b.ListBanners)
}
