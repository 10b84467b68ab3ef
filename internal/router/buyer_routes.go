package router

import (
	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/handler"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/middleware"
)

// RegisterBuyer registers the authenticated buyer routes: purchasing
// tickets and listing the caller's own tickets.  Every account holds
// the buyer role, so JWT authentication is the effective gate here.
func RegisterBuyer(e *echo.Echo, p *handler.PurchaseHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.Use(mw...)
	g.POST("/events/:slug/purchase", p.Purchase)
	g.GET("/me/tickets", p.MyTickets)
	g.GET("/me/tickets/:id", p.MyTicket)
}
