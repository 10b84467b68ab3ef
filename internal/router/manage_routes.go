package router

import (
	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/handler"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/middleware"
)

// RegisterManage registers the organizer surface.  Event and tier
// management plus the check-in scanner accept both the creator and the
// organizer role; the back office (categories, banners, users, stats,
// ticket overrides) is organizer only.  Ownership of individual events
// is enforced inside the handlers.  The stats dashboard sits behind the
// response cache, so it tolerates a bounded staleness window.
func RegisterManage(e *echo.Echo, jwtSecret string,
	ev *handler.ManageEventHandler, ci *handler.CheckinHandler,
	cat *handler.CategoryAdminHandler, ban *handler.BannerAdminHandler,
	adm *handler.AdminHandler, cache echo.MiddlewareFunc) {

	manage := e.Group("/v1/manage",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireEventManager())

	manage.GET("/events", ev.ListMine)
	manage.POST("/events", ev.Create)
	manage.GET("/events/:id", ev.Get)
	manage.PUT("/events/:id", ev.Update)
	manage.DELETE("/events/:id", ev.Delete)
	manage.PATCH("/events/:id/publish", ev.SetPublished)
	manage.PATCH("/events/:id/feature", ev.SetFeatured)
	manage.GET("/events/:id/sales", ev.Sales)
	manage.POST("/events/:id/tiers", ev.CreateTier)
	manage.PUT("/events/:id/tiers/:tier_id", ev.UpdateTier)
	manage.DELETE("/events/:id/tiers/:tier_id", ev.DeleteTier)

	checkin := e.Group("/v1/checkin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireEventManager())
	checkin.POST("", ci.Checkin)
	checkin.GET("/recent", ci.Recent)
	checkin.GET("/:code", ci.Lookup)

	admin := e.Group("/v1/manage",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireAdmin())
	admin.POST("/categories", cat.Create)
	admin.PUT("/categories/:id", cat.Update)
	admin.DELETE("/categories/:id", cat.Delete)
	admin.GET("/banners", ban.ListAll)
	admin.POST("/banners", ban.Create)
	admin.PUT("/banners/:id", ban.Update)
	admin.DELETE("/banners/:id", ban.Delete)
	admin.GET("/users", adm.ListUsers)
	admin.POST("/users/:id/roles", adm.GrantRole)
	admin.DELETE("/users/:id/roles/:role", adm.RevokeRole)
	// The overview aggregates are identical for every organizer, so the
	// shared response cache applies.  Auth runs first: the cache is a
	// route-level middleware and only reached past JWTAuth/RequireAdmin.
	admin.GET("/stats", adm.Overview, cache)
	admin.GET("/tickets", adm.ListTickets)
	admin.PATCH("/tickets/:id/status", adm.OverrideTicketStatus)
}
