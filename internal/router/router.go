package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                           // Echo web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus scrape endpoint

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/handler"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check for load balancers and the Prometheus metrics
// endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only mints a new
	// access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body (ends one session)
	// or a valid bearer token (ends all sessions), so no JWT middleware
	// here.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateMe)
}
