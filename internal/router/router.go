package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/tenseconds/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/tenseconds/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only the health checks used
// by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/health-check", handler.HealthCheck)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while /v1/me requires a valid access token.  limit guards register and
// login against credential stuffing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// JWTAuth runs first so the rate limiter can key on the user id.
	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), limit)
}

// RegisterGame registers the session lifecycle endpoints.  All of them
// require a valid access token.
func RegisterGame(e *echo.Echo, h *handler.GameHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/games", middleware.JWTAuth(jwtSecret), limit)
	g.POST("/start", h.StartGame)
	g.POST("/:id/stop", h.StopGame)
}

// RegisterStats registers the public read-only views.  Responses go
// through the response cache.
func RegisterStats(e *echo.Echo, h *handler.StatsHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/leaderboard", h.Leaderboard, cache)
	e.GET("/v1/analytics/user/:id", h.UserHistory, cache)
}
