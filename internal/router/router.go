package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/attendance-tracker/internal/config"
	"github.com/iliyamo/attendance-tracker/internal/handler"
	"github.com/iliyamo/attendance-tracker/internal/middleware"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Locations  *handler.LocationHandler
}

// Register mounts all routes on the provided Echo instance. The only
// unauthenticated endpoints are the health check and login; every other
// route sits behind the token guard, so authorization happens before any
// handler side effect. Login is additionally rate limited and the static
// location listing is served through the Redis cache; both degrade to
// pass-throughs when rdb is nil.
func Register(e *echo.Echo, h Handlers, cfg config.Config, versions middleware.VersionChecker, rdb *redis.Client) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Login is the only route accepting credential guesses, so it gets the
	// token-bucket limiter.
	api.POST("/login", h.Auth.Login, middleware.LoginRateLimit(config.LoadRateLimitConfig(), rdb))

	// Everything below requires a valid, current session token.
	authed := api.Group("", middleware.TokenGuard(cfg.JWTSecret, versions))
	authed.POST("/refresh_token", h.Auth.RefreshToken)
	authed.GET("/dashboard_data", h.Auth.DashboardData)
	authed.GET("/cek_login", h.Auth.CheckLogin)
	authed.GET("/get_permitted_locations", h.Locations.List,
		middleware.CacheListing(config.LoadCacheConfig(), rdb))
	authed.POST("/check_in", h.Attendance.CheckIn)
	authed.POST("/check_out", h.Attendance.CheckOut)
	authed.GET("/attendance/today", h.Attendance.Today)
}
