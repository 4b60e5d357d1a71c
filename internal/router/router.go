package router // route registration for the listening-room API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/symphozeon/backend/internal/config"
	"github.com/symphozeon/backend/internal/handler"
	"github.com/symphozeon/backend/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the /v1/auth endpoints plus the
// authenticated /v1/me profile route.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse surface: the
// public-room listing and code lookup, served through the Redis
// response cache when one is configured.
func RegisterPublic(e *echo.Echo, h *handler.RoomHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/rooms", h.ListPublicRooms, cache)
	e.GET("/v1/rooms/code/:code", h.GetRoomByCode, cache)
}
