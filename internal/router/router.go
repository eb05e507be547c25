package router // route registration for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/restobook/restaurant-table-reservation/internal/config"
	"github.com/restobook/restaurant-table-reservation/internal/handler"
	"github.com/restobook/restaurant-table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Unauthenticated
// operations live under /v1/auth; the profile endpoint lives under /v1 and
// requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: restaurant
// search and detail, slot listings and availability. These sit behind the
// Redis response cache; with no Redis client the cache middleware is a
// pass-through.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/restaurants", p.SearchRestaurants, cached)
	e.GET("/v1/restaurants/:id", p.GetRestaurant, cached)
	e.GET("/v1/restaurants/:id/slots", p.ListSlots, cached)
	e.GET("/v1/restaurants/:id/availability", p.ListAvailability, cached)
}
