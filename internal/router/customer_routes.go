package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/restobook/restaurant-table-reservation/internal/config"
	"github.com/restobook/restaurant-table-reservation/internal/handler"
	"github.com/restobook/restaurant-table-reservation/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1. All routes
// require a valid JWT and the CUSTOMER role. The booking endpoint is rate
// limited: after a 409 clients tend to hammer retry, and the token bucket
// keeps that from starving the ledger.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
		middleware.NewTokenBucket(rlCfg, rdb),
	)
	g.POST("/restaurants/:id/bookings", h.CreateBooking)
	g.GET("/me/bookings", h.MyBookings)
	g.DELETE("/me/bookings/:assignment_id", h.CancelBooking)
}
