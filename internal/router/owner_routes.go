package router

import (
	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/handler"
	"github.com/restobook/restaurant-table-reservation/internal/middleware"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1. All routes
// require a valid JWT and the OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Restaurants ----
	g.POST("/owner/restaurants", o.CreateRestaurant)
	g.GET("/owner/restaurants", o.ListMyRestaurants)
	g.PATCH("/owner/restaurants/:id", o.UpdateRestaurant)
	g.DELETE("/owner/restaurants/:id", o.DeactivateRestaurant)

	// ---- Tables ----
	g.POST("/owner/restaurants/:id/tables", o.CreateTable)
	g.GET("/owner/restaurants/:id/tables", o.ListTables)
	g.PATCH("/owner/tables/:table_id", o.UpdateTable)
	g.DELETE("/owner/tables/:table_id", o.DeactivateTable)

	// ---- Time slots ----
	g.POST("/owner/restaurants/:id/slots", o.CreateSlot)
	g.POST("/owner/restaurants/:id/slots/generate", o.GenerateSlots)
	g.GET("/owner/restaurants/:id/slots", o.ListSlotsForOwner)
	g.DELETE("/owner/slots/:slot_id", o.DeactivateSlot)

	// ---- Reservations ----
	g.POST("/owner/restaurants/:id/reserve", o.AdminReserve)
	g.GET("/owner/restaurants/:id/status", o.TableStatusBoard)
	g.GET("/owner/restaurants/:id/assignments", o.ListRestaurantAssignments)
	g.GET("/owner/tables/:table_id/assignments", o.ListTableAssignments)
	g.DELETE("/owner/assignments/:assignment_id", o.CancelAssignment)
}
