package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

// OwnerHandler bundles the repositories owners use to manage restaurants,
// tables, time slots and admin holds.
type OwnerHandler struct {
	Restaurants *repository.RestaurantRepo
	Tables      *repository.TableRepo
	Slots       *repository.TimeSlotRepo
	Assignments *repository.AssignmentRepo
	SlotDurMin  int
}

// NewOwnerHandler constructs an OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(restaurants *repository.RestaurantRepo, tables *repository.TableRepo, slots *repository.TimeSlotRepo, assignments *repository.AssignmentRepo, slotDurMin int) *OwnerHandler {
	if restaurants == nil || tables == nil || slots == nil || assignments == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{
		Restaurants: restaurants,
		Tables:      tables,
		Slots:       slots,
		Assignments: assignments,
		SlotDurMin:  slotDurMin,
	}
}

// getUserID extracts the user_id set by JWTAuth and converts it to uint64.
// JWT numeric claims arrive as float64; tokens issued by other tooling may
// carry the subject as a string.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pathQueryID parses a numeric query parameter, rejecting zero.
func pathQueryID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
