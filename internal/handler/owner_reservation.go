package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

type adminReserveReq struct {
	TableID    uint64 `json:"table_id"`
	TimeSlotID uint64 `json:"time_slot_id"`
	Date       string `json:"date"`
}

// AdminReserve handles POST /v1/owner/restaurants/:id/reserve. It places an
// administrative hold on one table for one slot and date, carrying no party
// and no customer. The hold competes with customer bookings on equal terms;
// if a customer got there first the owner sees 409 like anyone else.
func (h *OwnerHandler) AdminReserve(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rest, err := h.ownedRestaurant(c, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	var req adminReserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableID == 0 || req.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id and time_slot_id are required"})
	}
	if !model.ValidDate(req.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	a, err := h.Assignments.TryAssign(c.Request().Context(), repository.AssignRequest{
		RestaurantID: rest.ID,
		TableID:      req.TableID,
		TimeSlotID:   req.TimeSlotID,
		Date:         req.Date,
		Kind:         model.KindAdminReserve,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table already assigned for this slot"})
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"assignment_id": a.ID,
		"kind":          string(a.Kind),
		"table_id":      a.TableID,
		"time_slot_id":  a.TimeSlotID,
		"date":          a.Date,
	})
}

// TableStatusBoard handles GET /v1/owner/restaurants/:id/status?slot_id=&date=.
// It lists every active table with derived occupancy for one slot and date:
// free, booked (with customer details), or admin reserved.
func (h *OwnerHandler) TableStatusBoard(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	restID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	slotID, ok := pathQueryID(c, "slot_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id query parameter required"})
	}
	date := c.QueryParam("date")
	if !model.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter required (YYYY-MM-DD)"})
	}

	statuses, err := h.Assignments.StatusByRestaurant(c.Request().Context(), restID, slotID, date, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRestaurantNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, statuses)
}

// ListTableAssignments handles GET /v1/owner/tables/:table_id/assignments.
// Full history for one table, bookings and admin holds, cancelled included.
func (h *OwnerHandler) ListTableAssignments(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	details, err := h.Assignments.ListByTable(c.Request().Context(), tableID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, details)
}

// ListRestaurantAssignments handles GET /v1/owner/restaurants/:id/assignments.
// Every assignment across the restaurant, bookings and admin holds,
// cancelled included, soonest first.
func (h *OwnerHandler) ListRestaurantAssignments(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	restID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	details, err := h.Assignments.ListByRestaurant(c.Request().Context(), restID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRestaurantNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, details)
}

// CancelAssignment handles DELETE /v1/owner/assignments/:assignment_id.
// Owners cancel their own admin holds through the same ledger path customers
// use for bookings.
func (h *OwnerHandler) CancelAssignment(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	assignmentID, ok := pathID(c, "assignment_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assignment id"})
	}
	err = h.Assignments.Cancel(c.Request().Context(), assignmentID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAssignmentNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "assignment already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
