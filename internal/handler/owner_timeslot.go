package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

type slotReq struct {
	Date        string `json:"date"`       // YYYY-MM-DD
	StartTime   string `json:"start_time"` // HH:MM or HH:MM:SS
	DurationMin int    `json:"duration_min,omitempty"`
}

type slotResp struct {
	ID        uint64 `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

func toSlotResp(s *model.TimeSlot) slotResp {
	return slotResp{ID: s.ID, Date: s.Date, StartTime: s.StartTime, EndTime: s.EndTime, IsActive: s.IsActive}
}

// CreateSlot handles POST /v1/owner/restaurants/:id/slots. The end time is
// derived from the configured slot duration; a window falling outside the
// restaurant's operating hours is a 400, a duplicate start on the same date
// is a 409.
func (h *OwnerHandler) CreateSlot(c echo.Context) error {
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

	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	dur := req.DurationMin
	if dur <= 0 {
		dur = h.SlotDurMin
	}

	slot, err := h.Slots.Create(c.Request().Context(), rest, req.Date, req.StartTime, dur)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidSlotTime):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot outside operating hours"})
		case errors.Is(err, repository.ErrDuplicateSlot):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already exists"})
		case errors.Is(err, model.ErrBadClock):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
	}
	return c.JSON(http.StatusCreated, toSlotResp(slot))
}

type generateSlotsReq struct {
	Date        string `json:"date"`
	DurationMin int    `json:"duration_min,omitempty"`
}

// GenerateSlots handles POST /v1/owner/restaurants/:id/slots/generate. It
// fills the whole operating window with back-to-back slots for one date,
// skipping starts that already exist.
func (h *OwnerHandler) GenerateSlots(c echo.Context) error {
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

	var req generateSlotsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	dur := req.DurationMin
	if dur <= 0 {
		dur = h.SlotDurMin
	}

	slots, err := h.Slots.GenerateForDate(c.Request().Context(), rest, req.Date, dur)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidSlotTime) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date or duration"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate slots failed"})
	}
	out := make([]slotResp, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResp(s))
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(out), "slots": out})
}

// ListSlotsForOwner handles GET /v1/owner/restaurants/:id/slots?date=.
func (h *OwnerHandler) ListSlotsForOwner(c echo.Context) error {
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
	date := c.QueryParam("date")
	if !model.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter required (YYYY-MM-DD)"})
	}
	slots, err := h.Slots.ListByRestaurantDate(c.Request().Context(), rest.ID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]slotResp, 0, len(slots))
	for i := range slots {
		out = append(out, toSlotResp(&slots[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// DeactivateSlot handles DELETE /v1/owner/slots/:slot_id. Refused while the
// slot still carries active assignments for today or later.
func (h *OwnerHandler) DeactivateSlot(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "slot_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	slot, err := h.Slots.GetByID(c.Request().Context(), slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Restaurants.GetByIDAndOwner(c.Request().Context(), slot.RestaurantID, ownerID); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	today := time.Now().UTC().Format("2006-01-02")
	if err := h.Slots.Deactivate(c.Request().Context(), slotID, today); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotHasActiveHolds):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot has active bookings"})
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
