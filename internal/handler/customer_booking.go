package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/queue"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
	queue_publisher "github.com/restobook/restaurant-table-reservation/internal/service"
)

// CustomerHandler groups the repositories behind the customer booking flow.
// Methods assume JWT authentication and role checks already ran in
// middleware; they return 401 only when the user ID cannot be extracted from
// context.
type CustomerHandler struct {
	Restaurants  *repository.RestaurantRepo
	Tables       *repository.TableRepo
	Slots        *repository.TimeSlotRepo
	Availability *repository.AvailabilityRepo
	Assignments  *repository.AssignmentRepo
}

// NewCustomerHandler constructs a CustomerHandler. All dependencies must be
// non-nil.
func NewCustomerHandler(restaurants *repository.RestaurantRepo, tables *repository.TableRepo, slots *repository.TimeSlotRepo, availability *repository.AvailabilityRepo, assignments *repository.AssignmentRepo) *CustomerHandler {
	if restaurants == nil || tables == nil || slots == nil || availability == nil || assignments == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		Restaurants:  restaurants,
		Tables:       tables,
		Slots:        slots,
		Availability: availability,
		Assignments:  assignments,
	}
}

type bookingReq struct {
	TableID    uint64 `json:"table_id"`
	TimeSlotID uint64 `json:"time_slot_id"`
	Date       string `json:"date"`
	PartySize  uint32 `json:"party_size"`
}

type bookingResp struct {
	AssignmentID uint64 `json:"assignment_id"`
	RestaurantID uint64 `json:"restaurant_id"`
	TableID      uint64 `json:"table_id"`
	TimeSlotID   uint64 `json:"time_slot_id"`
	Date         string `json:"date"`
	PartySize    uint32 `json:"party_size"`
	Status       string `json:"status"`
}

// CreateBooking handles POST /v1/restaurants/:id/bookings. The handler asks
// the availability resolver first, so a table that is already occupied or
// too small is rejected with the same view the listing endpoint showed. The
// resolver read is advisory, the ledger re-checks everything inside its
// transaction; a losing race still surfaces from the insert as ErrSlotTaken
// and maps to 409, and clients retry with a different table. The
// confirmation event is published after commit and failures there are
// ignored, the booking already happened.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	restID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableID == 0 || req.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id and time_slot_id are required"})
	}
	if req.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
	}
	if !model.ValidDate(req.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	rest, err := h.Restaurants.GetByID(ctx, restID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	table, err := h.Tables.GetByID(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if table.RestaurantID != rest.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}

	// Resolver pre-check: the requested table must be in the available set.
	// Advisory only, the ledger re-validates inside its transaction.
	avail, err := h.Availability.FindAvailable(ctx, rest.ID, req.TimeSlotID, req.Date, req.PartySize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	offered := false
	for _, t := range avail {
		if t.ID == req.TableID {
			offered = true
			break
		}
	}
	if !offered {
		if table.Capacity < req.PartySize {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table cannot seat the requested party"})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "table is not available for this slot"})
	}

	a, err := h.Assignments.TryAssign(ctx, repository.AssignRequest{
		RestaurantID: rest.ID,
		TableID:      req.TableID,
		TimeSlotID:   req.TimeSlotID,
		Date:         req.Date,
		Kind:         model.KindBooking,
		PartySize:    req.PartySize,
		UserID:       &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table was just taken for this slot"})
		case errors.Is(err, repository.ErrTableNotEligible):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table cannot seat the requested party"})
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// Best-effort event; detached from the request context so client
	// disconnects do not abort the publish.
	if slot, slotErr := h.Slots.GetByID(ctx, req.TimeSlotID); slotErr == nil {
		go func(ev queue.BookingConfirmedEvent) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = queue_publisher.PublishBookingConfirmed(pubCtx, ev)
		}(queue.BookingConfirmedEvent{
			AssignmentID:   a.ID,
			UserID:         userID,
			RestaurantID:   rest.ID,
			RestaurantName: rest.Name,
			TableID:        table.ID,
			TableNumber:    table.TableNumber,
			PartySize:      req.PartySize,
			Date:           a.Date,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, bookingResp{
		AssignmentID: a.ID,
		RestaurantID: a.RestaurantID,
		TableID:      a.TableID,
		TimeSlotID:   a.TimeSlotID,
		Date:         a.Date,
		PartySize:    a.PartySize,
		Status:       a.Status,
	})
}

// MyBookings handles GET /v1/me/bookings: the caller's bookings with
// restaurant, table and slot details, soonest first.
func (h *CustomerHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Assignments.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, details)
}

// CancelBooking handles DELETE /v1/me/bookings/:assignment_id. Cancelling
// releases the (table, slot, date) key for rebooking. Cancelling twice is a
// 409, not a silent success, so clients notice stale state.
func (h *CustomerHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	assignmentID, ok := pathID(c, "assignment_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	a, getErr := h.Assignments.GetByID(ctx, assignmentID)

	err = h.Assignments.Cancel(ctx, assignmentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAssignmentNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	if getErr == nil {
		go func(ev queue.BookingCancelledEvent) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = queue_publisher.PublishBookingCancelled(pubCtx, ev)
		}(queue.BookingCancelledEvent{
			AssignmentID: a.ID,
			RestaurantID: a.RestaurantID,
			TableID:      a.TableID,
			Date:         a.Date,
			CancelledBy:  userID,
			CancelledAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.NoContent(http.StatusNoContent)
}
