package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: restaurant
// search, slot listings and table availability. These endpoints sit behind
// the Redis response cache; the answers are advisory snapshots and the
// ledger re-validates everything at booking time.
type PublicHandler struct {
	Restaurants  *repository.RestaurantRepo
	Slots        *repository.TimeSlotRepo
	Availability *repository.AvailabilityRepo
}

func NewPublicHandler(restaurants *repository.RestaurantRepo, slots *repository.TimeSlotRepo, availability *repository.AvailabilityRepo) *PublicHandler {
	if restaurants == nil || slots == nil || availability == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Restaurants: restaurants, Slots: slots, Availability: availability}
}

// SearchRestaurants handles GET /v1/restaurants. Supported query
// parameters: q (name substring), location, cuisine, vegetarian
// (true/false), min_cost, max_cost, min_rating.
func (h *PublicHandler) SearchRestaurants(c echo.Context) error {
	f := repository.SearchFilter{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Cuisine:  strings.TrimSpace(c.QueryParam("cuisine")),
	}
	if v := c.QueryParam("vegetarian"); v != "" {
		veg := v == "true" || v == "1"
		f.IsVegetarian = &veg
	}
	if v := c.QueryParam("min_cost"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			f.MinCost = uint32(n)
		}
	}
	if v := c.QueryParam("max_cost"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			f.MaxCost = uint32(n)
		}
	}
	if v := c.QueryParam("min_rating"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinRating = r
		}
	}

	list, err := h.Restaurants.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]restaurantResp, 0, len(list))
	for _, r := range list {
		out = append(out, toRestaurantResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// GetRestaurant handles GET /v1/restaurants/:id.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	rest, err := h.Restaurants.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !rest.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}
	return c.JSON(http.StatusOK, toRestaurantResp(rest))
}

// ListSlots handles GET /v1/restaurants/:id/slots?date=. Only active slots
// are returned, ordered by start time.
func (h *PublicHandler) ListSlots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	date := c.QueryParam("date")
	if !model.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter required (YYYY-MM-DD)"})
	}
	if _, err := h.Restaurants.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slots, err := h.Slots.ListByRestaurantDate(c.Request().Context(), id, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]slotResp, 0, len(slots))
	for i := range slots {
		out = append(out, toSlotResp(&slots[i]))
	}
	return c.JSON(http.StatusOK, out)
}

type availableTableResp struct {
	ID          uint64 `json:"id"`
	TableNumber string `json:"table_number"`
	Capacity    uint32 `json:"capacity"`
}

// ListAvailability handles GET /v1/restaurants/:id/availability?slot_id=&date=&party_size=.
// One snapshot query: tables large enough for the party with no active
// assignment on the requested slot and date, smallest adequate table first.
// The answer can go stale the moment it is produced; booking re-validates.
func (h *PublicHandler) ListAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
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
	partySize64, err := strconv.ParseUint(c.QueryParam("party_size"), 10, 32)
	if err != nil || partySize64 == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size query parameter required"})
	}
	partySize := uint32(partySize64)

	ctx := c.Request().Context()
	if _, err := h.Restaurants.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slot, err := h.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if slot.RestaurantID != id || !slot.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
	}

	tables, err := h.Availability.FindAvailable(ctx, id, slotID, date, partySize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]availableTableResp, 0, len(tables))
	for i := range tables {
		out = append(out, availableTableResp{
			ID:          tables[i].ID,
			TableNumber: tables[i].TableNumber,
			Capacity:    tables[i].Capacity,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"slot_id":    slotID,
		"date":       date,
		"party_size": partySize,
		"tables":     out,
	})
}
