package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

type restaurantReq struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Location     string  `json:"location"`
	Cuisine      string  `json:"cuisine"`
	CostForTwo   uint32  `json:"cost_for_two"`
	IsVegetarian bool    `json:"is_vegetarian"`
	OpeningTime  string  `json:"opening_time"`
	ClosingTime  string  `json:"closing_time"`
}

type restaurantResp struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Location     string  `json:"location"`
	Cuisine      string  `json:"cuisine"`
	CostForTwo   uint32  `json:"cost_for_two"`
	IsVegetarian bool    `json:"is_vegetarian"`
	Rating       float64 `json:"rating"`
	OpeningTime  string  `json:"opening_time"`
	ClosingTime  string  `json:"closing_time"`
	IsActive     bool    `json:"is_active"`
}

func toRestaurantResp(r *model.Restaurant) restaurantResp {
	return restaurantResp{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Location:     r.Location,
		Cuisine:      r.Cuisine,
		CostForTwo:   r.CostForTwo,
		IsVegetarian: r.IsVegetarian,
		Rating:       r.Rating,
		OpeningTime:  r.OpeningTime,
		ClosingTime:  r.ClosingTime,
		IsActive:     r.IsActive,
	}
}

// normalizeClock accepts "HH:MM" or "HH:MM:SS" and stores the long form.
func normalizeClock(s string) (string, bool) {
	t, err := model.ParseClock(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format("15:04:05"), true
}

// CreateRestaurant handles POST /v1/owner/restaurants.
func (h *OwnerHandler) CreateRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and location are required"})
	}
	opening, ok := normalizeClock(req.OpeningTime)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid opening_time"})
	}
	closing, ok := normalizeClock(req.ClosingTime)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid closing_time"})
	}
	if !model.WithinOperatingHours(opening, closing, opening, closing) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "closing_time must be after opening_time"})
	}

	rest := &model.Restaurant{
		OwnerID:      ownerID,
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Cuisine:      strings.TrimSpace(req.Cuisine),
		CostForTwo:   req.CostForTwo,
		IsVegetarian: req.IsVegetarian,
		OpeningTime:  opening,
		ClosingTime:  closing,
	}
	if err := h.Restaurants.Create(c.Request().Context(), rest); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}
	return c.JSON(http.StatusCreated, toRestaurantResp(rest))
}

// ListMyRestaurants handles GET /v1/owner/restaurants.
func (h *OwnerHandler) ListMyRestaurants(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Restaurants.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]restaurantResp, 0, len(list))
	for _, r := range list {
		out = append(out, toRestaurantResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

type restaurantUpdateReq struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	Cuisine      *string `json:"cuisine"`
	CostForTwo   *uint32 `json:"cost_for_two"`
	IsVegetarian *bool   `json:"is_vegetarian"`
	OpeningTime  *string `json:"opening_time"`
	ClosingTime  *string `json:"closing_time"`
}

// UpdateRestaurant handles PATCH /v1/owner/restaurants/:id. Only provided
// fields change. Shrinking the operating window does not touch existing
// slots; new slot creation validates against the updated window.
func (h *OwnerHandler) UpdateRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req restaurantUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	upd := repository.RestaurantUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Cuisine:      req.Cuisine,
		CostForTwo:   req.CostForTwo,
		IsVegetarian: req.IsVegetarian,
	}
	if req.OpeningTime != nil {
		v, ok := normalizeClock(*req.OpeningTime)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid opening_time"})
		}
		upd.OpeningTime = &v
	}
	if req.ClosingTime != nil {
		v, ok := normalizeClock(*req.ClosingTime)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid closing_time"})
		}
		upd.ClosingTime = &v
	}

	rest, err := h.Restaurants.Update(c.Request().Context(), id, ownerID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toRestaurantResp(rest))
}

// DeactivateRestaurant handles DELETE /v1/owner/restaurants/:id. The row is
// hidden from browse and booking, never removed; history stays intact.
func (h *OwnerHandler) DeactivateRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	if err := h.Restaurants.SetActive(c.Request().Context(), id, ownerID, false); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
