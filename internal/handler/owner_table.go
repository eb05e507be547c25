package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

type tableReq struct {
	TableNumber string `json:"table_number"`
	Capacity    uint32 `json:"capacity"`
}

type tableResp struct {
	ID          uint64 `json:"id"`
	TableNumber string `json:"table_number"`
	Capacity    uint32 `json:"capacity"`
	IsActive    bool   `json:"is_active"`
}

func toTableResp(t *model.Table) tableResp {
	return tableResp{ID: t.ID, TableNumber: t.TableNumber, Capacity: t.Capacity, IsActive: t.IsActive}
}

// ownedRestaurant loads the restaurant and checks it belongs to the caller.
func (h *OwnerHandler) ownedRestaurant(c echo.Context, ownerID uint64) (*model.Restaurant, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, errors.New("invalid restaurant id")
	}
	return h.Restaurants.GetByIDAndOwner(c.Request().Context(), id, ownerID)
}

// CreateTable handles POST /v1/owner/restaurants/:id/tables. Table numbers
// are unique per restaurant; a duplicate is a 409.
func (h *OwnerHandler) CreateTable(c echo.Context) error {
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

	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.TableNumber = strings.TrimSpace(req.TableNumber)
	if req.TableNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number is required"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	t := &model.Table{
		RestaurantID: rest.ID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
	}
	if err := h.Tables.Create(c.Request().Context(), t); err != nil {
		if errors.Is(err, repository.ErrDuplicateTableNumber) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create table failed"})
	}
	return c.JSON(http.StatusCreated, toTableResp(t))
}

// ListTables handles GET /v1/owner/restaurants/:id/tables.
func (h *OwnerHandler) ListTables(c echo.Context) error {
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
	tables, err := h.Tables.ListByRestaurant(c.Request().Context(), rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]tableResp, 0, len(tables))
	for i := range tables {
		out = append(out, toTableResp(&tables[i]))
	}
	return c.JSON(http.StatusOK, out)
}

type tableUpdateReq struct {
	TableNumber *string `json:"table_number"`
	Capacity    *uint32 `json:"capacity"`
}

// UpdateTable handles PATCH /v1/owner/tables/:table_id.
func (h *OwnerHandler) UpdateTable(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.checkTableOwnership(c, tableID, ownerID); err != nil {
		return respondOwnershipErr(c, err)
	}

	var req tableUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Capacity != nil && *req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if req.TableNumber != nil {
		trimmed := strings.TrimSpace(*req.TableNumber)
		if trimmed == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number cannot be empty"})
		}
		req.TableNumber = &trimmed
	}

	t, err := h.Tables.Update(c.Request().Context(), tableID, req.TableNumber, req.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, repository.ErrDuplicateTableNumber):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toTableResp(t))
}

// DeactivateTable handles DELETE /v1/owner/tables/:table_id. Refused while
// the table still holds active assignments for today or later; cancel those
// first. Past assignments never block, they are history.
func (h *OwnerHandler) DeactivateTable(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.checkTableOwnership(c, tableID, ownerID); err != nil {
		return respondOwnershipErr(c, err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	if err := h.Tables.Deactivate(c.Request().Context(), tableID, today); err != nil {
		switch {
		case errors.Is(err, repository.ErrTableHasActiveHolds):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table has active bookings"})
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// checkTableOwnership verifies the table's restaurant belongs to ownerID.
// Returns ErrTableNotFound, ErrForbidden, or a database error.
func (h *OwnerHandler) checkTableOwnership(c echo.Context, tableID, ownerID uint64) error {
	t, err := h.Tables.GetByID(c.Request().Context(), tableID)
	if err != nil {
		return err
	}
	if _, err := h.Restaurants.GetByIDAndOwner(c.Request().Context(), t.RestaurantID, ownerID); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return repository.ErrForbidden
		}
		return err
	}
	return nil
}

// respondOwnershipErr maps checkTableOwnership failures to JSON responses.
func respondOwnershipErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrTableNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}
