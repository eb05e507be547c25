// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for restaurants. A restaurant is the
// ownership root for tables and time slots: every owner-scoped operation in
// the other repositories resolves ownership through this one.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/restobook/restaurant-table-reservation/internal/model"
)

// RestaurantRepo encapsulates all database queries related to restaurants.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

// DB exposes the underlying handle so handlers can open transactions that
// span multiple repositories.
func (r *RestaurantRepo) DB() *sql.DB { return r.db }

const restaurantCols = `id, owner_id, name, description, location, cuisine,
	cost_for_two, is_vegetarian, rating, opening_time, closing_time,
	is_active, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var rest model.Restaurant
	var desc sql.NullString
	if err := row.Scan(
		&rest.ID, &rest.OwnerID, &rest.Name, &desc, &rest.Location,
		&rest.Cuisine, &rest.CostForTwo, &rest.IsVegetarian, &rest.Rating,
		&rest.OpeningTime, &rest.ClosingTime, &rest.IsActive,
		&rest.CreatedAt, &rest.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		rest.Description = &d
	}
	return &rest, nil
}

// Create inserts a new restaurant. On success the ID, rating and timestamp
// fields are populated from the stored row.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	const q = `INSERT INTO restaurants
		(owner_id, name, description, location, cuisine, cost_for_two,
		 is_vegetarian, opening_time, closing_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var desc any
	if rest.Description != nil {
		desc = *rest.Description
	}
	res, err := r.db.ExecContext(ctx, q,
		rest.OwnerID, rest.Name, desc, rest.Location, rest.Cuisine,
		rest.CostForTwo, rest.IsVegetarian, rest.OpeningTime, rest.ClosingTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rest = *got
	return nil
}

// GetByID fetches a restaurant by its ID regardless of owner. It returns
// ErrRestaurantNotFound if no row is found.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants WHERE id = ?", id)
	rest, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

// GetByIDAndOwner fetches a restaurant only if it belongs to the specified
// owner. If the restaurant doesn't exist or is owned by someone else,
// ErrRestaurantNotFound is returned so callers cannot probe for existence.
func (r *RestaurantRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants WHERE id = ? AND owner_id = ?", id, ownerID)
	rest, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

// ListByOwner returns all restaurants for a specific owner ordered by id.
func (r *RestaurantRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+restaurantCols+" FROM restaurants WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchFilter narrows the public restaurant listing. Zero values mean
// "no constraint".
type SearchFilter struct {
	Query        string  // substring match on name
	Location     string  // exact location match
	Cuisine      string  // exact cuisine match
	IsVegetarian *bool   // nil = any
	MinCost      uint32  // cost_for_two >= MinCost
	MaxCost      uint32  // cost_for_two <= MaxCost (0 = no cap)
	MinRating    float64 // rating >= MinRating
}

// Search returns active restaurants matching the filter. Results are ordered
// by rating descending then id for a stable listing.
func (r *RestaurantRepo) Search(ctx context.Context, f SearchFilter) ([]*model.Restaurant, error) {
	var (
		conds = []string{"is_active = 1"}
		args  []any
	)
	if f.Query != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+f.Query+"%")
	}
	if f.Location != "" {
		conds = append(conds, "location = ?")
		args = append(args, f.Location)
	}
	if f.Cuisine != "" {
		conds = append(conds, "cuisine = ?")
		args = append(args, f.Cuisine)
	}
	if f.IsVegetarian != nil {
		conds = append(conds, "is_vegetarian = ?")
		args = append(args, *f.IsVegetarian)
	}
	if f.MinCost > 0 {
		conds = append(conds, "cost_for_two >= ?")
		args = append(args, f.MinCost)
	}
	if f.MaxCost > 0 {
		conds = append(conds, "cost_for_two <= ?")
		args = append(args, f.MaxCost)
	}
	if f.MinRating > 0 {
		conds = append(conds, "rating >= ?")
		args = append(args, f.MinRating)
	}
	q := "SELECT " + restaurantCols + " FROM restaurants WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY rating DESC, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the non-nil fields to a restaurant owned by ownerID.
// ErrRestaurantNotFound is returned when the row does not exist or belongs
// to another owner.
type RestaurantUpdate struct {
	Name         *string
	Description  *string
	Location     *string
	Cuisine      *string
	CostForTwo   *uint32
	IsVegetarian *bool
	OpeningTime  *string
	ClosingTime  *string
}

func (r *RestaurantRepo) Update(ctx context.Context, id, ownerID uint64, upd RestaurantUpdate) (*model.Restaurant, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Cuisine != nil {
		add("cuisine", *upd.Cuisine)
	}
	if upd.CostForTwo != nil {
		add("cost_for_two", *upd.CostForTwo)
	}
	if upd.IsVegetarian != nil {
		add("is_vegetarian", *upd.IsVegetarian)
	}
	if upd.OpeningTime != nil {
		add("opening_time", *upd.OpeningTime)
	}
	if upd.ClosingTime != nil {
		add("closing_time", *upd.ClosingTime)
	}
	if len(sets) == 0 {
		return r.GetByIDAndOwner(ctx, id, ownerID)
	}
	args = append(args, id, ownerID)
	res, err := r.db.ExecContext(ctx,
		"UPDATE restaurants SET "+strings.Join(sets, ", ")+" WHERE id = ? AND owner_id = ?",
		args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "no change" from "not owned": re-check existence.
		if _, err := r.GetByIDAndOwner(ctx, id, ownerID); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// SetActive flips a restaurant's visibility flag for the given owner.
func (r *RestaurantRepo) SetActive(ctx context.Context, id, ownerID uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE restaurants SET is_active = ? WHERE id = ? AND owner_id = ?",
		active, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByIDAndOwner(ctx, id, ownerID); err != nil {
			return err
		}
	}
	return nil
}
