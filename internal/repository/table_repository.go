package repository // repository defines data access for dining tables

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/restobook/restaurant-table-reservation/internal/model"
)

// TableRepo provides methods to work with a restaurant's tables. Table
// numbers are unique per restaurant; the database enforces this and the repo
// translates the violation into ErrDuplicateTableNumber. Removal is a logical
// flag flip guarded by the active-holds rule so history never dangles.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

const tableCols = `id, restaurant_id, table_number, capacity, is_active, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	if err := row.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a single table. On success the ID and timestamps are
// populated. A duplicate (restaurant, table_number) pair yields
// ErrDuplicateTableNumber.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO tables (restaurant_id, table_number, capacity) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.RestaurantID, t.TableNumber, t.Capacity)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateTableNumber
		}
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
	*t = *got
	return nil
}

// GetByID retrieves a table by its id (no ownership check).
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tableCols+" FROM tables WHERE id = ?", id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// ListByRestaurant retrieves all active tables of a restaurant ordered by
// table_number.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	const q = "SELECT " + tableCols + ` FROM tables
	           WHERE restaurant_id = ? AND is_active = 1
	           ORDER BY LENGTH(table_number), table_number`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update changes a table's number and/or capacity. Nil fields are left
// untouched. A conflicting table number yields ErrDuplicateTableNumber.
func (r *TableRepo) Update(ctx context.Context, id uint64, number *string, capacity *uint32) (*model.Table, error) {
	var (
		sets []string
		args []any
	)
	if number != nil {
		sets = append(sets, "table_number = ?")
		args = append(args, *number)
	}
	if capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *capacity)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE tables SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicateTableNumber
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// HasActiveHolds reports whether any non-cancelled assignment references the
// table for the given date or later. Past assignments never block removal.
func (r *TableRepo) HasActiveHolds(ctx context.Context, tableID uint64, fromDate string) (bool, error) {
	const q = `SELECT EXISTS (
	             SELECT 1 FROM assignments
	             WHERE table_id = ? AND status = 'ACTIVE' AND slot_date >= ?
	           )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, tableID, fromDate).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Deactivate removes a table from service. It refuses with
// ErrTableHasActiveHolds when a present-or-future assignment is still
// active. The row itself stays so cancelled and past assignments keep a
// valid reference.
func (r *TableRepo) Deactivate(ctx context.Context, tableID uint64, fromDate string) error {
	held, err := r.HasActiveHolds(ctx, tableID, fromDate)
	if err != nil {
		return err
	}
	if held {
		return ErrTableHasActiveHolds
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE tables SET is_active = 0 WHERE id = ? AND is_active = 1", tableID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTableNotFound
	}
	return nil
}
