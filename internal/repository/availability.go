package repository

// The availability resolver computes which tables can be offered for a
// (restaurant, slot, date, party size) request. It is a pure read over one
// consistent snapshot: a single SELECT that subtracts tables holding a
// non-cancelled assignment for the key. Its result is advisory, the ledger's
// insert is what actually decides a race, so callers must treat a table in
// this list as "probably free", nothing stronger.

import (
	"context"
	"database/sql"
	"sort"

	"github.com/restobook/restaurant-table-reservation/internal/model"
)

// AvailabilityRepo answers availability queries for the booking facade and
// the public listing endpoint.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo constructs an AvailabilityRepo with the given DB handle.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

// FindAvailable returns the restaurant's active tables with capacity >=
// partySize that have no ACTIVE assignment for (table, slot, date), ordered
// by ascending capacity then table_number, smallest adequate table first.
// Numbers are text ("T2", "T10"), so length breaks the tie before the
// lexicographic compare to keep T2 ahead of T10.
func (r *AvailabilityRepo) FindAvailable(ctx context.Context, restaurantID, slotID uint64, date string, partySize uint32) ([]model.Table, error) {
	const q = `SELECT t.id, t.restaurant_id, t.table_number, t.capacity,
	                  t.is_active, t.created_at, t.updated_at
	           FROM tables t
	           LEFT JOIN assignments a
	             ON a.table_id = t.id
	            AND a.time_slot_id = ?
	            AND a.slot_date = ?
	            AND a.status = 'ACTIVE'
	           WHERE t.restaurant_id = ?
	             AND t.is_active = 1
	             AND t.capacity >= ?
	             AND a.id IS NULL
	           ORDER BY t.capacity, LENGTH(t.table_number), t.table_number`
	rows, err := r.db.QueryContext(ctx, q, slotID, date, restaurantID, partySize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// EligibleTables filters a table list down to those seating at least
// partySize guests. It is the pure twin of FindAvailable's capacity filter
// for callers that already hold the tables in memory.
func EligibleTables(tables []model.Table, partySize uint32) []model.Table {
	out := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if t.Capacity >= partySize {
			out = append(out, t)
		}
	}
	return out
}

// SortForSeating orders tables by ascending capacity then table number so
// the smallest adequate table is offered first. Ties break on number length
// first, matching the SQL ordering of FindAvailable.
func SortForSeating(tables []model.Table) {
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Capacity != tables[j].Capacity {
			return tables[i].Capacity < tables[j].Capacity
		}
		if len(tables[i].TableNumber) != len(tables[j].TableNumber) {
			return len(tables[i].TableNumber) < len(tables[j].TableNumber)
		}
		return tables[i].TableNumber < tables[j].TableNumber
	})
}
