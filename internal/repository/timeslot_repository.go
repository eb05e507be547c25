package repository // repository defines data access for time slots

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/restobook/restaurant-table-reservation/internal/model"
)

// TimeSlotRepo owns the slot calendar of a restaurant: creation with window
// validation, daily listing, bulk generation across the opening hours, and
// logical deactivation. End times are derived once at creation and are
// immutable afterwards.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo constructs a TimeSlotRepo with the given DB handle.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo {
	return &TimeSlotRepo{db: db}
}

const slotCols = `id, restaurant_id, slot_date, start_time, end_time, is_active, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (*model.TimeSlot, error) {
	var s model.TimeSlot
	var date time.Time
	if err := row.Scan(&s.ID, &s.RestaurantID, &date, &s.StartTime, &s.EndTime,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Date = date.Format("2006-01-02")
	return &s, nil
}

// Create validates the slot against the restaurant's operating hours,
// derives the end time and inserts the row. The (restaurant, date, start)
// uniqueness is enforced by the database; a violation maps to
// ErrDuplicateSlot. Window violations map to ErrInvalidSlotTime.
func (r *TimeSlotRepo) Create(ctx context.Context, rest *model.Restaurant, date, start string, durationMin int) (*model.TimeSlot, error) {
	if !model.ValidDate(date) {
		return nil, ErrInvalidSlotTime
	}
	end, err := model.DeriveEndTime(start, durationMin)
	if err != nil {
		return nil, ErrInvalidSlotTime
	}
	if !model.WithinOperatingHours(rest.OpeningTime, rest.ClosingTime, start, end) {
		return nil, ErrInvalidSlotTime
	}
	const q = `INSERT INTO time_slots (restaurant_id, slot_date, start_time, end_time) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rest.ID, date, start, end)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicateSlot
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GenerateForDate bulk-creates back-to-back slots across the restaurant's
// opening window for one date. Slots that already exist for a start time are
// skipped rather than failing the batch. It returns the slots created by
// this call.
func (r *TimeSlotRepo) GenerateForDate(ctx context.Context, rest *model.Restaurant, date string, durationMin int) ([]*model.TimeSlot, error) {
	if !model.ValidDate(date) {
		return nil, ErrInvalidSlotTime
	}
	open, err := model.ParseClock(rest.OpeningTime)
	if err != nil {
		return nil, ErrInvalidSlotTime
	}
	closing, err := model.ParseClock(rest.ClosingTime)
	if err != nil {
		return nil, ErrInvalidSlotTime
	}
	var created []*model.TimeSlot
	step := time.Duration(durationMin) * time.Minute
	for cur := open; !cur.Add(step).After(closing); cur = cur.Add(step) {
		slot, err := r.Create(ctx, rest, date, cur.Format("15:04:05"), durationMin)
		if err != nil {
			if errors.Is(err, ErrDuplicateSlot) {
				continue
			}
			return created, err
		}
		created = append(created, slot)
	}
	return created, nil
}

// GetByID retrieves a slot by its id.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+slotCols+" FROM time_slots WHERE id = ?", id)
	s, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	return s, err
}

// ListByRestaurantDate returns a restaurant's active slots for a date
// ordered by start time.
func (r *TimeSlotRepo) ListByRestaurantDate(ctx context.Context, restaurantID uint64, date string) ([]model.TimeSlot, error) {
	const q = "SELECT " + slotCols + ` FROM time_slots
	           WHERE restaurant_id = ? AND slot_date = ? AND is_active = 1
	           ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HasActiveHolds reports whether any non-cancelled assignment references the
// slot for the given date or later.
func (r *TimeSlotRepo) HasActiveHolds(ctx context.Context, slotID uint64, fromDate string) (bool, error) {
	const q = `SELECT EXISTS (
	             SELECT 1 FROM assignments
	             WHERE time_slot_id = ? AND status = 'ACTIVE' AND slot_date >= ?
	           )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, slotID, fromDate).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Deactivate flips the slot's is_active flag off. It refuses with
// ErrSlotHasActiveHolds when a present-or-future assignment is still active.
// There is no hard delete so historical bookings always resolve to a slot.
func (r *TimeSlotRepo) Deactivate(ctx context.Context, slotID uint64, fromDate string) error {
	held, err := r.HasActiveHolds(ctx, slotID, fromDate)
	if err != nil {
		return err
	}
	if held {
		return ErrSlotHasActiveHolds
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE time_slots SET is_active = 0 WHERE id = ? AND is_active = 1", slotID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSlotNotFound
	}
	return nil
}
