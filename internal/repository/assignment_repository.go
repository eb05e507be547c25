package repository

// AssignmentRepo is the reservation ledger: the single place where a table is
// atomically bound to a time slot and date. Exclusivity is not negotiated in
// Go: the assignments table carries a unique index over (table_id,
// time_slot_id, slot_date, active) where `active` is 1 for ACTIVE rows and
// NULL for cancelled ones. TryAssign inserts against that index inside a
// transaction; when two requests race for one key, the storage engine commits
// exactly one insert and the other fails with a duplicate-key error that this
// repo translates to ErrSlotTaken. Because the constraint lives in MySQL the
// guarantee holds across server instances, not just goroutines.

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/restobook/restaurant-table-reservation/internal/model"
)

type AssignmentRepo struct {
	db *sql.DB
}

// NewAssignmentRepo constructs an AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// DB exposes the underlying handle for callers that need their own
// transactions.
func (r *AssignmentRepo) DB() *sql.DB { return r.db }

// AssignRequest carries everything TryAssign needs to claim a key. UserID is
// nil for admin holds; PartySize is 0 for admin holds.
type AssignRequest struct {
	RestaurantID uint64
	TableID      uint64
	TimeSlotID   uint64
	Date         string
	Kind         model.AssignmentKind
	PartySize    uint32
	UserID       *uint64
}

// TryAssign atomically claims (table, slot, date) for the request. Inside a
// single transaction it re-reads the table and the slot (capacity is
// re-validated here, not only at the resolver, to close the window between
// "read available" and "assign") and then inserts the ACTIVE row. Outcomes:
//
//	ErrTableNotFound / ErrSlotNotFound – references don't resolve within the
//	  restaurant, the table/slot is inactive, or the slot does not run on the
//	  requested date.
//	ErrTableNotEligible – capacity < party size (bookings only).
//	ErrSlotTaken – another ACTIVE assignment owns the key; the caller lost a
//	  legitimate race and should offer a different table.
//
// Admin reserves travel the identical path with no special priority:
// whichever request reaches the insert first wins.
func (r *AssignmentRepo) TryAssign(ctx context.Context, req AssignRequest) (*model.Assignment, error) {
	if !req.Kind.Valid() {
		return nil, errors.New("invalid assignment kind")
	}
	if !model.ValidDate(req.Date) {
		return nil, ErrSlotNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Re-validate the table inside the transaction.
	var capacity uint32
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM tables WHERE id = ? AND restaurant_id = ? AND is_active = 1`,
		req.TableID, req.RestaurantID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.Kind == model.KindBooking && capacity < req.PartySize {
		return nil, ErrTableNotEligible
	}

	// Re-validate the slot inside the transaction. The slot row carries its
	// own date, so a request for any other date does not resolve to a slot.
	var slotActive bool
	var slotDate time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT is_active, slot_date FROM time_slots WHERE id = ? AND restaurant_id = ?`,
		req.TimeSlotID, req.RestaurantID).Scan(&slotActive, &slotDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	if !slotActive || slotDate.Format("2006-01-02") != req.Date {
		return nil, ErrSlotNotFound
	}

	// The authoritative step: insert-or-fail against the scoped unique key.
	const ins = `INSERT INTO assignments
		(restaurant_id, table_id, time_slot_id, slot_date, kind, status, active, party_size, user_id)
		VALUES (?, ?, ?, ?, ?, 'ACTIVE', 1, ?, ?)`
	var userID any
	if req.UserID != nil {
		userID = *req.UserID
	}
	res, err := tx.ExecContext(ctx, ins,
		req.RestaurantID, req.TableID, req.TimeSlotID, req.Date,
		string(req.Kind), req.PartySize, userID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, uint64(id))
}

const assignmentCols = `id, restaurant_id, table_id, time_slot_id, slot_date,
	kind, status, party_size, user_id, created_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var date time.Time
	var kind string
	var userID sql.NullInt64
	if err := row.Scan(&a.ID, &a.RestaurantID, &a.TableID, &a.TimeSlotID, &date,
		&kind, &a.Status, &a.PartySize, &userID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Date = date.Format("2006-01-02")
	a.Kind = model.AssignmentKind(kind)
	if userID.Valid {
		uid := uint64(userID.Int64)
		a.UserID = &uid
	}
	return &a, nil
}

// GetByID fetches an assignment by primary key.
func (r *AssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.Assignment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+assignmentCols+" FROM assignments WHERE id = ?", id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	return a, err
}

// Cancel transitions an assignment from ACTIVE to CANCELLED. Authorization:
// the holder of a booking, or the owner of the assignment's restaurant, may
// cancel; anyone else gets ErrForbidden. A terminal row yields
// ErrAlreadyCancelled. Setting active to NULL releases the unique key so a
// later TryAssign for the same (table, slot, date) succeeds while this row
// stays behind as history.
func (r *AssignmentRepo) Cancel(ctx context.Context, assignmentID, requesterID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT a.status, a.user_id, rst.owner_id
	           FROM assignments a
	           JOIN restaurants rst ON rst.id = a.restaurant_id
	           WHERE a.id = ?
	           FOR UPDATE`
	var status string
	var holderID sql.NullInt64
	var ownerID uint64
	err = tx.QueryRowContext(ctx, q, assignmentID).Scan(&status, &holderID, &ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAssignmentNotFound
	}
	if err != nil {
		return err
	}
	isHolder := holderID.Valid && uint64(holderID.Int64) == requesterID
	if !isHolder && ownerID != requesterID {
		return ErrForbidden
	}
	if status == model.StatusCancelled {
		return ErrAlreadyCancelled
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE assignments SET status = 'CANCELLED', active = NULL WHERE id = ?`,
		assignmentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// BookingDetail is an assignment denormalized with restaurant, table and
// slot display data for listing endpoints.
type BookingDetail struct {
	ID             uint64  `json:"id"`
	Kind           string  `json:"kind"`
	Status         string  `json:"status"`
	PartySize      uint32  `json:"party_size"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	RestaurantID   uint64  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	Location       string  `json:"location"`
	TableID        uint64  `json:"table_id"`
	TableNumber    string  `json:"table_number"`
	Capacity       uint32  `json:"capacity"`
	UserID         *uint64 `json:"user_id,omitempty"`
}

const bookingDetailQuery = `SELECT a.id, a.kind, a.status, a.party_size, a.slot_date,
	       ts.start_time, ts.end_time,
	       rst.id, rst.name, rst.location,
	       t.id, t.table_number, t.capacity,
	       a.user_id
	FROM assignments a
	JOIN restaurants rst ON rst.id = a.restaurant_id
	JOIN tables t        ON t.id = a.table_id
	JOIN time_slots ts   ON ts.id = a.time_slot_id`

func collectBookingDetails(rows *sql.Rows) ([]BookingDetail, error) {
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var date time.Time
		var userID sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Kind, &d.Status, &d.PartySize, &date,
			&d.StartTime, &d.EndTime,
			&d.RestaurantID, &d.RestaurantName, &d.Location,
			&d.TableID, &d.TableNumber, &d.Capacity,
			&userID); err != nil {
			return nil, err
		}
		d.Date = date.Format("2006-01-02")
		if userID.Valid {
			uid := uint64(userID.Int64)
			d.UserID = &uid
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListByUser returns a user's assignments (bookings) with denormalized
// display data, ordered by date then start time ascending.
func (r *AssignmentRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := bookingDetailQuery + `
	WHERE a.user_id = ?
	ORDER BY a.slot_date, ts.start_time`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

// ListByTable returns a table's assignments for its owner, ordered by date
// then start time ascending. ErrForbidden is returned when the table's
// restaurant belongs to a different owner; ErrTableNotFound when the table
// does not exist.
func (r *AssignmentRepo) ListByTable(ctx context.Context, tableID, ownerID uint64) ([]BookingDetail, error) {
	const checkQ = `SELECT rst.owner_id
	                FROM tables t
	                JOIN restaurants rst ON rst.id = t.restaurant_id
	                WHERE t.id = ?`
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx, checkQ, tableID).Scan(&actualOwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	q := bookingDetailQuery + `
	WHERE a.table_id = ?
	ORDER BY a.slot_date, ts.start_time`
	rows, err := r.db.QueryContext(ctx, q, tableID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

// ListByRestaurant returns every assignment across a restaurant for its
// owner, bookings and admin reserves alike, ordered by date then start time
// ascending. ErrForbidden when the restaurant belongs to a different owner;
// ErrRestaurantNotFound when it does not exist.
func (r *AssignmentRepo) ListByRestaurant(ctx context.Context, restaurantID, ownerID uint64) ([]BookingDetail, error) {
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ?`, restaurantID).Scan(&actualOwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	q := bookingDetailQuery + `
	WHERE a.restaurant_id = ?
	ORDER BY a.slot_date, ts.start_time`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

// TableStatus is the owner's per-table view of one slot/date: the stored
// assignment collapsed into derived booleans plus booking details. The
// booleans are computed per query, never stored, so there is exactly one
// source of truth.
type TableStatus struct {
	TableID         uint64          `json:"table_id"`
	TableNumber     string          `json:"table_number"`
	Capacity        uint32          `json:"capacity"`
	IsBooked        bool            `json:"is_booked"`
	IsAdminReserved bool            `json:"is_admin_reserved"`
	Booking         *BookingSummary `json:"booking,omitempty"`
}

// BookingSummary carries customer-facing details of the active booking on a
// table, shown on the owner's status board.
type BookingSummary struct {
	AssignmentID  uint64 `json:"assignment_id"`
	CustomerEmail string `json:"customer_email"`
	PartySize     uint32 `json:"party_size"`
	StartTime     string `json:"start_time"`
}

// StatusByRestaurant lists every active table of the restaurant with its
// derived occupancy for the given slot and date. Ownership is verified
// first; ErrForbidden when the restaurant belongs to someone else.
func (r *AssignmentRepo) StatusByRestaurant(ctx context.Context, restaurantID, slotID uint64, date string, ownerID uint64) ([]TableStatus, error) {
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ?`, restaurantID).Scan(&actualOwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	const q = `SELECT t.id, t.table_number, t.capacity,
	                  a.id, a.kind, a.party_size,
	                  u.email, ts.start_time
	           FROM tables t
	           LEFT JOIN assignments a
	             ON a.table_id = t.id
	            AND a.time_slot_id = ?
	            AND a.slot_date = ?
	            AND a.status = 'ACTIVE'
	           LEFT JOIN users u      ON u.id = a.user_id
	           LEFT JOIN time_slots ts ON ts.id = a.time_slot_id
	           WHERE t.restaurant_id = ? AND t.is_active = 1
	           ORDER BY LENGTH(t.table_number), t.table_number`
	rows, err := r.db.QueryContext(ctx, q, slotID, date, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]TableStatus, 0)
	for rows.Next() {
		var st TableStatus
		var aID sql.NullInt64
		var kind, email, start sql.NullString
		var party sql.NullInt64
		if err := rows.Scan(&st.TableID, &st.TableNumber, &st.Capacity,
			&aID, &kind, &party, &email, &start); err != nil {
			return nil, err
		}
		if aID.Valid {
			switch model.AssignmentKind(kind.String) {
			case model.KindAdminReserve:
				st.IsAdminReserved = true
			case model.KindBooking:
				st.IsBooked = true
				st.Booking = &BookingSummary{
					AssignmentID:  uint64(aID.Int64),
					CustomerEmail: email.String,
					PartySize:     uint32(party.Int64),
					StartTime:     start.String,
				}
			}
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}
