package repository

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobook/restaurant-table-reservation/internal/database"
	"github.com/restobook/restaurant-table-reservation/internal/model"
)

// testDB opens the integration database named by TEST_DATABASE_DSN, creates
// the schema if needed and wipes all rows. Tests that need a real MySQL are
// skipped when the variable is unset, so the pure-function tests in this
// package still run everywhere.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database-backed test")
	}
	// DATE and DATETIME columns are scanned into time.Time.
	if !strings.Contains(dsn, "parseTime") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true&loc=UTC"
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())

	require.NoError(t, database.EnsureSchema(context.Background(), db))
	for _, table := range []string{"assignments", "time_slots", "tables", "refresh_tokens", "restaurants", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
	return db
}

type fixture struct {
	ownerID      uint64
	customerID   uint64
	restaurantID uint64
	slotID       uint64
	tableIDs     map[string]uint64
}

// seedFixture creates an owner, a customer, one restaurant with a single
// evening slot, and the given tables keyed by table number.
func seedFixture(t *testing.T, db *sql.DB, capacities map[string]uint32) fixture {
	t.Helper()
	f := fixture{tableIDs: make(map[string]uint64)}

	res, err := db.Exec(`INSERT INTO users (email, password_hash, role) VALUES ('owner@test.local', 'x', 'OWNER')`)
	require.NoError(t, err)
	oid, _ := res.LastInsertId()
	f.ownerID = uint64(oid)

	res, err = db.Exec(`INSERT INTO users (email, password_hash, role) VALUES ('customer@test.local', 'x', 'CUSTOMER')`)
	require.NoError(t, err)
	cid, _ := res.LastInsertId()
	f.customerID = uint64(cid)

	res, err = db.Exec(`INSERT INTO restaurants (owner_id, name, location, cuisine, opening_time, closing_time)
		VALUES (?, 'Test Bistro', 'Testville', 'Italian', '10:00:00', '22:00:00')`, f.ownerID)
	require.NoError(t, err)
	rid, _ := res.LastInsertId()
	f.restaurantID = uint64(rid)

	res, err = db.Exec(`INSERT INTO time_slots (restaurant_id, slot_date, start_time, end_time)
		VALUES (?, '2026-09-10', '19:00:00', '21:00:00')`, f.restaurantID)
	require.NoError(t, err)
	sid, _ := res.LastInsertId()
	f.slotID = uint64(sid)

	for number, capacity := range capacities {
		res, err = db.Exec(`INSERT INTO tables (restaurant_id, table_number, capacity) VALUES (?, ?, ?)`,
			f.restaurantID, number, capacity)
		require.NoError(t, err)
		tid, _ := res.LastInsertId()
		f.tableIDs[number] = uint64(tid)
	}
	return f
}

const testDate = "2026-09-10"

func bookingRequest(f fixture, tableID uint64, partySize uint32) AssignRequest {
	uid := f.customerID
	return AssignRequest{
		RestaurantID: f.restaurantID,
		TableID:      tableID,
		TimeSlotID:   f.slotID,
		Date:         testDate,
		Kind:         model.KindBooking,
		PartySize:    partySize,
		UserID:       &uid,
	}
}

func TestTryAssignConcurrentExclusivity(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.TryAssign(context.Background(), bookingRequest(f, f.tableIDs["T1"], 2))
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrSlotTaken):
			losses++
		}
	}
	assert.Equal(t, 1, wins, "exactly one racer must win the key")
	assert.Equal(t, racers-1, losses)

	var active int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM assignments WHERE table_id = ? AND status = 'ACTIVE'`,
		f.tableIDs["T1"]).Scan(&active))
	assert.Equal(t, 1, active)
}

func TestCancelReopensKey(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	first, err := repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)

	// Same key is blocked while the first booking is active.
	_, err = repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.ErrorIs(t, err, ErrSlotTaken)

	require.NoError(t, repo.Cancel(ctx, first.ID, f.customerID))

	// Cancellation releases the key for a new booking.
	second, err := repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 3))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The cancelled row survives as history.
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestCancelIsTerminal(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	a, err := repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)

	require.NoError(t, repo.Cancel(ctx, a.ID, f.customerID))
	err = repo.Cancel(ctx, a.ID, f.customerID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelAuthorization(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	a, err := repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)

	res, err := db.Exec(`INSERT INTO users (email, password_hash, role) VALUES ('stranger@test.local', 'x', 'CUSTOMER')`)
	require.NoError(t, err)
	sid, _ := res.LastInsertId()

	err = repo.Cancel(ctx, a.ID, uint64(sid))
	assert.ErrorIs(t, err, ErrForbidden)

	// The restaurant owner may cancel any assignment in their restaurant.
	require.NoError(t, repo.Cancel(ctx, a.ID, f.ownerID))
}

func TestTryAssignCapacityRecheck(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)

	_, err := repo.TryAssign(context.Background(), bookingRequest(f, f.tableIDs["T1"], 5))
	assert.ErrorIs(t, err, ErrTableNotEligible)
}

func TestAdminReserveCompetesEqually(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	hold, err := repo.TryAssign(ctx, AssignRequest{
		RestaurantID: f.restaurantID,
		TableID:      f.tableIDs["T1"],
		TimeSlotID:   f.slotID,
		Date:         testDate,
		Kind:         model.KindAdminReserve,
	})
	require.NoError(t, err)
	assert.Nil(t, hold.UserID)
	assert.Zero(t, hold.PartySize)

	// A customer booking finds the key occupied by the hold.
	_, err = repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

// TestBookingFlow walks the full path: availability for a party of three
// offers only the larger table, the booking claims it, and afterwards the
// slot shows no availability for that party.
func TestBookingFlow(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 2, "T2": 4})
	assignments := NewAssignmentRepo(db)
	availability := NewAvailabilityRepo(db)
	ctx := context.Background()

	free, err := availability.FindAvailable(ctx, f.restaurantID, f.slotID, testDate, 3)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "T2", free[0].TableNumber)

	booked, err := assignments.TryAssign(ctx, bookingRequest(f, free[0].ID, 3))
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, booked.Status)

	free, err = availability.FindAvailable(ctx, f.restaurantID, f.slotID, testDate, 3)
	require.NoError(t, err)
	assert.Empty(t, free, "no table seats three once T2 is taken")

	// The pair table is still free for a party of two.
	free, err = availability.FindAvailable(ctx, f.restaurantID, f.slotID, testDate, 2)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "T1", free[0].TableNumber)

	// The customer sees the booking in their list.
	details, err := assignments.ListByUser(ctx, f.customerID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, booked.ID, details[0].ID)
	assert.Equal(t, "T2", details[0].TableNumber)
	assert.Equal(t, testDate, details[0].Date)
}

func TestStatusByRestaurant(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 2, "T2": 4, "T3": 6})
	assignments := NewAssignmentRepo(db)
	ctx := context.Background()

	_, err := assignments.TryAssign(ctx, bookingRequest(f, f.tableIDs["T2"], 4))
	require.NoError(t, err)
	_, err = assignments.TryAssign(ctx, AssignRequest{
		RestaurantID: f.restaurantID,
		TableID:      f.tableIDs["T3"],
		TimeSlotID:   f.slotID,
		Date:         testDate,
		Kind:         model.KindAdminReserve,
	})
	require.NoError(t, err)

	statuses, err := assignments.StatusByRestaurant(ctx, f.restaurantID, f.slotID, testDate, f.ownerID)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	byNumber := make(map[string]TableStatus, len(statuses))
	for _, st := range statuses {
		byNumber[st.TableNumber] = st
	}
	assert.False(t, byNumber["T1"].IsBooked)
	assert.False(t, byNumber["T1"].IsAdminReserved)
	assert.True(t, byNumber["T2"].IsBooked)
	require.NotNil(t, byNumber["T2"].Booking)
	assert.Equal(t, "customer@test.local", byNumber["T2"].Booking.CustomerEmail)
	assert.Equal(t, uint32(4), byNumber["T2"].Booking.PartySize)
	assert.True(t, byNumber["T3"].IsAdminReserved)
	assert.Nil(t, byNumber["T3"].Booking)

	// A different owner is refused.
	_, err = assignments.StatusByRestaurant(ctx, f.restaurantID, f.slotID, testDate, f.customerID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTableDeactivateGuard(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	assignments := NewAssignmentRepo(db)
	tables := NewTableRepo(db)
	ctx := context.Background()

	a, err := assignments.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)

	err = tables.Deactivate(ctx, f.tableIDs["T1"], "2026-09-01")
	assert.ErrorIs(t, err, ErrTableHasActiveHolds)

	require.NoError(t, assignments.Cancel(ctx, a.ID, f.customerID))
	require.NoError(t, tables.Deactivate(ctx, f.tableIDs["T1"], "2026-09-01"))

	got, err := tables.GetByID(ctx, f.tableIDs["T1"])
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestTryAssignDateMustMatchSlot(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	// A well-formed date the slot does not run on must not produce a row.
	req := bookingRequest(f, f.tableIDs["T1"], 2)
	req.Date = "2026-09-11"
	_, err := repo.TryAssign(ctx, req)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM assignments`).Scan(&count))
	assert.Equal(t, 0, count)

	// The slot's own date still books fine.
	_, err = repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)
}

func TestListByRestaurant(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 2, "T2": 4})
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	_, err := repo.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)
	_, err = repo.TryAssign(ctx, AssignRequest{
		RestaurantID: f.restaurantID,
		TableID:      f.tableIDs["T2"],
		TimeSlotID:   f.slotID,
		Date:         testDate,
		Kind:         model.KindAdminReserve,
	})
	require.NoError(t, err)

	details, err := repo.ListByRestaurant(ctx, f.restaurantID, f.ownerID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	kinds := []string{details[0].Kind, details[1].Kind}
	assert.Contains(t, kinds, string(model.KindBooking))
	assert.Contains(t, kinds, string(model.KindAdminReserve))

	_, err = repo.ListByRestaurant(ctx, f.restaurantID, f.customerID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = repo.ListByRestaurant(ctx, f.restaurantID+1000, f.ownerID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}
