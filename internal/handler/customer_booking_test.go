package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobook/restaurant-table-reservation/internal/database"
	"github.com/restobook/restaurant-table-reservation/internal/model"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
)

// handlerTestDB opens the integration database named by TEST_DATABASE_DSN,
// bootstraps the schema and wipes all rows. Skipped when the variable is
// unset.
func handlerTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database-backed test")
	}
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

type bookingFixture struct {
	customerA    uint64
	customerB    uint64
	restaurantID uint64
	slotID       uint64
	smallTable   uint64
	bigTable     uint64
}

func seedBookingFixture(t *testing.T, db *sql.DB) bookingFixture {
	t.Helper()
	var f bookingFixture

	insert := func(q string, args ...any) uint64 {
		res, err := db.Exec(q, args...)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		return uint64(id)
	}

	ownerID := insert(`INSERT INTO users (email, password_hash, role) VALUES ('owner@test.local', 'x', 'OWNER')`)
	f.customerA = insert(`INSERT INTO users (email, password_hash, role) VALUES ('alice@test.local', 'x', 'CUSTOMER')`)
	f.customerB = insert(`INSERT INTO users (email, password_hash, role) VALUES ('bob@test.local', 'x', 'CUSTOMER')`)
	f.restaurantID = insert(`INSERT INTO restaurants (owner_id, name, location, cuisine, opening_time, closing_time)
		VALUES (?, 'Corner Trattoria', 'Testville', 'Italian', '10:00:00', '22:00:00')`, ownerID)
	f.slotID = insert(`INSERT INTO time_slots (restaurant_id, slot_date, start_time, end_time)
		VALUES (?, '2026-09-10', '19:00:00', '21:00:00')`, f.restaurantID)
	f.smallTable = insert(`INSERT INTO tables (restaurant_id, table_number, capacity) VALUES (?, 'T1', 2)`, f.restaurantID)
	f.bigTable = insert(`INSERT INTO tables (restaurant_id, table_number, capacity) VALUES (?, 'T2', 4)`, f.restaurantID)
	return f
}

func newBookingHandler(db *sql.DB) *CustomerHandler {
	return NewCustomerHandler(
		repository.NewRestaurantRepo(db),
		repository.NewTableRepo(db),
		repository.NewTimeSlotRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewAssignmentRepo(db),
	)
}

func postBooking(t *testing.T, h *CustomerHandler, f bookingFixture, userID, tableID uint64, partySize uint32) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"table_id":%d,"time_slot_id":%d,"date":"2026-09-10","party_size":%d}`,
		tableID, f.slotID, partySize)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(f.restaurantID, 10))
	c.Set("user_id", userID)
	c.Set("role", "CUSTOMER")
	require.NoError(t, h.CreateBooking(c))
	return rec
}

func TestCreateBookingAvailabilityPreCheck(t *testing.T) {
	db := handlerTestDB(t)
	f := seedBookingFixture(t, db)
	h := newBookingHandler(db)

	// Alice takes the big table.
	rec := postBooking(t, h, f, f.customerA, f.bigTable, 4)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Bob asks for the same table: the availability check rejects it before
	// the ledger is ever touched, with the not-available body rather than
	// the lost-race one.
	rec = postBooking(t, h, f, f.customerB, f.bigTable, 2)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available")
	assert.NotContains(t, rec.Body.String(), "just taken")

	// A table too small for the party is a 400, not a conflict.
	rec = postBooking(t, h, f, f.customerB, f.smallTable, 3)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot seat")

	// The free table still books.
	rec = postBooking(t, h, f, f.customerB, f.smallTable, 2)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Exactly two ACTIVE assignments made it to the ledger.
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM assignments WHERE status = ?`, model.StatusActive).Scan(&count))
	assert.Equal(t, 2, count)
}
