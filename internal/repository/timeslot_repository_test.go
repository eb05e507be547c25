package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotCreate(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, nil)
	repo := NewTimeSlotRepo(db)
	restaurants := NewRestaurantRepo(db)
	ctx := context.Background()

	rest, err := restaurants.GetByID(ctx, f.restaurantID)
	require.NoError(t, err)

	t.Run("within operating hours", func(t *testing.T) {
		slot, err := repo.Create(ctx, rest, "2026-09-11", "12:00", 120)
		require.NoError(t, err)
		assert.Equal(t, "12:00:00", slot.StartTime)
		assert.Equal(t, "14:00:00", slot.EndTime)
		assert.Equal(t, "2026-09-11", slot.Date)
		assert.True(t, slot.IsActive)
	})

	t.Run("duplicate start is refused", func(t *testing.T) {
		_, err := repo.Create(ctx, rest, "2026-09-11", "12:00:00", 120)
		assert.ErrorIs(t, err, ErrDuplicateSlot)
	})

	t.Run("outside operating hours", func(t *testing.T) {
		// Restaurant closes at 22:00; a 21:30 start with a two hour
		// seating would run past closing.
		_, err := repo.Create(ctx, rest, "2026-09-11", "21:30", 120)
		assert.ErrorIs(t, err, ErrInvalidSlotTime)

		_, err = repo.Create(ctx, rest, "2026-09-11", "08:00", 120)
		assert.ErrorIs(t, err, ErrInvalidSlotTime)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := repo.Create(ctx, rest, "11-09-2026", "12:00", 120)
		assert.ErrorIs(t, err, ErrInvalidSlotTime)
	})
}

func TestTimeSlotGenerateForDate(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, nil)
	repo := NewTimeSlotRepo(db)
	restaurants := NewRestaurantRepo(db)
	ctx := context.Background()

	rest, err := restaurants.GetByID(ctx, f.restaurantID)
	require.NoError(t, err)

	// 10:00-22:00 window with two hour seatings: 10, 12, 14, 16, 18, 20.
	created, err := repo.GenerateForDate(ctx, rest, "2026-09-12", 120)
	require.NoError(t, err)
	assert.Len(t, created, 6)
	assert.Equal(t, "10:00:00", created[0].StartTime)
	assert.Equal(t, "20:00:00", created[len(created)-1].StartTime)

	// Generating again finds every start occupied and creates nothing.
	again, err := repo.GenerateForDate(ctx, rest, "2026-09-12", 120)
	require.NoError(t, err)
	assert.Empty(t, again)

	listed, err := repo.ListByRestaurantDate(ctx, f.restaurantID, "2026-09-12")
	require.NoError(t, err)
	assert.Len(t, listed, 6)
}

func TestSlotDeactivateGuard(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db, map[string]uint32{"T1": 4})
	slots := NewTimeSlotRepo(db)
	assignments := NewAssignmentRepo(db)
	ctx := context.Background()

	a, err := assignments.TryAssign(ctx, bookingRequest(f, f.tableIDs["T1"], 2))
	require.NoError(t, err)

	err = slots.Deactivate(ctx, f.slotID, "2026-09-01")
	assert.ErrorIs(t, err, ErrSlotHasActiveHolds)

	require.NoError(t, assignments.Cancel(ctx, a.ID, f.customerID))
	require.NoError(t, slots.Deactivate(ctx, f.slotID, "2026-09-01"))

	got, err := slots.GetByID(ctx, f.slotID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
