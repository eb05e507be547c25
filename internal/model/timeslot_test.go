package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	t.Run("accepts HH:MM:SS", func(t *testing.T) {
		tm, err := ParseClock("18:30:00")
		require.NoError(t, err)
		assert.Equal(t, "18:30:00", tm.Format("15:04:05"))
	})
	t.Run("accepts HH:MM", func(t *testing.T) {
		tm, err := ParseClock("09:15")
		require.NoError(t, err)
		assert.Equal(t, "09:15:00", tm.Format("15:04:05"))
	})
	t.Run("rejects garbage", func(t *testing.T) {
		for _, s := range []string{"", "25:00", "18h30", "7:5", "18:30:61"} {
			_, err := ParseClock(s)
			assert.ErrorIs(t, err, ErrBadClock, "input %q", s)
		}
	})
}

func TestDeriveEndTime(t *testing.T) {
	t.Run("adds duration", func(t *testing.T) {
		end, err := DeriveEndTime("18:00", 120)
		require.NoError(t, err)
		assert.Equal(t, "20:00:00", end)
	})
	t.Run("normalizes to HH:MM:SS", func(t *testing.T) {
		end, err := DeriveEndTime("09:30:00", 45)
		require.NoError(t, err)
		assert.Equal(t, "10:15:00", end)
	})
	t.Run("rejects midnight wrap", func(t *testing.T) {
		_, err := DeriveEndTime("23:30", 60)
		assert.ErrorIs(t, err, ErrBadClock)
	})
	t.Run("rejects bad start", func(t *testing.T) {
		_, err := DeriveEndTime("not-a-clock", 60)
		assert.ErrorIs(t, err, ErrBadClock)
	})
}

func TestWithinOperatingHours(t *testing.T) {
	const open, close = "10:00:00", "22:00:00"

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"inside window", "18:00:00", "20:00:00", true},
		{"exactly the window", "10:00:00", "22:00:00", true},
		{"starts at opening", "10:00:00", "12:00:00", true},
		{"ends at closing", "20:00:00", "22:00:00", true},
		{"starts before opening", "09:00:00", "11:00:00", false},
		{"ends after closing", "21:00:00", "23:00:00", false},
		{"inverted interval", "20:00:00", "18:00:00", false},
		{"zero-length interval", "18:00:00", "18:00:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WithinOperatingHours(open, close, tc.start, tc.end))
		})
	}

	t.Run("malformed clocks are outside", func(t *testing.T) {
		assert.False(t, WithinOperatingHours("bad", close, "18:00:00", "20:00:00"))
		assert.False(t, WithinOperatingHours(open, close, "bad", "20:00:00"))
	})
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-09-01"))
	assert.True(t, ValidDate("2024-02-29")) // leap day
	assert.False(t, ValidDate("2026-13-01"))
	assert.False(t, ValidDate("2025-02-29"))
	assert.False(t, ValidDate("01-09-2026"))
	assert.False(t, ValidDate(""))
}

func TestAssignmentKindValid(t *testing.T) {
	assert.True(t, KindBooking.Valid())
	assert.True(t, KindAdminReserve.Valid())
	assert.False(t, AssignmentKind("WALK_IN").Valid())
	assert.False(t, AssignmentKind("").Valid())
}
