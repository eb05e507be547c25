package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobook/restaurant-table-reservation/internal/model"
)

func tablesWithCapacities(caps ...uint32) []model.Table {
	out := make([]model.Table, 0, len(caps))
	for i, c := range caps {
		out = append(out, model.Table{
			ID:          uint64(i + 1),
			TableNumber: string(rune('A' + i)),
			Capacity:    c,
		})
	}
	return out
}

func TestEligibleTables(t *testing.T) {
	t.Run("filters by capacity", func(t *testing.T) {
		tables := tablesWithCapacities(2, 4, 6, 8)
		got := EligibleTables(tables, 5)
		require.Len(t, got, 2)
		assert.Equal(t, uint32(6), got[0].Capacity)
		assert.Equal(t, uint32(8), got[1].Capacity)
	})
	t.Run("exact fit is eligible", func(t *testing.T) {
		got := EligibleTables(tablesWithCapacities(2, 4), 4)
		require.Len(t, got, 1)
		assert.Equal(t, uint32(4), got[0].Capacity)
	})
	t.Run("nothing fits", func(t *testing.T) {
		got := EligibleTables(tablesWithCapacities(2, 4), 10)
		assert.Empty(t, got)
	})
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, EligibleTables(nil, 2))
	})
}

func TestSortForSeating(t *testing.T) {
	tables := []model.Table{
		{TableNumber: "T3", Capacity: 8},
		{TableNumber: "T1", Capacity: 4},
		{TableNumber: "T4", Capacity: 4},
		{TableNumber: "T2", Capacity: 2},
	}
	SortForSeating(tables)

	got := make([]string, 0, len(tables))
	for _, tb := range tables {
		got = append(got, tb.TableNumber)
	}
	// Smallest capacity first, table number breaks ties.
	assert.Equal(t, []string{"T2", "T1", "T4", "T3"}, got)
}

func TestSortForSeatingNaturalOrder(t *testing.T) {
	tables := []model.Table{
		{TableNumber: "T10", Capacity: 4},
		{TableNumber: "T2", Capacity: 4},
		{TableNumber: "T1", Capacity: 4},
	}
	SortForSeating(tables)

	got := make([]string, 0, len(tables))
	for _, tb := range tables {
		got = append(got, tb.TableNumber)
	}
	// Shorter numbers sort first so T10 does not land between T1 and T2.
	assert.Equal(t, []string{"T1", "T2", "T10"}, got)
}
