package model

import "time"

// Table describes a physical dining table within a restaurant. Tables are
// uniquely identified by their restaurant and table number. Capacity drives
// the availability resolver's party-size filter. Deleting a table is a
// logical flag flip so that historical assignments stay resolvable.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant to which this table belongs.
//  TableNumber  – label unique within the restaurant (e.g. "T1", "12").
//  Capacity     – number of seats at the table.
//  IsActive     – whether the table is available for new assignments.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Table struct {
	ID           uint64    // tables.id
	RestaurantID uint64    // tables.restaurant_id
	TableNumber  string    // tables.table_number
	Capacity     uint32    // tables.capacity
	IsActive     bool      // tables.is_active
	CreatedAt    time.Time // tables.created_at
	UpdatedAt    time.Time // tables.updated_at
}
