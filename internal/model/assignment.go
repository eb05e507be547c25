package model

import "time"

// AssignmentKind is the closed set of assignment variants. A booking binds a
// table to a diner's party; an admin reserve is an owner-initiated hold with
// no customer attached. Both travel the identical atomic claim path in the
// ledger, so neither can diverge from the exclusivity rule.
type AssignmentKind string

const (
	KindBooking      AssignmentKind = "BOOKING"
	KindAdminReserve AssignmentKind = "ADMIN_RESERVE"
)

// Valid reports whether k is one of the declared kinds.
func (k AssignmentKind) Valid() bool {
	return k == KindBooking || k == KindAdminReserve
}

// Assignment statuses. ACTIVE rows own their (table, slot, date) key;
// CANCELLED is terminal and kept for history.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
)

// Assignment is the exclusive binding of one table to one time slot on one
// date. At most one ACTIVE assignment may exist per (table, slot, date) key;
// the database's scoped unique index enforces this, not application code.
// Cancellation is the only mutation and it is terminal.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant the table and slot belong to.
//  TableID      – claimed table.
//  TimeSlotID   – claimed slot.
//  Date         – claimed date, "YYYY-MM-DD".
//  Kind         – BOOKING or ADMIN_RESERVE.
//  Status       – ACTIVE or CANCELLED.
//  PartySize    – number of guests (0 for admin holds).
//  UserID       – booking holder (nil for admin holds).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Assignment struct {
	ID           uint64         // assignments.id
	RestaurantID uint64         // assignments.restaurant_id
	TableID      uint64         // assignments.table_id
	TimeSlotID   uint64         // assignments.time_slot_id
	Date         string         // assignments.slot_date
	Kind         AssignmentKind // assignments.kind
	Status       string         // assignments.status
	PartySize    uint32         // assignments.party_size
	UserID       *uint64        // assignments.user_id (nullable)
	CreatedAt    time.Time      // assignments.created_at
	UpdatedAt    time.Time      // assignments.updated_at
}
