// Package repository defines sentinel errors reused across repositories.
// Higher layers compare against these with errors.Is and translate them to
// HTTP statuses. The business taxonomy is resolved entirely at this
// boundary: validation errors, the contention error, authorization errors
// and state errors each get their own value so that nothing is ever
// inferred from error strings.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrSlotTaken is the contention outcome of the ledger: another assignment
// already holds the (table, time slot, date) key. Losing this race is a
// legitimate result, not a fault; callers should re-query availability and
// pick a different table rather than retry the same key.
var ErrSlotTaken = errors.New("table already assigned for this time slot")

// ErrAlreadyCancelled is returned when cancelling an assignment that has
// already reached its terminal state.
var ErrAlreadyCancelled = errors.New("assignment already cancelled")

// ErrTableNotEligible is returned when a table's capacity cannot seat the
// requested party size. The resolver filters these out up front, but the
// ledger re-checks inside its transaction so the error can also surface
// there.
var ErrTableNotEligible = errors.New("table cannot seat the requested party")

// ErrInvalidSlotTime is returned when a slot's start or derived end time
// falls outside the restaurant's operating hours, or the clock values are
// malformed.
var ErrInvalidSlotTime = errors.New("slot time outside operating hours")

// ErrDuplicateSlot is returned when a slot already exists for the same
// restaurant, date and start time.
var ErrDuplicateSlot = errors.New("time slot already exists")

// ErrDuplicateTableNumber is returned when a table number is already used
// within the restaurant.
var ErrDuplicateTableNumber = errors.New("table number already in use")

// ErrTableHasActiveHolds blocks removing a table that still has
// non-cancelled assignments for a present-or-future date.
var ErrTableHasActiveHolds = errors.New("table has active assignments")

// ErrSlotHasActiveHolds blocks deactivating a time slot that still has
// non-cancelled assignments for a present-or-future date.
var ErrSlotHasActiveHolds = errors.New("time slot has active assignments")

// Not-found sentinels, one per entity.
var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrSlotNotFound       = errors.New("time slot not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)
