// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a table booking is successfully
// placed. It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	AssignmentID   uint64 `json:"assignment_id"`
	UserID         uint64 `json:"user_id"`
	RestaurantID   uint64 `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	TableID        uint64 `json:"table_id"`
	TableNumber    string `json:"table_number"`
	PartySize      uint32 `json:"party_size"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	ConfirmedAt    string `json:"confirmed_at"`
}

// BookingCancelledEvent is published when an active booking or admin hold is
// cancelled, releasing its (table, slot, date) key.
type BookingCancelledEvent struct {
	AssignmentID uint64 `json:"assignment_id"`
	RestaurantID uint64 `json:"restaurant_id"`
	TableID      uint64 `json:"table_id"`
	Date         string `json:"date"`
	CancelledBy  uint64 `json:"cancelled_by"`
	CancelledAt  string `json:"cancelled_at"`
}
