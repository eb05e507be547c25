package model

import "time"

// Restaurant represents a venue owned by a user. A restaurant owns its
// tables and time slots; bookings reference it by id. Opening and closing
// times bound the slots the owner may create. This struct corresponds to a
// row in the `restaurants` table.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – user ID of the restaurant owner.
//  Name         – display name of the restaurant.
//  Description  – optional free-text description.
//  Location     – city/area used for search filtering.
//  Cuisine      – cuisine label used for search filtering.
//  CostForTwo   – indicative cost for two diners.
//  IsVegetarian – whether the menu is fully vegetarian.
//  Rating       – aggregate rating (externally maintained).
//  OpeningTime  – daily opening clock, "HH:MM:SS".
//  ClosingTime  – daily closing clock, "HH:MM:SS".
//  IsActive     – whether the restaurant is visible/bookable.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Restaurant struct {
	ID           uint64    // restaurants.id
	OwnerID      uint64    // restaurants.owner_id
	Name         string    // restaurants.name
	Description  *string   // restaurants.description (nullable)
	Location     string    // restaurants.location
	Cuisine      string    // restaurants.cuisine
	CostForTwo   uint32    // restaurants.cost_for_two
	IsVegetarian bool      // restaurants.is_vegetarian
	Rating       float64   // restaurants.rating
	OpeningTime  string    // restaurants.opening_time
	ClosingTime  string    // restaurants.closing_time
	IsActive     bool      // restaurants.is_active
	CreatedAt    time.Time // restaurants.created_at
	UpdatedAt    time.Time // restaurants.updated_at
}
