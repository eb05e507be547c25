package model

import (
	"errors"
	"time"
)

// TimeSlot represents a reservable seating interval on a given date. The end
// time is derived from the start time plus the configured service duration at
// creation and never changes afterwards. Slots are deactivated, never
// deleted, so historical bookings always resolve to a slot.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant offering the slot.
//  Date         – calendar date, "YYYY-MM-DD".
//  StartTime    – seating start clock, "HH:MM:SS".
//  EndTime      – derived seating end clock, "HH:MM:SS".
//  IsActive     – whether the slot accepts new assignments.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type TimeSlot struct {
	ID           uint64    // time_slots.id
	RestaurantID uint64    // time_slots.restaurant_id
	Date         string    // time_slots.slot_date
	StartTime    string    // time_slots.start_time
	EndTime      string    // time_slots.end_time
	IsActive     bool      // time_slots.is_active
	CreatedAt    time.Time // time_slots.created_at
	UpdatedAt    time.Time // time_slots.updated_at
}

// ErrBadClock is returned when a clock string cannot be parsed.
var ErrBadClock = errors.New("invalid clock value")

// clockLayouts lists accepted clock formats. MySQL TIME columns scan as
// "HH:MM:SS"; request bodies commonly send "HH:MM".
var clockLayouts = []string{"15:04:05", "15:04"}

// ParseClock parses a wall-clock string in "HH:MM:SS" or "HH:MM" form.
func ParseClock(s string) (time.Time, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadClock
}

// DeriveEndTime computes a slot's end clock from its start clock and the
// fixed service duration in minutes. The result is normalized to
// "HH:MM:SS". An end that would wrap past midnight is reported as ErrBadClock
// since a slot must close on the same calendar date.
func DeriveEndTime(start string, durationMin int) (string, error) {
	t, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	end := t.Add(time.Duration(durationMin) * time.Minute)
	if end.Day() != t.Day() {
		return "", ErrBadClock
	}
	return end.Format("15:04:05"), nil
}

// WithinOperatingHours reports whether the [start, end] interval falls inside
// the restaurant's [opening, closing] window. Malformed clocks count as
// outside the window.
func WithinOperatingHours(opening, closing, start, end string) bool {
	open, err := ParseClock(opening)
	if err != nil {
		return false
	}
	close, err := ParseClock(closing)
	if err != nil {
		return false
	}
	s, err := ParseClock(start)
	if err != nil {
		return false
	}
	e, err := ParseClock(end)
	if err != nil {
		return false
	}
	return !s.Before(open) && !e.After(close) && s.Before(e)
}

// ValidDate reports whether s is a well-formed "YYYY-MM-DD" date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
