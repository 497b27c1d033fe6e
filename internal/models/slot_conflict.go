package models

import "fmt"

// ConflictKind names the kind of entity blocking a slot.
type ConflictKind string

const (
	ConflictRecurring ConflictKind = "RECURRING"
	ConflictOverride  ConflictKind = "OVERRIDE"
	ConflictPending   ConflictKind = "PENDING"
	ConflictLocked    ConflictKind = "LOCKED"
)

// SlotConflict describes the entity that occupies a candidate slot.
type SlotConflict struct {
	Kind     ConflictKind `json:"kind"`
	EntityID string       `json:"entity_id,omitempty"`
	Title    string       `json:"title,omitempty"`
	Owner    string       `json:"owner,omitempty"`
	Day      Weekday      `json:"day"`
	Date     string       `json:"date,omitempty"`
	TimeSlot string       `json:"time"`
}

// SlotConflictError is returned when a slot cannot take a new booking.
type SlotConflictError struct {
	Message  string       `json:"message"`
	Conflict SlotConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// NewSlotConflictError builds a conflict error with a readable message.
func NewSlotConflictError(conflict SlotConflict) *SlotConflictError {
	var msg string
	switch conflict.Kind {
	case ConflictRecurring:
		msg = fmt.Sprintf("%s %s is booked weekly by %q", conflict.Day, conflict.TimeSlot, conflict.Title)
	case ConflictOverride:
		msg = fmt.Sprintf("%s %s is unavailable on %s", conflict.Day, conflict.TimeSlot, conflict.Date)
	case ConflictPending:
		msg = fmt.Sprintf("%s %s is requested by pending submission %q", conflict.Day, conflict.TimeSlot, conflict.Title)
	case ConflictLocked:
		msg = fmt.Sprintf("%s %s is being booked by another request", conflict.Day, conflict.TimeSlot)
	default:
		msg = fmt.Sprintf("%s %s is not free", conflict.Day, conflict.TimeSlot)
	}
	return &SlotConflictError{Message: msg, Conflict: conflict}
}
