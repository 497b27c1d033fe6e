package models

import "time"

// OverrideStatus states whether a concrete date's slot is freed or taken.
type OverrideStatus string

const (
	OverrideUnavailable OverrideStatus = "unavailable"
	OverrideAvailable   OverrideStatus = "available"
)

// Valid reports whether s is a known override status.
func (s OverrideStatus) Valid() bool {
	return s == OverrideUnavailable || s == OverrideAvailable
}

// ScheduleOverride replaces the recurring state of one slot on one calendar date.
type ScheduleOverride struct {
	ID         string         `db:"id" json:"id"`
	Date       Date           `db:"date" json:"date"`
	TimeSlot   string         `db:"time_slot" json:"time"`
	Department string         `db:"department" json:"department"`
	Year       string         `db:"year" json:"year"`
	Status     OverrideStatus `db:"status" json:"status"`
	Subject    string         `db:"subject" json:"subject"`
	RoomNum    string         `db:"room_num" json:"room_num"`
	BookedBy   string         `db:"booked_by" json:"booked_by"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// ScheduleOverrideFilter selects overrides in an inclusive date range.
type ScheduleOverrideFilter struct {
	Department string
	Year       string
	From       Date
	To         Date
}

// ScheduleOverrideRequest is the admin payload for setting an override.
type ScheduleOverrideRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot   string `json:"time" validate:"required"`
	Department string `json:"department" validate:"required"`
	Year       string `json:"year" validate:"required,slotyear"`
	Status     string `json:"status" validate:"required,oneof=available unavailable"`
	Subject    string `json:"subject" validate:"omitempty,max=200"`
	RoomNum    string `json:"room_num" validate:"omitempty,max=50"`
	BookedBy   string `json:"booked_by" validate:"omitempty,max=200"`
}
