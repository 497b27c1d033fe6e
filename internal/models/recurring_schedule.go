package models

import "time"

// RecurringSchedule books a show into the same weekday and time slot every week
// for a department and academic year.
type RecurringSchedule struct {
	ID           string    `db:"id" json:"id"`
	Day          Weekday   `db:"day" json:"day"`
	TimeSlot     string    `db:"time_slot" json:"time"`
	Department   string    `db:"department" json:"department"`
	Year         string    `db:"year" json:"year"`
	Subject      string    `db:"subject" json:"subject"`
	RoomNum      string    `db:"room_num" json:"room_num"`
	BookedBy     string    `db:"booked_by" json:"booked_by"`
	SubmissionID *string   `db:"submission_id" json:"submission_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RecurringScheduleFilter narrows recurring schedule listings.
type RecurringScheduleFilter struct {
	Department string
	Year       string
	Day        Weekday
}

// RecurringScheduleRequest is the admin payload for creating or editing a recurring booking.
type RecurringScheduleRequest struct {
	Day        string `json:"day" validate:"required,weekday"`
	TimeSlot   string `json:"time" validate:"required"`
	Department string `json:"department" validate:"required"`
	Year       string `json:"year" validate:"required,slotyear"`
	Subject    string `json:"subject" validate:"required,max=200"`
	RoomNum    string `json:"room_num" validate:"omitempty,max=50"`
	BookedBy   string `json:"booked_by" validate:"omitempty,max=200"`
}
