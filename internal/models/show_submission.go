package models

import "time"

// SubmissionResult is the lifecycle state of a show submission.
type SubmissionResult string

const (
	SubmissionPending  SubmissionResult = "pending"
	SubmissionAccepted SubmissionResult = "accepted"
	SubmissionRejected SubmissionResult = "rejected"
)

// Final reports whether the result can no longer change.
func (r SubmissionResult) Final() bool {
	return r == SubmissionAccepted || r == SubmissionRejected
}

// ShowSubmission is an application to host a show in a preferred slot.
type ShowSubmission struct {
	ID             string           `db:"id" json:"id"`
	ShowTitle      string           `db:"show_title" json:"show_title"`
	ApplicantName  string           `db:"applicant_name" json:"applicant_name"`
	ApplicantEmail string           `db:"applicant_email" json:"applicant_email"`
	Organization   string           `db:"organization" json:"organization"`
	Description    string           `db:"description" json:"description"`
	PreferredDay   Weekday          `db:"preferred_day" json:"preferred_day"`
	PreferredTime  string           `db:"preferred_time" json:"preferred_time"`
	Department     string           `db:"department" json:"department"`
	Year           string           `db:"year" json:"year"`
	Result         SubmissionResult `db:"result" json:"result"`
	FinalDay       *Weekday         `db:"final_day" json:"final_day,omitempty"`
	FinalTime      *string          `db:"final_time" json:"final_time,omitempty"`
	DecisionNote   *string          `db:"decision_note" json:"decision_note,omitempty"`
	DecidedBy      *string          `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt      *time.Time       `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// ShowSubmissionFilter captures filtering criteria for listing submissions.
type ShowSubmissionFilter struct {
	Department string
	Year       string
	Result     SubmissionResult
	Search     string
	Page       int
	PageSize   int
}

// SubmissionDecision records the outcome written when a submission is finalised.
type SubmissionDecision struct {
	Result    SubmissionResult
	FinalDay  *Weekday
	FinalTime *string
	Note      *string
	DecidedBy *string
	DecidedAt time.Time
}

// CreateShowSubmissionRequest is the public intake payload.
type CreateShowSubmissionRequest struct {
	ShowTitle      string `json:"show_title" validate:"required,max=200"`
	ApplicantName  string `json:"applicant_name" validate:"required,max=200"`
	ApplicantEmail string `json:"applicant_email" validate:"required,email"`
	Organization   string `json:"organization" validate:"omitempty,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
	PreferredDay   string `json:"preferred_day" validate:"required,weekday"`
	PreferredTime  string `json:"preferred_time" validate:"required"`
	Department     string `json:"department" validate:"required"`
	Year           string `json:"year" validate:"required,slotyear"`
}

// AcceptSubmissionRequest chooses the final slot for a submission.
// WeekStart selects the concrete week used for the override check.
type AcceptSubmissionRequest struct {
	FinalDay  string `json:"final_day" validate:"required,weekday"`
	FinalTime string `json:"final_time" validate:"required"`
	WeekStart string `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
	RoomNum   string `json:"room_num" validate:"omitempty,max=50"`
}

// RejectSubmissionRequest optionally records why a submission was declined.
type RejectSubmissionRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// AcceptanceCheck reports a successful dry run of an acceptance.
type AcceptanceCheck struct {
	SubmissionID string  `json:"submission_id"`
	Day          Weekday `json:"day"`
	TimeSlot     string  `json:"time"`
	Date         Date    `json:"date"`
	Available    bool    `json:"available"`
}

// AcceptanceResult is returned after a submission is promoted.
type AcceptanceResult struct {
	Submission ShowSubmission    `json:"submission"`
	Recurring  RecurringSchedule `json:"recurring_schedule"`
}
