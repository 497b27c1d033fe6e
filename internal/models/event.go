package models

import "time"

// Routing keys for schedule change notifications.
const (
	EventSubmissionAccepted = "schedule.submission.accepted"
	EventSubmissionRejected = "schedule.submission.rejected"
	EventRecurringChanged   = "schedule.recurring.changed"
	EventOverrideChanged    = "schedule.override.changed"
)

// ScheduleEvent is the payload published when the grid changes.
type ScheduleEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Department string      `json:"department"`
	Year       string      `json:"year"`
	ActorID    string      `json:"actor_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}
