package models

// SlotStatus is the resolved state of one slot in a concrete week.
type SlotStatus string

const (
	SlotAvailable       SlotStatus = "available"
	SlotBookedRecurring SlotStatus = "booked-recurring"
	SlotBookedOverride  SlotStatus = "booked-override"
	SlotPending         SlotStatus = "pending"
)

// PendingRef is a pending submission surfaced on a slot.
type PendingRef struct {
	SubmissionID  string `json:"submission_id"`
	ShowTitle     string `json:"show_title"`
	ApplicantName string `json:"applicant_name"`
}

// SlotAvailability is one resolved cell of the weekly grid.
type SlotAvailability struct {
	Day         Weekday      `json:"day"`
	Date        Date         `json:"date"`
	TimeSlot    string       `json:"time"`
	Status      SlotStatus   `json:"status"`
	Subject     string       `json:"subject,omitempty"`
	RoomNum     string       `json:"room_num,omitempty"`
	BookedBy    string       `json:"booked_by,omitempty"`
	RecurringID string       `json:"recurring_id,omitempty"`
	OverrideID  string       `json:"override_id,omitempty"`
	Pending     []PendingRef `json:"pending"`
}

// DayAvailability groups a day's slots in catalog order.
type DayAvailability struct {
	Day   Weekday            `json:"day"`
	Date  Date               `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

// WeeklyAvailability is the resolved grid for a department, year and week.
type WeeklyAvailability struct {
	WeekStart  Date              `json:"week_start"`
	WeekEnd    Date              `json:"week_end"`
	Department string            `json:"department"`
	Year       string            `json:"year"`
	Days       []DayAvailability `json:"days"`
}

// Slot returns the cell for day and time, if present.
func (w *WeeklyAvailability) Slot(day Weekday, timeSlot string) (SlotAvailability, bool) {
	if w == nil {
		return SlotAvailability{}, false
	}
	for _, d := range w.Days {
		if d.Day != day {
			continue
		}
		for _, s := range d.Slots {
			if s.TimeSlot == timeSlot {
				return s, true
			}
		}
	}
	return SlotAvailability{}, false
}

// AvailabilityQuery is the input for a weekly availability lookup.
type AvailabilityQuery struct {
	WeekStart  string `form:"weekStart" validate:"required"`
	Department string `form:"department" validate:"required"`
	Year       string `form:"year" validate:"required,slotyear"`
}

// SlotCatalogDay lists a day's slots for a department.
type SlotCatalogDay struct {
	Day   Weekday  `json:"day"`
	Slots []string `json:"slots"`
}
