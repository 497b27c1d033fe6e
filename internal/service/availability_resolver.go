package service

import (
	"github.com/noah-isme/radio-schedule-api/internal/models"
)

// WeekInputs carries everything needed to resolve one department's week.
type WeekInputs struct {
	WeekStart  models.Date
	Department string
	Year       string
	Recurring  []models.RecurringSchedule
	Overrides  []models.ScheduleOverride
	Pending    []models.ShowSubmission
}

type slotKey struct {
	day  models.Weekday
	time string
}

type dateSlotKey struct {
	date string
	time string
}

// ResolveWeek merges recurring bookings, overrides and pending submissions into
// one status per catalog slot. An override on the concrete date wins, then a
// recurring booking, then pending submissions. Pending submissions are listed on
// every slot they target regardless of its status. Rows for other departments,
// years or dates outside the week are ignored.
func ResolveWeek(catalog *SlotCatalog, in WeekInputs) models.WeeklyAvailability {
	weekEnd := in.WeekStart.AddDays(6)

	recurring := make(map[slotKey]models.RecurringSchedule, len(in.Recurring))
	for _, entry := range in.Recurring {
		if entry.Department != in.Department || entry.Year != in.Year {
			continue
		}
		recurring[slotKey{entry.Day, entry.TimeSlot}] = entry
	}

	overrides := make(map[dateSlotKey]models.ScheduleOverride, len(in.Overrides))
	for _, entry := range in.Overrides {
		if entry.Department != in.Department || entry.Year != in.Year {
			continue
		}
		if entry.Date.Before(in.WeekStart.Time) || entry.Date.After(weekEnd.Time) {
			continue
		}
		overrides[dateSlotKey{entry.Date.String(), entry.TimeSlot}] = entry
	}

	pending := make(map[slotKey][]models.PendingRef)
	for _, sub := range in.Pending {
		if sub.Result != models.SubmissionPending || sub.Department != in.Department || sub.Year != in.Year {
			continue
		}
		key := slotKey{sub.PreferredDay, sub.PreferredTime}
		pending[key] = append(pending[key], models.PendingRef{
			SubmissionID:  sub.ID,
			ShowTitle:     sub.ShowTitle,
			ApplicantName: sub.ApplicantName,
		})
	}

	grid := models.WeeklyAvailability{
		WeekStart:  in.WeekStart,
		WeekEnd:    weekEnd,
		Department: in.Department,
		Year:       in.Year,
	}
	for _, day := range catalog.Days(in.Department) {
		date := DateForDay(in.WeekStart, day)
		dayView := models.DayAvailability{Day: day, Date: date}
		for _, timeSlot := range catalog.Slots(in.Department, day) {
			cell := models.SlotAvailability{
				Day:      day,
				Date:     date,
				TimeSlot: timeSlot,
				Status:   models.SlotAvailable,
				Pending:  []models.PendingRef{},
			}
			if refs := pending[slotKey{day, timeSlot}]; len(refs) > 0 {
				cell.Pending = refs
			}

			if override, ok := overrides[dateSlotKey{date.String(), timeSlot}]; ok {
				cell.OverrideID = override.ID
				if override.Status == models.OverrideUnavailable {
					cell.Status = models.SlotBookedOverride
					cell.Subject = override.Subject
					cell.RoomNum = override.RoomNum
					cell.BookedBy = override.BookedBy
				}
			} else if entry, ok := recurring[slotKey{day, timeSlot}]; ok {
				cell.Status = models.SlotBookedRecurring
				cell.Subject = entry.Subject
				cell.RoomNum = entry.RoomNum
				cell.BookedBy = entry.BookedBy
				cell.RecurringID = entry.ID
			} else if len(cell.Pending) > 0 {
				cell.Status = models.SlotPending
			}
			dayView.Slots = append(dayView.Slots, cell)
		}
		grid.Days = append(grid.Days, dayView)
	}
	return grid
}
