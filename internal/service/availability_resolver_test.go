package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/radio-schedule-api/internal/models"
)

func fmMix() models.RecurringSchedule {
	return models.RecurringSchedule{
		ID:         "rec-1",
		Day:        models.Friday,
		TimeSlot:   FridaySlot,
		Department: "News",
		Year:       "2024",
		Subject:    "FM MIX",
		RoomNum:    "Studio A",
		BookedBy:   "DJ Kai",
	}
}

func slotOf(t *testing.T, grid models.WeeklyAvailability, day models.Weekday, timeSlot string) models.SlotAvailability {
	t.Helper()
	slot, ok := grid.Slot(day, timeSlot)
	require.True(t, ok, "slot %s %s missing", day, timeSlot)
	return slot
}

func TestResolveWeekShape(t *testing.T) {
	catalog := NewSlotCatalog(nil)
	grid := ResolveWeek(catalog, WeekInputs{WeekStart: mustDate(t, "2024-09-02"), Department: "News", Year: "2024"})

	require.Len(t, grid.Days, 5)
	assert.Equal(t, "2024-09-08", grid.WeekEnd.String())
	assert.Equal(t, models.Monday, grid.Days[0].Day)
	assert.Equal(t, "2024-09-02", grid.Days[0].Date.String())
	assert.Equal(t, "2024-09-06", grid.Days[4].Date.String())
	assert.Len(t, grid.Days[0].Slots, 8)
	assert.Len(t, grid.Days[4].Slots, 9)
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			assert.Equal(t, models.SlotAvailable, slot.Status)
			assert.NotNil(t, slot.Pending)
			assert.Empty(t, slot.Pending)
		}
	}
}

func TestResolveWeekOverrideAvailableFreesRecurringSlot(t *testing.T) {
	catalog := NewSlotCatalog(nil)
	inputs := WeekInputs{
		Department: "News",
		Year:       "2024",
		Recurring:  []models.RecurringSchedule{fmMix()},
		Overrides: []models.ScheduleOverride{{
			ID:         "ovr-1",
			Date:       mustDate(t, "2024-09-06"),
			TimeSlot:   FridaySlot,
			Department: "News",
			Year:       "2024",
			Status:     models.OverrideAvailable,
		}},
	}

	inputs.WeekStart = mustDate(t, "2024-09-02")
	slot := slotOf(t, ResolveWeek(catalog, inputs), models.Friday, FridaySlot)
	assert.Equal(t, models.SlotAvailable, slot.Status)
	assert.Equal(t, "ovr-1", slot.OverrideID)
	assert.Empty(t, slot.Subject)

	inputs.WeekStart = mustDate(t, "2024-09-09")
	slot = slotOf(t, ResolveWeek(catalog, inputs), models.Friday, FridaySlot)
	assert.Equal(t, "2024-09-13", slot.Date.String())
	assert.Equal(t, models.SlotBookedRecurring, slot.Status)
	assert.Equal(t, "FM MIX", slot.Subject)
	assert.Equal(t, "rec-1", slot.RecurringID)
	assert.Empty(t, slot.OverrideID)
}

func TestResolveWeekOverrideUnavailableBooksSlot(t *testing.T) {
	catalog := NewSlotCatalog(nil)
	grid := ResolveWeek(catalog, WeekInputs{
		WeekStart:  mustDate(t, "2024-09-02"),
		Department: "News",
		Year:       "2024",
		Recurring:  []models.RecurringSchedule{fmMix()},
		Overrides: []models.ScheduleOverride{
			{ID: "ovr-1", Date: mustDate(t, "2024-09-03"), TimeSlot: "8:20-9:05", Department: "News", Year: "2024", Status: models.OverrideUnavailable, Subject: "Assembly", BookedBy: "Principal"},
			{ID: "ovr-2", Date: mustDate(t, "2024-09-06"), TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: models.OverrideUnavailable, Subject: "Special"},
		},
	})

	slot := slotOf(t, grid, models.Tuesday, "8:20-9:05")
	assert.Equal(t, models.SlotBookedOverride, slot.Status)
	assert.Equal(t, "Assembly", slot.Subject)
	assert.Equal(t, "Principal", slot.BookedBy)

	slot = slotOf(t, grid, models.Friday, FridaySlot)
	assert.Equal(t, models.SlotBookedOverride, slot.Status)
	assert.Equal(t, "Special", slot.Subject)
	assert.Empty(t, slot.RecurringID)
}

func TestResolveWeekPendingVisibleButNotBooked(t *testing.T) {
	catalog := NewSlotCatalog(nil)
	grid := ResolveWeek(catalog, WeekInputs{
		WeekStart:  mustDate(t, "2024-09-09"),
		Department: "News",
		Year:       "2024",
		Recurring:  []models.RecurringSchedule{fmMix()},
		Pending: []models.ShowSubmission{
			{ID: "sub-1", ShowTitle: "Morning Talk", ApplicantName: "Ana", PreferredDay: models.Monday, PreferredTime: "7:30-8:15", Department: "News", Year: "2024", Result: models.SubmissionPending},
			{ID: "sub-2", ShowTitle: "Lunch Beats", ApplicantName: "Ben", PreferredDay: models.Friday, PreferredTime: FridaySlot, Department: "News", Year: "2024", Result: models.SubmissionPending},
			{ID: "sub-3", ShowTitle: "Old", PreferredDay: models.Monday, PreferredTime: "7:30-8:15", Department: "News", Year: "2024", Result: models.SubmissionRejected},
		},
	})

	slot := slotOf(t, grid, models.Monday, "7:30-8:15")
	assert.Equal(t, models.SlotPending, slot.Status)
	require.Len(t, slot.Pending, 1)
	assert.Equal(t, "sub-1", slot.Pending[0].SubmissionID)
	assert.Equal(t, "Morning Talk", slot.Pending[0].ShowTitle)

	slot = slotOf(t, grid, models.Friday, FridaySlot)
	assert.Equal(t, models.SlotBookedRecurring, slot.Status)
	require.Len(t, slot.Pending, 1)
	assert.Equal(t, "sub-2", slot.Pending[0].SubmissionID)
}

func TestResolveWeekIgnoresForeignRows(t *testing.T) {
	catalog := NewSlotCatalog(nil)
	other := fmMix()
	other.Department = "Sports"
	lastYear := fmMix()
	lastYear.Year = "2023"

	grid := ResolveWeek(catalog, WeekInputs{
		WeekStart:  mustDate(t, "2024-09-09"),
		Department: "News",
		Year:       "2024",
		Recurring:  []models.RecurringSchedule{other, lastYear},
		Overrides: []models.ScheduleOverride{
			{ID: "ovr-out", Date: mustDate(t, "2024-09-16"), TimeSlot: "7:30-8:15", Department: "News", Year: "2024", Status: models.OverrideUnavailable},
		},
	})

	assert.Equal(t, models.SlotAvailable, slotOf(t, grid, models.Friday, FridaySlot).Status)
	assert.Equal(t, models.SlotAvailable, slotOf(t, grid, models.Monday, "7:30-8:15").Status)
}

func TestResolveWeekIsIdempotent(t *testing.T) {
	catalog := NewSlotCatalog(nil)
	inputs := WeekInputs{
		WeekStart:  mustDate(t, "2024-09-02"),
		Department: "News",
		Year:       "2024",
		Recurring:  []models.RecurringSchedule{fmMix()},
		Overrides: []models.ScheduleOverride{
			{ID: "ovr-1", Date: mustDate(t, "2024-09-06"), TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: models.OverrideAvailable},
		},
		Pending: []models.ShowSubmission{
			{ID: "sub-1", PreferredDay: models.Monday, PreferredTime: "7:30-8:15", Department: "News", Year: "2024", Result: models.SubmissionPending},
		},
	}

	assert.Equal(t, ResolveWeek(catalog, inputs), ResolveWeek(catalog, inputs))
}
