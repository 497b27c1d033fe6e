package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

// FridaySlot is the extra noon slot only offered on Fridays.
const FridaySlot = "12:01-12:55"

var weekdaySlots = []string{
	"7:30-8:15",
	"8:20-9:05",
	"9:10-9:55",
	"10:00-10:45",
	"10:50-11:35",
	"11:40-12:25",
	"1:00-1:45",
	"1:50-2:35",
}

var yearPattern = regexp.MustCompile(`^\d{4}(-\d{4})?$`)

// SlotGrid maps each bookable weekday to its ordered time slots.
type SlotGrid map[models.Weekday][]string

// DefaultSlotGrid returns the Monday to Friday grid with the Friday noon slot.
func DefaultSlotGrid() SlotGrid {
	grid := make(SlotGrid, 5)
	for _, day := range []models.Weekday{models.Monday, models.Tuesday, models.Wednesday, models.Thursday} {
		grid[day] = append([]string(nil), weekdaySlots...)
	}
	friday := make([]string, 0, len(weekdaySlots)+1)
	friday = append(friday, weekdaySlots[:6]...)
	friday = append(friday, FridaySlot)
	friday = append(friday, weekdaySlots[6:]...)
	grid[models.Friday] = friday
	return grid
}

// SlotCatalog enumerates the bookable (day, time) pairs per department.
// Departments without their own grid use the default one.
type SlotCatalog struct {
	fallback    SlotGrid
	departments map[string]SlotGrid
	allowed     map[string]struct{}
}

// NewSlotCatalog builds a catalog. A non-empty allow list rejects other departments.
func NewSlotCatalog(allowedDepartments []string) *SlotCatalog {
	catalog := &SlotCatalog{fallback: DefaultSlotGrid(), departments: map[string]SlotGrid{}}
	if len(allowedDepartments) > 0 {
		catalog.allowed = make(map[string]struct{}, len(allowedDepartments))
		for _, dept := range allowedDepartments {
			catalog.allowed[departmentKey(dept)] = struct{}{}
		}
	}
	return catalog
}

// SetDepartmentGrid overrides the grid for a single department.
func (c *SlotCatalog) SetDepartmentGrid(department string, grid SlotGrid) {
	copied := make(SlotGrid, len(grid))
	for day, slots := range grid {
		copied[day] = append([]string(nil), slots...)
	}
	c.departments[departmentKey(department)] = copied
}

// ValidateDepartment rejects blank departments and those outside the allow list.
func (c *SlotCatalog) ValidateDepartment(department string) error {
	if strings.TrimSpace(department) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	if c.allowed == nil {
		return nil
	}
	if _, ok := c.allowed[departmentKey(department)]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown department %q", department))
	}
	return nil
}

// Days lists the weekdays that have slots, in week order.
func (c *SlotCatalog) Days(department string) []models.Weekday {
	grid := c.grid(department)
	days := make([]models.Weekday, 0, len(grid))
	for _, day := range models.Weekdays {
		if len(grid[day]) > 0 {
			days = append(days, day)
		}
	}
	return days
}

// Slots returns the ordered time slots for a day.
func (c *SlotCatalog) Slots(department string, day models.Weekday) []string {
	return append([]string(nil), c.grid(department)[day]...)
}

// Contains reports whether (day, timeSlot) exists in the department's grid.
func (c *SlotCatalog) Contains(department string, day models.Weekday, timeSlot string) bool {
	for _, slot := range c.grid(department)[day] {
		if slot == timeSlot {
			return true
		}
	}
	return false
}

// Enumerate returns the whole grid in week order.
func (c *SlotCatalog) Enumerate(department string) []models.SlotCatalogDay {
	days := c.Days(department)
	out := make([]models.SlotCatalogDay, 0, len(days))
	for _, day := range days {
		out = append(out, models.SlotCatalogDay{Day: day, Slots: c.Slots(department, day)})
	}
	return out
}

func (c *SlotCatalog) grid(department string) SlotGrid {
	if grid, ok := c.departments[departmentKey(department)]; ok {
		return grid
	}
	return c.fallback
}

func departmentKey(department string) string {
	return strings.ToLower(strings.TrimSpace(department))
}

// ValidateYear checks the "2024" or "2024-2025" form.
func ValidateYear(year string) error {
	if !yearPattern.MatchString(strings.TrimSpace(year)) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid year %q", year))
	}
	return nil
}

// registerScheduleValidations adds the weekday and slotyear tags used by request payloads.
func registerScheduleValidations(v *validator.Validate) {
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := models.ParseWeekday(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("slotyear", func(fl validator.FieldLevel) bool {
		return yearPattern.MatchString(fl.Field().String())
	})
}
