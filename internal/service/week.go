package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

// ParseWeekStart parses an ISO date that must fall on a Monday.
func ParseWeekStart(raw string) (models.Date, error) {
	date, err := models.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return models.Date{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid weekStart %q", raw))
	}
	if date.Weekday() != models.Monday {
		return models.Date{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekStart %s is a %s, expected a Monday", date, date.Weekday()))
	}
	return date, nil
}

// DateForDay returns the calendar date of day within the week starting at weekStart.
func DateForDay(weekStart models.Date, day models.Weekday) models.Date {
	return weekStart.AddDays(day.Offset())
}

// WeekStartOf returns the Monday on or before t, using t's own location for the calendar date.
func WeekStartOf(t time.Time) models.Date {
	date := models.NewDate(t)
	return date.AddDays(-date.Weekday().Offset())
}
