package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday names a day of the week in a department's recurring grid.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists days in week order starting on Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts full names or three-letter abbreviations in any case.
func ParseWeekday(raw string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if len(key) >= 3 {
		for _, day := range Weekdays {
			name := strings.ToLower(string(day))
			if key == name || key == name[:3] {
				return day, nil
			}
		}
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// Offset returns the number of days after Monday, or -1 for an invalid day.
func (d Weekday) Offset() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven canonical names.
func (d Weekday) Valid() bool {
	return d.Offset() >= 0
}

// WeekdayOf maps a calendar date to its Weekday.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[(int(t.Weekday())+6)%7]
}
