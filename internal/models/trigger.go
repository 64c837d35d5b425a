package models

import (
	"strings"
	"time"
)

// Temperature bounds accepted for a trigger target, in °C.
const (
	MinTemperatureC = 0.0
	MaxTemperatureC = 28.0
)

// Time formats used for human-readable trigger descriptions.
const (
	DateTimeFullFormat = "02.01.2006 at 15:04"
	DateOnlyFormat     = "02.01.2006"
	TimeOnlyFormat     = "15:04"
)

// Trigger is a stored intent to set a device to a temperature at a time.
// Either one-off (Time is an absolute date+time) or weekly-recurring (only
// Time's clock part matters, the recur flags pick the weekdays).
type Trigger struct {
	ID          int       `json:"id"`
	DeviceID    int       `json:"device_id"`
	Name        string    `json:"name,omitempty"`
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"` // °C, within [0, 28]
	Enabled     bool      `json:"enabled"`

	RecurMonday    bool `json:"recur_monday"`
	RecurTuesday   bool `json:"recur_tuesday"`
	RecurWednesday bool `json:"recur_wednesday"`
	RecurThursday  bool `json:"recur_thursday"`
	RecurFriday    bool `json:"recur_friday"`
	RecurSaturday  bool `json:"recur_saturday"`
	RecurSunday    bool `json:"recur_sunday"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayFlags returns the recurrence flags ordered Monday..Sunday.
func (t Trigger) WeekdayFlags() [7]bool {
	return [7]bool{
		t.RecurMonday,
		t.RecurTuesday,
		t.RecurWednesday,
		t.RecurThursday,
		t.RecurFriday,
		t.RecurSaturday,
		t.RecurSunday,
	}
}

// Recurring is true iff at least one weekday flag is set.
func (t Trigger) Recurring() bool {
	for _, set := range t.WeekdayFlags() {
		if set {
			return true
		}
	}
	return false
}

// RecursOn reports whether the trigger recurs on the given weekday.
// time.Weekday counts Sunday=0; the flags are ordered Monday-first.
func (t Trigger) RecursOn(day time.Weekday) bool {
	idx := (int(day) + 6) % 7
	return t.WeekdayFlags()[idx]
}

// Outdated is true for a trigger whose absolute time lies in the past.
// Only meaningful for one-off triggers.
func (t Trigger) Outdated(now time.Time) bool {
	return t.Time.Before(now)
}

// FormattedTime renders the trigger time with the given layout.
func (t Trigger) FormattedTime(layout string) string {
	return t.Time.Format(layout)
}

// RecurringTimeLabel returns a label like "Mon, Tue, Fri at 21:00" or
// "Every day at 06:30".
func (t Trigger) RecurringTimeLabel() string {
	var days []string
	for idx, set := range t.WeekdayFlags() {
		if set {
			days = append(days, weekdayLabels[idx])
		}
	}
	desc := strings.Join(days, ", ")
	if len(days) == 7 {
		desc = "Every day"
	}
	return desc + " at " + t.FormattedTime(TimeOnlyFormat)
}

// String describes the trigger for logs and notifications, e.g.
// "Living Room at 21:00 -> 19.5".
func (t Trigger) String() string {
	layout := DateTimeFullFormat
	if t.Recurring() {
		layout = TimeOnlyFormat
	}
	name := t.Name
	if name == "" {
		name = "trigger"
	}
	return name + " at " + t.FormattedTime(layout)
}
