package models

import (
	"strconv"
	"strings"
	"time"
)

// Frequency is the recurrence pattern of a reminder.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

// DefaultHour and DefaultMinute are used when a reminder has no parseable
// time-of-day.
const (
	DefaultHour   = 9
	DefaultMinute = 0
)

type Reminder struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Frequency    Frequency  `json:"frequency"`
	IntervalDays int        `json:"interval_days"` // only meaningful for custom; <= 0 never fires
	TimeAt       string     `json:"time_at"`       // "HH:mm" local time-of-day
	EndDate      *time.Time `json:"end_date"`      // date-only expiry, compared ignoring TimeAt
	Comment      string     `json:"comment"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"` // recurrence anchor for weekly/monthly/custom
}

// ClockTime parses TimeAt as "HH:mm". Malformed or missing values fall back
// to 09:00 so one bad record cannot stop evaluation of the rest.
func (r *Reminder) ClockTime() (hour, minute int) {
	hour, minute = DefaultHour, DefaultMinute
	parts := strings.SplitN(r.TimeAt, ":", 2)
	if len(parts) != 2 {
		return hour, minute
	}
	if h, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && h >= 0 && h <= 23 {
		hour = h
	}
	if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && m >= 0 && m <= 59 {
		minute = m
	}
	return hour, minute
}

// DisplayName returns the reminder's label, or a generic fallback when the
// name is empty.
func (r *Reminder) DisplayName() string {
	if strings.TrimSpace(r.Name) == "" {
		return "Reminder"
	}
	return r.Name
}

// IsCustom reports whether the reminder uses a custom day interval.
func (r *Reminder) IsCustom() bool {
	return r.Frequency == FrequencyCustom
}

// Expired reports whether the given date is strictly after the reminder's
// end date. The comparison is date-only; TimeAt never affects expiry.
func (r *Reminder) Expired(now time.Time) bool {
	if r.EndDate == nil {
		return false
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := r.EndDate.Date()
	today := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	last := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return today.After(last)
}
