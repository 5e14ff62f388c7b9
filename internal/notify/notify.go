// Package notify is the delivery boundary: fire events produced by the
// polling scheduler are handed to one or more sinks (in-app banners, an
// out-of-band channel), and failures in one sink never affect another.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/centavo-app/notifier/internal/models"
)

// Event is a single "reminder is due now" occurrence.
type Event struct {
	ReminderID string
	Name       string
	Meta       string // frequency label, time, end date
	FiredAt    time.Time
}

// Sink delivers fire events to one surface.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// EventFor builds the outward-facing event for a reminder, including the
// metadata line shown under the banner title.
func EventFor(r *models.Reminder, firedAt time.Time) Event {
	return Event{
		ReminderID: r.ID,
		Name:       r.DisplayName(),
		Meta:       MetaLine(r),
		FiredAt:    firedAt,
	}
}

// MetaLine renders the frequency label, time-of-day and end date of a
// reminder, e.g. "weekly · 08:30 · until 2025-06-01".
func MetaLine(r *models.Reminder) string {
	hour, min := r.ClockTime()
	meta := fmt.Sprintf("%s · %02d:%02d", FrequencyLabel(r), hour, min)
	if r.EndDate != nil {
		meta += " · until " + r.EndDate.Format("2006-01-02")
	}
	return meta
}

// FrequencyLabel returns a human-readable label for the reminder's
// recurrence pattern.
func FrequencyLabel(r *models.Reminder) string {
	switch r.Frequency {
	case models.FrequencyWeekly:
		return "weekly"
	case models.FrequencyMonthly:
		return "monthly"
	case models.FrequencyCustom:
		if r.IntervalDays == 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", r.IntervalDays)
	default:
		return "daily"
	}
}
