// Package recurrence decides when a reminder is due. It is the single
// implementation of the recurrence rules: the polling scheduler asks
// ShouldFireNow for immediate delivery and the native projector asks
// ProjectOccurrences for future scheduling, so the two paths can never
// drift apart.
//
// All computations are calendar-date based in the reminder's local zone:
// day differences compare dates, not elapsed hours, so DST transitions do
// not shift which day an occurrence lands on.
package recurrence

import (
	"time"

	"github.com/centavo-app/notifier/internal/models"
)

// TickLayout is the minute-granularity timestamp format used as the unit
// of deduplication and firing-window comparison.
const TickLayout = "2006-01-02T15:04"

// Epsilon is the margin used when projecting: occurrences at or before
// now+Epsilon are skipped so we never schedule a notification that should
// already have fired.
const Epsilon = 5 * time.Second

// DefaultLookahead bounds projection when a reminder has no end date.
const DefaultLookahead = 90 * 24 * time.Hour

// DefaultCap bounds the number of projected occurrences per reminder
// regardless of window, to keep native scheduler usage small.
const DefaultCap = 60

// TickKey truncates t to the minute. Two evaluations within the same
// minute for the same reminder are the same decision point.
func TickKey(t time.Time) string {
	return t.Format(TickLayout)
}

// ShouldFireNow reports whether the reminder is due in the minute that
// contains now. Pure function: ledger deduplication is the caller's job.
func ShouldFireNow(r *models.Reminder, now time.Time) bool {
	if !r.Active {
		return false
	}
	if r.Expired(now) {
		return false
	}

	todayAt := occurrenceOn(now, r)
	if TickKey(todayAt) != TickKey(now) {
		return false
	}

	anchor := anchorOf(r, now)

	switch r.Frequency {
	case models.FrequencyDaily:
		return true
	case models.FrequencyWeekly:
		d := daysBetween(occurrenceOn(anchor, r), now)
		return d >= 0 && d%7 == 0
	case models.FrequencyMonthly:
		return anchor.Day() == now.Day()
	case models.FrequencyCustom:
		if r.IntervalDays <= 0 {
			return false
		}
		d := daysBetween(occurrenceOn(anchor, r), now)
		return d >= 0 && d%r.IntervalDays == 0
	default:
		// Unknown frequencies behave like daily.
		return true
	}
}

// ProjectOccurrences walks forward from now and returns the reminder's
// future occurrences at its time-of-day, strictly increasing, skipping
// anything at or before now+Epsilon and anything after the end boundary
// (EndDate when present, otherwise now+lookahead). At most cap entries are
// returned. Custom reminders with a non-positive interval project nothing,
// matching the never-fires rule.
func ProjectOccurrences(r *models.Reminder, now time.Time, lookahead time.Duration, limit int) []time.Time {
	if limit <= 0 {
		limit = DefaultCap
	}
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	end := now.Add(lookahead)
	if r.EndDate != nil {
		// Date-only boundary: take the stored calendar date as-is, at the
		// reminder's time-of-day in the local zone.
		hour, min := r.ClockTime()
		ey, em, ed := r.EndDate.Date()
		end = time.Date(ey, em, ed, hour, min, 0, 0, now.Location())
	}
	cutoff := now.Add(Epsilon)

	anchor := anchorOf(r, now)

	var out []time.Time
	push := func(t time.Time) bool {
		if t.After(end) {
			return false
		}
		if t.After(cutoff) {
			out = append(out, t)
		}
		return len(out) < limit
	}

	switch r.Frequency {
	case models.FrequencyWeekly:
		stepFrom(anchor, 7, r, cutoff, push)
	case models.FrequencyMonthly:
		projectMonthly(anchor, now, r, push)
	case models.FrequencyCustom:
		if r.IntervalDays <= 0 {
			return nil
		}
		stepFrom(anchor, r.IntervalDays, r, cutoff, push)
	default:
		// daily and unknown frequencies
		stepFrom(now, 1, r, cutoff, push)
	}
	return out
}

// stepFrom advances from the anchor date in fixed day steps, staying
// phase-aligned with the anchor, then emits candidates until push declines.
func stepFrom(start time.Time, stepDays int, r *models.Reminder, cutoff time.Time, push func(time.Time) bool) {
	d := start
	for occurrenceOn(d, r).Before(cutoff) {
		d = d.AddDate(0, 0, stepDays)
	}
	for push(occurrenceOn(d, r)) {
		d = d.AddDate(0, 0, stepDays)
	}
}

// projectMonthly emits one occurrence per month on the anchor's day of
// month, clamped to the last day of shorter months.
func projectMonthly(anchor, now time.Time, r *models.Reminder, push func(time.Time) bool) {
	hour, min := r.ClockTime()
	baseDay := anchor.Day()
	y, m := now.Year(), int(now.Month())
	for {
		day := baseDay
		if last := lastDayOfMonth(y, m, now.Location()); day > last {
			day = last
		}
		t := time.Date(y, time.Month(m), day, hour, min, 0, 0, now.Location())
		if !push(t) {
			return
		}
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
}

// occurrenceOn combines a calendar date with the reminder's time-of-day.
func occurrenceOn(date time.Time, r *models.Reminder) time.Time {
	hour, min := r.ClockTime()
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location())
}

// anchorOf returns the recurrence anchor date, falling back to now when
// the record carries no creation timestamp. The store keeps timestamps
// without a zone and the driver reads them as UTC; the clock values are
// local, so they are reinterpreted rather than converted.
func anchorOf(r *models.Reminder, now time.Time) time.Time {
	if r.CreatedAt.IsZero() {
		return now
	}
	cy, cm, cd := r.CreatedAt.Date()
	return time.Date(cy, cm, cd, 0, 0, 0, 0, now.Location())
}

// daysBetween returns the number of calendar days from a to b, ignoring
// clock time. Negative when b's date precedes a's.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func lastDayOfMonth(year, month int, loc *time.Location) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
}
