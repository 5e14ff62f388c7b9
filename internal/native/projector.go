package native

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/centavo-app/notifier/internal/models"
	"github.com/centavo-app/notifier/internal/notify"
	"github.com/centavo-app/notifier/internal/recurrence"
)

// Projector converts reminders into native scheduler entries. Each reminder
// owns a deterministic block of notification ids derived from its opaque id,
// so re-projecting always cancels and replaces the same entries instead of
// accumulating duplicates.
//
// Daily, weekly and monthly reminders whose anchor day maps cleanly are
// scheduled as a single repeating rule; custom intervals and monthly anchors
// past the 28th fall back to explicit enumeration through the shared
// recurrence evaluator (RFC 5545 skips short months where this app clamps,
// so the rule form cannot express those).
type Projector struct {
	host           Host
	lookahead      time.Duration
	maxPerReminder int
	log            *zap.Logger
	clock          func() time.Time

	channelOnce sync.Once
	channelErr  error
}

func NewProjector(host Host, lookahead time.Duration, maxPerReminder int, log *zap.Logger) *Projector {
	if lookahead <= 0 {
		lookahead = recurrence.DefaultLookahead
	}
	if maxPerReminder <= 0 || maxPerReminder > recurrence.DefaultCap {
		maxPerReminder = recurrence.DefaultCap
	}
	return &Projector{
		host:           host,
		lookahead:      lookahead,
		maxPerReminder: maxPerReminder,
		log:            log,
		clock:          time.Now,
	}
}

// Project replaces the native schedule for the reminder with its upcoming
// occurrences. Inactive or expired reminders only get their prior entries
// cancelled. No-op on hosts without native scheduling.
func (p *Projector) Project(ctx context.Context, r *models.Reminder) error {
	if !p.host.Supported() {
		return nil
	}

	now := p.clock()

	// Cancel-then-recreate: no incremental diffing against prior entries.
	if err := p.host.Cancel(ctx, p.idBlock(r.ID)); err != nil {
		return fmt.Errorf("failed to cancel prior schedule for reminder %s: %w", r.ID, err)
	}
	if !r.Active || r.Expired(now) {
		return nil
	}

	notifications := p.build(r, now)
	if len(notifications) == 0 {
		return nil
	}

	p.channelOnce.Do(func() {
		p.channelErr = p.host.EnsureChannel(ctx, DefaultChannel())
	})
	if p.channelErr != nil {
		return fmt.Errorf("failed to create notification channel: %w", p.channelErr)
	}

	if err := p.host.Schedule(ctx, notifications); err != nil {
		return fmt.Errorf("failed to schedule reminder %s: %w", r.ID, err)
	}
	p.log.Debug("projected native schedule",
		zap.String("reminder_id", r.ID),
		zap.Int("entries", len(notifications)),
	)
	return nil
}

// Cancel removes every native entry belonging to the reminder. No-op on
// hosts without native scheduling.
func (p *Projector) Cancel(ctx context.Context, reminderID string) error {
	if !p.host.Supported() {
		return nil
	}
	if err := p.host.Cancel(ctx, p.idBlock(reminderID)); err != nil {
		return fmt.Errorf("failed to cancel schedule for reminder %s: %w", reminderID, err)
	}
	return nil
}

func (p *Projector) build(r *models.Reminder, now time.Time) []Notification {
	title := r.DisplayName()
	body := notify.MetaLine(r)
	channel := DefaultChannel().ID

	if rule, ok := repeatingRule(r, now); ok {
		return []Notification{{
			ID:        notificationID(r.ID, 0),
			Title:     title,
			Body:      body,
			ChannelID: channel,
			Rule:      rule,
		}}
	}

	occurrences := recurrence.ProjectOccurrences(r, now, p.lookahead, p.maxPerReminder)
	notifications := make([]Notification, 0, len(occurrences))
	for i, at := range occurrences {
		notifications = append(notifications, Notification{
			ID:        notificationID(r.ID, i),
			Title:     title,
			Body:      body,
			ChannelID: channel,
			At:        at,
		})
	}
	return notifications
}

// repeatingRule renders the reminder as a native repeating rule when the
// recurrence maps cleanly onto RFC 5545 semantics.
func repeatingRule(r *models.Reminder, now time.Time) (string, bool) {
	hour, min := r.ClockTime()

	anchor := r.CreatedAt
	if anchor.IsZero() {
		anchor = now
	}
	// Stored without a zone and read back as UTC; reinterpret the clock
	// values as local instead of converting.
	ay, am, ad := anchor.Date()

	opt := rrule.ROption{
		Interval: 1,
		Byhour:   []int{hour},
		Byminute: []int{min},
		Dtstart:  time.Date(ay, am, ad, hour, min, 0, 0, now.Location()),
	}

	switch r.Frequency {
	case models.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case models.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case models.FrequencyMonthly:
		// Day 29+ must clamp in short months; RFC 5545 skips them instead.
		if anchor.Day() > 28 {
			return "", false
		}
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{anchor.Day()}
	default:
		// custom intervals and unknown frequencies are enumerated
		return "", false
	}

	if r.EndDate != nil {
		ey, em, ed := r.EndDate.Date()
		opt.Until = time.Date(ey, em, ed, hour, min, 0, 0, now.Location())
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", false
	}
	return rule.String(), true
}

// notificationID derives a stable positive int32 from the reminder's opaque
// id plus the occurrence index, so the same reminder always maps to the
// same id block.
func notificationID(reminderID string, occurrence int) int32 {
	h := fnv.New32a()
	h.Write([]byte(reminderID))
	id := int32((h.Sum32() + uint32(occurrence)) & 0x7fffffff)
	if id == 0 {
		id = 1
	}
	return id
}

// idBlock is every notification id the reminder could have been scheduled
// under, for cancellation.
func (p *Projector) idBlock(reminderID string) []int32 {
	ids := make([]int32, p.maxPerReminder)
	for i := range ids {
		ids[i] = notificationID(reminderID, i)
	}
	return ids
}
