package native

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/centavo-app/notifier/internal/models"
)

type fakeHost struct {
	supported   bool
	channels    []Channel
	scheduled   [][]Notification
	cancelled   [][]int32
	scheduleErr error
	channelErr  error
}

func (f *fakeHost) Supported() bool { return f.supported }

func (f *fakeHost) EnsureChannel(_ context.Context, ch Channel) error {
	f.channels = append(f.channels, ch)
	return f.channelErr
}

func (f *fakeHost) Schedule(_ context.Context, ns []Notification) error {
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.scheduled = append(f.scheduled, ns)
	return nil
}

func (f *fakeHost) Cancel(_ context.Context, ids []int32) error {
	f.cancelled = append(f.cancelled, ids)
	return nil
}

func testProjector(host Host) *Projector {
	p := NewProjector(host, 90*24*time.Hour, 60, zap.NewNop())
	p.clock = func() time.Time {
		return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.Local)
	}
	return p
}

func activeReminder(freq models.Frequency) *models.Reminder {
	return &models.Reminder{
		ID:        "11111111-2222-3333-4444-555555555555",
		UserID:    "alice",
		Name:      "Pay rent",
		Frequency: freq,
		TimeAt:    "09:00",
		Active:    true,
		CreatedAt: time.Date(2025, time.January, 5, 9, 0, 0, 0, time.Local),
	}
}

func TestProjectDailyUsesRepeatingRule(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	require.NoError(t, p.Project(context.Background(), activeReminder(models.FrequencyDaily)))

	require.Len(t, host.scheduled, 1)
	require.Len(t, host.scheduled[0], 1)
	n := host.scheduled[0][0]
	assert.True(t, n.At.IsZero())
	assert.Contains(t, n.Rule, "FREQ=DAILY")
	assert.Contains(t, n.Rule, "BYHOUR=9")
	assert.Contains(t, n.Rule, "BYMINUTE=0")
	assert.Equal(t, "Pay rent", n.Title)
	assert.Equal(t, "reminders", n.ChannelID)
}

func TestProjectWeeklyUsesRepeatingRule(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	require.NoError(t, p.Project(context.Background(), activeReminder(models.FrequencyWeekly)))

	require.Len(t, host.scheduled, 1)
	assert.Contains(t, host.scheduled[0][0].Rule, "FREQ=WEEKLY")
}

func TestProjectMonthlyLateAnchorFallsBackToEnumeration(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	r := activeReminder(models.FrequencyMonthly)
	r.CreatedAt = time.Date(2025, time.January, 31, 9, 0, 0, 0, time.Local)

	require.NoError(t, p.Project(context.Background(), r))

	require.Len(t, host.scheduled, 1)
	ns := host.scheduled[0]
	require.True(t, len(ns) > 1, "late-month anchors are enumerated, not rule-form")
	for _, n := range ns {
		assert.Empty(t, n.Rule)
		assert.False(t, n.At.IsZero())
	}
	// Short months clamp to their last day instead of being skipped.
	assert.Equal(t, time.Date(2025, time.March, 31, 9, 0, 0, 0, time.Local), ns[0].At)
	assert.Equal(t, time.Date(2025, time.April, 30, 9, 0, 0, 0, time.Local), ns[1].At)
}

func TestProjectMonthlyEarlyAnchorUsesRule(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	require.NoError(t, p.Project(context.Background(), activeReminder(models.FrequencyMonthly)))

	require.Len(t, host.scheduled, 1)
	rule := host.scheduled[0][0].Rule
	assert.Contains(t, rule, "FREQ=MONTHLY")
	assert.Contains(t, rule, "BYMONTHDAY=5")
}

func TestProjectCustomEnumeratesOccurrences(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	r := activeReminder(models.FrequencyCustom)
	r.IntervalDays = 14

	require.NoError(t, p.Project(context.Background(), r))

	require.Len(t, host.scheduled, 1)
	ns := host.scheduled[0]
	require.NotEmpty(t, ns)
	for i := 1; i < len(ns); i++ {
		assert.Equal(t, 14*24*time.Hour, ns[i].At.Sub(ns[i-1].At))
	}
}

func TestProjectCustomNonPositiveIntervalSchedulesNothing(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	r := activeReminder(models.FrequencyCustom)
	r.IntervalDays = 0

	require.NoError(t, p.Project(context.Background(), r))
	assert.Empty(t, host.scheduled)
	assert.Len(t, host.cancelled, 1, "prior entries are still cancelled")
}

func TestProjectCancelsBeforeScheduling(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)
	r := activeReminder(models.FrequencyDaily)

	require.NoError(t, p.Project(context.Background(), r))
	require.NoError(t, p.Project(context.Background(), r))

	require.Len(t, host.cancelled, 2)
	assert.Equal(t, host.cancelled[0], host.cancelled[1], "same id block every time")
	assert.Len(t, host.cancelled[0], 60)
}

func TestProjectInactiveReminderOnlyCancels(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	r := activeReminder(models.FrequencyDaily)
	r.Active = false

	require.NoError(t, p.Project(context.Background(), r))
	assert.Len(t, host.cancelled, 1)
	assert.Empty(t, host.scheduled)
}

func TestProjectUnsupportedHostIsNoop(t *testing.T) {
	host := &fakeHost{supported: false}
	p := testProjector(host)

	require.NoError(t, p.Project(context.Background(), activeReminder(models.FrequencyDaily)))
	require.NoError(t, p.Cancel(context.Background(), "whatever"))
	assert.Empty(t, host.cancelled)
	assert.Empty(t, host.scheduled)
}

func TestProjectCreatesChannelOnce(t *testing.T) {
	host := &fakeHost{supported: true}
	p := testProjector(host)

	require.NoError(t, p.Project(context.Background(), activeReminder(models.FrequencyDaily)))
	require.NoError(t, p.Project(context.Background(), activeReminder(models.FrequencyWeekly)))

	require.Len(t, host.channels, 1)
	assert.Equal(t, "reminders", host.channels[0].ID)
	assert.Equal(t, 4, host.channels[0].Importance)
}

func TestProjectScheduleFailureIsReported(t *testing.T) {
	host := &fakeHost{supported: true, scheduleErr: errors.New("host rejected")}
	p := testProjector(host)

	err := p.Project(context.Background(), activeReminder(models.FrequencyDaily))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "host rejected"))
}

func TestNotificationIDStableAndPositive(t *testing.T) {
	a := notificationID("reminder-a", 0)
	assert.Equal(t, a, notificationID("reminder-a", 0))
	assert.NotEqual(t, a, notificationID("reminder-a", 1))
	assert.NotEqual(t, a, notificationID("reminder-b", 0))
	assert.Positive(t, a)
}
