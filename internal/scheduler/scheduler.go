// Package scheduler runs the cooperative polling loop: every fire interval
// it evaluates the cached reminders against the current minute and delivers
// the ones that are due, and every refresh interval it reloads the cache
// and re-projects native schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/centavo-app/notifier/internal/ledger"
	"github.com/centavo-app/notifier/internal/models"
	"github.com/centavo-app/notifier/internal/native"
	"github.com/centavo-app/notifier/internal/notify"
	"github.com/centavo-app/notifier/internal/recurrence"
	"github.com/centavo-app/notifier/internal/remindercache"
)

const (
	// DefaultFireInterval must stay at or below one minute so every firing
	// minute is observed at least once; 30s keeps that true under jitter.
	DefaultFireInterval = 30 * time.Second

	// DefaultRefreshInterval controls how quickly external reminder edits
	// are picked up between change signals.
	DefaultRefreshInterval = 60 * time.Second
)

type Config struct {
	FireInterval    time.Duration
	RefreshInterval time.Duration
}

type Scheduler struct {
	cache     *remindercache.Cache
	ledger    *ledger.Ledger
	projector *native.Projector
	sinks     []notify.Sink
	log       *zap.Logger

	fireInterval    time.Duration
	refreshInterval time.Duration
	clock           func() time.Time

	notifyCh chan struct{}
	running  atomic.Bool

	// ids projected on the previous reload; touched only by the loop goroutine
	projected map[string]struct{}
}

func New(cfg Config, cache *remindercache.Cache, projector *native.Projector, log *zap.Logger, sinks ...notify.Sink) *Scheduler {
	if cfg.FireInterval <= 0 || cfg.FireInterval > time.Minute {
		cfg.FireInterval = DefaultFireInterval
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	return &Scheduler{
		cache:           cache,
		ledger:          ledger.New(),
		projector:       projector,
		sinks:           sinks,
		log:             log,
		fireInterval:    cfg.FireInterval,
		refreshInterval: cfg.RefreshInterval,
		clock:           time.Now,
		notifyCh:        make(chan struct{}, 1),
		projected:       make(map[string]struct{}),
	}
}

// Notify triggers an immediate refresh-and-evaluate pass, used for the
// reminders-changed, focus-regained and user-changed signals. Non-blocking
// if a pass is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// A pass is already pending, skip
	}
}

// Start runs the loop until ctx is cancelled. Idempotent: a second call
// while running returns immediately, so multiple surfaces can request the
// scheduler without spawning duplicate loops. On return the fire ledger is
// cleared.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug("scheduler already running")
		return
	}
	defer s.running.Store(false)
	defer s.ledger.Reset()

	s.log.Info("scheduler started",
		zap.Duration("fire_interval", s.fireInterval),
		zap.Duration("refresh_interval", s.refreshInterval),
	)

	fire := time.NewTicker(s.fireInterval)
	defer fire.Stop()
	refresh := time.NewTicker(s.refreshInterval)
	defer refresh.Stop()

	// First pass right away: don't make the user wait a full fire interval
	// for a notification whose minute is already open.
	s.reload(ctx)
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-fire.C:
			s.tick(ctx)
		case <-refresh.C:
			s.reload(ctx)
		case <-s.notifyCh:
			s.log.Debug("scheduler triggered by signal")
			s.reload(ctx)
			s.tick(ctx)
		}
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// reload refreshes the cache snapshot, re-projects native schedules for
// everything in it, and cancels the schedules of reminders that dropped out
// of the snapshot since the previous reload (deleted, deactivated, or
// belonging to a previous user). Refresh failures keep the previous
// snapshot; firing continues against it.
func (s *Scheduler) reload(ctx context.Context) {
	s.cache.Refresh(ctx)
	if s.projector == nil {
		return
	}

	current := make(map[string]struct{})
	for _, r := range s.cache.Current() {
		current[r.ID] = struct{}{}
		if err := s.projector.Project(ctx, r); err != nil {
			s.log.Warn("native projection failed",
				zap.String("reminder_id", r.ID),
				zap.Error(err),
			)
		}
	}

	for id := range s.projected {
		if _, ok := current[id]; ok {
			continue
		}
		if err := s.projector.Cancel(ctx, id); err != nil {
			s.log.Warn("native cancellation failed",
				zap.String("reminder_id", id),
				zap.Error(err),
			)
		}
	}
	s.projected = current
}

// tick evaluates every cached reminder against the current minute.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock()
	for _, r := range s.cache.Current() {
		s.evaluate(ctx, r, now)
	}
}

// evaluate fires one reminder if it is due and not yet delivered this
// minute. Panics are contained so one malformed record cannot abort the
// pass for the others.
func (s *Scheduler) evaluate(ctx context.Context, r *models.Reminder, now time.Time) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("reminder evaluation panicked",
				zap.String("reminder_id", r.ID),
				zap.String("panic", fmt.Sprint(p)),
			)
		}
	}()

	if !recurrence.ShouldFireNow(r, now) {
		return
	}
	key := recurrence.TickKey(now)
	if s.ledger.HasFired(r.ID, key) {
		return
	}
	s.ledger.MarkFired(r.ID, key)

	ev := notify.EventFor(r, now)
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, ev); err != nil {
			s.log.Warn("notification delivery failed",
				zap.String("reminder_id", r.ID),
				zap.Error(err),
			)
		}
	}
	s.log.Info("reminder fired",
		zap.String("reminder_id", r.ID),
		zap.String("tick_key", key),
	)
}
