// Package remindercache holds the in-memory snapshot of the current user's
// active reminders that the polling scheduler evaluates against.
package remindercache

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/centavo-app/notifier/internal/models"
)

// Source lists the active reminders from wherever they live. Calls may
// fail; the cache tolerates that and keeps its previous contents.
type Source interface {
	ListActiveReminders(ctx context.Context) ([]*models.Reminder, error)
}

// SessionResolver exposes the authenticated user id. Empty means no user
// is signed in.
type SessionResolver interface {
	CurrentUserID() string
}

// Cache keeps the latest known-good reminder snapshot. Refresh replaces the
// snapshot wholesale (never mutates in place), so a concurrent Current call
// during a refresh always sees a complete list.
type Cache struct {
	source   Source
	session  SessionResolver
	log      *zap.Logger
	snapshot atomic.Pointer[[]*models.Reminder]
}

func New(source Source, session SessionResolver, log *zap.Logger) *Cache {
	c := &Cache{source: source, session: session, log: log}
	empty := make([]*models.Reminder, 0)
	c.snapshot.Store(&empty)
	return c
}

// Refresh reloads the snapshot from the source. Transport errors are logged
// and the previous snapshot is retained, so a transient failure never
// clears reminders that were already known-good. Filtering by the current
// user happens here, in-process, so a user switch followed by a refresh
// cannot leak another user's reminders.
func (c *Cache) Refresh(ctx context.Context) {
	userID := c.session.CurrentUserID()
	if userID == "" {
		empty := make([]*models.Reminder, 0)
		c.snapshot.Store(&empty)
		return
	}

	items, err := c.source.ListActiveReminders(ctx)
	if err != nil {
		c.log.Warn("reminder refresh failed, keeping previous snapshot", zap.Error(err))
		return
	}

	filtered := make([]*models.Reminder, 0, len(items))
	for _, r := range items {
		if r != nil && r.Active && r.UserID == userID {
			filtered = append(filtered, r)
		}
	}
	c.snapshot.Store(&filtered)
}

// Current returns the latest snapshot. Callers must treat it as read-only.
func (c *Cache) Current() []*models.Reminder {
	return *c.snapshot.Load()
}
