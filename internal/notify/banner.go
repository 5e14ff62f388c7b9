package notify

import (
	"context"
	"time"
)

// DefaultDismissAfter is how long a banner stays on screen before the UI
// auto-dismisses it.
const DefaultDismissAfter = 5 * time.Second

// Banner is an in-app toast: the event plus how long to show it.
type Banner struct {
	Event
	DismissAfter time.Duration
}

// Center is the in-app delivery surface. Fired banners are published on a
// bounded channel the UI layer consumes; when the consumer falls behind,
// the oldest banner is dropped rather than blocking the scheduler tick.
type Center struct {
	banners      chan Banner
	dismissAfter time.Duration
}

func NewCenter(buffer int, dismissAfter time.Duration) *Center {
	if buffer <= 0 {
		buffer = 16
	}
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Center{
		banners:      make(chan Banner, buffer),
		dismissAfter: dismissAfter,
	}
}

// Deliver publishes the event as a banner. Never blocks.
func (c *Center) Deliver(_ context.Context, ev Event) error {
	b := Banner{Event: ev, DismissAfter: c.dismissAfter}
	for {
		select {
		case c.banners <- b:
			return nil
		default:
		}
		select {
		case <-c.banners: // drop oldest
		default:
		}
	}
}

// Banners is the stream the UI layer consumes.
func (c *Center) Banners() <-chan Banner {
	return c.banners
}
