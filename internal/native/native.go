// Package native projects future reminder occurrences into a host-level
// notification scheduler, so reminders keep firing even when the app
// process is not running. Hosts without that capability plug in NoopHost
// and the polling scheduler remains the sole delivery mechanism.
package native

import (
	"context"
	"time"
)

// Channel describes the notification channel/category created once, lazily,
// before the first schedule call. The id must be stable across runs.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  int // Android IMPORTANCE_* scale
	Visibility  int // Android VISIBILITY_* scale
}

// DefaultChannel is tagged important enough that the host does not silently
// suppress reminder notifications.
func DefaultChannel() Channel {
	return Channel{
		ID:          "reminders",
		Name:        "Reminders",
		Description: "Scheduled reminders",
		Importance:  4, // IMPORTANCE_HIGH
		Visibility:  1, // VISIBILITY_PUBLIC
	}
}

// Notification is one native scheduler entry: either a one-shot fire time
// (At) or a repeating rule (Rule, RFC 5545 RRULE) for hosts that support
// repetition natively. Exactly one of the two is set.
type Notification struct {
	ID        int32
	Title     string
	Body      string
	ChannelID string
	At        time.Time
	Rule      string
}

// Host is the capability boundary to the platform scheduler. Implementations
// must tolerate Cancel for ids that were never scheduled.
type Host interface {
	Supported() bool
	EnsureChannel(ctx context.Context, ch Channel) error
	Schedule(ctx context.Context, notifications []Notification) error
	Cancel(ctx context.Context, ids []int32) error
}

// NoopHost is the fallback for hosts without native scheduling (or with
// notification permission denied). Every operation succeeds and does
// nothing; this is deliberately not an error condition.
type NoopHost struct{}

func (NoopHost) Supported() bool { return false }

func (NoopHost) EnsureChannel(context.Context, Channel) error { return nil }

func (NoopHost) Schedule(context.Context, []Notification) error { return nil }

func (NoopHost) Cancel(context.Context, []int32) error { return nil }
