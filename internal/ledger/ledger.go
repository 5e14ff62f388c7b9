// Package ledger is the in-memory idempotency guard for notification
// delivery: it remembers the last minute each reminder fired so the same
// occurrence is never delivered twice within one tick window.
package ledger

import "sync"

// Ledger maps a reminder id to the last tick key it fired at. Only the most
// recent key is kept; older history is irrelevant because only same-tick
// duplication matters. The ledger lives for the life of the polling loop
// and is reset when it stops.
type Ledger struct {
	mu   sync.Mutex
	last map[string]string
}

func New() *Ledger {
	return &Ledger{last: make(map[string]string)}
}

// HasFired reports whether the reminder already fired at the given tick key.
func (l *Ledger) HasFired(reminderID, tickKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last[reminderID] == tickKey
}

// MarkFired records the reminder as fired at the given tick key, replacing
// any earlier record for that reminder.
func (l *Ledger) MarkFired(reminderID, tickKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[reminderID] = tickKey
}

// Reset drops all records. Called on scheduler stop; a restart within the
// same minute may therefore re-fire, which the design accepts.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = make(map[string]string)
}
