package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkAndCheck(t *testing.T) {
	l := New()

	assert.False(t, l.HasFired("a", "2025-03-03T09:00"))
	l.MarkFired("a", "2025-03-03T09:00")
	assert.True(t, l.HasFired("a", "2025-03-03T09:00"))

	// A different minute is a different decision point.
	assert.False(t, l.HasFired("a", "2025-03-03T09:01"))
	// Other reminders are unaffected.
	assert.False(t, l.HasFired("b", "2025-03-03T09:00"))
}

func TestOnlyLastKeyRetained(t *testing.T) {
	l := New()
	l.MarkFired("a", "2025-03-03T09:00")
	l.MarkFired("a", "2025-03-04T09:00")

	assert.True(t, l.HasFired("a", "2025-03-04T09:00"))
	assert.False(t, l.HasFired("a", "2025-03-03T09:00"), "history is not kept")
}

func TestReset(t *testing.T) {
	l := New()
	l.MarkFired("a", "2025-03-03T09:00")
	l.Reset()
	assert.False(t, l.HasFired("a", "2025-03-03T09:00"))
}
