// Package session tracks the authenticated user id in memory. The auth
// flow itself lives outside this module; the notifier only needs a
// synchronous accessor plus a change signal so it can re-filter its cache
// on login and logout.
package session

import "sync"

type Session struct {
	mu       sync.RWMutex
	userID   string
	onChange []func(userID string)
}

func New(userID string) *Session {
	return &Session{userID: userID}
}

// CurrentUserID returns the signed-in user id, or empty when signed out.
func (s *Session) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetUser records a login (non-empty id) or logout (empty id) and invokes
// the registered callbacks when the user actually changed.
func (s *Session) SetUser(userID string) {
	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.userID = userID
	callbacks := make([]func(string), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(userID)
	}
}

// OnChange registers a callback invoked after every user change. Register
// before the scheduler starts; registration is not synchronized against
// in-flight SetUser calls.
func (s *Session) OnChange(fn func(userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}
