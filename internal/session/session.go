// Package session holds the owner currently selected in the foreground.
// Only that owner's tasks are scanned for reminders.
package session

import (
	"errors"
	"strings"
	"sync"
)

var ErrEmptyOwner = errors.New("owner must not be empty")

type Session struct {
	mu    sync.RWMutex
	owner string
}

func New(owner string) *Session {
	return &Session{owner: strings.TrimSpace(owner)}
}

// Select makes owner the active session owner.
func (s *Session) Select(owner string) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return ErrEmptyOwner
	}
	s.mu.Lock()
	s.owner = owner
	s.mu.Unlock()
	return nil
}

// Owner returns the active owner, or "" when none is selected.
func (s *Session) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}
