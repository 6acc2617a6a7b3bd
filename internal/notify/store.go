// Package notify holds the in-memory notification store and the relay
// that feeds it from the realtime channel.
package notify

import (
	"slices"
	"sync"

	"github.com/classtide/classtide/internal/models"
)

// Store is the in-memory notification list, newest first. Mutations are
// local only; server sync is out of scope.
type Store struct {
	mu    sync.Mutex
	items []models.Notification
}

func NewStore() *Store { return &Store{} }

// Add prepends a notification.
func (s *Store) Add(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.Notification{n}, s.items...)
}

// All returns a copy of every notification, newest first.
func (s *Store) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Unread returns the notifications not yet marked read.
func (s *Store) Unread() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.items {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}

// ByType returns the notifications of one type.
func (s *Store) ByType(typ string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.items {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// IsRead reports whether the given notification is marked read. Unknown
// ids report false.
func (s *Store) IsRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id {
			return n.Read
		}
	}
	return false
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAsRead marks one notification read.
func (s *Store) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return
		}
	}
}

// MarkAllAsRead marks every notification read.
func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
}

// Remove deletes one notification.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear deletes everything.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
