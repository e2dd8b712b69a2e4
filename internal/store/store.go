// Package store holds the process-wide, ordered collection of notifications.
//
// Records are keyed by ID and kept in insertion order. Show replaces a record
// in place; Hide is a soft delete that only flips visibility. Records are
// never removed for the lifetime of the store.
package store

import (
	"sync"

	"github.com/jmylchreest/notifarea/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeInsert indicates a new id was appended.
	ChangeTypeInsert ChangeType = iota
	// ChangeTypeReplace indicates an existing id was overwritten in place.
	ChangeTypeReplace
	// ChangeTypeHide indicates a visible record was dismissed.
	ChangeTypeHide
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeInsert:
		return "insert"
	case ChangeTypeReplace:
		return "replace"
	case ChangeTypeHide:
		return "hide"
	default:
		return "unknown"
	}
}

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type ChangeType
	ID   model.ID
}

// Store manages notifications with thread-safe operations.
// Writes are expected to come from a single owner; the lock keeps reads from
// other goroutines consistent.
type Store struct {
	mu            sync.RWMutex
	notifications []*model.Notification
	index         map[model.ID]int // id -> slice index

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		notifications: make([]*model.Notification, 0),
		index:         make(map[model.ID]int),
	}
}

// Upsert replaces the record with n.ID in place, or appends n if the id is new.
// Every field, including Visible, is taken from n. It returns the previous
// record when one was replaced.
func (s *Store) Upsert(n *model.Notification) (prev *model.Notification, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := n.Clone()
	if idx, ok := s.index[n.ID]; ok {
		prev = s.notifications[idx]
		s.notifications[idx] = c
		s.notifyChange(ChangeEvent{Type: ChangeTypeReplace, ID: n.ID})
		return prev.Clone(), true
	}

	s.index[n.ID] = len(s.notifications)
	s.notifications = append(s.notifications, c)
	s.notifyChange(ChangeEvent{Type: ChangeTypeInsert, ID: n.ID})
	return nil, false
}

// Hide marks a visible record as hidden. It returns false when the id is
// unknown or the record is already hidden.
func (s *Store) Hide(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok || !s.notifications[idx].Visible {
		return false
	}

	// Replace rather than mutate so clones handed out earlier stay stable.
	c := s.notifications[idx].Clone()
	c.Visible = false
	s.notifications[idx] = c

	s.notifyChange(ChangeEvent{Type: ChangeTypeHide, ID: id})
	return true
}

// Get returns a copy of the record with the given id, or nil.
func (s *Store) Get(id model.ID) *model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.notifications[idx].Clone()
}

// IsVisible reports whether id exists and is currently visible.
func (s *Store) IsVisible(id model.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	return ok && s.notifications[idx].Visible
}

// All returns copies of every record in insertion order.
func (s *Store) All() []*model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Notification, len(s.notifications))
	for i, n := range s.notifications {
		result[i] = n.Clone()
	}
	return result
}

// Visible returns copies of the visible records in insertion order.
func (s *Store) Visible() []*model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.Visible {
			result = append(result, n.Clone())
		}
	}
	return result
}

// Count returns the total number of records, visible or not.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// VisibleCount returns the number of visible records.
func (s *Store) VisibleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.Visible {
			count++
		}
	}
	return count
}

// Subscribe returns a channel that receives change events.
// Events are dropped for subscribers that fall behind.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes all subscriber channels. The records remain readable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
