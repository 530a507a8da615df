package notifications

import (
	"sync"

	"ppf-ops-platform/internal/agent/gateway"
)

// MaxItems caps the locally cached notification window.
const MaxItems = 50

// Store is a bounded cache of the newest notifications plus an incrementally
// maintained unread counter. The counter is only authoritative for the cached
// window and is seeded by SetAll with the server's count.
type Store struct {
	mu        sync.Mutex
	items     []gateway.Notification
	unread    int
	connected bool
	panelOpen bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot is a point-in-time copy of the store's state.
type Snapshot struct {
	Notifications []gateway.Notification
	UnreadCount   int
	Connected     bool
	PanelOpen     bool
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]gateway.Notification, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Notifications: items,
		UnreadCount:   s.unread,
		Connected:     s.connected,
		PanelOpen:     s.panelOpen,
	}
}

// SetAll replaces the cache after a server fetch. unreadCount is the server's
// authoritative figure and is not recomputed from items.
func (s *Store) SetAll(items []gateway.Notification, unreadCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	s.items = make([]gateway.Notification, len(items))
	copy(s.items, items)
	s.unread = unreadCount
	if s.unread < 0 {
		s.unread = 0
	}
}

// Add prepends a freshly arrived notification, evicting the oldest past the
// cap. New arrivals count as unread; evicted unread items come back off the
// counter so it keeps matching the held window.
func (s *Store) Add(n gateway.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]gateway.Notification{n}, s.items...)
	s.unread++
	for len(s.items) > MaxItems {
		evicted := s.items[len(s.items)-1]
		s.items = s.items[:len(s.items)-1]
		if !evicted.Read && s.unread > 0 {
			s.unread--
		}
	}
}

// MarkRead flips one item to read, decrementing the counter only when the
// item was cached and unread.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if !s.items[i].Read {
			s.items[i].Read = true
			if s.unread > 0 {
				s.unread--
			}
		}
		return
	}
}

// MarkAllRead flips every cached item to read and zeroes the counter.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
}

// Remove drops one item, decrementing the counter if it was unread.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if !s.items[i].Read && s.unread > 0 {
			s.unread--
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return
	}
}

// SetConnected records whether the live feed connection is up.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}

// SetPanelOpen records whether the notification panel is showing.
func (s *Store) SetPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = open
}
