package state

import "sync"

// Store publishes the latest View to readers on other goroutines.
type Store struct {
	mu   sync.RWMutex
	view View
}

// Update replaces the published view.
func (s *Store) Update(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// View returns a copy of the current view.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.view
	v.Heartbeat = s.view.Heartbeat.Clone()
	if s.view.Pending != nil {
		p := *s.view.Pending
		v.Pending = &p
	}
	if s.view.Feedback != nil {
		fb := *s.view.Feedback
		v.Feedback = &fb
	}
	return v
}
