package view

import "sync"

// Supersede hands out increasing request tokens per render target so that a
// response is applied only if no newer request for the same target started.
type Supersede struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// Begin records a new request for target and returns its token.
func (s *Supersede) Begin(target string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = make(map[string]uint64)
	}
	s.latest[target]++
	return s.latest[target]
}

// IsCurrent reports whether token is still the latest request for target.
func (s *Supersede) IsCurrent(target string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[target] == token
}
