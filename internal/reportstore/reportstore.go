// Package reportstore keeps a bounded in-memory window of recent CSP
// violation reports for the viewer endpoint. Two generations are kept; the
// older one is dropped when the swap interval has passed, so the window
// covers between one and two intervals.
package reportstore

import (
	"sync"
	"time"
)

const maxPerGeneration = 512

type Store struct {
	mu           sync.RWMutex
	swapInterval time.Duration
	generations  [2][]Entry
	lastSwap     time.Time
}

type Entry struct {
	Received           time.Time
	DocumentURI        string
	ViolatedDirective  string
	EffectiveDirective string
	BlockedURI         string
	SourceFile         string
	LineNumber         int
}

func New(swapInterval time.Duration) *Store {
	return &Store{swapInterval: swapInterval}
}

func (s *Store) Add(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.lastSwap) > s.swapInterval {
		s.generations[1] = s.generations[0]
		s.generations[0] = nil
		s.lastSwap = time.Now()
	}
	if len(s.generations[0]) >= maxPerGeneration {
		return
	}
	s.generations[0] = append(s.generations[0], e)
}

// Recent returns the stored reports, newest first.
func (s *Store) Recent() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.generations[0])+len(s.generations[1]))
	for i := len(s.generations[0]) - 1; i >= 0; i-- {
		entries = append(entries, s.generations[0][i])
	}
	for i := len(s.generations[1]) - 1; i >= 0; i-- {
		entries = append(entries, s.generations[1][i])
	}
	return entries
}
