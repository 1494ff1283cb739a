package reportstore

import (
	"testing"
	"time"
)

func TestAddAndRecent(t *testing.T) {
	s := New(time.Hour)
	s.Add(Entry{BlockedURI: "a"})
	s.Add(Entry{BlockedURI: "b"})
	s.Add(Entry{BlockedURI: "c"})

	got := s.Recent()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"c", "b", "a"} {
		if got[i].BlockedURI != want {
			t.Errorf("Recent()[%d] = %q, want %q", i, got[i].BlockedURI, want)
		}
	}
}

func TestGenerationSwapDropsOldest(t *testing.T) {
	// A zero interval swaps on every Add, so only the current and previous
	// entries survive.
	s := New(0)
	s.Add(Entry{BlockedURI: "a"})
	s.Add(Entry{BlockedURI: "b"})
	s.Add(Entry{BlockedURI: "c"})

	got := s.Recent()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].BlockedURI != "c" || got[1].BlockedURI != "b" {
		t.Errorf("Recent() = [%q %q], want [c b]", got[0].BlockedURI, got[1].BlockedURI)
	}
}

func TestGenerationCap(t *testing.T) {
	s := New(time.Hour)
	for i := 0; i < maxPerGeneration+10; i++ {
		s.Add(Entry{BlockedURI: "x"})
	}
	if got := len(s.Recent()); got != maxPerGeneration {
		t.Errorf("len = %d, want %d", got, maxPerGeneration)
	}
}
