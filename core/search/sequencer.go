package search

import "sync"

// Ticket identifies one issued query.
type Ticket struct {
	Seq  uint64
	Term string
}

// Sequencer orders the queries of a single client so that a slow completion
// for an old term can be discarded once a newer term has been issued.
// The zero value is ready to use.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
}

// Next issues the ticket for a new query.
func (s *Sequencer) Next(term string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return Ticket{Seq: s.latest, Term: term}
}

// Observe records a client-assigned sequence number. Numbers at or below the
// latest seen are returned with ok=false and should not be processed.
func (s *Sequencer) Observe(seq uint64, term string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.latest {
		return Ticket{Seq: seq, Term: term}, false
	}
	s.latest = seq
	return Ticket{Seq: seq, Term: term}, true
}

// Deliver runs send only if t is still the most recent query, holding the
// same lock as Next and Observe so no newer ticket can be issued in between.
// It reports whether send ran.
func (s *Sequencer) Deliver(t Ticket, send func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Seq != s.latest {
		return false
	}
	send()
	return true
}
