package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing change-event sequence IDs.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer whose first Next returns start+1.
// On a fresh outbox start is 0; on restart it is the outbox's last seq.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence ID.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset moves the sequencer to v. Only used while recovering the
// outbox; it must never move backwards over issued IDs.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
