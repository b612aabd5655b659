package timeline

import (
	"sync"
	"time"
)

// Reflow returns a new timeline in which the measured durations replace the
// estimates of the named events and every start is recomputed in backbone
// order. The result depends only on tl and measured: a second call with the
// same mapping on the result yields an identical timeline. Unknown ids and
// negative durations are structural integrity errors; tl is never modified.
func Reflow(tl *Timeline, measured map[EventID]time.Duration) (*Timeline, error) {
	next := tl.clone()
	for id, d := range measured {
		i, ok := next.index[id]
		if !ok {
			return nil, integrity("reflow", "unknown event %s", id)
		}
		if d < 0 {
			return nil, integrity("reflow", "negative measured duration %v for %s", d, id)
		}
		ev := &next.events[i]
		ev.Measured = true
		if ev.Track == TrackVisual {
			ev.Base = d
		} else {
			ev.Duration = d
		}
	}
	if err := tl.schedule(next.events); err != nil {
		return nil, err
	}
	return next, nil
}

// Lock returns a copy of tl with the named events locked.
func Lock(tl *Timeline, ids ...EventID) (*Timeline, error) {
	next := tl.clone()
	for _, id := range ids {
		i, ok := next.index[id]
		if !ok {
			return nil, integrity("lock", "unknown event %s", id)
		}
		next.events[i].Locked = true
	}
	return next, nil
}

// LockThrough returns a copy of tl with every event that starts before at
// locked, and the number of events newly locked.
func LockThrough(tl *Timeline, at time.Duration) (*Timeline, int) {
	next := tl.clone()
	n := 0
	for i := range next.events {
		ev := &next.events[i]
		if ev.Start < at && !ev.Locked {
			ev.Locked = true
			n++
		}
	}
	return next, n
}

// Synchronizer is the single writer of a timeline. Re-flow and lock calls
// are serialized; readers take immutable snapshots.
type Synchronizer struct {
	mu      sync.Mutex
	current *Timeline
}

// NewSynchronizer wraps an initial timeline.
func NewSynchronizer(tl *Timeline) *Synchronizer {
	return &Synchronizer{current: tl}
}

// Snapshot returns the current timeline. It is never modified afterwards.
func (s *Synchronizer) Snapshot() *Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reflow applies measured durations to the current timeline. On error the
// current timeline is left unchanged.
func (s *Synchronizer) Reflow(measured map[EventID]time.Duration) (*Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reflow(s.current, measured)
	if err != nil {
		return nil, err
	}
	s.current = next
	return next, nil
}

// Lock marks events as rendered.
func (s *Synchronizer) Lock(ids ...EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Lock(s.current, ids...)
	if err != nil {
		return err
	}
	s.current = next
	return nil
}

// LockThrough marks every event starting before at as rendered and reports
// how many were newly locked.
func (s *Synchronizer) LockThrough(at time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, n := LockThrough(s.current, at)
	s.current = next
	return n
}
