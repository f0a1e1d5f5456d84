// Package rides keeps the local ride countdowns, one per running zone.
package rides

import (
	"math"
	"sort"
)

// Scheduler predicts when rides finish. It is driven by an external one
// second tick and is not safe for concurrent use.
type Scheduler struct {
	remaining map[string]int
}

// New creates an idle scheduler.
func New() *Scheduler {
	return &Scheduler{remaining: make(map[string]int)}
}

// Start (re)arms the countdown for a zone. The latest start always wins.
// Fractional seconds round up and non-positive durations count as one tick.
func (s *Scheduler) Start(zoneID string, seconds float64) {
	s.remaining[zoneID] = Ticks(seconds)
}

// Tick decrements every countdown by one and returns the zones that expired,
// in identifier order. Expired timers are removed before Tick returns, so a
// zone is reported once per Start.
func (s *Scheduler) Tick() []string {
	var expired []string
	for id, left := range s.remaining {
		left--
		if left <= 0 {
			delete(s.remaining, id)
			expired = append(expired, id)
			continue
		}
		s.remaining[id] = left
	}
	sort.Strings(expired)
	return expired
}

// Remaining returns the seconds left for a zone, 0 when it has no timer.
func (s *Scheduler) Remaining(zoneID string) int {
	return s.remaining[zoneID]
}

// Active reports whether a timer exists for the zone.
func (s *Scheduler) Active(zoneID string) bool {
	_, ok := s.remaining[zoneID]
	return ok
}

// Len returns the number of running countdowns.
func (s *Scheduler) Len() int {
	return len(s.remaining)
}

// Snapshot copies the current countdowns.
func (s *Scheduler) Snapshot() map[string]int {
	out := make(map[string]int, len(s.remaining))
	for id, left := range s.remaining {
		out[id] = left
	}
	return out
}

// Reset abandons all timers.
func (s *Scheduler) Reset() {
	s.remaining = make(map[string]int)
}

// Ticks converts a duration in seconds to whole countdown ticks.
func Ticks(seconds float64) int {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 1
	}
	if seconds > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(seconds))
}
