package dispatch

import (
	"github.com/vovakirdan/parkpilot/internal/park"
	"github.com/vovakirdan/parkpilot/internal/protocol"
)

// Auto-start threshold bounds.
const (
	DefaultAutoStartThreshold = 5
	MinAutoStartThreshold     = 1
	MaxAutoStartThreshold     = 8
)

// AutoStart launches rides once enough guests are aboard. It needs the
// autoRide feature. A zone that was started stays pending until it runs,
// gets a countdown or loses riders, so store updates in between do not
// resend startRide.
type AutoStart struct {
	threshold int
	pending   map[string]int
}

// NewAutoStart creates the rule with a clamped threshold.
func NewAutoStart(threshold int) *AutoStart {
	a := &AutoStart{pending: make(map[string]int)}
	a.SetThreshold(threshold)
	return a
}

// Threshold returns the ride occupancy that triggers a start.
func (a *AutoStart) Threshold() int {
	return a.threshold
}

// SetThreshold clamps n into the allowed range.
func (a *AutoStart) SetThreshold(n int) {
	switch {
	case n < MinAutoStartThreshold:
		n = MinAutoStartThreshold
	case n > MaxAutoStartThreshold:
		n = MaxAutoStartThreshold
	}
	a.threshold = n
}

// Plan returns the startRide commands due now, in zone order.
func (a *AutoStart) Plan(p Park, timers Timers) []protocol.StartRide {
	if !p.Unlocked(park.FeatureAutoRide) {
		a.pending = make(map[string]int)
		return nil
	}

	var out []protocol.StartRide
	for _, zoneID := range p.ZoneIDs() {
		z, _ := p.Zone(zoneID)
		if z.IsRunning || timers.Active(zoneID) || z.RideCount < a.threshold {
			delete(a.pending, zoneID)
			continue
		}
		if last, ok := a.pending[zoneID]; ok && z.RideCount >= last {
			continue
		}
		a.pending[zoneID] = z.RideCount
		out = append(out, startRide(p, zoneID))
	}
	return out
}

// Reset forgets pending starts.
func (a *AutoStart) Reset() {
	a.pending = make(map[string]int)
}
