package dispatch

import "github.com/vovakirdan/parkpilot/internal/protocol"

// AddToRide turns the selection into one batch for the focused zone. The
// selection is cleared whatever happens. Nothing is sent while the focused
// zone is running or while the smart queue owns dispatching.
func AddToRide(p Park, sel *Selection, smartQueue bool) (Batch, bool) {
	zoneID := sel.Zone()
	if smartQueue {
		sel.Clear()
		return Batch{}, false
	}
	if z, ok := p.Zone(zoneID); ok && z.IsRunning {
		sel.Clear()
		return Batch{}, false
	}
	ids := sel.Take(p)
	return Batch{
		ZoneID:   zoneID,
		Guests:   ids,
		Value:    batchValue(p, ids),
		Strategy: StrategyManual,
	}, true
}

// StartRide starts a zone's ride by hand. It is a silent no-op unless the
// zone exists, is idle, has riders and has no local countdown.
func StartRide(p Park, timers Timers, zoneID string) (protocol.StartRide, bool) {
	z, ok := p.Zone(zoneID)
	if !ok || z.IsRunning || z.RideCount <= 0 || timers.Active(zoneID) {
		return protocol.StartRide{}, false
	}
	return startRide(p, zoneID), true
}
