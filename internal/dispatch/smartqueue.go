package dispatch

import (
	"sort"

	"github.com/vovakirdan/parkpilot/internal/park"
)

// SmartQueue fills idle rides with the best paying guests. Each zone keeps a
// set of guests already requested but not yet confirmed so fast ticks do not
// send the same guests again.
type SmartQueue struct {
	enabled bool
	sent    map[string]map[string]struct{}
}

// NewSmartQueue creates a disabled smart queue.
func NewSmartQueue() *SmartQueue {
	return &SmartQueue{sent: make(map[string]map[string]struct{})}
}

// Enabled reports whether the strategy is on.
func (q *SmartQueue) Enabled() bool {
	return q.enabled
}

// SetEnabled switches the strategy. It can only be turned on once the
// smartQueue feature is unlocked. Turning it off keeps the dedup sets; the
// next running transition clears them. Returns the resulting state.
func (q *SmartQueue) SetEnabled(p Park, on bool) bool {
	if on && !p.Unlocked(park.FeatureSmartQueue) {
		return q.enabled
	}
	q.enabled = on
	return q.enabled
}

// Reconcile brings the dedup sets in line with the store. Running or full
// zones lose their set; entries for guests that are gone, riding or moved
// to another zone are dropped.
func (q *SmartQueue) Reconcile(p Park) {
	for zoneID, set := range q.sent {
		z, ok := p.Zone(zoneID)
		if !ok || z.IsRunning || z.FreeSlots() == 0 {
			delete(q.sent, zoneID)
			continue
		}
		for id := range set {
			g, ok := p.Guest(id)
			if !ok || g.InRide || g.ZoneID != zoneID {
				delete(set, id)
			}
		}
		if len(set) == 0 {
			delete(q.sent, zoneID)
		}
	}
}

// Plan runs one smart-queue cycle and returns the batches to send, in zone
// order. Selected guests are recorded before Plan returns. A disabled queue
// plans nothing.
func (q *SmartQueue) Plan(p Park) []Batch {
	if !q.enabled {
		return nil
	}
	q.Reconcile(p)

	var out []Batch
	for _, zoneID := range p.ZoneIDs() {
		z, _ := p.Zone(zoneID)
		if z.IsRunning {
			continue
		}
		free := z.FreeSlots()
		if free == 0 {
			continue
		}

		picked := Candidates(p.GuestsInZone(zoneID), q.sent[zoneID], free)
		if len(picked) == 0 {
			continue
		}

		set := q.sent[zoneID]
		if set == nil {
			set = make(map[string]struct{}, len(picked))
			q.sent[zoneID] = set
		}
		b := Batch{ZoneID: zoneID, Strategy: StrategySmartQueue}
		for _, g := range picked {
			set[g.ID] = struct{}{}
			b.Guests = append(b.Guests, g.ID)
			b.Value += g.TicketPrice
		}
		out = append(out, b)
	}
	return out
}

// Pending returns the guests requested for a zone and not yet confirmed,
// ordered by id.
func (q *SmartQueue) Pending(zoneID string) []string {
	set := q.sent[zoneID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset forgets every dedup set and keeps the enabled flag.
func (q *SmartQueue) Reset() {
	q.sent = make(map[string]map[string]struct{})
}

// Candidates picks up to limit waiting guests that are not in skip, highest
// ticket price first. Equal prices fall back to guest id ascending.
func Candidates(guests []park.Guest, skip map[string]struct{}, limit int) []park.Guest {
	var pool []park.Guest
	for _, g := range guests {
		if g.InRide {
			continue
		}
		if _, dup := skip[g.ID]; dup {
			continue
		}
		pool = append(pool, g)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].TicketPrice != pool[j].TicketPrice {
			return pool[i].TicketPrice > pool[j].TicketPrice
		}
		return pool[i].ID < pool[j].ID
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
