package park

import "time"

// Notice is a user-visible message raised by a server event.
type Notice struct {
	Seq  uint64
	At   time.Time
	Kind NoticeKind
	Text string
}

// ZoneView is one zone as presentation sees it.
type ZoneView struct {
	Zone
	Remaining int     // seconds left on the local ride timer, 0 when idle
	Locked    bool    // zone "3" until newZone is unlocked
	Queue     []Guest // waiting guests, ordered by id
	Riders    []Guest // guests in the ride, ordered by id
}

// Overlay is the session-owned state merged into a View on top of the store.
type Overlay struct {
	Remaining          map[string]int
	FocusedZone        string
	Selection          []string
	SmartQueue         bool
	AutoStartThreshold int
	Connected          bool
	Notices            []Notice
}

// View is an immutable, self-contained copy of the read model. It shares no
// memory with the Store and may be read from any goroutine.
type View struct {
	Zones              []ZoneView
	Scalars            Scalars
	FocusedZone        string
	Selection          []string
	SmartQueue         bool
	AutoStartThreshold int
	Connected          bool
	Notices            []Notice
}

// View derives a fresh View from the store and the overlay.
func (s *Store) View(o Overlay) *View {
	v := &View{
		Scalars:            s.scalars.clone(),
		FocusedZone:        o.FocusedZone,
		Selection:          append([]string(nil), o.Selection...),
		SmartQueue:         o.SmartQueue,
		AutoStartThreshold: o.AutoStartThreshold,
		Connected:          o.Connected,
		Notices:            append([]Notice(nil), o.Notices...),
	}

	newZone := s.scalars.Unlocked(FeatureNewZone)
	for _, id := range s.ZoneIDs() {
		zv := ZoneView{
			Zone:      s.zones[id],
			Remaining: o.Remaining[id],
			Locked:    id == "3" && !newZone,
		}
		for _, g := range s.byZone[id] {
			if g.InRide {
				zv.Riders = append(zv.Riders, g)
			} else {
				zv.Queue = append(zv.Queue, g)
			}
		}
		v.Zones = append(v.Zones, zv)
	}
	return v
}

// Zone looks up a zone by id.
func (v *View) Zone(id string) (ZoneView, bool) {
	for _, z := range v.Zones {
		if z.ZoneID == id {
			return z, true
		}
	}
	return ZoneView{}, false
}

// GuestsByZone returns riders followed by the queue for a zone.
func (v *View) GuestsByZone(id string) []Guest {
	z, ok := v.Zone(id)
	if !ok {
		return nil
	}
	out := make([]Guest, 0, len(z.Riders)+len(z.Queue))
	out = append(out, z.Riders...)
	return append(out, z.Queue...)
}

// RemainingFor returns the local countdown for a zone, 0 when none runs.
func (v *View) RemainingFor(id string) int {
	z, ok := v.Zone(id)
	if !ok {
		return 0
	}
	return z.Remaining
}

// Selected reports whether a guest is in the manual selection.
func (v *View) Selected(guestID string) bool {
	for _, id := range v.Selection {
		if id == guestID {
			return true
		}
	}
	return false
}
