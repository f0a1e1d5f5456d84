package dispatch

// Selection is the manual pick list for the focused zone.
type Selection struct {
	zone string
	ids  []string
}

// Zone returns the focused zone, empty when none.
func (s *Selection) Zone() string {
	return s.zone
}

// Focus switches the focused zone. Switching to another zone drops the
// current picks.
func (s *Selection) Focus(zoneID string) {
	if zoneID != s.zone {
		s.ids = nil
	}
	s.zone = zoneID
}

// Toggle adds or removes a guest. Only guests waiting in the focused zone's
// queue can be added; it reports whether the selection changed.
func (s *Selection) Toggle(p Park, guestID string) bool {
	for i, id := range s.ids {
		if id == guestID {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return true
		}
	}
	g, ok := p.Guest(guestID)
	if !ok || s.zone == "" || g.ZoneID != s.zone || g.InRide {
		return false
	}
	s.ids = append(s.ids, guestID)
	return true
}

// Prune drops guests that no longer exist.
func (s *Selection) Prune(p Park) {
	kept := s.ids[:0:0]
	for _, id := range s.ids {
		if p.HasGuest(id) {
			kept = append(kept, id)
		}
	}
	s.ids = kept
}

// Take returns the picks that still exist and clears the selection.
func (s *Selection) Take(p Park) []string {
	s.Prune(p)
	out := s.ids
	if out == nil {
		out = []string{}
	}
	s.ids = nil
	return out
}

// Clear drops every pick and keeps the focus.
func (s *Selection) Clear() {
	s.ids = nil
}

// IDs returns a copy of the picks in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of picks.
func (s *Selection) Len() int {
	return len(s.ids)
}
