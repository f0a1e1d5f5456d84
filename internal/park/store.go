package park

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/parkpilot/internal/protocol"
)

// Store is the mirrored park state. It is not safe for concurrent use; the
// session loop is its only writer and readers get immutable Views.
type Store struct {
	zones   map[string]Zone
	guests  map[string]Guest
	byZone  map[string][]Guest
	scalars Scalars
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset drops everything, as a fresh page load would.
func (s *Store) Reset() {
	s.zones = make(map[string]Zone)
	s.guests = make(map[string]Guest)
	s.byZone = make(map[string][]Guest)
	s.scalars = Scalars{
		PrestigeRequirement: DefaultPrestigeRequirement,
		CurrentUpgrades:     make(map[string]int),
	}
}

// ApplySnapshot replaces zones, guests and scalars wholesale.
func (s *Store) ApplySnapshot(pd protocol.ParkData) {
	zones := make(map[string]Zone, len(pd.Zones))
	for key, z := range pd.Zones {
		if z.ZoneID == "" {
			z.ZoneID = key
		}
		zones[z.ZoneID] = z
	}
	guests := make(map[string]Guest, len(pd.Guests))
	for key, g := range pd.Guests {
		if g.ID == "" {
			g.ID = key
		}
		guests[g.ID] = g
	}
	s.zones = zones
	s.guests = guests

	sc := s.scalars
	sc.Balance = float64(pd.Balance)
	sc.Prestige = pd.Prestige
	sc.PrestigePoints = pd.PrestigePoints
	sc.PrestigeUpgrades = append([]PrestigeUpgrade(nil), pd.PrestigeUpgrades...)
	sc.CurrentUpgrades = copyLevels(pd.CurrentUpgrades)
	sc.UnlockedFeatures = appendUnique(nil, pd.UnlockedFeatures...)
	sc.Bonuses = Bonuses{}
	if pd.Bonuses != nil {
		sc.Bonuses = *pd.Bonuses
	}
	if pd.Difficulty != nil {
		sc.Difficulty = *pd.Difficulty
	}
	if pd.PrestigeRequirement != nil {
		sc.PrestigeRequirement = *pd.PrestigeRequirement
	}
	s.scalars = sc

	s.reindex()
}

// ApplyDelta applies one targeted event. Tags the store does not own, and
// unknown tags, leave it untouched.
func (s *Store) ApplyDelta(ev protocol.Event) Effect {
	switch e := ev.(type) {
	case protocol.ParkData:
		s.ApplySnapshot(e)
		return Effect{Changed: true}

	case protocol.PrestigeSystemData:
		s.scalars.PrestigeUpgrades = append([]PrestigeUpgrade(nil), e.PrestigeUpgrades...)
		s.scalars.CurrentUpgrades = copyLevels(e.CurrentUpgrades)
		s.scalars.PrestigePoints = e.PrestigePoints
		if e.Bonuses != nil {
			s.scalars.Bonuses = *e.Bonuses
		}
		if e.Difficulty != nil {
			s.scalars.Difficulty = *e.Difficulty
		}
		if e.PrestigeRequirement != nil && *e.PrestigeRequirement != 0 {
			s.scalars.PrestigeRequirement = *e.PrestigeRequirement
		}
		return Effect{Changed: true}

	case protocol.PrestigeUpgradePurchased:
		levels := copyLevels(s.scalars.CurrentUpgrades)
		levels[e.UpgradeID] = e.NewLevel
		s.scalars.CurrentUpgrades = levels
		s.scalars.PrestigePoints = e.PrestigePoints
		if e.Bonuses != nil {
			s.scalars.Bonuses = *e.Bonuses
		}
		if e.Difficulty != nil {
			s.scalars.Difficulty = *e.Difficulty
		}
		return info(true, fmt.Sprintf("Upgraded %s!", e.UpgradeID))

	case protocol.GameOver:
		s.scalars.GameOver = true
		return Effect{Changed: true}

	case protocol.UnfreezeGuestTimers:
		s.scalars.GuestTimersFrozen = false
		return Effect{Changed: true}

	case protocol.MilestoneUnlocked:
		s.scalars.UnlockedFeatures = appendUnique(s.scalars.UnlockedFeatures, e.NewFeatures...)
		return info(true, fmt.Sprintf("Milestone Unlocked: %s!", e.Milestone.Name))

	case protocol.GuestLeft:
		return info(false, e.Message)

	case protocol.PrestigeCompleted:
		if e.Difficulty != nil {
			s.scalars.Difficulty = *e.Difficulty
		}
		return info(e.Difficulty != nil, e.Message)

	case protocol.PrestigeError:
		return Effect{Notice: e.Message, Kind: NoticeError}

	case protocol.UpgradeError:
		return Effect{Notice: e.Message, Kind: NoticeError}
	}

	// rideRunning belongs to the timer scheduler; Unknown is ignored.
	return Effect{}
}

// FreezeGuestTimers marks guest patience as frozen until the server sends
// unfreezeGuestTimers. Set locally when the freeze upgrade is bought.
func (s *Store) FreezeGuestTimers() {
	s.scalars.GuestTimersFrozen = true
}

// Zone returns a zone by id.
func (s *Store) Zone(id string) (Zone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Guest returns a guest by id.
func (s *Store) Guest(id string) (Guest, bool) {
	g, ok := s.guests[id]
	return g, ok
}

// HasGuest reports whether the guest exists.
func (s *Store) HasGuest(id string) bool {
	_, ok := s.guests[id]
	return ok
}

// ZoneIDs returns zone ids in ascending order.
func (s *Store) ZoneIDs() []string {
	ids := make([]string, 0, len(s.zones))
	for id := range s.zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GuestsInZone returns the zone's guests ordered by id. The slice is shared
// with the index; callers must not modify it.
func (s *Store) GuestsInZone(zoneID string) []Guest {
	return s.byZone[zoneID]
}

// Riders returns the ids of the zone's guests that are in the ride.
func (s *Store) Riders(zoneID string) []string {
	var ids []string
	for _, g := range s.byZone[zoneID] {
		if g.InRide {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// Scalars returns a copy of the session scalars.
func (s *Store) Scalars() Scalars {
	return s.scalars.clone()
}

// Unlocked reports whether a feature is unlocked.
func (s *Store) Unlocked(feature string) bool {
	return s.scalars.Unlocked(feature)
}

// GuestCount returns the number of mirrored guests.
func (s *Store) GuestCount() int {
	return len(s.guests)
}

// reindex rebuilds guests-by-zone from the guest map so the index can only
// ever reference guests that exist.
func (s *Store) reindex() {
	byZone := make(map[string][]Guest, len(s.zones))
	for _, g := range s.guests {
		byZone[g.ZoneID] = append(byZone[g.ZoneID], g)
	}
	for _, list := range byZone {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	s.byZone = byZone
}

func info(changed bool, msg string) Effect {
	if msg == "" {
		return Effect{Changed: changed}
	}
	return Effect{Changed: changed, Notice: msg, Kind: NoticeInfo}
}

func copyLevels(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	out := append([]string(nil), dst...)
	for _, v := range values {
		dup := false
		for _, have := range out {
			if have == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
