// Package park holds the client-side read model of the remote park: zones,
// guests and the session scalars, mutated only by applying server events.
package park

import "github.com/vovakirdan/parkpilot/internal/protocol"

// Zone and Guest are the wire types; the read model stores them as sent.
type (
	Zone            = protocol.Zone
	Guest           = protocol.Guest
	Bonuses         = protocol.Bonuses
	Difficulty      = protocol.Difficulty
	PrestigeUpgrade = protocol.PrestigeUpgrade
)

// Feature names the server puts in unlockedFeatures.
const (
	FeatureAutoRide   = "autoRide"
	FeatureSmartQueue = "smartQueue"
	FeatureNewZone    = "newZone"
)

// DefaultPrestigeRequirement applies until the server sends one.
const DefaultPrestigeRequirement = 10

// Scalars are the session-wide values that ride along with a snapshot.
type Scalars struct {
	Balance             float64
	Prestige            int
	PrestigePoints      int
	PrestigeRequirement float64
	PrestigeUpgrades    []PrestigeUpgrade
	CurrentUpgrades     map[string]int
	UnlockedFeatures    []string
	Bonuses             Bonuses
	Difficulty          Difficulty
	GameOver            bool
	GuestTimersFrozen   bool
}

// Unlocked reports whether a feature is in the unlocked set.
func (s Scalars) Unlocked(feature string) bool {
	for _, f := range s.UnlockedFeatures {
		if f == feature {
			return true
		}
	}
	return false
}

func (s Scalars) clone() Scalars {
	out := s
	out.PrestigeUpgrades = append([]PrestigeUpgrade(nil), s.PrestigeUpgrades...)
	out.UnlockedFeatures = append([]string(nil), s.UnlockedFeatures...)
	out.CurrentUpgrades = make(map[string]int, len(s.CurrentUpgrades))
	for k, v := range s.CurrentUpgrades {
		out.CurrentUpgrades[k] = v
	}
	return out
}

// NoticeKind classifies a user-visible notice produced by an event.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeError
)

// Effect describes what applying one event did.
type Effect struct {
	Changed bool       // zones, guests or scalars changed
	Notice  string     // user-visible message, empty when none
	Kind    NoticeKind // NoticeNone when Notice is empty
}
