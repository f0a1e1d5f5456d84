package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Zone is a ride station as the server describes it.
type Zone struct {
	ZoneID        string  `json:"zoneId"`
	ZoneName      string  `json:"zoneName"`
	RideCapacity  int     `json:"rideCapacity"`
	QueueCount    int     `json:"queueCount"`
	QueueCapacity int     `json:"queueCapacity"`
	IsRunning     bool    `json:"isRunning"`
	RideCount     int     `json:"rideCount"`
	RideTime      float64 `json:"rideTime"`   // seconds
	Multiplier    float64 `json:"multiplier"` // per-guest price multiplier, 0 when absent
}

// FreeSlots returns how many more guests fit on the ride.
func (z Zone) FreeSlots() int {
	if free := z.RideCapacity - z.RideCount; free > 0 {
		return free
	}
	return 0
}

// Guest is a queueing or riding actor.
type Guest struct {
	ID                string  `json:"id"`
	TimeToFrustration float64 `json:"timeToFrustration"`
	ZoneID            string  `json:"zoneId"`
	InRide            bool    `json:"inRide"`
	Type              string  `json:"type"`
	TicketPrice       float64 `json:"ticketPrice"`
}

// Bonuses are the prestige-derived modifiers.
type Bonuses struct {
	MoneyMultiplier    float64 `json:"moneyMultiplier"`
	GuestPatienceBonus float64 `json:"guestPatienceBonus"`
	UpgradeDiscount    float64 `json:"upgradeDiscount"`
}

// Difficulty holds the multipliers that grow with prestige level.
type Difficulty struct {
	FrustrationSpeedMultiplier float64 `json:"frustrationSpeedMultiplier"`
	LeavingPenaltyMultiplier   float64 `json:"leavingPenaltyMultiplier"`
	UpgradeCostMultiplier      float64 `json:"upgradeCostMultiplier"`
}

// PrestigeUpgrade is one entry of the server's prestige catalog.
type PrestigeUpgrade struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	MaxLevel    int    `json:"maxLevel"`
}

// Milestone names the milestone reached in a milestoneUnlocked event.
type Milestone struct {
	Name string `json:"name"`
}

// Amount is a number the server may send either as a JSON number or as a
// numeric string (balance is one of those).
type Amount float64

// UnmarshalJSON accepts 12, 12.5, "12.5" and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*a = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			*a = 0
			return nil
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}
