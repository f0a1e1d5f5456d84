package park

import "math"

// Upgrade is a purchasable park or zone improvement with its base price.
type Upgrade struct {
	Type     string
	BaseCost int
	Name     string
}

// Global upgrade types.
const (
	UpgradeMoneyMultiplier  = "moneyMultiplier"
	UpgradeExtendPatience   = "extendGuestTimersTemporary"
	UpgradeFreezeGuestTimer = "freezeGuestTimers"
)

// Zone upgrade types.
const (
	UpgradeReduceRideTime        = "reduceRideTime"
	UpgradeIncreaseQueueCapacity = "increaseQueueCapacity"
	UpgradeIncreaseRideCapacity  = "increaseRideCapacity"
)

// GlobalUpgrades is the park-wide catalog.
var GlobalUpgrades = []Upgrade{
	{Type: UpgradeMoneyMultiplier, BaseCost: 500, Name: "Money Multiplier (+0.2x)"},
	{Type: UpgradeExtendPatience, BaseCost: 250, Name: "+10s Guest Patience"},
	{Type: UpgradeFreezeGuestTimer, BaseCost: 100, Name: "Freeze Timers (5s)"},
}

// ZoneUpgrades is the per-zone catalog.
var ZoneUpgrades = []Upgrade{
	{Type: UpgradeReduceRideTime, BaseCost: 150, Name: "Faster (-2s)"},
	{Type: UpgradeIncreaseQueueCapacity, BaseCost: 300, Name: "Queue Slot"},
	{Type: UpgradeIncreaseRideCapacity, BaseCost: 350, Name: "Ride Slot"},
}

// Cost applies the prestige discount and the difficulty multiplier to a
// base price.
func (s Scalars) Cost(baseCost int) int {
	discount := 1 - s.Bonuses.UpgradeDiscount
	mult := s.Difficulty.UpgradeCostMultiplier
	if mult == 0 {
		mult = 1
	}
	return int(math.Floor(float64(baseCost) * discount * mult))
}

// CanAfford reports whether the balance covers an upgrade.
func (s Scalars) CanAfford(u Upgrade) bool {
	return s.Balance >= float64(s.Cost(u.BaseCost))
}

// PrestigeCost is the price of the next level of a prestige upgrade.
func PrestigeCost(u PrestigeUpgrade, currentLevel int) int {
	return u.Cost + currentLevel/3
}

// CanBuyPrestige reports whether the next level is affordable and not maxed.
func (s Scalars) CanBuyPrestige(u PrestigeUpgrade) bool {
	level := s.CurrentUpgrades[u.ID]
	return level < u.MaxLevel && s.PrestigePoints >= PrestigeCost(u, level)
}

// CanPrestige reports whether the balance meets the prestige requirement.
func (s Scalars) CanPrestige() bool {
	return s.Balance >= s.PrestigeRequirement
}

// LookupUpgrade finds an upgrade by type in a catalog.
func LookupUpgrade(catalog []Upgrade, upgradeType string) (Upgrade, bool) {
	for _, u := range catalog {
		if u.Type == upgradeType {
			return u, true
		}
	}
	return Upgrade{}, false
}
