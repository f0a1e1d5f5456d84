package protocol

// Inbound event tags.
const (
	TagParkData                 = "parkData"
	TagPrestigeSystemData       = "prestigeSystemData"
	TagPrestigeUpgradePurchased = "prestigeUpgradePurchased"
	TagRideRunning              = "rideRunning"
	TagGameOver                 = "gameOver"
	TagUnfreezeGuestTimers      = "unfreezeGuestTimers"
	TagMilestoneUnlocked        = "milestoneUnlocked"
	TagGuestLeft                = "guestLeft"
	TagPrestigeCompleted        = "prestigeCompleted"
	TagPrestigeError            = "prestigeError"
	TagUpgradeError             = "upgradeError"
)

// Event is a decoded inbound message. The set of implementations is closed;
// Unknown stands in for any tag this client does not understand.
type Event interface {
	Tag() string
	inboundEvent()
}

// ParkData is the full snapshot. Pointer fields are optional on the wire.
type ParkData struct {
	Zones               map[string]Zone   `json:"zones"`
	Guests              map[string]Guest  `json:"guests"`
	Balance             Amount            `json:"balance"`
	Prestige            int               `json:"prestige"`
	PrestigePoints      int               `json:"prestigePoints"`
	PrestigeUpgrades    []PrestigeUpgrade `json:"prestigeUpgrades"`
	CurrentUpgrades     map[string]int    `json:"currentUpgrades"`
	UnlockedFeatures    []string          `json:"unlockedFeatures"`
	Bonuses             *Bonuses          `json:"bonuses,omitempty"`
	Difficulty          *Difficulty       `json:"difficulty,omitempty"`
	PrestigeRequirement *float64          `json:"prestigeRequirement,omitempty"`
}

func (ParkData) Tag() string   { return TagParkData }
func (ParkData) inboundEvent() {}

// PrestigeSystemData refreshes the prestige catalog and progress.
type PrestigeSystemData struct {
	PrestigeUpgrades    []PrestigeUpgrade `json:"prestigeUpgrades"`
	CurrentUpgrades     map[string]int    `json:"currentUpgrades"`
	PrestigePoints      int               `json:"prestigePoints"`
	Bonuses             *Bonuses          `json:"bonuses,omitempty"`
	Difficulty          *Difficulty       `json:"difficulty,omitempty"`
	PrestigeRequirement *float64          `json:"prestigeRequirement,omitempty"`
}

func (PrestigeSystemData) Tag() string   { return TagPrestigeSystemData }
func (PrestigeSystemData) inboundEvent() {}

// PrestigeUpgradePurchased confirms a purchasePrestigeUpgrade command.
type PrestigeUpgradePurchased struct {
	UpgradeID      string      `json:"upgradeId"`
	NewLevel       int         `json:"newLevel"`
	PrestigePoints int         `json:"prestigePoints"`
	Bonuses        *Bonuses    `json:"bonuses,omitempty"`
	Difficulty     *Difficulty `json:"difficulty,omitempty"`
}

func (PrestigeUpgradePurchased) Tag() string   { return TagPrestigeUpgradePurchased }
func (PrestigeUpgradePurchased) inboundEvent() {}

// RideRunning announces that a zone's ride started.
type RideRunning struct {
	ZoneID          string  `json:"zoneId"`
	DurationSeconds float64 `json:"durationSeconds"`
}

func (RideRunning) Tag() string   { return TagRideRunning }
func (RideRunning) inboundEvent() {}

// GameOver ends the current run.
type GameOver struct{}

func (GameOver) Tag() string   { return TagGameOver }
func (GameOver) inboundEvent() {}

// UnfreezeGuestTimers ends a freezeGuestTimers upgrade.
type UnfreezeGuestTimers struct{}

func (UnfreezeGuestTimers) Tag() string   { return TagUnfreezeGuestTimers }
func (UnfreezeGuestTimers) inboundEvent() {}

// MilestoneUnlocked adds features to the unlocked set.
type MilestoneUnlocked struct {
	Milestone   Milestone `json:"milestone"`
	NewFeatures []string  `json:"newFeatures"`
}

func (MilestoneUnlocked) Tag() string   { return TagMilestoneUnlocked }
func (MilestoneUnlocked) inboundEvent() {}

// GuestLeft reports a frustrated guest leaving.
type GuestLeft struct {
	Message string `json:"message"`
}

func (GuestLeft) Tag() string   { return TagGuestLeft }
func (GuestLeft) inboundEvent() {}

// PrestigeCompleted confirms a prestigeReset command.
type PrestigeCompleted struct {
	Message    string      `json:"message"`
	Difficulty *Difficulty `json:"difficulty,omitempty"`
}

func (PrestigeCompleted) Tag() string   { return TagPrestigeCompleted }
func (PrestigeCompleted) inboundEvent() {}

// PrestigeError is a server-side rejection of a prestige command.
type PrestigeError struct {
	Message string `json:"message"`
}

func (PrestigeError) Tag() string   { return TagPrestigeError }
func (PrestigeError) inboundEvent() {}

// UpgradeError is a server-side rejection of an upgrade command.
type UpgradeError struct {
	Message string `json:"message"`
}

func (UpgradeError) Tag() string   { return TagUpgradeError }
func (UpgradeError) inboundEvent() {}

// Unknown carries a tag this client does not handle. It is never an error.
type Unknown struct {
	EventType string
}

func (u Unknown) Tag() string { return u.EventType }
func (Unknown) inboundEvent() {}
