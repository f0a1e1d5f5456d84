package protocol

import "encoding/json"

// Outbound command tags.
const (
	TagIdentify                = "identify"
	TagAddToRide               = "addToRide"
	TagStartRide               = "startRide"
	TagRideEnded               = "rideEnded"
	TagGlobalUpgrade           = "globalUpgrade"
	TagZoneUpgrade             = "zoneUpgrade"
	TagPurchasePrestigeUpgrade = "purchasePrestigeUpgrade"
	TagPrestigeReset           = "prestigeReset"
	TagRestart                 = "restart"
)

// Command is an outbound one-way notification to the server.
type Command interface {
	Tag() string
	payload() any
}

// Identify declares the client on connect.
type Identify struct {
	Client string
}

func (Identify) Tag() string    { return TagIdentify }
func (c Identify) payload() any { return identifyData{Client: c.Client} }

// AddToRide asks the server to move a batch of guests onto a ride.
type AddToRide struct {
	Guests []string
}

func (AddToRide) Tag() string    { return TagAddToRide }
func (c AddToRide) payload() any { return addToRideData{Guests: GuestBatch(c.Guests)} }

// StartRide asks the server to start a zone's ride with its riders.
type StartRide struct {
	ZoneID string
	Guests []string
}

func (StartRide) Tag() string { return TagStartRide }
func (c StartRide) payload() any {
	return startRideData{ZoneID: c.ZoneID, Guests: GuestBatch(c.Guests)}
}

// RideEnded reports a local timer expiry. Data is the bare zone id.
type RideEnded struct {
	ZoneID string
}

func (RideEnded) Tag() string    { return TagRideEnded }
func (c RideEnded) payload() any { return c.ZoneID }

// GlobalUpgrade buys a park-wide upgrade.
type GlobalUpgrade struct {
	UpgradeType string
}

func (GlobalUpgrade) Tag() string    { return TagGlobalUpgrade }
func (c GlobalUpgrade) payload() any { return globalUpgradeData{UpgradeType: c.UpgradeType} }

// ZoneUpgrade buys an upgrade for one zone.
type ZoneUpgrade struct {
	ZoneID      string
	UpgradeType string
}

func (ZoneUpgrade) Tag() string { return TagZoneUpgrade }
func (c ZoneUpgrade) payload() any {
	return zoneUpgradeData{ZoneID: c.ZoneID, UpgradeType: c.UpgradeType}
}

// PurchasePrestigeUpgrade spends prestige points.
type PurchasePrestigeUpgrade struct {
	UpgradeID string
}

func (PurchasePrestigeUpgrade) Tag() string { return TagPurchasePrestigeUpgrade }
func (c PurchasePrestigeUpgrade) payload() any {
	return purchasePrestigeUpgradeData{UpgradeID: c.UpgradeID}
}

// PrestigeReset trades the current run for prestige.
type PrestigeReset struct{}

func (PrestigeReset) Tag() string  { return TagPrestigeReset }
func (PrestigeReset) payload() any { return struct{}{} }

// Restart starts a new run after game over.
type Restart struct{}

func (Restart) Tag() string  { return TagRestart }
func (Restart) payload() any { return restartData{Restart: "restart"} }

type identifyData struct {
	Client string `json:"client"`
}

type addToRideData struct {
	Guests GuestBatch `json:"guests"`
}

type startRideData struct {
	ZoneID string     `json:"zoneId"`
	Guests GuestBatch `json:"guests"`
}

type globalUpgradeData struct {
	UpgradeType string `json:"upgradeType"`
}

type zoneUpgradeData struct {
	ZoneID      string `json:"zoneId"`
	UpgradeType string `json:"upgradeType"`
}

type purchasePrestigeUpgradeData struct {
	UpgradeID string `json:"upgradeId"`
}

type restartData struct {
	Restart string `json:"restart"`
}

// GuestBatch is a list of guest ids that travels as a JSON string holding a
// JSON array, e.g. "[\"g1\",\"g2\"]".
type GuestBatch []string

// MarshalJSON encodes the batch as a string. A nil batch is "[]".
func (b GuestBatch) MarshalJSON() ([]byte, error) {
	ids := []string(b)
	if ids == nil {
		ids = []string{}
	}
	inner, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// UnmarshalJSON accepts both the string form and a plain array.
func (b *GuestBatch) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(s)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*b = ids
	return nil
}
