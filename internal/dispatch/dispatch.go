// Package dispatch decides which guests to send to which ride. It holds the
// manual selection, the smart queue with its per-zone dedup sets and the
// auto-start rule. Nothing here talks to the network: every decision is
// returned as a protocol command for the session to send.
package dispatch

import (
	"github.com/vovakirdan/parkpilot/internal/park"
	"github.com/vovakirdan/parkpilot/internal/protocol"
)

// Park is the read side of the store the engine inspects.
type Park interface {
	Zone(id string) (park.Zone, bool)
	HasGuest(id string) bool
	Guest(id string) (park.Guest, bool)
	ZoneIDs() []string
	GuestsInZone(zoneID string) []park.Guest
	Riders(zoneID string) []string
	Unlocked(feature string) bool
}

// Timers reports whether a local ride countdown exists for a zone.
type Timers interface {
	Active(zoneID string) bool
}

// Strategy labels where a batch came from.
type Strategy string

const (
	StrategyManual     Strategy = "manual"
	StrategySmartQueue Strategy = "smart_queue"
	StrategyAutoStart  Strategy = "auto_start"
)

// Batch is one addToRide the engine wants sent.
type Batch struct {
	ZoneID   string
	Guests   []string
	Value    float64 // sum of ticket prices
	Strategy Strategy
}

// Command converts the batch into its wire command.
func (b Batch) Command() protocol.AddToRide {
	return protocol.AddToRide{Guests: append([]string(nil), b.Guests...)}
}

// StartRide builds startRide for a zone with every guest currently riding.
func startRide(p Park, zoneID string) protocol.StartRide {
	return protocol.StartRide{ZoneID: zoneID, Guests: p.Riders(zoneID)}
}

func batchValue(p Park, ids []string) float64 {
	var total float64
	for _, id := range ids {
		if g, ok := p.Guest(id); ok {
			total += g.TicketPrice
		}
	}
	return total
}
