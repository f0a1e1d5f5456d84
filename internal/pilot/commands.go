package pilot

import (
	"github.com/vovakirdan/parkpilot/internal/dispatch"
	"github.com/vovakirdan/parkpilot/internal/park"
	"github.com/vovakirdan/parkpilot/internal/protocol"
)

// enqueue hands fn to the loop. Commands are fire-and-forget; when the
// queue is full the command is dropped.
func (s *Session) enqueue(name string, fn func()) {
	select {
	case s.cmds <- fn:
	default:
		s.logger.Warn("command queue full, dropping", "command", name)
	}
}

// SelectZone focuses a zone for manual dispatch.
func (s *Session) SelectZone(zoneID string) {
	s.enqueue("selectZone", func() { s.sel.Focus(zoneID) })
}

// ToggleGuest adds or removes a waiting guest of the focused zone.
func (s *Session) ToggleGuest(guestID string) {
	s.enqueue("toggleGuest", func() { s.sel.Toggle(s.store, guestID) })
}

// AddToRide sends the selection as one batch.
func (s *Session) AddToRide() {
	s.enqueue("addToRide", s.addToRide)
}

func (s *Session) addToRide() {
	if b, ok := dispatch.AddToRide(s.store, &s.sel, s.queue.Enabled()); ok {
		s.sendBatch(b)
	}
}

// StartRide starts a zone's ride with its current riders.
func (s *Session) StartRide(zoneID string) {
	s.enqueue("startRide", func() { s.startRide(zoneID) })
}

func (s *Session) startRide(zoneID string) {
	cmd, ok := dispatch.StartRide(s.store, s.timers, zoneID)
	if !ok {
		return
	}
	s.logger.Info("starting ride", "zone", zoneID, "riders", len(cmd.Guests), "strategy", dispatch.StrategyManual)
	s.send(cmd)
}

// SetSmartQueue switches the smart queue. Switching on is ignored until the
// smartQueue feature is unlocked.
func (s *Session) SetSmartQueue(on bool) {
	s.enqueue("setSmartQueue", func() { s.setSmartQueue(on) })
}

func (s *Session) setSmartQueue(on bool) {
	if !on {
		s.cfg.SmartQueue = false
	}
	if got := s.queue.SetEnabled(s.store, on); got != on {
		s.logger.Debug("smart queue locked")
	}
}

// SetAutoStartThreshold changes the ride occupancy that triggers auto-start.
func (s *Session) SetAutoStartThreshold(n int) {
	s.enqueue("setAutoStartThreshold", func() {
		s.auto.SetThreshold(n)
		s.autoStart()
	})
}

// ApplyGlobalUpgrade buys a park-wide upgrade.
func (s *Session) ApplyGlobalUpgrade(upgradeType string) {
	s.enqueue("globalUpgrade", func() { s.applyGlobalUpgrade(upgradeType) })
}

func (s *Session) applyGlobalUpgrade(upgradeType string) {
	if upgradeType == park.UpgradeFreezeGuestTimer {
		s.store.FreezeGuestTimers()
	}
	s.send(protocol.GlobalUpgrade{UpgradeType: upgradeType})
}

// ApplyZoneUpgrade buys an upgrade for one zone.
func (s *Session) ApplyZoneUpgrade(zoneID, upgradeType string) {
	s.enqueue("zoneUpgrade", func() {
		s.send(protocol.ZoneUpgrade{ZoneID: zoneID, UpgradeType: upgradeType})
	})
}

// PurchasePrestigeUpgrade spends prestige points on an upgrade.
func (s *Session) PurchasePrestigeUpgrade(upgradeID string) {
	s.enqueue("purchasePrestigeUpgrade", func() {
		s.send(protocol.PurchasePrestigeUpgrade{UpgradeID: upgradeID})
	})
}

// PrestigeReset trades the current run for prestige.
func (s *Session) PrestigeReset() {
	s.enqueue("prestigeReset", func() { s.send(protocol.PrestigeReset{}) })
}

// Restart asks for a new run and forgets all local state.
func (s *Session) Restart() {
	s.enqueue("restart", s.restart)
}

func (s *Session) restart() {
	s.send(protocol.Restart{})
	s.resetLocal()
}
