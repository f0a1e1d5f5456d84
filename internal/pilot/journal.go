package pilot

import "time"

// Ride journal events.
const (
	RideStarted = "started"
	RideEnded   = "ended"
)

// Journal records what the session did. It is optional and write-only; the
// session never reads it back.
type Journal interface {
	RecordDispatch(rec DispatchRecord) error
	RecordRide(rec RideRecord) error
}

// DispatchRecord describes one addToRide batch that was sent.
type DispatchRecord struct {
	SessionID string
	ZoneID    string
	Strategy  string
	Guests    int
	Value     float64
	At        time.Time
}

// RideRecord describes a ride start announced by the server or a local
// ride end.
type RideRecord struct {
	SessionID string
	ZoneID    string
	Event     string
	Seconds   int
	At        time.Time
}
