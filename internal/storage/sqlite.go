// Package storage provides the SQLite ride journal: one row per dispatched
// batch and per ride start or end. It is write-only analytics for
// `parkpilot history`; the session never reads it back.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/parkpilot/internal/pilot"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for the journal.
type Store struct {
	db *sql.DB
}

// Dispatch is one addToRide batch.
type Dispatch struct {
	ID        int64
	SessionID string
	ZoneID    string
	Strategy  string
	Guests    int
	Value     float64
	CreatedAt time.Time
}

// Ride is a ride start announced by the server or a local ride end.
type Ride struct {
	ID        int64
	SessionID string
	ZoneID    string
	Event     string // "started" or "ended"
	Seconds   int
	CreatedAt time.Time
}

// ZoneStats aggregates the journal for one zone.
type ZoneStats struct {
	ZoneID         string
	Batches        int
	GuestsSent     int
	TicketValue    float64
	RidesStarted   int
	RidesEnded     int
	AvgRideSeconds float64
	LastActivity   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS dispatches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			zone_id TEXT NOT NULL,
			strategy TEXT NOT NULL,
			guests INTEGER NOT NULL DEFAULT 0,
			ticket_value REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_dispatches_zone ON dispatches(zone_id);
		CREATE INDEX IF NOT EXISTS idx_dispatches_session ON dispatches(session_id);

		CREATE TABLE IF NOT EXISTS rides (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			zone_id TEXT NOT NULL,
			event TEXT NOT NULL,
			seconds INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_rides_zone ON rides(zone_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveDispatch records a batch and returns its row id.
func (s *Store) SaveDispatch(d Dispatch) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO dispatches (session_id, zone_id, strategy, guests, ticket_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.SessionID, d.ZoneID, d.Strategy, d.Guests, d.Value, formatTime(d.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save dispatch: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// SaveRide records a ride event and returns its row id.
func (s *Store) SaveRide(r Ride) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO rides (session_id, zone_id, event, seconds, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.SessionID, r.ZoneID, r.Event, r.Seconds, formatTime(r.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save ride: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentDispatches retrieves the newest batches first.
func (s *Store) RecentDispatches(limit int) ([]Dispatch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, zone_id, strategy, guests, ticket_value, created_at
		 FROM dispatches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query dispatches: %w", err)
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var d Dispatch
		var createdAt any
		if err := rows.Scan(&d.ID, &d.SessionID, &d.ZoneID, &d.Strategy, &d.Guests, &d.Value, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		d.CreatedAt = parseTime(createdAt)
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// RecentRides retrieves the newest ride events first.
func (s *Store) RecentRides(limit int) ([]Ride, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, zone_id, event, seconds, created_at
		 FROM rides
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query rides: %w", err)
	}
	defer rows.Close()

	var out []Ride
	for rows.Next() {
		var r Ride
		var createdAt any
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ZoneID, &r.Event, &r.Seconds, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// AllZoneStats aggregates dispatches and rides per zone, ordered by zone id.
func (s *Store) AllZoneStats() ([]ZoneStats, error) {
	byZone := make(map[string]*ZoneStats)
	stat := func(zoneID string) *ZoneStats {
		if st, ok := byZone[zoneID]; ok {
			return st
		}
		st := &ZoneStats{ZoneID: zoneID}
		byZone[zoneID] = st
		return st
	}

	rows, err := s.db.Query(
		`SELECT zone_id, COUNT(*), COALESCE(SUM(guests), 0), COALESCE(SUM(ticket_value), 0), MAX(created_at)
		 FROM dispatches
		 GROUP BY zone_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query dispatch stats: %w", err)
	}
	for rows.Next() {
		var zoneID string
		var batches, guests int
		var value float64
		var last any
		if err := rows.Scan(&zoneID, &batches, &guests, &value, &last); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		st := stat(zoneID)
		st.Batches = batches
		st.GuestsSent = guests
		st.TicketValue = value
		st.touch(parseTime(last))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	rows.Close()

	rows, err = s.db.Query(
		`SELECT zone_id,
		        SUM(CASE WHEN event = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN event = ? THEN 1 ELSE 0 END),
		        COALESCE(AVG(CASE WHEN event = ? THEN seconds END), 0),
		        MAX(created_at)
		 FROM rides
		 GROUP BY zone_id`,
		pilot.RideStarted, pilot.RideEnded, pilot.RideStarted,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ride stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var zoneID string
		var started, ended int
		var avg float64
		var last any
		if err := rows.Scan(&zoneID, &started, &ended, &avg, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		st := stat(zoneID)
		st.RidesStarted = started
		st.RidesEnded = ended
		st.AvgRideSeconds = avg
		st.touch(parseTime(last))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	out := make([]ZoneStats, 0, len(byZone))
	for _, st := range byZone {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZoneID < out[j].ZoneID })
	return out, nil
}

// RecordDispatch implements pilot.Journal.
func (s *Store) RecordDispatch(rec pilot.DispatchRecord) error {
	_, err := s.SaveDispatch(Dispatch{
		SessionID: rec.SessionID,
		ZoneID:    rec.ZoneID,
		Strategy:  rec.Strategy,
		Guests:    rec.Guests,
		Value:     rec.Value,
		CreatedAt: rec.At,
	})
	return err
}

// RecordRide implements pilot.Journal.
func (s *Store) RecordRide(rec pilot.RideRecord) error {
	_, err := s.SaveRide(Ride{
		SessionID: rec.SessionID,
		ZoneID:    rec.ZoneID,
		Event:     rec.Event,
		Seconds:   rec.Seconds,
		CreatedAt: rec.At,
	})
	return err
}

// Ensure Store implements pilot.Journal
var _ pilot.Journal = (*Store)(nil)

func (st *ZoneStats) touch(t time.Time) {
	if t.After(st.LastActivity) {
		st.LastActivity = t
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string, depending on how the driver
// returns the column.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{timeLayout, time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(t))
	}
	return time.Time{}
}
