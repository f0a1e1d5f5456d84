package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/parkpilot/internal/pilot"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "journal.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestOpenTwiceKeepsRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveRide(Ride{SessionID: "s", ZoneID: "1", Event: pilot.RideStarted, Seconds: 4}); err != nil {
		t.Fatalf("SaveRide() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()
	rides, err := store.RecentRides(10)
	if err != nil || len(rides) != 1 {
		t.Errorf("RecentRides() = %v, %v; migration should not drop rows", rides, err)
	}
}

func TestRecentDispatchesNewestFirst(t *testing.T) {
	store := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, zone := range []string{"1", "2", "1"} {
		_, err := store.SaveDispatch(Dispatch{
			SessionID: "sess",
			ZoneID:    zone,
			Strategy:  "smart_queue",
			Guests:    i + 1,
			Value:     float64(10 * (i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveDispatch() failed: %v", err)
		}
	}

	got, err := store.RecentDispatches(2)
	if err != nil {
		t.Fatalf("RecentDispatches() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 dispatches, got %d", len(got))
	}
	if got[0].Guests != 3 || got[1].Guests != 2 {
		t.Errorf("Expected newest first, got %+v", got)
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, base.Add(2*time.Minute))
	}
}

func TestAllZoneStats(t *testing.T) {
	store := openTemp(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	journal := pilot.Journal(store)
	records := []pilot.DispatchRecord{
		{SessionID: "s", ZoneID: "1", Strategy: "manual", Guests: 2, Value: 80, At: at},
		{SessionID: "s", ZoneID: "1", Strategy: "smart_queue", Guests: 1, Value: 5, At: at},
		{SessionID: "s", ZoneID: "2", Strategy: "smart_queue", Guests: 3, Value: 90, At: at},
	}
	for _, rec := range records {
		if err := journal.RecordDispatch(rec); err != nil {
			t.Fatalf("RecordDispatch() failed: %v", err)
		}
	}
	rides := []pilot.RideRecord{
		{SessionID: "s", ZoneID: "1", Event: pilot.RideStarted, Seconds: 4, At: at},
		{SessionID: "s", ZoneID: "1", Event: pilot.RideEnded, At: at.Add(4 * time.Second)},
		{SessionID: "s", ZoneID: "1", Event: pilot.RideStarted, Seconds: 6, At: at.Add(time.Minute)},
		{SessionID: "s", ZoneID: "3", Event: pilot.RideStarted, Seconds: 2, At: at},
	}
	for _, rec := range rides {
		if err := journal.RecordRide(rec); err != nil {
			t.Fatalf("RecordRide() failed: %v", err)
		}
	}

	stats, err := store.AllZoneStats()
	if err != nil {
		t.Fatalf("AllZoneStats() failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("Expected 3 zones, got %+v", stats)
	}

	z1 := stats[0]
	if z1.ZoneID != "1" || z1.Batches != 2 || z1.GuestsSent != 3 || z1.TicketValue != 85 {
		t.Errorf("zone 1 dispatch stats = %+v", z1)
	}
	if z1.RidesStarted != 2 || z1.RidesEnded != 1 || z1.AvgRideSeconds != 5 {
		t.Errorf("zone 1 ride stats = %+v", z1)
	}
	if !z1.LastActivity.Equal(at.Add(time.Minute)) {
		t.Errorf("zone 1 LastActivity = %v", z1.LastActivity)
	}
	if stats[1].ZoneID != "2" || stats[1].RidesStarted != 0 || stats[1].Batches != 1 {
		t.Errorf("zone 2 stats = %+v", stats[1])
	}
	if stats[2].ZoneID != "3" || stats[2].Batches != 0 || stats[2].RidesStarted != 1 {
		t.Errorf("zone 3 stats = %+v", stats[2])
	}
}

func TestEmptyJournal(t *testing.T) {
	store := openTemp(t)

	stats, err := store.AllZoneStats()
	if err != nil || len(stats) != 0 {
		t.Errorf("AllZoneStats() on empty journal = %v, %v", stats, err)
	}
	dispatches, err := store.RecentDispatches(0)
	if err != nil || len(dispatches) != 0 {
		t.Errorf("RecentDispatches() on empty journal = %v, %v", dispatches, err)
	}
}
