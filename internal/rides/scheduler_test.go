package rides

import (
	"reflect"
	"testing"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    int
	}{
		{"whole", 5, 5},
		{"fraction rounds up", 2.1, 3},
		{"zero clamps", 0, 1},
		{"negative clamps", -4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ticks(tt.seconds); got != tt.want {
				t.Errorf("Ticks(%v) = %d, want %d", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestTimerExpiresAfterExactlyDTicks(t *testing.T) {
	for _, d := range []int{1, 2, 5, 12} {
		s := New()
		s.Start("1", float64(d))

		decrements := 0
		emitted := 0
		for i := 0; i < d+5; i++ {
			wasActive := s.Active("1")
			expired := s.Tick()
			if wasActive {
				decrements++
			}
			emitted += len(expired)
			if len(expired) > 0 && decrements != d {
				t.Fatalf("D=%d: expired after %d ticks", d, decrements)
			}
		}
		if emitted != 1 {
			t.Errorf("D=%d: ride ended emitted %d times, want 1", d, emitted)
		}
		if s.Len() != 0 {
			t.Errorf("D=%d: timer not removed", d)
		}
	}
}

func TestRemainingCountsDown(t *testing.T) {
	s := New()
	s.Start("2", 3)

	for _, want := range []int{3, 2, 1} {
		if got := s.Remaining("2"); got != want {
			t.Fatalf("Remaining() = %d, want %d", got, want)
		}
		s.Tick()
	}
	if s.Remaining("2") != 0 || s.Active("2") {
		t.Error("expired zone should report idle")
	}
}

func TestStartReplacesExistingTimer(t *testing.T) {
	s := New()
	s.Start("1", 10)
	s.Tick()
	s.Start("1", 2)

	if got := s.Remaining("1"); got != 2 {
		t.Fatalf("Remaining() = %d after restart, want 2", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want one timer per zone", s.Len())
	}
	s.Tick()
	if got := s.Tick(); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("Tick() = %v, want [1]", got)
	}
}

func TestTickReportsZonesInOrder(t *testing.T) {
	s := New()
	s.Start("3", 1)
	s.Start("1", 1)
	s.Start("2", 4)

	if got := s.Tick(); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("Tick() = %v, want [1 3]", got)
	}
	if snap := s.Snapshot(); !reflect.DeepEqual(snap, map[string]int{"2": 3}) {
		t.Errorf("Snapshot() = %v", snap)
	}

	s.Reset()
	if s.Len() != 0 || len(s.Tick()) != 0 {
		t.Error("Reset() should abandon every timer")
	}
}
