package pilot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/parkpilot/internal/park"
	"github.com/vovakirdan/parkpilot/internal/protocol"
)

// fakeConn records writes. Reads block until Close.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) commands(t *testing.T) []protocol.Command {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.Command
	for _, raw := range c.writes {
		cmd, _, err := protocol.DecodeCommand(raw)
		if err != nil {
			t.Fatalf("client wrote an undecodable frame %s: %v", raw, err)
		}
		out = append(out, cmd)
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.writes = nil
	c.mu.Unlock()
}

type memJournal struct {
	dispatches []DispatchRecord
	rides      []RideRecord
}

func (j *memJournal) RecordDispatch(rec DispatchRecord) error {
	j.dispatches = append(j.dispatches, rec)
	return nil
}

func (j *memJournal) RecordRide(rec RideRecord) error {
	j.rides = append(j.rides, rec)
	return nil
}

func connected(t *testing.T, cfg Config, opts ...Option) (*Session, *fakeConn) {
	t.Helper()
	s := New(cfg, opts...)
	c := newFakeConn()
	s.conn = c
	s.connected = true
	return s, c
}

func frame(t *testing.T, tag string, data any) []byte {
	t.Helper()
	raw, err := protocol.EncodeEvent(tag, data, time.UnixMilli(1))
	if err != nil {
		t.Fatalf("EncodeEvent(%s): %v", tag, err)
	}
	return raw
}

func snapshot(features ...string) protocol.ParkData {
	return protocol.ParkData{
		Zones: map[string]park.Zone{
			"1": {ZoneID: "1", ZoneName: "Coaster", RideCapacity: 3, RideCount: 1},
		},
		Guests: map[string]park.Guest{
			"a": {ID: "a", ZoneID: "1", TicketPrice: 10},
			"b": {ID: "b", ZoneID: "1", TicketPrice: 50},
			"c": {ID: "c", ZoneID: "1", TicketPrice: 30},
			"d": {ID: "d", ZoneID: "1", TicketPrice: 5},
			"r": {ID: "r", ZoneID: "1", TicketPrice: 1, InRide: true},
		},
		Balance:          200,
		UnlockedFeatures: features,
	}
}

func TestRideTimerSendsRideEndedOnce(t *testing.T) {
	j := &memJournal{}
	s, c := connected(t, DefaultConfig(), WithJournal(j), WithSessionID("sess"))

	s.handleFrame(frame(t, protocol.TagRideRunning, protocol.RideRunning{ZoneID: "1", DurationSeconds: 2.5}))
	if s.timers.Remaining("1") != 3 {
		t.Fatalf("Remaining() = %d, want 3", s.timers.Remaining("1"))
	}

	for i := 0; i < 6; i++ {
		s.rideTick()
	}

	cmds := c.commands(t)
	if len(cmds) != 1 || !reflect.DeepEqual(cmds[0], protocol.RideEnded{ZoneID: "1"}) {
		t.Fatalf("commands = %+v, want exactly one rideEnded", cmds)
	}
	if len(j.rides) != 2 || j.rides[0].Event != RideStarted || j.rides[1].Event != RideEnded {
		t.Errorf("ride journal = %+v", j.rides)
	}
	if j.rides[0].SessionID != "sess" || j.rides[0].Seconds != 3 {
		t.Errorf("started record = %+v", j.rides[0])
	}
}

func TestSmartQueueCycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmartQueue = true
	j := &memJournal{}
	s, c := connected(t, cfg, WithJournal(j))

	s.handleFrame(frame(t, protocol.TagParkData, snapshot(park.FeatureSmartQueue)))
	if !s.queue.Enabled() {
		t.Fatal("armed smart queue should enable once unlocked")
	}

	s.queueCycle()
	s.queueCycle()

	cmds := c.commands(t)
	if len(cmds) != 2 {
		t.Fatalf("commands = %+v, want two batches", cmds)
	}
	if got := cmds[0].(protocol.AddToRide).Guests; !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("first batch = %v, want [b c]", got)
	}
	if got := cmds[1].(protocol.AddToRide).Guests; !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("second batch = %v, want [a d]", got)
	}
	if len(j.dispatches) != 2 || j.dispatches[0].Value != 80 || j.dispatches[0].Strategy != "smart_queue" {
		t.Errorf("dispatch journal = %+v", j.dispatches)
	}

	s.syncQueueTicker()
	if s.queueTick == nil {
		t.Fatal("queue ticker should run while enabled")
	}
	s.setSmartQueue(false)
	s.syncQueueTicker()
	if s.queueTick != nil {
		t.Error("queue ticker should stop when disabled")
	}
}

func TestSmartQueueStaysOffWhileLocked(t *testing.T) {
	s, c := connected(t, DefaultConfig())
	s.handleFrame(frame(t, protocol.TagParkData, snapshot()))

	s.setSmartQueue(true)
	s.queueCycle()
	if s.queue.Enabled() || len(c.commands(t)) != 0 {
		t.Error("smart queue must not run before smartQueue is unlocked")
	}
}

func TestManualDispatch(t *testing.T) {
	s, c := connected(t, DefaultConfig())
	s.handleFrame(frame(t, protocol.TagParkData, snapshot()))

	s.sel.Focus("1")
	s.sel.Toggle(s.store, "b")
	s.sel.Toggle(s.store, "d")

	// d leaves before the batch goes out.
	next := snapshot()
	delete(next.Guests, "d")
	s.handleFrame(frame(t, protocol.TagParkData, next))
	s.publish()
	if v := s.View(); !v.Selected("b") || v.Selected("d") {
		t.Fatalf("selection not pruned: %v", v.Selection)
	}

	s.addToRide()
	s.startRide("1")
	s.startRide("nope")

	cmds := c.commands(t)
	want := []protocol.Command{
		protocol.AddToRide{Guests: []string{"b"}},
		protocol.StartRide{ZoneID: "1", Guests: []string{"r"}},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %+v, want %+v", cmds, want)
	}
	if s.sel.Len() != 0 {
		t.Error("selection should be empty after addToRide")
	}
}

func TestStartRideWithoutRidersIsNoop(t *testing.T) {
	s, c := connected(t, DefaultConfig())
	pd := snapshot()
	pd.Zones["1"] = park.Zone{ZoneID: "1", RideCapacity: 3}
	delete(pd.Guests, "r")
	s.handleFrame(frame(t, protocol.TagParkData, pd))

	s.startRide("1")
	if len(c.commands(t)) != 0 || s.timers.Len() != 0 {
		t.Error("startRide with no riders must send nothing and create no timer")
	}
}

func TestAutoStartOnSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoStartThreshold = 1
	s, c := connected(t, cfg)

	s.handleFrame(frame(t, protocol.TagParkData, snapshot(park.FeatureAutoRide)))
	s.handleFrame(frame(t, protocol.TagGuestLeft, protocol.GuestLeft{Message: "bye"}))

	cmds := c.commands(t)
	if len(cmds) != 1 || !reflect.DeepEqual(cmds[0], protocol.StartRide{ZoneID: "1", Guests: []string{"r"}}) {
		t.Fatalf("commands = %+v, want one startRide", cmds)
	}

	c.reset()
	s.handleFrame(frame(t, protocol.TagRideRunning, protocol.RideRunning{ZoneID: "1", DurationSeconds: 1}))
	s.rideTick()
	if cmds := c.commands(t); len(cmds) != 2 {
		t.Errorf("after the ride ends the zone should start again, got %+v", cmds)
	}
}

func TestNoticesAndUpgrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNotices = 2
	s, c := connected(t, cfg)

	s.handleFrame(frame(t, protocol.TagGuestLeft, protocol.GuestLeft{Message: "one"}))
	s.handleFrame(frame(t, protocol.TagUpgradeError, protocol.UpgradeError{Message: "two"}))
	s.handleFrame(frame(t, protocol.TagMilestoneUnlocked, protocol.MilestoneUnlocked{Milestone: protocol.Milestone{Name: "Busy"}}))
	s.handleFrame([]byte(`{not json`))
	s.handleFrame(frame(t, "weatherReport", map[string]string{"sky": "blue"}))
	s.publish()

	notices := s.View().Notices
	if len(notices) != 2 {
		t.Fatalf("notices = %+v, want the two newest", notices)
	}
	if notices[0].Text != "two" || notices[0].Kind != park.NoticeError || notices[1].Text != "Milestone Unlocked: Busy!" {
		t.Errorf("notices = %+v", notices)
	}
	if notices[0].Seq >= notices[1].Seq {
		t.Error("notice sequence should increase")
	}

	s.applyGlobalUpgrade(park.UpgradeFreezeGuestTimer)
	s.publish()
	if !s.View().Scalars.GuestTimersFrozen {
		t.Error("freeze upgrade should mark guest timers frozen")
	}
	s.handleFrame(frame(t, protocol.TagUnfreezeGuestTimers, nil))
	s.publish()
	if s.View().Scalars.GuestTimersFrozen {
		t.Error("unfreezeGuestTimers should clear the flag")
	}

	cmds := c.commands(t)
	if len(cmds) != 1 || !reflect.DeepEqual(cmds[0], protocol.GlobalUpgrade{UpgradeType: park.UpgradeFreezeGuestTimer}) {
		t.Errorf("commands = %+v", cmds)
	}
}

func TestRestartDropsLocalState(t *testing.T) {
	s, c := connected(t, DefaultConfig())
	s.handleFrame(frame(t, protocol.TagParkData, snapshot()))
	s.handleFrame(frame(t, protocol.TagRideRunning, protocol.RideRunning{ZoneID: "1", DurationSeconds: 9}))
	s.handleFrame(frame(t, protocol.TagGameOver, nil))
	s.sel.Focus("1")

	s.restart()
	s.publish()

	v := s.View()
	if len(v.Zones) != 0 || v.Scalars.GameOver || v.FocusedZone != "" || s.timers.Len() != 0 {
		t.Errorf("state survived restart: %+v", v)
	}
	cmds := c.commands(t)
	if len(cmds) != 1 || !reflect.DeepEqual(cmds[0], protocol.Restart{}) {
		t.Errorf("commands = %+v, want restart", cmds)
	}
}

func TestSendWhileDisconnectedIsDropped(t *testing.T) {
	s := New(DefaultConfig())
	s.applyGlobalUpgrade(park.UpgradeMoneyMultiplier)
	s.addToRide()
	if s.View().Connected {
		t.Error("new session should not report connected")
	}
}

func TestCommandsQueueToLoop(t *testing.T) {
	s := New(DefaultConfig())
	s.SelectZone("1")
	s.SetAutoStartThreshold(3)

	for i := 0; i < 2; i++ {
		select {
		case fn := <-s.cmds:
			fn()
		default:
			t.Fatal("command was not queued")
		}
	}
	s.publish()
	if v := s.View(); v.FocusedZone != "1" || v.AutoStartThreshold != 3 {
		t.Errorf("view = %+v", v)
	}
}

func TestRunOnlyOnce(t *testing.T) {
	dialErr := errors.New("refused")
	s := New(DefaultConfig(), WithDialer(func(context.Context, string) (Conn, error) {
		return nil, dialErr
	}))

	if err := s.Run(context.Background()); !errors.Is(err, dialErr) {
		t.Fatalf("Run() error = %v, want wrapped dial error", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrSessionUsed) {
		t.Errorf("second Run() error = %v, want ErrSessionUsed", err)
	}
}

// parkServer speaks the server side of the protocol over a real websocket.
type parkServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	got      chan protocol.Command
	hangUp   bool
}

func (p *parkServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()
	if p.hangUp {
		return
	}

	pd, _ := protocol.EncodeEvent(protocol.TagParkData, snapshot(park.FeatureSmartQueue), time.Now())
	if err := conn.WriteMessage(websocket.TextMessage, pd); err != nil {
		return
	}

	started := false
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		cmd, _, err := protocol.DecodeCommand(raw)
		if err != nil {
			p.t.Errorf("server could not decode %s: %v", raw, err)
			continue
		}
		p.got <- cmd
		if _, ok := cmd.(protocol.AddToRide); ok && !started {
			started = true
			rr, _ := protocol.EncodeEvent(protocol.TagRideRunning, protocol.RideRunning{ZoneID: "1", DurationSeconds: 1}, time.Now())
			conn.WriteMessage(websocket.TextMessage, rr)
		}
	}
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func waitFor(t *testing.T, got <-chan protocol.Command, tag string) protocol.Command {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cmd := <-got:
			if cmd.Tag() == tag {
				return cmd
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", tag)
			return nil
		}
	}
}

func TestRunAgainstParkServer(t *testing.T) {
	ps := &parkServer{t: t, got: make(chan protocol.Command, 64)}
	srv := httptest.NewServer(ps)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv.URL)
	cfg.ClientName = "test-pilot"
	cfg.SmartQueue = true
	cfg.RideTick = 20 * time.Millisecond
	cfg.QueueTick = 10 * time.Millisecond
	s := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	if id := waitFor(t, ps.got, protocol.TagIdentify).(protocol.Identify); id.Client != "test-pilot" {
		t.Errorf("identify client = %q", id.Client)
	}
	if add := waitFor(t, ps.got, protocol.TagAddToRide).(protocol.AddToRide); !reflect.DeepEqual(add.Guests, []string{"b", "c"}) {
		t.Errorf("first smart batch = %v, want [b c]", add.Guests)
	}
	if end := waitFor(t, ps.got, protocol.TagRideEnded).(protocol.RideEnded); end.ZoneID != "1" {
		t.Errorf("rideEnded zone = %q", end.ZoneID)
	}
	if !s.View().Connected {
		t.Error("view should report connected")
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if s.View().Connected || s.timers.Len() != 0 {
		t.Error("teardown should disconnect and abandon timers")
	}
}

func TestRunReportsTransportFailure(t *testing.T) {
	ps := &parkServer{t: t, got: make(chan protocol.Command, 8), hangUp: true}
	srv := httptest.NewServer(ps)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv.URL)
	s := New(cfg)

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("Run() should return the transport error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after the server hung up")
	}
}
