// Package pilot runs one connection to the park server. A Session owns the
// channel, the mirrored park, the ride timers and the dispatch engine, and
// drives all of them from a single loop goroutine.
package pilot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/parkpilot/internal/dispatch"
	"github.com/vovakirdan/parkpilot/internal/park"
	"github.com/vovakirdan/parkpilot/internal/protocol"
	"github.com/vovakirdan/parkpilot/internal/rides"
)

// ErrSessionUsed is returned when Run is called a second time.
var ErrSessionUsed = errors.New("pilot: session already ran")

// Config holds session settings.
type Config struct {
	URL                string
	ClientType         string
	ClientName         string
	HandshakeTimeout   time.Duration
	RideTick           time.Duration // countdown resolution, one second on the wire
	QueueTick          time.Duration // smart-queue cycle
	SmartQueue         bool          // switch the smart queue on as soon as it unlocks
	AutoStartThreshold int
	MaxNotices         int
}

// DefaultConfig returns the settings of the stock browser client.
func DefaultConfig() Config {
	return Config{
		URL:                "ws://localhost:8080",
		ClientType:         protocol.DefaultClientType,
		ClientName:         "parkpilot",
		HandshakeTimeout:   10 * time.Second,
		RideTick:           time.Second,
		QueueTick:          200 * time.Millisecond,
		AutoStartThreshold: dispatch.DefaultAutoStartThreshold,
		MaxNotices:         5,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithJournal records dispatches and rides.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithDialer replaces the websocket dialer.
func WithDialer(d DialFunc) Option {
	return func(s *Session) { s.dial = d }
}

// WithSessionID fixes the id stamped on journal records.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is one client connection. Commands may be called from any
// goroutine; they are queued and executed by the loop inside Run.
type Session struct {
	cfg     Config
	id      string
	logger  *log.Logger
	journal Journal
	dial    DialFunc
	enc     *protocol.Encoder
	now     func() time.Time

	// Owned by the loop.
	conn      Conn
	store     *park.Store
	timers    *rides.Scheduler
	sel       dispatch.Selection
	queue     *dispatch.SmartQueue
	auto      *dispatch.AutoStart
	queueTick *time.Ticker
	notices   []park.Notice
	noticeSeq uint64
	connected bool

	cmds    chan func()
	updates chan struct{}
	view    atomic.Pointer[park.View]
	used    atomic.Bool
}

// New creates a session. Nothing is dialed until Run.
func New(cfg Config, opts ...Option) *Session {
	def := DefaultConfig()
	if cfg.ClientType == "" {
		cfg.ClientType = def.ClientType
	}
	if cfg.ClientName == "" {
		cfg.ClientName = def.ClientName
	}
	if cfg.RideTick <= 0 {
		cfg.RideTick = def.RideTick
	}
	if cfg.QueueTick <= 0 {
		cfg.QueueTick = def.QueueTick
	}
	if cfg.MaxNotices <= 0 {
		cfg.MaxNotices = def.MaxNotices
	}

	s := &Session{
		cfg:     cfg,
		id:      uuid.NewString(),
		logger:  log.New(io.Discard),
		enc:     protocol.NewEncoder(cfg.ClientType),
		now:     time.Now,
		store:   park.NewStore(),
		timers:  rides.New(),
		queue:   dispatch.NewSmartQueue(),
		auto:    dispatch.NewAutoStart(cfg.AutoStartThreshold),
		cmds:    make(chan func(), 64),
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dial == nil {
		s.dial = WebsocketDialer(cfg.HandshakeTimeout)
	}
	s.publish()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// View returns the latest immutable read model. It is never nil.
func (s *Session) View() *park.View {
	return s.view.Load()
}

// Updates fires after the View changed. Signals coalesce.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Run connects, identifies and serves the session until ctx is done or the
// channel fails. Cancellation closes the channel, abandons ride timers and
// returns nil. A transport failure is returned and not retried.
func (s *Session) Run(ctx context.Context) error {
	if !s.used.CompareAndSwap(false, true) {
		return ErrSessionUsed
	}

	s.logger.Info("connecting", "url", s.cfg.URL, "session", s.id)
	conn, err := s.dial(ctx, s.cfg.URL)
	if err != nil {
		s.logger.Error("connect failed", "url", s.cfg.URL, "error", err)
		return fmt.Errorf("pilot: cannot connect to %s: %w", s.cfg.URL, err)
	}
	s.conn = conn
	s.connected = true
	s.send(protocol.Identify{Client: s.cfg.ClientName})
	s.publish()

	frames := make(chan inbound, 64)
	done := make(chan struct{})
	defer close(done)
	go readLoop(conn, frames, done)

	rideTick := time.NewTicker(s.cfg.RideTick)
	defer rideTick.Stop()
	defer s.stopQueueTicker()

	for {
		var queueC <-chan time.Time
		if s.queueTick != nil {
			queueC = s.queueTick.C
		}

		select {
		case <-ctx.Done():
			s.teardown(true)
			s.logger.Info("session closed", "session", s.id)
			return nil

		case in := <-frames:
			if in.err != nil {
				s.teardown(false)
				if websocket.IsCloseError(in.err, websocket.CloseNormalClosure) {
					s.logger.Warn("server closed the connection", "session", s.id)
				} else {
					s.logger.Error("connection lost", "session", s.id, "error", in.err)
				}
				return fmt.Errorf("pilot: connection lost: %w", in.err)
			}
			s.handleFrame(in.data)

		case <-rideTick.C:
			s.rideTick()

		case <-queueC:
			s.queueCycle()

		case fn := <-s.cmds:
			fn()
		}

		s.syncQueueTicker()
		s.publish()
	}
}

// handleFrame applies one inbound message.
func (s *Session) handleFrame(raw []byte) {
	ev, err := protocol.Decode(raw)
	if err != nil {
		s.logger.Debug("dropping frame", "error", err)
		return
	}

	switch e := ev.(type) {
	case protocol.RideRunning:
		s.timers.Start(e.ZoneID, e.DurationSeconds)
		left := s.timers.Remaining(e.ZoneID)
		s.logger.Debug("ride running", "zone", e.ZoneID, "seconds", left)
		s.recordRide(e.ZoneID, RideStarted, left)

	case protocol.Unknown:
		s.logger.Debug("ignoring event", "type", e.EventType)
		return

	default:
		eff := s.store.ApplyDelta(ev)
		if eff.Notice != "" {
			s.notify(eff.Kind, eff.Notice)
		}
		if _, over := ev.(protocol.GameOver); over {
			s.logger.Warn("game over", "session", s.id)
		}
	}
	s.reconcile()
}

// rideTick advances local countdowns and reports expired rides. isRunning
// is left for the server to clear.
func (s *Session) rideTick() {
	for _, zoneID := range s.timers.Tick() {
		s.send(protocol.RideEnded{ZoneID: zoneID})
		s.logger.Debug("ride ended", "zone", zoneID)
		s.recordRide(zoneID, RideEnded, 0)
	}
	s.autoStart()
}

// queueCycle runs one smart-queue pass.
func (s *Session) queueCycle() {
	for _, b := range s.queue.Plan(s.store) {
		s.sendBatch(b)
	}
}

// reconcile keeps loop-owned bookkeeping in line with the store.
func (s *Session) reconcile() {
	s.sel.Prune(s.store)
	s.queue.Reconcile(s.store)
	if s.cfg.SmartQueue && !s.queue.Enabled() && s.queue.SetEnabled(s.store, true) {
		s.logger.Info("smart queue enabled", "session", s.id)
	}
	s.autoStart()
}

func (s *Session) autoStart() {
	for _, cmd := range s.auto.Plan(s.store, s.timers) {
		s.logger.Info("starting ride", "zone", cmd.ZoneID, "riders", len(cmd.Guests), "strategy", dispatch.StrategyAutoStart)
		s.send(cmd)
	}
}

// resetLocal drops everything learnt from the server, as a fresh client
// would start.
func (s *Session) resetLocal() {
	s.store.Reset()
	s.timers.Reset()
	s.sel = dispatch.Selection{}
	s.queue = dispatch.NewSmartQueue()
	s.auto.Reset()
	s.notices = nil
}

func (s *Session) teardown(normal bool) {
	if s.conn != nil {
		var err error
		if normal {
			err = closeNormally(s.conn)
		} else {
			err = s.conn.Close()
		}
		if err != nil {
			s.logger.Debug("close", "error", err)
		}
	}
	s.conn = nil
	s.connected = false
	s.timers.Reset()
	s.stopQueueTicker()
	s.publish()
}

// send writes one command. Commands are dropped while disconnected.
func (s *Session) send(cmd protocol.Command) {
	if s.conn == nil {
		return
	}
	data, err := s.enc.Encode(cmd)
	if err != nil {
		s.logger.Error("encode", "command", cmd.Tag(), "error", err)
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("send failed", "command", cmd.Tag(), "error", err)
		return
	}
	s.logger.Debug("sent", "command", cmd.Tag())
}

func (s *Session) sendBatch(b dispatch.Batch) {
	s.send(b.Command())
	s.logger.Debug("dispatch", "zone", b.ZoneID, "guests", len(b.Guests), "strategy", b.Strategy)
	if s.journal == nil || s.conn == nil {
		return
	}
	err := s.journal.RecordDispatch(DispatchRecord{
		SessionID: s.id,
		ZoneID:    b.ZoneID,
		Strategy:  string(b.Strategy),
		Guests:    len(b.Guests),
		Value:     b.Value,
		At:        s.now(),
	})
	if err != nil {
		s.logger.Warn("journal", "error", err)
	}
}

func (s *Session) recordRide(zoneID, event string, seconds int) {
	if s.journal == nil {
		return
	}
	err := s.journal.RecordRide(RideRecord{
		SessionID: s.id,
		ZoneID:    zoneID,
		Event:     event,
		Seconds:   seconds,
		At:        s.now(),
	})
	if err != nil {
		s.logger.Warn("journal", "error", err)
	}
}

func (s *Session) notify(kind park.NoticeKind, text string) {
	s.noticeSeq++
	s.notices = append(s.notices, park.Notice{
		Seq:  s.noticeSeq,
		At:   s.now(),
		Kind: kind,
		Text: text,
	})
	if over := len(s.notices) - s.cfg.MaxNotices; over > 0 {
		s.notices = append([]park.Notice(nil), s.notices[over:]...)
	}
	if kind == park.NoticeError {
		s.logger.Warn(text)
	} else {
		s.logger.Info(text)
	}
}

// syncQueueTicker runs the smart-queue ticker only while the strategy is on.
func (s *Session) syncQueueTicker() {
	switch {
	case s.queue.Enabled() && s.queueTick == nil:
		s.queueTick = time.NewTicker(s.cfg.QueueTick)
	case !s.queue.Enabled() && s.queueTick != nil:
		s.stopQueueTicker()
	}
}

func (s *Session) stopQueueTicker() {
	if s.queueTick != nil {
		s.queueTick.Stop()
		s.queueTick = nil
	}
}

// publish stores a fresh View and signals readers.
func (s *Session) publish() {
	v := s.store.View(park.Overlay{
		Remaining:          s.timers.Snapshot(),
		FocusedZone:        s.sel.Zone(),
		Selection:          s.sel.IDs(),
		SmartQueue:         s.queue.Enabled(),
		AutoStartThreshold: s.auto.Threshold(),
		Connected:          s.connected,
		Notices:            s.notices,
	})
	s.view.Store(v)
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
