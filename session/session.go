// file: session/session.go
package session

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
	"gamepad-websocket/websocket"
)

// Reader produces the command of the current cycle.
type Reader interface {
	Read() (models.Command, models.Freshness, error)
	Reset()
}

// Config is validated by Configure.
type Config struct {
	Port      uint16
	Endpoint  string
	Timeout   time.Duration
	Transform string

	// Routes and Middleware are handed to the websocket server.
	Routes     func(*gin.Engine)
	Middleware func(http.Handler) http.Handler
}

// Session owns the control side of the pipeline: the reader, the publishing
// state machine and the device identity check. Configure, Start, Tick and
// Stop must not be called concurrently with each other; State may be called
// from anywhere.
type Session struct {
	mu     sync.Mutex
	reader Reader
	stats  websocket.StatsWriter
	now    func() time.Time

	cfg        Config
	configured bool
	state      atomic.Int32

	deadline    time.Time
	deviceID    string
	hasDeviceID bool

	slot      *websocket.Slot
	hub       *websocket.Hub
	server    *websocket.Server
	publisher *websocket.Publisher
}

// New returns a session reading from reader. stats may be nil.
func New(reader Reader, stats websocket.StatsWriter) (*Session, error) {
	if reader == nil {
		return nil, fmt.Errorf("%w: session needs a command reader", models.ErrConfiguration)
	}
	s := &Session{reader: reader, stats: stats, now: time.Now}
	s.setState(PreOperational)
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Configure validates cfg. A session can only be configured while not running.
func (s *Session) Configure(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State().Active() {
		return fmt.Errorf("%w: cannot configure a running session", models.ErrConfiguration)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%w: input timeout must be positive, got %v", models.ErrConfiguration, cfg.Timeout)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "/ws"
	}
	if !strings.HasPrefix(cfg.Endpoint, "/") {
		return fmt.Errorf("%w: endpoint %q must start with /", models.ErrConfiguration, cfg.Endpoint)
	}
	if err := websocket.ValidateTransform(cfg.Transform); err != nil {
		return err
	}

	s.cfg = cfg
	s.configured = true
	s.setState(Stopped)
	logger.Info.Printf("[Session.Configure] port=%d endpoint=%s timeout=%v transform=%q",
		cfg.Port, cfg.Endpoint, cfg.Timeout, cfg.Transform)
	return nil
}

// Start binds the port and starts the network loop. On failure the session
// stays in its previous state.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return fmt.Errorf("%w: session started before configure", models.ErrConfiguration)
	}
	if s.State().Active() {
		return nil
	}

	slot := websocket.NewSlot()
	hub, err := websocket.NewHub(slot, s.cfg.Transform, s.stats)
	if err != nil {
		return err
	}
	server, err := websocket.NewServer(hub, websocket.ServerConfig{
		Endpoint:   s.cfg.Endpoint,
		Routes:     s.cfg.Routes,
		Middleware: s.cfg.Middleware,
	})
	if err != nil {
		return err
	}
	if err := server.Start(s.cfg.Port); err != nil {
		logger.Error.Printf("[Session.Start] %v", err)
		return err
	}

	s.reader.Reset()
	s.slot, s.hub, s.server = slot, hub, server
	s.publisher = websocket.NewPublisher(hub)
	s.deviceID, s.hasDeviceID = "", false
	s.deadline = s.now().Add(s.cfg.Timeout)
	s.setState(Running)
	logger.Info.Printf("[Session.Start] started, deadline=%s", s.deadline.Format(time.RFC3339Nano))
	return nil
}

// Tick runs one control cycle. A returned error is fatal and leaves the
// session in Exception.
func (s *Session) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.State()
	if !state.Active() {
		return nil
	}

	select {
	case <-s.server.Done():
		return s.fail(fmt.Errorf("%w: network loop exited", models.ErrTransportTerminated))
	default:
	}

	cmd, status, err := s.reader.Read()
	if err != nil {
		return s.fail(err)
	}

	now := s.now()
	if status != models.NewData {
		if now.After(s.deadline) && state != InputTimeout {
			s.transition(InputTimeout)
		}
		return nil
	}

	if s.hasDeviceID && cmd.DeviceIdentifier != s.deviceID {
		return s.fail(fmt.Errorf("%w: session device is %q, got %q",
			models.ErrIdentifierMismatch, s.deviceID, cmd.DeviceIdentifier))
	}
	if !s.hasDeviceID {
		s.deviceID, s.hasDeviceID = cmd.DeviceIdentifier, true
		logger.Info.Printf("[Session.Tick] device identifier established: %q", s.deviceID)
	}

	s.deadline = now.Add(s.cfg.Timeout)
	if state != Publishing {
		s.transition(Publishing)
	}

	s.slot.Store(cmd, s.deviceID)
	s.server.Execute(s.publisher)
	return nil
}

// Stop tears the network loop down and clears the slot. It waits until no
// more network callbacks can run.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.State()
	if !state.Active() && state != Exception {
		return nil
	}
	s.teardown()
	s.setState(Stopped)
	logger.Info.Println("[Session.Stop] stopped")
	return nil
}

// Addr is the bound listener address while the session is active.
func (s *Session) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	return s.server.Addr()
}

// fail stops publishing but keeps the slot as it was until Stop.
func (s *Session) fail(err error) error {
	logger.Error.Printf("[Session.Tick] fatal: %v", err)
	if s.server != nil {
		s.server.Stop()
	}
	s.setState(Exception)
	return err
}

func (s *Session) teardown() {
	if s.server != nil {
		s.server.Stop()
	}
	if s.slot != nil {
		s.slot.Clear()
	}
}

func (s *Session) transition(to State) {
	logger.Info.Printf("[Session.Tick] state %s -> %s", s.State(), to)
	s.setState(to)
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}
