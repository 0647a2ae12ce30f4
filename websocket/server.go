// file: websocket/server.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
)

// Runnable is work executed on the network loop.
type Runnable interface {
	Run()
}

// RunnableFunc adapts a function to Runnable.
type RunnableFunc func()

// Run calls f.
func (f RunnableFunc) Run() { f() }

// ServerConfig holds the knobs of a Server.
type ServerConfig struct {
	Endpoint string
	// Routes registers extra HTTP handlers next to the websocket endpoint.
	Routes func(*gin.Engine)
	// Middleware wraps the whole HTTP handler, e.g. for tracing.
	Middleware func(http.Handler) http.Handler
	QueueSize  int
}

const (
	defaultEndpoint  = "/ws"
	defaultQueueSize = 64
	shutdownTimeout  = 5 * time.Second
)

// Server runs the network loop. Every hub callback, whether it comes from
// a client or from Execute, runs on the single loop goroutine.
type Server struct {
	cfg      ServerConfig
	hub      *Hub
	upgrader websocket.Upgrader

	tasks chan func()
	quit  chan struct{}
	done  chan struct{}

	listener   net.Listener
	httpServer *http.Server

	mu       sync.Mutex
	started  bool
	stopping bool
	conns    map[ConnID]*Connection
	pumps    sync.WaitGroup
	nextID   atomic.Uint64
	stopOnce sync.Once
}

// NewServer returns a server dispatching to hub.
func NewServer(hub *Hub, cfg ServerConfig) (*Server, error) {
	if hub == nil {
		return nil, fmt.Errorf("%w: server needs a hub", models.ErrConfiguration)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Server{
		cfg: cfg,
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		tasks: make(chan func(), cfg.QueueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		conns: make(map[ConnID]*Connection),
	}, nil
}

// Start binds the port and launches the network loop. It returns once the
// loop is running or the port could not be bound.
func (s *Server) Start(port uint16) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("%w: server already started", models.ErrTransportStartup)
	}
	s.started = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		close(s.done)
		return fmt.Errorf("%w: listen on port %d: %v", models.ErrTransportStartup, port, err)
	}
	s.listener = ln

	var handler http.Handler = s.router()
	if s.cfg.Middleware != nil {
		handler = s.cfg.Middleware(handler)
	}
	s.httpServer = &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	ready := make(chan struct{})
	go s.loop(ready)
	<-ready

	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Printf("[Server.Start] http server exited: %v", err)
			s.terminate()
		}
	}()
	logger.Info.Printf("[Server.Start] listening on %s%s", ln.Addr(), s.cfg.Endpoint)
	return nil
}

// Addr is the bound address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Done is closed when the network loop has exited.
func (s *Server) Done() <-chan struct{} { return s.done }

// Execute posts r to the network loop without blocking. It returns false
// when the queue is full or the loop is gone.
func (s *Server) Execute(r Runnable) bool {
	select {
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.tasks <- r.Run:
		return true
	default:
		logger.Warn.Println("[Server.Execute] run queue full, dropping request")
		return false
	}
}

// Stop shuts the listener, closes every connection and waits for the loop
// and all pumps. No hub callback runs after Stop returns.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.started
		s.stopping = true
		s.mu.Unlock()
		if !started || s.httpServer == nil {
			return
		}

		s.terminate()
		<-s.done

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logger.Warn.Printf("[Server.Stop] http shutdown: %v", err)
		}

		s.mu.Lock()
		for _, c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		s.pumps.Wait()
		logger.Info.Println("[Server.Stop] network loop stopped")
	})
}

// ServeWs upgrades the request and attaches the client to the hub.
func (s *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWs] upgrade error from %v: %v", r.RemoteAddr, err)
		return
	}
	s.attach(wsConn)
}

func (s *Server) attach(wsConn WSConn) {
	c := newConnection(ConnID(s.nextID.Add(1)), wsConn)

	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		c.Close()
		return
	}
	s.conns[c.id] = c
	s.pumps.Add(2)
	s.mu.Unlock()

	if !s.post(func() { s.hub.Connect(c.id, c) }) {
		c.Close()
	}

	go func() {
		defer s.pumps.Done()
		c.writePump()
	}()
	go func() {
		defer s.pumps.Done()
		c.readPump(
			func() { s.post(func() { s.logWarning(s.hub.Data(c.id)) }) },
			func() {
				s.post(func() { s.logWarning(s.hub.Disconnect(c.id)) })
				s.mu.Lock()
				delete(s.conns, c.id)
				s.mu.Unlock()
			},
		)
	}()
}

func (s *Server) router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(s.cfg.Endpoint, gin.WrapF(s.ServeWs))
	if s.cfg.Routes != nil {
		s.cfg.Routes(engine)
	}
	return engine
}

// post hands a client event to the loop, waiting for room in the queue.
func (s *Server) post(task func()) bool {
	select {
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.tasks <- task:
		return true
	case <-s.quit:
		return false
	}
}

func (s *Server) loop(ready chan<- struct{}) {
	defer close(s.done)
	close(ready)
	for {
		select {
		case <-s.quit:
			return
		default:
		}
		select {
		case <-s.quit:
			return
		case task := <-s.tasks:
			task()
		}
	}
}

func (s *Server) terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
}

func (s *Server) logWarning(err error) {
	if err != nil {
		logger.Warn.Printf("[Server] %v", err)
	}
}
