package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"digit-observer/src/helpers"
	"digit-observer/src/logger"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	// DefaultEndpoint is the public tick feed host.
	DefaultEndpoint = "wss://ws.binaryws.com/websockets/v3"

	// AppIDPrimary is the registered application identifier.
	AppIDPrimary = 16929
	// AppIDDemo is the public fallback identifier. The caller picks one of
	// the two; there is no automatic failover between them.
	AppIDDemo = 1089

	// DefaultKeepaliveInterval is the cadence of the liveness ping.
	DefaultKeepaliveInterval = 30 * time.Second

	writeWait = 5 * time.Second
)

// -----------------------------------------------------------------------------
// Session state machine: connecting -> open -> closed
// -----------------------------------------------------------------------------

type SessionState int

const (
	StateConnecting SessionState = iota
	StateOpen
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// -----------------------------------------------------------------------------
// EndpointConfig
// -----------------------------------------------------------------------------

// EndpointConfig identifies the remote endpoint: feed URL plus application id.
type EndpointConfig struct {
	URL               string
	AppID             int
	KeepaliveInterval time.Duration
}

// endpoint builds the dial URL with the app_id query parameter.
func (c EndpointConfig) endpoint() (string, error) {
	raw := c.URL
	if raw == "" {
		raw = DefaultEndpoint
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	appID := c.AppID
	if appID <= 0 {
		appID = AppIDDemo
	}

	q := u.Query()
	q.Set("app_id", strconv.Itoa(appID))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// Handlers are the lifecycle callbacks of a session. OnOpen fires once, after
// which the keepalive loop starts automatically. OnError may fire zero or
// more times. OnClose fires exactly once and is terminal. All callbacks run
// on the session's internal goroutines; post-connection failures are only
// ever delivered here, never thrown across the event boundary.
type Handlers struct {
	OnOpen    func()
	OnMessage func(*Message)
	OnError   func(error)
	OnClose   func()
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Session owns exactly one live connection to the tick feed. Both the
// keepalive timer and the read loop are bound to the session's lifetime:
// closing the session deterministically stops them.
type Session struct {
	handlers Handlers
	Logger   *logger.Logger

	keepaliveInterval time.Duration

	mu    sync.Mutex // guards state and conn
	state SessionState
	conn  *websocket.Conn

	writeMu sync.Mutex // serializes frame writes

	kaMu     sync.Mutex
	kaCancel context.CancelFunc

	closeOnce sync.Once
	closed    chan struct{}
}

// -----------------------------------------------------------------------------

// Open constructs a session and starts connecting asynchronously. The call
// itself fails only when the transport cannot be constructed at all
// (malformed URL, bad scheme), signalled as a ConnectionSetupError. Dial
// failures and everything after are delivered via the handlers.
func Open(cfg EndpointConfig, handlers Handlers, log *logger.Logger) (*Session, error) {
	endpoint, err := cfg.endpoint()
	if err != nil {
		return nil, helpers.NewConnectionSetupError("invalid endpoint", err)
	}

	if log == nil {
		log = logger.NewLogger(nil, "FeedSession")
	}

	interval := cfg.KeepaliveInterval
	if interval <= 0 {
		interval = DefaultKeepaliveInterval
	}

	s := &Session{
		handlers:          handlers,
		Logger:            log,
		keepaliveInterval: interval,
		state:             StateConnecting,
		closed:            make(chan struct{}),
	}

	go s.dial(endpoint)
	return s, nil
}

// -----------------------------------------------------------------------------

func (s *Session) dial(endpoint string) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		s.emitError(helpers.NewTransportError("dial failed", err))
		s.shutdown(false)
		return
	}

	s.mu.Lock()
	if s.state == StateClosed {
		// Closed while still connecting
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.state = StateOpen
	s.mu.Unlock()

	s.Logger.Info("Session open: %s", endpoint)

	if s.handlers.OnOpen != nil {
		s.handlers.OnOpen()
	}

	// Keepalive begins automatically once the session is open
	s.StartKeepalive(s.keepaliveInterval)

	go s.readLoop(conn)
}

// -----------------------------------------------------------------------------

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the session reaches its terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// -----------------------------------------------------------------------------

// StartKeepalive begins the recurring liveness ping. Idempotent: starting it
// again replaces the running timer rather than stacking a second one. The
// loop stops automatically when the session closes.
func (s *Session) StartKeepalive(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultKeepaliveInterval
	}

	s.kaMu.Lock()
	if s.kaCancel != nil {
		s.kaCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.kaCancel = cancel
	s.kaMu.Unlock()

	go s.keepaliveLoop(ctx, interval)
}

// -----------------------------------------------------------------------------

func (s *Session) keepaliveLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
			if s.State() != StateOpen {
				return
			}
			if err := s.writeJSON(pingMessage{Ping: 1}); err != nil {
				s.Logger.Warning("Keepalive ping failed: %v", err)
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *Session) stopKeepalive() {
	s.kaMu.Lock()
	defer s.kaMu.Unlock()
	if s.kaCancel != nil {
		s.kaCancel()
		s.kaCancel = nil
	}
}

// -----------------------------------------------------------------------------

// SendHistoryRequest transmits a history query with a fresh correlation
// identifier and returns that identifier. Fails with NotConnectedError when
// the session is not open.
func (s *Session) SendHistoryRequest(symbol string, count int) (int64, error) {
	if s.State() != StateOpen {
		return 0, helpers.NewNotConnectedError("history request")
	}

	req := NewHistoryRequest(symbol, count)
	if err := s.writeJSON(req); err != nil {
		return 0, err
	}
	return req.ReqID, nil
}

// -----------------------------------------------------------------------------

func (s *Session) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// State is re-read under writeMu so a writer racing Close observes the
	// closed state before it can transmit
	s.mu.Lock()
	conn := s.conn
	state := s.state
	s.mu.Unlock()

	if state != StateOpen || conn == nil {
		return helpers.NewNotConnectedError("write")
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// -----------------------------------------------------------------------------

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.State() != StateClosed {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.emitError(helpers.NewTransportError("read failed", err))
				}
				s.shutdown(false)
			}
			return
		}

		msg, perr := parseInbound(data)
		if perr != nil {
			// One bad frame must not take down the session
			s.emitError(perr)
			continue
		}

		switch msg.Kind {
		case KindPong:
			// Liveness acknowledged, nothing to dispatch
		default:
			if s.handlers.OnMessage != nil {
				s.handlers.OnMessage(msg)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Close requests a clean shutdown. Idempotent: calling it on an already
// closed session is a no-op apart from stopping any keepalive timer.
func (s *Session) Close() {
	s.stopKeepalive()
	s.shutdown(true)
}

// -----------------------------------------------------------------------------

func (s *Session) shutdown(sendCloseFrame bool) {
	s.closeOnce.Do(func() {
		s.stopKeepalive()

		// The state flip happens under writeMu so no in-flight writer can
		// transmit once the close has begun
		s.writeMu.Lock()
		s.mu.Lock()
		conn := s.conn
		s.state = StateClosed
		s.mu.Unlock()

		if conn != nil && sendCloseFrame {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		}
		s.writeMu.Unlock()

		if conn != nil {
			conn.Close()
		}

		close(s.closed)

		if s.handlers.OnClose != nil {
			s.handlers.OnClose()
		}
	})
}

// -----------------------------------------------------------------------------

func (s *Session) emitError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
		return
	}
	s.Logger.Error("Unhandled session error: %v", err)
}
