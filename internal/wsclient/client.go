// Package wsclient implements the WebSocket client state machine: DNS ->
// TCP -> TLS -> WebSocket handshake -> streaming read loop, with timeouts,
// control-frame handling, and graceful close.
package wsclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ControlKind identifies a received control frame.
type ControlKind int

const (
	ControlPing ControlKind = iota
	ControlPong
	ControlClose
)

func (k ControlKind) String() string {
	switch k {
	case ControlPing:
		return "ping"
	case ControlPong:
		return "pong"
	case ControlClose:
		return "close"
	default:
		return "unknown"
	}
}

// Callbacks are invoked from the client's internal read goroutine. Open is
// invoked once, synchronously, from Connect on success.
type Callbacks struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnError   func(err *Error)
	OnControl func(kind ControlKind, payload []byte)
}

// Config configures a single connection attempt.
type Config struct {
	URL              string
	Headers          map[string]string
	HandshakeTimeout time.Duration
	IdleTimeout      time.Duration
	KeepAlivePings   bool
}

// DefaultConfig returns the exchange client's documented timeout defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 30 * time.Second,
		IdleTimeout:      60 * time.Second,
		KeepAlivePings:   true,
	}
}

// Client is a single WebSocket connection attempt and, once open, the
// connection itself. A new Client is constructed for every reconnect
// attempt (see internal/reconnect).
type Client struct {
	cfg Config
	cb  Callbacks

	attemptID uuid.UUID

	mu    sync.Mutex
	state State
	conn  *websocket.Conn
}

// New constructs a Client. Connect must be called to actually dial.
func New(cfg Config, cb Callbacks) *Client {
	return &Client{cfg: cfg, cb: cb, attemptID: uuid.New(), state: Idle}
}

// AttemptID is a correlation id unique to this connection attempt, stable
// for the lifetime of this Client, intended for joining log lines produced
// by a single TCP/TLS session.
func (c *Client) AttemptID() uuid.UUID {
	return c.attemptID
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect performs DNS resolution, the TCP/TLS dial, and the WebSocket
// upgrade, synchronously. On success it starts a background read loop that
// invokes the message/error/control callbacks, and returns nil. On failure
// it invokes the error callback and returns the same error.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(Resolving)

	host, port, target, perr := ParseURL(c.cfg.URL)
	if perr != nil {
		return c.fail(perr.(*Error))
	}

	if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
		return c.fail(&Error{Kind: ResolveFailed, Detail: err.Error()})
	}

	c.setState(Connecting)

	header := http.Header{}
	for k, v := range c.cfg.Headers {
		header.Set(k, v)
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		TLSClientConfig: &tls.Config{
			ServerName: host,
		},
	}

	c.setState(TlsHandshake)

	target = normalizeTarget(target)
	u := url.URL{Scheme: "wss", Host: net.JoinHostPort(host, port), Path: target}

	c.setState(WsHandshake)
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return c.fail(&Error{Kind: classifyDialError(err), Detail: err.Error()})
	}

	c.mu.Lock()
	c.conn = conn
	c.state = Open
	c.mu.Unlock()

	c.wireControlHandlers()
	c.armReadDeadline()

	if c.cb.OnOpen != nil {
		c.cb.OnOpen()
	}

	go c.readLoop()
	if c.cfg.KeepAlivePings {
		go c.pingLoop()
	}

	return nil
}

func normalizeTarget(target string) string {
	if target == "" {
		return "/"
	}
	return target
}

func classifyDialError(err error) ErrorKind {
	var tlsErr tls.RecordHeaderError
	if errors.As(err, &tlsErr) {
		return SslHandshakeFailed
	}
	var certErr x509.CertificateInvalidError
	if errors.As(err, &certErr) {
		return SslHandshakeFailed
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return SslHandshakeFailed
	}
	if errors.Is(err, websocket.ErrBadHandshake) {
		return WsHandshakeFailed
	}
	return ConnectFailed
}

func (c *Client) wireControlHandlers() {
	conn := c.conn
	conn.SetPingHandler(func(appData string) error {
		if c.cb.OnControl != nil {
			c.cb.OnControl(ControlPing, []byte(appData))
		}
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	conn.SetPongHandler(func(appData string) error {
		if c.cb.OnControl != nil {
			c.cb.OnControl(ControlPong, []byte(appData))
		}
		c.armReadDeadline()
		return nil
	})
	conn.SetCloseHandler(func(code int, text string) error {
		if c.cb.OnControl != nil {
			c.cb.OnControl(ControlClose, []byte(text))
		}
		return nil
	})
}

func (c *Client) armReadDeadline() {
	if c.cfg.IdleTimeout <= 0 {
		return
	}
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
}

// readLoop repeatedly awaits the next complete message and emits it to the
// message callback, re-arming the idle deadline on every data frame. Of the
// control frames, only pongs re-arm it (see wireControlHandlers).
func (c *Client) readLoop() {
	for {
		c.setState(Reading)
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(&Error{Kind: ReadFailed, Detail: err.Error()})
			return
		}
		c.armReadDeadline()
		c.setState(Open)
		if c.cb.OnMessage != nil {
			c.cb.OnMessage(data)
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		conn := c.conn
		closed := c.state == Closed || c.state == Failed
		c.mu.Unlock()
		if closed || conn == nil {
			return
		}
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
			c.fail(&Error{Kind: WriteFailed, Detail: err.Error()})
			return
		}
	}
}

// SendText is a fire-and-forget text-frame write. Failures surface through
// the error callback, not the return value's caller expectations beyond
// the returned error itself.
func (c *Client) SendText(payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		err := &Error{Kind: WriteFailed, Detail: "not connected"}
		if c.cb.OnError != nil {
			c.cb.OnError(err)
		}
		return err
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		wsErr := &Error{Kind: WriteFailed, Detail: err.Error()}
		if c.cb.OnError != nil {
			c.cb.OnError(wsErr)
		}
		return wsErr
	}
	return nil
}

// Close issues a graceful close frame with a normal close code, ignoring
// any error, then closes the underlying connection.
func (c *Client) Close() error {
	c.setState(Closing)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
	}

	c.setState(Closed)
	return nil
}

func (c *Client) fail(err *Error) error {
	c.setState(Failed)
	if c.cb.OnError != nil {
		c.cb.OnError(err)
	}
	c.setState(Closed)
	return err
}
