package streamer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lyrebirdhq/clientbase/errs"
	"github.com/lyrebirdhq/clientbase/metrics"
	"github.com/lyrebirdhq/clientbase/queue"
	"github.com/lyrebirdhq/clientbase/worker"
)

// Handler receives the data field of a typed event. The field is nil when
// the event carried no data. A returned error is escalated through the
// supervisor.
type Handler func(data json.RawMessage) error

// Client maintains one resilient connection to the server.
//
// Register handlers and hooks before Start; they are not safe to change
// while the receive loop is running. Send and Abort may be called from any
// goroutine at any time.
type Client struct {
	serverURL         string
	header            http.Header
	reconnectInterval time.Duration

	worker    *worker.Worker
	stop      *queue.Stop
	transport Transport
	logger    *slog.Logger
	metrics   *metrics.Streamer

	handlers         map[string]Handler
	onConnected      func()
	onConnectionLost func()

	// mu guards conn, retry and timer against races between the receive
	// loop and the timer/abort goroutines.
	mu    sync.Mutex
	conn  Conn
	retry bool
	timer *time.Timer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHeader sets the authentication header sent on connect.
func WithHeader(header http.Header) Option {
	return func(c *Client) { c.header = header }
}

// WithTransport replaces the default WebSocket transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithMetrics attaches streamer metrics.
func WithMetrics(m *metrics.Streamer) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client supervised by w. The server URL is composed from
// cfg once; an invalid composition fails here, not at connect time.
func New(cfg Config, w *worker.Worker, opts ...Option) (*Client, error) {
	serverURL, err := cfg.serverURL()
	if err != nil {
		return nil, err
	}

	c := &Client{
		serverURL:         serverURL,
		reconnectInterval: cfg.reconnectInterval(),
		worker:            w,
		stop:              w.Stop(),
		transport:         NewWebSocketTransport(),
		logger:            slog.Default(),
		handlers:          make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ServerURL returns the composed connection target.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// HandleEvent registers the handler for a typed event. Inbound events with
// no registered handler are logged and dropped.
func (c *Client) HandleEvent(eventType string, h Handler) {
	c.handlers[eventType] = h
}

// OnConnected sets the hook invoked after each successful (re)connection.
func (c *Client) OnConnected(fn func()) {
	c.onConnected = fn
}

// OnConnectionLost sets the hook invoked after each unexpected loss.
func (c *Client) OnConnectionLost(fn func()) {
	c.onConnectionLost = fn
}

// Start runs the receive loop on a supervised goroutine.
func (c *Client) Start() {
	c.worker.Go(func() error {
		c.Run()
		return nil
	})
}

// Run opens the connection and blocks until it terminates. Safe to invoke
// repeatedly; every invocation creates a fresh connection, the previous one
// having been discarded by its close event.
func (c *Client) Run() {
	c.logger.Debug("preparing websocket connection", "url", c.serverURL)
	c.transport.Run(c.serverURL, c.header, c.callbacks())
}

// callbacks returns the four transport callbacks, each wrapped so nothing
// escapes the receive-loop goroutine.
func (c *Client) callbacks() Callbacks {
	return Callbacks{
		OnOpen: func(conn Conn) {
			c.worker.Wrap(func() error { return c.onOpen(conn) })()
		},
		OnClose: func(code int, reason string) {
			c.worker.Wrap(func() error { return c.onClose(code, reason) })()
		},
		OnMessage: func(payload []byte) {
			c.worker.Wrap(func() error { return c.onMessage(payload) })()
		},
		OnError: func(err error) {
			c.worker.Wrap(func() error {
				escalated := c.onError(err)
				if escalated != nil && c.metrics != nil {
					c.metrics.ErrorsEscalated.Inc()
				}
				return escalated
			})()
		},
	}
}

// onOpen fires when the handshake completes.
func (c *Client) onOpen(conn Conn) error {
	c.mu.Lock()
	c.conn = conn
	c.retry = false
	c.mu.Unlock()

	c.logger.Info("websocket connected to server")
	if c.metrics != nil {
		c.metrics.Connected.Set(1)
	}

	if c.onConnected != nil {
		c.onConnected()
	}
	return nil
}

// onClose fires when the connection terminates for any reason, including
// an in-progress Abort.
func (c *Client) onClose(code int, reason string) error {
	if code != 0 || reason != "" {
		c.logger.Debug("connection closed", "code", code, "reason", reason)
	}

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Connected.Set(0)
	}

	if c.stop.IsSet() {
		c.logger.Info("websocket disconnected from server")
		return nil
	}

	c.mu.Lock()
	firstLoss := !c.retry
	c.retry = true
	c.mu.Unlock()

	if firstLoss {
		c.logger.Error("websocket connection lost")
	}

	if c.onConnectionLost != nil {
		c.onConnectionLost()
	}

	c.logger.Warn("trying to reconnect", "interval", c.reconnectInterval)
	if c.metrics != nil {
		c.metrics.Reconnects.Inc()
	}

	timer := c.worker.Timer(c.reconnectInterval, func() error {
		c.Run()
		return nil
	})

	c.mu.Lock()
	c.timer = timer
	c.mu.Unlock()

	return nil
}

// onMessage parses the inbound envelope and dispatches it to the handler
// registered for its type.
func (c *Client) onMessage(payload []byte) error {
	// no dispatch during shutdown, the socket is about to die anyway
	if c.stop.IsSet() {
		return nil
	}

	if c.metrics != nil {
		c.metrics.EventsReceived.Inc()
	}

	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil || event.Type == "" {
		c.logger.Error("unexpected message from server",
			"message", displayMessage(string(payload), 100))
		if c.metrics != nil {
			c.metrics.EventsDropped.Inc()
		}
		return nil
	}

	h, ok := c.handlers[event.Type]
	if !ok {
		c.logger.Error("event of unknown type received", "type", event.Type)
		if c.metrics != nil {
			c.metrics.EventsDropped.Inc()
		}
		return nil
	}

	if c.metrics != nil {
		c.metrics.EventsDispatched.WithLabelValues(event.Type).Inc()
	}
	return h(event.Data)
}

// onError classifies a transport error. A non-nil return is an escalation:
// the wrapped callback pushes it onto the supervisor's error buffer.
func (c *Client) onError(err error) error {
	// do not analyze errors on program exit, as the socket killed by
	// Abort would be mistaken for a lost server connection
	if c.stop.IsSet() {
		return nil
	}

	// the handshake was refused: bad credentials, not a network blip
	if errors.Is(err, websocket.ErrBadHandshake) {
		return fmt.Errorf("%w: unable to connect to server with this user: %v",
			errs.ErrAuthentication, err)
	}

	// the server is unreachable
	if errors.Is(err, syscall.ECONNREFUSED) {
		c.mu.Lock()
		retry := c.retry
		c.mu.Unlock()

		if retry {
			c.logger.Warn("unable to talk to the server")
			return nil
		}
		return fmt.Errorf("%w: unable to talk to the server: %v", errs.ErrNetwork, err)
	}

	// the requested endpoint does not exist
	if errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("%w: invalid endpoint to the server: %v", errs.ErrParameter, err)
	}

	// connection already closed: handled by onClose
	if isClosedConnError(err) {
		return nil
	}

	c.logger.Error("websocket error", "error", err)
	return nil
}

// Send serializes {"type": eventType, "data": data} and writes it. The
// data key is omitted entirely when data is nil.
func (c *Client) Send(eventType string, data any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("%w: no connection established", errs.ErrNotConnected)
	}

	content := map[string]any{"type": eventType}
	if data != nil {
		content["data"] = data
	}

	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode event %q: %w", eventType, err)
	}
	return conn.Send(payload)
}

// Abort interrupts the connection. Callable from any goroutine, idempotent.
// Killing the socket triggers the close callback, which observes the stop
// flag and schedules no reconnection.
func (c *Client) Abort() {
	c.mu.Lock()
	c.retry = false
	conn := c.conn
	timer := c.timer
	c.timer = nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if conn != nil {
		conn.Abort()
	}
}

// Close logs and aborts the connection; the worker exit path.
func (c *Client) Close() {
	c.logger.Debug("aborting websocket connection")
	c.Abort()
}

// isClosedConnError reports errors raised as a side effect of a closure
// already reported through the close callback.
func isClosedConnError(err error) bool {
	var closeErr *websocket.CloseError
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		errors.As(err, &closeErr)
}

// displayMessage truncates a message for logging.
func displayMessage(message string, limit int) string {
	if len(message) <= limit {
		return message
	}
	return strings.TrimSpace(message[:limit-3]) + "..."
}
