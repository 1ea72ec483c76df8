package streamer

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Callbacks are the four low-level connection callbacks a Transport
// invokes. For one connection they fire in strict sequence: OnOpen, zero or
// more OnMessage/OnError, then OnClose exactly once. No two callbacks for
// the same connection run concurrently.
type Callbacks struct {
	OnOpen    func(conn Conn)
	OnClose   func(code int, reason string)
	OnMessage func(payload []byte)
	OnError   func(err error)
}

// Conn is a live connection handed to OnOpen.
type Conn interface {
	// Send writes a text frame.
	Send(data []byte) error

	// Abort forcibly terminates the underlying socket. Best effort:
	// failures on a half-torn-down socket are tolerated.
	Abort()
}

// Transport dials the server and drives the callbacks. Run blocks until
// the connection terminates, whether it was ever established or not.
type Transport interface {
	Run(serverURL string, header http.Header, cb Callbacks)
}

// WebSocketTransport is the default Transport, backed by gorilla/websocket.
type WebSocketTransport struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// NewWebSocketTransport returns a transport with default timeouts.
func NewWebSocketTransport() *WebSocketTransport {
	return &WebSocketTransport{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Run dials serverURL and processes frames until the connection ends.
// A failed dial reports OnError then OnClose without OnOpen. A close frame
// from the server reports OnClose alone; any other termination reports
// OnError then OnClose.
func (t *WebSocketTransport) Run(serverURL string, header http.Header, cb Callbacks) {
	dialer := websocket.Dialer{HandshakeTimeout: t.HandshakeTimeout}

	conn, resp, err := dialer.Dial(serverURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		cb.OnError(err)
		cb.OnClose(0, "")
		return
	}

	cb.OnOpen(&wsConn{conn: conn, writeTimeout: t.WriteTimeout})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			conn.Close()

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) &&
				(closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway) {
				cb.OnClose(closeErr.Code, closeErr.Text)
				return
			}

			code, reason := 0, ""
			if closeErr != nil {
				code, reason = closeErr.Code, closeErr.Text
			}
			cb.OnError(err)
			cb.OnClose(code, reason)
			return
		}

		cb.OnMessage(payload)
	}
}

// wsConn adapts a gorilla connection to the Conn interface.
type wsConn struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Abort() {
	// closing an already closed socket returns an error we do not care
	// about
	_ = c.conn.Close()
}
