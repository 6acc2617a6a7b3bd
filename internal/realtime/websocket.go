package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketTransport dials the server's websocket endpoint, carrying the
// user's id and role as query parameters for channel authorization.
type WebsocketTransport struct {
	endpoint string
	dialer   *websocket.Dialer
}

// NewWebsocketTransport creates a transport for the given ws:// or wss://
// endpoint.
func NewWebsocketTransport(endpoint string) *WebsocketTransport {
	return &WebsocketTransport{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

func (t *WebsocketTransport) Dial(ctx context.Context, id Identity) (Conn, error) {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime endpoint: %w", err)
	}

	q := u.Query()
	q.Set("userId", id.UserID)
	q.Set("userType", string(id.UserType))
	u.RawQuery = q.Encode()

	ws, resp, err := t.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == 401 || resp.StatusCode == 403) {
			return nil, fmt.Errorf("%w: %v", ErrAuthRejected, err)
		}
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	return &wsConn{ws: ws}, nil
}

// wsConn wraps a gorilla connection. Writes are serialized; gorilla
// permits at most one concurrent writer.
type wsConn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
}

func (c *wsConn) Read() (*Envelope, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, translateClose(err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	return &env, nil
}

func (c *wsConn) Write(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// translateClose maps websocket close codes onto the manager's error
// taxonomy: policy violation means the channel auth was rejected; a normal
// or going-away close means the server hung up deliberately.
func translateClose(err error) error {
	switch {
	case websocket.IsCloseError(err, websocket.ClosePolicyViolation):
		return fmt.Errorf("%w: %v", ErrAuthRejected, err)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseServiceRestart):
		return fmt.Errorf("%w: %v", ErrServerClosed, err)
	default:
		return err
	}
}
