// Package transport talks JSON-RPC to substrate nodes over websockets and
// exposes the runtime APIs a transfer needs.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrFeatureNotSupported is returned when the node lacks a runtime API.
	ErrFeatureNotSupported = errors.New("feature not supported by runtime")
	ErrConnectionClosed    = errors.New("connection closed")
	ErrNoEndpoint          = errors.New("no reachable endpoint")
)

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Conn is a JSON-RPC client connection to one node.
type Conn struct {
	Endpoint string

	ws      *websocket.Conn
	timeout time.Duration
	nextID  atomic.Uint64

	writeMu   sync.Mutex
	pendingMu sync.Mutex
	pending   map[uint64]chan *response

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
	logger    *log.Logger
}

// Dial opens a connection to endpoint. timeout bounds every Call that has
// no earlier context deadline; zero disables it.
func Dial(ctx context.Context, endpoint string, timeout time.Duration, logger *log.Logger) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Conn{
		Endpoint: endpoint,
		ws:       ws,
		timeout:  timeout,
		pending:  make(map[uint64]chan *response),
		closed:   make(chan struct{}),
		logger:   logger,
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Printf("Ignoring malformed message from %s: %v", c.Endpoint, err)
			continue
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.pendingMu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.closed)
		c.ws.Close()
	})
}

// Call invokes method and decodes the result into result, which may be nil.
func (c *Conn) Call(ctx context.Context, method string, result any, params ...any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if params == nil {
		params = []any{}
	}

	id := c.nextID.Add(1)
	ch := make(chan *response, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.ws.WriteJSON(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	case <-c.closed:
		return fmt.Errorf("%w: %v", ErrConnectionClosed, c.closeErr)
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// Close closes the connection; pending calls fail with ErrConnectionClosed.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.shutdown(ErrConnectionClosed)
	return nil
}

// Transport opens and releases node connections.
type Transport interface {
	Connect(ctx context.Context, endpoints []string) (*Conn, error)
	Disconnect(conn *Conn) error
}

// WebsocketTransport dials endpoints in order until one answers.
type WebsocketTransport struct {
	RequestTimeout time.Duration
	Logger         *log.Logger
}

func (t *WebsocketTransport) logger() *log.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return log.Default()
}

func (t *WebsocketTransport) Connect(ctx context.Context, endpoints []string) (*Conn, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("%w: no endpoints configured", ErrNoEndpoint)
	}
	var errs []error
	for _, endpoint := range endpoints {
		conn, err := Dial(ctx, endpoint, t.RequestTimeout, t.logger())
		if err == nil {
			return conn, nil
		}
		t.logger().Printf("Failed to connect to %s: %v", endpoint, err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrNoEndpoint, errors.Join(errs...))
}

func (t *WebsocketTransport) Disconnect(conn *Conn) error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}
