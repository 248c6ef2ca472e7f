package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/anp-network/anp-go/internal/metrics"
)

// Client maintains a persistent WebSocket connection to a remote agent
// and matches outbound Envelopes to their Ack by message ID.
type Client struct {
	url  string
	conn *websocket.Conn
	mu   sync.Mutex

	dialTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	pending   map[string]chan *Ack
	pendingMu sync.RWMutex

	connected bool
	connMu    sync.RWMutex
}

// NewClient creates a WebSocket transport client for url
// (e.g. "wss://agent.example.com/anp/ws").
func NewClient(url string) *Client {
	return &Client{
		url:          url,
		dialTimeout:  30 * time.Second,
		readTimeout:  60 * time.Second,
		writeTimeout: 30 * time.Second,
		pending:      make(map[string]chan *Ack),
	}
}

// Connect dials the remote endpoint and starts the background read loop.
// Calling Connect on an already-connected Client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := &websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("transport: dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("transport: dial failed: %w", err)
	}

	c.conn = conn
	c.setConnected(true)
	go c.readLoop()
	return nil
}

// Send writes env and blocks for its Ack, honoring ctx and the client's
// read timeout, whichever elapses first. The transport itself does not
// interpret env's Tag or Sealed fields — that is metaproto/e2ee's job on
// either end of the wire.
func (c *Client) Send(ctx context.Context, env *Envelope) (*Ack, error) {
	if env == nil || env.DID == "" {
		return nil, ErrEnvelopeInvalid
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}

	if err := c.ensureConnected(ctx); err != nil {
		return nil, fmt.Errorf("transport: connect: %w", err)
	}

	respChan := make(chan *Ack, 1)
	c.pendingMu.Lock()
	c.pending[env.ID] = respChan
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, env.ID)
		c.pendingMu.Unlock()
	}()

	start := time.Now()
	if err := c.write(env); err != nil {
		metrics.MessagesProcessed.WithLabelValues("envelope", "failure").Inc()
		return nil, fmt.Errorf("transport: send: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ack := <-respChan:
		metrics.MessagesProcessed.WithLabelValues("envelope", ackStatus(ack)).Inc()
		metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
		return ack, nil
	case <-time.After(c.readTimeout):
		metrics.MessagesProcessed.WithLabelValues("envelope", "failure").Inc()
		return nil, ErrResponseTimeout
	}
}

func ackStatus(ack *Ack) string {
	if ack != nil && ack.Success {
		return "success"
	}
	return "failure"
}

func (c *Client) ensureConnected(ctx context.Context) error {
	if c.isConnected() {
		return nil
	}
	return c.Connect(ctx)
}

func (c *Client) write(env *Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(env); err != nil {
		c.setConnected(false)
		return err
	}
	metrics.MessageSize.Observe(float64(len(env.Body)))
	return nil
}

func (c *Client) readLoop() {
	defer c.setConnected(false)

	for c.isConnected() {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return
		}

		var ack Ack
		if err := conn.ReadJSON(&ack); err != nil {
			return
		}

		c.pendingMu.RLock()
		if ch, ok := c.pending[ack.MessageID]; ok {
			select {
			case ch <- &ack:
			default:
			}
		}
		c.pendingMu.RUnlock()
	}
}

// Close sends a normal-closure frame and tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	closeErr := c.conn.Close()
	c.conn = nil
	c.setConnected(false)
	if err != nil {
		return err
	}
	return closeErr
}

func (c *Client) isConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.connected = v
}
