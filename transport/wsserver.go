package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anp-network/anp-go/internal/metrics"
)

// Handler processes an inbound Envelope and returns the Ack to send back.
// The concrete handler is owned by whichever layer terminates the
// envelope's Tag: metaproto.Machine for TagMetaProtocol frames, e2ee for
// sealed application traffic.
type Handler func(ctx context.Context, env *Envelope) (*Ack, error)

// Server upgrades incoming HTTP connections to WebSocket and dispatches
// each Envelope it reads to handler, one connection goroutine at a time
// per connection.
type Server struct {
	handler      Handler
	upgrader     websocket.Upgrader
	readTimeout  time.Duration
	writeTimeout time.Duration

	conns   map[*websocket.Conn]bool
	connsMu sync.RWMutex
}

// NewServer creates a Server. CheckOrigin is permissive by default —
// callers serving across origins should replace Upgrader.CheckOrigin
// before calling Handler().
func NewServer(handler Handler) *Server {
	return &Server{
		handler: handler,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		readTimeout:  60 * time.Second,
		writeTimeout: 30 * time.Second,
		conns:        make(map[*websocket.Conn]bool),
	}
}

// Handler returns the http.Handler to mount at the agent's WebSocket
// endpoint (e.g. "/anp/ws").
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.addConn(conn)
		defer s.removeConn(conn)
		defer func() { _ = conn.Close() }()

		s.serve(r.Context(), conn)
	})
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return
		}

		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}

		if env.ID == "" || env.DID == "" {
			s.reply(conn, &Ack{Success: false, MessageID: env.ID, Error: ErrEnvelopeInvalid.Error()})
			continue
		}

		start := time.Now()
		ack, err := s.handler(ctx, &env)
		metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.MessagesProcessed.WithLabelValues("envelope", "failure").Inc()
			s.reply(conn, &Ack{Success: false, MessageID: env.ID, SessionID: env.SessionID, Error: err.Error()})
			continue
		}
		metrics.MessagesProcessed.WithLabelValues("envelope", "success").Inc()
		s.reply(conn, ack)
	}
}

func (s *Server) reply(conn *websocket.Conn, ack *Ack) {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return
	}
	_ = conn.WriteJSON(ack)
}

func (s *Server) addConn(conn *websocket.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = true
}

func (s *Server) removeConn(conn *websocket.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

// ConnectionCount reports the number of currently-upgraded connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// Len satisfies internal/health.SizeReporter so a server's live
// connection count can be exposed through the same health surface as the
// DID cache and nonce window.
func (s *Server) Len() int { return s.ConnectionCount() }

// Close sends a close frame to every tracked connection.
func (s *Server) Close() error {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	for conn := range s.conns {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	s.conns = make(map[*websocket.Conn]bool)
	return nil
}
