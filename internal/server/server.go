package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quintet-games/quintet/internal/game"
	"github.com/quintet-games/quintet/internal/registry"
)

// Server accepts WebSocket connections and routes game deliveries back
// to the right players.
type Server struct {
	upgrader   websocket.Upgrader
	registry   *registry.Registry
	logger     zerolog.Logger
	httpServer *http.Server

	mu          sync.RWMutex
	connections map[string]*Connection // identity -> connection

	register   chan *Connection
	unregister chan *Connection
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer creates a new WebSocket server in front of the registry.
func NewServer(logger zerolog.Logger, reg *registry.Registry) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The join code is the only admission control; origins are
				// not restricted.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		registry:    reg,
		logger:      logger.With().Str("component", "server").Logger(),
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the WebSocket server and blocks until it stops.
func (s *Server) Start(addr string) error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	s.logger.Info().Str("addr", addr).Msg("Starting WebSocket server")
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down, closing every connection.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for _, conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn.Identity()] = conn
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info().Int("total", total).Msg("Client connected")

		case conn := <-s.unregister:
			s.mu.Lock()
			_, known := s.connections[conn.Identity()]
			if known {
				delete(s.connections, conn.Identity())
			}
			total := len(s.connections)
			s.mu.Unlock()

			if known {
				// Dropping the socket vacates the seat.
				deliveries, err := s.registry.Leave(conn.Identity())
				if err == nil {
					s.Dispatch(deliveries)
				}
				_ = conn.Close()
				s.logger.Info().Int("total", total).Msg("Client disconnected")
			}

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := NewConnection(conn, uuid.NewString(), s.logger, s)
	s.register <- client
	client.Start()
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Dispatch routes deliveries to their connections. Deliveries addressed
// to identities that already disconnected are dropped.
func (s *Server) Dispatch(deliveries []game.Delivery) {
	for _, d := range deliveries {
		s.mu.RLock()
		conn := s.connections[d.To]
		s.mu.RUnlock()
		if conn == nil {
			continue
		}
		msg, err := NewEventMessage(d.Event)
		if err != nil {
			s.logger.Error().Err(err).Str("event", d.Event.EventType().String()).Msg("Failed to encode event")
			continue
		}
		_ = conn.SendMessage(msg)
	}
}

// SendToIdentity sends one message to a single connected player.
func (s *Server) SendToIdentity(identity string, msg *Message) error {
	s.mu.RLock()
	conn := s.connections[identity]
	s.mu.RUnlock()
	if conn == nil {
		return ErrConnectionClosed
	}
	return conn.SendMessage(msg)
}
