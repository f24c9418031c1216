package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quintet-games/quintet/internal/game"
	"github.com/quintet-games/quintet/internal/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to one player. The
// identity is minted server-side at upgrade time and is what seats the
// player in a room.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	identity  string
	name      string
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	server    *Server
}

// NewConnection creates a new connection wrapper.
func NewConnection(conn *websocket.Conn, identity string, logger zerolog.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		identity: identity,
		logger:   logger.With().Str("component", "conn").Str("identity", identity).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		server:   server,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Identity returns the server-minted player identity.
func (c *Connection) Identity() string {
	return c.identity
}

// SetName records the display name supplied on create/join.
func (c *Connection) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Name returns the recorded display name.
func (c *Connection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed; expected during shutdown.
			c.logger.Debug().Interface("recover", r).Msg("Send on closed connection")
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn().Msg("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client.
func (c *Connection) readPump() {
	defer func() {
		c.server.unregister <- c
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Msg("Failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one inbound message.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug().Str("type", msg.Type.String()).Msg("Received message")

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeMakeMove:
		var data MakeMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse move data")
			return
		}
		c.deliver(c.server.registry.SubmitMove(data.RoomID, c.identity, data.Row, data.Col))

	case MessageTypeUseCard:
		var data UseCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse card data")
			return
		}
		c.deliver(c.server.registry.UseCard(data.RoomID, c.identity, data.CardIndex, data.Target))

	case MessageTypeRequestCard:
		var data RequestCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse request card data")
			return
		}
		c.deliver(c.server.registry.RequestCard(data.RoomID, c.identity))

	case MessageTypeRestartGame:
		var data RestartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse restart data")
			return
		}
		c.deliver(c.server.registry.Restart(data.RoomID, c.identity))

	case MessageTypeChat:
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse chat data")
			return
		}
		c.deliver(c.server.registry.Chat(data.RoomID, c.identity, data.Message))

	case MessageTypeSetCardWeights:
		var data SetCardWeightsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse weights data")
			return
		}
		c.handleSetCardWeights(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	name := data.PlayerName
	if name == "" {
		name = "Player"
	}
	c.SetName(name)

	_, deliveries, err := c.server.registry.Create(c.identity, name)
	c.deliver(deliveries, err)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	name := data.PlayerName
	if name == "" {
		name = "Player"
	}
	c.SetName(name)

	c.deliver(c.server.registry.Join(data.RoomID, c.identity, name))
}

func (c *Connection) handleSetCardWeights(data SetCardWeightsData) {
	weights := make(game.Weights, len(data.Weights))
	for kind, weight := range data.Weights {
		weights[game.CardKind(kind)] = weight
	}
	if err := c.server.registry.SetWeights(weights); err != nil {
		c.sendError("invalid_weights", err.Error())
		return
	}
	c.logger.Info().Interface("weights", data.Weights).Msg("Card weights changed by client")
}

// deliver routes command deliveries, reporting a failure to the sender
// only: a rejected command never leaks to the other seat.
func (c *Connection) deliver(deliveries []game.Delivery, err error) {
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.server.Dispatch(deliveries)
}

// sendError sends an error message to the client.
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to create error message")
		return
	}

	_ = c.SendMessage(errorMsg)
}

// errorCode maps a command failure onto the wire error taxonomy.
func errorCode(err error) string {
	switch {
	case errors.Is(err, registry.ErrRoomNotFound):
		return "invalid_room"
	case errors.Is(err, registry.ErrNotSeated):
		return "not_seated"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, game.ErrInvalidCardIndex):
		return "invalid_card_index"
	case errors.Is(err, game.ErrRuleViolation):
		return "rule_violation"
	case errors.Is(err, game.ErrGameNotActive):
		return "game_not_active"
	case errors.Is(err, game.ErrRoomFull):
		return "room_full"
	case errors.Is(err, game.ErrSeatsIncomplete):
		return "seats_incomplete"
	default:
		return "internal_error"
	}
}
