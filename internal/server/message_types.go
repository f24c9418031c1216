package server

// Note: server -> client game events reuse the event type strings defined
// in internal/game/events.go and are sent as WebSocket messages with the
// same envelope.

// MessageType represents a WebSocket message type with type safety.
type MessageType string

// Client to server message types.
const (
	MessageTypeCreateRoom     MessageType = "create_room"
	MessageTypeJoinRoom       MessageType = "join_room"
	MessageTypeMakeMove       MessageType = "make_move"
	MessageTypeUseCard        MessageType = "use_card"
	MessageTypeRequestCard    MessageType = "request_card"
	MessageTypeRestartGame    MessageType = "restart_game"
	MessageTypeChat           MessageType = "chat"
	MessageTypeSetCardWeights MessageType = "set_card_weights"
)

// Server to client message types that are not game events.
const (
	MessageTypeError MessageType = "error"
)

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	return string(mt)
}
