package server

import (
	"encoding/json"
	"time"

	"github.com/quintet-games/quintet/internal/game"
)

// Message is the base WebSocket message structure in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// NewEventMessage wraps a game event, reusing the event type as the
// message type.
func NewEventMessage(ev game.Event) (*Message, error) {
	return NewMessage(MessageType(ev.EventType()), ev)
}

// Client -> Server payloads

type CreateRoomData struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomData struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type MakeMoveData struct {
	RoomID string `json:"roomId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type UseCardData struct {
	RoomID    string        `json:"roomId"`
	CardIndex int           `json:"cardIndex"`
	Target    *game.CellRef `json:"target,omitempty"`
}

type RequestCardData struct {
	RoomID string `json:"roomId"`
}

type RestartGameData struct {
	RoomID string `json:"roomId"`
}

type ChatData struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type SetCardWeightsData struct {
	Weights map[string]int `json:"weights"`
}

// Server -> Client payloads that are not game events

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
