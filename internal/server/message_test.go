package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quintet-games/quintet/internal/game"
	"github.com/quintet-games/quintet/internal/registry"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(MessageTypeMakeMove, MakeMoveData{RoomID: "ABC234", Row: 7, Col: 7})
	require.NoError(t, err)
	assert.Equal(t, MessageTypeMakeMove, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var data MakeMoveData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "ABC234", data.RoomID)
	assert.Equal(t, 7, data.Row)
	assert.Equal(t, 7, data.Col)
}

func TestNewEventMessage_ReusesEventType(t *testing.T) {
	ev := game.NewChatEvent("Alice", "hello")
	msg, err := NewEventMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, MessageType("chat"), msg.Type)

	var data game.ChatEvent
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "Alice", data.Name)
	assert.Equal(t, "hello", data.Message)
}

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(MessageTypeCreateRoom, CreateRoomData{PlayerName: "Alice"})
	require.NoError(t, err)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, MessageTypeCreateRoom, decoded.Type)

	var data CreateRoomData
	require.NoError(t, json.Unmarshal(decoded.Data, &data))
	assert.Equal(t, "Alice", data.PlayerName)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{registry.ErrRoomNotFound, "invalid_room"},
		{registry.ErrNotSeated, "not_seated"},
		{game.ErrNotYourTurn, "not_your_turn"},
		{game.ErrInvalidTarget, "invalid_target"},
		{game.ErrInvalidCardIndex, "invalid_card_index"},
		{game.ErrRuleViolation, "rule_violation"},
		{game.ErrGameNotActive, "game_not_active"},
		{game.ErrRoomFull, "room_full"},
		{game.ErrSeatsIncomplete, "seats_incomplete"},
		{errors.New("disk on fire"), "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestErrorCode_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("placing stone: %w", game.ErrInvalidTarget)
	assert.Equal(t, "invalid_target", errorCode(wrapped))
}
