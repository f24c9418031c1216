package game

import (
	"time"

	"github.com/quintet-games/quintet/internal/board"
)

// EventType identifies a game domain event. Event type strings double as
// wire message types in the transport layer.
type EventType string

const (
	EventRoomCreated       EventType = "room_created"
	EventRoomJoined        EventType = "room_joined"
	EventPlayerJoined      EventType = "player_joined"
	EventGameStart         EventType = "game_start"
	EventCardReceived      EventType = "card_received"
	EventOpponentCardCount EventType = "opponent_card_count"
	EventMoveMade          EventType = "move_made"
	EventTrapTriggered     EventType = "trap_triggered"
	EventGameEnd           EventType = "game_end"
	EventCardUsed          EventType = "card_used"
	EventCardUsedOnYou     EventType = "card_used_on_you"
	EventTurnChange        EventType = "turn_change"
	EventGameRestart       EventType = "game_restart"
	EventPlayerLeft        EventType = "player_left"
	EventOpponentLeft      EventType = "opponent_left"
	EventChat              EventType = "chat"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is any domain event produced by a session command.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Delivery pairs an event with the identity it must be delivered to. The
// core resolves audiences down to concrete identities so the transport
// layer only has to route.
type Delivery struct {
	To    string
	Event Event
}

type stamp struct{ at time.Time }

func newStamp() stamp { return stamp{at: time.Now()} }

// Timestamp returns when the event was produced.
func (s stamp) Timestamp() time.Time { return s.at }

// RoomCreatedEvent is sent to the creator of a fresh room.
type RoomCreatedEvent struct {
	RoomID    string `json:"roomId"`
	SeatIndex int    `json:"seatIndex"`
	stamp
}

func (RoomCreatedEvent) EventType() EventType { return EventRoomCreated }

// NewRoomCreatedEvent creates a new room created event.
func NewRoomCreatedEvent(roomID string, seatIndex int) RoomCreatedEvent {
	return RoomCreatedEvent{RoomID: roomID, SeatIndex: seatIndex, stamp: newStamp()}
}

// RoomJoinedEvent confirms a join to the joining seat only.
type RoomJoinedEvent struct {
	RoomID    string `json:"roomId"`
	SeatIndex int    `json:"seatIndex"`
	stamp
}

func (RoomJoinedEvent) EventType() EventType { return EventRoomJoined }

// NewRoomJoinedEvent creates a new room joined event.
func NewRoomJoinedEvent(roomID string, seatIndex int) RoomJoinedEvent {
	return RoomJoinedEvent{RoomID: roomID, SeatIndex: seatIndex, stamp: newStamp()}
}

// PlayerJoinedEvent announces the updated seat list to the room.
type PlayerJoinedEvent struct {
	Seats []SeatInfo `json:"seats"`
	stamp
}

func (PlayerJoinedEvent) EventType() EventType { return EventPlayerJoined }

// NewPlayerJoinedEvent creates a new player joined event.
func NewPlayerJoinedEvent(seats []SeatInfo) PlayerJoinedEvent {
	return PlayerJoinedEvent{Seats: seats, stamp: newStamp()}
}

// GameStartEvent carries the full initial state. Traps are filtered per
// recipient, so each seat receives its own copy.
type GameStartEvent struct {
	Turn      int         `json:"currentTurn"`
	Seats     []SeatInfo  `json:"seats"`
	Board     board.Board `json:"board"`
	Hand      []Card      `json:"hand"`
	Obstacles []Obstacle  `json:"obstacles"`
	Traps     []Trap      `json:"traps"`
	stamp
}

func (GameStartEvent) EventType() EventType { return EventGameStart }

// NewGameStartEvent creates a new game start event for one recipient.
func NewGameStartEvent(s *Session, seat int) GameStartEvent {
	return GameStartEvent{
		Turn:      s.Turn,
		Seats:     s.SeatInfos(),
		Board:     s.Board,
		Hand:      s.Hand(seat),
		Obstacles: s.Obstacles,
		Traps:     s.TrapsVisibleTo(seat),
		stamp:     newStamp(),
	}
}

// CardReceivedEvent delivers a drawn card to the requester only.
type CardReceivedEvent struct {
	Card      Card `json:"card"`
	HandCount int  `json:"handCount"`
	stamp
}

func (CardReceivedEvent) EventType() EventType { return EventCardReceived }

// NewCardReceivedEvent creates a new card received event.
func NewCardReceivedEvent(card Card, handCount int) CardReceivedEvent {
	return CardReceivedEvent{Card: card, HandCount: handCount, stamp: newStamp()}
}

// OpponentCardCountEvent tells a seat how many cards the other holds.
type OpponentCardCountEvent struct {
	Count int `json:"count"`
	stamp
}

func (OpponentCardCountEvent) EventType() EventType { return EventOpponentCardCount }

// NewOpponentCardCountEvent creates a new opponent card count event.
func NewOpponentCardCountEvent(count int) OpponentCardCountEvent {
	return OpponentCardCountEvent{Count: count, stamp: newStamp()}
}

// MoveMadeEvent is broadcast after every plainly accepted move.
type MoveMadeEvent struct {
	Row   int         `json:"row"`
	Col   int         `json:"col"`
	Seat  int         `json:"seat"`
	Turn  int         `json:"currentTurn"`
	Board board.Board `json:"board"`
	stamp
}

func (MoveMadeEvent) EventType() EventType { return EventMoveMade }

// NewMoveMadeEvent creates a new move made event.
func NewMoveMadeEvent(res MoveResult, b board.Board) MoveMadeEvent {
	return MoveMadeEvent{Row: res.Row, Col: res.Col, Seat: res.Seat, Turn: res.NextTurn, Board: b, stamp: newStamp()}
}

// TrapTriggeredEvent is broadcast when a move lands on an opposing trap.
type TrapTriggeredEvent struct {
	Row          int         `json:"row"`
	Col          int         `json:"col"`
	TrapOwner    int         `json:"trapOwner"`
	Victim       int         `json:"victim"`
	Board        board.Board `json:"board"`
	Turn         int         `json:"currentTurn"`
	RemovedTraps []CellRef   `json:"removedTraps"`
	stamp
}

func (TrapTriggeredEvent) EventType() EventType { return EventTrapTriggered }

// NewTrapTriggeredEvent creates a new trap triggered event.
func NewTrapTriggeredEvent(res MoveResult, b board.Board) TrapTriggeredEvent {
	return TrapTriggeredEvent{
		Row:          res.Row,
		Col:          res.Col,
		TrapOwner:    res.TrapOwner,
		Victim:       res.Seat,
		Board:        b,
		Turn:         res.NextTurn,
		RemovedTraps: []CellRef{{Row: res.Row, Col: res.Col}},
		stamp:        newStamp(),
	}
}

// GameEndEvent is broadcast when a winning line is completed.
type GameEndEvent struct {
	Winner     int         `json:"winner"`
	WinnerName string      `json:"winnerName"`
	Board      board.Board `json:"board"`
	stamp
}

func (GameEndEvent) EventType() EventType { return EventGameEnd }

// NewGameEndEvent creates a new game end event.
func NewGameEndEvent(winner int, winnerName string, b board.Board) GameEndEvent {
	return GameEndEvent{Winner: winner, WinnerName: winnerName, Board: b, stamp: newStamp()}
}

// CardUsedEvent reports an applied card effect. Board-mutating effects go
// to both seats with per-seat trap filtering; hint and peek results go to
// the acting seat only, with detail stripped for the opponent.
type CardUsedEvent struct {
	Kind       CardKind    `json:"kind"`
	Seat       int         `json:"seat"`
	PlayerName string      `json:"playerName"`
	Target     *CellRef    `json:"target,omitempty"`
	Moved      []StoneMove `json:"moved,omitempty"`
	Undone     *MoveRecord `json:"undone,omitempty"`
	Hint       *CellRef    `json:"hint,omitempty"`
	PeekedKind *CardKind   `json:"peekedKind,omitempty"`
	NoPeek     bool        `json:"noCards,omitempty"`
	Board      board.Board `json:"board"`
	Obstacles  []Obstacle  `json:"obstacles"`
	Traps      []Trap      `json:"traps"`
	Turn       int         `json:"currentTurn"`
	stamp
}

func (CardUsedEvent) EventType() EventType { return EventCardUsed }

// NewCardUsedEvent creates a card used event for one recipient seat.
// The private fields (hint target, peeked kind, trap placement target)
// are included only when the recipient is the acting seat.
func NewCardUsedEvent(s *Session, res EffectResult, recipient int) CardUsedEvent {
	ev := CardUsedEvent{
		Kind:       res.Kind,
		Seat:       res.Seat,
		PlayerName: s.Seats[res.Seat].Name,
		Moved:      res.Moved,
		Undone:     res.Undone,
		Board:      s.Board,
		Obstacles:  s.Obstacles,
		Traps:      s.TrapsVisibleTo(recipient),
		Turn:       s.Turn,
		stamp:      newStamp(),
	}
	actor := recipient == res.Seat
	if res.Kind != CardTrap || actor {
		ev.Target = res.Target
	}
	if actor {
		ev.Hint = res.Hint
		ev.PeekedKind = res.PeekedKind
		ev.NoPeek = res.Kind == CardPeek && res.PeekedKind == nil
	}
	return ev
}

// CardUsedOnYouEvent warns a seat that it was the target of a peek,
// without revealing which card was seen.
type CardUsedOnYouEvent struct {
	Kind   CardKind `json:"kind"`
	ByName string   `json:"byName"`
	stamp
}

func (CardUsedOnYouEvent) EventType() EventType { return EventCardUsedOnYou }

// NewCardUsedOnYouEvent creates a new card used on you event.
func NewCardUsedOnYouEvent(kind CardKind, byName string) CardUsedOnYouEvent {
	return CardUsedOnYouEvent{Kind: kind, ByName: byName, stamp: newStamp()}
}

// TurnChangeEvent is broadcast after a card passes the turn.
type TurnChangeEvent struct {
	Turn int `json:"currentTurn"`
	stamp
}

func (TurnChangeEvent) EventType() EventType { return EventTurnChange }

// NewTurnChangeEvent creates a new turn change event.
func NewTurnChangeEvent(turn int) TurnChangeEvent {
	return TurnChangeEvent{Turn: turn, stamp: newStamp()}
}

// GameRestartEvent carries the reset state after an explicit restart.
type GameRestartEvent struct {
	Turn      int         `json:"currentTurn"`
	Board     board.Board `json:"board"`
	Obstacles []Obstacle  `json:"obstacles"`
	Traps     []Trap      `json:"traps"`
	stamp
}

func (GameRestartEvent) EventType() EventType { return EventGameRestart }

// NewGameRestartEvent creates a new game restart event.
func NewGameRestartEvent(s *Session) GameRestartEvent {
	return GameRestartEvent{
		Turn:      s.Turn,
		Board:     s.Board,
		Obstacles: s.Obstacles,
		Traps:     nil,
		stamp:     newStamp(),
	}
}

// PlayerLeftEvent announces a departure to the remaining room members.
type PlayerLeftEvent struct {
	Name  string     `json:"name"`
	Seats []SeatInfo `json:"seats"`
	stamp
}

func (PlayerLeftEvent) EventType() EventType { return EventPlayerLeft }

// NewPlayerLeftEvent creates a new player left event.
func NewPlayerLeftEvent(name string, seats []SeatInfo) PlayerLeftEvent {
	return PlayerLeftEvent{Name: name, Seats: seats, stamp: newStamp()}
}

// OpponentLeftEvent tells the last remaining seat the game is paused.
type OpponentLeftEvent struct {
	Message string `json:"message"`
	stamp
}

func (OpponentLeftEvent) EventType() EventType { return EventOpponentLeft }

// NewOpponentLeftEvent creates a new opponent left event.
func NewOpponentLeftEvent(message string) OpponentLeftEvent {
	return OpponentLeftEvent{Message: message, stamp: newStamp()}
}

// ChatEvent relays a chat line to the room. Chat carries no game state.
type ChatEvent struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	stamp
}

func (ChatEvent) EventType() EventType { return EventChat }

// NewChatEvent creates a new chat event.
func NewChatEvent(name, message string) ChatEvent {
	return ChatEvent{Name: name, Message: message, stamp: newStamp()}
}
