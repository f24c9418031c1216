package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/quintet-games/quintet/internal/board"
)

var (
	ErrGameNotActive    = errors.New("game is not in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrRuleViolation    = errors.New("rule violation")
	ErrSeatsIncomplete  = errors.New("both seats must be filled")
	ErrRoomFull         = errors.New("room is full")
)

// Lifecycle is the session state machine: waiting for the second seat,
// playing, or ended with a winner.
type Lifecycle string

const (
	StateAwaitingPlayers Lifecycle = "awaiting_players"
	StatePlaying         Lifecycle = "playing"
	StateEnded           Lifecycle = "ended"
)

// NoSeat marks an empty winner slot or trap owner.
const NoSeat = -1

// Seat is one of the two fixed participant slots in a session.
type Seat struct {
	Identity string `json:"-"`
	Name     string `json:"name"`
	Hand     []Card `json:"-"`
}

// SeatInfo is the publicly visible part of a seat.
type SeatInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// CellRef addresses a single board cell, used for card targets.
type CellRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Obstacle is a permanent unowned marker that blocks placement. Visible
// to both seats.
type Obstacle struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Trap is a hidden marker. It is visible only to the seat that placed it
// until an opposing stone lands on it.
type Trap struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Owner int `json:"owner"`
}

// MoveRecord is one entry of the append-only move history. TrapTrigger
// records that the stone was immediately removed by an opposing trap.
type MoveRecord struct {
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	Seat        int  `json:"seat"`
	TrapTrigger bool `json:"trapTrigger,omitempty"`
}

// Session holds the complete state of one match: board, seats, card
// hands, overlays and turn ownership. A session is not safe for
// concurrent use; the registry serializes all commands against it.
type Session struct {
	RoomID    string
	Seats     []Seat
	Board     board.Board
	Obstacles []Obstacle
	Traps     []Trap
	Turn      int
	Winner    int
	History   []MoveRecord
	State     Lifecycle

	rng     *rand.Rand
	weights Weights
}

// NewSession creates a session awaiting its second seat. The rng drives
// every random decision in the session (draws, storm, peek, starting
// seat), so injecting a seeded source makes a whole match reproducible.
func NewSession(roomID string, rng *rand.Rand, weights Weights) *Session {
	return &Session{
		RoomID:  roomID,
		Winner:  NoSeat,
		State:   StateAwaitingPlayers,
		rng:     rng,
		weights: weights.Clone(),
	}
}

// SetWeights replaces the draw distribution for future draws.
func (s *Session) SetWeights(w Weights) {
	s.weights = w.Clone()
}

// SeatIndex returns the seat index for an identity, or NoSeat.
func (s *Session) SeatIndex(identity string) int {
	for i := range s.Seats {
		if s.Seats[i].Identity == identity {
			return i
		}
	}
	return NoSeat
}

// SeatInfos returns the public view of the filled seats.
func (s *Session) SeatInfos() []SeatInfo {
	out := make([]SeatInfo, len(s.Seats))
	for i, seat := range s.Seats {
		out[i] = SeatInfo{Index: i, Name: seat.Name}
	}
	return out
}

// AddSeat fills the next free seat and returns its index.
func (s *Session) AddSeat(identity, name string) (int, error) {
	if len(s.Seats) >= 2 {
		return NoSeat, ErrRoomFull
	}
	s.Seats = append(s.Seats, Seat{Identity: identity, Name: name})
	return len(s.Seats) - 1, nil
}

// RemoveSeat drops the seat held by identity. A game in progress pauses:
// the session falls back to awaiting players so no further commands are
// accepted until the room refills or is destroyed.
func (s *Session) RemoveSeat(identity string) (Seat, bool) {
	idx := s.SeatIndex(identity)
	if idx == NoSeat {
		return Seat{}, false
	}
	removed := s.Seats[idx]
	s.Seats = append(s.Seats[:idx], s.Seats[idx+1:]...)
	if s.State == StatePlaying {
		s.State = StateAwaitingPlayers
	}
	return removed, true
}

// Start resets all match state and begins play with a random first turn.
// Restarting mid-game goes through the same path.
func (s *Session) Start() error {
	if len(s.Seats) != 2 {
		return ErrSeatsIncomplete
	}
	s.Board = board.Board{}
	s.Obstacles = nil
	s.Traps = nil
	s.History = nil
	s.Winner = NoSeat
	for i := range s.Seats {
		s.Seats[i].Hand = nil
	}
	s.Turn = s.rng.IntN(2)
	s.State = StatePlaying
	return nil
}

// MoveOutcome classifies an accepted move.
type MoveOutcome string

const (
	MoveAccepted      MoveOutcome = "accepted"
	MoveTrapTriggered MoveOutcome = "trap_triggered"
	MoveWin           MoveOutcome = "win"
)

// MoveResult describes what an accepted move did to the session.
type MoveResult struct {
	Outcome  MoveOutcome
	Row, Col int
	Seat     int
	// TrapOwner is the seat whose trap fired; only set for trap triggers.
	TrapOwner int
	NextTurn  int
}

// SubmitMove places a stone for seat at (row, col).
//
// Every non-winning accepted move advances the turn exactly once, whether
// or not the stone survives a trap. A winning move ends the game without
// advancing the turn. Any precondition failure rejects the move with the
// session untouched.
func (s *Session) SubmitMove(seat, row, col int) (MoveResult, error) {
	if s.State != StatePlaying || s.Winner != NoSeat {
		return MoveResult{}, ErrGameNotActive
	}
	if seat != s.Turn {
		return MoveResult{}, ErrNotYourTurn
	}
	if !board.InBounds(row, col) {
		return MoveResult{}, fmt.Errorf("%w: (%d,%d) out of bounds", ErrInvalidTarget, row, col)
	}
	if s.Board.Get(row, col) != board.Empty {
		return MoveResult{}, fmt.Errorf("%w: cell (%d,%d) is occupied", ErrInvalidTarget, row, col)
	}
	if s.obstacleAt(row, col) {
		return MoveResult{}, fmt.Errorf("%w: cell (%d,%d) is blocked", ErrInvalidTarget, row, col)
	}

	s.Board.Set(row, col, board.SeatCell(seat))

	// Only an opposing trap fires; stepping on your own trap is harmless
	// and leaves it armed.
	if trapIdx := s.trapAt(row, col); trapIdx >= 0 && s.Traps[trapIdx].Owner != seat {
		owner := s.Traps[trapIdx].Owner
		s.Traps = append(s.Traps[:trapIdx], s.Traps[trapIdx+1:]...)
		s.Board.Clear(row, col)
		s.History = append(s.History, MoveRecord{Row: row, Col: col, Seat: seat, TrapTrigger: true})
		s.Turn = 1 - seat
		return MoveResult{
			Outcome:   MoveTrapTriggered,
			Row:       row,
			Col:       col,
			Seat:      seat,
			TrapOwner: owner,
			NextTurn:  s.Turn,
		}, nil
	}

	if board.CheckLine(&s.Board, row, col, board.SeatCell(seat)) {
		s.Winner = seat
		s.State = StateEnded
		s.History = append(s.History, MoveRecord{Row: row, Col: col, Seat: seat})
		return MoveResult{
			Outcome:  MoveWin,
			Row:      row,
			Col:      col,
			Seat:     seat,
			NextTurn: s.Turn,
		}, nil
	}

	s.History = append(s.History, MoveRecord{Row: row, Col: col, Seat: seat})
	s.Turn = 1 - seat
	return MoveResult{
		Outcome:  MoveAccepted,
		Row:      row,
		Col:      col,
		Seat:     seat,
		NextTurn: s.Turn,
	}, nil
}

// DrawCard draws a weighted random card into the seat's hand.
func (s *Session) DrawCard(seat int) (Card, error) {
	if seat < 0 || seat >= len(s.Seats) {
		return Card{}, ErrInvalidTarget
	}
	if len(s.Seats[seat].Hand) >= MaxHandSize {
		return Card{}, fmt.Errorf("%w: hand is full", ErrRuleViolation)
	}
	card := s.weights.Draw(s.rng)
	s.Seats[seat].Hand = append(s.Seats[seat].Hand, card)
	return card, nil
}

// Hand returns the seat's current hand.
func (s *Session) Hand(seat int) []Card {
	if seat < 0 || seat >= len(s.Seats) {
		return nil
	}
	return s.Seats[seat].Hand
}

// TrapsVisibleTo returns the traps identity is allowed to see: only the
// seat's own traps. Obstacles are public; traps are not.
func (s *Session) TrapsVisibleTo(seat int) []Trap {
	var out []Trap
	for _, t := range s.Traps {
		if t.Owner == seat {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) obstacleAt(row, col int) bool {
	for _, o := range s.Obstacles {
		if o.Row == row && o.Col == col {
			return true
		}
	}
	return false
}

func (s *Session) trapAt(row, col int) int {
	for i, t := range s.Traps {
		if t.Row == row && t.Col == col {
			return i
		}
	}
	return NoSeat
}
