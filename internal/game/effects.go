package game

import (
	"fmt"

	"github.com/quintet-games/quintet/internal/board"
)

// Storm relocates between 3 and 5 stones, scaled by board population.
const (
	stormMinMoves = 3
	stormMaxMoves = 5
	stormDivisor  = 3
)

// centerOffsets is the hint search pattern around the board center, in
// priority order: center first, then spiralling outward by row.
var centerOffsets = [5]int{0, -1, 1, -2, 2}

// StoneMove records one storm relocation.
type StoneMove struct {
	From  CellRef    `json:"from"`
	To    CellRef    `json:"to"`
	Owner board.Cell `json:"owner"`
}

// EffectResult describes an applied card effect. Only the fields relevant
// to the card's kind are populated.
type EffectResult struct {
	Kind CardKind
	Seat int

	// Target is the cell acted on (convert, obstacle, trap).
	Target *CellRef
	// ConvertedFrom is the previous owner of a converted cell.
	ConvertedFrom board.Cell
	// Moved lists storm relocations in the order they were applied.
	Moved []StoneMove
	// Undone is the popped history record.
	Undone *MoveRecord
	// Hint is the suggested cell; nil when the center area is full.
	Hint *CellRef
	// PeekedKind is the revealed opponent card; nil when the opponent
	// holds no cards.
	PeekedKind *CardKind

	NextTurn int
}

// UseCard plays the card at handIndex for seat, applying exactly one of
// the seven effects or rejecting with the session untouched.
//
// The card is removed from the hand before the effect is evaluated; on
// any rejection it is reinserted at its original index so hand order
// survives the round-trip. Every applied effect except undo passes the
// turn; undo hands it back to the acting seat.
func (s *Session) UseCard(seat, handIndex int, target *CellRef) (EffectResult, error) {
	if s.State != StatePlaying || s.Winner != NoSeat {
		return EffectResult{}, ErrGameNotActive
	}
	if seat != s.Turn {
		return EffectResult{}, ErrNotYourTurn
	}
	hand := s.Seats[seat].Hand
	if handIndex < 0 || handIndex >= len(hand) {
		return EffectResult{}, fmt.Errorf("%w: %d", ErrInvalidCardIndex, handIndex)
	}

	card := hand[handIndex]
	s.Seats[seat].Hand = append(hand[:handIndex:handIndex], hand[handIndex+1:]...)

	result, err := s.applyEffect(seat, card, target)
	if err != nil {
		// Reinsert at the original index; the rest of the hand keeps its order.
		hand = s.Seats[seat].Hand
		hand = append(hand, Card{})
		copy(hand[handIndex+1:], hand[handIndex:])
		hand[handIndex] = card
		s.Seats[seat].Hand = hand
		return EffectResult{}, err
	}

	if card.Kind == CardUndo {
		s.Turn = seat
	} else {
		s.Turn = 1 - seat
	}
	result.NextTurn = s.Turn
	return result, nil
}

func (s *Session) applyEffect(seat int, card Card, target *CellRef) (EffectResult, error) {
	result := EffectResult{Kind: card.Kind, Seat: seat}

	switch card.Kind {
	case CardConvert:
		if err := s.checkTarget(target); err != nil {
			return result, err
		}
		owner := s.Board.Get(target.Row, target.Col)
		if owner.Seat() != 1-seat {
			return result, fmt.Errorf("%w: target is not an opposing stone", ErrInvalidTarget)
		}
		s.Board.Set(target.Row, target.Col, board.SeatCell(seat))
		if board.CheckLine(&s.Board, target.Row, target.Col, board.SeatCell(seat)) {
			s.Board.Set(target.Row, target.Col, owner)
			return result, fmt.Errorf("%w: conversion would cause an immediate win", ErrRuleViolation)
		}
		result.Target = target
		result.ConvertedFrom = owner
		return result, nil

	case CardObstacle:
		if err := s.checkTarget(target); err != nil {
			return result, err
		}
		if s.Board.Get(target.Row, target.Col) != board.Empty || s.obstacleAt(target.Row, target.Col) {
			return result, fmt.Errorf("%w: cell already holds a stone or obstacle", ErrInvalidTarget)
		}
		s.Obstacles = append(s.Obstacles, Obstacle{Row: target.Row, Col: target.Col})
		result.Target = target
		return result, nil

	case CardStorm:
		return s.applyStorm(result)

	case CardUndo:
		if len(s.History) == 0 {
			return result, fmt.Errorf("%w: no moves to undo", ErrRuleViolation)
		}
		tail := s.History[len(s.History)-1]
		if tail.TrapTrigger && tail.Seat != seat {
			return result, fmt.Errorf("%w: cannot undo an opponent's trap trigger", ErrRuleViolation)
		}
		s.History = s.History[:len(s.History)-1]
		if !tail.TrapTrigger {
			// A trap-trigger record points at an already-empty cell.
			s.Board.Clear(tail.Row, tail.Col)
		}
		result.Undone = &tail
		return result, nil

	case CardTrap:
		if err := s.checkTarget(target); err != nil {
			return result, err
		}
		if s.Board.Get(target.Row, target.Col) != board.Empty ||
			s.trapAt(target.Row, target.Col) >= 0 ||
			s.obstacleAt(target.Row, target.Col) {
			return result, fmt.Errorf("%w: cell already holds a stone, trap or obstacle", ErrInvalidTarget)
		}
		s.Traps = append(s.Traps, Trap{Row: target.Row, Col: target.Col, Owner: seat})
		result.Target = target
		return result, nil

	case CardHint:
		center := board.Size / 2
		for _, dr := range centerOffsets {
			for _, dc := range centerOffsets {
				r, c := center+dr, center+dc
				if board.InBounds(r, c) && s.Board.Get(r, c) == board.Empty && !s.obstacleAt(r, c) {
					result.Hint = &CellRef{Row: r, Col: c}
					return result, nil
				}
			}
		}
		// The hint always applies, even if nothing was found.
		return result, nil

	case CardPeek:
		opponent := s.Seats[1-seat].Hand
		if len(opponent) > 0 {
			kind := opponent[s.rng.IntN(len(opponent))].Kind
			result.PeekedKind = &kind
		}
		return result, nil

	default:
		return result, fmt.Errorf("%w: unknown card kind %q", ErrRuleViolation, card.Kind)
	}
}

func (s *Session) applyStorm(result EffectResult) (EffectResult, error) {
	stones := s.Board.Stones()
	if len(stones) < stormMinMoves {
		return result, fmt.Errorf("%w: fewer than %d stones on the board", ErrRuleViolation, stormMinMoves)
	}

	moveCount := len(stones) / stormDivisor
	if moveCount < stormMinMoves {
		moveCount = stormMinMoves
	}
	if moveCount > stormMaxMoves {
		moveCount = stormMaxMoves
	}
	if moveCount > len(stones) {
		moveCount = len(stones)
	}

	// Relocations are sequential: each pick sees the board as left by the
	// previous one, so a stone can land where another just vacated.
	pool := stones
	for i := 0; i < moveCount && len(pool) > 0; i++ {
		idx := s.rng.IntN(len(pool))
		stone := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)

		var empty []CellRef
		for r := 0; r < board.Size; r++ {
			for c := 0; c < board.Size; c++ {
				if s.Board.Get(r, c) == board.Empty && !s.obstacleAt(r, c) {
					empty = append(empty, CellRef{Row: r, Col: c})
				}
			}
		}
		if len(empty) == 0 {
			break
		}
		dest := empty[s.rng.IntN(len(empty))]

		s.Board.Clear(stone.Row, stone.Col)
		s.Board.Set(dest.Row, dest.Col, stone.Owner)
		result.Moved = append(result.Moved, StoneMove{
			From:  CellRef{Row: stone.Row, Col: stone.Col},
			To:    dest,
			Owner: stone.Owner,
		})
	}
	return result, nil
}

func (s *Session) checkTarget(target *CellRef) error {
	if target == nil {
		return fmt.Errorf("%w: target required", ErrInvalidTarget)
	}
	if !board.InBounds(target.Row, target.Col) {
		return fmt.Errorf("%w: (%d,%d) out of bounds", ErrInvalidTarget, target.Row, target.Col)
	}
	return nil
}
