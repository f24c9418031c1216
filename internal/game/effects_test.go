package game

import (
	"errors"
	"testing"

	"github.com/quintet-games/quintet/internal/board"
)

func giveCards(s *Session, seat int, kinds ...CardKind) {
	s.Seats[seat].Hand = nil
	for _, k := range kinds {
		s.Seats[seat].Hand = append(s.Seats[seat].Hand, Card{Kind: k})
	}
}

func handKinds(s *Session, seat int) []CardKind {
	out := make([]CardKind, 0, len(s.Seats[seat].Hand))
	for _, c := range s.Seats[seat].Hand {
		out = append(out, c.Kind)
	}
	return out
}

func TestUseCard_InvalidIndex(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 0, CardHint)
	for _, idx := range []int{-1, 1, 5} {
		if _, err := s.UseCard(0, idx, nil); !errors.Is(err, ErrInvalidCardIndex) {
			t.Errorf("index %d: expected ErrInvalidCardIndex, got %v", idx, err)
		}
	}
	if len(s.Hand(0)) != 1 {
		t.Error("rejected use changed the hand")
	}
}

func TestUseCard_OutOfTurn(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 1, CardHint)
	if _, err := s.UseCard(1, 0, nil); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestUseCard_RejectionRestoresHandOrder(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(4, 4, board.Seat0)
	giveCards(s, 0, CardConvert, CardObstacle, CardStorm)

	// Obstacle onto an occupied cell is rejected; the card must return to
	// its original slot.
	_, err := s.UseCard(0, 1, &CellRef{Row: 4, Col: 4})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}

	want := []CardKind{CardConvert, CardObstacle, CardStorm}
	got := handKinds(s, 0)
	if len(got) != len(want) {
		t.Fatalf("expected %d cards, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hand slot %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if s.Turn != 0 {
		t.Error("rejected card use passed the turn")
	}
}

func TestConvert_FlipsOpposingStone(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(5, 5, board.Seat1)
	giveCards(s, 0, CardConvert)

	res, err := s.UseCard(0, 0, &CellRef{Row: 5, Col: 5})
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if s.Board.Get(5, 5) != board.Seat0 {
		t.Error("converted stone should belong to the acting seat")
	}
	if res.ConvertedFrom != board.Seat1 {
		t.Errorf("expected ConvertedFrom Seat1, got %v", res.ConvertedFrom)
	}
	if res.NextTurn != 1 {
		t.Errorf("convert should pass the turn, got %d", res.NextTurn)
	}
	if len(s.Hand(0)) != 0 {
		t.Error("used card still in hand")
	}
}

func TestConvert_RejectsNonOpposingTargets(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(5, 5, board.Seat0)
	giveCards(s, 0, CardConvert)

	tests := []struct {
		name   string
		target *CellRef
	}{
		{"own stone", &CellRef{Row: 5, Col: 5}},
		{"empty cell", &CellRef{Row: 6, Col: 6}},
		{"out of bounds", &CellRef{Row: 15, Col: 0}},
		{"missing target", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.UseCard(0, 0, tt.target); !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("expected ErrInvalidTarget, got %v", err)
			}
			if len(s.Hand(0)) != 1 {
				t.Error("card lost on rejected use")
			}
		})
	}
}

func TestConvert_CannotCauseImmediateWin(t *testing.T) {
	s := newTestSession(t, 1)
	for c := 7; c <= 10; c++ {
		s.Board.Set(7, c, board.Seat0)
	}
	s.Board.Set(7, 11, board.Seat1)
	giveCards(s, 0, CardTrap, CardConvert, CardHint)
	before := s.Board

	_, err := s.UseCard(0, 1, &CellRef{Row: 7, Col: 11})
	if !errors.Is(err, ErrRuleViolation) {
		t.Fatalf("expected ErrRuleViolation, got %v", err)
	}
	if s.Board != before {
		t.Error("board must be byte-identical after the reverted conversion")
	}
	got := handKinds(s, 0)
	if len(got) != 3 || got[1] != CardConvert {
		t.Errorf("convert card not back in its original slot: %v", got)
	}
	if s.State != StatePlaying || s.Winner != NoSeat {
		t.Error("reverted conversion must not end the game")
	}
}

func TestObstacle_BlocksPlacement(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 0, CardObstacle)

	res, err := s.UseCard(0, 0, &CellRef{Row: 9, Col: 9})
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if res.Target == nil || res.Target.Row != 9 || res.Target.Col != 9 {
		t.Errorf("unexpected obstacle target: %+v", res.Target)
	}
	if len(s.Obstacles) != 1 {
		t.Fatalf("expected one obstacle, got %d", len(s.Obstacles))
	}

	// Seat 1 now has the turn and cannot play onto the obstacle.
	if _, err := s.SubmitMove(1, 9, 9); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("expected move onto obstacle rejected, got %v", err)
	}
}

func TestObstacle_RejectsOccupiedOrDuplicate(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(2, 2, board.Seat1)
	s.Obstacles = append(s.Obstacles, Obstacle{Row: 3, Col: 3})
	giveCards(s, 0, CardObstacle)

	for _, target := range []CellRef{{Row: 2, Col: 2}, {Row: 3, Col: 3}} {
		if _, err := s.UseCard(0, 0, &target); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("target (%d,%d): expected ErrInvalidTarget, got %v", target.Row, target.Col, err)
		}
	}
	if len(s.Hand(0)) != 1 {
		t.Error("card lost on rejected obstacle placement")
	}
}

func TestStorm_RelocatesExactlyThreeOfThreeStones(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(0, 0, board.Seat0)
	s.Board.Set(0, 1, board.Seat1)
	s.Board.Set(0, 2, board.Seat0)
	giveCards(s, 0, CardStorm)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if len(res.Moved) != 3 {
		t.Fatalf("expected 3 relocations with 3 stones on the board, got %d", len(res.Moved))
	}
	if s.Board.StoneCount() != 3 {
		t.Errorf("storm changed the stone count: %d", s.Board.StoneCount())
	}

	counts := map[board.Cell]int{}
	for _, st := range s.Board.Stones() {
		counts[st.Owner]++
	}
	if counts[board.Seat0] != 2 || counts[board.Seat1] != 1 {
		t.Errorf("storm changed stone ownership: %v", counts)
	}
}

func TestStorm_CapsAtFiveRelocations(t *testing.T) {
	s := newTestSession(t, 1)
	for i := 0; i < 20; i++ {
		s.Board.Set(i/15, i%15, board.SeatCell(i%2))
	}
	giveCards(s, 0, CardStorm)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if len(res.Moved) != 5 {
		t.Errorf("expected 5 relocations with 20 stones, got %d", len(res.Moved))
	}
	if s.Board.StoneCount() != 20 {
		t.Errorf("storm changed the stone count: %d", s.Board.StoneCount())
	}
}

func TestStorm_RequiresThreeStones(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(0, 0, board.Seat0)
	s.Board.Set(0, 1, board.Seat1)
	giveCards(s, 0, CardStorm)

	if _, err := s.UseCard(0, 0, nil); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected ErrRuleViolation with 2 stones, got %v", err)
	}
	if len(s.Hand(0)) != 1 {
		t.Error("card lost on rejected storm")
	}
	if s.Board.Get(0, 0) != board.Seat0 || s.Board.Get(0, 1) != board.Seat1 {
		t.Error("rejected storm moved stones")
	}
}

func TestStorm_AvoidsObstacleCells(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(0, 0, board.Seat0)
	s.Board.Set(0, 1, board.Seat1)
	s.Board.Set(0, 2, board.Seat0)
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			// Leave only one free landing zone besides the vacated cells.
			if s.Board.Get(r, c) == board.Empty && !(r == 14 && c == 14) {
				s.Obstacles = append(s.Obstacles, Obstacle{Row: r, Col: c})
			}
		}
	}
	giveCards(s, 0, CardStorm)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	for _, mv := range res.Moved {
		for _, o := range s.Obstacles {
			if mv.To.Row == o.Row && mv.To.Col == o.Col {
				t.Errorf("stone relocated onto obstacle at (%d,%d)", o.Row, o.Col)
			}
		}
	}
}

func TestUndo_RemovesLastMoveAndKeepsTurn(t *testing.T) {
	s := newTestSession(t, 1)
	mustMove(t, s, 0, 7, 7)
	giveCards(s, 1, CardUndo)

	res, err := s.UseCard(1, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if res.Undone == nil || res.Undone.Row != 7 || res.Undone.Col != 7 || res.Undone.Seat != 0 {
		t.Errorf("unexpected undone record: %+v", res.Undone)
	}
	if s.Board.Get(7, 7) != board.Empty {
		t.Error("undone stone still on the board")
	}
	if len(s.History) != 0 {
		t.Error("history record not popped")
	}
	// Undo is the one card that keeps the turn with the acting seat.
	if res.NextTurn != 1 || s.Turn != 1 {
		t.Errorf("undo must keep the turn with the actor, got %d", s.Turn)
	}
}

func TestUndo_RoundTripRestoresBoard(t *testing.T) {
	s := newTestSession(t, 1)
	mustMove(t, s, 0, 7, 7)
	mustMove(t, s, 1, 8, 8)
	before := s.Board

	mustMove(t, s, 0, 9, 9)
	giveCards(s, 1, CardUndo)
	if _, err := s.UseCard(1, 0, nil); err != nil {
		t.Fatalf("UseCard: %v", err)
	}

	if s.Board != before {
		t.Error("undoing the last move must restore the previous board exactly")
	}

	// Replaying the undone move lands the session back where it was.
	s.Turn = 0
	mustMove(t, s, 0, 9, 9)
	if s.Board.Get(9, 9) != board.Seat0 {
		t.Error("replayed move missing from the board")
	}
}

func TestUndo_EmptyHistoryRejected(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 0, CardUndo)
	if _, err := s.UseCard(0, 0, nil); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected ErrRuleViolation, got %v", err)
	}
	if len(s.Hand(0)) != 1 {
		t.Error("card lost on rejected undo")
	}
}

func TestUndo_OpponentTrapTriggerRejected(t *testing.T) {
	s := newTestSession(t, 1)
	s.Traps = append(s.Traps, Trap{Row: 3, Col: 3, Owner: 1})
	mustMove(t, s, 0, 3, 3)
	giveCards(s, 1, CardUndo)

	if _, err := s.UseCard(1, 0, nil); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected ErrRuleViolation undoing opponent's trap trigger, got %v", err)
	}
	if len(s.History) != 1 {
		t.Error("history changed on rejected undo")
	}
}

func TestUndo_OwnTrapTriggerAllowed(t *testing.T) {
	s := newTestSession(t, 1)
	s.Traps = append(s.Traps, Trap{Row: 3, Col: 3, Owner: 1})
	mustMove(t, s, 0, 3, 3)

	// Seat 1 passes the turn back so the victim can undo.
	mustMove(t, s, 1, 10, 10)
	giveCards(s, 0, CardUndo, CardUndo)

	// First undo removes seat 1's stone, second erases the trap trigger.
	if _, err := s.UseCard(0, 0, nil); err != nil {
		t.Fatalf("undo of normal move: %v", err)
	}
	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("undo of own trap trigger: %v", err)
	}
	if res.Undone == nil || !res.Undone.TrapTrigger {
		t.Errorf("expected trap-trigger record undone, got %+v", res.Undone)
	}
	if s.Board.Get(3, 3) != board.Empty {
		t.Error("trap-trigger cell was already empty and must stay empty")
	}
	if len(s.History) != 0 {
		t.Error("history should be fully unwound")
	}
}

func TestHint_PrefersExactCenter(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 0, CardHint)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if res.Hint == nil || res.Hint.Row != 7 || res.Hint.Col != 7 {
		t.Errorf("expected hint at center (7,7), got %+v", res.Hint)
	}
}

func TestHint_SkipsOccupiedCenter(t *testing.T) {
	s := newTestSession(t, 1)
	s.Board.Set(7, 7, board.Seat1)
	giveCards(s, 0, CardHint)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if res.Hint == nil || res.Hint.Row != 7 || res.Hint.Col != 6 {
		t.Errorf("expected hint at (7,6) with occupied center, got %+v", res.Hint)
	}
}

func TestHint_FullCenterAreaYieldsNoCell(t *testing.T) {
	s := newTestSession(t, 1)
	for r := 5; r <= 9; r++ {
		for c := 5; c <= 9; c++ {
			s.Board.Set(r, c, board.Seat1)
		}
	}
	giveCards(s, 0, CardHint)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("hint must still apply when the center area is full: %v", err)
	}
	if res.Hint != nil {
		t.Errorf("expected no hint cell, got %+v", res.Hint)
	}
	if res.NextTurn != 1 {
		t.Error("hint should pass the turn even without a suggestion")
	}
	if len(s.Hand(0)) != 0 {
		t.Error("hint card should be consumed even without a suggestion")
	}
}

func TestPeek_RevealsOneOpponentCard(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 0, CardPeek)
	giveCards(s, 1, CardStorm, CardTrap)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("UseCard: %v", err)
	}
	if res.PeekedKind == nil {
		t.Fatal("expected a revealed kind")
	}
	if *res.PeekedKind != CardStorm && *res.PeekedKind != CardTrap {
		t.Errorf("revealed kind %v is not in the opponent's hand", *res.PeekedKind)
	}
	if len(s.Hand(1)) != 2 {
		t.Error("peek must not remove opponent cards")
	}
}

func TestPeek_EmptyOpponentHand(t *testing.T) {
	s := newTestSession(t, 1)
	giveCards(s, 0, CardPeek)

	res, err := s.UseCard(0, 0, nil)
	if err != nil {
		t.Fatalf("peek on empty hand must still apply: %v", err)
	}
	if res.PeekedKind != nil {
		t.Errorf("expected no revealed kind, got %v", *res.PeekedKind)
	}
	if res.NextTurn != 1 {
		t.Error("peek should pass the turn")
	}
}

func TestUseCard_NotActiveAfterWin(t *testing.T) {
	s := newTestSession(t, 1)
	for i := 0; i < 4; i++ {
		mustMove(t, s, 0, 7, 7+i)
		mustMove(t, s, 1, 0, i)
	}
	mustMove(t, s, 0, 7, 11)

	giveCards(s, 1, CardUndo)
	if _, err := s.UseCard(1, 0, nil); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("expected ErrGameNotActive, got %v", err)
	}
}
