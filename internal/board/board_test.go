package board

import "testing"

func TestSeatCell(t *testing.T) {
	if SeatCell(0) != Seat0 {
		t.Errorf("expected Seat0 for seat 0, got %v", SeatCell(0))
	}
	if SeatCell(1) != Seat1 {
		t.Errorf("expected Seat1 for seat 1, got %v", SeatCell(1))
	}
}

func TestCellSeat(t *testing.T) {
	if Seat0.Seat() != 0 {
		t.Errorf("expected seat 0, got %d", Seat0.Seat())
	}
	if Seat1.Seat() != 1 {
		t.Errorf("expected seat 1, got %d", Seat1.Seat())
	}
	if Empty.Seat() != -1 {
		t.Errorf("expected -1 for empty cell, got %d", Empty.Seat())
	}
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{14, 14, true},
		{7, 7, true},
		{-1, 0, false},
		{0, -1, false},
		{15, 0, false},
		{0, 15, false},
	}
	for _, tt := range tests {
		if got := InBounds(tt.row, tt.col); got != tt.want {
			t.Errorf("InBounds(%d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestBoardSetGetClear(t *testing.T) {
	var b Board
	if b.Get(3, 4) != Empty {
		t.Fatal("fresh board should be empty")
	}

	b.Set(3, 4, Seat0)
	if b.Get(3, 4) != Seat0 {
		t.Errorf("expected Seat0 at (3,4), got %v", b.Get(3, 4))
	}

	b.Clear(3, 4)
	if b.Get(3, 4) != Empty {
		t.Errorf("expected empty after clear, got %v", b.Get(3, 4))
	}
}

func TestBoardStoneCount(t *testing.T) {
	var b Board
	if b.StoneCount() != 0 {
		t.Errorf("fresh board should have 0 stones, got %d", b.StoneCount())
	}

	b.Set(0, 0, Seat0)
	b.Set(7, 7, Seat1)
	b.Set(14, 14, Seat0)
	if b.StoneCount() != 3 {
		t.Errorf("expected 3 stones, got %d", b.StoneCount())
	}
}

func TestBoardStonesRowMajorOrder(t *testing.T) {
	var b Board
	b.Set(5, 2, Seat1)
	b.Set(0, 9, Seat0)
	b.Set(5, 0, Seat0)

	stones := b.Stones()
	want := []Stone{
		{Row: 0, Col: 9, Owner: Seat0},
		{Row: 5, Col: 0, Owner: Seat0},
		{Row: 5, Col: 2, Owner: Seat1},
	}
	if len(stones) != len(want) {
		t.Fatalf("expected %d stones, got %d", len(want), len(stones))
	}
	for i, s := range stones {
		if s != want[i] {
			t.Errorf("stone %d: got %+v, want %+v", i, s, want[i])
		}
	}
}

func TestBoardCopyIsIndependent(t *testing.T) {
	var b Board
	b.Set(7, 7, Seat0)

	snapshot := b
	b.Set(7, 8, Seat1)

	if snapshot.Get(7, 8) != Empty {
		t.Error("copying a board should snapshot it, but the copy saw a later write")
	}
}

func TestBoardValidate(t *testing.T) {
	var b Board
	b.Set(1, 1, Seat0)
	b.Set(2, 2, Seat1)
	if err := b.Validate(); err != nil {
		t.Errorf("valid board failed validation: %v", err)
	}

	b[3][3] = Cell(9)
	if err := b.Validate(); err == nil {
		t.Error("expected validation error for out-of-range cell value")
	}
}
