package model

import (
	"errors"
	"testing"
)

func TestPawnForwardPerColor(t *testing.T) {
	b, err := NewBoard(nil, StandardSetup())
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	tests := []struct {
		color Color
		from  Position
		want  []Position
	}{
		{Red, pos(12, 5), []Position{pos(11, 5), pos(10, 5)}},
		{Blue, pos(5, 1), []Position{pos(5, 2), pos(5, 3)}},
		{Yellow, pos(1, 5), []Position{pos(2, 5), pos(3, 5)}},
		{Green, pos(5, 12), []Position{pos(5, 11), pos(5, 10)}},
	}
	for _, tt := range tests {
		t.Run(string(tt.color), func(t *testing.T) {
			got := b.pseudoMoves(tt.from)
			if !samePositions(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPawnDoubleStep(t *testing.T) {
	tests := []struct {
		name  string
		setup Setup
		want  []Position
	}{
		{
			name:  "unmoved and clear",
			setup: Setup{pos(12, 5): {Type: Pawn, Color: Red}},
			want:  []Position{pos(11, 5), pos(10, 5)},
		},
		{
			name:  "already moved",
			setup: Setup{pos(12, 5): {Type: Pawn, Color: Red, HasMoved: true}},
			want:  []Position{pos(11, 5)},
		},
		{
			name: "second square blocked",
			setup: Setup{
				pos(12, 5): {Type: Pawn, Color: Red},
				pos(10, 5): {Type: Knight, Color: Blue},
			},
			want: []Position{pos(11, 5)},
		},
		{
			name: "first square blocked",
			setup: Setup{
				pos(12, 5): {Type: Pawn, Color: Red},
				pos(11, 5): {Type: Knight, Color: Red},
			},
			want: []Position{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard(nil, tt.setup)
			if err != nil {
				t.Fatalf("new board: %v", err)
			}
			got := b.pseudoMoves(pos(12, 5))
			if !samePositions(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPawnCapturesDiagonallyForward(t *testing.T) {
	t.Run("red", func(t *testing.T) {
		b, err := NewBoard(nil, Setup{
			pos(10, 5): {Type: Pawn, Color: Red, HasMoved: true},
			pos(9, 5):  {Type: Pawn, Color: Yellow},
			pos(9, 4):  {Type: Pawn, Color: Blue},
			pos(9, 6):  {Type: Pawn, Color: Green},
			pos(10, 4): {Type: Pawn, Color: Blue},
			pos(11, 6): {Type: Pawn, Color: Blue},
		})
		if err != nil {
			t.Fatalf("new board: %v", err)
		}
		want := []Position{pos(9, 4), pos(9, 6)}
		if got := b.pseudoMoves(pos(10, 5)); !samePositions(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})
	t.Run("blue", func(t *testing.T) {
		b, err := NewBoard(nil, Setup{
			pos(6, 5): {Type: Pawn, Color: Blue, HasMoved: true},
			pos(5, 6): {Type: Rook, Color: Red},
			pos(7, 6): {Type: Rook, Color: Yellow},
			pos(5, 4): {Type: Rook, Color: Red},
			pos(7, 4): {Type: Rook, Color: Blue},
		})
		if err != nil {
			t.Fatalf("new board: %v", err)
		}
		want := []Position{pos(6, 6), pos(5, 6), pos(7, 6)}
		if got := b.pseudoMoves(pos(6, 5)); !samePositions(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})
}

func TestKnightSkipsCutCorners(t *testing.T) {
	b, err := NewBoard(nil, Setup{pos(3, 3): {Type: Knight, Color: Yellow}})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	want := []Position{pos(5, 4), pos(5, 2), pos(1, 4), pos(4, 5), pos(4, 1), pos(2, 5)}
	if got := b.pseudoMoves(pos(3, 3)); !samePositions(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSlidersStopAtCornersAndPieces(t *testing.T) {
	t.Run("rook on edge file", func(t *testing.T) {
		b, err := NewBoard(nil, Setup{pos(3, 0): {Type: Rook, Color: Blue}})
		if err != nil {
			t.Fatalf("new board: %v", err)
		}
		got := b.pseudoMoves(pos(3, 0))
		if len(got) != 20 {
			t.Fatalf("expected 20 rook moves, got %d: %v", len(got), got)
		}
		for _, p := range []Position{pos(2, 0), pos(11, 0)} {
			if containsPosition(got, p) {
				t.Fatalf("rook reached cut corner %v", p)
			}
		}
		for _, p := range []Position{pos(10, 0), pos(3, 13)} {
			if !containsPosition(got, p) {
				t.Fatalf("expected rook to reach %v", p)
			}
		}
	})

	t.Run("blockers", func(t *testing.T) {
		b, err := NewBoard(nil, Setup{
			pos(6, 6): {Type: Rook, Color: Red},
			pos(6, 8): {Type: Pawn, Color: Red},
			pos(4, 6): {Type: Pawn, Color: Green},
		})
		if err != nil {
			t.Fatalf("new board: %v", err)
		}
		got := b.pseudoMoves(pos(6, 6))
		if !containsPosition(got, pos(4, 6)) || !containsPosition(got, pos(6, 7)) {
			t.Fatalf("expected capture on 4,6 and step to 6,7, got %v", got)
		}
		for _, p := range []Position{pos(3, 6), pos(6, 8), pos(6, 9)} {
			if containsPosition(got, p) {
				t.Fatalf("rook passed a blocker to %v", p)
			}
		}
	})

	t.Run("bishop into corner", func(t *testing.T) {
		b, err := NewBoard(nil, Setup{pos(4, 4): {Type: Bishop, Color: Yellow}})
		if err != nil {
			t.Fatalf("new board: %v", err)
		}
		got := b.pseudoMoves(pos(4, 4))
		if containsPosition(got, pos(2, 2)) || !containsPosition(got, pos(3, 3)) {
			t.Fatalf("expected bishop to stop on 3,3 before the corner, got %v", got)
		}
	})
}

func TestEnPassantAgainstOppositeColor(t *testing.T) {
	g := newTestGame(t, []Color{Red, Yellow}, Setup{
		pos(13, 7): {Type: King, Color: Red},
		pos(3, 5):  {Type: Pawn, Color: Red, HasMoved: true},
		pos(0, 6):  {Type: King, Color: Yellow},
		pos(1, 6):  {Type: Pawn, Color: Yellow},
	})
	mustApply(t, g, pos(13, 7), pos(12, 7))
	mustApply(t, g, pos(1, 6), pos(3, 6))

	moves, err := g.LegalMovesFor(pos(3, 5))
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if !samePositions(moves, []Position{pos(2, 5), pos(2, 6)}) {
		t.Fatalf("expected push and en passant, got %v", moves)
	}

	res := mustApply(t, g, pos(3, 5), pos(2, 6))
	if res.Move.EnPassantVictim == nil || *res.Move.EnPassantVictim != pos(3, 6) {
		t.Fatalf("expected victim on 3,6, got %v", res.Move.EnPassantVictim)
	}
	if res.Move.Captured == nil || res.Move.Captured.Type != Pawn || res.Move.Captured.Color != Yellow {
		t.Fatalf("expected yellow pawn captured, got %+v", res.Move.Captured)
	}
	snap := g.Snapshot()
	if _, ok := snap[pos(3, 6)]; ok {
		t.Fatalf("bypassed pawn still on the board")
	}
	if pc := snap[pos(2, 6)]; pc.Type != Pawn || pc.Color != Red {
		t.Fatalf("expected red pawn on 2,6, got %+v", pc)
	}
}

func TestEnPassantAgainstPerpendicularColor(t *testing.T) {
	g := newTestGame(t, []Color{Red, Blue, Yellow}, Setup{
		pos(13, 7): {Type: King, Color: Red},
		pos(9, 3):  {Type: Pawn, Color: Red, HasMoved: true},
		pos(9, 1):  {Type: Pawn, Color: Red, HasMoved: true},
		pos(6, 0):  {Type: King, Color: Blue},
		pos(8, 1):  {Type: Pawn, Color: Blue},
		pos(0, 6):  {Type: King, Color: Yellow},
	})
	mustApply(t, g, pos(13, 7), pos(12, 7))
	mustApply(t, g, pos(8, 1), pos(8, 3))
	mustApply(t, g, pos(0, 6), pos(0, 7))

	moves, _ := g.LegalMovesFor(pos(9, 3))
	if !samePositions(moves, []Position{pos(8, 2)}) {
		t.Fatalf("expected only the en passant capture, got %v", moves)
	}
	// The passed square is diagonal to this pawn too, but the victim is not beside it.
	if moves, _ := g.LegalMovesFor(pos(9, 1)); containsPosition(moves, pos(8, 2)) {
		t.Fatalf("non-adjacent pawn may not take en passant: %v", moves)
	}

	res := mustApply(t, g, pos(9, 3), pos(8, 2))
	if res.Move.EnPassantVictim == nil || *res.Move.EnPassantVictim != pos(8, 3) {
		t.Fatalf("expected victim on 8,3, got %v", res.Move.EnPassantVictim)
	}
	if _, ok := g.Snapshot()[pos(8, 3)]; ok {
		t.Fatalf("bypassed blue pawn still on the board")
	}
	if err := g.board.verify(); err != nil {
		t.Fatalf("board inconsistent: %v", err)
	}
}

func TestEnPassantExpiresWhenVictimMovesAgain(t *testing.T) {
	g := newTestGame(t, []Color{Red, Blue, Yellow}, Setup{
		pos(13, 7): {Type: King, Color: Red},
		pos(9, 3):  {Type: Pawn, Color: Red, HasMoved: true},
		pos(6, 0):  {Type: King, Color: Blue},
		pos(8, 1):  {Type: Pawn, Color: Blue},
		pos(0, 6):  {Type: King, Color: Yellow},
	})
	mustApply(t, g, pos(13, 7), pos(12, 7))
	mustApply(t, g, pos(8, 1), pos(8, 3))
	mustApply(t, g, pos(0, 6), pos(0, 7))
	mustApply(t, g, pos(12, 7), pos(13, 7))
	mustApply(t, g, pos(6, 0), pos(5, 0))
	mustApply(t, g, pos(0, 7), pos(0, 6))

	if moves, _ := g.LegalMovesFor(pos(9, 3)); len(moves) != 0 {
		t.Fatalf("expected en passant to have lapsed, got %v", moves)
	}
	_, err := g.ApplyMove(MoveRequest{From: pos(9, 3), To: pos(8, 2)})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected lapsed en passant rejected, got %v", err)
	}
}

func TestEnPassantMayNotExposeKing(t *testing.T) {
	g := newTestGame(t, []Color{Red, Yellow}, Setup{
		pos(3, 3):  {Type: King, Color: Red},
		pos(3, 5):  {Type: Pawn, Color: Red, HasMoved: true},
		pos(13, 5): {Type: Knight, Color: Red},
		pos(0, 6):  {Type: King, Color: Yellow},
		pos(1, 6):  {Type: Pawn, Color: Yellow},
		pos(3, 10): {Type: Rook, Color: Yellow},
	})
	mustApply(t, g, pos(13, 5), pos(11, 4))
	mustApply(t, g, pos(1, 6), pos(3, 6))

	moves, _ := g.LegalMovesFor(pos(3, 5))
	if containsPosition(moves, pos(2, 6)) {
		t.Fatalf("en passant would open the rank to the rook: %v", moves)
	}
	if !containsPosition(moves, pos(2, 5)) {
		t.Fatalf("expected the push to stay legal, got %v", moves)
	}
}
