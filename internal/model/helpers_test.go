package model

import (
	"testing"

	"golang.org/x/exp/slices"
)

func pos(row, col int) Position { return Position{Row: row, Col: col} }

func newTestGame(t *testing.T, seating []Color, setup Setup) *Game {
	t.Helper()
	rules := DefaultRules()
	rules.Seating = seating
	rules.Setup = setup
	g, err := NewGame(rules)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func newStandardGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(DefaultRules())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func mustApply(t *testing.T, g *Game, from, to Position) MoveResult {
	t.Helper()
	res, err := g.ApplyMove(MoveRequest{From: from, To: to})
	if err != nil {
		t.Fatalf("move %s-%s: %v", from, to, err)
	}
	return res
}

func sortPositions(ps []Position) []Position {
	out := slices.Clone(ps)
	slices.SortFunc(out, Position.before)
	return out
}

func samePositions(a, b []Position) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sortPositions(a), sortPositions(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsPosition(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// spareKings returns kings for the colors a test does not care about, parked
// on their home edges.
func spareKings(except ...Color) Setup {
	homes := map[Color]Position{
		Red:    pos(13, 7),
		Blue:   pos(6, 0),
		Yellow: pos(0, 6),
		Green:  pos(7, 13),
	}
	s := Setup{}
	for c, p := range homes {
		skip := false
		for _, e := range except {
			if e == c {
				skip = true
			}
		}
		if !skip {
			s[p] = Piece{Type: King, Color: c}
		}
	}
	return s
}

func merge(setups ...Setup) Setup {
	out := Setup{}
	for _, s := range setups {
		for p, pc := range s {
			out[p] = pc
		}
	}
	return out
}
