package model

import "fmt"

// Size is the width and height of the board grid, cut corners included.
const Size = 14

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

func (p Position) sub(d Position) Position {
	return Position{Row: p.Row - d.Row, Col: p.Col - d.Col}
}

// before orders positions row-major.
func (p Position) before(q Position) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

func (p Position) scale(n int) Position {
	return Position{Row: p.Row * n, Col: p.Col * n}
}

// adjacent reports whether q shares an edge with p.
func (p Position) adjacent(q Position) bool {
	dr, dc := p.Row-q.Row, p.Col-q.Col
	return dr*dr+dc*dc == 1
}

func (p Position) inGrid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// String renders the square as file letter plus rank counted from the bottom edge.
func (p Position) String() string {
	return fmt.Sprintf("%c%d", p.Col+97, Size-p.Row)
}

// CornerMask reports whether a grid cell is cut out of play.
type CornerMask func(Position) bool

// SquareCorners cuts an nxn block out of every corner. SquareCorners(3) is
// the standard cross-shaped board with 160 playable cells.
func SquareCorners(n int) CornerMask {
	return func(p Position) bool {
		return edgeDistance(p.Row) < n && edgeDistance(p.Col) < n
	}
}

// NotchedCorners cuts an L of seven cells per corner: four along the edge row
// and three more down the edge column. The standard back ranks run into the
// notch on the top and bottom edges, so this mask is only for custom setups
// passed through Rules.Setup; it is not offered as a server option.
func NotchedCorners() CornerMask {
	return func(p Position) bool {
		r, c := edgeDistance(p.Row), edgeDistance(p.Col)
		return (r == 0 && c < 4) || (c == 0 && r < 4)
	}
}

// edgeDistance folds a row or column onto its distance from the nearest edge.
func edgeDistance(i int) int {
	if i >= Size/2 {
		return Size - 1 - i
	}
	return i
}
