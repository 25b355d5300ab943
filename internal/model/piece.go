package model

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) valid() bool {
	switch p {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

func (p PieceType) canPromoteTo() bool {
	switch p {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Yellow Color = "yellow"
	Green  Color = "green"
)

// Colors lists every color in the default clockwise seating.
var Colors = []Color{Red, Blue, Yellow, Green}

func (c Color) Valid() bool {
	switch c {
	case Red, Blue, Yellow, Green:
		return true
	}
	return false
}

// forward is the pawn step for each color: every side pushes away from its own edge.
func (c Color) forward() Position {
	switch c {
	case Red:
		return Position{Row: -1}
	case Yellow:
		return Position{Row: 1}
	case Blue:
		return Position{Col: 1}
	case Green:
		return Position{Col: -1}
	}
	return Position{}
}

// promotesOn reports whether p lies on the far edge, opposite this color's home edge.
func (c Color) promotesOn(p Position) bool {
	switch c {
	case Red:
		return p.Row == 0
	case Yellow:
		return p.Row == Size-1
	case Blue:
		return p.Col == Size-1
	case Green:
		return p.Col == 0
	}
	return false
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

// Square is one grid cell as shown to renderers.
type Square struct {
	Position Position `json:"position"`
	Piece    *Piece   `json:"piece"`
	OffBoard bool     `json:"offBoard"`
}
