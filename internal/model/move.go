package model

// Move is one applied or candidate ply. It is a value: nothing keeps a
// reference to the board it came from.
type Move struct {
	From       Position  `json:"from"`
	To         Position  `json:"to"`
	Piece      Piece     `json:"piece"`
	Captured   *Piece    `json:"capturedPiece"`
	Promotion  bool      `json:"isPromotion"`
	PromotedTo PieceType `json:"promotedTo,omitempty"`

	// EnPassantVictim is the square of the pawn taken en passant. Captured
	// then describes that pawn rather than anything on To.
	EnPassantVictim *Position `json:"enPassantVictim,omitempty"`
}

// MoveRequest is what a caller submits. Promotion is optional and only
// allowed when a pawn reaches its far edge.
type MoveRequest struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// MoveResult reports the game after a move was applied.
type MoveResult struct {
	Move       Move             `json:"move"`
	Statuses   map[Color]Status `json:"statuses"`
	Turn       Color            `json:"turn"`
	GameOver   bool             `json:"gameOver"`
	Winners    []Color          `json:"winners"`
	Eliminated []Elimination    `json:"eliminated"`
}

// Winner returns the sole winner, if the game ended with exactly one.
func (r MoveResult) Winner() (Color, bool) {
	if len(r.Winners) != 1 {
		return "", false
	}
	return r.Winners[0], true
}
