package model

import (
	"golang.org/x/exp/maps"
)

// Board owns every piece on the grid. Pieces move between cells by pointer,
// they are never shared between two cells or two boards.
type Board struct {
	cells      [Size][Size]*Piece
	kings      map[Color]Position
	eliminated map[Color]bool
	corners    CornerMask

	// doubleSteps holds each color's pawn double step while it is still that
	// color's latest move, which is as long as it stays capturable en passant.
	doubleSteps map[Color]doubleStep
}

// doubleStep is a pawn that advanced two squares, passing over Passed.
type doubleStep struct {
	Passed Position
	Pawn   Position
}

// Setup is a starting arrangement of pieces.
type Setup map[Position]Piece

var (
	backRankQueenFirst = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	backRankKingFirst  = []PieceType{Rook, Knight, Bishop, King, Queen, Bishop, Knight, Rook}
)

// StandardSetup returns the four-player opening position: red on the bottom
// edge, blue on the left, yellow on top and green on the right.
func StandardSetup() Setup {
	s := make(Setup, 64)
	for i := 0; i < 8; i++ {
		s[Position{Row: 13, Col: 3 + i}] = Piece{Type: backRankQueenFirst[i], Color: Red}
		s[Position{Row: 12, Col: 3 + i}] = Piece{Type: Pawn, Color: Red}

		s[Position{Row: 3 + i, Col: 0}] = Piece{Type: backRankKingFirst[i], Color: Blue}
		s[Position{Row: 3 + i, Col: 1}] = Piece{Type: Pawn, Color: Blue}

		s[Position{Row: 0, Col: 3 + i}] = Piece{Type: backRankKingFirst[i], Color: Yellow}
		s[Position{Row: 1, Col: 3 + i}] = Piece{Type: Pawn, Color: Yellow}

		s[Position{Row: 3 + i, Col: 13}] = Piece{Type: backRankQueenFirst[i], Color: Green}
		s[Position{Row: 3 + i, Col: 12}] = Piece{Type: Pawn, Color: Green}
	}
	return s
}

func newBoard(corners CornerMask) *Board {
	return &Board{
		kings:       make(map[Color]Position),
		eliminated:  make(map[Color]bool),
		corners:     corners,
		doubleSteps: make(map[Color]doubleStep),
	}
}

// NewBoard lays out setup on a grid cut by corners.
func NewBoard(corners CornerMask, setup Setup) (*Board, error) {
	if corners == nil {
		corners = SquareCorners(3)
	}
	b := newBoard(corners)
	for pos, pc := range setup {
		if !pc.Type.valid() || !pc.Color.Valid() {
			return nil, inconsistent("setup", "unknown piece %q/%q at %s", pc.Type, pc.Color, pos)
		}
		pc := pc
		if err := b.place(pos, &pc); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// IsCorner reports whether p is a cut corner cell of this board.
func (b *Board) IsCorner(p Position) bool {
	return p.inGrid() && b.corners(p)
}

// OnBoard reports whether p is a playable cell.
func (b *Board) OnBoard(p Position) bool {
	return p.inGrid() && !b.corners(p)
}

// PieceAt returns a copy of the piece on p, or nil for an empty cell.
func (b *Board) PieceAt(p Position) (*Piece, error) {
	if !b.OnBoard(p) {
		return nil, outOfBounds(p)
	}
	pc := b.at(p)
	if pc == nil {
		return nil, nil
	}
	cp := *pc
	return &cp, nil
}

func (b *Board) at(p Position) *Piece {
	return b.cells[p.Row][p.Col]
}

// King returns the cached king square of an active color.
func (b *Board) King(c Color) (Position, bool) {
	pos, ok := b.kings[c]
	return pos, ok
}

func (b *Board) Eliminated(c Color) bool {
	return b.eliminated[c]
}

func (b *Board) place(p Position, pc *Piece) error {
	if !b.OnBoard(p) {
		return inconsistent("place", "%s at %s which is off the board", pc.Type, p)
	}
	if b.at(p) != nil {
		return inconsistent("place", "%s already occupied", p)
	}
	if pc.Type == King {
		if other, ok := b.kings[pc.Color]; ok {
			return inconsistent("place", "second %s king at %s, first at %s", pc.Color, p, other)
		}
		b.kings[pc.Color] = p
	}
	b.cells[p.Row][p.Col] = pc
	return nil
}

func (b *Board) remove(p Position) *Piece {
	pc := b.at(p)
	if pc == nil {
		return nil
	}
	b.cells[p.Row][p.Col] = nil
	if pc.Type == King && b.kings[pc.Color] == p {
		delete(b.kings, pc.Color)
	}
	return pc
}

// eliminate takes a color out of play. Its pieces stay on the grid as inert blockers.
func (b *Board) eliminate(c Color) {
	b.eliminated[c] = true
	delete(b.kings, c)
	delete(b.doubleSteps, c)
}

// Clone deep-copies the grid and the king cache. Trial moves run on clones.
func (b *Board) Clone() *Board {
	cp := &Board{
		kings:       maps.Clone(b.kings),
		eliminated:  maps.Clone(b.eliminated),
		corners:     b.corners,
		doubleSteps: maps.Clone(b.doubleSteps),
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if pc := b.cells[r][c]; pc != nil {
				moved := *pc
				cp.cells[r][c] = &moved
			}
		}
	}
	return cp
}

// Apply moves a piece, removes any captured piece (the bypassed pawn for en
// passant), marks the mover as moved, keeps the king cache current and
// substitutes a promoted piece. It is
// all-or-nothing: on a BoardConsistencyError the board is left as it was.
func (b *Board) Apply(m Move) error {
	next := b.Clone()
	if err := next.apply(m); err != nil {
		return err
	}
	if err := next.verify(); err != nil {
		return err
	}
	*b = *next
	return nil
}

// apply mutates in place with no rollback. Callers own a scratch board.
func (b *Board) apply(m Move) error {
	if !b.OnBoard(m.From) || !b.OnBoard(m.To) {
		return inconsistent("apply", "move %s-%s leaves the board", m.From, m.To)
	}
	pc := b.at(m.From)
	if pc == nil {
		return inconsistent("apply", "no piece on %s", m.From)
	}
	if b.eliminated[pc.Color] {
		return inconsistent("apply", "%s is eliminated and cannot move", pc.Color)
	}
	target := b.at(m.To)
	if target != nil && target.Color == pc.Color {
		return inconsistent("apply", "%s captures own piece on %s", pc.Color, m.To)
	}
	if m.Promotion && (pc.Type != Pawn || !m.PromotedTo.canPromoteTo()) {
		return inconsistent("apply", "%s cannot promote to %q", pc.Type, m.PromotedTo)
	}

	if m.EnPassantVictim != nil {
		victim := *m.EnPassantVictim
		if target != nil || pc.Type != Pawn || !b.OnBoard(victim) {
			return inconsistent("apply", "en passant %s-%s onto occupied or misplaced square", m.From, m.To)
		}
		bypassed := b.at(victim)
		if bypassed == nil || bypassed.Type != Pawn || bypassed.Color == pc.Color {
			return inconsistent("apply", "no enemy pawn to take en passant on %s", victim)
		}
		b.remove(victim)
	}

	if target != nil {
		b.remove(m.To)
		if target.Type == King && !b.eliminated[target.Color] {
			b.eliminate(target.Color)
		}
	}
	b.cells[m.From.Row][m.From.Col] = nil
	b.cells[m.To.Row][m.To.Col] = pc
	pc.HasMoved = true
	if m.Promotion {
		pc.Type = m.PromotedTo
	}
	if pc.Type == King {
		b.kings[pc.Color] = m.To
	}

	delete(b.doubleSteps, pc.Color)
	if step := m.To.sub(m.From); pc.Type == Pawn && step == pc.Color.forward().scale(2) {
		b.doubleSteps[pc.Color] = doubleStep{Passed: m.From.add(pc.Color.forward()), Pawn: m.To}
	}
	return nil
}

// enPassantVictim finds the pawn a pawn of color c on from would take by
// moving diagonally onto the empty square to. The victim must have just
// double-stepped past to and stand orthogonally next to from.
func (b *Board) enPassantVictim(from, to Position, c Color) (Position, bool) {
	if b.at(to) != nil {
		return Position{}, false
	}
	for _, victimColor := range Colors {
		if victimColor == c || b.eliminated[victimColor] {
			continue
		}
		ds, ok := b.doubleSteps[victimColor]
		if !ok || ds.Passed != to || !ds.Pawn.adjacent(from) {
			continue
		}
		if pc := b.at(ds.Pawn); pc != nil && pc.Type == Pawn && pc.Color == victimColor {
			return ds.Pawn, true
		}
	}
	return Position{}, false
}

// verify checks that every active color has exactly one king, sitting where
// the cache says, and that no piece rests on a cut corner.
func (b *Board) verify() error {
	seen := make(map[Color]int, len(b.kings))
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			pc := b.cells[r][c]
			if pc == nil {
				continue
			}
			pos := Position{Row: r, Col: c}
			if b.corners(pos) {
				return inconsistent("verify", "%s %s on cut corner %s", pc.Color, pc.Type, pos)
			}
			if pc.Type != King || b.eliminated[pc.Color] {
				continue
			}
			seen[pc.Color]++
			if cached, ok := b.kings[pc.Color]; !ok || cached != pos {
				return inconsistent("verify", "%s king on %s but cache has %v", pc.Color, pos, cached)
			}
		}
	}
	for color := range b.kings {
		if seen[color] != 1 {
			return inconsistent("verify", "%s has %d kings", color, seen[color])
		}
	}
	return nil
}

// each visits occupied cells in row-major order.
func (b *Board) each(fn func(Position, *Piece)) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if pc := b.cells[r][c]; pc != nil {
				fn(Position{Row: r, Col: c}, pc)
			}
		}
	}
}

// squaresOf lists the cells holding pieces of color c.
func (b *Board) squaresOf(c Color) []Position {
	var out []Position
	b.each(func(p Position, pc *Piece) {
		if pc.Color == c {
			out = append(out, p)
		}
	})
	return out
}

// Snapshot is a read-only copy of every occupied cell.
type Snapshot map[Position]Piece

func (b *Board) Snapshot() Snapshot {
	s := make(Snapshot)
	b.each(func(p Position, pc *Piece) {
		s[p] = *pc
	})
	return s
}

// Squares renders the full grid, corners flagged, for display.
func (b *Board) Squares() [][]Square {
	grid := make([][]Square, Size)
	for r := 0; r < Size; r++ {
		grid[r] = make([]Square, Size)
		for c := 0; c < Size; c++ {
			pos := Position{Row: r, Col: c}
			sq := Square{Position: pos, OffBoard: b.corners(pos)}
			if pc := b.cells[r][c]; pc != nil {
				cp := *pc
				sq.Piece = &cp
			}
			grid[r][c] = sq
		}
	}
	return grid
}
