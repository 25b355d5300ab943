package model

var (
	rookDirs     = []Position{{Row: 1}, {Row: -1}, {Col: 1}, {Col: -1}}
	bishopDirs   = []Position{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	queenDirs    = append(append([]Position{}, rookDirs...), bishopDirs...)
	kingOffsets  = queenDirs
	knightOffset = []Position{
		{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1},
		{Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2},
	}
)

// pseudoMoves lists the destinations the piece on from could reach by its
// movement pattern, honouring blockers and the cut corners but not checks.
func (b *Board) pseudoMoves(from Position) []Position {
	pc := b.at(from)
	if pc == nil {
		return nil
	}
	switch pc.Type {
	case Pawn:
		return b.pseudoPawnMoves(from, pc)
	case Knight:
		return b.pseudoStepMoves(from, pc, knightOffset)
	case Bishop:
		return b.pseudoSlideMoves(from, pc, bishopDirs)
	case Rook:
		return b.pseudoSlideMoves(from, pc, rookDirs)
	case Queen:
		return b.pseudoSlideMoves(from, pc, queenDirs)
	case King:
		return b.pseudoStepMoves(from, pc, kingOffsets)
	}
	return nil
}

// canLand reports whether a piece of color c may end its move on p.
func (b *Board) canLand(p Position, c Color) bool {
	if !b.OnBoard(p) {
		return false
	}
	occupant := b.at(p)
	return occupant == nil || occupant.Color != c
}

// pawnSides returns the two sideways offsets perpendicular to a pawn's forward step.
func pawnSides(forward Position) [2]Position {
	if forward.Row != 0 {
		return [2]Position{{Col: -1}, {Col: 1}}
	}
	return [2]Position{{Row: -1}, {Row: 1}}
}

func (b *Board) pseudoPawnMoves(from Position, pc *Piece) []Position {
	moves := []Position{}
	fwd := pc.Color.forward()
	one := from.add(fwd)
	if b.OnBoard(one) && b.at(one) == nil {
		moves = append(moves, one)
		two := one.add(fwd)
		if !pc.HasMoved && b.OnBoard(two) && b.at(two) == nil {
			moves = append(moves, two)
		}
	}
	for _, side := range pawnSides(fwd) {
		target := one.add(side)
		if !b.OnBoard(target) {
			continue
		}
		if occupant := b.at(target); occupant != nil && occupant.Color != pc.Color {
			moves = append(moves, target)
		} else if _, ok := b.enPassantVictim(from, target, pc.Color); ok {
			moves = append(moves, target)
		}
	}
	return moves
}

func (b *Board) pseudoStepMoves(from Position, pc *Piece, offsets []Position) []Position {
	moves := []Position{}
	for _, off := range offsets {
		if target := from.add(off); b.canLand(target, pc.Color) {
			moves = append(moves, target)
		}
	}
	return moves
}

func (b *Board) pseudoSlideMoves(from Position, pc *Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		for target := from.add(dir); b.OnBoard(target); target = target.add(dir) {
			occupant := b.at(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}
			if occupant.Color != pc.Color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}
