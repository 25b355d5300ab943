package model

type Status string

const (
	StatusNormal     Status = "normal"
	StatusCheck      Status = "check"
	StatusCheckmate  Status = "checkmate"
	StatusStalemate  Status = "stalemate"
	StatusEliminated Status = "eliminated"
)

// IsInCheck reports whether any other active color attacks c's king.
func (b *Board) IsInCheck(c Color) bool {
	if b.eliminated[c] {
		return false
	}
	king, ok := b.kings[c]
	if !ok {
		return false
	}
	return b.isSquareAttacked(king, c)
}

// attacker reports whether pc can threaten pieces of defender.
func (b *Board) attacker(pc *Piece, defender Color) bool {
	return pc != nil && pc.Color != defender && !b.eliminated[pc.Color]
}

// isSquareAttacked scans outward from target for any active opposing piece
// whose pseudo-legal moves land on it.
func (b *Board) isSquareAttacked(target Position, defender Color) bool {
	for _, dir := range rookDirs {
		if pc := b.firstAlong(target, dir); b.attacker(pc, defender) && (pc.Type == Rook || pc.Type == Queen) {
			return true
		}
	}
	for _, dir := range bishopDirs {
		if pc := b.firstAlong(target, dir); b.attacker(pc, defender) && (pc.Type == Bishop || pc.Type == Queen) {
			return true
		}
	}
	for _, off := range knightOffset {
		src := target.add(off)
		if b.OnBoard(src) {
			if pc := b.at(src); b.attacker(pc, defender) && pc.Type == Knight {
				return true
			}
		}
	}
	for _, off := range kingOffsets {
		src := target.add(off)
		if b.OnBoard(src) {
			if pc := b.at(src); b.attacker(pc, defender) && pc.Type == King {
				return true
			}
		}
	}
	for _, c := range Colors {
		if c == defender || b.eliminated[c] {
			continue
		}
		fwd := c.forward()
		for _, side := range pawnSides(fwd) {
			src := target.sub(fwd).sub(side)
			if !b.OnBoard(src) {
				continue
			}
			if pc := b.at(src); pc != nil && pc.Color == c && pc.Type == Pawn {
				return true
			}
		}
	}
	return false
}

// firstAlong returns the first piece met walking from p along dir, stopping
// at the grid edge or a cut corner.
func (b *Board) firstAlong(p Position, dir Position) *Piece {
	for cur := p.add(dir); b.OnBoard(cur); cur = cur.add(dir) {
		if pc := b.at(cur); pc != nil {
			return pc
		}
	}
	return nil
}

// newMove describes moving the piece on from to to. Pawns landing on their
// promotion edge become promotion, defaulting to promoteTo.
func (b *Board) newMove(from, to Position, promoteTo PieceType) Move {
	pc := b.at(from)
	m := Move{From: from, To: to, Piece: *pc}
	if captured := b.at(to); captured != nil {
		cp := *captured
		m.Captured = &cp
	} else if pc.Type == Pawn && from.Row != to.Row && from.Col != to.Col {
		if victim, ok := b.enPassantVictim(from, to, pc.Color); ok {
			cp := *b.at(victim)
			m.Captured = &cp
			m.EnPassantVictim = &victim
		}
	}
	if pc.Type == Pawn && pc.Color.promotesOn(to) {
		m.Promotion = true
		m.PromotedTo = promoteTo
	}
	return m
}

// legalMoves keeps the pseudo-legal moves of the piece on from that do not
// leave its own king attacked. Each candidate is tried on a throwaway clone.
func (b *Board) legalMoves(from Position, promoteTo PieceType) []Move {
	pc := b.at(from)
	if pc == nil || b.eliminated[pc.Color] {
		return nil
	}
	var moves []Move
	for _, to := range b.pseudoMoves(from) {
		m := b.newMove(from, to, promoteTo)
		if b.leavesKingSafe(m, pc.Color) {
			moves = append(moves, m)
		}
	}
	return moves
}

func (b *Board) leavesKingSafe(m Move, mover Color) bool {
	scratch := b.Clone()
	if err := scratch.apply(m); err != nil {
		return false
	}
	return !scratch.IsInCheck(mover)
}

func (b *Board) hasLegalMove(c Color) bool {
	if b.eliminated[c] {
		return false
	}
	for _, from := range b.squaresOf(c) {
		for _, to := range b.pseudoMoves(from) {
			if b.leavesKingSafe(b.newMove(from, to, Queen), c) {
				return true
			}
		}
	}
	return false
}

// Status classifies c: checkmate and stalemate both mean no legal move,
// told apart by whether the king is attacked.
func (b *Board) Status(c Color) Status {
	if b.eliminated[c] {
		return StatusEliminated
	}
	inCheck := b.IsInCheck(c)
	hasMove := b.hasLegalMove(c)
	switch {
	case inCheck && !hasMove:
		return StatusCheckmate
	case !hasMove:
		return StatusStalemate
	case inCheck:
		return StatusCheck
	}
	return StatusNormal
}
