package model

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Phase string

const (
	WaitingSelection    Phase = "waiting_selection"
	AwaitingDestination Phase = "awaiting_destination"
	MoveApplied         Phase = "move_applied"
	GameOver            Phase = "game_over"
)

type EliminationReason string

const (
	ReasonKingCaptured EliminationReason = "king_captured"
	ReasonCheckmate    EliminationReason = "checkmate"
	ReasonResigned     EliminationReason = "resigned"
	ReasonStalemate    EliminationReason = "stalemate"
)

type Elimination struct {
	Color  Color             `json:"color"`
	Reason EliminationReason `json:"reason"`
	Ply    int               `json:"ply"`
}

type GameState struct {
	Phase      Phase            `json:"phase"`
	Turn       Color            `json:"toMove"`
	Rotation   []Color          `json:"rotation"`
	MoveCount  int              `json:"moveCount"`
	Over       bool             `json:"gameOver"`
	Winners    []Color          `json:"winners"`
	Eliminated []Elimination    `json:"eliminated"`
	Statuses   map[Color]Status `json:"statuses"`
	Selected   *Position        `json:"selectedSquare"`
	LegalMoves []Position       `json:"legalMoves"`
	LastMove   *Move            `json:"lastMove"`
}

// Game is one four-player game: the authoritative board plus turn state.
// It is not safe for concurrent use. Callers serialize ApplyMove, Select,
// Deselect and Resign per game; read-only queries may run together.
type Game struct {
	rules   Rules
	board   *Board
	state   GameState
	history []Move
}

// NewGame sets up a game under rules. With no explicit Setup the standard
// opening is used, keeping only the seated colors.
func NewGame(rules Rules) (*Game, error) {
	if err := rules.validate(); err != nil {
		return nil, err
	}
	setup := rules.Setup
	if setup == nil {
		setup = StandardSetup()
		maps.DeleteFunc(setup, func(_ Position, pc Piece) bool {
			return !slices.Contains(rules.Seating, pc.Color)
		})
	}
	for pos, pc := range setup {
		if !slices.Contains(rules.Seating, pc.Color) {
			return nil, fmt.Errorf("%w: %s %s on %s but %s is not seated", ErrInvalidRules, pc.Color, pc.Type, pos, pc.Color)
		}
	}
	board, err := NewBoard(rules.Corners, setup)
	if err != nil {
		return nil, err
	}
	for _, c := range rules.Seating {
		if _, ok := board.King(c); !ok {
			return nil, fmt.Errorf("%w: %s has no king", ErrInvalidRules, c)
		}
	}

	g := &Game{
		rules: rules,
		board: board,
		state: GameState{
			Phase:      WaitingSelection,
			Rotation:   slices.Clone(rules.Seating),
			Winners:    []Color{},
			Eliminated: []Elimination{},
			LegalMoves: []Position{},
		},
	}
	g.state.Statuses = g.statuses()
	g.advanceTurn(rules.Seating[len(rules.Seating)-1])
	return g, nil
}

func (g *Game) Rules() Rules { return g.rules }

func (g *Game) CurrentTurn() Color { return g.state.Turn }

// State returns a copy of the turn state.
func (g *Game) State() GameState {
	s := g.state
	s.Rotation = slices.Clone(g.state.Rotation)
	s.Winners = slices.Clone(g.state.Winners)
	s.Eliminated = slices.Clone(g.state.Eliminated)
	s.Statuses = maps.Clone(g.state.Statuses)
	s.LegalMoves = slices.Clone(g.state.LegalMoves)
	if g.state.Selected != nil {
		sel := *g.state.Selected
		s.Selected = &sel
	}
	if g.state.LastMove != nil {
		last := *g.state.LastMove
		s.LastMove = &last
	}
	return s
}

func (g *Game) Snapshot() Snapshot { return g.board.Snapshot() }

func (g *Game) Squares() [][]Square { return g.board.Squares() }

func (g *Game) PieceAt(p Position) (*Piece, error) { return g.board.PieceAt(p) }

func (g *Game) IsCorner(p Position) bool { return g.board.IsCorner(p) }

func (g *Game) IsInCheck(c Color) bool { return g.board.IsInCheck(c) }

func (g *Game) Status(c Color) Status { return g.board.Status(c) }

// History lists applied moves, oldest first.
func (g *Game) History() []Move { return slices.Clone(g.history) }

// LegalMovesFor lists the legal destinations of the piece on p in row-major
// order. Empty cells, eliminated pieces and finished games yield none.
func (g *Game) LegalMovesFor(p Position) ([]Position, error) {
	if !g.board.OnBoard(p) {
		return nil, outOfBounds(p)
	}
	if g.state.Over {
		return []Position{}, nil
	}
	return destinations(g.board.legalMoves(p, g.rules.DefaultPromotion)), nil
}

// LegalMovesForColor lists every legal move of color c.
func (g *Game) LegalMovesForColor(c Color) []Move {
	if g.state.Over {
		return nil
	}
	var moves []Move
	for _, from := range g.board.squaresOf(c) {
		moves = append(moves, g.board.legalMoves(from, g.rules.DefaultPromotion)...)
	}
	return moves
}

func destinations(moves []Move) []Position {
	out := make([]Position, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To)
	}
	slices.SortFunc(out, Position.before)
	return out
}

// Select picks the piece on p for the side to move and remembers its legal
// destinations.
func (g *Game) Select(p Position) ([]Position, error) {
	if g.state.Over {
		return nil, illegal(p, p, "game is over")
	}
	if !g.board.OnBoard(p) {
		return nil, outOfBounds(p)
	}
	pc := g.board.at(p)
	if pc == nil {
		return nil, illegal(p, p, "no piece to select")
	}
	if pc.Color != g.state.Turn {
		return nil, illegal(p, p, fmt.Sprintf("%s to move, piece is %s", g.state.Turn, pc.Color))
	}
	moves, _ := g.LegalMovesFor(p)
	sel := p
	g.state.Selected = &sel
	g.state.LegalMoves = moves
	g.state.Phase = AwaitingDestination
	return slices.Clone(moves), nil
}

func (g *Game) Deselect() {
	if g.state.Over {
		return
	}
	g.clearSelection()
	g.state.Phase = WaitingSelection
}

func (g *Game) clearSelection() {
	g.state.Selected = nil
	g.state.LegalMoves = []Position{}
}

// ApplyMove validates req against the side to move and its legal set, applies
// it, eliminates captured and checkmated colors, then passes the turn.
func (g *Game) ApplyMove(req MoveRequest) (MoveResult, error) {
	if g.state.Over {
		return MoveResult{}, illegal(req.From, req.To, "game is over")
	}
	if !g.board.OnBoard(req.From) {
		return MoveResult{}, outOfBounds(req.From)
	}
	if !g.board.OnBoard(req.To) {
		return MoveResult{}, outOfBounds(req.To)
	}
	pc := g.board.at(req.From)
	if pc == nil {
		return MoveResult{}, illegal(req.From, req.To, "no piece on from square")
	}
	if pc.Color != g.state.Turn {
		return MoveResult{}, illegal(req.From, req.To, fmt.Sprintf("%s to move, piece is %s", g.state.Turn, pc.Color))
	}
	promoteTo := g.rules.DefaultPromotion
	if req.Promotion != "" {
		if !req.Promotion.canPromoteTo() {
			return MoveResult{}, illegal(req.From, req.To, fmt.Sprintf("cannot promote to %q", req.Promotion))
		}
		promoteTo = req.Promotion
	}

	var move *Move
	for _, m := range g.board.legalMoves(req.From, promoteTo) {
		if m.To == req.To {
			m := m
			move = &m
			break
		}
	}
	if move == nil {
		return MoveResult{}, illegal(req.From, req.To, "destination not in legal moves")
	}
	if req.Promotion != "" && !move.Promotion {
		return MoveResult{}, illegal(req.From, req.To, "move does not promote")
	}

	if err := g.board.Apply(*move); err != nil {
		return MoveResult{}, err
	}

	mover := move.Piece.Color
	g.state.MoveCount++
	g.history = append(g.history, *move)
	last := *move
	g.state.LastMove = &last
	g.clearSelection()

	var eliminated []Elimination
	if move.Captured != nil && move.Captured.Type == King && slices.Contains(g.state.Rotation, move.Captured.Color) {
		eliminated = append(eliminated, g.eliminate(move.Captured.Color, ReasonKingCaptured))
	}
	eliminated = append(eliminated, g.settle(mover)...)
	if !g.state.Over {
		g.advanceTurn(mover)
	}
	if !g.state.Over {
		g.state.Phase = MoveApplied
	}

	return MoveResult{
		Move:       *move,
		Statuses:   maps.Clone(g.state.Statuses),
		Turn:       g.state.Turn,
		GameOver:   g.state.Over,
		Winners:    slices.Clone(g.state.Winners),
		Eliminated: eliminated,
	}, nil
}

// Resign takes c out of play. Its pieces stay on the board.
func (g *Game) Resign(c Color) error {
	if g.state.Over {
		return illegal(Position{}, Position{}, "game is over")
	}
	if !slices.Contains(g.state.Rotation, c) {
		return illegal(Position{}, Position{}, fmt.Sprintf("%s is not in play", c))
	}
	g.eliminate(c, ReasonResigned)
	g.state.Statuses = g.statuses()
	if len(g.state.Rotation) < 2 || !slices.Contains(g.state.Rotation, g.state.Turn) {
		g.clearSelection()
		g.advanceTurn(g.state.Turn)
		if !g.state.Over {
			g.state.Phase = WaitingSelection
		}
	}
	return nil
}

// settle sweeps every remaining color after a move, since one move can check
// or mate several kings at once. Colors are taken out one at a time in seating
// order after the mover, because an eliminated army stops attacking and may
// release another color from mate.
func (g *Game) settle(mover Color) []Elimination {
	var out []Elimination
	for {
		g.state.Statuses = g.statuses()
		c, status, ok := g.nextOut(mover)
		if !ok {
			return out
		}
		if status == StatusCheckmate && g.rules.CheckmateEndsGame {
			g.finish([]Color{mover})
			return out
		}
		reason := ReasonCheckmate
		if status == StatusStalemate {
			reason = ReasonStalemate
		}
		out = append(out, g.eliminate(c, reason))
	}
}

// nextOut returns the first color after mover, in seating order, whose status
// removes it from play.
func (g *Game) nextOut(mover Color) (Color, Status, bool) {
	seats := g.rules.Seating
	start := slices.Index(seats, mover)
	for i := 1; i <= len(seats); i++ {
		c := seats[(start+i)%len(seats)]
		if !slices.Contains(g.state.Rotation, c) {
			continue
		}
		switch s := g.state.Statuses[c]; {
		case s == StatusCheckmate:
			return c, s, true
		case s == StatusStalemate && g.rules.StalemateEliminates:
			return c, s, true
		}
	}
	return "", "", false
}

func (g *Game) statuses() map[Color]Status {
	out := make(map[Color]Status, len(g.rules.Seating))
	for _, c := range g.rules.Seating {
		out[c] = g.board.Status(c)
	}
	return out
}

func (g *Game) eliminate(c Color, reason EliminationReason) Elimination {
	g.board.eliminate(c)
	if i := slices.Index(g.state.Rotation, c); i >= 0 {
		g.state.Rotation = slices.Delete(g.state.Rotation, i, i+1)
	}
	e := Elimination{Color: c, Reason: reason, Ply: g.state.MoveCount}
	g.state.Eliminated = append(g.state.Eliminated, e)
	return e
}

// advanceTurn hands the move to the next remaining color after `after` in
// seating order. Stalemated colors are passed over unless the rules eliminate
// them; when nobody can move, or one or zero colors remain, the game ends.
func (g *Game) advanceTurn(after Color) {
	switch len(g.state.Rotation) {
	case 0:
		g.finish([]Color{})
		return
	case 1:
		g.finish(slices.Clone(g.state.Rotation))
		return
	}
	seats := g.rules.Seating
	start := slices.Index(seats, after)
	for i := 1; i <= len(seats); i++ {
		c := seats[(start+i+len(seats))%len(seats)]
		if !slices.Contains(g.state.Rotation, c) {
			continue
		}
		if s := g.state.Statuses[c]; s == StatusNormal || s == StatusCheck {
			g.state.Turn = c
			return
		}
	}
	g.finish([]Color{})
}

func (g *Game) finish(winners []Color) {
	g.state.Over = true
	g.state.Winners = winners
	g.state.Phase = GameOver
	g.clearSelection()
}
