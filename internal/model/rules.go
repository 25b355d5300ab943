package model

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Rules are the variant knobs of a game. The zero value is not usable; start
// from DefaultRules.
type Rules struct {
	// Corners decides which grid cells are cut out of play.
	Corners CornerMask
	// Seating is the turn rotation. Only seated colors take part.
	Seating []Color
	// Setup is the starting arrangement; nil means StandardSetup.
	Setup Setup
	// DefaultPromotion is used when a promoting move names no piece.
	DefaultPromotion PieceType
	// CheckmateEndsGame ends the whole game on the first checkmate, with the
	// mating side as sole winner. Otherwise the mated color is eliminated and
	// the others play on.
	CheckmateEndsGame bool
	// StalemateEliminates removes a color left with no legal move while not
	// in check. Otherwise it is skipped and stays seated.
	StalemateEliminates bool
}

func DefaultRules() Rules {
	return Rules{
		Corners:          SquareCorners(3),
		Seating:          slices.Clone(Colors),
		DefaultPromotion: Queen,
	}
}

func (r Rules) validate() error {
	if r.Corners == nil {
		return fmt.Errorf("%w: no corner mask", ErrInvalidRules)
	}
	if len(r.Seating) < 2 {
		return fmt.Errorf("%w: need at least two seated colors, got %d", ErrInvalidRules, len(r.Seating))
	}
	for i, c := range r.Seating {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown color %q", ErrInvalidRules, c)
		}
		if slices.Index(r.Seating, c) != i {
			return fmt.Errorf("%w: %s seated twice", ErrInvalidRules, c)
		}
	}
	if !r.DefaultPromotion.canPromoteTo() {
		return fmt.Errorf("%w: cannot promote to %q", ErrInvalidRules, r.DefaultPromotion)
	}
	return nil
}
