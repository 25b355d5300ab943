package model

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds      = errors.New("out of bounds")
	ErrIllegalMove      = errors.New("illegal move")
	ErrBoardConsistency = errors.New("board consistency violated")
	ErrInvalidRules     = errors.New("invalid rules")
)

// OutOfBoundsError is returned for coordinates outside the grid or on a cut corner.
type OutOfBoundsError struct {
	Position Position
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%v: (%d,%d)", ErrOutOfBounds, e.Position.Row, e.Position.Col)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// IllegalMoveError is returned when a request is out of turn, names the wrong
// piece, or targets a square outside the legal set. State is left untouched.
type IllegalMoveError struct {
	From   Position
	To     Position
	Reason string
}

func (e *IllegalMoveError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("%v: %s", ErrIllegalMove, e.Reason)
	}
	return fmt.Sprintf("%v %s-%s: %s", ErrIllegalMove, e.From, e.To, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }

// BoardConsistencyError signals an engine defect. The operation that raised
// it has been rolled back.
type BoardConsistencyError struct {
	Op     string
	Detail string
}

func (e *BoardConsistencyError) Error() string {
	return fmt.Sprintf("%v during %s: %s", ErrBoardConsistency, e.Op, e.Detail)
}

func (e *BoardConsistencyError) Unwrap() error { return ErrBoardConsistency }

func outOfBounds(p Position) error {
	return &OutOfBoundsError{Position: p}
}

func illegal(from, to Position, reason string) error {
	return &IllegalMoveError{From: from, To: to, Reason: reason}
}

func inconsistent(op, format string, args ...any) error {
	return &BoardConsistencyError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
