package game

import (
	"errors"
	"fmt"
)

// Terminal values reported by State.Outcome, from the perspective of the side that just moved.
const (
	Win  = 1.0
	Draw = 0.5
)

type Move int

// State is the adapter every board game exposes to the training harness.
//
// The encoding returned by Vector and Symmetries is always relative to the side
// to move: after Flip the opponent becomes the acting side for all later queries.
// Play and Flip mutate the state in place; Clone returns an independent copy.
type State interface {
	Vector() []float64
	Symmetries() [][]float64
	LegalMoves() []Move
	Play(Move) error
	// Outcome reports the terminal value and whether the game is over.
	Outcome() (value float64, over bool)
	Flip()
	Clone() State
	String() string
}

// Factory returns a fresh initial state.
type Factory func() State

// Heuristic is implemented by states that can score a position without look-ahead.
// The score is in [-1, 1] for the side the state is currently encoded for.
type Heuristic interface {
	Heuristic() float64
}

var ErrContract = errors.New("game adapter contract violated")

// ContractError reports a game adapter that broke its contract, as opposed to a
// generic runtime failure.
type ContractError struct {
	Op     string
	Detail string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContract, e.Op, e.Detail)
}

func (e *ContractError) Unwrap() error {
	return ErrContract
}

func Violation(op, format string, args ...any) error {
	return &ContractError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
