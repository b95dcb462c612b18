package player

import (
	"fmt"

	"tdvalue/game"
)

type greedyPlayer struct{}

// NewGreedy returns a fixed, non-learning baseline. It takes an immediate win,
// avoids moves that hand the opponent an immediate win, and otherwise follows
// the game's heuristic. Ties keep the first move in legal-move order.
func NewGreedy() Player {
	return greedyPlayer{}
}

func (p greedyPlayer) Action(state game.State) (game.Move, error) {
	move, _, err := p.ActionAndValue(state, 0)
	return move, err
}

// ActionAndValue ignores epsilon; the greedy baseline never explores.
func (p greedyPlayer) ActionAndValue(state game.State, _ float64) (game.Move, float64, error) {
	moves, err := legalMoves(state)
	if err != nil {
		return 0, 0, err
	}
	best, bestValue := moves[0], -1.0
	for _, move := range moves {
		value, err := p.score(state, move)
		if err != nil {
			return 0, 0, err
		}
		if value > bestValue {
			best, bestValue = move, value
		}
	}
	return best, bestValue, nil
}

func (p greedyPlayer) score(state game.State, move game.Move) (float64, error) {
	next := state.Clone()
	if err := next.Play(move); err != nil {
		return 0, fmt.Errorf("greedy candidate %d: %w", move, err)
	}
	if value, over := next.Outcome(); over {
		return value, nil
	}

	value := game.Draw
	if h, ok := next.(game.Heuristic); ok {
		value += 0.25 * h.Heuristic()
	}

	next.Flip()
	for _, reply := range next.LegalMoves() {
		after := next.Clone()
		if err := after.Play(reply); err != nil {
			return 0, fmt.Errorf("greedy reply %d: %w", reply, err)
		}
		if outcome, over := after.Outcome(); over && outcome == game.Win {
			return 0, nil
		}
	}
	return value, nil
}
