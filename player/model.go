package player

import (
	"fmt"

	"tdvalue/game"
	"tdvalue/model"

	"golang.org/x/exp/rand"
)

// ModelPlayer ranks successor positions with a shared value model. It reads the
// model but never owns or writes it.
type ModelPlayer struct {
	model model.Estimator
	rng   *rand.Rand
}

func NewModel(m model.Estimator, rng *rand.Rand) *ModelPlayer {
	return &ModelPlayer{model: m, rng: rng}
}

func (p *ModelPlayer) Model() model.Estimator {
	return p.model
}

func (p *ModelPlayer) Action(state game.State) (game.Move, error) {
	move, _, err := p.ActionAndValue(state, 0)
	return move, err
}

// ActionAndValue picks the successor with the highest value, or with probability
// epsilon a uniformly chosen non-greedy move, and returns the chosen successor's value.
func (p *ModelPlayer) ActionAndValue(state game.State, epsilon float64) (game.Move, float64, error) {
	moves, err := legalMoves(state)
	if err != nil {
		return 0, 0, err
	}
	values, err := p.values(state, moves)
	if err != nil {
		return 0, 0, err
	}

	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}

	chosen := best
	if len(moves) > 1 && epsilon > 0 && p.rng.Float64() < epsilon {
		chosen = p.rng.Intn(len(moves) - 1)
		if chosen >= best {
			chosen++
		}
	}
	return moves[chosen], values[chosen], nil
}

// values scores each successor from the mover's perspective: the terminal value
// when the move ends the game, the model's estimate otherwise.
func (p *ModelPlayer) values(state game.State, moves []game.Move) ([]float64, error) {
	values := make([]float64, len(moves))
	for i, move := range moves {
		next := state.Clone()
		if err := next.Play(move); err != nil {
			return nil, fmt.Errorf("model candidate %d: %w", move, err)
		}
		if value, over := next.Outcome(); over {
			values[i] = value
			continue
		}
		values[i] = p.model.Estimate(next.Vector())
	}
	return values, nil
}
