package player

import (
	"tdvalue/game"
	"tdvalue/model"

	"golang.org/x/exp/rand"
)

// Player chooses moves for the side to move.
type Player interface {
	// Action returns the move played in evaluation; it never explores.
	Action(state game.State) (game.Move, error)
	// ActionAndValue returns a move chosen under the exploration rate epsilon
	// together with the estimated value of the position that move leads to,
	// from the mover's perspective.
	ActionAndValue(state game.State, epsilon float64) (game.Move, float64, error)
}

// Learner is a player backed by the value model being trained.
type Learner interface {
	Player
	Model() model.Estimator
}

func legalMoves(state game.State) ([]game.Move, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, game.Violation("legal moves", "no legal moves on a non-terminal state")
	}
	return moves, nil
}

type randomPlayer struct {
	rng *rand.Rand
}

// NewRandom returns a player that picks uniformly among legal moves.
func NewRandom(rng *rand.Rand) Player {
	return randomPlayer{rng: rng}
}

func (p randomPlayer) Action(state game.State) (game.Move, error) {
	move, _, err := p.ActionAndValue(state, 0)
	return move, err
}

// ActionAndValue reports a draw as a placeholder value; a random player has no estimate.
func (p randomPlayer) ActionAndValue(state game.State, _ float64) (game.Move, float64, error) {
	moves, err := legalMoves(state)
	if err != nil {
		return 0, 0, err
	}
	return moves[p.rng.Intn(len(moves))], game.Draw, nil
}
