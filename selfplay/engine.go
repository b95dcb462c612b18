package selfplay

import (
	"fmt"

	"tdvalue/game"
	"tdvalue/player"
	"tdvalue/replay"

	"github.com/rs/zerolog/log"
)

// Strategy computes the training target for the pre-move state from the model's
// estimate of that state and the player's estimate of the chosen successor.
type Strategy func(value, vPrime, alpha float64) float64

// Bootstrap blends the current estimate toward the one-ply look-ahead estimate:
// alpha 0 keeps value, alpha 1 takes vPrime.
func Bootstrap(value, vPrime, alpha float64) float64 {
	return value + alpha*(vPrime-value)
}

// Complement gives the opponent-perspective target emitted with the terminal state.
type Complement func(target, terminal float64) float64

// PreMoveComplement complements the last pre-move target rather than the
// terminal value. This reproduces the reference data exactly.
func PreMoveComplement(target, _ float64) float64 {
	return 1 - target
}

func OutcomeComplement(_, terminal float64) float64 {
	return 1 - terminal
}

type Option func(e *Engine)

func WithStrategy(strategy Strategy) Option {
	return func(e *Engine) {
		if strategy != nil {
			e.strategy = strategy
		}
	}
}

func WithComplement(complement Complement) Option {
	return func(e *Engine) {
		if complement != nil {
			e.complement = complement
		}
	}
}

// WithMaxPlies bounds the length of a game. Without it the game adapter must
// guarantee termination.
func WithMaxPlies(plies int) Option {
	return func(e *Engine) {
		if plies > 0 {
			e.maxPlies = plies
		}
	}
}

// WithDisplay logs every position at debug level.
func WithDisplay() Option {
	return func(e *Engine) {
		e.display = true
	}
}

// Engine generates training examples by letting one learner play against itself.
type Engine struct {
	newGame    game.Factory
	strategy   Strategy
	complement Complement
	maxPlies   int
	display    bool
}

func NewEngine(newGame game.Factory, options ...Option) *Engine {
	e := &Engine{
		newGame:    newGame,
		strategy:   Bootstrap,
		complement: PreMoveComplement,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run plays numGames games and returns the augmented examples in generation order.
// Each ply yields 2 examples per symmetry, and the terminal position 2 more per symmetry.
func (e *Engine) Run(learner player.Learner, numGames int, alpha, epsilon float64) ([]replay.Example, error) {
	if numGames < 1 {
		return nil, fmt.Errorf("number of games must be positive, got %d", numGames)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0, 1], got %g", alpha)
	}
	if epsilon < 0 || epsilon > 1 {
		return nil, fmt.Errorf("epsilon must be in [0, 1], got %g", epsilon)
	}

	var data []replay.Example
	for n := 0; n < numGames; n++ {
		examples, plies, err := e.play(learner, alpha, epsilon)
		if err != nil {
			return nil, fmt.Errorf("self-play game %d: %w", n, err)
		}
		data = append(data, examples...)
		log.Debug().Int("game", n).Int("plies", plies).Int("examples", len(examples)).Msg("self-play game finished")
	}
	return data, nil
}

func (e *Engine) play(learner player.Learner, alpha, epsilon float64) ([]replay.Example, int, error) {
	state := e.newGame()
	width := len(state.Vector())
	var data []replay.Example

	for ply := 0; ; ply++ {
		if e.maxPlies > 0 && ply >= e.maxPlies {
			return nil, ply, game.Violation("self-play", "game did not end within %d plies", e.maxPlies)
		}
		if e.display {
			log.Debug().Msgf("ply %d\n%s", ply, state)
		}

		action, vPrime, err := learner.ActionAndValue(state, epsilon)
		if err != nil {
			return nil, ply, err
		}

		current := state.Vector()
		if len(current) != width {
			return nil, ply, game.Violation("state", "vector length changed from %d to %d", width, len(current))
		}
		value := learner.Model().Estimate(current)
		target := e.strategy(value, vPrime, alpha)

		symmetries, err := symmetriesOf(state, width)
		if err != nil {
			return nil, ply, err
		}
		data = augment(data, symmetries, target, 1-target)

		if err := state.Play(action); err != nil {
			return nil, ply, err
		}
		if terminal, over := state.Outcome(); over {
			if e.display {
				log.Debug().Msgf("final\n%s", state)
			}
			symmetries, err := symmetriesOf(state, width)
			if err != nil {
				return nil, ply, err
			}
			data = augment(data, symmetries, terminal, e.complement(target, terminal))
			return data, ply + 1, nil
		}
		state.Flip()
	}
}

func symmetriesOf(state game.State, width int) ([][]float64, error) {
	all := state.Symmetries()
	for _, s := range all {
		if len(s) != width {
			return nil, game.Violation("symmetries", "vector length %d, expected %d", len(s), width)
		}
	}
	return all, nil
}

// augment emits (s, target) for every symmetry, then (-s, opponent) for every symmetry.
func augment(data []replay.Example, symmetries [][]float64, target, opponent float64) []replay.Example {
	for _, s := range symmetries {
		data = append(data, replay.Example{State: s, Target: target})
	}
	for _, s := range symmetries {
		data = append(data, replay.Example{State: negate(s), Target: opponent})
	}
	return data
}

func negate(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = -v
	}
	return out
}
