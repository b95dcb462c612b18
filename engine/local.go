package engine

import (
	"fmt"

	"tdvalue/game"
	"tdvalue/player"

	"github.com/rs/zerolog/log"
)

type Option func(e *Evaluator)

// WithMaxPlies bounds the length of an evaluation game.
func WithMaxPlies(plies int) Option {
	return func(e *Evaluator) {
		if plies > 0 {
			e.maxPlies = plies
		}
	}
}

// Evaluator plays deterministic matches between two players.
type Evaluator struct {
	newGame  game.Factory
	maxPlies int
}

func NewEvaluator(newGame game.Factory, options ...Option) *Evaluator {
	e := &Evaluator{newGame: newGame}
	for _, option := range options {
		option(e)
	}
	return e
}

// Compare plays numGames games. The first player starts games n < numGames/2 and
// the second starts the rest; turns alternate every ply. A win is credited to the
// side that made the final move, any other terminal value counts as a draw.
func (e *Evaluator) Compare(first, second player.Player, numGames int) (Score, error) {
	var score Score
	for n := 0; n < numGames; n++ {
		firstStarts := 2*n < numGames
		winner, plies, err := e.play(first, second, firstStarts)
		if err != nil {
			return score, fmt.Errorf("evaluation game %d: %w", n, err)
		}
		switch winner {
		case 1:
			score.WinsFirst++
		case 2:
			score.WinsSecond++
		default:
			score.Draws++
		}
		log.Debug().Int("game", n).Bool("first_starts", firstStarts).Int("winner", winner).Int("plies", plies).Msg("evaluation game finished")
	}
	return score, nil
}

// play returns 1 or 2 for the winning player, 0 otherwise.
func (e *Evaluator) play(first, second player.Player, firstStarts bool) (int, int, error) {
	state := e.newGame()
	players := [2]player.Player{first, second}
	current := 0
	if !firstStarts {
		current = 1
	}

	for ply := 0; ; ply++ {
		if e.maxPlies > 0 && ply >= e.maxPlies {
			return 0, ply, game.Violation("evaluation", "game did not end within %d plies", e.maxPlies)
		}
		move, err := players[current].Action(state)
		if err != nil {
			return 0, ply, err
		}
		if err := state.Play(move); err != nil {
			return 0, ply, err
		}
		if value, over := state.Outcome(); over {
			if value == game.Win {
				return current + 1, ply + 1, nil
			}
			return 0, ply + 1, nil
		}
		state.Flip()
		current = 1 - current
	}
}
