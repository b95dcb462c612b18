package player

import (
	"testing"

	"tdvalue/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var _ Learner = (*ModelPlayer)(nil)

type estimatorFunc func(state []float64) float64

func (f estimatorFunc) Estimate(state []float64) float64 { return f(state) }

// board plays the moves alternately, leaving the next side to move.
func board(t *testing.T, moves ...game.Move) game.State {
	t.Helper()
	g := game.NewMNK(3, 3)
	for _, m := range moves {
		require.NoError(t, g.Play(m))
		g.Flip()
	}
	return g
}

func TestRandomPlayer(t *testing.T) {
	t.Run("returns a legal move with a placeholder value", func(t *testing.T) {
		p := NewRandom(rand.New(rand.NewSource(1)))
		state := board(t, 0, 4)
		for i := 0; i < 20; i++ {
			move, value, err := p.ActionAndValue(state, 0.3)
			require.NoError(t, err)
			require.Contains(t, state.LegalMoves(), move)
			require.Equal(t, game.Draw, value)
		}
	})

	t.Run("no legal moves is a contract violation", func(t *testing.T) {
		p := NewRandom(rand.New(rand.NewSource(1)))
		_, err := p.Action(board(t, 0, 3, 1, 4, 2))
		require.ErrorIs(t, err, game.ErrContract)
	})
}

func TestGreedyPlayer(t *testing.T) {
	t.Run("takes an immediate win", func(t *testing.T) {
		// X: 0, 1   O: 3, 4   X to move
		move, value, err := NewGreedy().ActionAndValue(board(t, 0, 3, 1, 4), 1)
		require.NoError(t, err)
		require.Equal(t, game.Move(2), move)
		require.Equal(t, game.Win, value)
	})

	t.Run("blocks an immediate threat", func(t *testing.T) {
		// X: 0, 8   O: 3, 4   X to move, O threatens 5
		move, err := NewGreedy().Action(board(t, 0, 3, 8, 4))
		require.NoError(t, err)
		require.Equal(t, game.Move(5), move)
	})

	t.Run("is deterministic", func(t *testing.T) {
		state := board(t, 4)
		first, err := NewGreedy().Action(state)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := NewGreedy().Action(state)
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	})
}

func TestModelPlayer(t *testing.T) {
	cornerLover := estimatorFunc(func(state []float64) float64 {
		if state[8] == 1 {
			return 0.9
		}
		return 0.2
	})

	t.Run("greedy choice maximizes the successor value", func(t *testing.T) {
		p := NewModel(cornerLover, rand.New(rand.NewSource(1)))
		move, value, err := p.ActionAndValue(board(t), 0)
		require.NoError(t, err)
		require.Equal(t, game.Move(8), move)
		require.Equal(t, 0.9, value)
	})

	t.Run("exploration always picks a non-greedy move", func(t *testing.T) {
		p := NewModel(cornerLover, rand.New(rand.NewSource(7)))
		for i := 0; i < 50; i++ {
			move, value, err := p.ActionAndValue(board(t), 1)
			require.NoError(t, err)
			require.NotEqual(t, game.Move(8), move)
			require.Equal(t, 0.2, value, "Value belongs to the chosen successor")
		}
	})

	t.Run("terminal successors use the terminal value", func(t *testing.T) {
		pessimist := estimatorFunc(func([]float64) float64 { return 0 })
		p := NewModel(pessimist, rand.New(rand.NewSource(1)))
		move, value, err := p.ActionAndValue(board(t, 0, 3, 1, 4), 0)
		require.NoError(t, err)
		require.Equal(t, game.Move(2), move)
		require.Equal(t, game.Win, value)
	})

	t.Run("evaluation action never explores", func(t *testing.T) {
		p := NewModel(cornerLover, rand.New(rand.NewSource(3)))
		move, err := p.Action(board(t))
		require.NoError(t, err)
		require.Equal(t, game.Move(8), move)
	})

	t.Run("exposes the shared model", func(t *testing.T) {
		p := NewModel(cornerLover, nil)
		require.NotNil(t, p.Model())
	})
}
