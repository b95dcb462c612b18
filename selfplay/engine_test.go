package selfplay

import (
	"testing"

	"tdvalue/game"
	"tdvalue/player"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type estimatorFunc func(state []float64) float64

func (f estimatorFunc) Estimate(state []float64) float64 { return f(state) }

func constant(v float64) estimatorFunc {
	return func([]float64) float64 { return v }
}

// oneMoveState has a single legal ply that ends the game with a win. Its
// symmetry set has two members: the vector and its reversal.
type oneMoveState struct {
	vec    []float64
	played bool
}

func newOneMove() game.State {
	return &oneMoveState{vec: []float64{1, 0, -1}}
}

func (s *oneMoveState) Vector() []float64 { return append([]float64{}, s.vec...) }
func (s *oneMoveState) Symmetries() [][]float64 {
	reversed := make([]float64, len(s.vec))
	for i, v := range s.vec {
		reversed[len(s.vec)-1-i] = v
	}
	return [][]float64{s.Vector(), reversed}
}
func (s *oneMoveState) LegalMoves() []game.Move {
	if s.played {
		return nil
	}
	return []game.Move{1}
}
func (s *oneMoveState) Play(m game.Move) error {
	s.vec[m] = 1
	s.played = true
	return nil
}
func (s *oneMoveState) Outcome() (float64, bool) { return game.Win, s.played }
func (s *oneMoveState) Flip() {
	for i := range s.vec {
		s.vec[i] = -s.vec[i]
	}
}
func (s *oneMoveState) Clone() game.State {
	return &oneMoveState{vec: s.Vector(), played: s.played}
}
func (s *oneMoveState) String() string { return "stub" }

// endlessState never ends and optionally changes its vector length.
type endlessState struct {
	plies   int
	growing bool
}

func (s *endlessState) Vector() []float64 {
	if s.growing {
		return make([]float64, 2+s.plies)
	}
	return make([]float64, 2)
}
func (s *endlessState) Symmetries() [][]float64  { return [][]float64{s.Vector()} }
func (s *endlessState) LegalMoves() []game.Move  { return []game.Move{0} }
func (s *endlessState) Play(game.Move) error     { s.plies++; return nil }
func (s *endlessState) Outcome() (float64, bool) { return 0, false }
func (s *endlessState) Flip()                    {}
func (s *endlessState) Clone() game.State        { c := *s; return &c }
func (s *endlessState) String() string           { return "endless" }

func TestBootstrap(t *testing.T) {
	value, vPrime := 0.3, 0.8
	require.Equal(t, value, Bootstrap(value, vPrime, 0), "alpha=0 keeps the estimate")
	require.InDelta(t, vPrime, Bootstrap(value, vPrime, 1), 1e-12, "alpha=1 is a full bootstrap")
	require.InDelta(t, (value+vPrime)/2, Bootstrap(value, vPrime, 0.5), 1e-12)
}

func TestEngineSingleMoveGame(t *testing.T) {
	learner := player.NewModel(constant(0.3), rand.New(rand.NewSource(1)))

	t.Run("emits pre-move and terminal records", func(t *testing.T) {
		data, err := NewEngine(newOneMove).Run(learner, 1, 0.2, 0)
		require.NoError(t, err)
		require.Len(t, data, 8, "4 records from the pre-move step and 4 from the terminal step")

		target := 0.3 + 0.2*(game.Win-0.3)
		require.InDelta(t, target, data[0].Target, 1e-12)
		require.InDelta(t, target, data[1].Target, 1e-12)
		require.Equal(t, []float64{1, 0, -1}, data[0].State)
		require.Equal(t, []float64{-1, 0, 1}, data[1].State)

		require.InDelta(t, 1-target, data[2].Target, 1e-12)
		require.InDelta(t, 1-target, data[3].Target, 1e-12)
		require.Equal(t, []float64{-1, 0, 1}, data[2].State, "Opponent records negate the state")

		require.Equal(t, game.Win, data[4].Target)
		require.Equal(t, game.Win, data[5].Target)
		require.Equal(t, []float64{1, 1, -1}, data[4].State)

		require.InDelta(t, 1-target, data[6].Target, 1e-12, "Terminal complement uses the pre-move target")
		require.InDelta(t, 1-target, data[7].Target, 1e-12)
		require.Equal(t, []float64{-1, -1, 1}, data[6].State)
	})

	t.Run("outcome complement uses the terminal value", func(t *testing.T) {
		data, err := NewEngine(newOneMove, WithComplement(OutcomeComplement)).Run(learner, 1, 0.2, 0)
		require.NoError(t, err)
		require.Equal(t, 0.0, data[6].Target)
		require.Equal(t, 0.0, data[7].Target)
	})

	t.Run("alpha bounds of the blend", func(t *testing.T) {
		data, err := NewEngine(newOneMove).Run(learner, 1, 0, 0)
		require.NoError(t, err)
		require.Equal(t, 0.3, data[0].Target, "alpha=0 yields the pre-move estimate")

		data, err = NewEngine(newOneMove).Run(learner, 1, 1, 0)
		require.NoError(t, err)
		require.InDelta(t, game.Win, data[0].Target, 1e-12, "alpha=1 yields the look-ahead estimate")
	})

	t.Run("custom strategy", func(t *testing.T) {
		half := func(value, vPrime, _ float64) float64 { return 0.5 }
		data, err := NewEngine(newOneMove, WithStrategy(half)).Run(learner, 1, 0.2, 0)
		require.NoError(t, err)
		require.Equal(t, 0.5, data[0].Target)
	})

	t.Run("games accumulate in order", func(t *testing.T) {
		data, err := NewEngine(newOneMove).Run(learner, 3, 0.2, 0)
		require.NoError(t, err)
		require.Len(t, data, 24)
	})
}

func TestEngineTicTacToe(t *testing.T) {
	learner := player.NewModel(constant(0.5), rand.New(rand.NewSource(42)))
	perPly := 2 * 8

	for i := 0; i < 10; i++ {
		data, err := NewEngine(game.TicTacToe).Run(learner, 1, 0.2, 0.5)
		require.NoError(t, err)
		require.Zero(t, len(data)%perPly, "Every emission covers all symmetries twice")

		plies := len(data)/perPly - 1
		require.GreaterOrEqual(t, plies, 5)
		require.LessOrEqual(t, plies, 9)

		for _, e := range data {
			require.Len(t, e.State, 9)
			require.GreaterOrEqual(t, e.Target, 0.0)
			require.LessOrEqual(t, e.Target, 1.0)
		}
	}
}

func TestEngineErrors(t *testing.T) {
	learner := player.NewModel(constant(0.5), rand.New(rand.NewSource(1)))

	t.Run("invalid arguments", func(t *testing.T) {
		e := NewEngine(newOneMove)
		_, err := e.Run(learner, 0, 0.2, 0.2)
		require.Error(t, err)
		_, err = e.Run(learner, 1, 1.5, 0.2)
		require.Error(t, err)
		_, err = e.Run(learner, 1, 0.2, -0.1)
		require.Error(t, err)
	})

	t.Run("ply cap reports a non-terminating game", func(t *testing.T) {
		e := NewEngine(func() game.State { return &endlessState{} }, WithMaxPlies(10))
		_, err := e.Run(learner, 1, 0.2, 0)
		require.ErrorIs(t, err, game.ErrContract)
	})

	t.Run("state vector changing shape", func(t *testing.T) {
		e := NewEngine(func() game.State { return &endlessState{growing: true} }, WithMaxPlies(10))
		_, err := e.Run(learner, 1, 0.2, 0)
		require.ErrorIs(t, err, game.ErrContract)
	})
}
