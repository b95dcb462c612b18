package controller

import (
	"fmt"
	"math"
)

const (
	DefaultLearnRate = 1e-4
	DefaultAlpha     = 0.2
	DefaultEpsilon   = 0.5
	DefaultDir       = "results"

	// Iterations for the annealed part of epsilon to halve.
	halfLife = 32
	// Share of epsilon that never decays.
	floor = 0.2
)

// Config holds the hyper-parameters of a training run.
type Config struct {
	LearnRate         float64
	Alpha             float64 // TD blend factor
	Epsilon           float64 // Exploration rate at iteration 0
	Anneal            bool
	GamesPerIteration int
	Epochs            int
	BatchSize         int
	EvalGames         int
	Capacity          int // Replay buffer size, 0 keeps every example
	Dir               string
}

func DefaultConfig() Config {
	return Config{
		LearnRate:         DefaultLearnRate,
		Alpha:             DefaultAlpha,
		Epsilon:           DefaultEpsilon,
		Anneal:            true,
		GamesPerIteration: 100,
		Epochs:            10,
		BatchSize:         128,
		EvalGames:         100,
		Dir:               DefaultDir,
	}
}

func (c Config) Validate() error {
	switch {
	case c.LearnRate <= 0:
		return fmt.Errorf("learn rate must be positive, got %g", c.LearnRate)
	case c.Alpha < 0 || c.Alpha > 1:
		return fmt.Errorf("alpha must be in [0, 1], got %g", c.Alpha)
	case c.Epsilon < 0 || c.Epsilon > 1:
		return fmt.Errorf("epsilon must be in [0, 1], got %g", c.Epsilon)
	case c.GamesPerIteration < 1:
		return fmt.Errorf("games per iteration must be positive, got %d", c.GamesPerIteration)
	case c.Epochs < 1:
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.BatchSize < 1:
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	case c.EvalGames < 0:
		return fmt.Errorf("evaluation games must not be negative, got %d", c.EvalGames)
	case c.Capacity < 0:
		return fmt.Errorf("capacity must not be negative, got %d", c.Capacity)
	case c.Dir == "":
		return fmt.Errorf("results directory must be set")
	}
	return nil
}

// EpsilonAt returns the exploration rate for an iteration.
func (c Config) EpsilonAt(iteration int) float64 {
	if !c.Anneal {
		return c.Epsilon
	}
	return Schedule(c.Epsilon, iteration)
}

// Schedule decays epsilon0 with a half-life of 32 iterations towards 20% of
// epsilon0. Iteration 0 returns epsilon0 exactly.
func Schedule(epsilon0 float64, iteration int) float64 {
	return epsilon0 * (floor + (1-floor)*math.Exp2(-float64(iteration)/halfLife))
}
