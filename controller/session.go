package controller

import (
	"tdvalue/engine"
	"tdvalue/model"
	"tdvalue/player"
	"tdvalue/replay"
	"tdvalue/trainer"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
)

// Model is a value model that can be trained and snapshotted.
type Model interface {
	model.Estimator
	trainer.Model
	Marshal() ([]byte, error)
}

// Session is the mutable state carried from one iteration to the next.
type Session struct {
	Model    Model
	Learner  player.Learner // Plays through Model
	Baseline player.Player  // Fixed evaluation opponent
	Solver   training.Solver
	Loss     deep.Loss
	Buffer   *replay.Buffer

	best     engine.Score
	previous *engine.Score
}

// NewSession leaves Buffer unset; the controller sizes it from Config.Capacity.
func NewSession(m Model, learner player.Learner, baseline player.Player, solver training.Solver) *Session {
	return &Session{
		Model:    m,
		Learner:  learner,
		Baseline: baseline,
		Solver:   solver,
		Loss:     model.MeanSquared(),
	}
}

// Best is the score that earned the current best checkpoint, (0,0,0) before any promotion.
func (s *Session) Best() engine.Score {
	return s.best
}

// Previous is the most recent evaluation score, if any iteration has finished.
func (s *Session) Previous() (engine.Score, bool) {
	if s.previous == nil {
		return engine.Score{}, false
	}
	return *s.previous, true
}
