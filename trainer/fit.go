package trainer

import (
	"errors"
	"fmt"

	"tdvalue/replay"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var ErrEmptyDataset = errors.New("empty dataset")

// Model is the trainable side of the value model.
type Model interface {
	// Step performs one gradient update on the batch.
	Step(batch training.Examples, loss deep.Loss, solver training.Solver) error
	// Evaluate returns the batch loss without updating weights.
	Evaluate(batch training.Examples, loss deep.Loss) (float64, error)
}

type Trainer struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Trainer {
	return &Trainer{rng: rng}
}

// Fit runs epochs over data and returns the mean loss of each epoch.
//
// Every epoch shuffles the whole dataset once, then takes one gradient step per
// contiguous chunk of batchSize examples (the last chunk may be shorter). The
// reported loss is recomputed over an independent shuffle of the same data, so it
// measures fit on the training data, not generalization.
func (t *Trainer) Fit(m Model, data []replay.Example, loss deep.Loss, solver training.Solver, epochs, batchSize int) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDataset
	}
	if epochs < 1 {
		return nil, fmt.Errorf("epochs must be positive, got %d", epochs)
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	examples := replay.Training(data)

	losses := make([]float64, 0, epochs)
	for epoch := 0; epoch < epochs; epoch++ {
		t.shuffle(examples)
		for _, batch := range batches(examples, batchSize) {
			if err := m.Step(batch, loss, solver); err != nil {
				return losses, fmt.Errorf("epoch %d: training step: %w", epoch, err)
			}
		}

		t.shuffle(examples)
		var sum float64
		chunks := batches(examples, batchSize)
		for _, batch := range chunks {
			l, err := m.Evaluate(batch, loss)
			if err != nil {
				return losses, fmt.Errorf("epoch %d: evaluating loss: %w", epoch, err)
			}
			sum += l
		}
		mean := sum / float64(len(chunks))
		losses = append(losses, mean)

		log.Info().Msgf("Epoch %d | Loss: %.4e", epoch, mean)
	}
	return losses, nil
}

func (t *Trainer) shuffle(examples training.Examples) {
	t.rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
}

func batches(examples training.Examples, size int) []training.Examples {
	chunks := make([]training.Examples, 0, (len(examples)+size-1)/size)
	for i := 0; i < len(examples); i += size {
		end := min(i+size, len(examples))
		chunks = append(chunks, examples[i:end])
	}
	return chunks
}
