package model

import (
	"fmt"
	"os"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"golang.org/x/exp/rand"
)

// weightStdDev is the spread of the initial weights.
const weightStdDev = 0.1

// Estimator maps an encoded state to the probability that the side it is
// encoded for wins.
type Estimator interface {
	Estimate(state []float64) float64
}

type Option func(c *deep.Config)

// WithHidden sets the hidden layer sizes.
func WithHidden(sizes ...int) Option {
	return func(c *deep.Config) {
		if len(sizes) > 0 {
			c.Layout = append(append([]int{}, sizes...), 1)
		}
	}
}

func WithWeights(initializer deep.WeightInitializer) Option {
	return func(c *deep.Config) {
		if initializer != nil {
			c.Weight = initializer
		}
	}
}

// Network is a fully connected value network with a single sigmoid output.
//
// It is the only mutable shared resource of a training run: Step writes the
// weights, everything else reads them.
type Network struct {
	neural  *deep.Neural
	updates int // optimizer steps taken so far, drives bias correction

	deltas    [][]float64
	gradients [][][]float64
}

// New draws the initial weights from rng so that a seeded run is reproducible.
func New(inputs int, rng *rand.Rand, options ...Option) *Network {
	config := &deep.Config{
		Inputs:     inputs,
		Layout:     []int{64, 32, 1},
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeBinary,
		Weight:     func() float64 { return rng.NormFloat64() * weightStdDev },
		Bias:       true,
		Loss:       deep.LossMeanSquared,
	}
	for _, option := range options {
		option(config)
	}
	return wrap(deep.NewNeural(config))
}

func wrap(neural *deep.Neural) *Network {
	n := &Network{neural: neural}
	n.deltas = make([][]float64, len(neural.Layers))
	n.gradients = make([][][]float64, len(neural.Layers))
	for i, l := range neural.Layers {
		n.deltas[i] = make([]float64, len(l.Neurons))
		n.gradients[i] = make([][]float64, len(l.Neurons))
		for j, neuron := range l.Neurons {
			n.gradients[i][j] = make([]float64, len(neuron.In))
		}
	}
	return n
}

func (n *Network) Inputs() int {
	return n.neural.Config.Inputs
}

func (n *Network) NumWeights() int {
	return n.neural.NumWeights()
}

func (n *Network) Estimate(state []float64) float64 {
	return n.neural.Predict(state)[0]
}

// Step performs one gradient update over the batch in training mode: forward,
// loss gradient, backward and one solver update using the batch-mean gradient.
func (n *Network) Step(batch training.Examples, loss deep.Loss, solver training.Solver) error {
	if len(batch) == 0 {
		return fmt.Errorf("empty batch")
	}
	for i := range n.gradients {
		for j := range n.gradients[i] {
			clear(n.gradients[i][j])
		}
	}

	for _, e := range batch {
		if err := n.neural.Forward(e.Input); err != nil {
			return fmt.Errorf("forward pass: %w", err)
		}
		n.backward(e.Response, loss)
		for i, l := range n.neural.Layers {
			for j, neuron := range l.Neurons {
				for k, s := range neuron.In {
					n.gradients[i][j][k] += n.deltas[i][j] * s.In
				}
			}
		}
	}

	n.updates++
	scale := 1.0 / float64(len(batch))
	idx := 0
	for i, l := range n.neural.Layers {
		for j, neuron := range l.Neurons {
			for k, s := range neuron.In {
				s.Weight += solver.Update(s.Weight, n.gradients[i][j][k]*scale, n.updates, idx)
				idx++
			}
		}
	}
	return nil
}

func (n *Network) backward(ideal []float64, loss deep.Loss) {
	last := len(n.neural.Layers) - 1
	for i, neuron := range n.neural.Layers[last].Neurons {
		n.deltas[last][i] = loss.Df(neuron.Value, ideal[i], neuron.DActivate(neuron.Value))
	}
	for i := last - 1; i >= 0; i-- {
		for j, neuron := range n.neural.Layers[i].Neurons {
			var sum float64
			for k, s := range neuron.Out {
				sum += s.Weight * n.deltas[i+1][k]
			}
			n.deltas[i][j] = neuron.DActivate(neuron.Value) * sum
		}
	}
}

// Evaluate computes the batch loss in inference mode; weights are not touched.
func (n *Network) Evaluate(batch training.Examples, loss deep.Loss) (float64, error) {
	if len(batch) == 0 {
		return 0, fmt.Errorf("empty batch")
	}
	estimates := make([][]float64, len(batch))
	ideals := make([][]float64, len(batch))
	for i, e := range batch {
		if len(e.Input) != n.Inputs() {
			return 0, fmt.Errorf("invalid input dimension - expected: %d got: %d", n.Inputs(), len(e.Input))
		}
		estimates[i] = n.neural.Predict(e.Input)
		ideals[i] = e.Response
	}
	return loss.F(estimates, ideals), nil
}

func (n *Network) Marshal() ([]byte, error) {
	return n.neural.Marshal()
}

func Unmarshal(data []byte) (*Network, error) {
	neural, err := deep.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network: %w", err)
	}
	return wrap(neural), nil
}

func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	return Unmarshal(data)
}

// MeanSquared is the loss used to fit values.
func MeanSquared() deep.Loss {
	return deep.GetLoss(deep.LossMeanSquared)
}

// NewAdam returns an Adam solver sized for the network.
func NewAdam(n *Network, learnRate float64) training.Solver {
	solver := training.NewAdam(learnRate, 0.9, 0.999, 1e-8)
	solver.Init(n.NumWeights())
	return solver
}
