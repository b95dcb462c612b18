package replay

import (
	"github.com/patrikeh/go-deep/training"
)

// Example is a (state, target) pair produced by self-play. Target is a win
// probability in [0, 1] for the side the state is encoded for.
type Example struct {
	State  []float64
	Target float64
}

// Buffer keeps examples in generation order. With a positive capacity it
// retains only the most recent capacity examples; otherwise it grows without bound.
type Buffer struct {
	capacity int
	examples []Example
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{capacity: capacity}
}

func (b *Buffer) Capacity() int {
	return b.capacity
}

// Append adds examples and evicts the oldest ones beyond capacity, returning the number evicted.
func (b *Buffer) Append(examples ...Example) int {
	b.examples = append(b.examples, examples...)
	if b.capacity == 0 || len(b.examples) <= b.capacity {
		return 0
	}
	evicted := len(b.examples) - b.capacity
	kept := make([]Example, b.capacity)
	copy(kept, b.examples[evicted:])
	b.examples = kept
	return evicted
}

func (b *Buffer) Len() int {
	return len(b.examples)
}

// Examples returns a copy of the buffer contents in insertion order.
func (b *Buffer) Examples() []Example {
	out := make([]Example, len(b.examples))
	copy(out, b.examples)
	return out
}

// Training converts examples into go-deep training examples. State slices are
// shared, not copied; examples are immutable once created.
func Training(data []Example) training.Examples {
	out := make(training.Examples, len(data))
	for i, e := range data {
		out[i] = training.Example{Input: e.State, Response: []float64{e.Target}}
	}
	return out
}
