package replay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func stream(n int) []Example {
	examples := make([]Example, n)
	for i := range examples {
		examples[i] = Example{State: []float64{float64(i)}, Target: float64(i) / float64(n)}
	}
	return examples
}

func TestBufferAppend(t *testing.T) {
	t.Run("bounded buffer keeps the last K in order", func(t *testing.T) {
		b := NewBuffer(5)
		all := stream(12)
		evicted := 0
		for i := 0; i < len(all); i += 3 {
			evicted += b.Append(all[i : i+3]...)
		}

		require.Equal(t, 5, b.Len())
		require.Equal(t, 7, evicted)
		require.Equal(t, all[7:], b.Examples())
	})

	t.Run("single append larger than capacity", func(t *testing.T) {
		b := NewBuffer(4)
		all := stream(10)
		require.Equal(t, 6, b.Append(all...))
		require.Equal(t, all[6:], b.Examples())
	})

	t.Run("unbounded buffer keeps the full history", func(t *testing.T) {
		b := NewBuffer(0)
		all := stream(100)
		b.Append(all[:40]...)
		b.Append(all[40:]...)
		require.Equal(t, 100, b.Len())
		require.Equal(t, all, b.Examples())
	})

	t.Run("negative capacity means unbounded", func(t *testing.T) {
		b := NewBuffer(-3)
		require.Equal(t, 0, b.Capacity())
		b.Append(stream(10)...)
		require.Equal(t, 10, b.Len())
	})
}

func TestBufferTraining(t *testing.T) {
	data := Training([]Example{{State: []float64{1, -1}, Target: 0.25}})
	require.Len(t, data, 1)
	require.Equal(t, []float64{1, -1}, data[0].Input)
	require.Equal(t, []float64{0.25}, data[0].Response)
}

func TestBufferExamplesIsACopy(t *testing.T) {
	b := NewBuffer(0)
	b.Append(stream(3)...)
	got := b.Examples()
	got[0] = Example{Target: 42}
	require.NotEqual(t, 42.0, b.Examples()[0].Target)
}
