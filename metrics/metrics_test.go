package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHMS(t *testing.T) {
	require.Equal(t, "1h02m03s", HMS(time.Hour+2*time.Minute+3*time.Second))
	require.Equal(t, "2m05s", HMS(2*time.Minute+5*time.Second))
	require.Equal(t, "4.2s", HMS(4200*time.Millisecond))
	require.Equal(t, "0.0s", HMS(0))
}

func TestCollector(t *testing.T) {
	c := NewCollector(1e-4, 0.2)
	c.Start(3, 0.45)
	c.Lap(SelfPlay)
	c.AddExamples(10, 160, 480)
	c.Lap(Training)
	c.SetLoss(0.01)
	c.SetScore(7, 2, 1)
	c.SetPromoted(true)
	c.Lap(Evaluation)

	r := c.Complete()
	require.Equal(t, int32(3), r.Iteration)
	require.Equal(t, 1e-4, r.LearnRate)
	require.Equal(t, 0.2, r.Alpha)
	require.Equal(t, 0.45, r.Epsilon)
	require.Equal(t, int32(10), r.Games)
	require.Equal(t, int32(160), r.NewExamples)
	require.Equal(t, int32(480), r.BufferSize)
	require.Equal(t, 0.01, r.Loss)
	require.Equal(t, [3]int32{7, 2, 1}, [3]int32{r.Wins, r.Draws, r.Losses})
	require.True(t, r.Promoted)
	require.GreaterOrEqual(t, r.SelfPlayMs, int64(0))
	require.NotZero(t, r.StartTime)

	c.Start(4, 0.4)
	require.Equal(t, Record{Iteration: 4, LearnRate: 1e-4, Alpha: 0.2, Epsilon: 0.4, StartTime: c.Complete().StartTime}, c.Complete(), "Start resets the record")
}

func TestDummyCollector(t *testing.T) {
	c := NewDummyCollector()
	c.Start(1, 0.5)
	c.SetScore(1, 2, 3)
	require.Equal(t, Record{}, c.Complete())
}

func TestWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, HistoryFile), w.Path())

	first := Record{Iteration: 0, Epsilon: 0.5, Wins: 3, Draws: 1, Losses: 6}
	second := Record{Iteration: 1, Epsilon: 0.49, Wins: 8, Loss: 0.02, Promoted: true}

	require.NoError(t, w.Append(first))
	records, err := ReadHistory(w.Path())
	require.NoError(t, err)
	require.Equal(t, []Record{first}, records)

	require.NoError(t, w.Append(second))
	records, err = ReadHistory(w.Path())
	require.NoError(t, err)
	require.Equal(t, []Record{first, second}, records)

	_, err = os.Stat(w.Path() + ".tmp")
	require.True(t, os.IsNotExist(err), "Temp file is renamed away")
}

func TestReadHistoryMissing(t *testing.T) {
	_, err := ReadHistory(filepath.Join(t.TempDir(), HistoryFile))
	require.Error(t, err)
}
