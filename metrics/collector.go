package metrics

import (
	"fmt"
	"time"
)

type Phase int

const (
	SelfPlay Phase = iota
	Training
	Evaluation
)

// Record summarises one training iteration.
type Record struct {
	Iteration   int32   `parquet:"iteration"`
	LearnRate   float64 `parquet:"learn_rate"`
	Alpha       float64 `parquet:"alpha"`
	Epsilon     float64 `parquet:"epsilon"`
	Games       int32   `parquet:"games"`
	NewExamples int32   `parquet:"new_examples"`
	BufferSize  int32   `parquet:"buffer_size"`
	Loss        float64 `parquet:"loss"` // Mean loss of the final epoch
	Wins        int32   `parquet:"wins"`
	Draws       int32   `parquet:"draws"`
	Losses      int32   `parquet:"losses"`
	Promoted    bool    `parquet:"promoted"`
	SelfPlayMs  int64   `parquet:"self_play_ms"`
	TrainingMs  int64   `parquet:"training_ms"`
	EvaluateMs  int64   `parquet:"evaluation_ms"`
	StartTime   int64   `parquet:"start_time_unix_ms"`
}

type Collector interface {
	Start(iteration int, epsilon float64)
	// Lap closes the given phase, timed from the previous lap or from Start.
	Lap(phase Phase)
	AddExamples(games, examples, buffered int)
	SetLoss(loss float64)
	SetScore(wins, draws, losses int)
	SetPromoted(value bool)
	Complete() Record
}

type collector struct {
	learnRate float64
	alpha     float64
	lap       time.Time
	record    Record
}

func NewCollector(learnRate, alpha float64) Collector {
	return &collector{learnRate: learnRate, alpha: alpha}
}

func (c *collector) Start(iteration int, epsilon float64) {
	now := time.Now()
	c.lap = now
	c.record = Record{
		Iteration: int32(iteration),
		LearnRate: c.learnRate,
		Alpha:     c.alpha,
		Epsilon:   epsilon,
		StartTime: now.UnixMilli(),
	}
}

func (c *collector) Lap(phase Phase) {
	now := time.Now()
	elapsed := now.Sub(c.lap).Milliseconds()
	c.lap = now
	switch phase {
	case SelfPlay:
		c.record.SelfPlayMs = elapsed
	case Training:
		c.record.TrainingMs = elapsed
	case Evaluation:
		c.record.EvaluateMs = elapsed
	}
}

func (c *collector) AddExamples(games, examples, buffered int) {
	c.record.Games += int32(games)
	c.record.NewExamples += int32(examples)
	c.record.BufferSize = int32(buffered)
}

func (c *collector) SetLoss(loss float64) {
	c.record.Loss = loss
}

func (c *collector) SetScore(wins, draws, losses int) {
	c.record.Wins = int32(wins)
	c.record.Draws = int32(draws)
	c.record.Losses = int32(losses)
}

func (c *collector) SetPromoted(value bool) {
	c.record.Promoted = value
}

func (c *collector) Complete() Record {
	return c.record
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) Start(iteration int, epsilon float64)      {}
func (c *dummyCollector) Lap(phase Phase)                           {}
func (c *dummyCollector) AddExamples(games, examples, buffered int) {}
func (c *dummyCollector) SetLoss(loss float64)                      {}
func (c *dummyCollector) SetScore(wins, draws, losses int)          {}
func (c *dummyCollector) SetPromoted(value bool)                    {}
func (c *dummyCollector) Complete() Record                          { return Record{} }

// HMS formats an elapsed duration as 1h02m03s, 2m05s or 4.2s.
func HMS(d time.Duration) string {
	seconds := int(d.Seconds())
	hours, minutes := seconds/3600, seconds/60%60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, seconds%60)
	case minutes > 0:
		return fmt.Sprintf("%dm%02ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
