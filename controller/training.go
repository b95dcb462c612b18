package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tdvalue/engine"
	"tdvalue/game"
	"tdvalue/metrics"
	"tdvalue/replay"
	"tdvalue/selfplay"
	"tdvalue/trainer"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Controller interface {
	Run(ctx context.Context) error
}

// StopFunc is asked after every iteration whether the run is over.
type StopFunc func(iteration int, score engine.Score) bool

// Forever never stops the run.
func Forever(int, engine.Score) bool {
	return false
}

// MaxIterations stops after n iterations.
func MaxIterations(n int) StopFunc {
	return func(iteration int, _ engine.Score) bool {
		return iteration+1 >= n
	}
}

type Option func(c *trainingController)

func WithStop(stop StopFunc) Option {
	return func(c *trainingController) {
		if stop != nil {
			c.stop = stop
		}
	}
}

// WithComparator sets how an evaluation score is judged against the best one.
func WithComparator(compare engine.Comparator) Option {
	return func(c *trainingController) {
		if compare != nil {
			c.compare = compare
		}
	}
}

// WithSaveRetries sets how often a failed write is attempted and the delay
// before the first retry. The delay doubles on every further retry.
func WithSaveRetries(attempts int, delay time.Duration) Option {
	return func(c *trainingController) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithHistory records one metrics row per iteration.
func WithHistory(w *metrics.Writer) Option {
	return func(c *trainingController) {
		c.history = w
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(c *trainingController) {
		c.collector = collector
	}
}

// WithMaxPlies caps game length in self-play and evaluation.
func WithMaxPlies(plies int) Option {
	return func(c *trainingController) {
		c.maxPlies = plies
	}
}

// WithDisplay logs every self-play position at debug level.
func WithDisplay() Option {
	return func(c *trainingController) {
		c.display = true
	}
}

func WithComplement(complement selfplay.Complement) Option {
	return func(c *trainingController) {
		c.complement = complement
	}
}

type trainingController struct {
	cfg     Config
	session *Session

	selfPlay  *selfplay.Engine
	trainer   *trainer.Trainer
	evaluator *engine.Evaluator

	stop       StopFunc
	compare    engine.Comparator
	complement selfplay.Complement
	maxPlies   int
	display    bool
	collector  metrics.Collector
	history    *metrics.Writer
	attempts   int
	retryDelay time.Duration
	sleep      func(time.Duration)
	start      time.Time
}

// NewTrainingController wires the phases of a run around one session. The same
// generator drives training shuffles as every other random choice of the run.
func NewTrainingController(newGame game.Factory, cfg Config, session *Session, rng *rand.Rand, options ...Option) (*trainingController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if session == nil || session.Model == nil || session.Learner == nil || session.Baseline == nil || session.Solver == nil {
		return nil, errors.New("session needs a model, a learner, a baseline and a solver")
	}
	if session.Buffer == nil {
		session.Buffer = replay.NewBuffer(cfg.Capacity)
	}

	c := &trainingController{
		cfg:        cfg,
		session:    session,
		trainer:    trainer.New(rng),
		stop:       Forever,
		compare:    engine.MoreWinsFewerLosses,
		attempts:   3,
		retryDelay: time.Second,
		sleep:      time.Sleep,
	}
	for _, option := range options {
		option(c)
	}
	if c.collector == nil {
		if c.history != nil {
			c.collector = metrics.NewCollector(cfg.LearnRate, cfg.Alpha)
		} else {
			c.collector = metrics.NewDummyCollector()
		}
	}
	selfPlayOptions := []selfplay.Option{selfplay.WithComplement(c.complement), selfplay.WithMaxPlies(c.maxPlies)}
	if c.display {
		selfPlayOptions = append(selfPlayOptions, selfplay.WithDisplay())
	}
	c.selfPlay = selfplay.NewEngine(newGame, selfPlayOptions...)
	c.evaluator = engine.NewEvaluator(newGame, engine.WithMaxPlies(c.maxPlies))
	return c, nil
}

// Run executes iterations until the stop function says so or ctx is cancelled.
// Either way the last trained model is checkpointed before returning; a
// cancelled run returns the context error.
func (c *trainingController) Run(ctx context.Context) error {
	c.start = time.Now()
	for iteration := 0; ; iteration++ {
		if err := ctx.Err(); err != nil {
			log.Info().Msgf("Interrupted before iteration %d", iteration)
			if _, cerr := c.checkpoint(iteration); cerr != nil {
				return cerr
			}
			return err
		}

		score, err := c.Iteration(iteration)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, err)
		}
		if c.stop(iteration, score) {
			log.Info().Msgf("Stopping after iteration %d, total time %s", iteration, metrics.HMS(time.Since(c.start)))
			_, err := c.checkpoint(iteration + 1)
			return err
		}
	}
}

// Iteration runs checkpointing, self-play, training and evaluation once and
// returns the new evaluation score.
func (c *trainingController) Iteration(iteration int) (engine.Score, error) {
	log.Info().Msgf("==== ITERATION %d ====", iteration+1)

	epsilon := c.cfg.EpsilonAt(iteration)
	c.collector.Start(iteration, epsilon)

	promoted, err := c.checkpoint(iteration)
	if err != nil {
		return engine.Score{}, err
	}
	c.collector.SetPromoted(promoted)

	start := time.Now()
	log.Info().Msgf("Epsilon = %.4f", epsilon)
	data, err := c.selfPlay.Run(c.session.Learner, c.cfg.GamesPerIteration, c.cfg.Alpha, epsilon)
	if err != nil {
		return engine.Score{}, fmt.Errorf("self-play: %w", err)
	}
	evicted := c.session.Buffer.Append(data...)
	c.collector.AddExamples(c.cfg.GamesPerIteration, len(data), c.session.Buffer.Len())
	c.collector.Lap(metrics.SelfPlay)
	log.Info().Msgf("Time taken: %s", metrics.HMS(time.Since(start)))
	log.Info().Msgf("New data points: %d (buffer %d, evicted %d)", len(data), c.session.Buffer.Len(), evicted)

	start = time.Now()
	log.Info().Msg("Training...")
	losses, err := c.trainer.Fit(c.session.Model, c.session.Buffer.Examples(), c.session.Loss, c.session.Solver, c.cfg.Epochs, c.cfg.BatchSize)
	if err != nil {
		return engine.Score{}, fmt.Errorf("training: %w", err)
	}
	c.collector.SetLoss(losses[len(losses)-1])
	c.collector.Lap(metrics.Training)
	log.Info().Msgf("Time taken: %s", metrics.HMS(time.Since(start)))

	start = time.Now()
	score, err := c.evaluator.Compare(c.session.Learner, c.session.Baseline, c.cfg.EvalGames)
	if err != nil {
		return engine.Score{}, fmt.Errorf("evaluation: %w", err)
	}
	c.session.previous = &score
	c.collector.SetScore(score.WinsFirst, score.Draws, score.WinsSecond)
	c.collector.Lap(metrics.Evaluation)
	log.Info().Msgf("Time taken: %s", metrics.HMS(time.Since(start)))
	log.Info().Msg(score.String())

	if c.history != nil {
		c.history.Add(c.collector.Complete())
		if err := c.persist(c.history.Path(), c.history.Flush); err != nil {
			return score, err
		}
	}
	return score, nil
}

// checkpoint saves the current model under the iteration index and promotes it
// to best if the score it earned in the previous iteration beats the best one.
func (c *trainingController) checkpoint(iteration int) (bool, error) {
	if err := c.saveModel(ModelFile(iteration)); err != nil {
		return false, err
	}
	score, ok := c.session.Previous()
	if iteration == 0 || !ok || !c.compare(score, c.session.best) {
		return false, nil
	}
	if err := c.saveModel(BestFile); err != nil {
		return false, err
	}
	log.Info().Msgf("New best model: %s (previous best: %s)", score, c.session.best)
	c.session.best = score
	return true, nil
}
