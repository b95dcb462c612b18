package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tdvalue/controller"
	"tdvalue/game"
	"tdvalue/metrics"
	"tdvalue/model"
	"tdvalue/player"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	cfg := controller.DefaultConfig()
	flag.Float64Var(&cfg.LearnRate, "learn_rate", controller.DefaultLearnRate, "Learning rate of the optimizer")
	flag.Float64Var(&cfg.LearnRate, "lr", controller.DefaultLearnRate, "Shorthand for -learn_rate")
	flag.Float64Var(&cfg.Alpha, "alpha", controller.DefaultAlpha, "TD blend factor in [0, 1]")
	flag.Float64Var(&cfg.Alpha, "a", controller.DefaultAlpha, "Shorthand for -alpha")
	flag.Float64Var(&cfg.Epsilon, "epsilon", controller.DefaultEpsilon, "Initial exploration rate in [0, 1]")
	flag.Float64Var(&cfg.Epsilon, "e", controller.DefaultEpsilon, "Shorthand for -epsilon")
	seed := flag.Uint64("seed", 0, "Seed of the random generator, taken from the clock if unset")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if !isSet("seed") {
		*seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(*seed))
	log.Info().Uint64("seed", *seed).Float64("learn_rate", cfg.LearnRate).Float64("alpha", cfg.Alpha).Float64("epsilon", cfg.Epsilon).Msg("starting training")

	net := model.New(len(game.TicTacToe().Vector()), rng)
	session := controller.NewSession(net, player.NewModel(net, rng), player.NewGreedy(), model.NewAdam(net, cfg.LearnRate))

	history, err := metrics.NewWriter(cfg.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create history writer")
	}
	c, err := controller.NewTrainingController(game.TicTacToe, cfg, session, rng, controller.WithHistory(history))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create training controller")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("training failed")
	}
	log.Info().Msgf("Best model: %s", session.Best())
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
