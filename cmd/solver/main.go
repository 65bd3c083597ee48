package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/internal/cfr"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Status  StatusCmd  `cmd:"" help:"report a checkpoint's or store's training progress"`
	Cluster ClusterCmd `cmd:"" help:"fit the per-street hand abstraction and persist it to a store"`
	Fast    FastCmd    `cmd:"" help:"run MCCFR training against the in-memory store, for local iteration"`
	Slow    SlowCmd    `cmd:"" help:"run MCCFR training against a durable Postgres store"`
	Bench   BenchCmd   `cmd:"" help:"self-play a trained checkpoint's average policy and report win rate"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("solver"),
		kong.Description("MCCFR hold'em solver tooling"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)
	interrupt := installInterruptHandler()

	var err error
	switch ctx.Command() {
	case "status":
		err = cli.Status.Run(context.Background())
	case "cluster":
		err = cli.Cluster.Run(interrupted(interrupt))
	case "fast":
		err = cli.Fast.Run(interrupted(interrupt))
	case "slow":
		err = cli.Slow.Run(interrupted(interrupt))
	case "bench":
		err = cli.Bench.Run(interrupted(interrupt))
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if cfr.IsInterrupted(err) {
		log.Info().Msg(ctx.Command() + " interrupted")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg(ctx.Command() + " failed")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
