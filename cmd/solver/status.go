package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/internal/cfr/solver"
	"github.com/lox/cfrsolver/internal/store/memsink"
	"github.com/lox/cfrsolver/internal/store/postgres"
)

// StatusCmd reports a run's progress without touching the training loop:
// a checkpoint's header fields, and, if given, a store's recorded epoch.
type StatusCmd struct {
	Checkpoint string `help:"path to a checkpoint to inspect"`
	Store      string `help:"path to a memsink file to inspect"`
	DSN        string `help:"Postgres connection string to inspect"`
}

func (cmd *StatusCmd) Run(ctx context.Context) error {
	if cmd.Checkpoint == "" && cmd.Store == "" && cmd.DSN == "" {
		return fmt.Errorf("status: at least one of --checkpoint, --store, --dsn is required")
	}

	if cmd.Checkpoint != "" {
		header, err := solver.InspectCheckpoint(cmd.Checkpoint)
		if err != nil {
			return fmt.Errorf("inspect checkpoint: %w", err)
		}
		log.Info().
			Str("checkpoint", cmd.Checkpoint).
			Int("players", header.Players).
			Str("scheme", header.Scheme.String()).
			Int64("epoch", header.Epoch).
			Msg("checkpoint status")
	}

	if cmd.Store != "" {
		sink, err := memsink.LoadFile(cmd.Store)
		if err != nil {
			return fmt.Errorf("load memsink %s: %w", cmd.Store, err)
		}
		epoch, err := sink.ReadEpoch(ctx)
		if err != nil {
			return fmt.Errorf("read memsink epoch: %w", err)
		}
		log.Info().Str("store", cmd.Store).Int64("epoch", epoch).Msg("memsink status")
	}

	if cmd.DSN != "" {
		pg, err := postgres.Connect(ctx, cmd.DSN)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", cmd.DSN, err)
		}
		defer pg.Close()
		epoch, err := pg.ReadEpoch(ctx)
		if err != nil {
			return fmt.Errorf("read postgres epoch: %w", err)
		}
		log.Info().Str("dsn", cmd.DSN).Int64("epoch", epoch).Msg("postgres status")
	}
	return nil
}
