package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/internal/store"
	"github.com/lox/cfrsolver/internal/store/postgres"
)

// SlowCmd drives the same training loop as FastCmd, but against a durable
// Postgres store rather than a local memsink file -- the "slow" path meant
// for an overnight run whose epoch marker and abstraction artifacts need
// to survive the machine that ran it.
type SlowCmd struct {
	Config string `help:"path to an HCL run config (missing file falls back to built-in defaults)" default:"solver.hcl"`
	Out    string `help:"path to write the trained checkpoint" required:""`
	DSN    string `help:"Postgres connection string recording the run's epoch marker" required:""`

	Iterations       int    `help:"override the config's iteration budget (0 keeps the config value)"`
	Players          int    `help:"override the config's player count (0 keeps the config value)"`
	ParallelTables   int    `help:"override the config's parallel table count (0 keeps the config value)"`
	Seed             int64  `help:"override the config's RNG seed (0 keeps the config value)"`
	SmallBlind       int    `help:"small blind size" default:"5"`
	BigBlind         int    `help:"big blind size" default:"10"`
	Stack            int    `help:"starting stack size" default:"1000"`
	CheckpointEvery  int    `help:"write an intermediate checkpoint every N epochs (0 disables)" default:"0"`
	ProgressEvery    int    `help:"log progress every N epochs (0 => every epoch)" default:"0"`
	ResumeFrom       string `help:"resume training from an existing checkpoint"`
	AbstractionStore string `help:"path to a memsink file holding a trained abstraction from 'cluster'"`
	AbstractionDSN   string `help:"Postgres connection string holding a trained abstraction (defaults to DSN)"`
}

func (cmd *SlowCmd) Run(ctx context.Context) error {
	abstractionDSN := cmd.AbstractionDSN
	if abstractionDSN == "" && cmd.AbstractionStore == "" {
		abstractionDSN = cmd.DSN
	}
	s, runCfg, err := buildSolver(ctx, cmd.Config, trainOverrides{
		iterations: cmd.Iterations, players: cmd.Players, parallelTables: cmd.ParallelTables, seed: cmd.Seed,
	}, cmd.Out, cmd.CheckpointEvery, cmd.ProgressEvery, cmd.ResumeFrom, cmd.SmallBlind, cmd.BigBlind, cmd.Stack, cmd.AbstractionStore, abstractionDSN)
	if err != nil {
		return err
	}

	pg, err := postgres.Connect(ctx, cmd.DSN)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cmd.DSN, err)
	}
	defer pg.Close()
	if err := pg.EnsureTable(ctx, store.KindEpochMeta, ""); err != nil {
		return fmt.Errorf("ensure epoch_meta table: %w", err)
	}

	logTrainingStart(s, runCfg)
	start := time.Now()
	if err := s.Run(ctx, progressLogger()); err != nil {
		return err
	}

	if err := pg.WriteEpoch(ctx, s.Epoch()); err != nil {
		return fmt.Errorf("record epoch in postgres: %w", err)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("infosets", s.Table().Size()).
		Str("checkpoint", cmd.Out).
		Str("dsn", cmd.DSN).
		Msg("training completed")
	return nil
}
