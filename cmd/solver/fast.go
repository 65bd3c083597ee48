package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/games/holdem"
	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/solver"
	"github.com/lox/cfrsolver/internal/config"
	"github.com/lox/cfrsolver/internal/store/memsink"
)

// FastCmd drives one MCCFR training run over games/holdem against the
// in-memory store: no Postgres connection required, so an edit/train/eval
// loop on a laptop never waits on a database round trip. The trained
// profile.Table is persisted as a JSON checkpoint (Out) that a resumed
// FastCmd/SlowCmd or BenchCmd can load back exactly. The memsink.Sink
// (Store) records only the run's epoch marker, not the Table's rows.
type FastCmd struct {
	Config string `help:"path to an HCL run config (missing file falls back to built-in defaults)" default:"solver.hcl"`
	Out    string `help:"path to write the trained checkpoint" required:""`
	Store  string `help:"path to a memsink file recording the run's epoch marker" default:"solver.memsink"`

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
	AbstractionStore string `help:"path to a memsink file holding a trained abstraction from 'cluster' (falls back to the built-in bucketing if unset)"`
	AbstractionDSN   string `help:"Postgres connection string holding a trained abstraction, instead of AbstractionStore"`
}

func (cmd *FastCmd) Run(ctx context.Context) error {
	s, runCfg, err := buildSolver(ctx, cmd.Config, trainOverrides{
		iterations: cmd.Iterations, players: cmd.Players, parallelTables: cmd.ParallelTables, seed: cmd.Seed,
	}, cmd.Out, cmd.CheckpointEvery, cmd.ProgressEvery, cmd.ResumeFrom, cmd.SmallBlind, cmd.BigBlind, cmd.Stack, cmd.AbstractionStore, cmd.AbstractionDSN)
	if err != nil {
		return err
	}

	logTrainingStart(s, runCfg)
	start := time.Now()
	if err := s.Run(ctx, progressLogger()); err != nil {
		return err
	}

	sink, err := openOrCreateMemsink(cmd.Store)
	if err != nil {
		return fmt.Errorf("open memsink %s: %w", cmd.Store, err)
	}
	if err := sink.WriteEpoch(ctx, s.Epoch()); err != nil {
		return fmt.Errorf("record epoch in memsink: %w", err)
	}
	if err := sink.SaveFile(cmd.Store); err != nil {
		return fmt.Errorf("save memsink %s: %w", cmd.Store, err)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("infosets", s.Table().Size()).
		Str("checkpoint", cmd.Out).
		Str("store", cmd.Store).
		Msg("training completed")
	return nil
}

func openOrCreateMemsink(path string) (*memsink.Sink, error) {
	if sink, err := memsink.LoadFile(path); err == nil {
		return sink, nil
	}
	return memsink.New(), nil
}

// trainOverrides carries the CLI-level knobs FastCmd and SlowCmd both
// apply on top of the loaded config, before validating and constructing
// the Solver.
type trainOverrides struct {
	iterations, players, parallelTables int
	seed                                int64
}

// buildSolver loads runCfg, applies overrides, and constructs (or resumes)
// a Solver[holdem.Edge] ready to Run -- the shared setup FastCmd and
// SlowCmd both need before they diverge on where the epoch marker lands.
// abstractionStore/abstractionDSN locate a prior `cluster` run's trained
// per-street Lookup, if any; both empty keeps the built-in DefaultAbstraction.
func buildSolver(ctx context.Context, configPath string, ov trainOverrides, out string, checkpointEvery, progressEvery int, resumeFrom string, smallBlind, bigBlind, stack int, abstractionStore, abstractionDSN string) (*solver.Solver[holdem.Edge], *config.RunConfig, error) {
	runCfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if ov.iterations > 0 {
		runCfg.Solver.Iterations = ov.iterations
	}
	if ov.players > 0 {
		runCfg.Solver.Players = ov.players
	}
	if ov.parallelTables > 0 {
		runCfg.Solver.ParallelTables = ov.parallelTables
	}
	if ov.seed != 0 {
		runCfg.Solver.Seed = ov.seed
	}
	if err := runCfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	solverCfg := solver.Config{
		Players:         runCfg.Solver.Players,
		Iterations:      runCfg.Solver.Iterations,
		Scheme:          runCfg.Solver.Scheme(),
		Regret:          runCfg.Solver.RegretSchedule(),
		Policy:          runCfg.Solver.PolicySchedule(),
		ParallelTables:  runCfg.Solver.ParallelTables,
		Seed:            runCfg.Solver.Seed,
		ProgressEvery:   progressEvery,
		CheckpointPath:  out,
		CheckpointEvery: checkpointEvery,
	}

	abs, err := loadAbstraction(ctx, abstractionStore, abstractionDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("load abstraction: %w", err)
	}

	playerNames := seatNames(solverCfg.Players)
	root := func(rng *rand.Rand) cfr.Game[holdem.Edge] {
		return holdem.New(rng, playerNames, 0, smallBlind, bigBlind, stack)
	}
	encoder := holdem.Encoder{Abstraction: abs}
	codec := holdem.Codec{}

	var s *solver.Solver[holdem.Edge]
	if resumeFrom != "" {
		s, err = solver.Resume[holdem.Edge](resumeFrom, solverCfg, encoder, root, codec)
		if err != nil {
			return nil, nil, fmt.Errorf("resume checkpoint: %w", err)
		}
		log.Info().Str("checkpoint", resumeFrom).Int64("epoch", s.Epoch()).Msg("resuming training run")
	} else {
		s, err = solver.New[holdem.Edge](solverCfg, encoder, root, codec)
		if err != nil {
			return nil, nil, fmt.Errorf("construct solver: %w", err)
		}
	}
	return s, runCfg, nil
}

func logTrainingStart(s *solver.Solver[holdem.Edge], runCfg *config.RunConfig) {
	log.Info().
		Int("players", runCfg.Solver.Players).
		Int("iterations", runCfg.Solver.Iterations).
		Int("parallel", runCfg.Solver.ParallelTables).
		Str("scheme", runCfg.Solver.SchemeName).
		Str("regret", runCfg.Solver.RegretScheduleName).
		Str("policy", runCfg.Solver.PolicyScheduleName).
		Msg("starting training run")
}

func progressLogger() func(solver.Progress) {
	return func(p solver.Progress) {
		log.Info().
			Int("epoch", p.Epoch).
			Int("infosets", p.ProfileSize).
			Int64("nodes", p.Stats.NodesVisited).
			Int64("terminals", p.Stats.TerminalNodes).
			Int("max_depth", p.Stats.MaxDepth).
			Dur("iter_time", p.Stats.IterationTime).
			Msg("progress")
	}
}

func seatNames(players int) []string {
	names := make([]string, players)
	for i := range names {
		names[i] = fmt.Sprintf("P%d", i)
	}
	return names
}
