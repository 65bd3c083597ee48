package main

import (
	"context"
	"fmt"

	"github.com/lox/cfrsolver/games/holdem"
	"github.com/lox/cfrsolver/internal/abstraction"
	"github.com/lox/cfrsolver/internal/cluster"
	"github.com/lox/cfrsolver/internal/game"
	"github.com/lox/cfrsolver/internal/store"
	"github.com/lox/cfrsolver/internal/store/memsink"
	"github.com/lox/cfrsolver/internal/store/postgres"
)

var streetNames = map[string]game.Street{
	"preflop": game.Preflop,
	"flop":    game.Flop,
	"turn":    game.Turn,
	"river":   game.River,
}

// loadAbstraction rehydrates a holdem.TrainedAbstraction from whatever
// per-street Lookup artifacts a prior `cluster` run persisted to storePath
// (a memsink file) or dsn (a Postgres connection string; takes precedence
// when both are set). A street missing from the store falls back to
// holdem.DefaultAbstraction for that street alone; both paths empty, or no
// street found at all, returns a plain DefaultAbstraction.
func loadAbstraction(ctx context.Context, storePath, dsn string) (holdem.Abstraction, error) {
	if storePath == "" && dsn == "" {
		return holdem.DefaultAbstraction{}, nil
	}

	var source store.Source
	if dsn != "" {
		pg, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect to %s: %w", dsn, err)
		}
		defer pg.Close()
		source = pg
	} else {
		sink, err := memsink.LoadFile(storePath)
		if err != nil {
			return nil, fmt.Errorf("load memsink %s: %w", storePath, err)
		}
		source = sink
	}

	lookups := make(map[game.Street]*cluster.Lookup)
	for name, street := range streetNames {
		rows, err := source.ReadLookup(ctx, name)
		if err != nil || len(rows) == 0 {
			continue
		}
		assignment := make(map[uint64]int, len(rows))
		for _, row := range rows {
			assignment[uint64(row.SituationID)] = int(row.Bucket)
		}
		lookup, err := cluster.BuildLookup(assignment)
		if err != nil {
			return nil, fmt.Errorf("build lookup for %s: %w", name, err)
		}
		lookups[street] = lookup
	}
	if len(lookups) == 0 {
		return holdem.DefaultAbstraction{}, nil
	}

	return holdem.TrainedAbstraction{
		Lookups: lookups,
		SitID:   abstraction.SituationIDFromGame,
	}, nil
}
