package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/internal/abstraction"
	"github.com/lox/cfrsolver/internal/config"
	"github.com/lox/cfrsolver/internal/store"
	"github.com/lox/cfrsolver/internal/store/memsink"
	"github.com/lox/cfrsolver/internal/store/postgres"
)

// ClusterCmd fits the per-street hand abstraction named in the run config's
// abstraction blocks and persists each street's Lookup/Metric artifacts to
// a store -- a memsink file by default, or Postgres when DSN is set.
type ClusterCmd struct {
	Config   string `help:"path to an HCL run config (missing file falls back to built-in defaults)" default:"solver.hcl"`
	Store    string `help:"path to a memsink file to write the abstraction to" default:"abstraction.memsink"`
	DSN      string `help:"Postgres connection string to write the abstraction to instead of Store"`
	Samples  int    `help:"situations sampled per street" default:"2000"`
	Rollouts int    `help:"Monte Carlo rollouts per situation's equity estimate" default:"200"`
	Seed     int64  `help:"RNG seed" default:"1"`
}

func (cmd *ClusterCmd) Run(ctx context.Context) error {
	runCfg, err := config.Load(cmd.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := runCfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if len(runCfg.Abstraction) == 0 {
		return fmt.Errorf("cluster: config has no abstraction blocks")
	}

	sink, closeSink, err := cmd.openSink(ctx)
	if err != nil {
		return err
	}
	defer closeSink()

	rng := rand.New(rand.NewSource(cmd.Seed))
	for _, street := range runCfg.Abstraction {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := abstraction.TrainStreet(street.Name, street.BucketCount, cmd.Samples, cmd.Rollouts, rng)
		if err != nil {
			return fmt.Errorf("train street %s: %w", street.Name, err)
		}
		if err := persistStreet(ctx, sink, result); err != nil {
			return fmt.Errorf("persist street %s: %w", street.Name, err)
		}
		log.Info().
			Str("street", street.Name).
			Int("buckets", result.Metric.Size()).
			Int("situations", len(result.Assignment)).
			Msg("abstraction trained")
	}

	if mem, ok := sink.(*memsink.Sink); ok {
		if err := mem.SaveFile(cmd.Store); err != nil {
			return fmt.Errorf("save memsink %s: %w", cmd.Store, err)
		}
	}
	return nil
}

func (cmd *ClusterCmd) openSink(ctx context.Context) (store.Sink, func(), error) {
	if cmd.DSN != "" {
		pg, err := postgres.Connect(ctx, cmd.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to %s: %w", cmd.DSN, err)
		}
		return pg, pg.Close, nil
	}
	sink, err := memsink.LoadFile(cmd.Store)
	if err != nil {
		sink = memsink.New()
	}
	return sink, func() {}, nil
}

// persistStreet writes one street's Lookup/Metric artifacts to sink, after
// ensuring the backing tables exist.
func persistStreet(ctx context.Context, sink store.Sink, result abstraction.Street) error {
	if err := sink.EnsureTable(ctx, store.KindLookup, result.Name); err != nil {
		return err
	}
	if err := sink.EnsureTable(ctx, store.KindMetric, result.Name); err != nil {
		return err
	}

	lookupRows := make([]store.LookupRow, 0, len(result.Assignment))
	for id, bucket := range result.Assignment {
		lookupRows = append(lookupRows, store.LookupRow{SituationID: int64(id), Bucket: int64(bucket)})
	}
	if err := sink.WriteLookup(ctx, result.Name, lookupRows); err != nil {
		return err
	}

	n := result.Metric.Size()
	metricRows := make([]store.MetricRow, 0, n*n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			metricRows = append(metricRows, store.MetricRow{
				BucketA:  int64(a),
				BucketB:  int64(b),
				Distance: float32(result.Metric.Dist(a, b)),
			})
		}
	}
	if err := sink.WriteMetric(ctx, result.Name, metricRows); err != nil {
		return err
	}

	return sink.Freeze(ctx, store.KindLookup, result.Name)
}
