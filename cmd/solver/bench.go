package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolver/games/holdem"
	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/profile"
	"github.com/lox/cfrsolver/internal/cfr/solver"
)

// BenchCmd self-plays a trained checkpoint's average policy against itself
// for Hands hands, reporting each seat's win rate. There is no live
// server or bot process involved: every seat samples its action straight
// from the loaded profile.Table, in process.
type BenchCmd struct {
	Blueprint        string `help:"path to a trained checkpoint" required:""`
	Hands            int    `help:"number of hands to self-play" default:"10000"`
	Seed             int64  `help:"random seed; 0 uses a time seed"`
	SmallBlind       int    `help:"small blind size (should match the training run)" default:"5"`
	BigBlind         int    `help:"big blind size (should match the training run)" default:"10"`
	Stack            int    `help:"starting stack size (should match the training run)" default:"1000"`
	AbstractionStore string `help:"path to a memsink file holding the abstraction the checkpoint was trained against"`
	AbstractionDSN   string `help:"Postgres connection string holding that abstraction, instead of AbstractionStore"`
}

func (cmd *BenchCmd) Run(ctx context.Context) error {
	if cmd.Hands <= 0 {
		return fmt.Errorf("hands must be positive (got %d)", cmd.Hands)
	}

	header, err := solver.InspectCheckpoint(cmd.Blueprint)
	if err != nil {
		return fmt.Errorf("inspect checkpoint: %w", err)
	}
	log.Info().
		Int("players", header.Players).
		Int64("epoch", header.Epoch).
		Str("scheme", header.Scheme.String()).
		Msg("checkpoint loaded")

	abs, err := loadAbstraction(ctx, cmd.AbstractionStore, cmd.AbstractionDSN)
	if err != nil {
		return fmt.Errorf("load abstraction: %w", err)
	}
	encoder := holdem.Encoder{Abstraction: abs}
	playerNames := seatNames(header.Players)
	root := func(rng *rand.Rand) cfr.Game[holdem.Edge] {
		return holdem.New(rng, playerNames, 0, cmd.SmallBlind, cmd.BigBlind, cmd.Stack)
	}
	codec := holdem.Codec{}

	solverCfg := solver.Config{
		Players: header.Players,
		Scheme:  header.Scheme,
		Regret:  profile.Floored{},
		Policy:  profile.LinearPolicy{},
	}
	s, err := solver.Resume[holdem.Edge](cmd.Blueprint, solverCfg, encoder, root, codec)
	if err != nil {
		return fmt.Errorf("resume checkpoint: %w", err)
	}
	table := s.Table()

	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	net := make([]float64, header.Players)
	start := time.Now()
	for hand := 0; hand < cmd.Hands; hand++ {
		select {
		case <-ctx.Done():
			return cfr.Interrupted()
		default:
		}
		button := hand % header.Players
		result := playHand(holdem.New(rng, playerNames, button, cmd.SmallBlind, cmd.BigBlind, cmd.Stack), header.Players, encoder, table, rng)
		for seat, payoff := range result {
			net[seat] += payoff
		}
	}

	for seat, total := range net {
		bbPerHand := total / float64(cmd.Hands) / float64(cmd.BigBlind)
		log.Info().
			Int("seat", seat).
			Float64("net_chips", total).
			Float64("bb_per_100", bbPerHand*100).
			Msg("seat result")
	}
	log.Info().Dur("duration", time.Since(start)).Int("hands", cmd.Hands).Msg("evaluation complete")
	return nil
}

// playHand plays one hand to completion sampling every seat's action from
// table's average policy, and returns each seat's net chip result.
func playHand(g *holdem.Game, numPlayers int, encoder holdem.Encoder, table *profile.Table[holdem.Edge], rng *rand.Rand) []float64 {
	var cur cfr.Game[holdem.Edge] = g
	for cur.Turn() != cfr.Terminal() {
		info := encoder.Info(cur)
		policy := table.AveragePolicy(info)
		edge := sampleEdge(info.Choices(), policy, rng)
		cur = cur.Apply(edge)
	}
	hg := cur.(*holdem.Game)
	result := make([]float64, numPlayers)
	for seat := range result {
		result[seat] = hg.Payoff(cfr.From(seat))
	}
	return result
}

// sampleEdge draws one edge from policy (an average-policy distribution
// that may not sum to exactly 1 after floor clamping), falling back to a
// uniform draw over choices if policy has no mass for any of them.
func sampleEdge(choices []holdem.Edge, policy map[holdem.Edge]float64, rng *rand.Rand) holdem.Edge {
	total := 0.0
	for _, e := range choices {
		total += policy[e]
	}
	if total <= 0 {
		return choices[rng.Intn(len(choices))]
	}
	draw := rng.Float64() * total
	cum := 0.0
	for _, e := range choices {
		cum += policy[e]
		if draw < cum {
			return e
		}
	}
	return choices[len(choices)-1]
}
