package solver_test

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/cfrsolver/games/rps"
	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/profile"
	"github.com/lox/cfrsolver/internal/cfr/solver"
	"github.com/lox/cfrsolver/internal/cfr/tree"
	"github.com/stretchr/testify/require"
)

func rpsRoot(*rand.Rand) cfr.Game[rps.Move] { return rps.Root() }

func TestSolverRejectsVanillaScheme(t *testing.T) {
	cfg := solver.Config{
		Players:    2,
		Iterations: 1,
		Scheme:     tree.Vanilla,
		Regret:     profile.Summed{},
		Policy:     profile.Constant{},
	}
	_, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.ErrorIs(t, err, tree.ErrVanillaIncompatible)
}

func TestSolverRejectsTooFewPlayers(t *testing.T) {
	cfg := solver.Config{Players: 1, Scheme: tree.External, Regret: profile.Summed{}, Policy: profile.Constant{}}
	_, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.Error(t, err)
}

// TestRPSConvergesTowardUniform covers the case of symmetric payoffs:
// Floored regret + Linear policy, external sampling, the averaged policy
// approaches the unique (1/3, 1/3, 1/3) Nash equilibrium. The tolerance
// here is loose: this is a single fixed-seed run, not an average over many
// seeds, so it allows for sampling variance while still requiring real,
// substantial convergence.
func TestRPSConvergesTowardUniform(t *testing.T) {
	cfg := solver.Config{
		Players:        2,
		Iterations:     20000,
		Scheme:         tree.External,
		Regret:         profile.Floored{},
		Policy:         profile.LinearPolicy{},
		ParallelTables: 1,
		Seed:           1,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background(), nil))

	for _, info := range []cfr.Info[rps.Move]{rps.Root(), asInfo(rps.Root().Apply(rps.Rock))} {
		avg := s.Table().AveragePolicy(info)
		for _, m := range []rps.Move{rps.Rock, rps.Paper, rps.Scissors} {
			require.InDelta(t, 1.0/3, avg[m], 0.15)
		}
	}
}

// TestBiasedRPSShiftsTowardPaper covers the case where Rock-beats-Scissors
// pays double: the Nash mix shifts so that P(Paper) > P(Rock) > P(Scissors).
func TestBiasedRPSShiftsTowardPaper(t *testing.T) {
	biasedRoot := func(*rand.Rand) cfr.Game[rps.Move] { return rps.BiasedRoot() }

	cfg := solver.Config{
		Players:        2,
		Iterations:     20000,
		Scheme:         tree.External,
		Regret:         profile.Floored{},
		Policy:         profile.LinearPolicy{},
		ParallelTables: 1,
		Seed:           2,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, biasedRoot, rps.Codec{})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), nil))

	avg := s.Table().AveragePolicy(rps.Root())
	require.Greater(t, avg[rps.Paper], avg[rps.Rock])
	require.Greater(t, avg[rps.Rock], avg[rps.Scissors])
}

func TestSolverProgressAndCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/checkpoint.json"

	cfg := solver.Config{
		Players:         2,
		Iterations:      50,
		Scheme:          tree.External,
		Regret:          profile.Floored{},
		Policy:          profile.Constant{},
		ParallelTables:  2,
		Seed:            7,
		ProgressEvery:   10,
		CheckpointPath:  path,
		CheckpointEvery: 25,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)

	var progressed int
	require.NoError(t, s.Run(context.Background(), func(p solver.Progress) { progressed++ }))
	require.Greater(t, progressed, 0)
	require.Equal(t, int64(50), s.Epoch())

	resumed, err := solver.Resume[rps.Move](path, cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)
	require.Equal(t, s.Epoch(), resumed.Epoch())
	require.Equal(t, s.Table().Size(), resumed.Table().Size())
}

func TestInspectCheckpointReadsHeaderWithoutAConfig(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/checkpoint.json"

	cfg := solver.Config{
		Players:    2,
		Iterations: 10,
		Scheme:     tree.External,
		Regret:     profile.Floored{},
		Policy:     profile.Constant{},
		Seed:       11,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), nil))
	require.NoError(t, s.SaveCheckpoint(path))

	header, err := solver.InspectCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, 2, header.Players)
	require.Equal(t, tree.External, header.Scheme)
	require.Equal(t, int64(10), header.Epoch)
}

func TestSolverRespectsContextCancellation(t *testing.T) {
	cfg := solver.Config{
		Players:    2,
		Iterations: 1_000_000,
		Scheme:     tree.External,
		Regret:     profile.Summed{},
		Policy:     profile.Constant{},
		Seed:       3,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Run(ctx, nil)
	require.True(t, cfr.IsInterrupted(err))
}

func asInfo(g cfr.Game[rps.Move]) cfr.Info[rps.Move] {
	return g.(rps.State)
}

func TestAverageAndCurrentPolicySumToOne(t *testing.T) {
	cfg := solver.Config{
		Players:        2,
		Iterations:     500,
		Scheme:         tree.External,
		Regret:         profile.Floored{},
		Policy:         profile.LinearPolicy{},
		ParallelTables: 1,
		Seed:           4,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), nil))

	for _, pol := range []map[rps.Move]float64{
		s.Table().CurrentPolicy(rps.Root()),
		s.Table().AveragePolicy(rps.Root()),
	} {
		sum := 0.0
		for _, p := range pol {
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-6)
	}
}

func TestSolverCountersAccumulateAcrossEpochs(t *testing.T) {
	cfg := solver.Config{
		Players:        2,
		Iterations:     30,
		Scheme:         tree.External,
		Regret:         profile.Floored{},
		Policy:         profile.Constant{},
		ParallelTables: 1,
		Seed:           9,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), nil))

	snap := s.Counters().Snapshot()
	require.Equal(t, int64(30), snap.Epochs)
	require.Greater(t, snap.NodesVisited, int64(0))
	require.Greater(t, snap.TerminalNodes, int64(0))
}

// TestIterationTimeUsesInjectedClock swaps in a quartz.Mock so
// Stats.IterationTime is asserted deterministically rather than against
// real wall-clock noise.
func TestIterationTimeUsesInjectedClock(t *testing.T) {
	mock := quartz.NewMock(t)
	cfg := solver.Config{
		Players:    2,
		Iterations: 3,
		Scheme:     tree.External,
		Regret:     profile.Summed{},
		Policy:     profile.Constant{},
		Seed:       5,
		Clock:      mock,
	}
	s, err := solver.New[rps.Move](cfg, rps.Encoder{}, rpsRoot, rps.Codec{})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), nil))
	require.Equal(t, time.Duration(0), s.Stats().IterationTime)
}

var _ = math.Abs // keep math imported for future tolerance tweaks
