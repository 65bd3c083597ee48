// Package solver drives the per-epoch MCCFR training loop: pick a
// traversing player, build a tree under the active sampling scheme, and
// post-order evaluate it into Counterfactuals the Profile witnesses.
// Parallel table fan-out runs via goroutines + sync.WaitGroup, with
// periodic checkpointing and a Progress callback, generalising a
// hardcoded poker traversal into a generic evaluate/counterfactual/witness
// loop over any cfr.Game[E].
package solver

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/profile"
	"github.com/lox/cfrsolver/internal/cfr/tree"
	"github.com/lox/cfrsolver/internal/metrics"
)

// Stats captures instrumentation for a single epoch's traversal, across all
// of its parallel tables.
type Stats struct {
	NodesVisited  int64
	TerminalNodes int64
	MaxDepth      int
	IterationTime time.Duration
	RootEValue    float64
}

// Progress is emitted periodically during Run.
type Progress struct {
	Epoch       int
	ProfileSize int
	Stats       Stats
}

// RootFactory produces a fresh root Game for one (table, player) traversal.
// Games with their own randomness (e.g. a hand deal) draw it from rng so the
// whole epoch stays reproducible from the Config's seed.
type RootFactory[E cfr.Edge[E]] func(rng *rand.Rand) cfr.Game[E]

// Config fixes a Solver run's shape for its whole lifetime.
type Config struct {
	Players         int
	Iterations      int
	Scheme          tree.Scheme
	Regret          profile.RegretSchedule
	Policy          profile.PolicySchedule
	ParallelTables  int
	Seed            int64
	ProgressEvery   int
	CheckpointPath  string
	CheckpointEvery int

	// Clock times each epoch's IterationTime. Nil uses quartz.NewReal();
	// tests substitute quartz.NewMock to assert on IterationTime without
	// depending on wall-clock scheduling noise.
	Clock quartz.Clock
}

// Validate rejects a Config that can't drive a correct run.
func (c Config) Validate() error {
	if c.Players < 2 {
		return cfr.Invariantf("solver: players must be >= 2, got %d", c.Players)
	}
	if c.Iterations < 0 {
		return cfr.Invariantf("solver: iterations must be >= 0, got %d", c.Iterations)
	}
	if err := c.Scheme.Validate(); err != nil {
		return err
	}
	if c.Regret == nil {
		return cfr.Invariantf("solver: regret schedule is required")
	}
	if c.Policy == nil {
		return cfr.Invariantf("solver: policy schedule is required")
	}
	return nil
}

// Solver owns one Profile/Table and drives epochs of evaluate/witness over
// a game family parameterised by Edge type E.
type Solver[E cfr.Edge[E]] struct {
	cfg     Config
	table   *profile.Table[E]
	encoder tree.Encoder[E]
	root    RootFactory[E]
	codec   profile.Codec[E]

	epoch atomic.Int64

	rngMu    sync.Mutex
	rng      *rand.Rand
	rngSeed  int64
	rngDraws int64

	statsMu sync.Mutex
	stats   Stats

	counters    *metrics.Counters
	convergence *metrics.Convergence
	clock       quartz.Clock
}

// New constructs a Solver. encoder resolves Games into Infos; root produces
// a fresh root Game per (table, player) traversal. codec may be nil if the
// caller never intends to checkpoint; SaveCheckpoint faults otherwise.
func New[E cfr.Edge[E]](cfg Config, encoder tree.Encoder[E], root RootFactory[E], codec profile.Codec[E]) (*Solver[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Solver[E]{
		cfg:         cfg,
		table:       profile.NewTable[E](cfg.Regret, cfg.Policy),
		encoder:     encoder,
		root:        root,
		codec:       codec,
		rng:         rand.New(rand.NewSource(seed)),
		rngSeed:     seed,
		counters:    metrics.New(),
		convergence: metrics.NewConvergence(32),
		clock:       clock,
	}, nil
}

// Counters returns the Solver's running epoch counters.
func (s *Solver[E]) Counters() *metrics.Counters { return s.counters }

// Convergence returns the Solver's rolling root-EValue convergence tracker.
func (s *Solver[E]) Convergence() *metrics.Convergence { return s.convergence }

// Table returns the Solver's Profile.
func (s *Solver[E]) Table() *profile.Table[E] { return s.table }

// Epoch reports the number of epochs completed so far.
func (s *Solver[E]) Epoch() int64 { return s.epoch.Load() }

// Stats returns the most recently recorded per-epoch traversal statistics.
func (s *Solver[E]) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func (s *Solver[E]) setStats(st Stats) {
	s.statsMu.Lock()
	s.stats = st
	s.statsMu.Unlock()
}

func (s *Solver[E]) nextSeed() int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rngDraws++
	return s.rng.Int63()
}

// Run executes epochs until Config.Iterations is reached, ctx is cancelled,
// or an error escapes an epoch. progress, if non-nil, is called every
// ProgressEvery epochs (default: every epoch) and once more after the final
// one. A checkpoint is written every CheckpointEvery epochs and once more
// at the end, when CheckpointPath is set. On cancellation, the epoch in
// flight completes, a checkpoint is written (when CheckpointPath is set),
// and Run returns cfr.Interrupted().
func (s *Solver[E]) Run(ctx context.Context, progress func(Progress)) error {
	batch := s.cfg.ProgressEvery
	if batch <= 0 {
		batch = 1
	}

	for i := int(s.epoch.Load()); i < s.cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			if s.cfg.CheckpointPath != "" {
				if err := s.SaveCheckpoint(s.cfg.CheckpointPath); err != nil {
					return err
				}
			}
			return cfr.Interrupted()
		default:
		}

		start := s.clock.Now()
		st, err := s.singleEpoch()
		if err != nil {
			return err
		}
		st.IterationTime = s.clock.Now().Sub(start)
		s.setStats(st)
		s.counters.Record(st.NodesVisited, st.TerminalNodes, st.MaxDepth, st.IterationTime)
		s.convergence.Observe(st.RootEValue)
		epoch := int(s.epoch.Add(1))

		if s.cfg.CheckpointPath != "" && s.cfg.CheckpointEvery > 0 && epoch%s.cfg.CheckpointEvery == 0 {
			if err := s.SaveCheckpoint(s.cfg.CheckpointPath); err != nil {
				return err
			}
		}
		if progress != nil && epoch%batch == 0 {
			progress(Progress{Epoch: epoch, ProfileSize: s.table.Size(), Stats: st})
		}
	}

	if progress != nil {
		progress(Progress{Epoch: int(s.epoch.Load()), ProfileSize: s.table.Size(), Stats: s.Stats()})
	}
	if s.cfg.CheckpointPath != "" {
		if err := s.SaveCheckpoint(s.cfg.CheckpointPath); err != nil {
			return err
		}
	}
	return nil
}

// singleEpoch fans a single epoch out across ParallelTables independent
// traversals (one RNG and root Game per table), each of which traverses for
// every player in turn.
func (s *Solver[E]) singleEpoch() (Stats, error) {
	parallel := s.cfg.ParallelTables
	if parallel <= 0 {
		parallel = 1
	}

	seeds := make([]int64, parallel)
	for i := range seeds {
		seeds[i] = s.nextSeed()
	}

	perTable := make([]Stats, parallel)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	epoch := int(s.epoch.Load()) + 1

	for i := 0; i < parallel; i++ {
		idx := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seeds[idx]))
			for player := 0; player < s.cfg.Players; player++ {
				errMu.Lock()
				bail := firstErr != nil
				errMu.Unlock()
				if bail {
					return
				}

				root := s.root(rng)
				if err := s.evaluateEpoch(root, player, epoch, rng, &perTable[idx]); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return Stats{}, firstErr
	}

	var total Stats
	for _, st := range perTable {
		total.NodesVisited += st.NodesVisited
		total.TerminalNodes += st.TerminalNodes
		if st.MaxDepth > total.MaxDepth {
			total.MaxDepth = st.MaxDepth
		}
		total.RootEValue += st.RootEValue
	}
	if parallel > 0 {
		total.RootEValue /= float64(parallel)
	}
	return total, nil
}
