// Package metrics accumulates epoch counters and convergence diagnostics
// across a solver run. Generalised from a single-iteration TraversalStats/
// Progress payload into a standing counter set a driver can read between
// epochs without needing the Progress callback to have fired recently.
package metrics

import (
	"sync"
	"time"
)

// Counters is a concurrency-safe running total of per-epoch solver
// instrumentation.
type Counters struct {
	mu sync.Mutex

	epochs        int64
	nodesVisited  int64
	terminalNodes int64
	maxDepth      int
	totalTime     time.Duration
}

// New returns an empty Counters.
func New() *Counters {
	return &Counters{}
}

// Record folds one epoch's instrumentation into the running totals.
func (c *Counters) Record(nodesVisited, terminalNodes int64, maxDepth int, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epochs++
	c.nodesVisited += nodesVisited
	c.terminalNodes += terminalNodes
	if maxDepth > c.maxDepth {
		c.maxDepth = maxDepth
	}
	c.totalTime += elapsed
}

// Snapshot is an immutable read of Counters at a point in time.
type Snapshot struct {
	Epochs            int64
	NodesVisited      int64
	TerminalNodes     int64
	MaxDepth          int
	TotalTime         time.Duration
	NodesPerEpoch     float64
	AverageEpochTime  time.Duration
}

// Snapshot copies out the current totals, with the derived per-epoch
// averages pre-computed so a caller doesn't divide by a zero epoch count.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Epochs:        c.epochs,
		NodesVisited:  c.nodesVisited,
		TerminalNodes: c.terminalNodes,
		MaxDepth:      c.maxDepth,
		TotalTime:     c.totalTime,
	}
	if c.epochs > 0 {
		s.NodesPerEpoch = float64(c.nodesVisited) / float64(c.epochs)
		s.AverageEpochTime = c.totalTime / time.Duration(c.epochs)
	}
	return s
}
