package profile

import (
	"fmt"
	"sync"

	"github.com/lox/cfrsolver/internal/cfr"
)

// shardCount: 64 shards strikes a balance between per-epoch write
// contention and per-shard map overhead for the info-set cardinalities
// this solver operates at.
const shardCount = 64
const shardMask = shardCount - 1

type row[E cfr.Edge[E]] struct {
	mu      sync.Mutex
	choices []E
	cells   map[E]*cfr.Memory
}

func newRow[E cfr.Edge[E]](choices []E) *row[E] {
	cells := make(map[E]*cfr.Memory, len(choices))
	for _, e := range choices {
		cells[e] = &cfr.Memory{}
	}
	return &row[E]{choices: choices, cells: cells}
}

type shard[E cfr.Edge[E]] struct {
	mu   sync.RWMutex
	rows map[string]*row[E]
}

// Table is a Profile: a mapping Info -> (Edge -> Memory), sharded by
// Info.Key() hash so many epochs' readers can proceed concurrently while a
// single epoch's writer serialises updates per-row. A Table is driven by a
// chosen RegretSchedule and PolicySchedule, fixed for the life of the run.
type Table[E cfr.Edge[E]] struct {
	regret RegretSchedule
	policy PolicySchedule

	shards [shardCount]shard[E]
}

// NewTable returns an empty Profile driven by the given schedules.
func NewTable[E cfr.Edge[E]](regret RegretSchedule, policy PolicySchedule) *Table[E] {
	t := &Table[E]{regret: regret, policy: policy}
	for i := range t.shards {
		t.shards[i].rows = make(map[string]*row[E])
	}
	return t
}

func (t *Table[E]) shardFor(key string) *shard[E] {
	h := hashString(key)
	return &t.shards[h&shardMask]
}

// infoKey collapses an Info's Key() to the string a Table actually indexes
// by. Two Infos with the same Key() must format identically under %v --
// true whenever Key() returns a primitive or a struct of primitives, which
// is the only kind of key this solver's Info implementations produce.
func infoKey[E cfr.Edge[E]](info cfr.Info[E]) string {
	return fmt.Sprintf("%v", info.Key())
}

// rowFor returns (creating if absent) the row for info, enforcing the
// invariant that a row's keyset equals info.Choices().
func (t *Table[E]) rowFor(info cfr.Info[E]) *row[E] {
	key := infoKey[E](info)
	s := t.shardFor(key)

	s.mu.RLock()
	r, ok := s.rows[key]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.rows[key]; ok {
		return r
	}
	r = newRow[E](info.Choices())
	s.rows[key] = r
	return r
}

// CurrentPolicy is the regret-matched policy: pi(e) proportional to
// max(regret(info,e), 0); uniform over choices if every regret is
// non-positive.
func (t *Table[E]) CurrentPolicy(info cfr.Info[E]) map[E]float64 {
	r := t.rowFor(info)
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[E]float64, len(r.choices))
	total := 0.0
	for _, e := range r.choices {
		v := r.cells[e].Regret
		if v > 0 {
			out[e] = v
			total += v
		}
	}
	if total <= 0 {
		u := 1.0 / float64(len(r.choices))
		for _, e := range r.choices {
			out[e] = u
		}
		return out
	}
	for _, e := range r.choices {
		out[e] /= total
	}
	return out
}

// AveragePolicy normalises accumulated policy mass over info's choices:
// the Nash-approximating output of a trained Table.
func (t *Table[E]) AveragePolicy(info cfr.Info[E]) map[E]float64 {
	r := t.rowFor(info)
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0.0
	for _, e := range r.choices {
		total += r.cells[e].Policy
	}
	out := make(map[E]float64, len(r.choices))
	if total <= 0 {
		u := 1.0 / float64(len(r.choices))
		for _, e := range r.choices {
			out[e] = u
		}
		return out
	}
	for _, e := range r.choices {
		out[e] = r.cells[e].Policy / total
	}
	return out
}

// Witness applies a Counterfactual to one Info's row: the active regret
// schedule updates the regret column, the active policy schedule updates
// the policy column, and counts is bumped for every edge touched. Applied
// exactly once per epoch per visit, per the concurrency contract.
func (t *Table[E]) Witness(info cfr.Info[E], cfValue cfr.Counterfactual[E], epoch int) {
	r := t.rowFor(info)
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.choices {
		cell := r.cells[e]
		if dr, ok := cfValue.Regret[e]; ok {
			cell.Regret = t.regret.Gain(cell.Regret, dr, epoch)
			cell.Counts++
		}
		if dp, ok := cfValue.Policy[e]; ok {
			cell.Policy = t.policy.Learn(cell.Policy, dp, epoch)
		}
	}
}

// Decisions reads back every edge row for info as a slice of Decisions,
// normalising mass over the Info's choices.
func (t *Table[E]) Decisions(info cfr.Info[E]) []cfr.Decision[E] {
	avg := t.AveragePolicy(info)
	r := t.rowFor(info)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]cfr.Decision[E], len(r.choices))
	for i, e := range r.choices {
		out[i] = cfr.Decision[E]{Edge: e, Mass: avg[e], Counts: r.cells[e].Counts}
	}
	return out
}

// Size reports the number of distinct Infos tracked, for diagnostics.
func (t *Table[E]) Size() int {
	total := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		total += len(t.shards[i].rows)
		t.shards[i].mu.RUnlock()
	}
	return total
}

func hashString(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	var hash uint32 = offset32
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= prime32
	}
	return hash
}

// Codec lets a Table serialise edge values to and from the wire strings a
// checkpoint stores. A concrete game (games/rps, games/holdem) supplies one
// alongside its Edge type; the Table itself never needs to know how an Edge
// prints.
type Codec[E cfr.Edge[E]] interface {
	EncodeEdge(e E) string
	DecodeEdge(s string) E
}

// RowSnapshot is one Info row's wire form: the Info's string key, and per
// edge the accumulated regret, policy mass, and visit count.
type RowSnapshot struct {
	Key    string    `json:"key"`
	Edges  []string  `json:"edges"`
	Regret []float64 `json:"regret"`
	Policy []float64 `json:"policy"`
	Counts []uint32  `json:"counts"`
}

// Snapshot reads every row of the Table into its wire form, for a driver to
// persist. It holds each shard's read lock and each row's lock while copying
// that row, but the pass as a whole is not atomic: an update racing with
// Snapshot may or may not be reflected in the result, which is
// acceptable for a periodic checkpoint rather than a linearisable read.
func (t *Table[E]) Snapshot(codec Codec[E]) []RowSnapshot {
	var out []RowSnapshot
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for key, r := range s.rows {
			r.mu.Lock()
			snap := RowSnapshot{
				Key:    key,
				Edges:  make([]string, len(r.choices)),
				Regret: make([]float64, len(r.choices)),
				Policy: make([]float64, len(r.choices)),
				Counts: make([]uint32, len(r.choices)),
			}
			for j, e := range r.choices {
				cell := r.cells[e]
				snap.Edges[j] = codec.EncodeEdge(e)
				snap.Regret[j] = cell.Regret
				snap.Policy[j] = cell.Policy
				snap.Counts[j] = cell.Counts
			}
			r.mu.Unlock()
			out = append(out, snap)
		}
		s.mu.RUnlock()
	}
	return out
}

// Restore rebuilds a Table's rows from a Snapshot's wire form. It is meant
// to run once, before any concurrent Witness/CurrentPolicy traffic starts.
func (t *Table[E]) Restore(rows []RowSnapshot, codec Codec[E]) {
	for _, snap := range rows {
		choices := make([]E, len(snap.Edges))
		for i, es := range snap.Edges {
			choices[i] = codec.DecodeEdge(es)
		}
		r := newRow[E](choices)
		for i, e := range choices {
			r.cells[e] = &cfr.Memory{Regret: snap.Regret[i], Policy: snap.Policy[i], Counts: snap.Counts[i]}
		}
		s := t.shardFor(snap.Key)
		s.mu.Lock()
		s.rows[snap.Key] = r
		s.mu.Unlock()
	}
}
