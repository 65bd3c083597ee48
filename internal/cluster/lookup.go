package cluster

import (
	"encoding/binary"

	"github.com/opencoff/go-chd"

	"github.com/lox/cfrsolver/internal/cfr"
)

// Lookup assigns each canonical situation (identified by a uint64 key, e.g.
// an isomorphism-canonicalised card/board encoding) to one Abstraction
// bucket. Backed by a minimal perfect hash over the known key set -- ideal
// for a large, static, read-mostly key space that is only ever built once
// per street and then queried for the rest of the run.
type Lookup struct {
	index   *chd.CHD
	buckets []int32
}

// BuildLookup freezes a Lookup from a street's Fit-produced bucket
// assignment (situation id -> bucket); the assignment's keys are the
// Lookup's key set, and map order does not matter.
func BuildLookup(assignment map[uint64]int) (*Lookup, error) {
	keys := make([][]byte, 0, len(assignment))
	buckets := make([]int32, 0, len(assignment))
	for id, bucket := range assignment {
		keys = append(keys, encodeKey(id))
		buckets = append(buckets, int32(bucket))
	}

	b := chd.NewBuilder()
	for _, k := range keys {
		b.Add(k)
	}
	index, err := b.Freeze(0.9)
	if err != nil {
		return nil, cfr.IOErrorf(err, "cluster: freezing lookup over %d keys", len(keys))
	}

	// The CHD assigns each key a dense index in [0, len(keys)); reorder the
	// parallel bucket slice to match so Find's result directly indexes it.
	ordered := make([]int32, len(keys))
	for i, k := range keys {
		ordered[index.Find(k)] = buckets[i]
	}

	return &Lookup{index: index, buckets: ordered}, nil
}

// Bucket returns the Abstraction bucket id assigned to the canonical
// situation id, or -1 if idx falls outside the built key set -- a minimal
// perfect hash gives no membership guarantee for keys it was never built
// with, so out-of-range is the only detectable miss.
func (l *Lookup) Bucket(id uint64) int {
	idx := l.index.Find(encodeKey(id))
	if int(idx) >= len(l.buckets) {
		return -1
	}
	return int(l.buckets[idx])
}

func encodeKey(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}
