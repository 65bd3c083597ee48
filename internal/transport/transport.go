package transport

import (
	"math"
	"sort"

	"github.com/lox/cfrsolver/internal/cfr"
)

// pair is a candidate shipping lane between a p-support index and a
// q-support index, ordered ascending by ground distance with index order
// as the tie-break -- the "lexicographic (x, y)" rule from the coupling
// spec, expressed over support position rather than value ordering, since
// X and Y need not be Ordered.
type pair struct {
	i, j int
	d    float64
}

// GreedyCost computes the greedy-coupling upper bound on the earth mover's
// distance between p and q under ground metric d: enumerate all (x, y)
// pairs ascending by distance, repeatedly ship min(remaining p(x),
// remaining q(y)) along the cheapest pair until both marginals are
// exhausted. Deterministic, O(nm log(nm)).
//
// maxGroundDistance bounds d over the full metric space (e.g. 1 for an
// equity-difference ground metric on [0,1]); it is only consulted when one
// histogram is empty, per the zero-mass convention below.
func GreedyCost[X comparable, Y comparable](p Histogram[X], q Histogram[Y], d func(X, Y) float64, maxGroundDistance float64) (float64, error) {
	if p.IsEmpty() && q.IsEmpty() {
		return 0, nil
	}
	if p.IsEmpty() || q.IsEmpty() {
		return maxGroundDistance, nil
	}

	xs, ys := p.Support(), q.Support()
	remP := make([]float64, len(xs))
	remQ := make([]float64, len(ys))
	for i, x := range xs {
		remP[i] = p.Weight(x)
	}
	for j, y := range ys {
		remQ[j] = q.Weight(y)
	}

	pairs := make([]pair, 0, len(xs)*len(ys))
	for i, x := range xs {
		for j, y := range ys {
			dist := d(x, y)
			if math.IsNaN(dist) || math.IsInf(dist, 0) {
				return 0, cfr.Numericalf("transport: non-finite ground distance d(%v,%v)=%v", x, y, dist)
			}
			pairs = append(pairs, pair{i: i, j: j, d: dist})
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].d != pairs[b].d {
			return pairs[a].d < pairs[b].d
		}
		if pairs[a].i != pairs[b].i {
			return pairs[a].i < pairs[b].i
		}
		return pairs[a].j < pairs[b].j
	})

	cost := 0.0
	for _, pr := range pairs {
		if remP[pr.i] <= 0 || remQ[pr.j] <= 0 {
			continue
		}
		flow := math.Min(remP[pr.i], remQ[pr.j])
		cost += flow * pr.d
		remP[pr.i] -= flow
		remQ[pr.j] -= flow
	}
	return cost, nil
}
