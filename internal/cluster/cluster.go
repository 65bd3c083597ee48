// Package cluster builds the per-street hand-abstraction artifacts: a
// k-means++ bucket partition over a street's canonical situations, with
// centroid histograms over the street's own ground distance (equity for the
// leaf street, the Metric of the street below for inner streets).
package cluster

import (
	"math"
	"math/rand"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/transport"
)

// Situation pairs a canonical situation's identity with its histogram over
// the street's ground support.
type Situation[X comparable] struct {
	ID   uint64
	Hist transport.Histogram[X]
}

// Distance computes the ground distance between two histograms over X; it
// is the Metric consulted during seeding, assignment, and termination.
type Distance[X comparable] func(a, b transport.Histogram[X]) float64

// Result is one street's finished partition: a bucket id per situation and
// the centroid histogram of each bucket.
type Result[X comparable] struct {
	Assignment map[uint64]int
	Centroids  []transport.Histogram[X]
}

// GreedyDistance adapts transport.GreedyCost into a Distance, fixing the
// missing-mass bound used whenever a histogram is empty.
func GreedyDistance[X comparable](maxGroundDistance float64, d func(X, X) float64) Distance[X] {
	return func(a, b transport.Histogram[X]) float64 {
		cost, err := transport.GreedyCost(a, b, d, maxGroundDistance)
		if err != nil {
			return maxGroundDistance
		}
		return cost
	}
}

// Fit runs k-means++ seeding, assignment, centroid update, and termination
// (max centroid movement < epsilon, or iterCap reached) over situations,
// producing a k-bucket Result.
func Fit[X comparable](situations []Situation[X], k int, dist Distance[X], rng *rand.Rand, iterCap int, epsilon float64) (Result[X], error) {
	if k <= 0 {
		return Result[X]{}, cfr.Invariantf("cluster: k must be positive, got %d", k)
	}
	if len(situations) == 0 {
		return Result[X]{}, cfr.Invariantf("cluster: no situations to fit")
	}
	if k > len(situations) {
		k = len(situations)
	}

	centroids := seed(situations, k, dist, rng)

	assignment := make(map[uint64]int, len(situations))
	for iter := 0; iter < iterCap; iter++ {
		assignment = assign(situations, centroids, dist)
		next := update(situations, assignment, k)

		movement := 0.0
		for i := range centroids {
			if m := dist(centroids[i], next[i]); m > movement {
				movement = m
			}
		}
		centroids = next
		if movement < epsilon {
			break
		}
	}
	assignment = assign(situations, centroids, dist)

	return Result[X]{Assignment: assignment, Centroids: centroids}, nil
}

// seed picks k initial centroids via k-means++: the first uniformly, each
// subsequent one with probability proportional to the squared distance to
// the nearest existing centroid.
func seed[X comparable](situations []Situation[X], k int, dist Distance[X], rng *rand.Rand) []transport.Histogram[X] {
	centroids := make([]transport.Histogram[X], 0, k)
	first := situations[rng.Intn(len(situations))]
	centroids = append(centroids, first.Hist)

	for len(centroids) < k {
		weights := make([]float64, len(situations))
		total := 0.0
		for i, s := range situations {
			nearest := math.Inf(1)
			for _, c := range centroids {
				if d := dist(s.Hist, c); d < nearest {
					nearest = d
				}
			}
			w := nearest * nearest
			weights[i] = w
			total += w
		}
		if total == 0 {
			// All remaining points coincide with existing centroids; pad
			// with arbitrary distinct points to reach k.
			centroids = append(centroids, situations[len(centroids)%len(situations)].Hist)
			continue
		}
		pick := rng.Float64() * total
		acc := 0.0
		chosen := len(situations) - 1
		for i, w := range weights {
			acc += w
			if acc >= pick {
				chosen = i
				break
			}
		}
		centroids = append(centroids, situations[chosen].Hist)
	}
	return centroids
}

// assign maps each situation to its argmin-distance centroid, breaking ties
// by the lowest centroid index.
func assign[X comparable](situations []Situation[X], centroids []transport.Histogram[X], dist Distance[X]) map[uint64]int {
	out := make(map[uint64]int, len(situations))
	for _, s := range situations {
		best, bestDist := 0, math.Inf(1)
		for i, c := range centroids {
			if d := dist(s.Hist, c); d < bestDist {
				bestDist, best = d, i
			}
		}
		out[s.ID] = best
	}
	return out
}

// update recomputes each centroid as the absorb-sum of its assigned
// situations' histograms, which Histogram.Weight normalises by total mass.
func update[X comparable](situations []Situation[X], assignment map[uint64]int, k int) []transport.Histogram[X] {
	next := make([]transport.Histogram[X], k)
	for i := range next {
		next[i] = transport.NewHistogram[X]()
	}
	for _, s := range situations {
		bucket := assignment[s.ID]
		next[bucket] = next[bucket].Absorb(s.Hist)
	}
	return next
}
