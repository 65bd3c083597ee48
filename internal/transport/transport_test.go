package transport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func equityDist(x, y float64) float64 { return math.Abs(x - y) }

func TestHistogramAbsorbIsAssociativeAndCommutative(t *testing.T) {
	a := NewHistogram[int]()
	a.Add(1, 2)
	b := NewHistogram[int]()
	b.Add(2, 3)
	c := NewHistogram[int]()
	c.Add(3, 1)

	ab := a.Absorb(b)
	abc1 := ab.Absorb(c)
	bc := b.Absorb(c)
	abc2 := a.Absorb(bc)

	require.InDelta(t, abc1.Total(), abc2.Total(), 1e-9)
	require.InDelta(t, abc1.Weight(1), abc2.Weight(1), 1e-9)

	ba := b.Absorb(a)
	require.InDelta(t, ab.Total(), ba.Total(), 1e-9)
}

func TestHistogramEmptyIdentity(t *testing.T) {
	a := NewHistogram[int]()
	a.Add(1, 5)
	empty := NewHistogram[int]()
	merged := a.Absorb(empty)
	require.InDelta(t, a.Total(), merged.Total(), 1e-9)
}

// TestGreedyCostSelfIsZero is invariant I5.
func TestGreedyCostSelfIsZero(t *testing.T) {
	p := NewHistogram[float64]()
	p.Add(0.2, 3)
	p.Add(0.7, 1)

	cost, err := GreedyCost(p, p, equityDist, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 0, cost, 1e-9)
}

// TestGreedyCostSymmetric is invariant I4.
func TestGreedyCostSymmetric(t *testing.T) {
	p := NewHistogram[float64]()
	p.Add(0.1, 2)
	p.Add(0.9, 1)
	q := NewHistogram[float64]()
	q.Add(0.3, 1)
	q.Add(0.8, 2)

	pq, err := GreedyCost(p, q, equityDist, 1.0)
	require.NoError(t, err)
	qp, err := GreedyCost(q, p, equityDist, 1.0)
	require.NoError(t, err)
	require.InDelta(t, pq, qp, 1e-9)
}

func TestGreedyCostEmptyVsEmptyIsZero(t *testing.T) {
	p := NewHistogram[float64]()
	q := NewHistogram[float64]()
	cost, err := GreedyCost(p, q, equityDist, 1.0)
	require.NoError(t, err)
	require.Equal(t, 0.0, cost)
}

func TestGreedyCostEmptyVsNonemptyIsPositiveFinite(t *testing.T) {
	p := NewHistogram[float64]()
	q := NewHistogram[float64]()
	q.Add(0.5, 1)

	cost, err := GreedyCost(p, q, equityDist, 1.0)
	require.NoError(t, err)
	require.Greater(t, cost, 0.0)
	require.False(t, math.IsInf(cost, 0))
}

func TestGreedyCostKnownCoupling(t *testing.T) {
	// p: all mass at 0, q: all mass at 1 -> cost should be exactly 1.
	p := NewHistogram[float64]()
	p.Add(0, 10)
	q := NewHistogram[float64]()
	q.Add(1, 10)

	cost, err := GreedyCost(p, q, equityDist, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 1.0, cost, 1e-9)
}

func TestGreedyCostRejectsNonFiniteGroundDistance(t *testing.T) {
	p := NewHistogram[int]()
	p.Add(1, 1)
	q := NewHistogram[int]()
	q.Add(2, 1)

	_, err := GreedyCost(p, q, func(int, int) float64 { return math.NaN() }, 1.0)
	require.Error(t, err)
}

func TestGreenkhornCostApproximatesGreedyOnSimpleCase(t *testing.T) {
	p := NewHistogram[float64]()
	p.Add(0, 1)
	q := NewHistogram[float64]()
	q.Add(1, 1)

	greedy, err := GreedyCost(p, q, equityDist, 1.0)
	require.NoError(t, err)

	gk, err := GreenkhornCost(p, q, equityDist, SinkhornParams{Epsilon: 0.01, Tolerance: 1e-6, MaxIter: 500}, 1.0)
	require.NoError(t, err)
	require.InDelta(t, greedy, gk, 0.05)
}

func TestGreenkhornCostRejectsNonPositiveEpsilon(t *testing.T) {
	p := NewHistogram[int]()
	p.Add(1, 1)
	q := NewHistogram[int]()
	q.Add(2, 1)
	_, err := GreenkhornCost(p, q, func(a, b int) float64 { return math.Abs(float64(a - b)) }, SinkhornParams{Epsilon: 0}, 1.0)
	require.Error(t, err)
}

func TestCostMatrixDiagonalZeroAndSymmetric(t *testing.T) {
	hists := make([]Histogram[float64], 3)
	for i, v := range []float64{0.1, 0.5, 0.9} {
		h := NewHistogram[float64]()
		h.Add(v, 1)
		hists[i] = h
	}

	matrix, err := CostMatrix(hists, equityDist, Greedy, SinkhornParams{}, 1.0)
	require.NoError(t, err)
	for i := range matrix {
		require.Equal(t, 0.0, matrix[i][i])
	}
	for i := range matrix {
		for j := range matrix {
			require.InDelta(t, matrix[i][j], matrix[j][i], 1e-9)
		}
	}
}
