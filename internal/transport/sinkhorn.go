package transport

import (
	"math"

	"github.com/lox/cfrsolver/internal/cfr"
)

// SinkhornParams configures the entropic-OT solver.
type SinkhornParams struct {
	Epsilon   float64 // temperature; Epsilon <= 0 is a caller bug
	Tolerance float64 // stop when max marginal violation < Tolerance
	MaxIter   int
}

// GreenkhornCost computes the entropic-OT cost between p and q under ground
// metric d, via the Greenkhorn variant of Sinkhorn scaling: fix K(x,y) =
// exp(-d(x,y)/epsilon), scale rows/columns one at a time -- always picking
// whichever row or column currently has the largest marginal violation --
// until the max violation drops below the tolerance or the iteration cap is
// hit. Reported cost is <K*p⊗q, d>, the transport cost under the converged
// coupling.
func GreenkhornCost[X comparable, Y comparable](p Histogram[X], q Histogram[Y], d func(X, Y) float64, params SinkhornParams, maxGroundDistance float64) (float64, error) {
	if params.Epsilon <= 0 || math.IsNaN(params.Epsilon) || math.IsInf(params.Epsilon, 0) {
		return 0, cfr.Invariantf("transport: non-finite Epsilon %v", params.Epsilon)
	}
	if p.IsEmpty() && q.IsEmpty() {
		return 0, nil
	}
	if p.IsEmpty() || q.IsEmpty() {
		return maxGroundDistance, nil
	}

	xs, ys := p.Support(), q.Support()
	n, m := len(xs), len(ys)

	target := make([]float64, n)
	for i, x := range xs {
		target[i] = p.Weight(x)
	}
	targetCol := make([]float64, m)
	for j, y := range ys {
		targetCol[j] = q.Weight(y)
	}

	K := make([][]float64, n)
	for i, x := range xs {
		K[i] = make([]float64, m)
		for j, y := range ys {
			dist := d(x, y)
			if math.IsNaN(dist) || math.IsInf(dist, 0) {
				return 0, cfr.Numericalf("transport: non-finite ground distance d(%v,%v)=%v", x, y, dist)
			}
			K[i][j] = math.Exp(-dist / params.Epsilon)
		}
	}

	u := make([]float64, n)
	v := make([]float64, m)
	for i := range u {
		u[i] = 1
	}
	for j := range v {
		v[j] = 1
	}

	rowSum := func(i int) float64 {
		s := 0.0
		for j := 0; j < m; j++ {
			s += u[i] * K[i][j] * v[j]
		}
		return s
	}
	colSum := func(j int) float64 {
		s := 0.0
		for i := 0; i < n; i++ {
			s += u[i] * K[i][j] * v[j]
		}
		return s
	}

	maxIter := params.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}

	for iter := 0; iter < maxIter; iter++ {
		worstViol, worstIsRow, worstIdx := 0.0, true, 0
		for i := 0; i < n; i++ {
			if viol := math.Abs(rowSum(i) - target[i]); viol > worstViol {
				worstViol, worstIsRow, worstIdx = viol, true, i
			}
		}
		for j := 0; j < m; j++ {
			if viol := math.Abs(colSum(j) - targetCol[j]); viol > worstViol {
				worstViol, worstIsRow, worstIdx = viol, false, j
			}
		}
		if worstViol < params.Tolerance {
			break
		}
		if worstIsRow {
			i := worstIdx
			denom := 0.0
			for j := 0; j < m; j++ {
				denom += K[i][j] * v[j]
			}
			if denom > 0 {
				u[i] = target[i] / denom
			}
		} else {
			j := worstIdx
			denom := 0.0
			for i := 0; i < n; i++ {
				denom += u[i] * K[i][j]
			}
			if denom > 0 {
				v[j] = targetCol[j] / denom
			}
		}
	}

	cost := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			dist := d(xs[i], ys[j])
			cost += u[i] * K[i][j] * v[j] * dist
		}
	}
	return cost, nil
}
