package transport

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Method selects which cost implementation CostMatrix uses per pair.
type Method int

const (
	Greedy Method = iota
	Greenkhorn
)

// CostMatrix computes the full pairwise distance matrix between histograms
// under d, fanning the O(k^2) pair computations out across worker
// goroutines. Diagonal entries are always 0 without invoking Method (I5).
// Grounded on the equity package's errgroup worker-pool shape: a fixed
// worker count bounded by NumCPU, each claiming a slice of the work queue.
func CostMatrix[X comparable](histograms []Histogram[X], d func(X, X) float64, method Method, params SinkhornParams, maxGroundDistance float64) ([][]float64, error) {
	k := len(histograms)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
	}

	type job struct{ i, j int }
	jobs := make([]job, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			jobs = append(jobs, job{i, j})
		}
	}
	if len(jobs) == 0 {
		return matrix, nil
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	g, _ := errgroup.WithContext(context.Background())
	chunk := (len(jobs) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(jobs) {
			break
		}
		if end > len(jobs) {
			end = len(jobs)
		}
		slice := jobs[start:end]

		g.Go(func() error {
			for _, jb := range slice {
				var cost float64
				var err error
				switch method {
				case Greenkhorn:
					cost, err = GreenkhornCost(histograms[jb.i], histograms[jb.j], d, params, maxGroundDistance)
				default:
					cost, err = GreedyCost(histograms[jb.i], histograms[jb.j], d, maxGroundDistance)
				}
				if err != nil {
					return err
				}
				matrix[jb.i][jb.j] = cost
				matrix[jb.j][jb.i] = cost
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matrix, nil
}
