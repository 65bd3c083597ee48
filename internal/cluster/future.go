package cluster

import "github.com/lox/cfrsolver/internal/transport"

// Future maps each abstraction bucket on a street to a centroid histogram
// over the next street's abstraction buckets. This is the transition model
// used as ground truth when computing the current street's own ground
// distance from the street below's Metric: two buckets on this street are
// "close" if their Future distributions are close under the child street's
// Metric.
type Future struct {
	centroids []transport.Histogram[int]
}

// NewFuture wraps one Future histogram per bucket, indexed by bucket id.
func NewFuture(centroids []transport.Histogram[int]) Future {
	return Future{centroids: centroids}
}

// Transition returns the next-street bucket distribution for bucket id, or
// the empty histogram if id is out of range.
func (f Future) Transition(bucket int) transport.Histogram[int] {
	if bucket < 0 || bucket >= len(f.centroids) {
		return transport.NewHistogram[int]()
	}
	return f.centroids[bucket]
}

// Size returns the number of buckets the Future covers.
func (f Future) Size() int {
	return len(f.centroids)
}
