// Package abstraction drives the per-street clustering pipeline: sample
// canonical situations for a street, estimate each one's equity via
// internal/evaluator's Monte Carlo rollout, partition them with
// internal/cluster's k-means++ fit, and hand back the artifacts
// cmd/solver persists through an internal/store.Sink.
package abstraction

import (
	"fmt"
	"math/rand"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cluster"
	"github.com/lox/cfrsolver/internal/deck"
	"github.com/lox/cfrsolver/internal/evaluator"
	"github.com/lox/cfrsolver/internal/game"
	"github.com/lox/cfrsolver/internal/transport"
)

// boardSize is the number of board cards dealt for each street before a
// situation's equity is sampled.
var boardSize = map[string]int{
	"preflop": 0,
	"flop":    3,
	"turn":    4,
	"river":   5,
}

// Street is one trained street's finished abstraction: a situation->bucket
// Lookup plus the pairwise Metric between bucket centroids. cmd/solver's
// cluster command persists both to a store; games/holdem's
// LookupAbstraction buckets hands through the Lookup, and nothing in
// games/holdem or internal/cfr/subgame reads the Metric.
type Street struct {
	Name       string
	Lookup     *cluster.Lookup
	Metric     cluster.Metric
	Assignment map[uint64]int
}

// equityDist is the ground distance between two situations' single-point
// equity histograms: how far apart their win probabilities are.
func equityDist(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

// TrainStreet samples `samples` canonical situations for street (dealing
// boardSize[street] community cards plus a fresh two-card hole), estimates
// each one's equity against a uniformly random opponent range with
// `rollouts` Monte Carlo trials, and partitions the result into
// `bucketCount` buckets.
func TrainStreet(street string, bucketCount, samples, rollouts int, rng *rand.Rand) (Street, error) {
	n, ok := boardSize[street]
	if !ok {
		return Street{}, cfr.Invariantf("abstraction: unknown street %q", street)
	}

	situations := make([]cluster.Situation[float64], 0, samples)
	for i := 0; i < samples; i++ {
		d := deck.NewDeck()
		d.Shuffle()
		hole := d.DealN(2)
		board := d.DealN(n)
		equity := evaluator.EstimateEquity(hole, board, evaluator.RandomRange{}, rollouts, rng)

		hist := transport.NewHistogram[float64]()
		hist.Add(equity, 1)
		situations = append(situations, cluster.Situation[float64]{
			ID:   situationID(hole, board),
			Hist: hist,
		})
	}

	dist := cluster.GreedyDistance(1.0, equityDist)
	result, err := cluster.Fit(situations, bucketCount, dist, rng, 100, 1e-4)
	if err != nil {
		return Street{}, fmt.Errorf("abstraction: fit street %s: %w", street, err)
	}

	lookup, err := cluster.BuildLookup(result.Assignment)
	if err != nil {
		return Street{}, fmt.Errorf("abstraction: build lookup for street %s: %w", street, err)
	}

	return Street{
		Name:       street,
		Lookup:     lookup,
		Metric:     centroidMetric(result.Centroids, dist),
		Assignment: result.Assignment,
	}, nil
}

// centroidMetric materialises the dense pairwise distance matrix between a
// street's bucket centroids, which cmd/solver's cluster command persists as
// the street's metric rows.
func centroidMetric(centroids []transport.Histogram[float64], dist cluster.Distance[float64]) cluster.Metric {
	n := len(centroids)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = dist(centroids[i], centroids[j])
		}
	}
	return cluster.NewMetric(rows)
}

// situationID derives a stable key for a hole+board combination from its
// card identities, independent of deal order. It is built from each card's
// canonicalCardID rather than deck.Card's own Suit/Rank numbering, so the
// same physical card produces the same key whether it arrived via
// internal/deck (training, here) or internal/game (games/holdem, at
// solve/play time via SituationIDFromGame) -- the two packages number
// suits in different orders.
func situationID(hole, board []deck.Card) uint64 {
	var id uint64
	for _, c := range hole {
		id = id*53 + canonicalCardID(deckCardToGameSuit(c.Suit), uint8(c.Rank)-2)
	}
	for _, c := range board {
		id = id*53 + canonicalCardID(deckCardToGameSuit(c.Suit), uint8(c.Rank)-2)
	}
	return id
}

// canonicalCardID keys a card by game.Card's suit/rank numbering (suit
// 0-3 Clubs..Spades, rank 0-12 Two..Ace), the canonical space both
// TrainStreet's deck.Card samples and games/holdem's game.Card play-time
// lookups are mapped into before a situation ID is computed.
func canonicalCardID(gameSuit, gameRank uint8) uint64 {
	return uint64(gameSuit)*13 + uint64(gameRank) + 1
}

// deckCardToGameSuit reorders deck.Suit's Spades..Clubs numbering into
// game.Card's Clubs..Spades numbering, so a card's canonicalCardID doesn't
// depend on which package dealt it.
func deckCardToGameSuit(s deck.Suit) uint8 {
	return 3 - uint8(s)
}

// SituationIDFromGame computes the same canonical situation key as
// TrainStreet's internal sampling, but from a games/holdem-style
// hole/board game.Hand pair -- the function a trained Street's Lookup
// must be queried with at solve or self-play time for bucket assignments
// to agree with how the Lookup was built.
func SituationIDFromGame(hole, board game.Hand) uint64 {
	var id uint64
	for _, c := range cardsOf(hole) {
		id = id*53 + canonicalCardID(c.Suit(), c.Rank())
	}
	for _, c := range cardsOf(board) {
		id = id*53 + canonicalCardID(c.Suit(), c.Rank())
	}
	return id
}

// cardsOf extracts a game.Hand bitmask's individual set cards in bit
// order, mirroring games/holdem's own unexported helper of the same name
// (duplicated rather than imported to avoid a games/holdem<->abstraction
// dependency cycle neither package otherwise needs).
func cardsOf(h game.Hand) []game.Card {
	cards := make([]game.Card, 0, h.CountCards())
	remaining := uint64(h)
	for remaining != 0 {
		bit := remaining & -remaining
		cards = append(cards, game.Card(bit))
		remaining &^= bit
	}
	return cards
}
