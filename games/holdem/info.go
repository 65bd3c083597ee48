package holdem

import (
	"fmt"
	"math/bits"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cluster"
	"github.com/lox/cfrsolver/internal/game"
)

// Abstraction maps a player's private view at a node -- their hole cards
// plus the board dealt so far -- down to a small bucket index, the unit
// an Info's Key is built from. DefaultAbstraction is a cheap standing
// categorization; a trained run substitutes a cluster.Lookup built from
// internal/cluster's k-means partition over internal/transport distances.
type Abstraction interface {
	Bucket(street game.Street, hole, board game.Hand) int
}

// LookupAbstraction adapts a trained cluster.Lookup (keyed by a canonical
// situation ID) into the Abstraction interface this package consumes.
type LookupAbstraction struct {
	Lookup *cluster.Lookup
	SitID  func(street game.Street, hole, board game.Hand) uint64
}

func (a LookupAbstraction) Bucket(street game.Street, hole, board game.Hand) int {
	return a.Lookup.Bucket(a.SitID(street, hole, board))
}

// TrainedAbstraction composes one cluster.Lookup per street into a single
// Abstraction, falling back to DefaultAbstraction for any street whose
// Lookup hasn't been trained (or for an id the trained Lookup never saw,
// which Bucket signals by returning -1).
type TrainedAbstraction struct {
	Lookups map[game.Street]*cluster.Lookup
	SitID   func(hole, board game.Hand) uint64
}

func (a TrainedAbstraction) Bucket(street game.Street, hole, board game.Hand) int {
	lookup, ok := a.Lookups[street]
	if !ok {
		return DefaultAbstraction{}.Bucket(street, hole, board)
	}
	if bucket := lookup.Bucket(a.SitID(hole, board)); bucket >= 0 {
		return bucket
	}
	return DefaultAbstraction{}.Bucket(street, hole, board)
}

// DefaultAbstraction buckets preflop hands into the five standard
// strength tiers and postflop hands into the nine HandRank categories,
// without running the clustering pipeline -- useful for tests and for
// exercising the solver before an abstraction has been trained.
type DefaultAbstraction struct{}

func (DefaultAbstraction) Bucket(street game.Street, hole, board game.Hand) int {
	if street == game.Preflop {
		return int(categorizeHole(hole))
	}
	full := hole | board
	if full.CountCards() == 7 {
		return int(game.Evaluate7Cards(full).Type() >> 28)
	}
	// The full evaluator only accepts exactly 7 cards; flop and turn see
	// 5 or 6, so bucket those on the same rank/flush/straight signals at
	// a coarser grain rather than stretching Evaluate7Cards to fit.
	return roughCategory(full)
}

// roughCategory buckets a 5- or 6-card hand (hole plus a partial board)
// into the same made-hand families Evaluate7Cards distinguishes, without
// requiring the full 7 cards that evaluator needs. It is deliberately
// coarser: flushes and straights aren't told apart from their draws, and
// kickers are ignored entirely, since this is a bucket key rather than a
// showdown-accurate ranking.
func roughCategory(hand game.Hand) int {
	best := 0
	for suit := uint8(0); suit < 4; suit++ {
		if bits.OnesCount16(hand.GetSuitMask(suit)) >= 4 {
			best = max(best, 5) // flush draw or made flush
		}
	}
	rankMask := hand.GetRankMask()
	if consecutiveRun(rankMask) >= 4 {
		best = max(best, 4) // open-ended straight draw or made straight
	}

	var counts [13]uint8
	for suit := uint8(0); suit < 4; suit++ {
		mask := hand.GetSuitMask(suit)
		for rank := uint8(0); rank < 13; rank++ {
			if mask&(1<<rank) != 0 {
				counts[rank]++
			}
		}
	}
	pairs, trips, quads := 0, 0, 0
	for _, c := range counts {
		switch c {
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
	}
	switch {
	case quads > 0:
		best = max(best, 7)
	case trips > 0 && pairs > 0:
		best = max(best, 6)
	case trips > 0:
		best = max(best, 3)
	case pairs >= 2:
		best = max(best, 2)
	case pairs == 1:
		best = max(best, 1)
	}
	return best
}

// consecutiveRun returns the longest run of set bits in rankMask.
func consecutiveRun(rankMask uint16) int {
	longest, run := 0, 0
	for rank := 0; rank < 14; rank++ {
		if rankMask&(1<<rank) != 0 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// tier is the preflop strength category.
type tier uint8

const (
	tierPremium tier = iota
	tierStrong
	tierMedium
	tierWeak
	tierTrash
)

func categorizeHole(hole game.Hand) tier {
	cards := cardsOf(hole)
	if len(cards) != 2 {
		return tierTrash
	}
	c1, c2 := cards[0], cards[1]
	r1, r2 := rankValue(c1.Rank()), rankValue(c2.Rank())
	suited := c1.Suit() == c2.Suit()

	small, big := r1, r2
	if small > big {
		small, big = big, small
	}
	isPair := small == big

	switch {
	case isPair && small >= 11:
		return tierPremium
	case small == 13 && big == 14:
		return tierPremium
	case isPair && small == 10:
		return tierStrong
	case big == 14 && (small == 12 || small == 11):
		return tierStrong
	case isPair && small >= 7 && small <= 9:
		return tierMedium
	case suited && small >= 10 && big >= 10:
		return tierMedium
	case isPair && small >= 2 && small <= 6:
		return tierWeak
	case suited && absDiff(small, big) <= 2:
		return tierWeak
	default:
		return tierTrash
	}
}

// cardsOf extracts a Hand bitmask's individual set cards in bit order.
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

func rankValue(rank uint8) int {
	if rank == game.Ace {
		return 14
	}
	return int(rank) + 2
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Info is this package's cfr.Info[Edge]: the public betting history and
// choice set, plus the acting player's abstraction bucket.
type Info struct {
	game    *Game
	choices []Edge
	turn    cfr.Turn
	bucket  int
	street  game.Street
}

func (i Info) Choices() []Edge { return i.choices }
func (i Info) History() []Edge { return i.game.History() }

func (i Info) Key() any {
	return fmt.Sprintf("%d|%d|%d|%v", i.street, i.turn.Player, i.bucket, i.choices)
}

// Encoder implements tree.Encoder[Edge], resolving a Game to its Info
// under a given Abstraction.
type Encoder struct {
	Abstraction Abstraction
}

func (enc Encoder) Info(g cfr.Game[Edge]) cfr.Info[Edge] {
	hg, ok := g.(*Game)
	if !ok {
		panic(cfr.Invariantf("holdem: encoder given unrecognised Game %T", g))
	}
	turn := hg.Turn()
	var bucket int
	if turn.Kind == cfr.KindPlayer {
		hole := hg.hand.Players[turn.Player].HoleCards
		bucket = enc.Abstraction.Bucket(hg.hand.Street, hole, hg.hand.Board)
	}
	return Info{
		game:    hg,
		choices: hg.Choices(),
		turn:    turn,
		bucket:  bucket,
		street:  hg.hand.Street,
	}
}

// Codec implements profile.Codec[Edge] for checkpointing a Table trained
// on this package's Game.
type Codec struct{}

func (Codec) EncodeEdge(e Edge) string { return e.Kind.String() }

func (Codec) DecodeEdge(s string) Edge {
	switch s {
	case "fold":
		return Edge{Fold}
	case "check_call":
		return Edge{CheckCall}
	case "raise_half_pot":
		return Edge{RaiseHalfPot}
	case "raise_pot":
		return Edge{RaisePot}
	case "allin":
		return Edge{AllIn}
	default:
		panic(cfr.Invariantf("holdem: decode unknown edge %q", s))
	}
}
