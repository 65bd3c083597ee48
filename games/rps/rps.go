// Package rps is the reference Rock-Paper-Scissors instantiation of the
// cfr.Game contract, used to exercise the solver end-to-end in tests
// independent of the heads-up hold'em adapter.
package rps

import "github.com/lox/cfrsolver/internal/cfr"

// Move is the RPS edge type: Rock, Paper, or Scissors.
type Move uint8

const (
	Rock Move = iota
	Paper
	Scissors
)

func (m Move) String() string {
	switch m {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	default:
		return "invalid"
	}
}

// Less gives Moves a total order (Rock < Paper < Scissors) so Move
// satisfies cfr.Edge[Move].
func (m Move) Less(other Move) bool { return m < other }

var allMoves = []Move{Rock, Paper, Scissors}

// State is the RPS game state: which moves (if any) the two players have
// committed so far. The zero State is the root.
type State struct {
	p1, p2   Move
	p1Played bool
	p2Played bool
}

// Root returns the initial state: neither player has moved.
func Root() State { return State{} }

// Turn reports P1 to move, then P2, then terminal once both have moved.
func (s State) Turn() cfr.Turn {
	switch {
	case !s.p1Played:
		return cfr.From(0)
	case !s.p2Played:
		return cfr.From(1)
	default:
		return cfr.Terminal()
	}
}

// Choices returns the three moves at either player's decision, and none at
// a terminal node.
func (s State) Choices() []Move {
	if s.Turn().Kind == cfr.KindTerminal {
		return nil
	}
	return allMoves
}

// Apply plays a move for whichever player is currently on turn.
func (s State) Apply(m Move) cfr.Game[Move] {
	switch {
	case !s.p1Played:
		s.p1, s.p1Played = m, true
	case !s.p2Played:
		s.p2, s.p2Played = m, true
	default:
		panic(cfr.Invariantf("rps: apply on terminal state"))
	}
	return s
}

// History returns the moves played so far, in order. RPS has no visible
// phase structure beyond "has each player moved", so this is also the full
// trajectory.
func (s State) History() []Move {
	var h []Move
	if s.p1Played {
		h = append(h, s.p1)
	}
	if s.p2Played {
		h = append(h, s.p2)
	}
	return h
}

// Key makes State usable directly as an Info: RPS has no abstraction, so
// the information set is exactly the acting player's view, which for a
// simultaneous-move game is just "have I moved yet" (always no, since each
// player only ever sees the root before committing).
func (s State) Key() any {
	return s.Turn()
}

// Encoder implements tree.Encoder[Move]: RPS has no abstraction, so a
// node's Info is just its own State (or the State embedded in a Biased).
type Encoder struct{}

func (Encoder) Info(game cfr.Game[Move]) cfr.Info[Move] {
	switch g := game.(type) {
	case State:
		return g
	case Biased:
		return g.State
	default:
		panic(cfr.Invariantf("rps: encoder given unrecognised Game %T", game))
	}
}

// Codec implements profile.Codec[Move] for checkpointing a Table trained
// on this package's State.
type Codec struct{}

func (Codec) EncodeEdge(m Move) string { return m.String() }

func (Codec) DecodeEdge(s string) Move {
	switch s {
	case "rock":
		return Rock
	case "paper":
		return Paper
	case "scissors":
		return Scissors
	default:
		panic(cfr.Invariantf("rps: decode unknown edge %q", s))
	}
}

// beats reports whether a beats b under the classical RPS cycle.
func beats(a, b Move) bool {
	return (a == Rock && b == Scissors) ||
		(a == Paper && b == Rock) ||
		(a == Scissors && b == Paper)
}

// Payoff returns the classical 1/0/-1 matrix for the given turn, requiring
// both players to have moved.
func (s State) Payoff(turn cfr.Turn) float64 {
	if s.Turn().Kind != cfr.KindTerminal {
		panic(cfr.Invariantf("rps: payoff on non-terminal state"))
	}
	if turn.Kind != cfr.KindPlayer {
		panic(cfr.Invariantf("rps: payoff requested for non-player turn"))
	}
	var self, opp Move
	if turn.Player == 0 {
		self, opp = s.p1, s.p2
	} else {
		self, opp = s.p2, s.p1
	}
	switch {
	case self == opp:
		return 0
	case beats(self, opp):
		return 1
	default:
		return -1
	}
}

// Biased is a variant used by the "biased RPS" end-to-end scenario where
// Rock beating Scissors pays double.
type Biased struct{ State }

func BiasedRoot() Biased { return Biased{Root()} }

func (b Biased) Apply(m Move) cfr.Game[Move] {
	return Biased{b.State.Apply(m).(State)}
}

func (b Biased) Payoff(turn cfr.Turn) float64 {
	base := b.State.Payoff(turn)
	if base <= 0 {
		return base
	}
	var self, opp Move
	if turn.Player == 0 {
		self, opp = b.p1, b.p2
	} else {
		self, opp = b.p2, b.p1
	}
	if self == Rock && opp == Scissors {
		return 2
	}
	return base
}
