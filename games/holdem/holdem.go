// Package holdem adapts internal/game's mutable Texas Hold'em HandState
// engine into an immutable cfr.Game[Edge]: every Apply clones the
// underlying hand before mutating it, and the engine's own fine-grained
// bet sizes are discretized down to a small fixed action set so the tree
// a CFR epoch builds stays finite.
package holdem

import (
	"math/rand"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/game"
)

// ActionKind is the discretized action set a holdem node offers: fold,
// the unified check/call, two pot-relative raise sizes, and all-in. This
// mirrors the standard bet-size abstraction used to keep extensive-form
// poker trees tractable, collapsing the engine's continuous Raise amount
// down to a handful of recurring sizes.
type ActionKind uint8

const (
	Fold ActionKind = iota
	CheckCall
	RaiseHalfPot
	RaisePot
	AllIn
)

func (a ActionKind) String() string {
	switch a {
	case Fold:
		return "fold"
	case CheckCall:
		return "check_call"
	case RaiseHalfPot:
		return "raise_half_pot"
	case RaisePot:
		return "raise_pot"
	case AllIn:
		return "allin"
	default:
		return "invalid"
	}
}

// Edge is the holdem cfr.Edge: a single ActionKind value, totally ordered
// in the fixed Fold < CheckCall < RaiseHalfPot < RaisePot < AllIn
// presentation order used throughout this package.
type Edge struct{ Kind ActionKind }

func (e Edge) Less(other Edge) bool { return e.Kind < other.Kind }

func (e Edge) String() string { return e.Kind.String() }

// Game wraps a cloned *game.HandState. Perspective players are 0..N-1,
// matching the engine's own seat numbering.
//
// Chance (card dealing) is resolved inside the engine by its own seeded
// RNG at street transitions, rather than surfaced as an explicit
// cfr.KindChance node: HandState.ProcessAction deals the next street's
// board cards synchronously once betting on the current street closes, so
// there is no separate decision point to intercept. A node's Info
// collapses every deal consistent with its abstraction bucket into one
// key, so this is a fixed-deal-per-traversal simplification rather than
// the reach-weighted chance-branch integration the generic tree.Scheme
// machinery models for an explicit chance node; see DESIGN.md.
type Game struct {
	hand    *game.HandState
	history []Edge
}

// New wraps a fresh hand dealt for the given player names, chip stacks,
// and blinds.
func New(rng *rand.Rand, playerNames []string, button, smallBlind, bigBlind int, startingChips int) *Game {
	h := game.NewHand(rng, playerNames, button, smallBlind, bigBlind, game.WithUniformChips(startingChips))
	return &Game{hand: h}
}

// Turn reports the hand's current actor, or Terminal once the hand is
// decided (everyone but one folded, or the river's action has closed).
func (g *Game) Turn() cfr.Turn {
	if g.hand.IsComplete() {
		return cfr.Terminal()
	}
	return cfr.From(g.hand.ActivePlayer)
}

// Choices maps the engine's fine-grained legal actions down to this
// package's discretized ActionKind set, in the fixed presentation order.
func (g *Game) Choices() []Edge {
	if g.hand.IsComplete() {
		return nil
	}
	valid := g.hand.GetValidActions()

	hasCheckOrCall := false
	hasRaiseRoom := false
	hasAllIn := false
	for _, a := range valid {
		switch a {
		case game.Check, game.Call:
			hasCheckOrCall = true
		case game.Raise:
			hasRaiseRoom = true
		case game.AllIn:
			hasAllIn = true
		}
	}

	choices := []Edge{{Fold}}
	if hasCheckOrCall {
		choices = append(choices, Edge{CheckCall})
	}
	if hasRaiseRoom {
		choices = append(choices, Edge{RaiseHalfPot}, Edge{RaisePot})
	}
	if hasAllIn {
		choices = append(choices, Edge{AllIn})
	}
	return choices
}

// potSize is the chips already committed this hand, across every street,
// plus what's live in front of players this street.
func potSize(h *game.HandState) int {
	total := 0
	for _, pot := range h.GetPots() {
		total += pot.Amount
	}
	return total
}

// Apply clones the wrapped hand, resolves the discretized edge to the
// engine's native Action(+amount), and applies it to the clone.
func (g *Game) Apply(edge Edge) cfr.Game[Edge] {
	if g.hand.IsComplete() {
		panic(cfr.Invariantf("holdem: apply on terminal hand"))
	}

	h := g.hand.Clone()
	player := h.Players[h.ActivePlayer]

	switch edge.Kind {
	case Fold:
		mustApply(h, game.Fold, 0)
	case CheckCall:
		if h.Betting.CurrentBet == player.Bet {
			mustApply(h, game.Check, 0)
		} else {
			mustApply(h, game.Call, 0)
		}
	case RaiseHalfPot, RaisePot:
		pot := potSize(h)
		toCall := h.Betting.CurrentBet - player.Bet
		raiseBy := pot + toCall
		if edge.Kind == RaiseHalfPot {
			raiseBy = (pot + toCall) / 2
		}
		target := h.Betting.CurrentBet + max(raiseBy, h.Betting.MinRaise)
		playerCeiling := player.Chips + player.Bet
		if target >= playerCeiling {
			mustApply(h, game.AllIn, 0)
		} else {
			mustApply(h, game.Raise, target)
		}
	case AllIn:
		mustApply(h, game.AllIn, 0)
	default:
		panic(cfr.Invariantf("holdem: unrecognised edge %v", edge))
	}

	next := make([]Edge, len(g.history)+1)
	copy(next, g.history)
	next[len(g.history)] = edge

	return &Game{hand: h, history: next}
}

func mustApply(h *game.HandState, action game.Action, amount int) {
	if err := h.ProcessAction(action, amount); err != nil {
		panic(cfr.Invariantf("holdem: %v", err))
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// History returns every discretized edge played so far this hand.
func (g *Game) History() []Edge { return g.history }

// Payoff returns turn's net chip result relative to their starting stack,
// settling every pot by its engine-determined winners. A pot with several
// winners is split into equal fractional shares, so no chip remainder is
// left over.
func (g *Game) Payoff(turn cfr.Turn) float64 {
	if !g.hand.IsComplete() {
		panic(cfr.Invariantf("holdem: payoff on non-terminal hand"))
	}
	if turn.Kind != cfr.KindPlayer {
		panic(cfr.Invariantf("holdem: payoff requested for non-player turn"))
	}
	return g.settle()[turn.Player]
}

// settle computes each seat's net win/loss for the completed hand: total
// contributed this hand (negative) plus their share of every pot they won.
func (g *Game) settle() []float64 {
	net := make([]float64, len(g.hand.Players))
	for i, p := range g.hand.Players {
		net[i] = -float64(p.TotalBet)
	}

	winners := g.hand.GetWinners()
	for potIdx, pot := range g.hand.GetPots() {
		seats, ok := winners[potIdx]
		if !ok || len(seats) == 0 {
			continue
		}
		share := float64(pot.Amount) / float64(len(seats))
		for _, seat := range seats {
			net[seat] += share
		}
	}
	return net
}
