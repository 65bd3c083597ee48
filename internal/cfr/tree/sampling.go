package tree

import (
	"errors"
	"math/rand"

	"github.com/lox/cfrsolver/internal/cfr"
)

// Scheme selects which branches of a node a given epoch realises. Schemes
// form a small closed set, chosen once per solver run.
type Scheme uint8

const (
	// External keeps all branches at the traversing player's nodes and
	// draws exactly one at opponent and chance nodes.
	External Scheme = iota
	// Outcome is External in this solver: the literal evaluate formula
	// in the solver package (u = sum(pi(e)*u(e)) over children) needs
	// every child materialised at the traverser's own node no matter
	// which scheme is active, so a true single-trajectory outcome
	// estimator isn't expressible as just a different Select policy --
	// it would need its own evaluate algorithm. Kept as a distinct,
	// selectable value for config/API symmetry with the other three.
	Outcome
	// Subgame is External but returns no branches at chance nodes,
	// making them frontier leaves for a depth-limited re-solve.
	Subgame
	// Vanilla keeps every branch everywhere; see ErrVanillaIncompatible.
	Vanilla
)

func (s Scheme) String() string {
	switch s {
	case External:
		return "external"
	case Outcome:
		return "outcome"
	case Subgame:
		return "subgame"
	case Vanilla:
		return "vanilla"
	default:
		return "unknown"
	}
}

// ErrVanillaIncompatible is returned by Validate for the Vanilla scheme:
// it is explicitly incompatible with the solver's external-sampling
// counterfactual formula and must be rejected at driver start rather than
// silently paired with it.
var ErrVanillaIncompatible = errors.New("tree: vanilla sampling is incompatible with the external-sampling counterfactual formula; pair it with a dedicated vanilla-CFR evaluator instead")

// Validate rejects schemes the standard external-sampling Solver cannot
// use safely.
func (s Scheme) Validate() error {
	if s == Vanilla {
		return ErrVanillaIncompatible
	}
	return nil
}

// PolicySource supplies the current regret-matched policy for an Info, the
// distribution a sampling scheme draws opponent branches from (chance
// branches are drawn uniformly, see sampleUniform).
type PolicySource[E cfr.Edge[E]] interface {
	CurrentPolicy(info cfr.Info[E]) map[E]float64
}

// SelectedBranch pairs a realised Branch with the probability it was drawn
// with (1 for deterministically-kept branches, the draw probability for a
// sampled one).
type SelectedBranch[E cfr.Edge[E]] struct {
	Branch Branch[E]
	Weight float64
}

// Select applies scheme to the branches out of a node, given the
// traversing player, the acting turn, and a source of the current policy
// for sampling opponent branches. rng drives any stochastic choice.
func Select[E cfr.Edge[E]](scheme Scheme, turn cfr.Turn, traverser int, branches []Branch[E], policy PolicySource[E], info cfr.Info[E], rng *rand.Rand) []SelectedBranch[E] {
	if len(branches) == 0 {
		return nil
	}

	isTraverser := turn.IsPlayer(traverser)

	switch scheme {
	case Vanilla:
		return keepAll(branches)
	case External, Outcome:
		// The solver's post-order evaluate (u = sum(pi(e)*u(e)) over
		// children) requires full enumeration at the traverser's own
		// node regardless of scheme; Outcome is distinguished from
		// External only at opponent/chance nodes in this solver (see
		// the tree package's doc comment on Outcome for the rationale).
		switch {
		case isTraverser:
			return keepAll(branches)
		case turn.Kind == cfr.KindChance:
			return sampleUniform(branches, rng)
		default:
			return sampleOne(branches, policy, info, rng)
		}
	case Subgame:
		switch {
		case turn.Kind == cfr.KindChance:
			return nil
		case isTraverser:
			return keepAll(branches)
		default:
			return sampleOne(branches, policy, info, rng)
		}
	default:
		return keepAll(branches)
	}
}

func keepAll[E cfr.Edge[E]](branches []Branch[E]) []SelectedBranch[E] {
	out := make([]SelectedBranch[E], len(branches))
	for i, b := range branches {
		out[i] = SelectedBranch[E]{Branch: b, Weight: 1}
	}
	return out
}

func sampleOne[E cfr.Edge[E]](branches []Branch[E], policy PolicySource[E], info cfr.Info[E], rng *rand.Rand) []SelectedBranch[E] {
	n := len(branches)
	strategy := policy.CurrentPolicy(info)

	total := 0.0
	weights := make([]float64, n)
	for i, b := range branches {
		w := strategy[b.Edge]
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}

	idx := 0
	prob := 1.0 / float64(n)
	if total > 0 {
		r := rng.Float64() * total
		acc := 0.0
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			acc += w
			if r <= acc {
				idx = i
				prob = w / total
				break
			}
		}
	} else {
		idx = rng.Intn(n)
	}

	return []SelectedBranch[E]{{Branch: branches[idx], Weight: prob}}
}

// sampleUniform draws one branch uniformly at random, for chance nodes: a
// chance edge's realisation probability is intrinsic to the game, not
// something a regret-matched Profile can supply, so it never consults one.
func sampleUniform[E cfr.Edge[E]](branches []Branch[E], rng *rand.Rand) []SelectedBranch[E] {
	n := len(branches)
	idx := rng.Intn(n)
	return []SelectedBranch[E]{{Branch: branches[idx], Weight: 1.0 / float64(n)}}
}
