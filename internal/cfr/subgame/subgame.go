// Package subgame wraps an inner cfr.Game to restrict a solve to a
// depth-limited re-solve rooted at a known history: a forced Prefix replay
// rebuilds reach probabilities up to the subgame root, then an adversarial
// Meta node forces the solved policy to be robust against any of K
// precomputed alternative frontier valuations, before Real inner play
// resumes.
package subgame

import (
	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/tree"
)

// Phase distinguishes the three stages a subgame-wrapped node can be in.
type Phase uint8

const (
	PhasePrefix Phase = iota
	PhaseMeta
	PhaseReal
)

// Config fixes the subgame's world-selection parameters. K is the number
// of alternative frontier-value worlds the adversary may choose among;
// Delta is the perturbation magnitude applied to the frontier payoff
// vector per world.
type Config struct {
	K     int
	Delta float64
}

// DefaultConfig is the documented working default: two alternative worlds
// perturbed by +/-10%.
func DefaultConfig() Config {
	return Config{K: 2, Delta: 0.1}
}

// Multiplier returns the frontier-payoff scaling factor for world w,
// evenly spaced over [1-Delta, 1+Delta] across the K worlds the adversary
// may choose among. w=0 is the understating world, w=K-1 is the
// overstating world; K=1 collapses to the unperturbed case.
func (c Config) Multiplier(w int) float64 {
	if c.K <= 1 {
		return 1.0
	}
	span := 2 * c.Delta
	step := span / float64(c.K-1)
	return (1 - c.Delta) + step*float64(w)
}

// Edge is SubEdge = Inner(E) | World(k): either a pass-through inner-game
// edge, or -- only legal at a Meta node -- the adversary's choice of
// alternative world.
type Edge[E cfr.Edge[E]] struct {
	isWorld bool
	inner   E
	world   int
}

// InnerEdge wraps an inner-game edge.
func InnerEdge[E cfr.Edge[E]](e E) Edge[E] { return Edge[E]{inner: e} }

// WorldEdge constructs the adversary's choice of world w at a Meta node.
func WorldEdge[E cfr.Edge[E]](w int) Edge[E] { return Edge[E]{isWorld: true, world: w} }

// IsWorld reports whether this edge is a Meta-node world choice.
func (e Edge[E]) IsWorld() bool { return e.isWorld }

// Inner returns the wrapped inner-game edge; only meaningful if !IsWorld().
func (e Edge[E]) Inner() E { return e.inner }

// World returns the chosen world index; only meaningful if IsWorld().
func (e Edge[E]) World() int { return e.world }

// Less totally orders Edge: World edges sort after all Inner edges (by
// world index), matching the Prefix/Meta/Real phase ordering.
func (e Edge[E]) Less(other Edge[E]) bool {
	if e.isWorld != other.isWorld {
		return !e.isWorld
	}
	if e.isWorld {
		return e.world < other.world
	}
	return e.inner.Less(other.inner)
}

// Game wraps an inner cfr.Game[E] with the Prefix/Meta/Real phase
// machinery, itself implementing cfr.Game[Edge[E]].
type Game[E cfr.Edge[E]] struct {
	cfg Config

	phase Phase

	// Prefix state: the forced edges still to be replayed.
	prefix []E

	adversary int
	world     int
	chosen    bool
	inner     cfr.Game[E]
	history   []Edge[E]

	adjust Adjuster
}

// Adjuster perturbs a terminal payoff according to the chosen world index,
// modelling disagreement between precomputed frontier valuations.
type Adjuster func(world int, turn cfr.Turn, payoff float64) float64

// New builds a subgame rooted at root, forcing the replay of prefix before
// handing control to an adversarial Meta node and then Real inner play.
// adversary is the player index whose Meta choice perturbs the frontier.
func New[E cfr.Edge[E]](cfg Config, prefix []E, root cfr.Game[E], adversary int, adjust Adjuster) *Game[E] {
	g := &Game[E]{
		cfg:       cfg,
		phase:     PhasePrefix,
		prefix:    prefix,
		adversary: adversary,
		inner:     root,
		adjust:    adjust,
	}
	if len(g.prefix) == 0 {
		g.phase = PhaseMeta
	}
	return g
}

// Phase reports which of the three stages this node is in.
func (g *Game[E]) Phase() Phase { return g.phase }

func (g *Game[E]) Turn() cfr.Turn {
	switch g.phase {
	case PhasePrefix:
		// A forced replay step: exactly one edge is legal, so whose
		// turn it nominally is doesn't affect the traversal, but
		// reporting it as the inner game does keeps reach
		// probabilities accruing to the right player.
		return g.inner.Turn()
	case PhaseMeta:
		return cfr.From(g.adversary)
	default:
		return g.inner.Turn()
	}
}

func (g *Game[E]) Choices() []Edge[E] {
	switch g.phase {
	case PhasePrefix:
		if len(g.prefix) == 0 {
			return nil
		}
		return []Edge[E]{InnerEdge[E](g.prefix[0])}
	case PhaseMeta:
		choices := make([]Edge[E], g.cfg.K)
		for w := 0; w < g.cfg.K; w++ {
			choices[w] = WorldEdge[E](w)
		}
		return choices
	default:
		inner := g.inner.Choices()
		choices := make([]Edge[E], len(inner))
		for i, e := range inner {
			choices[i] = InnerEdge[E](e)
		}
		return choices
	}
}

func (g *Game[E]) Apply(edge Edge[E]) cfr.Game[Edge[E]] {
	switch g.phase {
	case PhasePrefix:
		if edge.IsWorld() || len(g.prefix) == 0 || edge.Inner() != g.prefix[0] {
			panic(cfr.Invariantf("subgame: illegal prefix edge"))
		}
		next := &Game[E]{
			cfg:       g.cfg,
			phase:     PhasePrefix,
			prefix:    g.prefix[1:],
			adversary: g.adversary,
			inner:     g.inner.Apply(edge.Inner()),
			history:   appendEdge(g.history, edge),
			adjust:    g.adjust,
		}
		if len(next.prefix) == 0 {
			next.phase = PhaseMeta
		}
		return next
	case PhaseMeta:
		if !edge.IsWorld() {
			panic(cfr.Invariantf("subgame: illegal meta edge"))
		}
		return &Game[E]{
			cfg:       g.cfg,
			phase:     PhaseReal,
			adversary: g.adversary,
			world:     edge.World(),
			chosen:    true,
			inner:     g.inner,
			history:   appendEdge(g.history, edge),
			adjust:    g.adjust,
		}
	default:
		if edge.IsWorld() {
			panic(cfr.Invariantf("subgame: illegal real-phase edge"))
		}
		return &Game[E]{
			cfg:       g.cfg,
			phase:     PhaseReal,
			adversary: g.adversary,
			world:     g.world,
			chosen:    g.chosen,
			inner:     g.inner.Apply(edge.Inner()),
			history:   appendEdge(g.history, edge),
			adjust:    g.adjust,
		}
	}
}

func appendEdge[E cfr.Edge[E]](history []Edge[E], edge Edge[E]) []Edge[E] {
	next := make([]Edge[E], len(history)+1)
	copy(next, history)
	next[len(history)] = edge
	return next
}

// History returns every edge played so far: prefix replay, the adversary's
// world choice (once past Meta), and inner-game play.
func (g *Game[E]) History() []Edge[E] { return g.history }

// Info is the cfr.Info[Edge[E]] this package resolves nodes to: the
// wrapping Game (for Choices/History) plus the inner game's own Info key.
// The adversary's Meta choice is deliberately excluded from every
// non-adversary player's Info -- the adversary's hidden choice of world is
// exactly what Real play must stay robust to.
type Info[E cfr.Edge[E]] struct {
	*Game[E]
	innerKey any
}

func (i Info[E]) Key() any {
	world := i.world
	if t := i.Turn(); t.Kind != cfr.KindPlayer || t.Player != i.adversary {
		world = -1
	}
	return struct {
		Phase   Phase
		Chosen  bool
		World   int
		Adv     int
		InnerID any
	}{i.phase, i.chosen, world, i.adversary, i.innerKey}
}

// Encoder implements tree.Encoder[Edge[E]] by wrapping an inner encoder:
// a subgame node's Info is the wrapping Game's own Choices/History plus
// whatever the inner game resolves its wrapped state to.
type Encoder[E cfr.Edge[E]] struct {
	Inner tree.Encoder[E]
}

func (enc Encoder[E]) Info(game cfr.Game[Edge[E]]) cfr.Info[Edge[E]] {
	g, ok := game.(*Game[E])
	if !ok {
		panic(cfr.Invariantf("subgame: encoder given unrecognised Game %T", game))
	}
	return Info[E]{Game: g, innerKey: enc.Inner.Info(g.inner).Key()}
}

func (g *Game[E]) Payoff(turn cfr.Turn) float64 {
	raw := g.inner.Payoff(turn)
	if g.adjust == nil || !g.chosen {
		return raw
	}
	return g.adjust(g.world, turn, raw)
}

// DefaultAdjuster scales the frontier payoff for every non-adversary
// player by the world's multiplier, modelling a precomputed continuation
// value that the adversary knows might be off by that factor.
func DefaultAdjuster(cfg Config, adversary int) Adjuster {
	return func(world int, turn cfr.Turn, payoff float64) float64 {
		if turn.Kind == cfr.KindPlayer && turn.Player == adversary {
			return payoff
		}
		return payoff * cfg.Multiplier(world)
	}
}
