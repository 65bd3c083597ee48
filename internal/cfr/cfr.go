// Package cfr defines the generic extensive-form game algebra that the
// solver, tree, and profile packages build on: Turn, Edge, Game, and the
// Public/Secret/Info information-set split. Concrete games (games/rps,
// games/holdem) implement Game[E] against this contract; nothing in here
// knows about poker or rock-paper-scissors specifically.
package cfr

import "fmt"

// Kind distinguishes the three node categories a Turn can take.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindChance
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindChance:
		return "chance"
	case KindTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Turn identifies whose decision a node belongs to. The zero value is the
// player-0 case; use Chance() and Terminal() to construct the other two.
type Turn struct {
	Kind   Kind
	Player int
}

// From constructs the player case for the given index.
func From(i int) Turn { return Turn{Kind: KindPlayer, Player: i} }

// Chance constructs the chance-node case.
func Chance() Turn { return Turn{Kind: KindChance} }

// Terminal constructs the terminal-node case.
func Terminal() Turn { return Turn{Kind: KindTerminal} }

// IsPlayer reports whether this is a decision node for the given player.
func (t Turn) IsPlayer(i int) bool { return t.Kind == KindPlayer && t.Player == i }

func (t Turn) String() string {
	switch t.Kind {
	case KindPlayer:
		return fmt.Sprintf("player(%d)", t.Player)
	case KindChance:
		return "chance"
	case KindTerminal:
		return "terminal"
	default:
		return "invalid"
	}
}

// Edge is an action or chance outcome: copyable, totally ordered, hashable.
// The constraint is self-referential (Edge[Self]) so that concrete edge
// types compare against their own kind without boxing through any.
// Implementations are typically small value types (enums, ints) that also
// satisfy comparable so they can key maps directly.
type Edge[Self any] interface {
	comparable
	Less(other Self) bool
}

// Game is the memoryless state of a single tree node, parameterised by its
// concrete Edge type. Implementations are cheap value types; all history
// lives on the tree path, not inside the Game. Monomorphised per concrete
// game type: the hot evaluation traversal never boxes through an interface{}.
type Game[E Edge[E]] interface {
	// Turn reports whose decision this node is.
	Turn() Turn
	// Choices returns the legal edges at this node, in a fixed order.
	// Empty (and only empty) at terminal nodes.
	Choices() []E
	// Apply returns the successor state after playing edge. The edge must
	// be a member of Choices(); callers violating this is a Fault.
	Apply(edge E) Game[E]
	// Payoff returns the utility to the given turn. Only defined when
	// Turn().Kind == KindTerminal.
	Payoff(turn Turn) float64
}

// Public is the portion of an information set visible to both the acting
// player and an external observer of the same decision: the choice set and
// (optionally) a projection of history within the current phase.
type Public[E Edge[E]] interface {
	Choices() []E
	History() []E
}

// Secret is the acting player's private observation. Copyable, hashable,
// ordered by the embedder's own comparable key.
type Secret interface {
	comparable
}

// Info is the (Public, Secret) pair: two game states sharing an Info share
// a strategy. Implementations must guarantee that Choices() depends only
// on the Public component. Key returns a comparable value suitable for use
// as a Profile map key (Go generics can't key maps on an interface-typed
// Info directly, so implementations collapse themselves to one).
type Info[E Edge[E]] interface {
	Public[E]
	Key() any
}
