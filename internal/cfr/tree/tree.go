// Package tree builds the lazily-expanded game tree a single CFR epoch
// traverses: a dense, indexed DAG grown from a root Game under an Encoder
// (Info resolution) and a Scheme (which branches a given epoch realises).
// Parent back-references are stored as indices into a flat node slice, so
// post-order evaluation never needs a shared-ownership graph.
package tree

import "github.com/lox/cfrsolver/internal/cfr"

// NodeID indexes into a Tree's dense node array. The root is always 0;
// NoParent marks the root's own (absent) parent.
type NodeID int

const NoParent NodeID = -1

// Branch is a pending (edge, child-game, parent-index) triple awaiting
// materialisation into a Node.
type Branch[E cfr.Edge[E]] struct {
	Edge   E
	Game   cfr.Game[E]
	Parent NodeID
}

// Node is one materialised tree node: its Game state, the Info it was
// resolved into, its parent, the inbound edge, and the probability with
// which the sampling scheme chose to realise it (1 for deterministically
// kept branches, the draw probability for sampled ones).
type Node[E cfr.Edge[E]] struct {
	Game     cfr.Game[E]
	Info     cfr.Info[E]
	Parent   NodeID
	InEdge   E
	Weight   float64
	Children []NodeID
}

// Encoder resolves a Game state to the Info it belongs to. Two Game values
// that should share a strategy must resolve to Infos with equal Key().
type Encoder[E cfr.Edge[E]] interface {
	Info(game cfr.Game[E]) cfr.Info[E]
}

// Tree is the lazily-expanded DAG for one epoch's traversal.
type Tree[E cfr.Edge[E]] struct {
	nodes []Node[E]
}

// New returns an empty tree.
func New[E cfr.Edge[E]]() *Tree[E] {
	return &Tree[E]{}
}

// Grow seeds the tree with the root game and its Info, returning its
// NodeID (always 0).
func (t *Tree[E]) Grow(root cfr.Game[E], enc Encoder[E]) NodeID {
	t.nodes = t.nodes[:0]
	t.nodes = append(t.nodes, Node[E]{
		Game:   root,
		Info:   enc.Info(root),
		Parent: NoParent,
		Weight: 1,
	})
	return 0
}

// Node returns the materialised node at id.
func (t *Tree[E]) Node(id NodeID) *Node[E] {
	return &t.nodes[id]
}

// Len reports how many nodes have been materialised so far.
func (t *Tree[E]) Len() int { return len(t.nodes) }

// allBranches enumerates every legal successor of the node at id, without
// consulting the sampling scheme.
func (t *Tree[E]) allBranches(id NodeID) []Branch[E] {
	node := &t.nodes[id]
	choices := node.Game.Choices()
	branches := make([]Branch[E], len(choices))
	for i, e := range choices {
		branches[i] = Branch[E]{Edge: e, Game: node.Game.Apply(e), Parent: id}
	}
	return branches
}

// Expand realises the branches the sampling scheme selects out of all
// legal successors of the node at id, appends them as new nodes, links
// them as children of id, and returns their NodeIDs.
func (t *Tree[E]) Expand(id NodeID, enc Encoder[E], selected []SelectedBranch[E]) []NodeID {
	ids := make([]NodeID, len(selected))
	for i, sel := range selected {
		child := Node[E]{
			Game:   sel.Branch.Game,
			Info:   enc.Info(sel.Branch.Game),
			Parent: sel.Branch.Parent,
			InEdge: sel.Branch.Edge,
			Weight: sel.Weight,
		}
		t.nodes = append(t.nodes, child)
		cid := NodeID(len(t.nodes) - 1)
		ids[i] = cid
		t.nodes[id].Children = append(t.nodes[id].Children, cid)
	}
	return ids
}

// AllBranches is the public entry point a Solver uses to enumerate a
// node's legal successors before asking a Scheme which to realise.
func (t *Tree[E]) AllBranches(id NodeID) []Branch[E] {
	return t.allBranches(id)
}
