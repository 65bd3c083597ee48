package tree

import "github.com/lox/cfrsolver/internal/cfr"

// Waypoint is one step of a replayed trajectory: the game state at
// position i, the edges taken from the root up to and including i, and
// the inbound edge at this step (edges[i]).
type Waypoint[E cfr.Edge[E]] struct {
	Game  cfr.Game[E]
	Edges []E
	Edge  E
}

// Walk iterates from the root to leaf, replaying edges in root-to-leaf
// order. It is an explicit cursor over parent back-pointers, never a
// stackful coroutine, so it can be restarted freely.
func (t *Tree[E]) Walk(leaf NodeID) []Waypoint[E] {
	var chain []NodeID
	for id := leaf; id != NoParent; id = t.nodes[id].Parent {
		chain = append(chain, id)
	}
	// chain is leaf-to-root; reverse into root-to-leaf waypoints.
	waypoints := make([]Waypoint[E], len(chain))
	var edges []E
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		node := &t.nodes[id]
		pos := len(chain) - 1 - i
		if node.Parent != NoParent {
			edges = append(edges, node.InEdge)
		}
		waypoints[pos] = Waypoint[E]{
			Game:  node.Game,
			Edges: append([]E(nil), edges...),
			Edge:  node.InEdge,
		}
	}
	return waypoints
}
