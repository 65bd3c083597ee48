package solver

import (
	"math/rand"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/tree"
)

// evaluateEpoch builds one epoch's tree for traverser out of root under the
// Solver's sampling scheme, then post-order evaluates it: terminals return
// their payoff, chance/opponent nodes pass through the value of their one
// sampled child, and traverser nodes compute u = sum(pi(e)*u(e)) over every
// child and emit a Counterfactual witnessing the resulting regret and policy
// contribution at that node.
func (s *Solver[E]) evaluateEpoch(root cfr.Game[E], traverser int, epoch int, rng *rand.Rand, stats *Stats) error {
	t := tree.New[E]()
	rootID := t.Grow(root, s.encoder)

	// Phase 1: lazy-expand the reachable-under-scheme subtree, breadth
	// first. NodeIDs are assigned in the order nodes are appended, so a
	// child's id always exceeds its parent's -- the property the
	// post-order pass below relies on to avoid recursion.
	queue := []tree.NodeID{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		node := t.Node(id)
		if node.Game.Turn().Kind == cfr.KindTerminal {
			continue
		}
		branches := t.AllBranches(id)
		selected := tree.Select(s.cfg.Scheme, node.Game.Turn(), traverser, branches, s.table, node.Info, rng)
		queue = append(queue, t.Expand(id, s.encoder, selected)...)
	}

	n := t.Len()

	// Phase 2: forward pass computing, for every node, the product reach
	// probability of the traverser's own choices (reachPlayer) and of
	// everyone/everything else's (reachOthers) from the root.
	reachPlayer := make([]float64, n)
	reachOthers := make([]float64, n)
	depth := make([]int, n)
	reachPlayer[0], reachOthers[0] = 1, 1

	for id := 1; id < n; id++ {
		node := t.Node(tree.NodeID(id))
		parent := t.Node(node.Parent)
		depth[id] = depth[node.Parent] + 1

		if parent.Game.Turn().IsPlayer(traverser) {
			strategy := s.table.CurrentPolicy(parent.Info)
			reachPlayer[id] = reachPlayer[node.Parent] * strategy[node.InEdge]
			reachOthers[id] = reachOthers[node.Parent]
		} else {
			reachPlayer[id] = reachPlayer[node.Parent]
			reachOthers[id] = reachOthers[node.Parent] * node.Weight
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	if maxDepth > stats.MaxDepth {
		stats.MaxDepth = maxDepth
	}

	// Phase 3: post-order evaluate. Children always have a strictly
	// greater NodeID than their parent, so walking ids from n-1 down to 0
	// guarantees every child is resolved before its parent is.
	values := make([]float64, n)
	for id := n - 1; id >= 0; id-- {
		node := t.Node(tree.NodeID(id))
		turn := node.Game.Turn()

		switch turn.Kind {
		case cfr.KindTerminal:
			values[id] = node.Game.Payoff(cfr.From(traverser))
			stats.TerminalNodes++

		case cfr.KindChance:
			values[id] = passThrough(t, tree.NodeID(id), values)

		case cfr.KindPlayer:
			if turn.Player != traverser {
				values[id] = passThrough(t, tree.NodeID(id), values)
				break
			}

			strategy := s.table.CurrentPolicy(node.Info)
			utilByEdge := make(map[E]float64, len(node.Children))
			nodeUtil := 0.0
			for _, cid := range node.Children {
				child := t.Node(cid)
				u := values[cid]
				utilByEdge[child.InEdge] = u
				nodeUtil += strategy[child.InEdge] * u
			}

			cf := cfr.Counterfactual[E]{
				Regret: make(map[E]float64, len(utilByEdge)),
				Policy: make(map[E]float64, len(utilByEdge)),
				EValue: nodeUtil,
			}
			for e, u := range utilByEdge {
				cf.Regret[e] = reachOthers[id] * (u - nodeUtil)
				cf.Policy[e] = reachPlayer[id] * strategy[e]
			}
			s.table.Witness(node.Info, cf, epoch)
			values[id] = nodeUtil
		}
		stats.NodesVisited++
	}

	stats.RootEValue = values[0]
	return nil
}

// passThrough returns the value of a non-traverser node's single realised
// child (chance and opponent nodes are single-sampled under every scheme
// except Vanilla, which the Solver rejects at construction). A node with no
// realised children (a Subgame frontier chance cut) has no value of its own
// here; the subgame package supplies one from the augmented game instead.
func passThrough[E cfr.Edge[E]](t *tree.Tree[E], id tree.NodeID, values []float64) float64 {
	node := t.Node(id)
	if len(node.Children) == 0 {
		return 0
	}
	return values[node.Children[0]]
}
