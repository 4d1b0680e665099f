package solver

import (
	"sort"
	"testing"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
)

// bruteForceBelief is an independent oracle for property 8 (decomposition
// equivalence): it enumerates every joint Bernoulli activation of every node
// and every edge directly, with no notion of diamonds or conditioning at
// all, and averages the reachability indicator over the joint distribution.
// It is exponential in |V|+|E| and only meant for the small fixtures used in
// these tests.
func bruteForceBelief(t *testing.T, nodes []graph.NodeID, edges []graph.Edge, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64) map[graph.NodeID]float64 {
	t.Helper()

	sortedNodes := append([]graph.NodeID(nil), nodes...)
	sort.Slice(sortedNodes, func(i, k int) bool { return sortedNodes[i] < sortedNodes[k] })

	parents := make(map[graph.NodeID][]graph.NodeID, len(nodes))
	for _, e := range edges {
		parents[e.To] = append(parents[e.To], e.From)
	}
	isSource := make(map[graph.NodeID]bool, len(nodes))
	for _, n := range nodes {
		isSource[n] = len(parents[n]) == 0
	}

	n := len(sortedNodes)
	e := len(edges)
	if n+e > 24 {
		t.Fatalf("bruteForceBelief: %d bits is too large for an exhaustive oracle", n+e)
	}

	sums := make(map[graph.NodeID]float64, n)
	total := 0.0

	for nodeMask := 0; nodeMask < (1 << uint(n)); nodeMask++ {
		nodeWeight := 1.0
		nodeActive := make(map[graph.NodeID]bool, n)
		for i, v := range sortedNodes {
			p := nodePrior[v]
			if nodeMask&(1<<uint(i)) != 0 {
				nodeActive[v] = true
				nodeWeight *= p
			} else {
				nodeWeight *= 1 - p
			}
		}
		if nodeWeight == 0 {
			continue
		}

		for edgeMask := 0; edgeMask < (1 << uint(e)); edgeMask++ {
			edgeWeight := 1.0
			edgeActive := make(map[graph.Edge]bool, e)
			for i, edge := range edges {
				p := edgePrior[edge]
				if edgeMask&(1<<uint(i)) != 0 {
					edgeActive[edge] = true
					edgeWeight *= p
				} else {
					edgeWeight *= 1 - p
				}
			}
			jointWeight := nodeWeight * edgeWeight
			if jointWeight == 0 {
				continue
			}

			reached := make(map[graph.NodeID]bool, n)
			for _, v := range sortedNodes {
				if !nodeActive[v] {
					reached[v] = false
					continue
				}
				if isSource[v] {
					reached[v] = true
					continue
				}
				ok := false
				for _, p := range parents[v] {
					if reached[p] && edgeActive[graph.Edge{From: p, To: v}] {
						ok = true
						break
					}
				}
				reached[v] = ok
			}

			for _, v := range sortedNodes {
				if reached[v] {
					sums[v] += jointWeight
				}
			}
			total += jointWeight
		}
	}

	_ = total // sanity hook for debugging; the joint distribution always sums to 1
	return sums
}
