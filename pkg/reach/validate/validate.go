// Package validate implements the Validator: structural and probability
// sanity checks run once on the full input, before the solver ever sees it.
package validate

import (
	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/reacherr"
	"github.com/reachgraph/reachgraph/pkg/reach/topology"
)

// Validate runs the five checks of §4.6 against g, topo, and the prior maps,
// returning a single *reacherr.InvalidInputError wrapping the first failure
// found, or nil if the input is well-formed. No partial solve is attempted
// on failure.
func Validate(g *graph.Graph, topo *topology.Topology, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64) error {
	nodes := g.Nodes()
	sources := make(map[graph.NodeID]struct{})
	for _, s := range g.Sources() {
		sources[s] = struct{}{}
	}

	// 1. Every node appears in exactly one iteration layer.
	seen := make(map[graph.NodeID]int, len(nodes))
	for _, layer := range topo.Layers {
		for _, n := range layer {
			seen[n]++
		}
	}
	for _, n := range nodes {
		if seen[n] != 1 {
			return reacherr.Invalid(&reacherr.DuplicateLayeringError{Node: n})
		}
	}

	// 2. Every non-source node has a non-empty incoming set; every source has
	// an empty one.
	for _, n := range nodes {
		_, isSource := sources[n]
		hasIncoming := g.InDegree(n) > 0
		if isSource && hasIncoming {
			return reacherr.Invalid(&reacherr.DisconnectedSourceError{Node: n})
		}
		if !isSource && !hasIncoming {
			return reacherr.Invalid(&reacherr.DisconnectedSourceError{Node: n})
		}
	}

	// 3. Outgoing and incoming indices are mutually consistent edge-for-edge.
	for _, u := range nodes {
		for _, v := range g.Out(u) {
			found := false
			for _, p := range g.In(v) {
				if p == u {
					found = true
					break
				}
			}
			if !found {
				return reacherr.Invalid(&reacherr.InconsistentAdjacencyError{
					Edge:      graph.Edge{From: u, To: v},
					Direction: "outgoing has edge not reflected in incoming",
				})
			}
		}
	}
	for _, v := range nodes {
		for _, u := range g.In(v) {
			found := false
			for _, w := range g.Out(u) {
				if w == v {
					found = true
					break
				}
			}
			if !found {
				return reacherr.Invalid(&reacherr.InconsistentAdjacencyError{
					Edge:      graph.Edge{From: u, To: v},
					Direction: "incoming has edge not reflected in outgoing",
				})
			}
		}
	}

	// 4. Every node has a prior in [0,1]; every edge has a prior in [0,1].
	for _, n := range nodes {
		p, ok := nodePrior[n]
		if !ok {
			node := n
			return reacherr.Invalid(&reacherr.MissingPriorError{Node: &node})
		}
		if p < 0 || p > 1 {
			return reacherr.Invalid(&reacherr.ProbabilityOutOfRangeError{Location: "node prior", Value: p})
		}
	}
	for _, e := range g.Edges() {
		p, ok := edgePrior[e]
		if !ok {
			edge := e
			return reacherr.Invalid(&reacherr.MissingPriorError{Edge: &edge})
		}
		if p < 0 || p > 1 {
			return reacherr.Invalid(&reacherr.ProbabilityOutOfRangeError{Location: "edge prior", Value: p})
		}
	}

	// 5. Every edge referenced in adjacency has a prior (covered above, but
	// checked again directly off the edge set for defense-in-depth against a
	// future caller that feeds a prior map not derived from g.Edges()).
	for _, e := range g.Edges() {
		if _, ok := edgePrior[e]; !ok {
			edge := e
			return reacherr.Invalid(&reacherr.MissingPriorError{Edge: &edge})
		}
	}

	return nil
}
