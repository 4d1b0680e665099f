// Package topology implements the Topology Analyzer: Kahn-style iteration
// layering plus eager ancestor/descendant closures and fork/join detection.
package topology

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/reacherr"
)

// Topology holds the outputs of one Analyze call: iteration layers, the
// layer each node was assigned to, eager ancestor/descendant closures, and
// the fork/join sets.
type Topology struct {
	Layers      [][]graph.NodeID
	LayerOf     map[graph.NodeID]int
	Ancestors   map[graph.NodeID]map[graph.NodeID]struct{}
	Descendants map[graph.NodeID]map[graph.NodeID]struct{}
	Forks       map[graph.NodeID]struct{}
	Joins       map[graph.NodeID]struct{}
}

// IsAncestor reports whether a is an ancestor of b.
func (t *Topology) IsAncestor(a, b graph.NodeID) bool {
	_, ok := t.Ancestors[b][a]
	return ok
}

// IsDescendant reports whether a is a descendant of b.
func (t *Topology) IsDescendant(a, b graph.NodeID) bool {
	_, ok := t.Descendants[b][a]
	return ok
}

// IsFork reports whether n has out-degree >= 2.
func (t *Topology) IsFork(n graph.NodeID) bool {
	_, ok := t.Forks[n]
	return ok
}

// IsJoin reports whether n has in-degree >= 2.
func (t *Topology) IsJoin(n graph.NodeID) bool {
	_, ok := t.Joins[n]
	return ok
}

// Analyze computes the fork set, join set, iteration layers, and ancestor /
// descendant closures of g. It fails with a *reacherr.CyclicGraphError if g
// is not acyclic, reporting an example cycle via gonum's cycle finder the
// same way the sibling analyzer's cycle-reporting path does.
func Analyze(g *graph.Graph) (*Topology, error) {
	nodes := g.Nodes()

	indeg := make(map[graph.NodeID]int, len(nodes))
	for _, n := range nodes {
		indeg[n] = g.InDegree(n)
	}

	var layers [][]graph.NodeID
	layerOf := make(map[graph.NodeID]int, len(nodes))
	remaining := len(nodes)

	var frontier []graph.NodeID
	for _, n := range nodes {
		if indeg[n] == 0 {
			frontier = append(frontier, n)
		}
	}
	sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })

	var order []graph.NodeID
	for len(frontier) > 0 {
		layer := append([]graph.NodeID(nil), frontier...)
		layers = append(layers, layer)
		idx := len(layers) - 1
		var next []graph.NodeID
		for _, u := range layer {
			layerOf[u] = idx
			order = append(order, u)
			remaining--
			for _, v := range g.Out(u) {
				indeg[v]--
				if indeg[v] == 0 {
					next = append(next, v)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		frontier = next
	}

	if remaining != 0 {
		cycle := findExampleCycle(g)
		return nil, &reacherr.CyclicGraphError{Cycle: cycle}
	}

	ancestors := make(map[graph.NodeID]map[graph.NodeID]struct{}, len(nodes))
	for _, v := range order {
		set := make(map[graph.NodeID]struct{})
		for _, p := range g.In(v) {
			set[p] = struct{}{}
			for a := range ancestors[p] {
				set[a] = struct{}{}
			}
		}
		ancestors[v] = set
	}

	descendants := make(map[graph.NodeID]map[graph.NodeID]struct{}, len(nodes))
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		set := make(map[graph.NodeID]struct{})
		for _, s := range g.Out(v) {
			set[s] = struct{}{}
			for d := range descendants[s] {
				set[d] = struct{}{}
			}
		}
		descendants[v] = set
	}

	forks := make(map[graph.NodeID]struct{})
	joins := make(map[graph.NodeID]struct{})
	for _, n := range nodes {
		if g.OutDegree(n) >= 2 {
			forks[n] = struct{}{}
		}
		if g.InDegree(n) >= 2 {
			joins[n] = struct{}{}
		}
	}

	return &Topology{
		Layers:      layers,
		LayerOf:     layerOf,
		Ancestors:   ancestors,
		Descendants: descendants,
		Forks:       forks,
		Joins:       joins,
	}, nil
}

// findExampleCycle asks gonum's Tarjan SCC / cycle finder for one concrete
// cycle to attach to the CyclicGraphError, mirroring the sibling analyzer's
// topo.TarjanSCC + topo.DirectedCyclesIn cycle-reporting path.
func findExampleCycle(g *graph.Graph) []graph.NodeID {
	cycles := topo.DirectedCyclesIn(g.Underlying())
	if len(cycles) == 0 {
		// Fall back to a single non-trivial SCC if the cycle finder returns
		// no cycle; still informative.
		for _, scc := range topo.TarjanSCC(g.Underlying()) {
			if len(scc) > 1 {
				out := make([]graph.NodeID, len(scc))
				for i, n := range scc {
					out[i] = graph.NodeID(n.ID())
				}
				sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
				return out
			}
		}
		return nil
	}
	out := make([]graph.NodeID, len(cycles[0]))
	for i, n := range cycles[0] {
		out[i] = graph.NodeID(n.ID())
	}
	return out
}
