// Package graph implements the engine's Graph Store: a dense, immutable-once-built
// directed adjacency structure with outgoing/incoming indices and source detection.
package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// NodeID is a stable dense integer identifier, per the data model's NodeId entity.
type NodeID int64

// Edge is a directed, non-reflexive pair (u,v).
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph holds outgoing/incoming adjacency over a dense NodeID space. It is built
// on gonum's simple.DirectedGraph the same way the sibling Analyzer wraps one,
// generalized from issue IDs to opaque NodeIDs.
type Graph struct {
	g *simple.DirectedGraph
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{g: simple.NewDirectedGraph()}
}

// AddNode registers id, a no-op if id is already present.
func (gr *Graph) AddNode(id NodeID) {
	if gr.g.Node(int64(id)) == nil {
		gr.g.AddNode(simple.Node(id))
	}
}

// AddEdge adds the directed edge from->to, auto-registering both endpoints.
// It rejects self-loops and duplicate edges.
func (gr *Graph) AddEdge(from, to NodeID) error {
	if from == to {
		return fmt.Errorf("graph: self-loop not allowed at node %d", from)
	}
	gr.AddNode(from)
	gr.AddNode(to)
	if gr.g.HasEdgeFromTo(int64(from), int64(to)) {
		return fmt.Errorf("graph: duplicate edge %d->%d", from, to)
	}
	gr.g.SetEdge(gr.g.NewEdge(simple.Node(from), simple.Node(to)))
	return nil
}

// HasNode reports whether id was registered.
func (gr *Graph) HasNode(id NodeID) bool {
	return gr.g.Node(int64(id)) != nil
}

// HasEdge reports whether the directed edge from->to exists.
func (gr *Graph) HasEdge(from, to NodeID) bool {
	return gr.g.HasEdgeFromTo(int64(from), int64(to))
}

// Nodes returns all registered node ids in ascending order.
func (gr *Graph) Nodes() []NodeID {
	it := gr.g.Nodes()
	out := make([]NodeID, 0, it.Len())
	for it.Next() {
		out = append(out, NodeID(it.Node().ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodeCount returns the number of registered nodes.
func (gr *Graph) NodeCount() int {
	return gr.g.Nodes().Len()
}

// Out returns the successors of id in ascending order.
func (gr *Graph) Out(id NodeID) []NodeID {
	it := gr.g.From(int64(id))
	out := make([]NodeID, 0, it.Len())
	for it.Next() {
		out = append(out, NodeID(it.Node().ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// In returns the predecessors of id in ascending order.
func (gr *Graph) In(id NodeID) []NodeID {
	it := gr.g.To(int64(id))
	out := make([]NodeID, 0, it.Len())
	for it.Next() {
		out = append(out, NodeID(it.Node().ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OutDegree returns the out-degree of id.
func (gr *Graph) OutDegree(id NodeID) int {
	return gr.g.From(int64(id)).Len()
}

// InDegree returns the in-degree of id.
func (gr *Graph) InDegree(id NodeID) int {
	return gr.g.To(int64(id)).Len()
}

// Edges returns every edge in the graph, ordered by (From, To).
func (gr *Graph) Edges() []Edge {
	var out []Edge
	for _, u := range gr.Nodes() {
		for _, v := range gr.Out(u) {
			out = append(out, Edge{From: u, To: v})
		}
	}
	return out
}

// Sources returns every node with an empty incoming set, in ascending order.
func (gr *Graph) Sources() []NodeID {
	var out []NodeID
	for _, id := range gr.Nodes() {
		if gr.InDegree(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Underlying exposes the backing gonum graph for components (topology) that
// need gonum's own algorithms, such as cycle reporting.
func (gr *Graph) Underlying() *simple.DirectedGraph {
	return gr.g
}
