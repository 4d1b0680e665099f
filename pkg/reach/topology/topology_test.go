package topology

import (
	"testing"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/reacherr"
)

func buildDiamond(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range []graph.Edge{{1, 2}, {1, 3}, {2, 4}, {3, 4}} {
		if err := g.AddEdge(e.From, e.To); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestAnalyzeLayersAndClosures(t *testing.T) {
	g := buildDiamond(t)
	topo, err := Analyze(g)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(topo.Layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(topo.Layers))
	}
	if topo.LayerOf[1] != 0 {
		t.Fatalf("layer(1) = %d, want 0", topo.LayerOf[1])
	}
	if topo.LayerOf[4] != 2 {
		t.Fatalf("layer(4) = %d, want 2", topo.LayerOf[4])
	}
	if !topo.IsAncestor(1, 4) {
		t.Fatal("expected 1 to be an ancestor of 4")
	}
	if !topo.IsDescendant(4, 1) {
		t.Fatal("expected 4 to be a descendant of 1")
	}
	if !topo.IsFork(1) {
		t.Fatal("expected node 1 to be a fork")
	}
	if !topo.IsJoin(4) {
		t.Fatal("expected node 4 to be a join")
	}
}

func TestAnalyzeRejectsCycle(t *testing.T) {
	g := graph.New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	must(g.AddEdge(1, 2))
	must(g.AddEdge(2, 3))
	must(g.AddEdge(3, 1))

	_, err := Analyze(g)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycErr *reacherr.CyclicGraphError
	if !asCyclicGraphError(err, &cycErr) {
		t.Fatalf("expected *reacherr.CyclicGraphError, got %T: %v", err, err)
	}
	if len(cycErr.Cycle) == 0 {
		t.Fatal("expected a non-empty example cycle")
	}
}

func asCyclicGraphError(err error, target **reacherr.CyclicGraphError) bool {
	if e, ok := err.(*reacherr.CyclicGraphError); ok {
		*target = e
		return true
	}
	return false
}
