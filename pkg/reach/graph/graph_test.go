package graph

import "testing"

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	g := New()
	if err := g.AddEdge(1, 1); err == nil {
		t.Fatal("expected error for self-loop")
	}
}

func TestAddEdgeRejectsDuplicate(t *testing.T) {
	g := New()
	if err := g.AddEdge(1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddEdge(1, 2); err == nil {
		t.Fatal("expected error for duplicate edge")
	}
}

func TestAdjacencyAndSources(t *testing.T) {
	g := New()
	edges := []Edge{{1, 2}, {1, 3}, {2, 4}, {3, 4}}
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			t.Fatalf("AddEdge(%d,%d): %v", e.From, e.To, err)
		}
	}

	if got, want := g.Sources(), []NodeID{1}; len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}
	if got := g.Out(1); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("Out(1) = %v", got)
	}
	if got := g.In(4); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("In(4) = %v", got)
	}
	if g.OutDegree(1) != 2 {
		t.Fatalf("OutDegree(1) = %d, want 2", g.OutDegree(1))
	}
	if g.InDegree(4) != 2 {
		t.Fatalf("InDegree(4) = %d, want 2", g.InDegree(4))
	}
	if g.NodeCount() != 4 {
		t.Fatalf("NodeCount() = %d, want 4", g.NodeCount())
	}
	if len(g.Edges()) != 4 {
		t.Fatalf("Edges() len = %d, want 4", len(g.Edges()))
	}
}
