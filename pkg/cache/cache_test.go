package cache

import (
	"path/filepath"
	"testing"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
)

func diamondGraph(t *testing.T) (*graph.Graph, map[graph.NodeID]float64, map[graph.Edge]float64) {
	t.Helper()
	g := graph.New()
	edges := []graph.Edge{{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}, {From: 3, To: 4}}
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	np := map[graph.NodeID]float64{1: 0.9, 2: 0.9, 3: 0.9, 4: 0.9}
	ep := map[graph.Edge]float64{}
	for _, e := range edges {
		ep[e] = 0.9
	}
	return g, np, ep
}

func TestCacheMissThenHit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "solves.db")
	c, err := OpenCache(dbPath)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	g, np, ep := diamondGraph(t)
	key := Key(g, np, ep)

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	belief := solver.BeliefMap{1: 0.9, 2: 0.729, 3: 0.729, 4: 0.780759}
	if err := c.Put(key, Stats{NodeCount: g.NodeCount(), EdgeCount: len(g.Edges())}, belief); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	for n, p := range belief {
		if got[n] != p {
			t.Fatalf("belief[%d] = %v, want %v", n, got[n], p)
		}
	}
}

func TestCacheKeyStableUnderMapOrder(t *testing.T) {
	g, np, ep := diamondGraph(t)
	k1 := Key(g, np, ep)
	k2 := Key(g, np, ep)
	if k1 != k2 {
		t.Fatalf("Key is not stable: %q vs %q", k1, k2)
	}
}

func TestCacheKeyChangesWithPrior(t *testing.T) {
	g, np, ep := diamondGraph(t)
	k1 := Key(g, np, ep)
	np[2] = 0.5
	k2 := Key(g, np, ep)
	if k1 == k2 {
		t.Fatal("expected different keys after changing a node prior")
	}
}

func TestCachePutOverwrites(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "solves.db")
	c, err := OpenCache(dbPath)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	key := "fixed-key"
	if err := c.Put(key, Stats{NodeCount: 1}, solver.BeliefMap{1: 0.5}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(key, Stats{NodeCount: 1}, solver.BeliefMap{1: 0.75}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit after overwrite, ok=%v err=%v", ok, err)
	}
	if got[1] != 0.75 {
		t.Fatalf("expected overwritten value 0.75, got %v", got[1])
	}
}
