package diamond

import (
	"testing"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/topology"
)

func build(t *testing.T, edges []graph.Edge) (*graph.Graph, *topology.Topology) {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	topo, err := topology.Analyze(g)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return g, topo
}

func TestIdentifyDiamondOfFour(t *testing.T) {
	g, topo := build(t, []graph.Edge{{1, 2}, {1, 3}, {2, 4}, {3, 4}})
	gd := Identify(g, topo)[4]

	if len(gd.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(gd.Groups))
	}
	grp := gd.Groups[0]
	if len(grp.Ancestors) != 1 || grp.Ancestors[0] != 1 {
		t.Fatalf("ancestors = %v, want [1]", grp.Ancestors)
	}
	if len(grp.InfluencedParents) != 2 || grp.InfluencedParents[0] != 2 || grp.InfluencedParents[1] != 3 {
		t.Fatalf("influenced parents = %v, want [2 3]", grp.InfluencedParents)
	}
	if len(grp.TopNodes) != 1 || grp.TopNodes[0] != 1 {
		t.Fatalf("top nodes = %v, want [1]", grp.TopNodes)
	}
	if len(gd.NonDiamondParents) != 0 {
		t.Fatalf("non-diamond parents = %v, want none", gd.NonDiamondParents)
	}
}

func TestIdentifyNoSharedAncestry(t *testing.T) {
	g, topo := build(t, []graph.Edge{{1, 3}, {2, 3}})
	gd := Identify(g, topo)[3]

	if len(gd.Groups) != 0 {
		t.Fatalf("groups = %v, want none", gd.Groups)
	}
	if len(gd.NonDiamondParents) != 2 {
		t.Fatalf("non-diamond parents = %v, want [1 2]", gd.NonDiamondParents)
	}
}

func TestIdentifyDualForkDiamond(t *testing.T) {
	// Forks 1 and 2 both feed A(=3) and B(=4), which join at J(=5).
	g, topo := build(t, []graph.Edge{
		{1, 3}, {1, 4}, {2, 3}, {2, 4}, {3, 5}, {4, 5},
	})
	gd := Identify(g, topo)[5]

	if len(gd.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(gd.Groups))
	}
	grp := gd.Groups[0]
	if len(grp.Ancestors) != 2 || grp.Ancestors[0] != 1 || grp.Ancestors[1] != 2 {
		t.Fatalf("ancestors = %v, want [1 2]", grp.Ancestors)
	}
	if len(grp.TopNodes) != 2 {
		t.Fatalf("top nodes = %v, want both forks (same layer)", grp.TopNodes)
	}
}
