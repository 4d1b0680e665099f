package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/reachgraph/reachgraph/pkg/reach/diamond"
	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
)

func sampleGroup() (diamond.AncestorGroup, graph.NodeID, solver.BeliefMap) {
	grp := diamond.AncestorGroup{
		Ancestors:         []graph.NodeID{1},
		InfluencedParents: []graph.NodeID{2, 3},
		TopNodes:          []graph.NodeID{1},
	}
	beliefs := solver.BeliefMap{1: 0.9, 2: 0.5, 3: 0.2, 4: 0.83}
	return grp, graph.NodeID(4), beliefs
}

func labelByID(n graph.NodeID) string {
	return fmt.Sprintf("N%d", n)
}

func TestRenderDiamondSVG(t *testing.T) {
	grp, join, beliefs := sampleGroup()
	var buf bytes.Buffer
	if err := RenderDiamond(&buf, join, grp, beliefs, labelByID); err != nil {
		t.Fatalf("RenderDiamond: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("expected SVG output, got: %s", out)
	}
	if !strings.Contains(out, "N4") {
		t.Fatal("expected join label in output")
	}
	if !strings.Contains(out, "0.900") {
		t.Fatal("expected a belief annotation in output")
	}
}

func TestRenderDiamondColorsEdgesByUpstreamBelief(t *testing.T) {
	grp, join, beliefs := sampleGroup()
	var buf bytes.Buffer
	if err := RenderDiamond(&buf, join, grp, beliefs, labelByID); err != nil {
		t.Fatalf("RenderDiamond: %v", err)
	}
	if !strings.Contains(buf.String(), beliefStroke(beliefs[1])) {
		t.Fatal("expected top-fork's belief color to appear on its outgoing edges")
	}
}

func TestRenderDiamondPNG(t *testing.T) {
	grp, join, beliefs := sampleGroup()
	var buf bytes.Buffer
	if err := RenderDiamondPNG(&buf, join, grp, beliefs, labelByID); err != nil {
		t.Fatalf("RenderDiamondPNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PNG output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("output does not look like a PNG")
	}
}
