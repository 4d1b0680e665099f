// Package export renders a diagnostic snapshot of one AncestorGroup: its
// top-forks, the join's influenced parents, and the join itself, laid out
// top-to-bottom and annotated with each node's solved belief. This is a
// debugging aid for inspecting why the solver grouped a join's parents the
// way it did — it is not a full-graph visualizer.
package export

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"sort"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"

	"github.com/reachgraph/reachgraph/pkg/reach/diamond"
	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
)

const (
	colWidth   = 140
	rowHeight  = 90
	nodeRadius = 24
	margin     = 40
)

// layout assigns each node in the group a row (0 = top-forks, 1 = influenced
// parents, 2 = join) and a column within that row, sorted by NodeID for
// determinism.
type layout struct {
	rows   [3][]graph.NodeID
	col    map[graph.NodeID]int
	row    map[graph.NodeID]int
	width  float64
	height float64
}

func buildLayout(group diamond.AncestorGroup, j graph.NodeID) layout {
	forks := append([]graph.NodeID(nil), group.TopNodes...)
	parents := append([]graph.NodeID(nil), group.InfluencedParents...)
	sort.Slice(forks, func(i, k int) bool { return forks[i] < forks[k] })
	sort.Slice(parents, func(i, k int) bool { return parents[i] < parents[k] })

	l := layout{col: map[graph.NodeID]int{}, row: map[graph.NodeID]int{}}
	l.rows[0] = forks
	l.rows[1] = parents
	l.rows[2] = []graph.NodeID{j}

	maxCols := 1
	for r, nodes := range l.rows {
		for c, n := range nodes {
			l.col[n] = c
			l.row[n] = r
		}
		if len(nodes) > maxCols {
			maxCols = len(nodes)
		}
	}
	l.width = float64(maxCols)*colWidth + 2*margin
	l.height = 3*rowHeight + 2*margin
	return l
}

func (l layout) center(n graph.NodeID) (x, y float64) {
	rowNodes := l.rows[l.row[n]]
	rowWidth := float64(len(rowNodes)) * colWidth
	offset := (l.width - rowWidth) / 2
	x = offset + float64(l.col[n])*colWidth + colWidth/2
	y = margin + float64(l.row[n])*rowHeight + rowHeight/2
	return x, y
}

func edgesOf(group diamond.AncestorGroup, j graph.NodeID) []graph.Edge {
	var es []graph.Edge
	for _, f := range group.TopNodes {
		for _, p := range group.InfluencedParents {
			es = append(es, graph.Edge{From: f, To: p})
		}
	}
	for _, p := range group.InfluencedParents {
		es = append(es, graph.Edge{From: p, To: j})
	}
	return es
}

// beliefStroke color-bands an edge by the belief of its upstream endpoint:
// cool teal (high confidence) through yellow to warm orange (low confidence).
func beliefStroke(p float64) string {
	switch {
	case p >= 0.75:
		return "#2a9d8f"
	case p >= 0.4:
		return "#e9c46a"
	default:
		return "#e76f51"
	}
}

func beliefRGBA(p float64) color.RGBA {
	switch {
	case p >= 0.75:
		return color.RGBA{R: 0x2a, G: 0x9d, B: 0x8f, A: 0xff}
	case p >= 0.4:
		return color.RGBA{R: 0xe9, G: 0xc4, B: 0x6a, A: 0xff}
	default:
		return color.RGBA{R: 0xe7, G: 0x6f, B: 0x51, A: 0xff}
	}
}

// RenderDiamond writes an SVG diagram of group (one of j's AncestorGroups) to
// w: top-forks on the top row, the group's influenced parents in the middle,
// j on the bottom. Each edge is colored by the belief of its upstream
// endpoint, so a reader can see at a glance which path into the join carries
// the most probability mass. labels resolves a NodeID to its display name;
// callers with no naming scheme can pass a function that formats the raw id.
func RenderDiamond(w io.Writer, j graph.NodeID, group diamond.AncestorGroup, beliefs solver.BeliefMap, labels func(graph.NodeID) string) error {
	l := buildLayout(group, j)
	canvas := svg.New(w)
	canvas.Start(int(l.width), int(l.height))
	defer canvas.End()

	canvas.Rect(0, 0, int(l.width), int(l.height), "fill:white")

	for _, e := range edgesOf(group, j) {
		x1, y1 := l.center(e.From)
		x2, y2 := l.center(e.To)
		stroke := beliefStroke(beliefs[e.From])
		canvas.Line(int(x1), int(y1), int(x2), int(y2), fmt.Sprintf("stroke:%s;stroke-width:2.5", stroke))
	}

	for r := range l.rows {
		for _, n := range l.rows[r] {
			x, y := l.center(n)
			fill := "fill:#a8d5ba"
			if r == 2 {
				fill = "fill:#f4a261"
			} else if r == 0 {
				fill = "fill:#8ecae6"
			}
			canvas.Circle(int(x), int(y), nodeRadius, fill+";stroke:#333333;stroke-width:1.5")
			canvas.Text(int(x), int(y), labels(n), "text-anchor:middle;font-family:sans-serif;font-size:13px")
			canvas.Text(int(x), int(y)+16, fmt.Sprintf("%.3f", beliefs[n]), "text-anchor:middle;font-family:sans-serif;font-size:10px;fill:#555555")
		}
	}

	return nil
}

// RenderDiamondPNG is a rasterized variant of RenderDiamond for callers that
// want a bitmap (e.g. pasting into a chat message) instead of a vector image.
func RenderDiamondPNG(w io.Writer, j graph.NodeID, group diamond.AncestorGroup, beliefs solver.BeliefMap, labels func(graph.NodeID) string) error {
	l := buildLayout(group, j)
	dc := gg.NewContext(int(l.width), int(l.height))
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetLineWidth(2.5)
	for _, e := range edgesOf(group, j) {
		x1, y1 := l.center(e.From)
		x2, y2 := l.center(e.To)
		dc.SetColor(beliefRGBA(beliefs[e.From]))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	for r := range l.rows {
		fill := color.RGBA{R: 0xa8, G: 0xd5, B: 0xba, A: 0xff}
		if r == 2 {
			fill = color.RGBA{R: 0xf4, G: 0xa2, B: 0x61, A: 0xff}
		} else if r == 0 {
			fill = color.RGBA{R: 0x8e, G: 0xca, B: 0xe6, A: 0xff}
		}
		for _, n := range l.rows[r] {
			x, y := l.center(n)
			dc.SetColor(fill)
			dc.DrawCircle(x, y, nodeRadius)
			dc.Fill()
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(labels(n), x, y-4, 0.5, 0.5)
			dc.DrawStringAnchored(fmt.Sprintf("%.3f", beliefs[n]), x, y+12, 0.5, 0.5)
		}
	}

	return png.Encode(w, dc.Image())
}
