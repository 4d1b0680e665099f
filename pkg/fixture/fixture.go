// Package fixture implements the engine's JSON wire codec: the one concrete
// adjacency representation this repository ships, translating between
// named nodes on the wire and the engine's dense NodeID space. CSV/adjacency
// ingestion from arbitrary external formats remains explicitly out of scope;
// this is just enough format for fixtures, the cache, and the CLI to
// exchange graphs.
package fixture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/reacherr"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
)

// NodePriors maps each decoded node to its prior probability.
type NodePriors map[graph.NodeID]float64

// EdgePriors maps each decoded edge to its conditional activation probability.
type EdgePriors map[graph.Edge]float64

// IDMap is the fixture codec's local string<->NodeID mapping. The engine
// package itself never sees these names.
type IDMap struct {
	NameOf map[graph.NodeID]string
	IDOf   map[string]graph.NodeID
}

type wireEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type wireFixture struct {
	Nodes      []string           `json:"nodes"`
	NodePriors map[string]float64 `json:"node_priors"`
	Edges      []wireEdge         `json:"edges"`
	EdgePriors map[string]float64 `json:"edge_priors"`
}

// DecodeFile opens path and decodes it as a fixture.
func DecodeFile(path string) (*graph.Graph, NodePriors, EdgePriors, IDMap, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, nil, IDMap{}, fmt.Errorf("fixture: no such file %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, IDMap{}, fmt.Errorf("fixture: failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a GraphFixture JSON document into engine-native types.
// NodeIds are assigned dense IDs in the order they appear in the "nodes"
// array, so decoding the same fixture twice always produces the same
// NodeID assignment.
func Decode(r io.Reader) (*graph.Graph, NodePriors, EdgePriors, IDMap, error) {
	buffered := bufio.NewReader(r)
	raw, err := io.ReadAll(buffered)
	if err != nil {
		return nil, nil, nil, IDMap{}, fmt.Errorf("fixture: failed to read input: %w", err)
	}
	raw = stripBOM(raw)

	var wf wireFixture
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: failed to parse JSON: %w", err))
	}
	if len(wf.Nodes) == 0 {
		return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: no nodes present"))
	}

	idOf := make(map[string]graph.NodeID, len(wf.Nodes))
	nameOf := make(map[graph.NodeID]string, len(wf.Nodes))
	g := graph.New()
	nodePrior := make(NodePriors, len(wf.Nodes))

	for i, name := range wf.Nodes {
		if name == "" {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: node with empty id"))
		}
		if _, dup := idOf[name]; dup {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: duplicate node id %q", name))
		}
		id := graph.NodeID(i + 1)
		idOf[name] = id
		nameOf[id] = name
		g.AddNode(id)

		p, ok := wf.NodePriors[name]
		if !ok {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: missing node_priors entry for %q", name))
		}
		nodePrior[id] = p
	}

	edgePrior := make(EdgePriors, len(wf.Edges))
	for _, we := range wf.Edges {
		from, ok := idOf[we.From]
		if !ok {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: edge references unknown node %q", we.From))
		}
		to, ok := idOf[we.To]
		if !ok {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: edge references unknown node %q", we.To))
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: %w", err))
		}

		key := we.From + "->" + we.To
		p, ok := wf.EdgePriors[key]
		if !ok {
			return nil, nil, nil, IDMap{}, reacherr.Invalid(fmt.Errorf("fixture: missing edge_priors entry for %q", key))
		}
		edgePrior[graph.Edge{From: from, To: to}] = p
	}

	return g, nodePrior, edgePrior, IDMap{NameOf: nameOf, IDOf: idOf}, nil
}

// Encode writes a {"beliefs": {"<name>": <float>, ...}} document, the shape
// the demo CLI and golden-file tests consume.
func Encode(w io.Writer, ids IDMap, beliefs solver.BeliefMap) error {
	out := struct {
		Beliefs map[string]float64 `json:"beliefs"`
	}{Beliefs: make(map[string]float64, len(beliefs))}

	for id, p := range beliefs {
		name, ok := ids.NameOf[id]
		if !ok {
			name = fmt.Sprintf("N%d", id)
		}
		out.Beliefs[name] = p
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("fixture: failed to encode beliefs: %w", err)
	}
	return nil
}

func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

// ParseEdgeKey splits an "A->B" edge_priors key into its endpoint names.
// Exposed for callers (and tests) that need to round-trip a key outside
// of Decode's own parsing.
func ParseEdgeKey(key string) (from, to string, ok bool) {
	parts := strings.SplitN(key, "->", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
