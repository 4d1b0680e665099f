// Package cache persists solved BeliefMaps keyed by a content hash of their
// inputs, so that re-solving an unchanged fixture is a lookup instead of a
// recomputation.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
)

// Cache handles solve-result persistence.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at the given path.
func OpenCache(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return c, nil
}

// Close closes the cache's database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS solves (
		fixture_hash TEXT PRIMARY KEY,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		beliefs_json TEXT NOT NULL,
		computed_at DATETIME NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Key deterministically hashes a graph's edges and priors, so that two
// identical inputs always produce the same cache key regardless of map
// iteration order.
func Key(g *graph.Graph, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64) string {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, k int) bool { return nodes[i] < nodes[k] })
	edges := g.Edges()
	sort.Slice(edges, func(i, k int) bool {
		if edges[i].From != edges[k].From {
			return edges[i].From < edges[k].From
		}
		return edges[i].To < edges[k].To
	})

	h := sha256.New()
	for _, n := range nodes {
		fmt.Fprintf(h, "n:%d:%.17g\n", n, nodePrior[n])
	}
	for _, e := range edges {
		fmt.Fprintf(h, "e:%d:%d:%.17g\n", e.From, e.To, edgePrior[e])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a previously stored BeliefMap for fixtureHash, or (nil, false)
// on a miss.
func (c *Cache) Get(fixtureHash string) (solver.BeliefMap, bool, error) {
	var beliefsJSON string
	err := c.db.QueryRow(`SELECT beliefs_json FROM solves WHERE fixture_hash = ?`, fixtureHash).Scan(&beliefsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: query: %w", err)
	}

	var wire map[string]float64
	if err := json.Unmarshal([]byte(beliefsJSON), &wire); err != nil {
		return nil, false, fmt.Errorf("cache: decode stored belief map: %w", err)
	}

	bm := make(solver.BeliefMap, len(wire))
	for k, v := range wire {
		var id graph.NodeID
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return nil, false, fmt.Errorf("cache: corrupt node id %q: %w", k, err)
		}
		bm[id] = v
	}
	return bm, true, nil
}

// Stats records a fixture's size alongside its cached result, so the row
// can be inspected without decoding beliefs_json.
type Stats struct {
	NodeCount int
	EdgeCount int
}

// Put stores belief under fixtureHash, overwriting any existing entry.
func (c *Cache) Put(fixtureHash string, stats Stats, belief solver.BeliefMap) error {
	wire := make(map[string]float64, len(belief))
	for id, p := range belief {
		wire[fmt.Sprintf("%d", id)] = p
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("cache: encode belief map: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO solves (fixture_hash, node_count, edge_count, beliefs_json, computed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fixture_hash) DO UPDATE SET
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			beliefs_json = excluded.beliefs_json,
			computed_at = excluded.computed_at
	`, fixtureHash, stats.NodeCount, stats.EdgeCount, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}
