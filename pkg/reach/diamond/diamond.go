// Package diamond implements the Diamond Identifier: for each join, grouping
// its parents by exact shared-fork-ancestry signature.
package diamond

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/topology"
)

// AncestorGroup is a maximal set of forks that all influence exactly the
// same subset of a join's parents.
type AncestorGroup struct {
	Ancestors         []graph.NodeID
	InfluencedParents []graph.NodeID
	TopNodes          []graph.NodeID
}

// GroupedDiamond is the per-join output: an ordered list of AncestorGroups
// plus the residual parents not covered by any of them.
type GroupedDiamond struct {
	Groups            []AncestorGroup
	NonDiamondParents []graph.NodeID
}

// Identify computes a GroupedDiamond for every join in t (every node with
// in-degree >= 2). Joins with no shared-fork parents get an empty Groups
// slice and all of their parents in NonDiamondParents.
//
// A shared fork is any out-degree->=2 node, regardless of whether it is
// itself a source: scenario S1 (the spec's own worked diamond-of-four
// example) conditions on fork 1, which is simultaneously a source, so the
// grouping step cannot exclude source forks the way a literal reading of
// "ForkSet \ SourceSet" would suggest — see DESIGN.md.
func Identify(g *graph.Graph, t *topology.Topology) map[graph.NodeID]GroupedDiamond {
	sources := make(map[graph.NodeID]struct{})
	for _, s := range g.Sources() {
		sources[s] = struct{}{}
	}

	result := make(map[graph.NodeID]GroupedDiamond)
	for j := range t.Joins {
		result[j] = identifyOne(g, t, sources, j)
	}
	return result
}

func identifyOne(g *graph.Graph, t *topology.Topology, sources map[graph.NodeID]struct{}, j graph.NodeID) GroupedDiamond {
	parents := g.In(j)

	var P []graph.NodeID
	var pureSourceParents []graph.NodeID
	for _, p := range parents {
		if _, isSrc := sources[p]; isSrc {
			pureSourceParents = append(pureSourceParents, p)
		} else {
			P = append(P, p)
		}
	}

	// influenced[a] = parents in P whose ancestry includes fork a.
	influenced := make(map[graph.NodeID][]graph.NodeID)
	for _, p := range P {
		for a := range t.Ancestors[p] {
			if !t.IsFork(a) {
				continue
			}
			influenced[a] = append(influenced[a], p)
		}
	}

	// Keep only forks shared by >= 2 parents, then group by identical
	// influenced-parent set (exact-identity grouping, never merged).
	byKey := make(map[string][]graph.NodeID) // influenced-set key -> forks
	keyToParents := make(map[string][]graph.NodeID)
	for a, ps := range influenced {
		if len(ps) < 2 {
			continue
		}
		sort.Slice(ps, func(i, k int) bool { return ps[i] < ps[k] })
		key := setKey(ps)
		byKey[key] = append(byKey[key], a)
		keyToParents[key] = ps
	}

	var keys []string
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	covered := make(map[graph.NodeID]struct{})
	var groups []AncestorGroup
	for _, key := range keys {
		forks := byKey[key]
		sort.Slice(forks, func(i, k int) bool { return forks[i] < forks[k] })

		maxLayer := -1
		for _, a := range forks {
			if l := t.LayerOf[a]; l > maxLayer {
				maxLayer = l
			}
		}
		var top []graph.NodeID
		for _, a := range forks {
			if t.LayerOf[a] == maxLayer {
				top = append(top, a)
			}
		}

		influencedParents := keyToParents[key]
		for _, p := range influencedParents {
			covered[p] = struct{}{}
		}

		groups = append(groups, AncestorGroup{
			Ancestors:         forks,
			InfluencedParents: influencedParents,
			TopNodes:          top,
		})
	}

	var nonDiamond []graph.NodeID
	for _, p := range P {
		if _, ok := covered[p]; !ok {
			nonDiamond = append(nonDiamond, p)
		}
	}
	nonDiamond = append(nonDiamond, pureSourceParents...)
	sort.Slice(nonDiamond, func(i, k int) bool { return nonDiamond[i] < nonDiamond[k] })

	return GroupedDiamond{Groups: groups, NonDiamondParents: nonDiamond}
}

func setKey(ids []graph.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
