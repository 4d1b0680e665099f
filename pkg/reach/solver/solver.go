// Package solver implements the Reachability Solver: a layered belief
// update that recursively re-solves a conditioned sub-DAG at every
// diamond-bearing join to produce an exact marginal.
package solver

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/reachgraph/reachgraph/pkg/reach/belief"
	"github.com/reachgraph/reachgraph/pkg/reach/diamond"
	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/topology"
	"github.com/reachgraph/reachgraph/pkg/reach/validate"
)

// BeliefMap is the solver's output: the probability that each node is
// reached, under the graph's probabilistic model.
type BeliefMap map[graph.NodeID]float64

// Solve is the engine's top-level entry point. It builds the topology and
// diamond structures, validates the input, and solves. It is a pure
// function of its inputs: no I/O, no global state.
func Solve(ctx context.Context, g *graph.Graph, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64) (BeliefMap, error) {
	topo, err := topology.Analyze(g)
	if err != nil {
		return nil, err
	}
	diamonds := diamond.Identify(g, topo)
	if err := validate.Validate(g, topo, nodePrior, edgePrior); err != nil {
		return nil, err
	}
	return solve(ctx, g, topo, diamonds, nodePrior, edgePrior)
}

// solve runs the layered traversal without re-validating; used both by the
// public Solve and by recursive diamond sub-solves, whose sub-DAGs are
// consistent by construction (§4.6: the Validator does not run on them).
func solve(ctx context.Context, g *graph.Graph, topo *topology.Topology, diamonds map[graph.NodeID]diamond.GroupedDiamond, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64) (BeliefMap, error) {
	out := make(BeliefMap, g.NodeCount())

	for _, layer := range topo.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results := make([]float64, len(layer))
		grp, gctx := errgroup.WithContext(ctx)
		for i, n := range layer {
			i, n := i, n
			grp.Go(func() error {
				v, err := solveNode(gctx, n, g, topo, diamonds, nodePrior, edgePrior, out)
				if err != nil {
					return err
				}
				results[i] = v
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			return nil, err
		}
		for i, n := range layer {
			out[n] = results[i]
		}
	}

	return out, nil
}

func solveNode(ctx context.Context, n graph.NodeID, g *graph.Graph, topo *topology.Topology, diamonds map[graph.NodeID]diamond.GroupedDiamond, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64, belowBelief BeliefMap) (float64, error) {
	if g.InDegree(n) == 0 {
		return nodePrior[n], nil
	}

	np := nodePrior[n]
	if np == 0 {
		// B[v] = nodePrior(v) * upstream is 0 regardless of upstream; no
		// need to pay for sub-solves whose result would only be discarded.
		return 0, nil
	}

	gd, isJoin := diamonds[n]

	var contributions []belief.Contribution
	if isJoin && len(gd.Groups) > 0 {
		// Groups whose InfluencedParents overlap (nested diamonds) both
		// already price in the shared parents' reachability; combining
		// them by inclusion-exclusion would double-count that overlap, so
		// merge overlapping groups before solving.
		for _, grp := range mergeOverlappingGroups(gd.Groups) {
			if allDeterministic(grp.TopNodes, nodePrior) {
				// Top-forks already pinned to 0/1 by an enclosing sub-solve
				// (or by the input itself): nothing left to branch on, so
				// fold the parents in directly instead of recursing into
				// another sub-solve on an identical, non-shrinking sub-DAG.
				for _, p := range grp.InfluencedParents {
					contributions = append(contributions, plainContribution(p, n, edgePrior, belowBelief))
				}
				continue
			}
			gb, err := solveGroup(ctx, grp, n, g, topo, nodePrior, edgePrior, belowBelief)
			if err != nil {
				return 0, err
			}
			// gb already has nodePrior(n) folded in by the recursive solve
			// that produced it (n is an ordinary non-source sub-node of its
			// own sub-DAG). Normalize back to the pre-multiply scale so it
			// combines consistently with the plain per-parent contributions
			// below, which are not yet scaled by nodePrior(n); the final
			// multiply happens once, after combining, same as §4.4.
			contributions = append(contributions, belief.Contribution{
				P:                gb / np,
				FromConditioning: true,
			})
		}
		for _, p := range gd.NonDiamondParents {
			contributions = append(contributions, plainContribution(p, n, edgePrior, belowBelief))
		}
	} else {
		for _, p := range g.In(n) {
			contributions = append(contributions, plainContribution(p, n, edgePrior, belowBelief))
		}
	}

	upstream := belief.CombineContributions(contributions)
	return belief.Clamp(np * upstream), nil
}

func plainContribution(p, n graph.NodeID, edgePrior map[graph.Edge]float64, belowBelief BeliefMap) belief.Contribution {
	ep := edgePrior[graph.Edge{From: p, To: n}]
	return belief.Contribution{P: belowBelief[p] * ep, FromConditioning: false}
}

// allDeterministic reports whether every fork in forks already has a pinned
// (0 or 1) prior in nodePrior, i.e. there is no residual uncertainty left to
// condition on.
func allDeterministic(forks []graph.NodeID, nodePrior map[graph.NodeID]float64) bool {
	for _, f := range forks {
		if p := nodePrior[f]; p != 0 && p != 1 {
			return false
		}
	}
	return true
}

// mergeOverlappingGroups unions any AncestorGroups whose InfluencedParents
// sets intersect, via connected components over shared parents. diamond.Identify
// groups by exact-identity of influenced-parent set, so a nested diamond (one
// fork's influenced set a strict superset of another's, as in S6) surfaces as
// two distinct groups that still share parents; solving them independently
// would price those shared parents in twice.
func mergeOverlappingGroups(groups []diamond.AncestorGroup) []diamond.AncestorGroup {
	if len(groups) <= 1 {
		return groups
	}

	parent := make([]int, len(groups))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		if ra, rb := find(a), find(b); ra != rb {
			parent[ra] = rb
		}
	}

	parentSets := make([]map[graph.NodeID]struct{}, len(groups))
	for i, grp := range groups {
		s := make(map[graph.NodeID]struct{}, len(grp.InfluencedParents))
		for _, p := range grp.InfluencedParents {
			s[p] = struct{}{}
		}
		parentSets[i] = s
	}
	for i := range groups {
		for k := i + 1; k < len(groups); k++ {
			if find(i) == find(k) {
				continue
			}
			for p := range parentSets[i] {
				if _, shared := parentSets[k][p]; shared {
					union(i, k)
					break
				}
			}
		}
	}

	byRoot := make(map[int][]int)
	for i := range groups {
		r := find(i)
		byRoot[r] = append(byRoot[r], i)
	}
	var roots []int
	for r := range byRoot {
		roots = append(roots, r)
	}
	sort.Ints(roots)

	merged := make([]diamond.AncestorGroup, 0, len(roots))
	for _, r := range roots {
		members := byRoot[r]
		if len(members) == 1 {
			merged = append(merged, groups[members[0]])
			continue
		}
		ancestors := make(map[graph.NodeID]struct{})
		tops := make(map[graph.NodeID]struct{})
		parents := make(map[graph.NodeID]struct{})
		for _, idx := range members {
			for _, a := range groups[idx].Ancestors {
				ancestors[a] = struct{}{}
			}
			for _, t := range groups[idx].TopNodes {
				tops[t] = struct{}{}
			}
			for _, p := range groups[idx].InfluencedParents {
				parents[p] = struct{}{}
			}
		}
		merged = append(merged, diamond.AncestorGroup{
			Ancestors:         sortedNodeIDs(ancestors),
			InfluencedParents: sortedNodeIDs(parents),
			TopNodes:          sortedNodeIDs(tops),
		})
	}
	return merged
}

func sortedNodeIDs(s map[graph.NodeID]struct{}) []graph.NodeID {
	out := make([]graph.NodeID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, k int) bool { return out[i] < out[k] })
	return out
}

// solveGroup computes one AncestorGroup's contribution to join j by
// conditioning on the joint state of its top-forks: §4.5's diamond sub-solve,
// generalized from a single top-fork to the 2^m joint-state enumeration that
// exact multi-top-fork decomposition requires (see SPEC_FULL.md §9.1).
func solveGroup(ctx context.Context, grp diamond.AncestorGroup, j graph.NodeID, g *graph.Graph, topo *topology.Topology, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64, outerBelief BeliefMap) (float64, error) {
	subG, baseNodePrior, subEdgePrior := buildSubDAG(grp, j, g, topo, nodePrior, edgePrior, outerBelief)

	subTopo, err := topology.Analyze(subG)
	if err != nil {
		// Unreachable on well-formed input: a sub-DAG of a DAG is acyclic.
		return 0, err
	}
	subDiamonds := diamond.Identify(subG, subTopo)

	forks := append([]graph.NodeID(nil), grp.TopNodes...)
	sort.Slice(forks, func(i, k int) bool { return forks[i] < forks[k] })
	m := len(forks)

	total := 0.0
	for state := 0; state < (1 << uint(m)); state++ {
		weight := 1.0
		np := make(map[graph.NodeID]float64, len(baseNodePrior))
		for k, v := range baseNodePrior {
			np[k] = v
		}
		for i, f := range forks {
			bf := outerBelief[f]
			if state&(1<<uint(i)) != 0 {
				np[f] = 1.0
				weight *= bf
			} else {
				np[f] = 0.0
				weight *= 1 - bf
			}
		}
		if weight == 0 {
			continue
		}
		sub, err := solve(ctx, subG, subTopo, subDiamonds, np, subEdgePrior)
		if err != nil {
			return 0, err
		}
		total += weight * sub[j]
	}

	return belief.Clamp(total), nil
}

// buildSubDAG constructs D(f₁..fₘ, j, G) per §4.3, generalized to a group's
// full top-fork set: the relevant-node closure, augmented external sources
// frozen at their already-computed outer belief, and the induced sub-edges
// (never landing back on a top-fork).
func buildSubDAG(grp diamond.AncestorGroup, j graph.NodeID, g *graph.Graph, topo *topology.Topology, nodePrior map[graph.NodeID]float64, edgePrior map[graph.Edge]float64, outerBelief BeliefMap) (*graph.Graph, map[graph.NodeID]float64, map[graph.Edge]float64) {
	relevant := make(map[graph.NodeID]struct{})
	relevant[j] = struct{}{}
	for _, f := range grp.TopNodes {
		relevant[f] = struct{}{}
	}
	for _, p := range grp.InfluencedParents {
		relevant[p] = struct{}{}
		for _, f := range grp.TopNodes {
			for d := range topo.Descendants[f] {
				if _, isAncestorOfP := topo.Ancestors[p][d]; isAncestorOfP {
					relevant[d] = struct{}{}
				}
			}
		}
	}

	isTopFork := make(map[graph.NodeID]struct{}, len(grp.TopNodes))
	for _, f := range grp.TopNodes {
		isTopFork[f] = struct{}{}
	}

	var relevantOrdered []graph.NodeID
	for v := range relevant {
		relevantOrdered = append(relevantOrdered, v)
	}
	sort.Slice(relevantOrdered, func(i, k int) bool { return relevantOrdered[i] < relevantOrdered[k] })

	subG := graph.New()
	for _, v := range relevantOrdered {
		subG.AddNode(v)
	}

	subNodePrior := make(map[graph.NodeID]float64)
	subEdgePrior := make(map[graph.Edge]float64)
	augmented := make(map[graph.NodeID]struct{})

	for _, v := range relevantOrdered {
		if _, isTop := isTopFork[v]; isTop {
			continue // the branch loop assigns top-fork priors directly
		}
		parents := g.In(v)
		if v == j {
			// j's in-edges within this group's sub-DAG are exactly the
			// group's influenced parents: the other real parents of j
			// (non-diamond parents, or parents belonging to a different
			// AncestorGroup) are this group's concern not at all — they are
			// combined back in by the outer solve's own inclusion-exclusion
			// across groups, not re-summed inside a single group's sub-solve.
			parents = grp.InfluencedParents
		}
		for _, p := range parents {
			if _, inside := relevant[p]; !inside {
				if _, already := augmented[p]; !already {
					augmented[p] = struct{}{}
					subG.AddNode(p)
					subNodePrior[p] = outerBelief[p]
				}
			}
			_ = subG.AddEdge(p, v)
			e := graph.Edge{From: p, To: v}
			subEdgePrior[e] = edgePrior[e]
		}
	}

	for _, v := range relevantOrdered {
		if _, isTop := isTopFork[v]; isTop {
			continue
		}
		if _, isAug := augmented[v]; isAug {
			continue
		}
		subNodePrior[v] = nodePrior[v]
	}

	return subG, subNodePrior, subEdgePrior
}
