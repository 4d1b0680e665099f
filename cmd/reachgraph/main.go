// Command reachgraph solves exact reachability probabilities on
// probabilistic DAGs, with diamond-conditioning for shared ancestry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reachgraph/reachgraph/pkg/cache"
	"github.com/reachgraph/reachgraph/pkg/export"
	"github.com/reachgraph/reachgraph/pkg/fixture"
	"github.com/reachgraph/reachgraph/pkg/reach/diamond"
	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
	"github.com/reachgraph/reachgraph/pkg/reach/topology"
	"github.com/reachgraph/reachgraph/pkg/tui"
	"github.com/reachgraph/reachgraph/pkg/updater"
	"github.com/reachgraph/reachgraph/pkg/version"
	"github.com/reachgraph/reachgraph/pkg/watcher"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	checkForUpdates()

	var err error
	switch os.Args[1] {
	case "solve":
		err = runSolve(os.Args[2:])
	case "explain":
		err = runExplain(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "tui":
		err = runTUI(os.Args[2:])
	case "version":
		fmt.Println(version.Version)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "reachgraph: unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "reachgraph: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: reachgraph <command> [flags]

Commands:
  solve   <fixture.json>           compute exact reachability beliefs
  explain <fixture.json> <nodeID>  render the node's diamond groups as SVG
  watch   <fixture.json>           re-solve on every fixture change
  tui     [fixture.json]           launch the interactive explorer
  version                          print the build version`)
}

type loaded struct {
	graph     *graph.Graph
	nodePrior fixture.NodePriors
	edgePrior fixture.EdgePriors
	ids       fixture.IDMap
}

func loadAndSolve(ctx context.Context, path string, cachePath string) (loaded, solver.BeliefMap, error) {
	g, nodePrior, edgePrior, ids, err := fixture.DecodeFile(path)
	if err != nil {
		return loaded{}, nil, err
	}
	l := loaded{graph: g, nodePrior: nodePrior, edgePrior: edgePrior, ids: ids}

	var c *cache.Cache
	var key string
	if cachePath != "" {
		c, err = cache.OpenCache(cachePath)
		if err != nil {
			return loaded{}, nil, err
		}
		defer c.Close()
		key = cache.Key(g, nodePrior, edgePrior)
		if bm, ok, err := c.Get(key); err == nil && ok {
			return l, bm, nil
		}
	}

	bm, err := solver.Solve(ctx, g, nodePrior, edgePrior)
	if err != nil {
		return loaded{}, nil, err
	}
	if c != nil {
		stats := cache.Stats{NodeCount: g.NodeCount(), EdgeCount: len(g.Edges())}
		if err := c.Put(key, stats, bm); err != nil {
			fmt.Fprintf(os.Stderr, "reachgraph: warning: failed to cache result: %v\n", err)
		}
	}
	return l, bm, nil
}

func runSolve(args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	cachePath := fs.String("cache", "", "path to a SQLite result cache")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: reachgraph solve [--cache path] <fixture.json>")
	}

	l, bm, err := loadAndSolve(context.Background(), fs.Arg(0), *cachePath)
	if err != nil {
		return err
	}

	for _, id := range l.graph.Nodes() {
		fmt.Printf("%s\t%.6f\n", l.ids.NameOf[id], bm[id])
	}
	return nil
}

func runExplain(args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	outDir := fs.String("out", ".", "directory to write diamond SVGs into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: reachgraph explain <fixture.json> <nodeID>")
	}
	nodeName := fs.Arg(1)

	l, bm, err := loadAndSolve(context.Background(), fs.Arg(0), "")
	if err != nil {
		return err
	}

	j, ok := l.ids.IDOf[nodeName]
	if !ok {
		return fmt.Errorf("unknown node %q", nodeName)
	}

	topo, err := topology.Analyze(l.graph)
	if err != nil {
		return err
	}
	diamonds := diamond.Identify(l.graph, topo)
	gd, ok := diamonds[j]
	if !ok || len(gd.Groups) == 0 {
		fmt.Printf("%s has no shared-ancestry diamonds; belief = %.6f\n", nodeName, bm[j])
		return nil
	}

	labels := func(n graph.NodeID) string { return l.ids.NameOf[n] }
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("reachgraph: create output directory: %w", err)
	}
	for i, grp := range gd.Groups {
		outPath := fmt.Sprintf("%s/%s-group-%d.svg", *outDir, nodeName, i+1)
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("reachgraph: create %s: %w", outPath, err)
		}
		err = export.RenderDiamond(f, j, grp, bm, labels)
		f.Close()
		if err != nil {
			return fmt.Errorf("reachgraph: render %s: %w", outPath, err)
		}
		fmt.Printf("wrote %s (top-forks=%v influenced-parents=%v)\n", outPath, grp.TopNodes, grp.InfluencedParents)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cachePath := fs.String("cache", "", "path to a SQLite result cache")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: reachgraph watch [--cache path] <fixture.json>")
	}
	path := fs.Arg(0)

	solveOnce := func() {
		l, bm, err := loadAndSolve(context.Background(), path, *cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reachgraph: solve failed: %v\n", err)
			return
		}
		fmt.Printf("--- re-solved %s at %s ---\n", path, time.Now().Format(time.RFC3339))
		for _, id := range l.graph.Nodes() {
			fmt.Printf("%s\t%.6f\n", l.ids.NameOf[id], bm[id])
		}
	}

	solveOnce()
	w, err := watcher.Watch(path, solveOnce)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Println("watching for changes; press Ctrl+C to stop")
	select {}
}

func runTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := fs.Arg(0)
	if path == "" {
		var err error
		path, err = tui.PromptFixturePath()
		if err != nil {
			return err
		}
	}

	l, bm, err := loadAndSolve(context.Background(), path, "")
	if err != nil {
		return err
	}

	m, err := tui.New(l.graph, l.ids.NameOf, bm)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// checkForUpdates runs once at startup; failures (offline, rate-limited) are
// silent since an update check should never block using the tool.
func checkForUpdates() {
	tag, url, err := updater.CheckForUpdates()
	if err != nil || tag == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "reachgraph: a new version %s is available: %s\n", tag, url)
}
