// Package tui implements the interactive explorer: a node list in NodeID
// order showing each node's belief, a detail pane explaining a selected node's diamond structure, and
// a fuzzy jump-to-node overlay, built from the teacher's bubbletea/bubbles/
// lipgloss list+delegate idiom (pkg/ui) adapted from an issue tracker to a
// belief explorer.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/reachgraph/reachgraph/pkg/reach/diamond"
	"github.com/reachgraph/reachgraph/pkg/reach/graph"
	"github.com/reachgraph/reachgraph/pkg/reach/solver"
	"github.com/reachgraph/reachgraph/pkg/reach/topology"
)

// Model is the top-level bubbletea model for `reachgraph tui`.
type Model struct {
	list     list.Model
	items    []NodeItem
	detail   string
	renderer *glamour.TermRenderer

	g        *graph.Graph
	topo     *topology.Topology
	diamonds map[graph.NodeID]diamond.GroupedDiamond

	jumping   bool
	jumpInput textinput.Model

	width, height int
	statusMsg     string
}

// New builds a Model from a solved graph: g's topology/diamonds are
// recomputed here purely for explanation purposes (the solver no longer
// needs them once BeliefMap exists).
func New(g *graph.Graph, nameOf map[graph.NodeID]string, belief solver.BeliefMap) (Model, error) {
	topo, err := topology.Analyze(g)
	if err != nil {
		return Model{}, err
	}
	diamonds := diamond.Identify(g, topo)

	ids := g.Nodes()
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })

	items := make([]NodeItem, 0, len(ids))
	listItems := make([]list.Item, 0, len(ids))
	for _, id := range ids {
		name := nameOf[id]
		if name == "" {
			name = fmt.Sprintf("N%d", id)
		}
		gd := diamonds[id]
		it := NodeItem{
			ID:        id,
			Name:      name,
			Belief:    belief[id],
			IsFork:    topo.IsFork(id),
			IsJoin:    topo.IsJoin(id),
			IsDiamond: len(gd.Groups) > 0,
		}
		items = append(items, it)
		listItems = append(listItems, it)
	}

	l := list.New(listItems, NodeDelegate{}, 0, 0)
	l.Title = "reachgraph"
	l.SetShowStatusBar(false)

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		renderer = nil
	}

	ti := textinput.New()
	ti.Placeholder = "jump to node…"

	m := Model{
		list:      l,
		items:     items,
		renderer:  renderer,
		jumpInput: ti,
		g:         g,
		topo:      topo,
		diamonds:  diamonds,
	}
	m.refreshDetail()
	return m, nil
}

func (m *Model) refreshDetail() {
	sel, ok := m.list.SelectedItem().(NodeItem)
	if !ok {
		m.detail = ""
		return
	}
	m.detail = explainMarkdown(sel, m.g, m.topo, m.diamonds[sel.ID])
}

func explainMarkdown(it NodeItem, g *graph.Graph, topo *topology.Topology, gd diamond.GroupedDiamond) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", it.Name)
	fmt.Fprintf(&b, "Belief: **%.6f**\n\n", it.Belief)
	fmt.Fprintf(&b, "Parents: %d · Children: %d\n\n", g.InDegree(it.ID), g.OutDegree(it.ID))

	if len(gd.Groups) == 0 {
		fmt.Fprintf(&b, "No shared-ancestry conditioning at this node.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Diamond groups\n\n")
	for i, grp := range gd.Groups {
		fmt.Fprintf(&b, "%d. top-forks `%v`, influenced parents `%v`\n", i+1, grp.TopNodes, grp.InfluencedParents)
	}
	if len(gd.NonDiamondParents) > 0 {
		fmt.Fprintf(&b, "\nNon-diamond parents: `%v`\n", gd.NonDiamondParents)
	}
	return b.String()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		listWidth := m.width * 3 / 5
		m.list.SetSize(listWidth, m.height-2)
		return m, nil

	case tea.KeyMsg:
		if m.jumping {
			switch msg.String() {
			case "esc":
				m.jumping = false
				m.jumpInput.Blur()
				return m, nil
			case "enter":
				if match := m.bestFuzzyMatch(); match >= 0 {
					m.list.Select(match)
				}
				m.jumping = false
				m.jumpInput.Blur()
				m.refreshDetail()
				return m, nil
			}
			var cmd tea.Cmd
			m.jumpInput, cmd = m.jumpInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "g":
			m.jumping = true
			m.jumpInput.SetValue("")
			m.jumpInput.Focus()
			return m, nil
		case "y":
			if sel, ok := m.list.SelectedItem().(NodeItem); ok {
				if err := clipboard.WriteAll(fmt.Sprintf("%.6f", sel.Belief)); err == nil {
					m.statusMsg = fmt.Sprintf("copied B[%s] to clipboard", sel.Name)
				} else {
					m.statusMsg = fmt.Sprintf("clipboard error: %v", err)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail()
	return m, cmd
}

// bestFuzzyMatch ranks items against the jump input using the same
// fuzzy.Find call the teacher's lens selector uses for its own search box.
func (m Model) bestFuzzyMatch() int {
	query := strings.TrimSpace(m.jumpInput.Value())
	if query == "" {
		return -1
	}
	names := make([]string, len(m.items))
	for i, it := range m.items {
		names[i] = it.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return -1
	}
	return matches[0].Index
}

func (m Model) View() string {
	listView := m.list.View()

	detail := m.detail
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(detail); err == nil {
			detail = rendered
		}
	}
	detailView := DetailBorderStyle.Width(m.width - m.width*3/5 - 4).Render(detail)

	body := lipgloss.JoinHorizontal(lipgloss.Top, listView, detailView)

	status := m.statusMsg
	if m.jumping {
		status = "jump: " + m.jumpInput.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, StatusBarStyle.Render(status))
}
