package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NodeDelegate renders one NodeItem row: id, belief (color-banded), a
// diamond/join/fork marker, and the node name, matching the teacher's column-composition delegate
// shape in pkg/ui/delegate.go.
type NodeDelegate struct{}

func (d NodeDelegate) Height() int   { return 1 }
func (d NodeDelegate) Spacing() int  { return 0 }
func (d NodeDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d NodeDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	it, ok := listItem.(NodeItem)
	if !ok {
		return
	}

	base := ItemStyle
	if index == m.Index() {
		base = SelectedItemStyle
	}

	id := ColIDStyle.Render(fmt.Sprintf("N%d", it.ID))
	belief := ColBeliefStyle.Foreground(beliefColor(it.Belief)).Render(fmt.Sprintf("%.6f", it.Belief))

	marker := " "
	if it.IsDiamond {
		marker = lipgloss.NewStyle().Foreground(ColorDiamond).Render("◆")
	} else if it.IsJoin {
		marker = lipgloss.NewStyle().Foreground(ColorMuted).Render("⋈")
	} else if it.IsFork {
		marker = lipgloss.NewStyle().Foreground(ColorMuted).Render("⑂")
	}

	row := lipgloss.JoinHorizontal(lipgloss.Left, id, belief, " ", marker, " ", it.Name)
	fmt.Fprint(w, base.Render(row))
}
