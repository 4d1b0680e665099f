package tui

import (
	"fmt"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
)

// NodeItem wraps a solved node so it can sit in a bubbles list.Model.
type NodeItem struct {
	ID        graph.NodeID
	Name      string
	Belief    float64
	IsJoin    bool
	IsFork    bool
	IsDiamond bool
}

func (n NodeItem) Title() string {
	return n.Name
}

func (n NodeItem) Description() string {
	role := ""
	switch {
	case n.IsDiamond:
		role = "diamond join"
	case n.IsJoin:
		role = "join"
	case n.IsFork:
		role = "fork"
	}
	if role == "" {
		return fmt.Sprintf("B = %.6f", n.Belief)
	}
	return fmt.Sprintf("B = %.6f • %s", n.Belief, role)
}

func (n NodeItem) FilterValue() string {
	return n.Name
}
