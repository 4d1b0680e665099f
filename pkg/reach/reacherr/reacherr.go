// Package reacherr defines the engine's tagged error kinds. Exactly one is
// ever returned from a Validate or Solve call. The Validator wraps its cause
// in a single InvalidInputError; a CyclicGraphError found during topological
// layering is returned unwrapped.
package reacherr

import (
	"fmt"

	"github.com/reachgraph/reachgraph/pkg/reach/graph"
)

// CyclicGraphError reports a cycle found during topological layering.
type CyclicGraphError struct {
	Cycle []graph.NodeID
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("reach: cyclic graph, example cycle: %v", e.Cycle)
}

// MissingPriorError reports a prior absent for a referenced node or edge.
// Exactly one of Node or Edge is set.
type MissingPriorError struct {
	Node *graph.NodeID
	Edge *graph.Edge
}

func (e *MissingPriorError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("reach: missing node prior for %d", *e.Node)
	}
	return fmt.Sprintf("reach: missing edge prior for %v", *e.Edge)
}

// ProbabilityOutOfRangeError reports a prior outside [0,1].
type ProbabilityOutOfRangeError struct {
	Location string
	Value    float64
}

func (e *ProbabilityOutOfRangeError) Error() string {
	return fmt.Sprintf("reach: probability out of range at %s: %v", e.Location, e.Value)
}

// InconsistentAdjacencyError reports outgoing/incoming indices disagreeing on
// an edge.
type InconsistentAdjacencyError struct {
	Edge      graph.Edge
	Direction string
}

func (e *InconsistentAdjacencyError) Error() string {
	return fmt.Sprintf("reach: inconsistent adjacency for edge %v (%s)", e.Edge, e.Direction)
}

// DisconnectedSourceError reports a declared source with incoming edges, or a
// non-source with none.
type DisconnectedSourceError struct {
	Node graph.NodeID
}

func (e *DisconnectedSourceError) Error() string {
	return fmt.Sprintf("reach: disconnected source mismatch at node %d", e.Node)
}

// DuplicateLayeringError reports a node appearing in multiple iteration
// layers, or missing from all of them.
type DuplicateLayeringError struct {
	Node graph.NodeID
}

func (e *DuplicateLayeringError) Error() string {
	return fmt.Sprintf("reach: node %d appears in multiple (or zero) iteration layers", e.Node)
}

// InvalidInputError is the single error kind the Validator returns, wrapping
// whichever underlying cause tripped first.
type InvalidInputError struct {
	Cause error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("reach: invalid input: %v", e.Cause)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}

// Invalid wraps cause as an InvalidInputError.
func Invalid(cause error) *InvalidInputError {
	return &InvalidInputError{Cause: cause}
}
