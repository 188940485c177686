package bsp

import (
	"errors"
	"fmt"
)

// Error kinds returned by tree and binding operations. Use errors.Is to test
// for them; the concrete error is usually an *OpError.
var (
	// ErrInvalidOperation reports a precondition failure, such as splitting
	// an internal node or a ratio outside the open interval (0,1).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNotBound reports a window that has no current tree binding.
	ErrNotBound = errors.New("window not bound")

	// ErrAllocationFailure reports that node storage is exhausted. The tree
	// is left unchanged and only the attempted request fails.
	ErrAllocationFailure = errors.New("node storage exhausted")
)

// OpError records the failed operation and the node it was applied to.
type OpError struct {
	Op     string
	Node   NodeID
	Reason string
	Err    error
}

func (e *OpError) Error() string {
	msg := fmt.Sprintf("bsp %s", e.Op)
	if e.Node != None {
		msg += fmt.Sprintf(" node %d", e.Node)
	}
	msg += ": " + e.Err.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns the error kind for errors.Is compatibility.
func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, node NodeID, kind error, format string, args ...any) error {
	return &OpError{Op: op, Node: node, Reason: fmt.Sprintf(format, args...), Err: kind}
}

// InconsistencyError is the panic value raised when cached geometry
// violates the partition invariant. It indicates a defect, not a user error.
type InconsistencyError struct {
	Node  NodeID
	Point Point
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("bsp: geometry inconsistent at node %d: point (%d,%d) is inside the node but in neither child",
		e.Node, e.Point.X, e.Point.Y)
}
