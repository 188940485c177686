// Package tiling binds windows to the leaves of a BSP tree. It decides
// where a new window goes, what happens to the tree when a window leaves,
// and how a window moves between tiled and floating.
package tiling

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
)

// HeuristicRatio is the split ratio used when Insert has to make room.
const HeuristicRatio = 0.5

// State is where a window sits in the binding state machine.
type State int

const (
	// Untiled windows have no leaf. Floating windows stay Untiled but keep
	// their binding record so they can be reattached.
	Untiled State = iota
	// Tiled windows occupy exactly one leaf and follow its geometry.
	Tiled
)

func (s State) String() string {
	if s == Tiled {
		return "tiled"
	}
	return "untiled"
}

// FloatPolicy decides what happens to the leaf a window vacates when it
// starts floating.
type FloatPolicy int

const (
	// ReclaimOnFloat collapses the emptied leaf into its parent so the
	// remaining windows grow into the space.
	ReclaimOnFloat FloatPolicy = iota
	// ReserveOnFloat keeps the emptied leaf as a placeholder. The next
	// Insert prefers it.
	ReserveOnFloat
)

func (p FloatPolicy) String() string {
	if p == ReserveOnFloat {
		return "reserve"
	}
	return "reclaim"
}

// ParseFloatPolicy accepts "reclaim" and "reserve".
func ParseFloatPolicy(s string) (FloatPolicy, error) {
	switch s {
	case "reclaim", "":
		return ReclaimOnFloat, nil
	case "reserve":
		return ReserveOnFloat, nil
	}
	return ReclaimOnFloat, fmt.Errorf("unknown float policy %q", s)
}

// binding is the per-window record. The leaf itself is looked up in the
// tree, since splits and collapses move occupants between nodes.
type binding struct {
	state State
	order uint64
}

// Binder tracks the window bindings of one tree.
type Binder struct {
	tree     *bsp.Tree
	policy   FloatPolicy
	bindings map[bsp.Window]*binding
	order    uint64
}

// Option configures a Binder.
type Option func(*Binder)

// WithFloatPolicy selects what DetachToFloating does with the vacated leaf.
func WithFloatPolicy(p FloatPolicy) Option {
	return func(b *Binder) { b.policy = p }
}

// NewBinder returns a Binder for tree.
func NewBinder(tree *bsp.Tree, opts ...Option) *Binder {
	b := &Binder{
		tree:     tree,
		bindings: make(map[bsp.Window]*binding),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Tree returns the tree the binder operates on.
func (b *Binder) Tree() *bsp.Tree { return b.tree }

// Policy returns the float policy.
func (b *Binder) Policy() FloatPolicy { return b.policy }

// State returns the state of w. Unknown windows are Untiled.
func (b *Binder) State(w bsp.Window) State {
	if bd, ok := b.bindings[w]; ok {
		return bd.state
	}
	return Untiled
}

// Known reports whether w has a binding record, tiled or floating.
func (b *Binder) Known(w bsp.Window) bool {
	_, ok := b.bindings[w]
	return ok
}

// NodeOf returns the leaf hosting w, or bsp.None when w is not tiled.
func (b *Binder) NodeOf(w bsp.Window) bsp.NodeID {
	if bd, ok := b.bindings[w]; ok && bd.state == Tiled {
		return b.tree.NodeOf(w)
	}
	return bsp.None
}

// Windows returns the tiled windows in leaf order.
func (b *Binder) Windows() []bsp.Window {
	return b.tree.Windows()
}

// Untiled returns windows that have a binding but no leaf, in the order
// they were first seen.
func (b *Binder) Untiled() []bsp.Window {
	var out []bsp.Window
	for w, bd := range b.bindings {
		if bd.state == Untiled {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(x, y bsp.Window) int {
		return cmp.Compare(b.bindings[x].order, b.bindings[y].order)
	})
	return out
}

func (b *Binder) record(w bsp.Window) *binding {
	bd, ok := b.bindings[w]
	if !ok {
		b.order++
		bd = &binding{state: Untiled, order: b.order}
		b.bindings[w] = bd
	}
	return bd
}

// Insert tiles w. An empty leaf nearest to the tree's visual center is used
// when one exists; otherwise the leaf at the center is split, side by side
// when it is wider than tall and stacked otherwise, and w takes the second
// half. Inserting a window that is already tiled fails with
// bsp.ErrInvalidOperation.
func (b *Binder) Insert(w bsp.Window) (bsp.NodeID, error) {
	if w == nil {
		return bsp.None, &bsp.OpError{Op: "insert", Node: bsp.None, Reason: "nil window", Err: bsp.ErrInvalidOperation}
	}
	if b.State(w) == Tiled {
		return bsp.None, &bsp.OpError{Op: "insert", Node: b.NodeOf(w), Reason: fmt.Sprintf("window %s already tiled", w.ID()), Err: bsp.ErrInvalidOperation}
	}

	id, err := b.place(w, bsp.None)
	if err != nil {
		return bsp.None, err
	}
	b.bind(w)
	return id, nil
}

// place finds or makes a leaf for w and attaches it. target narrows the
// choice to one leaf; bsp.None lets the center heuristic pick.
func (b *Binder) place(w bsp.Window, target bsp.NodeID) (bsp.NodeID, error) {
	t := b.tree
	center := t.Rect(t.Root()).Center()

	if target == bsp.None {
		empty := bsp.Nearest(t, center, func(id bsp.NodeID) bool {
			return t.Occupant(id) == nil
		})
		if empty != bsp.None {
			return empty, t.Attach(empty, w)
		}
		target = bsp.Locate(t, center)
		if target == bsp.None {
			// Not laid out yet: fall back to the closest leaf.
			target = bsp.Nearest(t, center, nil)
		}
	}

	if t.Occupant(target) == nil {
		return target, t.Attach(target, w)
	}

	r := t.Rect(target)
	o := bsp.Horizontal
	if r.Width > r.Height {
		o = bsp.Vertical
	}
	second, err := t.Split(target, o, HeuristicRatio)
	if err != nil {
		return bsp.None, err
	}
	return second, t.Attach(second, w)
}

func (b *Binder) bind(w bsp.Window) {
	b.record(w).state = Tiled
	w.SetTiledHint(true)
}

// Remove untiles w and gives its space back: the leaf is cleared and
// collapsed into its parent, so the sibling takes over. A window on the
// root leaf only clears the root. The binding is dropped afterwards.
func (b *Binder) Remove(w bsp.Window) error {
	if err := b.vacate("remove", w, true); err != nil {
		return err
	}
	delete(b.bindings, w)
	return nil
}

// DetachToFloating moves w from its leaf to the floating layer. The
// binding record is kept so ReattachToTile can bring it back. Under
// ReclaimOnFloat the vacated leaf is collapsed into its parent; under
// ReserveOnFloat it stays empty.
func (b *Binder) DetachToFloating(w bsp.Window) error {
	if err := b.vacate("detach", w, b.policy == ReclaimOnFloat); err != nil {
		return err
	}
	b.bindings[w].state = Untiled
	w.SetTiledHint(false)
	return nil
}

// vacate clears w's leaf and optionally collapses it.
func (b *Binder) vacate(op string, w bsp.Window, collapse bool) error {
	if w == nil {
		return &bsp.OpError{Op: op, Node: bsp.None, Reason: "nil window", Err: bsp.ErrNotBound}
	}
	bd, ok := b.bindings[w]
	if !ok || bd.state != Tiled {
		return &bsp.OpError{Op: op, Node: bsp.None, Reason: fmt.Sprintf("window %s is not tiled", w.ID()), Err: bsp.ErrNotBound}
	}
	id := b.tree.NodeOf(w)
	if _, err := b.tree.DetachOccupant(id); err != nil {
		return err
	}
	if collapse {
		// Collapsing the root only reports RootRemoval; the cleared root
		// leaf is exactly what we want then.
		if _, err := b.tree.Collapse(id); err != nil {
			return err
		}
	}
	return nil
}

// ReattachToTile moves a floating window back into the tree. With
// node == bsp.None the Insert heuristic picks the leaf. An empty leaf is
// used as is; an occupied leaf is split the same way Insert splits. Only
// windows known to the binder and currently untiled can be reattached.
func (b *Binder) ReattachToTile(w bsp.Window, node bsp.NodeID) (bsp.NodeID, error) {
	if w == nil || !b.Known(w) {
		id := "<nil>"
		if w != nil {
			id = w.ID()
		}
		return bsp.None, &bsp.OpError{Op: "reattach", Node: node, Reason: fmt.Sprintf("window %s has no binding", id), Err: bsp.ErrNotBound}
	}
	if b.State(w) == Tiled {
		return bsp.None, &bsp.OpError{Op: "reattach", Node: node, Reason: fmt.Sprintf("window %s already tiled", w.ID()), Err: bsp.ErrInvalidOperation}
	}
	if node != bsp.None && !b.tree.IsLeaf(node) {
		return bsp.None, &bsp.OpError{Op: "reattach", Node: node, Reason: "target is not a leaf", Err: bsp.ErrInvalidOperation}
	}

	id, err := b.place(w, node)
	if err != nil {
		return bsp.None, err
	}
	b.bind(w)
	return id, nil
}

// Float records w as a floating window without tiling it, for windows that
// ask to float from the start.
func (b *Binder) Float(w bsp.Window) {
	if w == nil || b.State(w) == Tiled {
		return
	}
	b.record(w)
	w.SetTiledHint(false)
}

// Forget drops the binding of an untiled window, for windows destroyed
// while floating. Tiled windows must be removed with Remove.
func (b *Binder) Forget(w bsp.Window) error {
	bd, ok := b.bindings[w]
	if !ok {
		return nil
	}
	if bd.state == Tiled {
		return &bsp.OpError{Op: "forget", Node: b.tree.NodeOf(w), Reason: fmt.Sprintf("window %s is tiled", w.ID()), Err: bsp.ErrInvalidOperation}
	}
	delete(b.bindings, w)
	return nil
}
