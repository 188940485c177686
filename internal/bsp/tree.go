// Package bsp implements the binary space partition tree that backs tiled
// workspaces: node storage, split and collapse, geometry propagation and
// point lookup.
//
// Nodes live in an arena and are addressed by NodeID. A node is either a
// leaf, optionally hosting one Window, or an internal node with exactly two
// children and a split orientation and ratio. Split and Collapse are the only
// topology mutators; both validate every precondition before touching the
// arena, so a failed call leaves the tree exactly as it was.
//
// A Tree is not safe for concurrent use. Window managers drive it from a
// single event loop.
package bsp

import (
	"fmt"
	"strings"

	"github.com/Gaurav-Gosain/bsptile/internal/pool"
)

// NodeID addresses a node in a Tree's arena. IDs of destroyed nodes are
// reused by later splits.
type NodeID int

// None is the NodeID of a missing node (no parent, no child, no match).
const None NodeID = -1

// Orientation is the direction in which an internal node divides its rectangle.
type Orientation int

const (
	// Vertical places the children side by side (the width is divided).
	Vertical Orientation = iota
	// Horizontal stacks the children (the height is divided).
	Horizontal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation accepts "vertical"/"v" and "horizontal"/"h", case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v":
		return Vertical, nil
	case "horizontal", "h":
		return Horizontal, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// CollapseStatus describes the outcome of a successful Collapse call.
type CollapseStatus int

const (
	// Collapsed means the node and its sibling were destroyed and the
	// parent took over the sibling's content.
	Collapsed CollapseStatus = iota
	// RootRemoval means Collapse was called on the root. Nothing changed.
	RootRemoval
)

func (s CollapseStatus) String() string {
	if s == RootRemoval {
		return "root-removal"
	}
	return "collapsed"
}

// DefaultRatio is the split ratio of a freshly created node.
const DefaultRatio = 0.5

type node struct {
	live   bool
	seq    uint64
	parent NodeID
	first  NodeID
	second NodeID

	orientation Orientation
	ratio       float64
	rect        Rect
	occupant    Window
}

func (n *node) isLeaf() bool {
	return n.first == None
}

// Tree is a BSP tree stored as an arena of nodes.
type Tree struct {
	nodes    []node
	free     []NodeID
	root     NodeID
	live     int
	capacity int
	seq      uint64

	// bound maps every occupant to the leaf that hosts it. Window values
	// must therefore be comparable (pointer types in practice).
	bound map[Window]NodeID
}

// Option configures a Tree.
type Option func(*Tree)

// WithCapacity bounds the number of live nodes. Splits that would exceed it
// fail with ErrAllocationFailure. Values below 1 mean unbounded.
func WithCapacity(n int) Option {
	return func(t *Tree) {
		if n >= 1 {
			t.capacity = n
		}
	}
}

// NewTree creates a tree holding a single empty root leaf with zero geometry.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		root:  None,
		bound: make(map[Window]NodeID),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.root = t.alloc(None)
	return t
}

func (t *Tree) alloc(parent NodeID) NodeID {
	t.seq++
	n := node{
		live:        true,
		seq:         t.seq,
		parent:      parent,
		first:       None,
		second:      None,
		orientation: Vertical,
		ratio:       DefaultRatio,
	}

	var id NodeID
	if k := len(t.free); k > 0 {
		id = t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = n
	} else {
		id = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, n)
	}
	t.live++
	return id
}

func (t *Tree) release(id NodeID) {
	t.nodes[id] = node{parent: None, first: None, second: None}
	t.free = append(t.free, id)
	t.live--
}

func (t *Tree) canAlloc(n int) bool {
	return t.capacity == 0 || t.live+n <= t.capacity
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].live
}

func validRatio(r float64) bool {
	// NaN fails both comparisons.
	return r > 0 && r < 1
}

// Split turns the leaf id into an internal node with two new leaf children
// and returns the second one, which starts empty. The first child inherits
// the leaf's occupant. The children receive their share of the leaf's
// cached rectangle immediately.
func (t *Tree) Split(id NodeID, o Orientation, ratio float64) (NodeID, error) {
	if !t.valid(id) {
		return None, opErr("split", id, ErrInvalidOperation, "unknown node")
	}
	if !t.nodes[id].isLeaf() {
		return None, opErr("split", id, ErrInvalidOperation, "node already has children")
	}
	if !validRatio(ratio) {
		return None, opErr("split", id, ErrInvalidOperation, "ratio %v outside (0,1)", ratio)
	}
	if o != Vertical && o != Horizontal {
		return None, opErr("split", id, ErrInvalidOperation, "unknown orientation %d", int(o))
	}
	if !t.canAlloc(2) {
		return None, opErr("split", id, ErrAllocationFailure, "%d of %d nodes in use", t.live, t.capacity)
	}

	first := t.alloc(id)
	second := t.alloc(id)

	n := &t.nodes[id]
	n.first, n.second = first, second
	n.orientation = o
	n.ratio = ratio
	if w := n.occupant; w != nil {
		n.occupant = nil
		t.nodes[first].occupant = w
		t.bound[w] = first
	}
	t.layout(id, n.rect)
	return second, nil
}

// Collapse destroys id and its sibling; their parent inherits the sibling's
// content in place. A leaf sibling makes the parent a leaf with the
// sibling's occupant, an internal sibling hands over its orientation, ratio
// and children. Everything in id's subtree is freed and its occupants are
// unbound.
//
// Collapsing the root is a no-op that reports RootRemoval.
func (t *Tree) Collapse(id NodeID) (CollapseStatus, error) {
	if !t.valid(id) {
		return Collapsed, opErr("collapse", id, ErrInvalidOperation, "unknown node")
	}
	p := t.nodes[id].parent
	if p == None {
		return RootRemoval, nil
	}
	s := t.sibling(id)

	t.freeSubtree(id)

	sib := t.nodes[s]
	pn := &t.nodes[p]
	pn.first, pn.second = sib.first, sib.second
	pn.orientation = sib.orientation
	pn.ratio = sib.ratio
	pn.occupant = sib.occupant
	if sib.occupant != nil {
		t.bound[sib.occupant] = p
	}
	if sib.first != None {
		t.nodes[sib.first].parent = p
		t.nodes[sib.second].parent = p
	}
	t.release(s)
	t.layout(p, pn.rect)
	return Collapsed, nil
}

func (t *Tree) freeSubtree(id NodeID) {
	n := t.nodes[id]
	if n.first != None {
		t.freeSubtree(n.first)
		t.freeSubtree(n.second)
	}
	if n.occupant != nil {
		delete(t.bound, n.occupant)
	}
	t.release(id)
}

// Attach binds w to the empty leaf id.
func (t *Tree) Attach(id NodeID, w Window) error {
	switch {
	case w == nil:
		return opErr("attach", id, ErrInvalidOperation, "nil window")
	case !t.valid(id):
		return opErr("attach", id, ErrInvalidOperation, "unknown node")
	case !t.nodes[id].isLeaf():
		return opErr("attach", id, ErrInvalidOperation, "node is internal")
	case t.nodes[id].occupant != nil:
		return opErr("attach", id, ErrInvalidOperation, "leaf already hosts %s", t.nodes[id].occupant.ID())
	}
	if at, ok := t.bound[w]; ok {
		return opErr("attach", id, ErrInvalidOperation, "window %s already bound to node %d", w.ID(), at)
	}
	t.nodes[id].occupant = w
	t.bound[w] = id
	return nil
}

// DetachOccupant clears the occupant of leaf id without changing topology
// and returns it (nil if the leaf was already empty). Whether the emptied
// leaf should be merged away is up to the caller.
func (t *Tree) DetachOccupant(id NodeID) (Window, error) {
	if !t.valid(id) {
		return nil, opErr("detach", id, ErrInvalidOperation, "unknown node")
	}
	n := &t.nodes[id]
	if !n.isLeaf() {
		return nil, opErr("detach", id, ErrInvalidOperation, "node is internal")
	}
	w := n.occupant
	if w != nil {
		n.occupant = nil
		delete(t.bound, w)
	}
	return w, nil
}

// SetRatio changes the split ratio of the internal node id and re-derives
// the geometry of its subtree from the node's cached rectangle.
func (t *Tree) SetRatio(id NodeID, ratio float64) error {
	if !t.valid(id) {
		return opErr("set-ratio", id, ErrInvalidOperation, "unknown node")
	}
	if t.nodes[id].isLeaf() {
		return opErr("set-ratio", id, ErrInvalidOperation, "node is a leaf")
	}
	if !validRatio(ratio) {
		return opErr("set-ratio", id, ErrInvalidOperation, "ratio %v outside (0,1)", ratio)
	}
	t.nodes[id].ratio = ratio
	t.layout(id, t.nodes[id].rect)
	return nil
}

// Root returns the root node. It never changes for the lifetime of the tree.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

// Capacity returns the node limit, or 0 when unbounded.
func (t *Tree) Capacity() int { return t.capacity }

// Contains reports whether id addresses a live node.
func (t *Tree) Contains(id NodeID) bool { return t.valid(id) }

// IsLeaf reports whether id is a live leaf.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.valid(id) && t.nodes[id].isLeaf()
}

// Parent returns the parent of id, or None for the root and unknown nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}
	return t.nodes[id].parent
}

// Children returns the first and second child of id. ok is false for leaves.
func (t *Tree) Children(id NodeID) (first, second NodeID, ok bool) {
	if !t.valid(id) || t.nodes[id].isLeaf() {
		return None, None, false
	}
	return t.nodes[id].first, t.nodes[id].second, true
}

// Sibling returns the other child of id's parent, or None for the root.
func (t *Tree) Sibling(id NodeID) NodeID {
	if !t.valid(id) || t.nodes[id].parent == None {
		return None
	}
	return t.sibling(id)
}

func (t *Tree) sibling(id NodeID) NodeID {
	p := &t.nodes[t.nodes[id].parent]
	if p.first == id {
		return p.second
	}
	return p.first
}

// Orientation returns the split orientation of id. It is meaningless for leaves.
func (t *Tree) Orientation(id NodeID) Orientation {
	if !t.valid(id) {
		return Vertical
	}
	return t.nodes[id].orientation
}

// Ratio returns the split ratio of id. It is meaningless for leaves.
func (t *Tree) Ratio(id NodeID) float64 {
	if !t.valid(id) {
		return 0
	}
	return t.nodes[id].ratio
}

// Rect returns the cached rectangle of id, as last assigned by Apply.
func (t *Tree) Rect(id NodeID) Rect {
	if !t.valid(id) {
		return Rect{}
	}
	return t.nodes[id].rect
}

// Occupant returns the window hosted by leaf id, or nil.
func (t *Tree) Occupant(id NodeID) Window {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].occupant
}

// NodeOf returns the leaf hosting w, or None.
func (t *Tree) NodeOf(w Window) NodeID {
	if id, ok := t.bound[w]; ok {
		return id
	}
	return None
}

// Seq returns the creation sequence number of id. Earlier nodes have
// smaller numbers; reused IDs get a fresh number.
func (t *Tree) Seq(id NodeID) uint64 {
	if !t.valid(id) {
		return 0
	}
	return t.nodes[id].seq
}

// Walk visits every node reachable from the root in pre-order, first child
// before second. Returning false from fn stops descent into that node's
// children.
func (t *Tree) Walk(fn func(id NodeID) bool) {
	t.walk(t.root, fn)
}

func (t *Tree) walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	n := &t.nodes[id]
	if n.first != None {
		first, second := n.first, n.second
		t.walk(first, fn)
		t.walk(second, fn)
	}
}

// Leaves returns all leaves in depth-first order, first child before second.
func (t *Tree) Leaves() []NodeID {
	var leaves []NodeID
	t.Walk(func(id NodeID) bool {
		if t.nodes[id].isLeaf() {
			leaves = append(leaves, id)
		}
		return true
	})
	return leaves
}

// Windows returns every bound window in leaf order.
func (t *Tree) Windows() []Window {
	var out []Window
	for _, id := range t.Leaves() {
		if w := t.nodes[id].occupant; w != nil {
			out = append(out, w)
		}
	}
	return out
}

// String renders the tree as an indented outline, one node per line.
func (t *Tree) String() string {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	var dump func(id NodeID, depth int)
	dump = func(id NodeID, depth int) {
		n := &t.nodes[id]
		sb.WriteString(strings.Repeat("  ", depth))
		if n.isLeaf() {
			occ := "-"
			if n.occupant != nil {
				occ = n.occupant.ID()
			}
			fmt.Fprintf(sb, "leaf#%d %s %s\n", id, n.rect, occ)
			return
		}
		fmt.Fprintf(sb, "split#%d %s %s %.3f\n", id, n.rect, n.orientation, n.ratio)
		dump(n.first, depth+1)
		dump(n.second, depth+1)
	}
	dump(t.root, 0)
	return sb.String()
}
