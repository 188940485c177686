package bsp

import "math"

// Apply assigns a rectangle to every node of t, starting with r at the root.
// A Vertical node gives its first child floor(width*ratio) columns at the
// node's origin and the remaining columns to the second child; a Horizontal
// node does the same with rows. Apply is deterministic and idempotent, and
// every pixel of r ends up in exactly one leaf.
func Apply(t *Tree, r Rect) {
	t.layout(t.root, r)
}

func (t *Tree) layout(id NodeID, r Rect) {
	n := &t.nodes[id]
	n.rect = r
	if n.isLeaf() {
		return
	}
	first, second := n.first, n.second
	a, b := SplitRect(r, n.orientation, n.ratio)
	t.layout(first, a)
	t.layout(second, b)
}

// SplitRect divides r the way an internal node with orientation o and the
// given ratio divides its rectangle.
func SplitRect(r Rect, o Orientation, ratio float64) (first, second Rect) {
	if o == Vertical {
		w1 := int(math.Floor(float64(r.Width) * ratio))
		first = Rect{X: r.X, Y: r.Y, Width: w1, Height: r.Height}
		second = Rect{X: r.X + w1, Y: r.Y, Width: r.Width - w1, Height: r.Height}
		return first, second
	}
	h1 := int(math.Floor(float64(r.Height) * ratio))
	first = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: h1}
	second = Rect{X: r.X, Y: r.Y + h1, Width: r.Width, Height: r.Height - h1}
	return first, second
}
