package bsp

import "fmt"

// Validate checks the structural invariants of t and returns the first
// violation found:
//
//   - every node is a leaf or has exactly two children, and internal nodes
//     host no window;
//   - the root has no parent and every child points back at its parent;
//   - internal ratios lie in (0,1);
//   - every window is bound to exactly one leaf and the binding index agrees;
//   - each internal node's children partition its cached rectangle;
//   - every live node is reachable from the root.
func (t *Tree) Validate() error {
	if !t.valid(t.root) {
		return fmt.Errorf("root %d is not live", t.root)
	}
	if p := t.nodes[t.root].parent; p != None {
		return fmt.Errorf("root %d has parent %d", t.root, p)
	}

	var err error
	reached := 0
	occupants := 0
	t.Walk(func(id NodeID) bool {
		if err != nil {
			return false
		}
		reached++
		n := &t.nodes[id]
		if (n.first == None) != (n.second == None) {
			err = fmt.Errorf("node %d has exactly one child", id)
			return false
		}
		if n.isLeaf() {
			if n.occupant != nil {
				occupants++
				if at, ok := t.bound[n.occupant]; !ok || at != id {
					err = fmt.Errorf("leaf %d hosts %s but index says %d", id, n.occupant.ID(), at)
				}
			}
			return false
		}
		if n.occupant != nil {
			err = fmt.Errorf("internal node %d hosts window %s", id, n.occupant.ID())
			return false
		}
		if !validRatio(n.ratio) {
			err = fmt.Errorf("node %d has ratio %v", id, n.ratio)
			return false
		}
		for _, c := range []NodeID{n.first, n.second} {
			if !t.valid(c) {
				err = fmt.Errorf("node %d has dead child %d", id, c)
				return false
			}
			if t.nodes[c].parent != id {
				err = fmt.Errorf("child %d of node %d points at parent %d", c, id, t.nodes[c].parent)
				return false
			}
		}
		if e := checkPartition(n.rect, n.orientation, t.nodes[n.first].rect, t.nodes[n.second].rect); e != nil {
			err = fmt.Errorf("node %d: %w", id, e)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if reached != t.live {
		return fmt.Errorf("%d live nodes but %d reachable from root", t.live, reached)
	}
	if occupants != len(t.bound) {
		return fmt.Errorf("%d occupied leaves but %d bound windows", occupants, len(t.bound))
	}
	return nil
}

// checkPartition verifies that a and b are disjoint and exactly cover r.
func checkPartition(r Rect, o Orientation, a, b Rect) error {
	if a.Width < 0 || a.Height < 0 || b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative child size %s %s", a, b)
	}
	var ok bool
	if o == Vertical {
		ok = a.X == r.X && a.Y == r.Y && a.Height == r.Height &&
			b.X == r.X+a.Width && b.Y == r.Y && b.Height == r.Height &&
			a.Width+b.Width == r.Width
	} else {
		ok = a.X == r.X && a.Y == r.Y && a.Width == r.Width &&
			b.Y == r.Y+a.Height && b.X == r.X && b.Width == r.Width &&
			a.Height+b.Height == r.Height
	}
	if !ok {
		return fmt.Errorf("children %s %s do not partition %s %s", a, b, o, r)
	}
	return nil
}
