package bsp

// Locate returns the leaf whose cached rectangle contains p, or None when p
// lies outside the root. Apply must have run since the last resize for the
// answer to reflect the current output.
//
// Locate panics with an *InconsistencyError if p is inside an internal node
// but inside neither of its children; that can only happen when the cached
// geometry has been corrupted.
func Locate(t *Tree, p Point) NodeID {
	id := t.root
	if !t.nodes[id].rect.Contains(p) {
		return None
	}
	for {
		n := &t.nodes[id]
		if n.isLeaf() {
			return id
		}
		switch {
		case t.nodes[n.first].rect.Contains(p):
			id = n.first
		case t.nodes[n.second].rect.Contains(p):
			id = n.second
		default:
			panic(&InconsistencyError{Node: id, Point: p})
		}
	}
}

// Nearest returns the leaf closest to p among those accepted by keep, using
// the distance from p to each leaf's rectangle. Ties go to the leaf created
// first. It returns None when no leaf is accepted.
func Nearest(t *Tree, p Point, keep func(id NodeID) bool) NodeID {
	best := None
	bestDist := 0
	for _, id := range t.Leaves() {
		if keep != nil && !keep(id) {
			continue
		}
		d := t.nodes[id].rect.DistanceSq(p)
		if best == None || d < bestDist || (d == bestDist && t.nodes[id].seq < t.nodes[best].seq) {
			best, bestDist = id, d
		}
	}
	return best
}
