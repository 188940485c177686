package bsp_test

import (
	"testing"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
)

// testWindow is a minimal bsp.Window used across the package tests.
type testWindow struct {
	id       string
	geom     bsp.Rect
	floating bool
	tiled    bool
}

func newWindow(id string) *testWindow { return &testWindow{id: id} }

func (w *testWindow) ID() string { return w.id }
func (w *testWindow) Geometry() bsp.Rect { return w.geom }
func (w *testWindow) SetGeometry(r bsp.Rect) { w.geom = r }
func (w *testWindow) Mapped() bool { return true }
func (w *testWindow) Floating() bool { return w.floating }
func (w *testWindow) SetTiledHint(tiled bool) { w.tiled = tiled }

func mustValidate(t *testing.T, tree *bsp.Tree) {
	t.Helper()
	if err := tree.Validate(); err != nil {
		t.Fatalf("tree invariants violated: %v\n%s", err, tree)
	}
}

func mustSplit(t *testing.T, tree *bsp.Tree, id bsp.NodeID, o bsp.Orientation, ratio float64) bsp.NodeID {
	t.Helper()
	second, err := tree.Split(id, o, ratio)
	if err != nil {
		t.Fatalf("Split(%d, %s, %v) failed: %v", id, o, ratio, err)
	}
	return second
}

func leafRects(tree *bsp.Tree) []bsp.Rect {
	var rects []bsp.Rect
	for _, id := range tree.Leaves() {
		rects = append(rects, tree.Rect(id))
	}
	return rects
}
