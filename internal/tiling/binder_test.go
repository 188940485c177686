package tiling_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
)

type fakeWindow struct {
	id    string
	geom  bsp.Rect
	tiled bool
	hints int
}

func (w *fakeWindow) ID() string { return w.id }
func (w *fakeWindow) Geometry() bsp.Rect { return w.geom }
func (w *fakeWindow) SetGeometry(r bsp.Rect) { w.geom = r }
func (w *fakeWindow) Mapped() bool { return true }
func (w *fakeWindow) Floating() bool { return false }
func (w *fakeWindow) SetTiledHint(tiled bool) {
	w.tiled = tiled
	w.hints++
}

var screen = bsp.Rect{Width: 1000, Height: 800}

func newBinder(opts ...tiling.Option) *tiling.Binder {
	tree := bsp.NewTree()
	bsp.Apply(tree, screen)
	return tiling.NewBinder(tree, opts...)
}

// arrange lays the tree out and writes leaf geometry back to the windows,
// like a workspace does after every event.
func arrange(t *testing.T, b *tiling.Binder) {
	t.Helper()
	bsp.Apply(b.Tree(), screen)
	for _, w := range b.Windows() {
		w.SetGeometry(b.Tree().Rect(b.NodeOf(w)))
	}
	if err := b.Tree().Validate(); err != nil {
		t.Fatalf("tree invariants violated: %v\n%s", err, b.Tree())
	}
}

func mustInsert(t *testing.T, b *tiling.Binder, w bsp.Window) bsp.NodeID {
	t.Helper()
	id, err := b.Insert(w)
	if err != nil {
		t.Fatalf("Insert(%s) failed: %v", w.ID(), err)
	}
	arrange(t, b)
	return id
}

// =============================================================================
// Insert
// =============================================================================

func TestInsertScenario(t *testing.T) {
	b := newBinder()
	a := &fakeWindow{id: "A"}
	bw := &fakeWindow{id: "B"}

	id := mustInsert(t, b, a)
	if id != b.Tree().Root() || !b.Tree().IsLeaf(id) {
		t.Fatalf("Expected A on the root leaf, got node %d", id)
	}
	if a.geom != screen {
		t.Errorf("Expected A to fill the screen, got %s", a.geom)
	}
	if !a.tiled {
		t.Error("Expected A to get the tiled hint")
	}

	mustInsert(t, b, bw)
	root := b.Tree().Root()
	if b.Tree().Orientation(root) != bsp.Vertical {
		t.Errorf("Expected a vertical split for a wide root, got %s", b.Tree().Orientation(root))
	}
	first, second, _ := b.Tree().Children(root)
	if b.Tree().Occupant(first) != a || b.Tree().Occupant(second) != bw {
		t.Error("Expected A in the first child and B in the second")
	}
	if a.geom != (bsp.Rect{Width: 500, Height: 800}) {
		t.Errorf("Expected A at (0,0 500x800), got %s", a.geom)
	}
	if bw.geom != (bsp.Rect{X: 500, Width: 500, Height: 800}) {
		t.Errorf("Expected B at (500,0 500x800), got %s", bw.geom)
	}
}

func TestInsertSplitsTallLeafHorizontally(t *testing.T) {
	b := newBinder()
	a, bw, c := &fakeWindow{id: "A"}, &fakeWindow{id: "B"}, &fakeWindow{id: "C"}
	mustInsert(t, b, a)
	mustInsert(t, b, bw)
	mustInsert(t, b, c)

	// The center (500,400) sits in B's 500x800 leaf, which is taller than wide.
	want := map[string]bsp.Rect{
		"A": {Width: 500, Height: 800},
		"B": {X: 500, Width: 500, Height: 400},
		"C": {X: 500, Y: 400, Width: 500, Height: 400},
	}
	got := map[string]bsp.Rect{"A": a.geom, "B": bw.geom, "C": c.geom}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertSquareLeafStacks(t *testing.T) {
	tree := bsp.NewTree()
	bsp.Apply(tree, bsp.Rect{Width: 600, Height: 600})
	b := tiling.NewBinder(tree)
	a, bw := &fakeWindow{id: "A"}, &fakeWindow{id: "B"}
	if _, err := b.Insert(a); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Insert(bw); err != nil {
		t.Fatal(err)
	}
	if o := tree.Orientation(tree.Root()); o != bsp.Horizontal {
		t.Errorf("Expected equal sides to split horizontally, got %s", o)
	}
}

func TestInsertPrefersEmptyLeafNearCenter(t *testing.T) {
	b := newBinder()
	tree := b.Tree()
	// Four empty columns: farLeft | nearLeft | nearRight | farRight.
	right := mustSplitTree(t, tree, tree.Root(), bsp.Vertical, 0.5)
	left, _, _ := tree.Children(tree.Root())
	mustSplitTree(t, tree, right, bsp.Vertical, 0.5)
	nearRight, _, _ := tree.Children(right)
	nearLeft := mustSplitTree(t, tree, left, bsp.Vertical, 0.5)
	bsp.Apply(tree, screen)

	a := &fakeWindow{id: "A"}
	if id := mustInsert(t, b, a); id != nearRight {
		t.Fatalf("Expected the leaf containing the center %d, got %d", nearRight, id)
	}

	// nearLeft ends one pixel left of the center; the outer columns are far away.
	bw := &fakeWindow{id: "B"}
	if id := mustInsert(t, b, bw); id != nearLeft {
		t.Errorf("Expected the next nearest empty leaf %d, got %d", nearLeft, id)
	}
	if tree.Len() != 7 {
		t.Errorf("Expected no new splits while empty leaves exist, got %d nodes", tree.Len())
	}
}

func TestInsertTieGoesToEarlierLeaf(t *testing.T) {
	tree := bsp.NewTree()
	b := tiling.NewBinder(tree)
	right := mustSplitTree(t, tree, tree.Root(), bsp.Vertical, 0.5)
	bottomRight := mustSplitTree(t, tree, right, bsp.Horizontal, 0.5)
	topRight, _, _ := tree.Children(right)
	left, _, _ := tree.Children(tree.Root())
	bsp.Apply(tree, bsp.Rect{Width: 100, Height: 100})

	// The center (50,50) is inside bottomRight. Once it is taken, left and
	// topRight are both one pixel away from the center.
	if err := tree.Attach(bottomRight, &fakeWindow{id: "X"}); err != nil {
		t.Fatal(err)
	}
	id, err := b.Insert(&fakeWindow{id: "A"})
	if err != nil {
		t.Fatal(err)
	}
	want := left
	if tree.Seq(topRight) < tree.Seq(left) {
		want = topRight
	}
	if id != want {
		t.Errorf("Expected tie broken by creation order (%d), got %d", want, id)
	}
}

func TestInsertRejectsTiledWindow(t *testing.T) {
	b := newBinder()
	a := &fakeWindow{id: "A"}
	mustInsert(t, b, a)
	before := b.Tree().String()

	if _, err := b.Insert(a); !errors.Is(err, bsp.ErrInvalidOperation) {
		t.Fatalf("Expected ErrInvalidOperation, got %v", err)
	}
	if b.Tree().String() != before {
		t.Error("Expected tree unchanged after rejected insert")
	}
	if _, err := b.Insert(nil); !errors.Is(err, bsp.ErrInvalidOperation) {
		t.Errorf("Expected nil window to be rejected, got %v", err)
	}
}

func TestInsertAllocationFailureLeavesTreeAlone(t *testing.T) {
	tree := bsp.NewTree(bsp.WithCapacity(3))
	bsp.Apply(tree, screen)
	b := tiling.NewBinder(tree)
	mustInsert(t, b, &fakeWindow{id: "A"})
	mustInsert(t, b, &fakeWindow{id: "B"})
	before := tree.String()

	c := &fakeWindow{id: "C"}
	if _, err := b.Insert(c); !errors.Is(err, bsp.ErrAllocationFailure) {
		t.Fatalf("Expected ErrAllocationFailure, got %v", err)
	}
	if tree.String() != before {
		t.Errorf("Expected tree unchanged, got:\n%s", tree)
	}
	if b.State(c) != tiling.Untiled || b.Known(c) {
		t.Error("Expected C to stay untiled and unknown")
	}
}

func TestInsertIsDeterministic(t *testing.T) {
	run := func() string {
		b := newBinder()
		for _, id := range []string{"A", "B", "C", "D", "E", "F", "G"} {
			if _, err := b.Insert(&fakeWindow{id: id}); err != nil {
				t.Fatal(err)
			}
			bsp.Apply(b.Tree(), screen)
		}
		return b.Tree().String()
	}
	if first, second := run(), run(); first != second {
		t.Errorf("Expected identical trees:\n%s\nvs\n%s", first, second)
	}
}

// =============================================================================
// Remove
// =============================================================================

func TestRemoveGivesSpaceToSibling(t *testing.T) {
	b := newBinder()
	a, bw, c := &fakeWindow{id: "A"}, &fakeWindow{id: "B"}, &fakeWindow{id: "C"}
	mustInsert(t, b, a)
	mustInsert(t, b, bw)
	mustInsert(t, b, c)

	if err := b.Remove(bw); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	arrange(t, b)

	if c.geom != (bsp.Rect{X: 500, Width: 500, Height: 800}) {
		t.Errorf("Expected C to take B's space, got %s", c.geom)
	}
	if b.Tree().Len() != 3 {
		t.Errorf("Expected 3 nodes after removal, got %d", b.Tree().Len())
	}
	if b.Known(bw) || b.State(bw) != tiling.Untiled {
		t.Error("Expected B to be forgotten")
	}
	if b.NodeOf(c) == bsp.None || b.Tree().Occupant(b.NodeOf(c)) != c {
		t.Error("Expected C's binding to follow it into the parent node")
	}
}

func TestRemoveRootWindowClearsRoot(t *testing.T) {
	b := newBinder()
	a := &fakeWindow{id: "A"}
	mustInsert(t, b, a)

	if err := b.Remove(a); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	root := b.Tree().Root()
	if !b.Tree().IsLeaf(root) || b.Tree().Occupant(root) != nil || b.Tree().Len() != 1 {
		t.Errorf("Expected an empty root leaf, got:\n%s", b.Tree())
	}
}

func TestRemoveUnboundWindow(t *testing.T) {
	b := newBinder()
	a := &fakeWindow{id: "A"}

	if err := b.Remove(a); !errors.Is(err, bsp.ErrNotBound) {
		t.Errorf("Expected ErrNotBound for unknown window, got %v", err)
	}

	b.Float(a)
	if err := b.Remove(a); !errors.Is(err, bsp.ErrNotBound) {
		t.Errorf("Expected ErrNotBound for floating window, got %v", err)
	}
}

func TestRemoveEverythingLeavesSingleLeaf(t *testing.T) {
	b := newBinder()
	var ws []*fakeWindow
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		w := &fakeWindow{id: id}
		ws = append(ws, w)
		mustInsert(t, b, w)
	}
	for _, w := range []*fakeWindow{ws[2], ws[0], ws[4], ws[1], ws[3]} {
		if err := b.Remove(w); err != nil {
			t.Fatalf("Remove(%s) failed: %v", w.id, err)
		}
		arrange(t, b)
	}
	if b.Tree().Len() != 1 || b.Tree().Occupant(b.Tree().Root()) != nil {
		t.Errorf("Expected a single empty leaf, got:\n%s", b.Tree())
	}
}

// =============================================================================
// Floating
// =============================================================================

func TestDetachToFloatingReclaims(t *testing.T) {
	b := newBinder()
	a, bw := &fakeWindow{id: "A"}, &fakeWindow{id: "B"}
	mustInsert(t, b, a)
	mustInsert(t, b, bw)

	if err := b.DetachToFloating(bw); err != nil {
		t.Fatalf("DetachToFloating failed: %v", err)
	}
	arrange(t, b)

	if b.State(bw) != tiling.Untiled || !b.Known(bw) {
		t.Error("Expected B untiled but still known")
	}
	if bw.tiled {
		t.Error("Expected B's tiled hint cleared")
	}
	if a.geom != screen {
		t.Errorf("Expected A to reclaim the screen, got %s", a.geom)
	}
	if b.Tree().Len() != 1 {
		t.Errorf("Expected tree collapsed to one node, got %d", b.Tree().Len())
	}
	if untiled := b.Untiled(); len(untiled) != 1 || untiled[0] != bw {
		t.Errorf("Expected only B untiled, got %v", untiled)
	}
}

func TestDetachToFloatingReserves(t *testing.T) {
	b := newBinder(tiling.WithFloatPolicy(tiling.ReserveOnFloat))
	a, bw := &fakeWindow{id: "A"}, &fakeWindow{id: "B"}
	mustInsert(t, b, a)
	slot := mustInsert(t, b, bw)

	if err := b.DetachToFloating(bw); err != nil {
		t.Fatalf("DetachToFloating failed: %v", err)
	}
	arrange(t, b)

	if b.Tree().Len() != 3 || b.Tree().Occupant(slot) != nil {
		t.Errorf("Expected the vacated leaf to stay reserved, got:\n%s", b.Tree())
	}
	if a.geom != (bsp.Rect{Width: 500, Height: 800}) {
		t.Errorf("Expected A to keep its half, got %s", a.geom)
	}

	c := &fakeWindow{id: "C"}
	if id := mustInsert(t, b, c); id != slot {
		t.Errorf("Expected C to fill the reserved leaf %d, got %d", slot, id)
	}
}

func TestDetachWithEmptySiblingCollapsesToEmptyLeaf(t *testing.T) {
	tree := bsp.NewTree()
	bsp.Apply(tree, screen)
	b := tiling.NewBinder(tree)
	mustSplitTree(t, tree, tree.Root(), bsp.Vertical, 0.5)
	first, second, _ := tree.Children(tree.Root())

	a := &fakeWindow{id: "A"}
	if id, err := b.ReattachToTile(a, first); !errors.Is(err, bsp.ErrNotBound) || id != bsp.None {
		t.Fatalf("Expected unknown window reattach to fail with ErrNotBound, got %d %v", id, err)
	}
	b.Float(a)
	if _, err := b.ReattachToTile(a, first); err != nil {
		t.Fatal(err)
	}

	if err := b.DetachToFloating(a); err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 1 || !tree.IsLeaf(tree.Root()) || tree.Occupant(tree.Root()) != nil {
		t.Errorf("Expected a single empty leaf, got:\n%s", tree)
	}
	if tree.Contains(first) || tree.Contains(second) {
		t.Error("Expected both children freed")
	}
}

func TestReattachToTile(t *testing.T) {
	b := newBinder()
	a, bw := &fakeWindow{id: "A"}, &fakeWindow{id: "B"}
	mustInsert(t, b, a)
	mustInsert(t, b, bw)
	if err := b.DetachToFloating(bw); err != nil {
		t.Fatal(err)
	}
	arrange(t, b)

	t.Run("occupied leaf is split", func(t *testing.T) {
		id, err := b.ReattachToTile(bw, b.NodeOf(a))
		if err != nil {
			t.Fatalf("ReattachToTile failed: %v", err)
		}
		arrange(t, b)
		if b.State(bw) != tiling.Tiled || b.NodeOf(bw) != id || !bw.tiled {
			t.Error("Expected B tiled again")
		}
		if bw.geom != (bsp.Rect{X: 500, Width: 500, Height: 800}) {
			t.Errorf("Expected B back on the right half, got %s", bw.geom)
		}
	})

	t.Run("already tiled", func(t *testing.T) {
		if _, err := b.ReattachToTile(bw, bsp.None); !errors.Is(err, bsp.ErrInvalidOperation) {
			t.Errorf("Expected ErrInvalidOperation, got %v", err)
		}
	})

	t.Run("internal target", func(t *testing.T) {
		if err := b.DetachToFloating(bw); err != nil {
			t.Fatal(err)
		}
		c := &fakeWindow{id: "C"}
		mustInsert(t, b, c)
		if _, err := b.ReattachToTile(bw, b.Tree().Root()); !errors.Is(err, bsp.ErrInvalidOperation) {
			t.Errorf("Expected ErrInvalidOperation for internal node, got %v", err)
		}
		if b.State(bw) != tiling.Untiled {
			t.Error("Expected B to stay floating")
		}
	})

	t.Run("heuristic placement", func(t *testing.T) {
		if _, err := b.ReattachToTile(bw, bsp.None); err != nil {
			t.Fatalf("ReattachToTile failed: %v", err)
		}
		arrange(t, b)
		if len(b.Windows()) != 3 {
			t.Errorf("Expected 3 tiled windows, got %d", len(b.Windows()))
		}
	})
}

func TestStateMachineRejections(t *testing.T) {
	b := newBinder()
	a := &fakeWindow{id: "A"}

	if err := b.DetachToFloating(a); !errors.Is(err, bsp.ErrNotBound) {
		t.Errorf("Expected detaching an untiled window to fail with ErrNotBound, got %v", err)
	}

	mustInsert(t, b, a)
	if err := b.Forget(a); !errors.Is(err, bsp.ErrInvalidOperation) {
		t.Errorf("Expected Forget of a tiled window to fail, got %v", err)
	}
	if err := b.DetachToFloating(a); err != nil {
		t.Fatal(err)
	}
	if err := b.DetachToFloating(a); !errors.Is(err, bsp.ErrNotBound) {
		t.Errorf("Expected second detach to fail with ErrNotBound, got %v", err)
	}
	if err := b.Forget(a); err != nil {
		t.Errorf("Expected Forget of a floating window to succeed, got %v", err)
	}
	if b.Known(a) {
		t.Error("Expected A forgotten")
	}
}

func TestParseFloatPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    tiling.FloatPolicy
		wantErr bool
	}{
		{"reclaim", tiling.ReclaimOnFloat, false},
		{"", tiling.ReclaimOnFloat, false},
		{"reserve", tiling.ReserveOnFloat, false},
		{"keep", tiling.ReclaimOnFloat, true},
	}
	for _, tc := range tests {
		got, err := tiling.ParseFloatPolicy(tc.input)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseFloatPolicy(%q) = %s, %v", tc.input, got, err)
		}
	}
}

func mustSplitTree(t *testing.T, tree *bsp.Tree, id bsp.NodeID, o bsp.Orientation, ratio float64) bsp.NodeID {
	t.Helper()
	second, err := tree.Split(id, o, ratio)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	return second
}

func BenchmarkInsertRemove(b *testing.B) {
	binder := newBinder()
	ws := make([]*fakeWindow, 32)
	for i := range ws {
		ws[i] = &fakeWindow{id: string(rune('a' + i%26))}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, w := range ws {
			if _, err := binder.Insert(w); err != nil {
				b.Fatal(err)
			}
			bsp.Apply(binder.Tree(), screen)
		}
		for _, w := range ws {
			if err := binder.Remove(w); err != nil {
				b.Fatal(err)
			}
		}
	}
}
