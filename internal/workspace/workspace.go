// Package workspace ties a BSP tree, its window bindings and an output
// together. A Workspace is what the display-server shell talks to: it maps
// and unmaps windows, toggles floating, applies explicit splits and ratios,
// and pushes the resulting geometry back to the windows.
package workspace

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "workspace",
	})
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the logging level for the workspace package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

const (
	// MinRatio and MaxRatio bound ratios set through Grow so neither side
	// of a split can be squeezed to nothing.
	MinRatio = 0.05
	MaxRatio = 0.95

	// floatProbe is how far inside a floating window's corner ToggleFloat
	// looks for the leaf to tile it into.
	floatProbe = 5
)

// Config holds the per-workspace layout settings.
type Config struct {
	// InnerGap is the space between neighbouring tiled windows. Each window
	// is inset by half of it.
	InnerGap    int
	FloatPolicy tiling.FloatPolicy
	// MaxNodes caps the tree size; 0 means no limit.
	MaxNodes int
}

// Leaf is a snapshot of one tiled area, for display.
type Leaf struct {
	Node   bsp.NodeID
	Rect   bsp.Rect
	Window bsp.Window
}

// Workspace owns one BSP tree and the output it is laid out on.
type Workspace struct {
	num     int
	cfg     Config
	tree    *bsp.Tree
	binder  *tiling.Binder
	output  bsp.Output
	windows []bsp.Window // map order
	focused bsp.Window
}

// New creates workspace num laid out on out. out may be nil until an
// output is assigned with SetOutput.
func New(num int, out bsp.Output, cfg Config) *Workspace {
	var opts []bsp.Option
	if cfg.MaxNodes > 0 {
		opts = append(opts, bsp.WithCapacity(cfg.MaxNodes))
	}
	tree := bsp.NewTree(opts...)
	ws := &Workspace{
		num:    num,
		cfg:    cfg,
		tree:   tree,
		binder: tiling.NewBinder(tree, tiling.WithFloatPolicy(cfg.FloatPolicy)),
		output: out,
	}
	ws.layout()
	logger.Info("workspace created", "workspace", num, "policy", cfg.FloatPolicy)
	return ws
}

func (ws *Workspace) Number() int { return ws.num }
func (ws *Workspace) Tree() *bsp.Tree { return ws.tree }
func (ws *Workspace) Binder() *tiling.Binder { return ws.binder }
func (ws *Workspace) Output() bsp.Output { return ws.output }
func (ws *Workspace) Focused() bsp.Window { return ws.focused }
func (ws *Workspace) Windows() []bsp.Window { return slices.Clone(ws.windows) }
func (ws *Workspace) Contains(w bsp.Window) bool { return ws.binder.Known(w) }

// Map adds a newly mapped window. Windows that ask to float are centered on
// the output; the rest are tiled by the insert heuristic. When the tree is
// full the window floats instead. The new window takes focus.
func (ws *Workspace) Map(w bsp.Window) error {
	if w == nil {
		return &bsp.OpError{Op: "map", Node: bsp.None, Reason: "nil window", Err: bsp.ErrInvalidOperation}
	}
	if ws.binder.Known(w) {
		return &bsp.OpError{Op: "map", Node: ws.binder.NodeOf(w), Reason: fmt.Sprintf("window %s already mapped", w.ID()), Err: bsp.ErrInvalidOperation}
	}
	if err := ws.adopt(w, w.Floating()); err != nil {
		return err
	}
	ws.Arrange()
	return nil
}

// adopt places w tiled or floating and records it in map order.
func (ws *Workspace) adopt(w bsp.Window, floating bool) error {
	if !floating {
		id, err := ws.binder.Insert(w)
		switch {
		case err == nil:
			logger.Debug("tiled", "workspace", ws.num, "window", w.ID(), "node", id)
		case errors.Is(err, bsp.ErrAllocationFailure):
			logger.Warn("tree full, floating window", "workspace", ws.num, "window", w.ID(), "nodes", ws.tree.Len())
			floating = true
		default:
			return err
		}
	}
	if floating {
		ws.binder.Float(w)
		ws.center(w)
		logger.Debug("floating", "workspace", ws.num, "window", w.ID())
	}
	ws.windows = append(ws.windows, w)
	ws.focused = w
	return nil
}

// Unmap removes w. A tiled window gives its space to its sibling.
func (ws *Workspace) Unmap(w bsp.Window) error {
	if err := ws.release(w); err != nil {
		return err
	}
	ws.Arrange()
	return nil
}

// release drops w from the tree and the window list without arranging.
func (ws *Workspace) release(w bsp.Window) error {
	if w == nil || !ws.binder.Known(w) {
		return &bsp.OpError{Op: "unmap", Node: bsp.None, Reason: fmt.Sprintf("window %s not on workspace %d", windowID(w), ws.num), Err: bsp.ErrNotBound}
	}
	var err error
	if ws.binder.State(w) == tiling.Tiled {
		err = ws.binder.Remove(w)
	} else {
		err = ws.binder.Forget(w)
	}
	if err != nil {
		return err
	}

	i := slices.Index(ws.windows, w)
	ws.windows = slices.Delete(ws.windows, i, i+1)
	if ws.focused == w {
		ws.focused = nil
		if len(ws.windows) > 0 {
			ws.focused = ws.windows[min(i, len(ws.windows)-1)]
		}
	}
	logger.Debug("unmapped", "workspace", ws.num, "window", w.ID(), "nodes", ws.tree.Len())
	return nil
}

// ToggleFloat flips w between tiled and floating.
func (ws *Workspace) ToggleFloat(w bsp.Window) error {
	if w == nil || !ws.binder.Known(w) {
		return &bsp.OpError{Op: "toggle float", Node: bsp.None, Reason: fmt.Sprintf("window %s not on workspace %d", windowID(w), ws.num), Err: bsp.ErrNotBound}
	}
	if ws.binder.State(w) == tiling.Tiled {
		return ws.Float(w)
	}
	return ws.Unfloat(w)
}

// Float detaches a tiled window from the tree and centers it on the output.
// What happens to its leaf depends on the float policy.
func (ws *Workspace) Float(w bsp.Window) error {
	if err := ws.binder.DetachToFloating(w); err != nil {
		return err
	}
	ws.center(w)
	logger.Debug("floated", "workspace", ws.num, "window", w.ID(), "policy", ws.binder.Policy())
	ws.Arrange()
	return nil
}

// Unfloat tiles a floating window into the leaf under its top-left corner
// when that leaf is empty, and wherever Insert would put it otherwise.
func (ws *Workspace) Unfloat(w bsp.Window) error {
	target := bsp.None
	if w != nil {
		g := w.Geometry()
		target = bsp.Locate(ws.tree, bsp.Point{X: g.X + floatProbe, Y: g.Y + floatProbe})
		if target != bsp.None && ws.tree.Occupant(target) != nil {
			target = bsp.None
		}
	}
	id, err := ws.binder.ReattachToTile(w, target)
	if err != nil {
		return err
	}
	logger.Debug("tiled", "workspace", ws.num, "window", w.ID(), "node", id)
	ws.Arrange()
	return nil
}

// Tile moves a floating window into the leaf under p. An occupied leaf is
// split to make room.
func (ws *Workspace) Tile(w bsp.Window, p bsp.Point) error {
	target := bsp.Locate(ws.tree, p)
	if target == bsp.None {
		return &bsp.OpError{Op: "tile", Node: bsp.None, Reason: fmt.Sprintf("no leaf at (%d,%d)", p.X, p.Y), Err: bsp.ErrInvalidOperation}
	}
	id, err := ws.binder.ReattachToTile(w, target)
	if err != nil {
		return err
	}
	logger.Debug("tiled", "workspace", ws.num, "window", w.ID(), "node", id)
	ws.Arrange()
	return nil
}

// Split splits the leaf under p. Its window, if any, keeps the first half
// and the second half stays empty for the next mapped window.
func (ws *Workspace) Split(p bsp.Point, o bsp.Orientation, ratio float64) (bsp.NodeID, error) {
	leaf := bsp.Locate(ws.tree, p)
	if leaf == bsp.None {
		return bsp.None, &bsp.OpError{Op: "split", Node: bsp.None, Reason: fmt.Sprintf("no leaf at (%d,%d)", p.X, p.Y), Err: bsp.ErrInvalidOperation}
	}
	return ws.splitLeaf(leaf, o, ratio)
}

// SplitWindow splits the leaf holding w.
func (ws *Workspace) SplitWindow(w bsp.Window, o bsp.Orientation, ratio float64) (bsp.NodeID, error) {
	if w == nil || ws.binder.State(w) != tiling.Tiled {
		return bsp.None, &bsp.OpError{Op: "split", Node: bsp.None, Reason: fmt.Sprintf("window %s is not tiled", windowID(w)), Err: bsp.ErrNotBound}
	}
	return ws.splitLeaf(ws.binder.NodeOf(w), o, ratio)
}

func (ws *Workspace) splitLeaf(leaf bsp.NodeID, o bsp.Orientation, ratio float64) (bsp.NodeID, error) {
	second, err := ws.tree.Split(leaf, o, ratio)
	if err != nil {
		return bsp.None, err
	}
	logger.Debug("split", "workspace", ws.num, "node", leaf, "orientation", o, "ratio", ratio)
	ws.Arrange()
	return second, nil
}

// Resize sets the ratio of the split directly above the leaf under p.
func (ws *Workspace) Resize(p bsp.Point, ratio float64) error {
	leaf := bsp.Locate(ws.tree, p)
	if leaf == bsp.None {
		return &bsp.OpError{Op: "resize", Node: bsp.None, Reason: fmt.Sprintf("no leaf at (%d,%d)", p.X, p.Y), Err: bsp.ErrInvalidOperation}
	}
	parent := ws.tree.Parent(leaf)
	if parent == bsp.None {
		return &bsp.OpError{Op: "resize", Node: leaf, Reason: "leaf is the root", Err: bsp.ErrInvalidOperation}
	}
	if err := ws.tree.SetRatio(parent, ratio); err != nil {
		return err
	}
	logger.Debug("resized", "workspace", ws.num, "node", parent, "ratio", ratio)
	ws.Arrange()
	return nil
}

// Grow enlarges the leaf holding w by delta of its parent split. A negative
// delta shrinks it. The ratio is clamped to [MinRatio, MaxRatio].
func (ws *Workspace) Grow(w bsp.Window, delta float64) error {
	if w == nil || ws.binder.State(w) != tiling.Tiled {
		return &bsp.OpError{Op: "grow", Node: bsp.None, Reason: fmt.Sprintf("window %s is not tiled", windowID(w)), Err: bsp.ErrNotBound}
	}
	leaf := ws.binder.NodeOf(w)
	parent := ws.tree.Parent(leaf)
	if parent == bsp.None {
		return &bsp.OpError{Op: "grow", Node: leaf, Reason: "leaf is the root", Err: bsp.ErrInvalidOperation}
	}
	if first, _, _ := ws.tree.Children(parent); first != leaf {
		delta = -delta
	}
	ratio := math.Round((ws.tree.Ratio(parent)+delta)*1000) / 1000
	ratio = max(MinRatio, min(MaxRatio, ratio))
	if err := ws.tree.SetRatio(parent, ratio); err != nil {
		return err
	}
	logger.Debug("resized", "workspace", ws.num, "node", parent, "ratio", ratio)
	ws.Arrange()
	return nil
}

// SetInnerGap changes the gap between tiled windows.
func (ws *Workspace) SetInnerGap(gap int) {
	ws.cfg.InnerGap = max(gap, 0)
	ws.Arrange()
}

// SetOutput assigns a new output and relays out the workspace.
func (ws *Workspace) SetOutput(out bsp.Output) {
	ws.output = out
	ws.Arrange()
}

// Arrange lays the tree out on the output and pushes each leaf's rectangle,
// inset by half the inner gap, to the window occupying it. Without an
// output it does nothing.
func (ws *Workspace) Arrange() {
	if !ws.layout() {
		return
	}
	gap := ws.cfg.InnerGap / 2
	for _, id := range ws.tree.Leaves() {
		if w := ws.tree.Occupant(id); w != nil {
			w.SetGeometry(ws.tree.Rect(id).Inset(gap))
		}
	}
}

func (ws *Workspace) layout() bool {
	if ws.output == nil {
		return false
	}
	bsp.Apply(ws.tree, ws.output.UsableRect())
	return true
}

// Leaves returns every leaf in tree order.
func (ws *Workspace) Leaves() []Leaf {
	ids := ws.tree.Leaves()
	out := make([]Leaf, len(ids))
	for i, id := range ids {
		out[i] = Leaf{Node: id, Rect: ws.tree.Rect(id), Window: ws.tree.Occupant(id)}
	}
	return out
}

// Focus gives w the focus. It must be on this workspace.
func (ws *Workspace) Focus(w bsp.Window) error {
	if w == nil || !ws.binder.Known(w) {
		return &bsp.OpError{Op: "focus", Node: bsp.None, Reason: fmt.Sprintf("window %s not on workspace %d", windowID(w), ws.num), Err: bsp.ErrNotBound}
	}
	ws.focused = w
	return nil
}

// FocusNext moves focus step windows along map order, wrapping around.
// With nothing focused the first window gets focus.
func (ws *Workspace) FocusNext(step int) bsp.Window {
	n := len(ws.windows)
	if n == 0 {
		return nil
	}
	i := slices.Index(ws.windows, ws.focused)
	if i < 0 {
		ws.focused = ws.windows[0]
		return ws.focused
	}
	ws.focused = ws.windows[((i+step)%n+n)%n]
	return ws.focused
}

// center places a floating window in the middle of the output, keeping its
// size. A window without a size gets half the output.
func (ws *Workspace) center(w bsp.Window) {
	if ws.output == nil {
		return
	}
	area := ws.output.UsableRect()
	g := w.Geometry()
	if g.Empty() {
		g.Width, g.Height = area.Width/2, area.Height/2
	}
	g.X = area.X + (area.Width-g.Width)/2
	g.Y = area.Y + (area.Height-g.Height)/2
	w.SetGeometry(g)
}

func windowID(w bsp.Window) string {
	if w == nil {
		return "<nil>"
	}
	return w.ID()
}
