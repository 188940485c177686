package workspace

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
)

// Manager holds a fixed number of independent workspaces sharing one
// output. Workspaces are created on first use.
type Manager struct {
	cfg        Config
	count      int
	output     bsp.Output
	workspaces map[int]*Workspace
	active     int
}

// NewManager returns a manager for workspaces 1..count on out, with
// workspace 1 active.
func NewManager(out bsp.Output, count int, cfg Config) *Manager {
	return &Manager{
		cfg:        cfg,
		count:      max(count, 1),
		output:     out,
		workspaces: make(map[int]*Workspace),
		active:     1,
	}
}

// Count returns the number of addressable workspaces.
func (m *Manager) Count() int { return m.count }

// Workspace returns workspace n, creating it if needed.
func (m *Manager) Workspace(n int) (*Workspace, error) {
	if n < 1 || n > m.count {
		return nil, fmt.Errorf("workspace %d out of range 1..%d: %w", n, m.count, bsp.ErrInvalidOperation)
	}
	ws, ok := m.workspaces[n]
	if !ok {
		ws = New(n, m.output, m.cfg)
		m.workspaces[n] = ws
	}
	return ws, nil
}

// Active returns the active workspace.
func (m *Manager) Active() *Workspace {
	ws, _ := m.Workspace(m.active)
	return ws
}

// Switch makes workspace n active.
func (m *Manager) Switch(n int) error {
	ws, err := m.Workspace(n)
	if err != nil {
		return err
	}
	if n != m.active {
		logger.Info("switched workspace", "from", m.active, "to", n)
	}
	m.active = n
	ws.Arrange()
	return nil
}

// Lookup finds the workspace holding w.
func (m *Manager) Lookup(w bsp.Window) (*Workspace, bool) {
	for _, n := range m.Numbers() {
		if ws := m.workspaces[n]; ws.Contains(w) {
			return ws, true
		}
	}
	return nil, false
}

// MoveWindow sends w to workspace n. It keeps floating or tiled and is
// placed by the insert heuristic on the target. Both workspaces are
// rearranged.
func (m *Manager) MoveWindow(w bsp.Window, n int) error {
	src, ok := m.Lookup(w)
	if !ok {
		return &bsp.OpError{Op: "move", Node: bsp.None, Reason: fmt.Sprintf("window %s is not mapped", windowID(w)), Err: bsp.ErrNotBound}
	}
	dst, err := m.Workspace(n)
	if err != nil {
		return err
	}
	if dst == src {
		return nil
	}

	floating := src.Binder().State(w) != tiling.Tiled
	if err := src.release(w); err != nil {
		return err
	}
	if err := dst.adopt(w, floating); err != nil {
		// Put it back where it was rather than lose it.
		if rerr := src.adopt(w, floating); rerr != nil {
			logger.Error("window lost while moving", "window", w.ID(), "error", rerr)
		}
		src.Arrange()
		return err
	}
	src.Arrange()
	dst.Arrange()
	logger.Debug("moved window", "window", w.ID(), "from", src.Number(), "to", n)
	return nil
}

// SetOutput assigns out to every workspace.
func (m *Manager) SetOutput(out bsp.Output) {
	m.output = out
	for _, ws := range m.workspaces {
		ws.SetOutput(out)
	}
}

// SetInnerGap changes the inner gap of every workspace, including ones
// created later.
func (m *Manager) SetInnerGap(gap int) {
	m.cfg.InnerGap = max(gap, 0)
	for _, ws := range m.workspaces {
		ws.SetInnerGap(gap)
	}
}

// Arrange relays out every existing workspace, e.g. after the output
// changed size.
func (m *Manager) Arrange() {
	for _, ws := range m.workspaces {
		ws.Arrange()
	}
}

// Numbers returns the numbers of the workspaces created so far, ascending.
func (m *Manager) Numbers() []int {
	return slices.Sorted(maps.Keys(m.workspaces))
}
