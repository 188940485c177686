package tape

import (
	"github.com/google/uuid"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
)

// SimWindow is a window that exists only in a script. It records the
// geometry and hints the layout core hands it.
type SimWindow struct {
	Name       string
	InstanceID uuid.UUID

	geom     bsp.Rect
	floating bool
	tiled    bool
	mapped   bool
}

// NewSimWindow creates a window called name. floating asks for the window
// to start floating, like a dialog would.
func NewSimWindow(name string, floating bool) *SimWindow {
	return &SimWindow{
		Name:       name,
		InstanceID: uuid.New(),
		floating:   floating,
		mapped:     true,
	}
}

func (w *SimWindow) ID() string { return w.Name }
func (w *SimWindow) Geometry() bsp.Rect { return w.geom }
func (w *SimWindow) SetGeometry(r bsp.Rect) { w.geom = r }
func (w *SimWindow) Mapped() bool { return w.mapped }
func (w *SimWindow) Floating() bool { return w.floating }
func (w *SimWindow) SetTiledHint(tiled bool) { w.tiled = tiled }

// Tiled reports the last tiled hint the window received.
func (w *SimWindow) Tiled() bool { return w.tiled }
