package bsp

// Window is the capability the layout core needs from a display-server window.
// The core never owns the window; it only records which leaf it is bound to.
type Window interface {
	// ID returns a stable identifier, used for logging and lookups.
	ID() string
	Geometry() Rect
	SetGeometry(Rect)
	Mapped() bool
	Floating() bool
	// SetTiledHint tells the client whether it is tiled, so it can drop
	// client-side decorations such as rounded corners or shadows.
	SetTiledHint(tiled bool)
}

// Output is the capability the layout core needs from a display output.
type Output interface {
	// UsableRect returns the area available for tiling, after outer gaps
	// and reserved panels have been removed.
	UsableRect() Rect
}
