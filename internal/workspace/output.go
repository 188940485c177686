package workspace

import "github.com/Gaurav-Gosain/bsptile/internal/bsp"

// StaticOutput is an output of fixed size with a uniform outer gap, for
// headless sessions and tests.
type StaticOutput struct {
	Name     string
	Width    int
	Height   int
	OuterGap int
}

// NewStaticOutput returns a width x height output with the given outer gap.
func NewStaticOutput(name string, width, height, outerGap int) *StaticOutput {
	return &StaticOutput{Name: name, Width: width, Height: height, OuterGap: outerGap}
}

// UsableRect returns the output area minus the outer gap on every side.
func (o *StaticOutput) UsableRect() bsp.Rect {
	return bsp.Rect{Width: o.Width, Height: o.Height}.Inset(o.OuterGap)
}

// Resize changes the output size, as a hotplugged monitor changing mode
// would. Workspaces pick the change up on their next Arrange.
func (o *StaticOutput) Resize(width, height int) {
	o.Width, o.Height = width, height
}
