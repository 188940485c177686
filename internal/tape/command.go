package tape

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
	"github.com/Gaurav-Gosain/bsptile/internal/pool"
)

// CommandType represents the type of a tape command
type CommandType string

const (
	// Output
	CommandType_Output CommandType = "Output"
	CommandType_Gaps   CommandType = "Gaps"

	// Windows
	CommandType_Map   CommandType = "Map"
	CommandType_Unmap CommandType = "Unmap"
	CommandType_Float CommandType = "Float"
	CommandType_Tile  CommandType = "Tile"
	CommandType_Focus CommandType = "Focus"

	// Layout
	CommandType_Split  CommandType = "Split"
	CommandType_Resize CommandType = "Resize"

	// Workspace
	CommandType_Workspace CommandType = "Workspace"
	CommandType_MoveToWS  CommandType = "MoveToWorkspace"

	// Input and timing
	CommandType_Key   CommandType = "Key"
	CommandType_Sleep CommandType = "Sleep"

	// Assertions
	CommandType_Expect CommandType = "Expect"
)

// Command represents a parsed tape command. Window names, numbers and
// keywords are kept as text in Args; the typed accessors convert them.
type Command struct {
	Type   CommandType
	Args   []string
	Delay  time.Duration // Sleep duration
	Line   int           // Source line number
	Column int           // Source column number
}

// String renders the command in canonical tape syntax.
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(string(c.Type))
	for i, arg := range c.Args {
		sb.WriteByte(' ')
		if i == 0 && c.takesName() {
			sb.WriteString(strconv.Quote(arg))
			continue
		}
		sb.WriteString(arg)
	}
	return sb.String()
}

// takesName reports whether the first argument is a quoted window name or key.
func (c *Command) takesName() bool {
	switch c.Type {
	case CommandType_Map, CommandType_Unmap, CommandType_Float, CommandType_Tile,
		CommandType_Focus, CommandType_MoveToWS, CommandType_Expect, CommandType_Key:
		return true
	}
	return false
}

// Int returns argument i as an integer.
func (c *Command) Int(i int) (int, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("%s: missing argument %d", c.Type, i+1)
	}
	n, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %q is not an integer", c.Type, i+1, c.Args[i])
	}
	return n, nil
}

// Float returns argument i as a float.
func (c *Command) Float(i int) (float64, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("%s: missing argument %d", c.Type, i+1)
	}
	f, err := strconv.ParseFloat(c.Args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %q is not a number", c.Type, i+1, c.Args[i])
	}
	return f, nil
}

// Point returns arguments i and i+1 as a point.
func (c *Command) Point(i int) (bsp.Point, error) {
	x, err := c.Int(i)
	if err != nil {
		return bsp.Point{}, err
	}
	y, err := c.Int(i + 1)
	if err != nil {
		return bsp.Point{}, err
	}
	return bsp.Point{X: x, Y: y}, nil
}

// Rect returns arguments i..i+3 as a rectangle.
func (c *Command) Rect(i int) (bsp.Rect, error) {
	p, err := c.Point(i)
	if err != nil {
		return bsp.Rect{}, err
	}
	w, err := c.Int(i + 2)
	if err != nil {
		return bsp.Rect{}, err
	}
	h, err := c.Int(i + 3)
	if err != nil {
		return bsp.Rect{}, err
	}
	return bsp.Rect{X: p.X, Y: p.Y, Width: w, Height: h}, nil
}

// ParseDuration parses a duration string (e.g., "500ms", "1s")
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

// Format renders commands as a tape script, one per line.
func Format(commands []Command) string {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	for i := range commands {
		sb.WriteString(commands[i].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
