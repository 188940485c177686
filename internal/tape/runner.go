package tape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/bsptile/internal/bsp"
	"github.com/Gaurav-Gosain/bsptile/internal/config"
	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
	"github.com/Gaurav-Gosain/bsptile/internal/workspace"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tape",
	})
	logger.SetLevel(log.WarnLevel)
}

// SetLogLevel sets the logging level for the tape package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// GrowStep is how much a grow or shrink key press moves a split.
const GrowStep = 0.05

// ExpectationError is a failed Expect command
type ExpectationError struct {
	Line   int
	Window string
	Want   bsp.Rect
	Got    bsp.Rect
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("line %d: expected %s at %s, got %s", e.Line, e.Window, e.Want, e.Got)
}

// ScriptExecutionStats contains statistics about a script execution
type ScriptExecutionStats struct {
	TotalCommands int
	ExecutedCount int
	FailedExpects int
	StartTime     time.Time
	EndTime       time.Time
	ExecutedTime  time.Duration
}

// Runner plays a script against a workspace manager without a display
// server. Windows are SimWindows created by Map commands.
type Runner struct {
	output   *workspace.StaticOutput
	manager  *workspace.Manager
	registry *config.KeybindRegistry
	player   *Player
	windows  map[string]*SimWindow
	failures []error
	stats    ScriptExecutionStats
}

// NewRunner prepares commands to run with the layout settings from cfg.
func NewRunner(cfg *config.UserConfig, commands []Command) *Runner {
	out := workspace.NewStaticOutput("headless", cfg.Output.Width, cfg.Output.Height, cfg.Layout.OuterGap)
	wcfg := workspace.Config{
		InnerGap:    cfg.Layout.InnerGap,
		FloatPolicy: cfg.FloatPolicy(),
		MaxNodes:    cfg.Layout.MaxNodes,
	}
	return &Runner{
		output:   out,
		manager:  workspace.NewManager(out, cfg.Layout.Workspaces, wcfg),
		registry: config.NewKeybindRegistry(cfg),
		player:   NewPlayer(commands),
		windows:  make(map[string]*SimWindow),
		stats:    ScriptExecutionStats{TotalCommands: len(commands)},
	}
}

// Manager returns the workspace manager the script drives.
func (r *Runner) Manager() *workspace.Manager { return r.manager }

// Window returns the mapped window called name.
func (r *Runner) Window(name string) (*SimWindow, bool) {
	w, ok := r.windows[name]
	return w, ok
}

// WindowNames returns the names of all mapped windows, sorted.
func (r *Runner) WindowNames() []string {
	names := make([]string, 0, len(r.windows))
	for name := range r.windows {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetStats returns execution statistics
func (r *Runner) GetStats() ScriptExecutionStats {
	return r.stats
}

// Run executes the script. It stops at the first command that fails and
// returns its error with the script position. Failed Expect commands do not
// stop the run; they are joined into the returned error at the end.
func (r *Runner) Run(ctx context.Context) error {
	r.stats.StartTime = time.Now()
	defer func() {
		r.stats.EndTime = time.Now()
		r.stats.ExecutedTime = r.stats.EndTime.Sub(r.stats.StartTime)
	}()

	logger.Debug("running script", "commands", r.player.TotalCommands())
	for !r.player.IsFinished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd := r.player.NextCommand()
		logger.Debug("exec", "line", cmd.Line, "command", cmd.String())
		if err := r.exec(ctx, cmd); err != nil {
			return fmt.Errorf("line %d: %s: %w", cmd.Line, cmd.Type, err)
		}
		r.stats.ExecutedCount++
		r.player.Advance()
	}

	r.stats.FailedExpects = len(r.failures)
	return errors.Join(r.failures...)
}

func (r *Runner) exec(ctx context.Context, cmd *Command) error {
	switch cmd.Type {
	case CommandType_Output:
		w, err := cmd.Int(0)
		if err != nil {
			return err
		}
		h, err := cmd.Int(1)
		if err != nil {
			return err
		}
		if w <= 2*r.output.OuterGap || h <= 2*r.output.OuterGap {
			return fmt.Errorf("output %dx%d too small for outer gap %d: %w", w, h, r.output.OuterGap, bsp.ErrInvalidOperation)
		}
		r.output.Resize(w, h)
		r.manager.Arrange()

	case CommandType_Gaps:
		outer, err := cmd.Int(0)
		if err != nil {
			return err
		}
		inner, err := cmd.Int(1)
		if err != nil {
			return err
		}
		if outer < 0 || inner < 0 {
			return fmt.Errorf("gaps must not be negative: %w", bsp.ErrInvalidOperation)
		}
		r.output.OuterGap = outer
		r.manager.SetInnerGap(inner)
		r.manager.Arrange()

	case CommandType_Map:
		return r.mapWindow(cmd.Args[0], len(cmd.Args) > 1)

	case CommandType_Unmap:
		return r.unmapWindow(cmd.Args[0])

	case CommandType_Float:
		w, ws, err := r.lookup(cmd.Args[0])
		if err != nil {
			return err
		}
		return ws.Float(w)

	case CommandType_Tile:
		w, ws, err := r.lookup(cmd.Args[0])
		if err != nil {
			return err
		}
		if len(cmd.Args) == 1 {
			return ws.Unfloat(w)
		}
		p, err := cmd.Point(1)
		if err != nil {
			return err
		}
		return ws.Tile(w, p)

	case CommandType_Focus:
		w, ws, err := r.lookup(cmd.Args[0])
		if err != nil {
			return err
		}
		return ws.Focus(w)

	case CommandType_Split:
		p, err := cmd.Point(0)
		if err != nil {
			return err
		}
		o, err := bsp.ParseOrientation(cmd.Args[2])
		if err != nil {
			return err
		}
		ratio, err := cmd.Float(3)
		if err != nil {
			return err
		}
		_, err = r.manager.Active().Split(p, o, ratio)
		return err

	case CommandType_Resize:
		p, err := cmd.Point(0)
		if err != nil {
			return err
		}
		ratio, err := cmd.Float(2)
		if err != nil {
			return err
		}
		return r.manager.Active().Resize(p, ratio)

	case CommandType_Workspace:
		n, err := cmd.Int(0)
		if err != nil {
			return err
		}
		return r.manager.Switch(n)

	case CommandType_MoveToWS:
		w, _, err := r.lookup(cmd.Args[0])
		if err != nil {
			return err
		}
		n, err := cmd.Int(1)
		if err != nil {
			return err
		}
		return r.manager.MoveWindow(w, n)

	case CommandType_Key:
		return r.pressKey(cmd.Args[0])

	case CommandType_Sleep:
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cmd.Delay):
		}

	case CommandType_Expect:
		want, err := cmd.Rect(1)
		if err != nil {
			return err
		}
		w, _, err := r.lookup(cmd.Args[0])
		if err != nil {
			return err
		}
		if got := w.Geometry(); got != want {
			r.failures = append(r.failures, &ExpectationError{Line: cmd.Line, Window: w.Name, Want: want, Got: got})
		}

	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}

func (r *Runner) mapWindow(name string, floating bool) error {
	if _, ok := r.windows[name]; ok {
		return fmt.Errorf("window %q already mapped: %w", name, bsp.ErrInvalidOperation)
	}
	w := NewSimWindow(name, floating)
	if err := r.manager.Active().Map(w); err != nil {
		return err
	}
	r.windows[name] = w
	logger.Debug("mapped", "window", name, "instance", w.InstanceID, "floating", floating)
	return nil
}

func (r *Runner) unmapWindow(name string) error {
	w, ws, err := r.lookup(name)
	if err != nil {
		return err
	}
	if err := ws.Unmap(w); err != nil {
		return err
	}
	w.mapped = false
	delete(r.windows, name)
	return nil
}

// lookup finds a mapped window and the workspace holding it.
func (r *Runner) lookup(name string) (*SimWindow, *workspace.Workspace, error) {
	w, ok := r.windows[name]
	if !ok {
		return nil, nil, fmt.Errorf("no window named %q: %w", name, bsp.ErrNotBound)
	}
	ws, ok := r.manager.Lookup(w)
	if !ok {
		return nil, nil, fmt.Errorf("window %q is on no workspace: %w", name, bsp.ErrNotBound)
	}
	return w, ws, nil
}

// pressKey resolves combo through the keybindings and runs its action on
// the focused window of the active workspace. Actions that need a focused
// window do nothing when there is none.
func (r *Runner) pressKey(combo string) error {
	action := r.registry.GetAction(combo)
	if action == "" {
		return fmt.Errorf("key %q is not bound", combo)
	}

	if n, ok := workspaceArg(action, "switch_workspace_"); ok {
		return r.manager.Switch(n)
	}

	ws := r.manager.Active()
	focused := ws.Focused()
	if focused == nil {
		logger.Debug("no focused window, ignoring key", "key", combo, "action", action)
		return nil
	}

	if n, ok := workspaceArg(action, "move_to_workspace_"); ok {
		return r.manager.MoveWindow(focused, n)
	}

	switch action {
	case config.ActionSplitVertical, config.ActionSplitHorizontal, config.ActionGrow, config.ActionShrink:
		if ws.Binder().State(focused) != tiling.Tiled {
			logger.Debug("focused window is floating, ignoring key", "key", combo, "action", action)
			return nil
		}
	}

	switch action {
	case config.ActionSplitVertical:
		_, err := ws.SplitWindow(focused, bsp.Vertical, bsp.DefaultRatio)
		return err
	case config.ActionSplitHorizontal:
		_, err := ws.SplitWindow(focused, bsp.Horizontal, bsp.DefaultRatio)
		return err
	case config.ActionToggleFloat:
		return ws.ToggleFloat(focused)
	case config.ActionCloseWindow:
		return r.unmapWindow(focused.ID())
	case config.ActionGrow:
		return ws.Grow(focused, GrowStep)
	case config.ActionShrink:
		return ws.Grow(focused, -GrowStep)
	case config.ActionFocusNext:
		ws.FocusNext(1)
	case config.ActionFocusPrev:
		ws.FocusNext(-1)
	default:
		return fmt.Errorf("action %q has no handler", action)
	}
	return nil
}

func workspaceArg(action, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(action, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

// ValidateScript checks if a tape script is valid (parses without errors)
func ValidateScript(content string) (bool, []error) {
	commands, parseErrors := ParseFile(content)
	if len(parseErrors) > 0 {
		errs := make([]error, len(parseErrors))
		for i, e := range parseErrors {
			errs[i] = e
		}
		return false, errs
	}
	if len(commands) == 0 {
		return false, []error{errors.New("no commands found in script")}
	}
	return true, nil
}
