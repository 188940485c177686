package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/bsptile/internal/config"
	"github.com/Gaurav-Gosain/bsptile/internal/tape"
	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
	"github.com/Gaurav-Gosain/bsptile/internal/workspace"
)

// loadConfig reads the config named by --config, or the XDG default.
func loadConfig() (*config.UserConfig, error) {
	if configPath != "" {
		return config.LoadConfigFile(configPath)
	}
	return config.LoadUserConfig()
}

// resolveConfigPath returns the file loadConfig reads.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// parseOutputSize parses a WIDTHxHEIGHT string.
func parseOutputSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid output size %q: want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid output width %q", ws)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid output height %q", hs)
	}
	return w, h, nil
}

func runScript(ctx context.Context, path, outputSize string, watch bool) error {
	if debugMode {
		workspace.SetLogLevel(log.DebugLevel)
		tape.SetLogLevel(log.DebugLevel)
	}

	once := func() error {
		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Failed to load config, using defaults", "err", err)
			cfg = config.DefaultConfig()
		}
		if outputSize != "" {
			w, h, err := parseOutputSize(outputSize)
			if err != nil {
				return err
			}
			cfg.Output.Width, cfg.Output.Height = w, h
		}
		return playScript(ctx, os.Stdout, cfg, path)
	}

	err := once()
	if !watch {
		return err
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return watchAndReplay(ctx, path, once)
}

// playScript parses and runs the script at path, then prints the layout of
// every workspace the script touched.
func playScript(ctx context.Context, out io.Writer, cfg *config.UserConfig, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	commands, parseErrors := tape.ParseFile(string(content))
	if len(parseErrors) > 0 {
		errs := make([]error, len(parseErrors))
		for i, e := range parseErrors {
			errs[i] = fmt.Errorf("%s:%w", path, e)
		}
		return errors.Join(errs...)
	}

	runner := tape.NewRunner(cfg, commands)
	runErr := runner.Run(ctx)

	styled := isTerminal(out)
	printLayout(out, runner.Manager(), styled)

	stats := runner.GetStats()
	fmt.Fprintf(out, "%d/%d commands, %d failed expectations, %s\n",
		stats.ExecutedCount, stats.TotalCommands, stats.FailedExpects, stats.ExecutedTime.Round(time.Microsecond))
	return runErr
}

// watchAndReplay calls replay whenever the script or the config file
// changes, until ctx is cancelled.
func watchAndReplay(ctx context.Context, scriptPath string, replay func() error) error {
	changes := make(chan string, 1)
	notify := func(path string) func() {
		return func() {
			select {
			case changes <- path:
			default:
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return config.WatchFile(ctx, scriptPath, notify(scriptPath)) })
	if cfgPath, err := resolveConfigPath(); err == nil {
		if _, err := os.Stat(cfgPath); err == nil {
			g.Go(func() error { return config.WatchFile(ctx, cfgPath, notify(cfgPath)) })
		}
	}
	g.Go(func() error {
		log.Info("Watching for changes", "script", scriptPath)
		for {
			select {
			case <-ctx.Done():
				return nil
			case path := <-changes:
				log.Info("Replaying", "changed", path)
				if err := replay(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
		}
	})
	return g.Wait()
}

func checkScripts(paths []string) error {
	failed := 0
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		if ok, errs := tape.ValidateScript(string(content)); !ok {
			failed++
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "%s:%v\n", path, e)
			}
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts have errors", failed, len(paths))
	}
	return nil
}

func formatScript(path string, write bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	commands, parseErrors := tape.ParseFile(string(content))
	if len(parseErrors) > 0 {
		return fmt.Errorf("%s:%w", path, parseErrors[0])
	}
	formatted := tape.Format(commands)
	if !write {
		fmt.Print(formatted)
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(formatted), info.Mode().Perm())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// layoutRows describes every leaf of ws and then every floating window.
func layoutRows(ws *workspace.Workspace) [][]string {
	var rows [][]string
	for _, leaf := range ws.Leaves() {
		name, state := "", "empty"
		if leaf.Window != nil {
			name, state = leaf.Window.ID(), "tiled"
		}
		rows = append(rows, []string{strconv.Itoa(int(leaf.Node)), leaf.Rect.String(), name, state})
	}
	for _, w := range ws.Windows() {
		if ws.Binder().State(w) == tiling.Tiled {
			continue
		}
		rows = append(rows, []string{"-", w.Geometry().String(), w.ID(), "floating"})
	}
	return rows
}

func printLayout(out io.Writer, m *workspace.Manager, styled bool) {
	active := m.Active().Number()

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().
		Padding(0, 1)

	for _, n := range m.Numbers() {
		ws, err := m.Workspace(n)
		if err != nil {
			continue
		}
		title := fmt.Sprintf("Workspace %d", n)
		if n == active {
			title += " (active)"
		}
		if f := ws.Focused(); f != nil {
			title += ", focus: " + f.ID()
		}
		rows := layoutRows(ws)

		if !styled {
			fmt.Fprintln(out, title)
			for _, row := range rows {
				fmt.Fprintf(out, "  %-4s %-24s %-12s %s\n", row[0], row[1], row[2], row[3])
			}
			fmt.Fprintln(out)
			continue
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			Headers("Node", "Area", "Window", "State").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(title))
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out)
	}
}
