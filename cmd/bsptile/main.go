// Package main implements bsptile, a headless driver for the BSP tiling
// layout core. It plays layout scripts against simulated outputs and
// windows, prints the resulting tiling, and manages the user configuration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode  bool
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bsptile",
		Short: "BSP tiling layout engine",
		Long: `bsptile - BSP tiling layout engine

Drives a binary space partitioning window layout without a display server.
Layout scripts map, float, split and resize simulated windows, and bsptile
prints where every window ends up.`,
		Example: `  # Play a layout script
  bsptile run layout.tape

  # Play it on a 2560x1440 output and replay whenever it changes
  bsptile run layout.tape --output 2560x1440 --watch

  # Check a script for syntax errors
  bsptile check layout.tape

  # Edit configuration
  bsptile config edit

  # List all keybindings
  bsptile keybinds list`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: XDG config dir)")

	var outputSize string
	var watch bool

	runCmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Play a layout script",
		Long: `Play a layout script and print the resulting layout

Commands run in order. The first command that fails stops the run; failed
Expect commands are collected and reported at the end.`,
		Example: `  bsptile run layout.tape
  bsptile run layout.tape --output 1280x720
  bsptile run layout.tape --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), args[0], outputSize, watch)
		},
	}
	runCmd.Flags().StringVar(&outputSize, "output", "", "Output size as WIDTHxHEIGHT (overrides config)")
	runCmd.Flags().BoolVar(&watch, "watch", false, "Replay the script when it or the config changes")

	checkCmd := &cobra.Command{
		Use:   "check <script>...",
		Short: "Check layout scripts for syntax errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkScripts(args)
		},
	}

	var write bool
	fmtCmd := &cobra.Command{
		Use:   "fmt <script>",
		Short: "Reformat a layout script",
		Long: `Print a layout script in canonical form

Comments and blank lines are dropped. Use --write to replace the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return formatScript(args[0], write)
		},
	}
	fmtCmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")

	// Config command group
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bsptile configuration",
		Long:  `Manage bsptile configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the bsptile configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order. The file is validated after
the editor exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfigFile()
		},
	}

	var force bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the bsptile configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults(force)
		},
	}
	configResetCmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	// Keybinds command group
	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "View keybinding configuration",
		Long:    `View and inspect bsptile keybinding configuration`,
	}

	keybindsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all keybindings",
		Long:  `Display all configured keybindings in a formatted table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings()
		},
	}

	keybindsCustomCmd := &cobra.Command{
		Use:   "list-custom",
		Short: "List customized keybindings",
		Long: `Display only keybindings that differ from defaults

Shows a comparison of default and custom keybindings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCustomKeybindings()
		},
	}

	keybindsCmd.AddCommand(keybindsListCmd, keybindsCustomCmd)

	rootCmd.AddCommand(runCmd, checkCmd, fmtCmd, configCmd, keybindsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		stop()
		os.Exit(1)
	}
}
