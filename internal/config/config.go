// Package config loads and validates the bsptile user configuration.
//
// The configuration lives in a TOML file under the XDG config directory
// (usually ~/.config/bsptile/config.toml). Missing keys fall back to the
// defaults from DefaultConfig, so a user file only needs the settings it
// changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
)

// Defaults taken from the compositor this layout core was written for.
const (
	DefaultOuterGap     = 10
	DefaultInnerGap     = 5
	DefaultWorkspaces   = 9
	DefaultOutputWidth  = 1920
	DefaultOutputHeight = 1080

	// MaxWorkspaces bounds the workspace count; keybindings address them 1-9.
	MaxWorkspaces = 9
)

// UserConfig is the on-disk configuration.
type UserConfig struct {
	Layout      LayoutConfig        `toml:"layout"`
	Output      OutputConfig        `toml:"output"`
	Keybindings map[string][]string `toml:"keybindings"`
}

// LayoutConfig controls how workspaces tile their windows.
type LayoutConfig struct {
	// OuterGap is the margin between the output edge and the tiled area.
	OuterGap int `toml:"outer_gap"`
	// InnerGap is the space between neighbouring tiled windows.
	InnerGap int `toml:"inner_gap"`
	// FloatPolicy is "reclaim" or "reserve", see tiling.FloatPolicy.
	FloatPolicy string `toml:"float_policy"`
	// MaxNodes caps the nodes per workspace tree; 0 means no limit.
	MaxNodes   int `toml:"max_nodes"`
	Workspaces int `toml:"workspaces"`
}

// OutputConfig describes the output used when no display server supplies one,
// e.g. for scripted sessions.
type OutputConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Layout: LayoutConfig{
			OuterGap:    DefaultOuterGap,
			InnerGap:    DefaultInnerGap,
			FloatPolicy: tiling.ReclaimOnFloat.String(),
			MaxNodes:    0,
			Workspaces:  DefaultWorkspaces,
		},
		Output: OutputConfig{
			Width:  DefaultOutputWidth,
			Height: DefaultOutputHeight,
		},
		Keybindings: DefaultKeybindings(),
	}
}

// FloatPolicy returns the parsed float policy.
func (c *UserConfig) FloatPolicy() tiling.FloatPolicy {
	p, err := tiling.ParseFloatPolicy(c.Layout.FloatPolicy)
	if err != nil {
		return tiling.ReclaimOnFloat
	}
	return p
}

// Validate reports every invalid setting at once.
func (c *UserConfig) Validate() error {
	var errs []error
	if c.Layout.OuterGap < 0 {
		errs = append(errs, fmt.Errorf("layout.outer_gap must not be negative, got %d", c.Layout.OuterGap))
	}
	if c.Layout.InnerGap < 0 {
		errs = append(errs, fmt.Errorf("layout.inner_gap must not be negative, got %d", c.Layout.InnerGap))
	}
	if _, err := tiling.ParseFloatPolicy(c.Layout.FloatPolicy); err != nil {
		errs = append(errs, fmt.Errorf("layout.float_policy: %w", err))
	}
	if c.Layout.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("layout.max_nodes must not be negative, got %d", c.Layout.MaxNodes))
	}
	if c.Layout.Workspaces < 1 || c.Layout.Workspaces > MaxWorkspaces {
		errs = append(errs, fmt.Errorf("layout.workspaces must be between 1 and %d, got %d", MaxWorkspaces, c.Layout.Workspaces))
	}
	if c.Output.Width <= 2*c.Layout.OuterGap || c.Output.Height <= 2*c.Layout.OuterGap {
		errs = append(errs, fmt.Errorf("output %dx%d leaves no room inside outer gap %d", c.Output.Width, c.Output.Height, c.Layout.OuterGap))
	}
	normalizer := NewKeyNormalizer()
	for action, keys := range c.Keybindings {
		for _, key := range keys {
			if ok, reason := normalizer.ValidateKey(key); !ok {
				errs = append(errs, fmt.Errorf("keybindings.%s: %q: %s", action, key, reason))
			}
		}
	}
	return errors.Join(errs...)
}

// GetConfigPath returns the path of the user configuration file, creating
// its parent directory if needed.
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("bsptile", "config.toml"))
}

// LoadUserConfig loads the configuration from the XDG path. A default file
// is written when none exists yet.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine config path: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := WriteConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadConfigFile(path)
}

// LoadConfigFile reads and validates the configuration at path.
func LoadConfigFile(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML document on top of the defaults and validates it.
func Parse(data []byte) (*UserConfig, error) {
	cfg := DefaultConfig()
	cfg.Keybindings = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// User bindings replace the defaults per action, not wholesale.
	defaults := DefaultKeybindings()
	if cfg.Keybindings == nil {
		cfg.Keybindings = defaults
	} else {
		for action, keys := range defaults {
			if _, ok := cfg.Keybindings[action]; !ok {
				cfg.Keybindings[action] = keys
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Marshal renders cfg as a commented TOML document.
func Marshal(cfg *UserConfig, path string) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# bsptile configuration file\n")
	sb.WriteString("#\n")
	sb.WriteString("# [layout] controls gaps, the floating policy (\"reclaim\" or \"reserve\")\n")
	sb.WriteString("# and the number of workspaces. [keybindings] maps actions to key lists.\n")
	if path != "" {
		sb.WriteString("#\n# Configuration location: " + path + "\n")
	}
	sb.WriteString("\n")
	sb.Write(data)
	return []byte(sb.String()), nil
}

// WriteConfig writes cfg to path with a short header.
func WriteConfig(path string, cfg *UserConfig) error {
	data, err := Marshal(cfg, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
