package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Gaurav-Gosain/bsptile/internal/config"
	"github.com/Gaurav-Gosain/bsptile/internal/tiling"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Layout.OuterGap != 10 {
		t.Errorf("Expected outer gap 10, got %d", cfg.Layout.OuterGap)
	}
	if cfg.Layout.InnerGap != 5 {
		t.Errorf("Expected inner gap 5, got %d", cfg.Layout.InnerGap)
	}
	if cfg.FloatPolicy() != tiling.ReclaimOnFloat {
		t.Errorf("Expected reclaim float policy, got %v", cfg.FloatPolicy())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestDefaultKeybindings(t *testing.T) {
	cfg := config.DefaultConfig()

	requiredActions := []string{
		config.ActionSplitVertical,
		config.ActionSplitHorizontal,
		config.ActionToggleFloat,
		config.ActionCloseWindow,
		config.SwitchWorkspaceAction(1),
		config.MoveToWorkspaceAction(9),
	}

	for _, action := range requiredActions {
		keys, ok := cfg.Keybindings[action]
		if !ok {
			t.Errorf("Expected %s keybinding to exist", action)
			continue
		}
		if len(keys) == 0 {
			t.Errorf("Expected %s to have at least one key bound", action)
		}
	}
}

// =============================================================================
// Parsing Tests
// =============================================================================

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[layout]
inner_gap = 0
float_policy = "reserve"

[keybindings]
toggle_float = ["super+t"]
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Layout.InnerGap != 0 {
		t.Errorf("Expected inner gap 0, got %d", cfg.Layout.InnerGap)
	}
	if cfg.Layout.OuterGap != config.DefaultOuterGap {
		t.Errorf("Expected default outer gap, got %d", cfg.Layout.OuterGap)
	}
	if cfg.FloatPolicy() != tiling.ReserveOnFloat {
		t.Errorf("Expected reserve policy, got %v", cfg.FloatPolicy())
	}
	if diff := cmp.Diff([]string{"super+t"}, cfg.Keybindings[config.ActionToggleFloat]); diff != "" {
		t.Errorf("toggle_float keys mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Keybindings[config.ActionCloseWindow]) == 0 {
		t.Error("Expected unspecified actions to keep default keys")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"negative gap", "[layout]\nouter_gap = -1\n", "outer_gap"},
		{"unknown policy", "[layout]\nfloat_policy = \"maybe\"\n", "float_policy"},
		{"too many workspaces", "[layout]\nworkspaces = 12\n", "workspaces"},
		{"tiny output", "[output]\nwidth = 10\nheight = 10\n", "no room"},
		{"bad key", "[keybindings]\ngrow = [\"hyper+x\"]\n", "keybindings.grow"},
		{"bad toml", "[layout\n", "parse"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.doc))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bsptile", "config.toml")
	want := config.DefaultConfig()
	want.Layout.InnerGap = 8
	want.Output.Width = 2560

	if err := config.WriteConfig(path, want); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	got, err := config.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

// =============================================================================
// KeybindRegistry Tests
// =============================================================================

func TestKeybindRegistry_GetKeys(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys(config.ActionSplitVertical)
	if len(keys) == 0 {
		t.Error("Expected split_vertical to have keys")
	}
}

func TestKeybindRegistry_GetAction(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	tests := []struct {
		key  string
		want string
	}{
		{"super+v", config.ActionSplitVertical},
		{"Super+V", config.ActionSplitVertical},
		{"mod4+v", config.ActionSplitVertical},
		{"shift+super+tab", config.ActionFocusPrev},
		{"Super+F", config.ActionToggleFloat},
		{"super+3", config.SwitchWorkspaceAction(3)},
		{"super+shift+3", config.MoveToWorkspaceAction(3)},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if got := registry.GetAction(tc.key); got != tc.want {
				t.Errorf("GetAction(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestKeybindRegistry_GetKeysForDisplay(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	display := registry.GetKeysForDisplay(config.ActionFocusNext)
	if display != "Super+Tab, Super+J" {
		t.Errorf("Expected %q, got %q", "Super+Tab, Super+J", display)
	}
}

func TestKeybindRegistry_UnknownAction(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys("nonexistent_action")
	if len(keys) != 0 {
		t.Errorf("Expected empty keys for nonexistent action, got %v", keys)
	}
}

func TestKeybindRegistry_UnknownKey(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	action := registry.GetAction("ctrl+shift+alt+super+hyper+x")
	if action != "" {
		t.Errorf("Expected empty action for unbound key, got %q", action)
	}
}

func TestKeybindRegistry_ActionsOrder(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	actions := registry.Actions()
	if len(actions) != len(config.DefaultKeybindings()) {
		t.Fatalf("Expected %d actions, got %d", len(config.DefaultKeybindings()), len(actions))
	}
	seenWorkspace := false
	for _, a := range actions {
		isWorkspace := strings.Contains(a, "workspace_")
		if seenWorkspace && !isWorkspace {
			t.Fatalf("Layout action %q listed after workspace actions: %v", a, actions)
		}
		seenWorkspace = seenWorkspace || isWorkspace
	}
}

// =============================================================================
// Key Normalizer Tests
// =============================================================================

func TestKeyNormalizer(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		{"ctrl+a", "ctrl+a"},
		{"Ctrl+A", "ctrl+a"},
		{"control+a", "ctrl+a"},
		{"super+shift+1", "shift+super+1"},
		{"shift+super+1", "shift+super+1"},
		{"return", "return"},
		{"return", "enter"},
		{"esc", "escape"},
		{"ctrl++", "ctrl++"},
	}

	for _, tc := range tests {
		t.Run(tc.input+"->"+tc.expected, func(t *testing.T) {
			got := normalizer.NormalizeKey(tc.input)
			if len(got) == 0 {
				t.Fatalf("NormalizeKey(%q) returned empty slice", tc.input)
			}
			found := false
			for _, k := range got {
				if k == tc.expected {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("NormalizeKey(%q) = %v, want to contain %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestKeyNormalizer_ValidateKey(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input   string
		isValid bool
	}{
		{"ctrl+a", true},
		{"n", true},
		{"super+shift+space", true},
		{"esc", true},
		{"", false},
		{"   ", false},
		{"hyper+x", false},
		{"super+", false},
		{"ctrl+shift", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			valid, _ := normalizer.ValidateKey(tc.input)
			if valid != tc.isValid {
				t.Errorf("ValidateKey(%q) = %v, want %v", tc.input, valid, tc.isValid)
			}
		})
	}
}

// =============================================================================
// Action Descriptions Tests
// =============================================================================

func TestActionDescriptions(t *testing.T) {
	for action := range config.DefaultKeybindings() {
		desc, ok := config.ActionDescriptions[action]
		if !ok {
			t.Errorf("Expected description for action %q", action)
			continue
		}
		if desc == "" {
			t.Errorf("Description for %q should not be empty", action)
		}
	}
}

// =============================================================================
// Watch Tests
// =============================================================================

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteConfig(path, config.DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.UserConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, func(cfg *config.UserConfig, err error) {
			if err == nil {
				reloaded <- cfg
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[layout]\ninner_gap = 2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Layout.InnerGap != 2 {
			t.Errorf("Expected reloaded inner gap 2, got %d", cfg.Layout.InnerGap)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error after cancel: %v", err)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkKeybindRegistry_GetAction(b *testing.B) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = registry.GetAction("super+v")
	}
}

func BenchmarkNormalizeKey(b *testing.B) {
	normalizer := config.NewKeyNormalizer()
	keys := []string{"ctrl+a", "Super+Shift+B", "alt+1", "return"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = normalizer.NormalizeKey(keys[i%len(keys)])
	}
}
