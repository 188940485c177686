package config

import (
	"fmt"
	"slices"
	"strings"
)

// Layout actions that can be bound to keys.
const (
	ActionSplitVertical   = "split_vertical"
	ActionSplitHorizontal = "split_horizontal"
	ActionToggleFloat     = "toggle_float"
	ActionCloseWindow     = "close_window"
	ActionGrow            = "grow"
	ActionShrink          = "shrink"
	ActionFocusNext       = "focus_next"
	ActionFocusPrev       = "focus_prev"
)

// SwitchWorkspaceAction returns the action name for switching to workspace n.
func SwitchWorkspaceAction(n int) string { return fmt.Sprintf("switch_workspace_%d", n) }

// MoveToWorkspaceAction returns the action name for sending the focused
// window to workspace n.
func MoveToWorkspaceAction(n int) string { return fmt.Sprintf("move_to_workspace_%d", n) }

// ActionDescriptions maps every bindable action to a human readable label.
var ActionDescriptions = func() map[string]string {
	d := map[string]string{
		ActionSplitVertical:   "Split focused tile side by side",
		ActionSplitHorizontal: "Split focused tile top and bottom",
		ActionToggleFloat:     "Toggle floating",
		ActionCloseWindow:     "Close window",
		ActionGrow:            "Grow focused tile",
		ActionShrink:          "Shrink focused tile",
		ActionFocusNext:       "Focus next window",
		ActionFocusPrev:       "Focus previous window",
	}
	for i := 1; i <= MaxWorkspaces; i++ {
		d[SwitchWorkspaceAction(i)] = fmt.Sprintf("Switch to workspace %d", i)
		d[MoveToWorkspaceAction(i)] = fmt.Sprintf("Move window to workspace %d", i)
	}
	return d
}()

// DefaultKeybindings returns the built-in action to keys mapping.
func DefaultKeybindings() map[string][]string {
	kb := map[string][]string{
		ActionSplitVertical:   {"super+v"},
		ActionSplitHorizontal: {"super+h"},
		ActionToggleFloat:     {"super+f"},
		ActionCloseWindow:     {"super+c"},
		ActionGrow:            {"super+equal"},
		ActionShrink:          {"super+minus"},
		ActionFocusNext:       {"super+tab", "super+j"},
		ActionFocusPrev:       {"super+shift+tab", "super+k"},
	}
	for i := 1; i <= MaxWorkspaces; i++ {
		kb[SwitchWorkspaceAction(i)] = []string{fmt.Sprintf("super+%d", i)}
		kb[MoveToWorkspaceAction(i)] = []string{fmt.Sprintf("super+shift+%d", i)}
	}
	return kb
}

// KeybindRegistry resolves keys to actions and back.
type KeybindRegistry struct {
	actionToKeys map[string][]string
	keyToAction  map[string]string
	normalizer   *KeyNormalizer
}

// NewKeybindRegistry builds a registry from the configured bindings. When
// two actions claim the same key the one sorting first wins.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		actionToKeys: make(map[string][]string),
		keyToAction:  make(map[string]string),
		normalizer:   NewKeyNormalizer(),
	}

	actions := make([]string, 0, len(cfg.Keybindings))
	for action := range cfg.Keybindings {
		actions = append(actions, action)
	}
	slices.Sort(actions)

	for _, action := range actions {
		keys := cfg.Keybindings[action]
		r.actionToKeys[action] = keys
		for _, key := range keys {
			for _, variant := range r.normalizer.NormalizeKey(key) {
				if _, taken := r.keyToAction[variant]; !taken {
					r.keyToAction[variant] = action
				}
			}
		}
	}
	return r
}

// GetKeys returns the keys bound to action.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.actionToKeys[action]
}

// GetAction returns the action bound to key, or "" if none.
func (r *KeybindRegistry) GetAction(key string) string {
	variants := r.normalizer.NormalizeKey(key)
	if len(variants) == 0 {
		return ""
	}
	return r.keyToAction[variants[0]]
}

// GetKeysForDisplay formats the keys bound to action for help output.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.actionToKeys[action]
	if len(keys) == 0 {
		return ""
	}
	display := make([]string, len(keys))
	for i, k := range keys {
		display[i] = formatKey(k)
	}
	return strings.Join(display, ", ")
}

// Actions returns all bound actions in a stable order: layout actions first,
// then workspace actions by number.
func (r *KeybindRegistry) Actions() []string {
	actions := make([]string, 0, len(r.actionToKeys))
	for action := range r.actionToKeys {
		actions = append(actions, action)
	}
	slices.SortFunc(actions, func(a, b string) int {
		wa, wb := strings.Contains(a, "workspace_"), strings.Contains(b, "workspace_")
		switch {
		case wa && !wb:
			return 1
		case !wa && wb:
			return -1
		}
		return strings.Compare(a, b)
	})
	return actions
}

func formatKey(key string) string {
	parts := strings.Split(key, "+")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "+")
}

// KeyNormalizer turns user-written key combos into a canonical form.
type KeyNormalizer struct {
	modifierAliases map[string]string
	keyAliases      map[string][]string
}

var modifierOrder = []string{"ctrl", "alt", "shift", "super"}

// NewKeyNormalizer returns a normalizer with the standard aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		modifierAliases: map[string]string{
			"ctrl":    "ctrl",
			"control": "ctrl",
			"alt":     "alt",
			"mod1":    "alt",
			"opt":     "alt",
			"option":  "alt",
			"shift":   "shift",
			"super":   "super",
			"mod4":    "super",
			"logo":    "super",
			"win":     "super",
			"cmd":     "super",
		},
		keyAliases: map[string][]string{
			"return": {"enter"},
			"enter":  {"return"},
			"esc":    {"escape"},
			"escape": {"esc"},
		},
	}
}

// NormalizeKey returns the canonical form of key followed by any aliases it
// is equivalent to. Modifiers are lowercased and ordered ctrl, alt, shift,
// super. An empty or malformed key yields nil.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	mods, base, ok := n.split(key)
	if !ok {
		return nil
	}
	prefix := ""
	for _, m := range modifierOrder {
		if mods[m] {
			prefix += m + "+"
		}
	}
	out := []string{prefix + base}
	for _, alias := range n.keyAliases[base] {
		out = append(out, prefix+alias)
	}
	return out
}

// ValidateKey reports whether key is a usable combo, with a reason if not.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	if strings.TrimSpace(key) == "" {
		return false, "empty key"
	}
	if _, _, ok := n.split(key); !ok {
		return false, "expected [modifier+...]key"
	}
	return true, ""
}

func (n *KeyNormalizer) split(key string) (map[string]bool, string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, "", false
	}
	parts := strings.Split(key, "+")
	// "ctrl++" binds the plus key itself.
	if strings.HasSuffix(key, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}
	base := parts[len(parts)-1]
	if base == "" {
		return nil, "", false
	}
	mods := make(map[string]bool)
	for _, p := range parts[:len(parts)-1] {
		m, ok := n.modifierAliases[p]
		if !ok {
			return nil, "", false
		}
		mods[m] = true
	}
	if _, isMod := n.modifierAliases[base]; isMod && len(parts) > 1 {
		return nil, "", false
	}
	return mods, base, true
}
