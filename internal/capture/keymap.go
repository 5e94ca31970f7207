package capture

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// Linux input key codes (linux/input-event-codes.h) for the names a binding
// may use.
var keyCodes = map[string]uint16{
	"esc": 1, "1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,
	"tab": 15, "q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"enter": 28, "left_ctrl": 29,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"left_shift": 42,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,
	"right_shift": 54, "left_alt": 56, "space": 57, "caps_lock": 58,
	"right_ctrl": 97, "right_alt": 100,
	"up": 103, "left": 105, "right": 106, "down": 108,
}

var keyAliases = map[string]string{
	"escape":   "esc",
	"alt":      "left_alt",
	"shift":    "left_shift",
	"ctrl":     "left_ctrl",
	"return":   "enter",
	"spacebar": "space",
}

// Bindings maps physical key codes to logical keys.
type Bindings map[uint16]model.Key

// Lookup returns the logical key bound to code.
func (b Bindings) Lookup(code uint16) (model.Key, bool) {
	k, ok := b[code]
	return k, ok
}

// KeyCode resolves a key name such as "a", "space" or "left_alt".
func KeyCode(name string) (uint16, error) {
	n := normalizeKeyName(name)
	if alias, ok := keyAliases[n]; ok {
		n = alias
	}
	code, ok := keyCodes[n]
	if !ok {
		return 0, fmt.Errorf("unknown key %q (known: %s)", name, strings.Join(KeyNames(), ", "))
	}
	return code, nil
}

// KeyNames lists the accepted key names.
func KeyNames() []string {
	names := make([]string, 0, len(keyCodes))
	for name := range keyCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Label is the short on-screen name of a key ("A", "SPACE", "ESC").
func Label(name string) string {
	n := normalizeKeyName(name)
	if alias, ok := keyAliases[n]; ok {
		n = alias
	}
	return strings.ToUpper(strings.ReplaceAll(n, "_", " "))
}

// ParseBindings builds bindings from key names. leftAlias may be empty.
// Every name must be known and no two may share a physical key.
func ParseBindings(cfg model.Config) (Bindings, error) {
	b := Bindings{}
	add := func(role, name string, key model.Key) error {
		code, err := KeyCode(name)
		if err != nil {
			return fmt.Errorf("%s: %w", role, err)
		}
		if prev, ok := b[code]; ok {
			return fmt.Errorf("%s: key %q is already bound to %s", role, name, prev)
		}
		b[code] = key
		return nil
	}
	if err := add("left", cfg.Left, model.KeyLeft); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.LeftAlias) != "" {
		if err := add("left alias", cfg.LeftAlias, model.KeyLeft); err != nil {
			return nil, err
		}
	}
	if err := add("right", cfg.Right, model.KeyRight); err != nil {
		return nil, err
	}
	if err := add("shoot", cfg.Shoot, model.KeyShoot); err != nil {
		return nil, err
	}
	if err := add("quit", cfg.Quit, model.KeyQuit); err != nil {
		return nil, err
	}
	return b, nil
}

func normalizeKeyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(n, "-", "_")
}
