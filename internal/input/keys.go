package input

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var modifierAliases = map[string]string{
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"ctrl":    "ctrl",
	"control": "ctrl",
}

var keyAliases = map[string]string{
	"return": "enter",
	"esc":    "escape",
	"del":    "delete",
	"bksp":   "backspace",
}

// Combo is a key plus held modifiers, such as cmd+shift+g.
type Combo struct {
	Key       string
	Modifiers []string
}

// ParseCombo parses "mod+mod+key". Names are case-insensitive and
// aliases (command, option, control, return) are canonicalised.
func ParseCombo(s string) (Combo, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	var c Combo
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Combo{}, fmt.Errorf("invalid key combo %q: empty key", s)
		}
		if i < len(parts)-1 {
			mod, ok := modifierAliases[p]
			if !ok {
				return Combo{}, fmt.Errorf("invalid key combo %q: unknown modifier %q", s, p)
			}
			c.Modifiers = append(c.Modifiers, mod)
			continue
		}
		if alias, ok := keyAliases[p]; ok {
			p = alias
		}
		c.Key = p
	}
	return c, nil
}

// String renders the canonical form.
func (c Combo) String() string {
	return strings.Join(append(append([]string{}, c.Modifiers...), c.Key), "+")
}

// Tap sends c through d.
func (c Combo) Tap(ctx context.Context, d Driver) error {
	return d.KeyTap(ctx, c.Key, c.Modifiers...)
}

// Normalize returns text in Unicode NFC so composed characters in paths
// type as a single key stroke.
func Normalize(text string) string {
	return norm.NFC.String(text)
}
