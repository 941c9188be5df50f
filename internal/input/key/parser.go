package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into its canonical Token.
//
// Supported formats:
//   - Single character: "j", "J", "1", "."
//   - Special keys: "Enter", "Escape", "Tab", "F12", "Space"
//   - With modifiers: "Ctrl+R", "Alt+Left", "Ctrl+Shift+I", "Ctrl++"
//   - Vim-style: "<C-j>", "<A-Left>", "<C-S-i>", "<CR>", "<Esc>", "<C-->"
func Parse(spec string) (Token, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Token{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseModifierStyle(spec)
	}

	return parseKey(spec, ModNone)
}

// parseVimStyle parses the inside of "<...>", e.g. "C-s", "A-Left", "CR".
func parseVimStyle(inner string) (Token, error) {
	mods, keyPart, err := splitModifiers(inner, "-", func(p string) (Modifier, bool) {
		switch strings.ToLower(p) {
		case "c":
			return ModCtrl, true
		case "a":
			return ModAlt, true
		case "s":
			return ModShift, true
		case "m", "d":
			return ModMeta, true
		}
		return ModNone, false
	})
	if err != nil {
		return Token{}, err
	}
	return parseKey(keyPart, mods)
}

// parseModifierStyle parses "Ctrl+S" style notation.
func parseModifierStyle(spec string) (Token, error) {
	mods, keyPart, err := splitModifiers(spec, "+", func(p string) (Modifier, bool) {
		m := ModifierFromName(p)
		return m, m != ModNone
	})
	if err != nil {
		return Token{}, err
	}
	return parseKey(keyPart, mods)
}

// splitModifiers splits s on sep into modifiers and a trailing key part.
// A trailing doubled separator names the separator itself as the key.
func splitModifiers(s, sep string, lookup func(string) (Modifier, bool)) (Modifier, string, error) {
	var keyPart string
	if strings.HasSuffix(s, sep+sep) {
		keyPart = sep
		s = strings.TrimSuffix(s, sep+sep)
	} else if i := strings.LastIndex(s, sep); i >= 0 {
		keyPart = s[i+1:]
		s = s[:i]
	} else {
		return ModNone, s, nil
	}

	var mods Modifier
	if s == "" {
		return mods, keyPart, nil
	}
	for _, p := range strings.Split(s, sep) {
		p = strings.TrimSpace(p)
		m, ok := lookup(p)
		if !ok {
			return ModNone, "", fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(m)
	}
	return mods, keyPart, nil
}

// parseKey resolves a key name or single character and normalizes it.
func parseKey(keyPart string, mods Modifier) (Token, error) {
	if keyPart == "" {
		return Token{}, ErrInvalidSpec
	}
	if keyPart != " " {
		keyPart = strings.TrimSpace(keyPart)
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		return Normalize(Event{Key: KeyRune, Rune: runes[0], Modifiers: mods}), nil
	}

	lower := strings.ToLower(keyPart)
	if r, ok := runeNameMap[lower]; ok {
		return Normalize(Event{Key: KeyRune, Rune: r, Modifiers: mods}), nil
	}
	if k := KeyFromName(lower); k != KeyNone {
		return Normalize(Event{Key: k, Modifiers: mods}), nil
	}

	return Token{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Token {
	t, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return t
}

// NormalizeSpec parses and re-formats a key specification to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	t, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return t.VimString(), nil
}
