package key

import (
	"strings"
	"unicode"
)

// Token is the canonical form of a key press. Tokens are compared by value
// and are the only key representation the command table matches on.
type Token struct {
	Key       Key
	Rune      rune
	Modifiers Modifier
}

// Normalize converts a raw event into its canonical token.
//
// For character keys the letter case is authoritative: a held Shift
// upper-cases a lower-case letter and is then dropped, so "I", "Shift+i"
// and "Shift+I" all yield the same token. Special keys keep Shift.
func Normalize(e Event) Token {
	switch {
	case e.Key == KeyNone:
		return Token{}
	case e.Key != KeyRune:
		return Token{Key: e.Key, Modifiers: e.Modifiers}
	case e.Rune == 0:
		return Token{}
	}

	r := e.Rune
	if e.Modifiers.HasShift() && unicode.IsLower(r) {
		r = unicode.ToUpper(r)
	}
	return Token{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: e.Modifiers.Without(ModShift),
	}
}

// RuneToken returns the token for an unmodified character.
func RuneToken(r rune) Token {
	return Token{Key: KeyRune, Rune: r}
}

// IsZero reports whether the token identifies no key.
func (t Token) IsZero() bool {
	return t.Key == KeyNone
}

// IsRune returns true if the token is a character key.
func (t Token) IsRune() bool {
	return t.Key == KeyRune
}

// WithModifiers returns a copy of the token with mods replaced.
// Shift is discarded for character tokens.
func (t Token) WithModifiers(mods Modifier) Token {
	if t.Key == KeyRune {
		mods = mods.Without(ModShift)
	}
	t.Modifiers = mods
	return t
}

// Bare returns the token without modifiers.
func (t Token) Bare() Token {
	t.Modifiers = ModNone
	return t
}

// String returns the diagnostic form, e.g. "Control+I" or "Alt+Left".
func (t Token) String() string {
	if t.IsZero() {
		return ""
	}
	name := keyLabel(t.Key, t.Rune)
	if mods := t.Modifiers.String(); mods != "" {
		return mods + "+" + name
	}
	return name
}

// VimString returns the Vim-style form, e.g. "j", "<C-I>", "<Space>", "<A-Left>".
// The result parses back to the same token.
func (t Token) VimString() string {
	if t.IsZero() {
		return ""
	}
	if t.Key == KeyRune && t.Modifiers.IsEmpty() && t.Rune != ' ' && t.Rune != '<' {
		return string(t.Rune)
	}

	var name string
	switch {
	case t.Key == KeyRune && t.Rune == ' ':
		name = "Space"
	case t.Key == KeyRune && t.Rune == '<':
		name = "lt"
	case t.Key == KeyRune:
		name = string(t.Rune)
	default:
		name = vimKeyName(t.Key)
	}

	var sb strings.Builder
	sb.WriteByte('<')
	if mods := t.Modifiers.ShortString(); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte('-')
	}
	sb.WriteString(name)
	sb.WriteByte('>')
	return sb.String()
}

func vimKeyName(k Key) string {
	switch k {
	case KeyEscape:
		return "Esc"
	case KeyEnter:
		return "CR"
	case KeyBackspace:
		return "BS"
	case KeyDelete:
		return "Del"
	case KeyInsert:
		return "Ins"
	default:
		return k.String()
	}
}
