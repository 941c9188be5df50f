package key

import (
	"fmt"
	"time"
	"unicode"
)

// Event represents a single raw key press as delivered by a host surface.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Serial is the host's identifier for the physical key press.
	// Two surfaces seeing the same press report the same Serial.
	// Zero means the host does not provide one.
	Serial uint64

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(key Key, r rune, mods Modifier) Event {
	return Event{
		Key:       key,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return NewEvent(KeyRune, r, mods)
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return NewEvent(key, 0, mods)
}

// WithSerial returns a copy of the event carrying the host serial.
func (e Event) WithSerial(serial uint64) Event {
	e.Serial = serial
	return e
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// Token returns the canonical token for this event.
func (e Event) Token() Token {
	return Normalize(e)
}

// String returns the event as delivered, e.g. "Control+Shift+k".
// Unlike Token.String, nothing is folded: this is what the host sent.
func (e Event) String() string {
	name := keyLabel(e.Key, e.Rune)
	if mods := e.Modifiers.String(); mods != "" {
		return mods + "+" + name
	}
	return name
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s, Serial: %d}",
		e.Key.String(), e.Rune, e.Modifiers.String(), e.Serial)
}

// keyLabel returns the display name of a key, using the rune for KeyRune.
func keyLabel(k Key, r rune) string {
	if k != KeyRune {
		return k.String()
	}
	switch {
	case r == ' ':
		return "Space"
	case r == 0:
		return "Rune"
	case !unicode.IsPrint(r):
		return fmt.Sprintf("U+%04X", r)
	default:
		return string(r)
	}
}
