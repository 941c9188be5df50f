// Package key provides key event types and normalization for the input system.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: A raw key press as delivered by a host surface
//   - Token: The canonical, comparable form of an Event
//
// # Normalization
//
// Hosts disagree on how Shift reaches a character key: some deliver "I" with
// the Shift flag set, some deliver "i" with Shift, some deliver "I" alone.
// Normalize folds all three into one Token whose rune carries the case and
// whose modifier set carries no Shift. Special keys keep Shift because there
// is no shifted form of the key itself.
//
// # Key Specifications
//
// Key specifications can be written in multiple formats:
//
//   - Simple keys: "j", "J", "1", "Enter", "Escape", "F12"
//   - With modifiers: "Ctrl+R", "Alt+Left", "Ctrl+Shift+I"
//   - Vim-style: "<C-j>", "<A-Left>", "<C-S-i>", "<Space>", "<Esc>"
package key
