// Package keymap maps canonical key tokens to browser commands.
//
// A Table is an ordered, read-only list of entries. Each entry is guarded by
// a mode predicate, a token and a composing predicate, and yields an action
// together with a propagation decision. Dispatch is a pure function of the
// current mode, the token and whether the leader window is open.
//
// # Precedence
//
// Composing takes precedence over everything else. While the leader window
// is open only compose entries are consulted; a key that matches none of
// them is swallowed so it cannot leak into the page while a command is
// pending. Outside the window the first matching entry in table order wins,
// and a key matching nothing passes through to the host.
//
// # Bindings
//
// User bindings are written as Binding values, usually decoded from the
// configuration file, and are placed ahead of the defaults:
//
//	keys = "<C-e>"
//	action = "scroll.down"
//	modes = ["normal", "insert"]
package keymap
