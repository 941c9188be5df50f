// Package config loads modeshell configuration.
//
// Configuration is resolved in three steps, later steps overriding earlier
// ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. MODESHELL_* environment variables
//
// The result is validated as a whole; every problem is reported in one
// ValidationError. A Watcher reloads the file when it changes on disk.
//
// Example modeshell.toml:
//
//	[leader]
//	key = "<Space>"
//	timeout = "500ms"
//	insert_requires_ctrl = true
//
//	[scroll]
//	step = 40
//
//	[logging]
//	level = "debug"
//
//	[[bindings]]
//	keys = "x"
//	action = "view.close"
//
//	[[bindings]]
//	keys = "r"
//	action = "nav.reload"
//	leader = true
package config
