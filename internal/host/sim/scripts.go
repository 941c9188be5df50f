package sim

import "github.com/dshills/modeshell/internal/host"

// Lua is the snippet set understood by simulated pages.
var Lua = host.Scripts{
	Name:         "lua",
	ModeQuery:    "return page.editable()",
	ScrollBy:     "page.scroll_by(%d, %d)",
	ScrollTop:    "page.scroll_to(page.scroll_x, 0)",
	ScrollBottom: "page.scroll_to(page.scroll_x, page.height)",
}
