package host

import "fmt"

// Scripts is the set of snippets the engine sends through a ScriptBridge.
// Hosts embedding a different page runtime provide their own set.
type Scripts struct {
	// Name identifies the dialect in logs.
	Name string

	// ModeQuery must complete with a boolean: true when the focused element
	// accepts free text.
	ModeQuery string

	// ScrollBy is a format string taking dx and dy in pixels.
	ScrollBy string

	// ScrollTop and ScrollBottom jump to the document edges.
	ScrollTop    string
	ScrollBottom string
}

// Scroll renders the ScrollBy snippet.
func (s Scripts) Scroll(dx, dy int) string {
	return fmt.Sprintf(s.ScrollBy, dx, dy)
}

// JavaScript is the snippet set for web content.
var JavaScript = Scripts{
	Name: "javascript",
	ModeQuery: `(function () {
  var el = document.activeElement;
  while (el && el.shadowRoot && el.shadowRoot.activeElement) {
    el = el.shadowRoot.activeElement;
  }
  if (!el || el === document.body) return false;
  if (el.isContentEditable) return true;
  var tag = el.tagName;
  if (tag === "TEXTAREA" || tag === "SELECT") return !el.disabled && !el.readOnly;
  if (tag !== "INPUT") return false;
  var type = (el.getAttribute("type") || "text").toLowerCase();
  var text = ["text", "search", "email", "password", "url", "tel", "number",
    "date", "datetime-local", "month", "time", "week"];
  return text.indexOf(type) >= 0 && !el.disabled && !el.readOnly;
})()`,
	ScrollBy:     "window.scrollBy(%d, %d);",
	ScrollTop:    "window.scrollTo(window.scrollX, 0);",
	ScrollBottom: "window.scrollTo(window.scrollX, document.documentElement.scrollHeight);",
}
