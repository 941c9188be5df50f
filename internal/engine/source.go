package engine

// Source identifies which capture surface delivered a key event.
type Source uint8

const (
	// SourceWindow is the host window.
	SourceWindow Source = iota
	// SourceContent is the content view.
	SourceContent
)

// String returns "window" or "content".
func (s Source) String() string {
	if s == SourceContent {
		return "content"
	}
	return "window"
}
