// Package mode determines whether the page is accepting text input.
//
// The authoritative answer lives in the content surface, which can only be
// reached asynchronously. The Oracle keeps the last answer in a cache that
// key dispatch reads without blocking, and refreshes it on every keystroke.
// The cached answer is therefore at most one keystroke old.
package mode

// Mode is the input mode derived from the focused page element.
type Mode uint8

const (
	// Normal means the focused element does not accept free text.
	// Bare keys are interpreted as commands.
	Normal Mode = iota

	// Insert means the focused element accepts free text.
	// Bare keys pass through to the page.
	Insert
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Insert:
		return "insert"
	default:
		return "unknown"
	}
}

// FromName parses a mode name. Unknown names report false.
func FromName(name string) (Mode, bool) {
	switch name {
	case "normal":
		return Normal, true
	case "insert":
		return Insert, true
	default:
		return Normal, false
	}
}

// Set is a bitmask of modes, used as a predicate.
type Set uint8

const (
	// InNormal matches Normal mode.
	InNormal Set = 1 << Normal
	// InInsert matches Insert mode.
	InInsert Set = 1 << Insert
	// InAny matches every mode.
	InAny = InNormal | InInsert
)

// Contains reports whether m is in the set.
func (s Set) Contains(m Mode) bool {
	return s&(1<<m) != 0
}

// String returns a "+"-joined list of the modes in the set.
func (s Set) String() string {
	switch s {
	case InNormal:
		return "normal"
	case InInsert:
		return "insert"
	case InAny:
		return "normal+insert"
	default:
		return "none"
	}
}

// SetOf builds a set from mode names. Unknown names are reported.
func SetOf(names ...string) (Set, []string) {
	var s Set
	var unknown []string
	for _, n := range names {
		m, ok := FromName(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		s |= 1 << m
	}
	return s, unknown
}
