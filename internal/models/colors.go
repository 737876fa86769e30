package models

import "strings"

// Colorless is the query-side marker admitting cards with an empty color identity.
// It never appears in a card's color_identity; it only exists in filters.
const Colorless = "C"

// ColorSymbols are the five color identity symbols in WUBRG order.
var ColorSymbols = []string{"W", "U", "B", "R", "G"}

// AllColors returns every selectable color symbol including the colorless marker.
func AllColors() []string {
	return append(append([]string{}, ColorSymbols...), Colorless)
}

// ColorFilter is a predicate over card color identities, built once per query
// from the user's color selection.
type ColorFilter struct {
	allowed   map[string]bool
	colorless bool
}

// NewColorFilter builds a filter from the selected color symbols. Symbols are
// case-insensitive; unknown symbols are ignored. Selecting Colorless admits
// cards whose color identity is empty.
func NewColorFilter(colors []string) *ColorFilter {
	f := &ColorFilter{allowed: make(map[string]bool)}
	for _, c := range colors {
		switch s := strings.ToUpper(strings.TrimSpace(c)); s {
		case Colorless:
			f.colorless = true
		case "W", "U", "B", "R", "G":
			f.allowed[s] = true
		}
	}
	return f
}

// Empty reports whether nothing is selected. An empty filter admits no card,
// colorless ones included.
func (f *ColorFilter) Empty() bool {
	return len(f.allowed) == 0 && !f.colorless
}

// Matches reports whether a card with the given color identity passes the filter:
// the identity intersects the selected colors, or the identity is empty and
// Colorless was selected.
func (f *ColorFilter) Matches(identity []string) bool {
	if len(identity) == 0 {
		return f.colorless
	}
	for _, c := range identity {
		if f.allowed[strings.ToUpper(c)] {
			return true
		}
	}
	return false
}
