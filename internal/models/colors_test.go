package models

import "testing"

func TestColorFilter_Intersection(t *testing.T) {
	f := NewColorFilter([]string{"U", "R"})
	if !f.Matches([]string{"U"}) {
		t.Error("mono-blue should match {U,R}")
	}
	if !f.Matches([]string{"W", "R"}) {
		t.Error("boros should match {U,R} via R")
	}
	if f.Matches([]string{"G", "B"}) {
		t.Error("golgari should not match {U,R}")
	}
}

func TestColorFilter_ColorlessSpecialCase(t *testing.T) {
	f := NewColorFilter([]string{"U", "C"})
	if !f.Matches(nil) {
		t.Error("empty identity should match when C is selected")
	}
	if !f.Matches([]string{}) {
		t.Error("empty identity should match when C is selected")
	}
	// C alone never matches a colored card.
	onlyC := NewColorFilter([]string{"C"})
	if onlyC.Matches([]string{"U"}) {
		t.Error("colored card should not match colorless-only selection")
	}
	if !onlyC.Matches(nil) {
		t.Error("colorless card should match colorless-only selection")
	}
}

func TestColorFilter_WithoutColorlessRejectsEmptyIdentity(t *testing.T) {
	f := NewColorFilter([]string{"W", "U", "B", "R", "G"})
	if f.Matches(nil) {
		t.Error("empty identity should not match without C selected")
	}
}

func TestColorFilter_EmptySelection(t *testing.T) {
	f := NewColorFilter(nil)
	if !f.Empty() {
		t.Error("nil selection should be empty")
	}
	if f.Matches([]string{"U"}) || f.Matches(nil) {
		t.Error("empty selection should admit nothing")
	}
}

func TestColorFilter_NormalizesSymbols(t *testing.T) {
	f := NewColorFilter([]string{" u ", "g", "X"})
	if !f.Matches([]string{"U"}) || !f.Matches([]string{"g"}) {
		t.Error("symbols should be case-insensitive and trimmed")
	}
	if f.Matches([]string{"X"}) {
		t.Error("unknown symbols should be ignored")
	}
}
