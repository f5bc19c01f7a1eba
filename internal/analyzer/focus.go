package analyzer

import (
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/colorcontrast"
)

// FocusIndicatorMinRatio is the minimum contrast ratio a focus indicator's
// changed style must clear against its unfocused counterpart (spec.md
// §4.10 "Focus analysis"); below it the indicator is reported insufficient
// even when some visual change is present.
const FocusIndicatorMinRatio = 1.5

// AnalyzeFocus inspects one state's precomputed tab order and returns the
// invalid-ordering, insufficient-indicator, and keyboard-trap violations it
// finds (spec.md §4.10 "Focus analysis (per state)"). maxRevisits is the
// keyboard-trap threshold N (config.NumRevisits).
func AnalyzeFocus(order []access.TabEntry, maxRevisits int) []Violation {
	var out []Violation
	out = append(out, invalidOrderViolations(order)...)
	out = append(out, indicatorViolations(order)...)
	out = append(out, keyboardTrapViolations(order, maxRevisits)...)
	return out
}

// invalidOrderViolations flags a consecutive pair whose tab index
// increases but whose screen position regresses in both axes -- a reading
// order that visually jumps backward.
func invalidOrderViolations(order []access.TabEntry) []Violation {
	var out []Violation
	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		if cur.TabIndex <= prev.TabIndex {
			continue
		}
		if cur.X < prev.X && cur.Y < prev.Y {
			out = append(out, Violation{
				Type:     "invalid_tab_order",
				Level:    LevelError,
				Category: CategoryFocusOrder,
				Element:  cur.Element,
				Code:     "SC-2.4.3",
			})
		}
	}
	return out
}

// indicatorViolations flags entries whose focused and unfocused styles are
// indistinguishable, or whose change fails the minimum contrast ratio.
// Entries with no captured style on either side are skipped.
func indicatorViolations(order []access.TabEntry) []Violation {
	var out []Violation
	for _, entry := range order {
		if entry.FocusedStyle == (access.Style{}) && entry.UnfocusedStyle == (access.Style{}) {
			continue
		}
		if entry.FocusedStyle == entry.UnfocusedStyle {
			out = append(out, Violation{
				Type:     "missing_focus_indicator",
				Level:    LevelError,
				Category: CategoryFocusVisible,
				Element:  entry.Element,
				Code:     "SC-2.4.7",
			})
			continue
		}
		ratio := focusIndicatorContrast(entry)
		if ratio < FocusIndicatorMinRatio {
			out = append(out, Violation{
				Type:     "insufficient_focus_indicator",
				Level:    LevelError,
				Category: CategoryFocusVisible,
				Element:  entry.Element,
				Code:     "SC-2.4.7",
			})
		}
	}
	return out
}

// focusIndicatorContrast measures the indicator's visual strength as the
// best of its outline, border, or background-color contrast against the
// unfocused state, since any one of those can carry the indicator.
func focusIndicatorContrast(entry access.TabEntry) float64 {
	best := 0.0
	pairs := [][2]string{
		{entry.FocusedStyle.Outline, entry.UnfocusedStyle.Outline},
		{entry.FocusedStyle.Border, entry.UnfocusedStyle.Border},
		{entry.FocusedStyle.BackgroundColor, entry.UnfocusedStyle.BackgroundColor},
	}
	for _, p := range pairs {
		if p[0] == "" || p[1] == "" || p[0] == p[1] {
			continue
		}
		if r := colorcontrast.Ratio(p[0], p[1]); r > best {
			best = r
		}
	}
	return best
}

// keyboardTrapViolations flags elements visited more than maxRevisits
// times during tab-order generation.
func keyboardTrapViolations(order []access.TabEntry, maxRevisits int) []Violation {
	var out []Violation
	for _, entry := range order {
		if entry.VisitCount > maxRevisits {
			out = append(out, Violation{
				Type:     "keyboard_trap",
				Level:    LevelError,
				Category: CategoryFocusOrder,
				Element:  entry.Element,
				Code:     "SC-2.4.3",
			})
		}
	}
	return out
}
