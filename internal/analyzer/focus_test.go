package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
)

func TestAnalyzeFocus_InvalidOrderWhenPositionRegressesBothAxes(t *testing.T) {
	order := []access.TabEntry{
		{Element: access.Element{Xpath: "/a"}, TabIndex: 0, X: 100, Y: 100},
		{Element: access.Element{Xpath: "/b"}, TabIndex: 1, X: 10, Y: 10},
	}
	violations := AnalyzeFocus(order, 3)
	require.Len(t, violations, 1)
	require.Equal(t, "invalid_tab_order", violations[0].Type)
	require.Equal(t, "/b", violations[0].Element.Xpath)
}

func TestAnalyzeFocus_ForwardProgressIsNotFlagged(t *testing.T) {
	order := []access.TabEntry{
		{Element: access.Element{Xpath: "/a"}, TabIndex: 0, X: 10, Y: 10},
		{Element: access.Element{Xpath: "/b"}, TabIndex: 1, X: 20, Y: 20},
	}
	require.Empty(t, AnalyzeFocus(order, 3))
}

func TestAnalyzeFocus_MissingIndicatorWhenStylesIdentical(t *testing.T) {
	style := access.Style{Color: "rgb(0,0,0)"}
	order := []access.TabEntry{
		{Element: access.Element{Xpath: "/a"}, FocusedStyle: style, UnfocusedStyle: style},
	}
	violations := AnalyzeFocus(order, 3)
	require.Len(t, violations, 1)
	require.Equal(t, "missing_focus_indicator", violations[0].Type)
}

func TestAnalyzeFocus_InsufficientIndicatorBelowContrastThreshold(t *testing.T) {
	order := []access.TabEntry{
		{
			Element:        access.Element{Xpath: "/a"},
			FocusedStyle:   access.Style{Outline: "rgb(250, 250, 250)"},
			UnfocusedStyle: access.Style{Outline: "rgb(255, 255, 255)"},
		},
	}
	violations := AnalyzeFocus(order, 3)
	require.Len(t, violations, 1)
	require.Equal(t, "insufficient_focus_indicator", violations[0].Type)
}

func TestAnalyzeFocus_SufficientIndicatorNotFlagged(t *testing.T) {
	order := []access.TabEntry{
		{
			Element:        access.Element{Xpath: "/a"},
			FocusedStyle:   access.Style{Outline: "rgb(0, 0, 0)"},
			UnfocusedStyle: access.Style{Outline: "rgb(255, 255, 255)"},
		},
	}
	require.Empty(t, AnalyzeFocus(order, 3))
}

func TestAnalyzeFocus_KeyboardTrapWhenVisitCountExceedsMax(t *testing.T) {
	order := []access.TabEntry{
		{Element: access.Element{Xpath: "/trap"}, VisitCount: 4},
	}
	violations := AnalyzeFocus(order, 3)
	require.Len(t, violations, 1)
	require.Equal(t, "keyboard_trap", violations[0].Type)
}
