package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/config"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

func twoStateGraph(t *testing.T) (*graphstore.Graph, *graphstore.State, *graphstore.State, *graphstore.Edge) {
	t.Helper()
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/a[1]", Tag: "a"}, click())
	return g, s0, s1, e
}

func TestTargetSizeRule_FlagsSmallTarget(t *testing.T) {
	_, s0, _, e := twoStateGraph(t)
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 20, ElementHeight: 20})

	violations := TargetSizeRule{}.Check(s0, nil, []*graphstore.Edge{e}, "build")
	require.Len(t, violations, 1)
	require.Equal(t, "target_too_small", violations[0].Type)
}

func TestTargetSizeRule_ExemptsInlineAnchorInParagraph(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/p[1]/a[1]", Tag: "a"}, click())
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 10, ElementHeight: 10})

	violations := TargetSizeRule{}.Check(s0, nil, []*graphstore.Edge{e}, "build")
	require.Empty(t, violations)
}

func TestKeyboardOperabilityRule_FlagsElementAbsentFromTabOrder(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0", TabOrder: nil}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, click())
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})

	violations := KeyboardOperabilityRule{}.Check(s1, []*graphstore.Edge{e}, nil, "build")
	require.Len(t, violations, 1)
	require.Equal(t, "mouse_only_path", violations[0].Type)
}

func TestKeyboardOperabilityRule_PassesWhenElementInTabOrder(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{
		DOM:      "0",
		TabOrder: []access.TabEntry{{Element: access.Element{Xpath: "/a"}}},
	}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, click())
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})

	violations := KeyboardOperabilityRule{}.Check(s1, []*graphstore.Edge{e}, nil, "build")
	require.Empty(t, violations)
}

func TestContrastRule_FlagsBelowMinimum(t *testing.T) {
	_, s0, _, e := twoStateGraph(t)
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ContrastRatio: 2.0})

	violations := ContrastRule{}.Check(s0, nil, []*graphstore.Edge{e}, "build")
	require.Len(t, violations, 1)
	require.Equal(t, "insufficient_text_contrast", violations[0].Type)
}

func TestDefaultRegistry_AggregatesAllRules(t *testing.T) {
	reg := DefaultRegistry(*config.Default())
	_, s0, _, e := twoStateGraph(t)
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 10, ElementHeight: 10, ContrastRatio: 1.0})

	violations := reg.Check(s0, nil, []*graphstore.Edge{e}, "build")
	require.GreaterOrEqual(t, len(violations), 2, "both target-size and contrast rules should fire")
}
