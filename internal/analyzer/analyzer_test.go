package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// chainGraph builds s0 -> s1 -> s2 where the s1->s2 edge targets an
// undersized element, so the atomic violation attaches to s1 (the edge's
// source) and s0 should see it surface as one composite finding on its own
// edge into s1.
func chainGraph(t *testing.T) (*graphstore.Graph, *graphstore.State, *graphstore.State, *graphstore.State, *graphstore.Edge) {
	t.Helper()
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0", URL: "/0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1", URL: "/1"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "2", URL: "/2"}, false)

	e1 := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/a[1]", Tag: "a"}, click())
	e1.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 50, ElementHeight: 50, ContrastRatio: 7.0})

	small := g.AddEdge(s1, s2, access.Element{Xpath: "/html/body/a[2]", Tag: "a"}, click())
	small.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 10, ElementHeight: 10, ContrastRatio: 7.0})

	return g, s0, s1, s2, e1
}

func TestAnalyze_AtomicViolationAttachesToEdgeSource(t *testing.T) {
	g, _, s1, s2, _ := chainGraph(t)
	reg := &Registry{rules: []Rule{TargetSizeRule{}}}
	report := Analyze(g, reg, "build")

	require.Len(t, report[s1.ID].Violations, 1)
	require.Equal(t, "target_too_small", report[s1.ID].Violations[0].Type)
	require.Empty(t, report[s2.ID].Violations, "s2 has no outgoing edges of its own")
}

func TestAnalyze_CompositeViolationCarriesDownstreamCount(t *testing.T) {
	g, s0, s1, _, e1 := chainGraph(t)
	reg := &Registry{rules: []Rule{TargetSizeRule{}}}
	report := Analyze(g, reg, "build")

	require.Len(t, report[s0.ID].Violations, 1)
	composite := report[s0.ID].Violations[0]
	require.Equal(t, CategoryComposite, composite.Category)
	require.Equal(t, 1, composite.Count)
	require.Equal(t, e1.Element.Xpath, composite.Element.Xpath)

	require.Len(t, report[s1.ID].Violations, 1, "s1's own violation, no further composite beyond s2")
	require.Equal(t, CategoryTargetSize, report[s1.ID].Violations[0].Category)
}

func TestAnalyze_NoViolationsProducesNoComposite(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/a[1]", Tag: "a"}, click())
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 50, ElementHeight: 50, ContrastRatio: 7.0})

	reg := &Registry{rules: []Rule{TargetSizeRule{}, ContrastRule{}}}
	report := Analyze(g, reg, "build")

	require.Empty(t, report[s0.ID].Violations)
	require.Empty(t, report[s1.ID].Violations)
}
