package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

func buildMetrics() metrics.EdgeMetrics {
	return metrics.EdgeMetrics{AbilityScore: 1}
}

func TestXpathSimilarity_IdenticalIsOne(t *testing.T) {
	require.Equal(t, 1.0, xpathSimilarity("/html/body/a[1]", "/html/body/a[1]"))
}

func TestXpathSimilarity_DivergingRootIsZero(t *testing.T) {
	require.Equal(t, 0.0, xpathSimilarity("/html/body/a", "/svg/title"))
}

func TestXpathSimilarity_PartialPrefixInBetween(t *testing.T) {
	got := xpathSimilarity("/html/body/ul/li[1]", "/html/body/ul/li[2]")
	require.Greater(t, got, 0.5)
	require.Less(t, got, 1.0)
}

// layoutGraph builds a 3-state chain s0 -> s1 -> s2; the two edges leave
// different states, so neither has a sibling, each keeps weight 1, and
// every threshold keeps both edges.
func layoutGraph(t *testing.T) *Subgraph {
	t.Helper()
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "2"}, false)

	e1 := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/ul/li[1]", Tag: "a"}, click())
	e1.UpdateMetrics("build", buildMetrics())
	e2 := g.AddEdge(s1, s2, access.Element{Xpath: "/html/body/ul/li[2]", Tag: "a"}, click())
	e2.UpdateMetrics("build", buildMetrics())

	return BuildSubgraph(g, "build")
}

func TestComputeLayouts_ProducesEveryAlgorithmThresholdPair(t *testing.T) {
	sg := layoutGraph(t)
	layouts := ComputeLayouts(sg)

	require.Len(t, layouts, 2*len(Thresholds))
	for _, threshold := range Thresholds {
		for _, algo := range []string{"force", "energy"} {
			key := LayoutKey(algo, threshold)
			layout, ok := layouts[key]
			require.True(t, ok, "missing layout %s", key)
			require.Len(t, layout, len(sg.States))
		}
	}
}

func TestComputeLayouts_PositionsAllFinite(t *testing.T) {
	sg := layoutGraph(t)
	layouts := ComputeLayouts(sg)

	for key, layout := range layouts {
		for id, p := range layout {
			require.False(t, isNaNOrInf(p.X), "%s: x for state %d is not finite", key, id)
			require.False(t, isNaNOrInf(p.Y), "%s: y for state %d is not finite", key, id)
		}
	}
}

func TestThresholdEdges_HighThresholdKeepsOnlySimilarEdges(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "2"}, false)
	_, s3, _ := g.AddState(access.StateData{DOM: "3"}, false)

	li1 := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/ul/li[1]", Tag: "a"}, click())
	li1.UpdateMetrics("build", buildMetrics())
	li2 := g.AddEdge(s0, s2, access.Element{Xpath: "/html/body/ul/li[2]", Tag: "a"}, click())
	li2.UpdateMetrics("build", buildMetrics())
	nav := g.AddEdge(s0, s3, access.Element{Xpath: "/html/footer/nav/a[1]", Tag: "a"}, click())
	nav.UpdateMetrics("build", buildMetrics())

	sg := BuildSubgraph(g, "build")
	adj := thresholdEdges(sg, 0.4)

	var xpaths []string
	for _, e := range adj[s0.ID] {
		xpaths = append(xpaths, e.Element.Xpath)
	}
	require.ElementsMatch(t, []string{"/html/body/ul/li[1]", "/html/body/ul/li[2]"}, xpaths,
		"the two similar list-item edges clear 0.4, the structurally distant nav edge does not")
}

func isNaNOrInf(f float64) bool {
	return f != f || f > 1e300 || f < -1e300
}
