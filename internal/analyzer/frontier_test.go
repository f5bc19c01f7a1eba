package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/ability"
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/action"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

func TestFrontier_OneFixAwayCandidateReportsDownstreamCount(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "2"}, false)

	// s0 -> s1 is low-contrast (blocks low_vision's perceive), so s1 sits
	// just outside the subgraph; s1 -> s2 is otherwise fine.
	blocked := g.AddEdge(s0, s1, access.Element{Xpath: "/blocked"}, click())
	blocked.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ContrastRatio: 1.0})

	onward := g.AddEdge(s1, s2, access.Element{Xpath: "/onward"}, click())
	onward.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ContrastRatio: 7.0})

	lv := ability.New("low_vision", ability.LowVision{})
	candidates := Frontier(g, lv)

	require.Len(t, candidates, 1)
	require.Equal(t, s1.ID, candidates[0].State)
	require.Equal(t, 2, candidates[0].NewStatesIncluded, "s1 and the downstream s2 both become reachable")
	require.Len(t, candidates[0].ElementsNeeded, 1)
	require.Equal(t, "/blocked", candidates[0].ElementsNeeded[0].Xpath)
}

func TestFrontier_DownstreamUnclaimedActionExcludesCandidate(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "2"}, false)

	blocked := g.AddEdge(s0, s1, access.Element{Xpath: "/blocked"}, click())
	blocked.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ContrastRatio: 1.0})

	drag := g.AddEdge(s1, s2, access.Element{Xpath: "/drag"}, action.New("drag_and_drop", false, nil, nil, nil))
	drag.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})

	lv := ability.New("low_vision", ability.LowVision{})
	candidates := Frontier(g, lv)
	require.Empty(t, candidates, "s1's only outgoing edge is drag_and_drop, which low_vision never claims")
}
