package simcrawl

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

type capturedBuildData struct{ captured bool }

func (c capturedBuildData) IsCaptured() bool { return c.captured }

func newClickAction() access.Action {
	return action.New("click", false, nil, nil, nil)
}

func TestWalk_LowVisionSkipsLowContrastEdge(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)

	click := newClickAction()
	edge := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, click)
	edge.UpdateMetrics("build", metrics.EdgeMetrics{
		AbilityScore:  1,
		ContrastRatio: 1.0, // fails LowVision's perceive gate
		BuildData:     capturedBuildData{captured: true},
	})

	lv := ability.New("low_vision", ability.LowVision{})
	Walk(g, lv, "build")

	_, ok := edge.Metrics("low_vision")
	require.False(t, ok, "low contrast edge must not be attributed to low_vision")
}

func TestWalk_AttributesPassingEdgeAndEnqueuesDestination(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "<html><body>2</body></html>"}, false)

	click := newClickAction()
	e1 := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, click)
	e1.UpdateMetrics("build", metrics.EdgeMetrics{
		AbilityScore:  1,
		ContrastRatio: 7.0,
		ElementWidth:  50, ElementHeight: 50,
		BuildData: capturedBuildData{captured: true},
	})
	e2 := g.AddEdge(s1, s2, access.Element{Xpath: "/b"}, click)
	e2.UpdateMetrics("build", metrics.EdgeMetrics{
		AbilityScore:  1,
		ContrastRatio: 7.0,
		ElementWidth:  50, ElementHeight: 50,
		BuildData: capturedBuildData{captured: true},
	})

	lv := ability.New("low_vision", ability.LowVision{})
	Walk(g, lv, "build")

	m1, ok := e1.Metrics("low_vision")
	require.True(t, ok)
	require.Greater(t, m1.AbilityScore, 0.0)

	m2, ok := e2.Metrics("low_vision")
	require.True(t, ok)
	require.Greater(t, m2.AbilityScore, 0.0)

	path := g.Path(s0, s2, "low_vision")
	require.Len(t, path, 2)
}

func TestWalk_UncapturedBuildDataIsSkipped(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)

	click := newClickAction()
	edge := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, click)
	edge.UpdateMetrics("build", metrics.EdgeMetrics{
		AbilityScore: 1,
		BuildData:    capturedBuildData{captured: false},
	})

	lv := ability.New("low_vision", ability.LowVision{})
	Walk(g, lv, "build")

	_, ok := edge.Metrics("low_vision")
	require.False(t, ok, "edge seeded from uncaptured build data must never be attributed")
}
