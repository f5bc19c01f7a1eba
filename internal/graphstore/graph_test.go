package graphstore

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
	"github.com/stretchr/testify/require"
)

// edgeShape is what TestPath_StructuralShapeMatchesExpectedEdgeSequence diffs
// instead of comparing *Edge directly, since Edge carries a sync.Mutex that
// go-cmp refuses to walk into without an Exporter.
type edgeShape struct {
	SrcID, DstID int
	Xpath        string
}

func shapeOf(path []*Edge) []edgeShape {
	shape := make([]edgeShape, len(path))
	for i, e := range path {
		shape[i] = edgeShape{SrcID: e.Src.ID, DstID: e.Dst.ID, Xpath: e.Element.Xpath}
	}
	return shape
}

func TestAddState_DedupesByPipeline(t *testing.T) {
	g := New(compare.Default())
	dom := `<html><body><div>a</div></body></html>`

	inserted, s1, err := g.AddState(access.StateData{DOM: dom}, false)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, s2, err := g.AddState(access.StateData{DOM: dom}, false)
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, s1.ID, s2.ID)
}

func TestAddState_SetsStartStateOnlyOnce(t *testing.T) {
	g := New(compare.Default())
	require.Nil(t, g.StartState())

	_, s1, err := g.AddState(access.StateData{DOM: "<html><body>a</body></html>"}, false)
	require.NoError(t, err)
	require.Equal(t, s1, g.StartState())

	_, _, err = g.AddState(access.StateData{DOM: "<html><body>b</body></html>"}, false)
	require.NoError(t, err)
	require.Equal(t, s1, g.StartState())
}

func TestPath_SelfIsEmpty(t *testing.T) {
	g := New(compare.Default())
	_, s, _ := g.AddState(access.StateData{DOM: "<html><body>a</body></html>"}, false)
	require.Equal(t, []*Edge{}, g.Path(s, s, "build"))
}

func TestPath_FindsShortestSupportingUser(t *testing.T) {
	g := New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "<html><body>2</body></html>"}, false)

	e1 := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, nil)
	e1.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})
	e2 := g.AddEdge(s1, s2, access.Element{Xpath: "/b"}, nil)
	e2.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})

	path := g.Path(s0, s2, "build")
	require.Len(t, path, 2)
	require.Equal(t, e1, path[0])
	require.Equal(t, e2, path[1])

	require.Nil(t, g.Path(s0, s2, "nobody"))
}

func TestPath_StructuralShapeMatchesExpectedEdgeSequence(t *testing.T) {
	g := New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "<html><body>2</body></html>"}, false)

	e1 := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, nil)
	e1.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})
	e2 := g.AddEdge(s1, s2, access.Element{Xpath: "/b"}, nil)
	e2.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})

	want := []edgeShape{
		{SrcID: s0.ID, DstID: s1.ID, Xpath: "/a"},
		{SrcID: s1.ID, DstID: s2.ID, Xpath: "/b"},
	}
	got := shapeOf(g.Path(s0, s2, "build"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("path shape mismatch (-want +got):\n%s", diff)
	}
}

func TestEdgeMetrics_MonotoneBestUpdate(t *testing.T) {
	g := New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, nil)

	e.UpdateMetrics("low_vision", metrics.EdgeMetrics{AbilityScore: 0.3, ActTime: 2 * time.Second})
	e.UpdateMetrics("low_vision", metrics.EdgeMetrics{AbilityScore: 0.1, ActTime: 1 * time.Second})

	m, ok := e.Metrics("low_vision")
	require.True(t, ok)
	require.Equal(t, 0.3, m.AbilityScore, "ability score must never regress")
	require.Equal(t, time.Second, m.ActTime, "time fields take the minimum")
}

func TestEdgesForState_SortedDeterministic(t *testing.T) {
	g := New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html><body>0</body></html>"}, false)
	_, s2, _ := g.AddState(access.StateData{DOM: "<html><body>2</body></html>"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "<html><body>1</body></html>"}, false)

	g.AddEdge(s0, s2, access.Element{Xpath: "/b"}, nil)
	g.AddEdge(s0, s1, access.Element{Xpath: "/a"}, nil)

	edges := g.EdgesForState(s0, "", true)
	require.Len(t, edges, 2)
	require.True(t, edges[0].Dst.ID < edges[1].Dst.ID)
}
