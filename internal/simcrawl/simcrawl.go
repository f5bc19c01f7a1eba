// Package simcrawl implements the simulated re-crawl (C9): a BFS re-walk
// of an already-built graph for a non-build user, scoring each edge from
// its cached BuildData without ever touching the live interface.
package simcrawl

import (
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/logging"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"

	"go.uber.org/zap"
)

var log = logging.Get(logging.CategoryGraph)

// Walk scores every edge reachable from the graph's start state for user,
// seeding each scoring attempt from the edge's build-user BuildData
// (spec.md §4.9). Edges whose BuildData was never captured are skipped
// with a warning, never a fatal error.
func Walk(g *graphstore.Graph, user access.Scorer, buildUser string) {
	start := g.StartState()
	if start == nil {
		return
	}

	visited := map[int]bool{start.ID: true}
	queue := []*graphstore.State{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, edge := range g.EdgesForState(cur, "", true) {
			if edge.Action == nil {
				continue
			}
			built, ok := edge.Metrics(buildUser)
			if !ok || built.BuildData == nil || !built.BuildData.IsCaptured() {
				log.Warn("skipping edge with uncaptured build data",
					zap.Int("src", edge.Src.ID), zap.Int("dst", edge.Dst.ID), zap.String("element", edge.Element.Xpath))
				continue
			}

			seed := metrics.EdgeMetrics{
				BuildData:          built.BuildData,
				ContrastRatio:      built.ContrastRatio,
				ElementWidth:       built.ElementWidth,
				ElementHeight:      built.ElementHeight,
				NavigationDistance: built.NavigationDistance,
			}

			res := user.Score(access.AxisPerceive|access.AxisNavigate|access.AxisAct, nil, edge.Element, seed, edge.Action.Name())
			if res.Combined <= 0 {
				continue
			}
			seed.PcvScore = res.Pcv
			seed.NavScore = res.Nav
			seed.ActScore = res.Act
			seed.AbilityScore = res.Combined
			edge.UpdateMetrics(user.Name(), seed)

			dst := edge.Dst
			if visited[dst.ID] {
				continue
			}
			visited[dst.ID] = true
			g.RecordDiscovery(user.Name(), edge)
			if !dst.Stub {
				queue = append(queue, dst)
			}
		}
	}
}
