package analyzer

import (
	"sort"

	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

type pairKey struct{ from, to int }

// distances computes all-pairs unweighted hop counts and weighted
// distances over a subgraph, one BFS/Dijkstra pass per source node. When
// unitWeight is true every edge costs exactly 1, the build-user convention
// spec.md's downstream consumers assume; otherwise edge weight is
// 1 - AbilityScore for user, clamped to a small positive floor so a
// perfect edge still costs something.
func distances(sg *Subgraph, user string, unitWeight bool) (hops map[pairKey]int, weighted map[pairKey]float64) {
	hops = map[pairKey]int{}
	weighted = map[pairKey]float64{}
	adj := sg.adjacency()

	for _, src := range sg.States {
		bfsHops(src.ID, adj, hops)
		dijkstra(src.ID, adj, user, unitWeight, weighted)
	}
	return hops, weighted
}

func bfsHops(src int, adj map[int][]*graphstore.Edge, out map[pairKey]int) {
	visited := map[int]bool{src: true}
	queue := []int{src}
	dist := map[int]int{src: 0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if visited[e.Dst.ID] {
				continue
			}
			visited[e.Dst.ID] = true
			dist[e.Dst.ID] = dist[cur] + 1
			out[pairKey{src, e.Dst.ID}] = dist[e.Dst.ID]
			queue = append(queue, e.Dst.ID)
		}
	}
}

const edgeWeightFloor = 0.01

func edgeWeight(e *graphstore.Edge, user string, unitWeight bool) float64 {
	if unitWeight {
		return 1
	}
	m, ok := e.Metrics(user)
	if !ok || m.AbilityScore <= 0 {
		return 1
	}
	w := 1 - m.AbilityScore
	if w < edgeWeightFloor {
		w = edgeWeightFloor
	}
	return w
}

// dijkstra runs a simple O(V^2) Dijkstra from src; adequate for the
// per-entry-point graph sizes this analyzer runs over.
func dijkstra(src int, adj map[int][]*graphstore.Edge, user string, unitWeight bool, out map[pairKey]float64) {
	dist := map[int]float64{src: 0}
	visited := map[int]bool{}

	for {
		u, uDist, found := -1, 0.0, false
		for id, d := range dist {
			if visited[id] {
				continue
			}
			if !found || d < uDist {
				u, uDist, found = id, d, true
			}
		}
		if !found {
			break
		}
		visited[u] = true
		if u != src {
			out[pairKey{src, u}] = uDist
		}
		for _, e := range adj[u] {
			alt := uDist + edgeWeight(e, user, unitWeight)
			if cur, ok := dist[e.Dst.ID]; !ok || alt < cur {
				dist[e.Dst.ID] = alt
			}
		}
	}
}

// PathDiff computes the table of pairwise shortest-path degradations a
// user experiences relative to the build user (spec.md §4.10 "Path diff"):
// for every ordered pair connected in both subgraphs, the hop-count
// increase and weighted-distance delta, sorted by (hop_increase desc,
// weight_delta desc).
func PathDiff(g *graphstore.Graph, buildUser, user string) []PathDiffRow {
	buildSG := BuildSubgraph(g, buildUser)
	userSG := BuildSubgraph(g, user)

	bHops, bWeighted := distances(buildSG, buildUser, true)
	uHops, uWeighted := distances(userSG, user, false)

	var rows []PathDiffRow
	for _, from := range userSG.States {
		for _, to := range userSG.States {
			if from.ID == to.ID {
				continue
			}
			key := pairKey{from.ID, to.ID}
			uh, uhOK := uHops[key]
			uw, uwOK := uWeighted[key]
			bh, bhOK := bHops[key]
			bw, bwOK := bWeighted[key]
			if !uhOK || !bhOK || !uwOK || !bwOK {
				continue
			}
			rows = append(rows, PathDiffRow{
				From:        from.ID,
				To:          to.ID,
				HopIncrease: uh - bh,
				WeightDelta: uw - bw,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].HopIncrease != rows[j].HopIncrease {
			return rows[i].HopIncrease > rows[j].HopIncrease
		}
		return rows[i].WeightDelta > rows[j].WeightDelta
	})
	return rows
}
