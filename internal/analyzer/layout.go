package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// xpathSimilarity is the common-prefix-segment ratio of two xpaths: 1.0
// for identical xpaths, 0.0 for xpaths that diverge at the root. Elements
// under the same repeated container (e.g. sibling list items) score high;
// elements in unrelated subtrees score low.
func xpathSimilarity(a, b string) float64 {
	as := strings.Split(strings.Trim(a, "/"), "/")
	bs := strings.Split(strings.Trim(b, "/"), "/")
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	common := 0
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			break
		}
		common++
	}
	maxLen := len(as)
	if len(bs) > maxLen {
		maxLen = len(bs)
	}
	if maxLen == 0 {
		return 0
	}
	return float64(common) / float64(maxLen)
}

// edgeSimilarityWeight scores how structurally similar e's target element
// is to its sibling transitions out of the same state: the average
// xpath-similarity against every other outgoing edge from e.Src. An edge
// with no siblings is maximally distinctive (weight 1).
func edgeSimilarityWeight(sg *Subgraph, e *graphstore.Edge) float64 {
	siblings := sg.adjacency()[e.Src.ID]
	total, n := 0.0, 0
	for _, s := range siblings {
		if s == e {
			continue
		}
		total += xpathSimilarity(e.Element.Xpath, s.Element.Xpath)
		n++
	}
	if n == 0 {
		return 1
	}
	return total / float64(n)
}

// thresholdEdges returns the subset of sg.Edges whose similarity weight
// meets threshold, grouped by source id.
func thresholdEdges(sg *Subgraph, threshold float64) map[int][]*graphstore.Edge {
	adj := map[int][]*graphstore.Edge{}
	for _, e := range sg.Edges {
		if edgeSimilarityWeight(sg, e) >= threshold {
			adj[e.Src.ID] = append(adj[e.Src.ID], e)
		}
	}
	return adj
}

// LayoutKey names one (algorithm, threshold) layout result for the node
// attributes a report writer attaches to its graph export.
func LayoutKey(algorithm string, threshold float64) string {
	return fmt.Sprintf("%s_%.1f", algorithm, threshold)
}

// ComputeLayouts runs both canonical layouts (force-directed and energy-
// minimizing) at every xpath-similarity threshold in Thresholds, returning
// one Layout per (algorithm, threshold) pair (spec.md §4.10 "Network
// layouts").
func ComputeLayouts(sg *Subgraph) map[string]Layout {
	out := map[string]Layout{}
	for _, threshold := range Thresholds {
		adj := thresholdEdges(sg, threshold)
		out[LayoutKey("force", threshold)] = forceDirectedLayout(sg, adj)
		out[LayoutKey("energy", threshold)] = energyMinimizingLayout(sg, adj)
	}
	return out
}

func initialPositions(sg *Subgraph) Layout {
	pos := make(Layout, len(sg.States))
	n := len(sg.States)
	if n == 0 {
		return pos
	}
	states := append([]*graphstore.State{}, sg.States...)
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	for i, s := range states {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos[s.ID] = NodePosition{X: math.Cos(angle), Y: math.Sin(angle)}
	}
	return pos
}

const layoutIterations = 50

// forceDirectedLayout is a Fruchterman-Reingold style simulation: every
// node pair repels, connected pairs additionally attract, positions are
// nudged each iteration by the net force scaled by a cooling temperature.
func forceDirectedLayout(sg *Subgraph, adj map[int][]*graphstore.Edge) Layout {
	pos := initialPositions(sg)
	if len(pos) < 2 {
		return pos
	}
	ids := make([]int, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	area := float64(len(ids))
	k := math.Sqrt(area / math.Pi)
	temp := 1.0

	for iter := 0; iter < layoutIterations; iter++ {
		disp := map[int][2]float64{}
		for _, u := range ids {
			for _, v := range ids {
				if u == v {
					continue
				}
				dx, dy := pos[u].X-pos[v].X, pos[u].Y-pos[v].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-6 {
					dist = 1e-6
				}
				repel := (k * k) / dist
				d := disp[u]
				d[0] += dx / dist * repel
				d[1] += dy / dist * repel
				disp[u] = d
			}
		}
		for src, edges := range adj {
			for _, e := range edges {
				dst := e.Dst.ID
				dx, dy := pos[src].X-pos[dst].X, pos[src].Y-pos[dst].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-6 {
					dist = 1e-6
				}
				attract := (dist * dist) / k
				du, dv := disp[src], disp[dst]
				du[0] -= dx / dist * attract
				du[1] -= dy / dist * attract
				dv[0] += dx / dist * attract
				dv[1] += dy / dist * attract
				disp[src], disp[dst] = du, dv
			}
		}
		for _, id := range ids {
			d := disp[id]
			dist := math.Hypot(d[0], d[1])
			if dist < 1e-6 {
				continue
			}
			limited := math.Min(dist, temp)
			p := pos[id]
			p.X += d[0] / dist * limited
			p.Y += d[1] / dist * limited
			pos[id] = p
		}
		temp *= 0.95
	}
	return pos
}

// energyMinimizingLayout runs stress majorization: positions are nudged
// to match graph-theoretic distance (from unweighted BFS hops over adj)
// with euclidean distance, minimizing total squared stress.
func energyMinimizingLayout(sg *Subgraph, adj map[int][]*graphstore.Edge) Layout {
	pos := initialPositions(sg)
	if len(pos) < 2 {
		return pos
	}
	ids := make([]int, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	target := map[pairKey]float64{}
	for _, src := range ids {
		hops := map[int]int{src: 0}
		queue := []int{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range adj[cur] {
				if _, seen := hops[e.Dst.ID]; seen {
					continue
				}
				hops[e.Dst.ID] = hops[cur] + 1
				queue = append(queue, e.Dst.ID)
			}
		}
		for dst, h := range hops {
			if dst == src {
				continue
			}
			target[pairKey{src, dst}] = float64(h)
		}
	}

	for iter := 0; iter < layoutIterations; iter++ {
		for _, u := range ids {
			for _, v := range ids {
				if u == v {
					continue
				}
				d, ok := target[pairKey{u, v}]
				if !ok {
					d, ok = target[pairKey{v, u}]
				}
				if !ok {
					d = float64(len(ids)) // disconnected pair, push far apart
				}
				if d == 0 {
					d = 1
				}
				pu, pv := pos[u], pos[v]
				dx, dy := pu.X-pv.X, pu.Y-pv.Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-6 {
					dist = 1e-6
				}
				delta := (dist - d) / dist * 0.1
				pu.X -= dx * delta
				pu.Y -= dy * delta
				pos[u] = pu
			}
		}
	}
	return pos
}
