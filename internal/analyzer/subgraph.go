package analyzer

import (
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// Subgraph is the edge-induced view of a Graph restricted to one user's
// supported edges.
type Subgraph struct {
	States []*graphstore.State
	Edges  []*graphstore.Edge
}

// BuildSubgraph computes user's subgraph: every edge whose user metrics
// have AbilityScore > 0, plus their endpoints, always including the start
// state (spec.md §4.10 "Per-user subgraph").
func BuildSubgraph(g *graphstore.Graph, user string) *Subgraph {
	sg := &Subgraph{}
	seen := map[int]bool{}

	if start := g.StartState(); start != nil {
		sg.States = append(sg.States, start)
		seen[start.ID] = true
	}

	for _, s := range g.States() {
		for _, e := range g.EdgesForState(s, user, true) {
			sg.Edges = append(sg.Edges, e)
			if !seen[e.Src.ID] {
				seen[e.Src.ID] = true
				sg.States = append(sg.States, e.Src)
			}
			if !seen[e.Dst.ID] {
				seen[e.Dst.ID] = true
				sg.States = append(sg.States, e.Dst)
			}
		}
	}
	return sg
}

// adjacency groups a subgraph's edges by source state id.
func (sg *Subgraph) adjacency() map[int][]*graphstore.Edge {
	adj := map[int][]*graphstore.Edge{}
	for _, e := range sg.Edges {
		adj[e.Src.ID] = append(adj[e.Src.ID], e)
	}
	return adj
}
