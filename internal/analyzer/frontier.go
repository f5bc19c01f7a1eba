package analyzer

import (
	"sort"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// Frontier computes the accessible-if frontier (spec.md §4.10): for every
// state v outside user's subgraph that has at least one incoming edge from
// a state already in the subgraph, and at least one outgoing edge whose
// action user's model claims (the actions-capable subgraph, independent of
// current AbilityScore), v is a candidate for "one fix away". Each
// candidate reports how many further states chain-reachable from v would
// also become newly included, and the elements whose access would need to
// change to unlock it.
func Frontier(g *graphstore.Graph, user access.Scorer) []FrontierCandidate {
	sg := BuildSubgraph(g, user.Name())
	inSubgraph := map[int]bool{}
	for _, s := range sg.States {
		inSubgraph[s.ID] = true
	}

	all := g.States()

	claimsAdj := map[int][]*graphstore.Edge{}
	for _, s := range all {
		for _, e := range g.EdgesForState(s, "", false) {
			if user.Claims(e.Action.Name()) {
				claimsAdj[s.ID] = append(claimsAdj[s.ID], e)
			}
		}
	}

	var candidates []FrontierCandidate
	for _, v := range all {
		if inSubgraph[v.ID] {
			continue
		}

		var neededElements []access.Element
		for _, s := range sg.States {
			for _, e := range g.EdgesForState(s, "", false) {
				if e.Dst.ID == v.ID {
					neededElements = append(neededElements, e.Element)
				}
			}
		}
		if len(neededElements) == 0 {
			continue
		}
		if len(claimsAdj[v.ID]) == 0 {
			continue
		}

		candidates = append(candidates, FrontierCandidate{
			State:             v.ID,
			NewStatesIncluded: reachableCount(v.ID, claimsAdj, inSubgraph),
			ElementsNeeded:    neededElements,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].NewStatesIncluded != candidates[j].NewStatesIncluded {
			return candidates[i].NewStatesIncluded > candidates[j].NewStatesIncluded
		}
		return candidates[i].State < candidates[j].State
	})
	return candidates
}

// reachableCount walks adj from src and counts states not already in excl,
// including src itself.
func reachableCount(src int, adj map[int][]*graphstore.Edge, excl map[int]bool) int {
	visited := map[int]bool{src: true}
	queue := []int{src}
	count := 0
	if !excl[src] {
		count++
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if visited[e.Dst.ID] {
				continue
			}
			visited[e.Dst.ID] = true
			queue = append(queue, e.Dst.ID)
			if !excl[e.Dst.ID] {
				count++
			}
		}
	}
	return count
}
