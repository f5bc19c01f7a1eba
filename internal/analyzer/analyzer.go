package analyzer

import (
	"github.com/a11ycrawl/a11ycrawl/internal/config"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// Analyze runs the rule registry over every state in g and aggregates the
// composite violations (spec.md §4.10), producing the dense per-state
// report a report writer serializes.
func Analyze(g *graphstore.Graph, reg *Registry, buildUser string) Report {
	states := g.States()

	atomic := map[int][]Violation{}
	for _, s := range states {
		incoming := incomingEdges(g, states, s, buildUser)
		outgoing := g.EdgesForState(s, buildUser, true)
		atomic[s.ID] = reg.Check(s, incoming, outgoing, buildUser)
	}

	subtreeMemo := map[int]int{}
	report := make(Report, len(states))
	for _, s := range states {
		violations := append([]Violation{}, atomic[s.ID]...)
		for _, e := range g.EdgesForState(s, buildUser, true) {
			count := subtreeViolationCount(g, e.Dst, buildUser, atomic, subtreeMemo)
			if count == 0 {
				continue
			}
			violations = append(violations, Violation{
				Type:     "composite",
				Level:    LevelWarning,
				Category: CategoryComposite,
				Element:  e.Element,
				Count:    count,
			})
		}
		report[s.ID] = StateReport{Src: s.Data.URL, Violations: violations}
	}
	return report
}

// AnalyzeWithConfig builds the default rule registry from cfg before
// running Analyze; the convenience entry point the orchestrator calls.
func AnalyzeWithConfig(g *graphstore.Graph, cfg config.Config, buildUser string) Report {
	return Analyze(g, DefaultRegistry(cfg), buildUser)
}

// incomingEdges scans every state's outgoing edges for ones landing on
// target; the graph store only indexes adjacency forward.
func incomingEdges(g *graphstore.Graph, states []*graphstore.State, target *graphstore.State, user string) []*graphstore.Edge {
	var out []*graphstore.Edge
	for _, s := range states {
		for _, e := range g.EdgesForState(s, user, true) {
			if e.Dst.ID == target.ID {
				out = append(out, e)
			}
		}
	}
	return out
}

// subtreeViolationCount sums atomic violation counts over every state
// reachable from t (t inclusive) via user-supported edges, memoized per t
// since the same destination is revisited across many incoming edges.
func subtreeViolationCount(g *graphstore.Graph, t *graphstore.State, user string, atomic map[int][]Violation, memo map[int]int) int {
	if v, ok := memo[t.ID]; ok {
		return v
	}
	visited := map[int]bool{t.ID: true}
	queue := []*graphstore.State{t}
	count := len(atomic[t.ID])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.EdgesForState(cur, user, true) {
			if visited[e.Dst.ID] {
				continue
			}
			visited[e.Dst.ID] = true
			count += len(atomic[e.Dst.ID])
			queue = append(queue, e.Dst)
		}
	}
	memo[t.ID] = count
	return count
}
