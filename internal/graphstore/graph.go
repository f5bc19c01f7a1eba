// Package graphstore implements the interned State/Edge graph store (C3):
// dense-id states with pluggable equality, multi-edge adjacency, per-user
// shortest paths, and per-edge locked EdgeMetrics.
package graphstore

import (
	"sync"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// State is a node in the graph.
type State struct {
	ID   int
	Data access.StateData
	Stub bool

	mu         sync.Mutex
	userPaths  map[string][]*Edge
}

// UserPath returns the cached shortest known path for user, if any.
func (s *State) UserPath(user string) ([]*Edge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.userPaths[user]
	return p, ok
}

// setUserPath records the shortest known path for user, first write wins
// (first discovery), matching the explorer's "record on first discovery"
// rule.
func (s *State) setUserPath(user string, path []*Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userPaths == nil {
		s.userPaths = map[string][]*Edge{}
	}
	if _, exists := s.userPaths[user]; exists {
		return
	}
	cp := make([]*Edge, len(path))
	copy(cp, path)
	s.userPaths[user] = cp
}

// Edge is a directed, labeled transition. The graph is a multigraph: more
// than one Edge may share the same (Src,Dst) pair.
type Edge struct {
	Src, Dst *State
	Element  access.Element
	Action   access.Action

	mu          sync.Mutex
	userMetrics map[string]*metrics.EdgeMetrics
}

// UpdateMetrics applies the monotone-best update rule for user (spec.md
// Edge invariant), guarded by a per-edge lock so concurrent workers may
// update different users on the same edge without contending on the graph
// lock.
func (e *Edge) UpdateMetrics(user string, m metrics.EdgeMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.userMetrics == nil {
		e.userMetrics = map[string]*metrics.EdgeMetrics{}
	}
	cur, ok := e.userMetrics[user]
	if !ok {
		cur = &metrics.EdgeMetrics{}
		e.userMetrics[user] = cur
	}
	cur.UpdateBest(m)
}

// Metrics returns a copy of the current metrics for user, if present.
func (e *Edge) Metrics(user string) (metrics.EdgeMetrics, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.userMetrics[user]
	if !ok {
		return metrics.EdgeMetrics{}, false
	}
	return *m, true
}

// SupportsUser reports whether user has any recorded metrics on this edge.
func (e *Edge) SupportsUser(user string) bool {
	_, ok := e.Metrics(user)
	return ok
}

// Graph is the state/edge store. All mutating operations are serialized by
// a single lock, and reads of the state set and adjacency take the same
// lock.
type Graph struct {
	pipeline *compare.Pipeline

	mu         sync.Mutex
	states     []*State
	adjacency  map[int][]*Edge
	startState *State
	nextID     int
}

// New builds an empty graph whose state equality is decided by pipeline.
func New(pipeline *compare.Pipeline) *Graph {
	return &Graph{
		pipeline:  pipeline,
		adjacency: map[int][]*Edge{},
	}
}

// StartState returns the first inserted state, or nil if the graph is
// empty (spec.md invariant 3: start_state is set iff |states| > 0).
func (g *Graph) StartState() *State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startState
}

// States returns a snapshot of every state in the graph.
func (g *Graph) States() []*State {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*State, len(g.states))
	copy(out, g.states)
	return out
}

// AddState interns data: if an existing state compares equal via the
// pipeline, it is returned with inserted=false; otherwise a new state is
// assigned the next dense id and inserted=true is returned.
func (g *Graph) AddState(data access.StateData, stub bool) (bool, *State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range g.states {
		eq, err := g.pipeline.Compare(s.Data, data)
		if err != nil {
			return false, nil, err
		}
		if eq {
			return false, s, nil
		}
	}
	s := &State{ID: g.nextID, Data: data, Stub: stub}
	g.nextID++
	g.states = append(g.states, s)
	if g.startState == nil {
		g.startState = s
	}
	return true, s, nil
}

// AddEdge inserts a new edge; duplicates are allowed (the graph is a
// multigraph).
func (g *Graph) AddEdge(src, dst *State, el access.Element, act access.Action) *Edge {
	e := &Edge{Src: src, Dst: dst, Element: el, Action: act}
	g.mu.Lock()
	g.adjacency[src.ID] = append(g.adjacency[src.ID], e)
	g.mu.Unlock()
	return e
}

// RecordDiscovery records edge as the path by which dst was first
// discovered for user: path(dst) = path(src) ++ [edge]. A no-op if dst
// already has a recorded path for user.
func (g *Graph) RecordDiscovery(user string, edge *Edge) {
	base, _ := edge.Src.UserPath(user)
	path := append(append([]*Edge{}, base...), edge)
	edge.Dst.setUserPath(user, path)
}

// EdgesForState returns s's outgoing edges, optionally filtered to those
// supporting user, deterministically ordered by (src.id, dst.id) when
// sorted is true.
func (g *Graph) EdgesForState(s *State, user string, sorted bool) []*Edge {
	g.mu.Lock()
	edges := append([]*Edge{}, g.adjacency[s.ID]...)
	g.mu.Unlock()

	if user != "" {
		filtered := edges[:0:0]
		for _, e := range edges {
			if e.SupportsUser(user) {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if sorted {
		sortEdges(edges)
	}
	return edges
}

func sortEdges(edges []*Edge) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0; j-- {
			a, b := edges[j-1], edges[j]
			if lessEdge(b, a) {
				edges[j-1], edges[j] = edges[j], edges[j-1]
			} else {
				break
			}
		}
	}
}

func lessEdge(a, b *Edge) bool {
	if a.Src.ID != b.Src.ID {
		return a.Src.ID < b.Src.ID
	}
	return a.Dst.ID < b.Dst.ID
}

// Path runs a BFS restricted to edges supporting user, returning the first
// discovered shortest path or nil. If s1 is the start state, the cached
// user path on s2 short-circuits the search.
func (g *Graph) Path(s1, s2 *State, user string) []*Edge {
	if s1 == s2 {
		return []*Edge{}
	}
	if s1 == g.StartState() {
		if p, ok := s2.UserPath(user); ok {
			return p
		}
	}
	visited := map[int]bool{s1.ID: true}
	type item struct {
		state *State
		path  []*Edge
	}
	queue := []item{{s1, nil}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.EdgesForState(cur.state, user, true) {
			if visited[e.Dst.ID] {
				continue
			}
			path := append(append([]*Edge{}, cur.path...), e)
			if e.Dst.ID == s2.ID {
				return path
			}
			visited[e.Dst.ID] = true
			queue = append(queue, item{e.Dst, path})
		}
	}
	return nil
}
