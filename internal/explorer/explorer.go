// Package explorer implements the state-space explorer (C8): a
// single-threaded DFS, its reduced-mode variant (reachability-delta
// restriction plus repeat/reverse heuristics), and a pooled explorer that
// fans the same expansion step out across a fixed worker pool sharing one
// Graph.
package explorer

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/crawlerr"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/logging"

	"go.uber.org/zap"
)

// Options configures one explorer run (spec.md §6's web-specific knobs
// relevant to C8).
type Options struct {
	Reduced    bool
	MaxRepeats int
}

// DefaultOptions mirrors config.Default()'s reduced_crawl=true with a
// conservative repeat bound.
func DefaultOptions() Options {
	return Options{Reduced: true, MaxRepeats: 5}
}

// frame is one entry on the DFS stack: the state to expand, and the
// replay handle that returns the interface to it.
type frame struct {
	state  *graphstore.State
	handle access.StateHandle
}

// isStub decides whether a newly discovered state should be left
// unexpanded: it navigated off the entry point's origin entirely (an
// outbound link), which is the only case spec.md's stub invariant
// ("stub ⇒ url path differs from entry state's url path") actually needs
// to exclude from further exploration -- same-origin path changes from
// client-side routing are still explored normally.
func isStub(entryURL, candidateURL string) bool {
	eu, err1 := url.Parse(entryURL)
	cu, err2 := url.Parse(candidateURL)
	if err1 != nil || err2 != nil {
		return false
	}
	return eu.Host != "" && eu.Host != cu.Host
}

// elementDelta returns the elements present in next but absent (by xpath)
// from prev -- the reachability delta the reduced explorer restricts child
// exploration to.
func elementDelta(prev, next []access.Element) []access.Element {
	before := make(map[string]bool, len(prev))
	for _, e := range prev {
		before[e.Xpath] = true
	}
	var delta []access.Element
	for _, e := range next {
		if !before[e.Xpath] {
			delta = append(delta, e)
		}
	}
	return delta
}

func sortedActions(actions []access.Action) []access.Action {
	out := append([]access.Action(nil), actions...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func sortedElements(els []access.Element) []access.Element {
	out := append([]access.Element(nil), els...)
	sort.Slice(out, func(i, j int) bool { return out[i].Xpath < out[j].Xpath })
	return out
}

// candidateElements returns the (action, elements) pairs to try at state
// f, restricted to the reachability delta in reduced mode.
func candidateElements(ctx context.Context, ia access.InterfaceAccess, f frame, actions []access.Action, reduced bool) (map[access.Action][]access.Element, error) {
	var allow map[string]bool
	if reduced {
		allow = map[string]bool{}
		for _, e := range f.state.Data.ElementsToExplore {
			allow[e.Xpath] = true
		}
	}
	out := map[access.Action][]access.Element{}
	for _, act := range sortedActions(actions) {
		els, err := act.GetElements(ctx, ia)
		if err != nil {
			return nil, fmt.Errorf("%w: get_elements for %s: %v", crawlerr.ErrInterfaceTransient, act.Name(), err)
		}
		els = sortedElements(els)
		if allow != nil {
			filtered := els[:0:0]
			for _, e := range els {
				if allow[e.Xpath] {
					filtered = append(filtered, e)
				}
			}
			els = filtered
		}
		if len(els) > 0 {
			out[act] = els
		}
	}
	return out, nil
}

// log is the explorer's category logger.
var log = logging.Get(logging.CategoryExplorer)

// expandResult is one successful transition discovered while expanding a
// state.
type expandResult struct {
	dst     *graphstore.State
	handle  access.StateHandle
	inserted bool
}

// expandOnce performs every (action, element) pair available at f once,
// applying the reduced-mode repeat/reverse heuristics inline, and returns
// the set of newly inserted non-stub destination states (with the handles
// that return the interface to them).
func expandOnce(ctx context.Context, g *graphstore.Graph, ia access.InterfaceAccess, user access.Scorer, actions []access.Action, f frame, entryURL string, opts Options) ([]expandResult, error) {
	pairs, err := candidateElements(ctx, ia, f, actions, opts.Reduced)
	if err != nil {
		return nil, err
	}

	var results []expandResult
	for _, act := range sortedActions(actions) {
		els, ok := pairs[act]
		if !ok {
			continue
		}
		for _, el := range els {
			dst, handle, inserted, err := applyAction(ctx, g, ia, user, act, el, f, entryURL)
			if err != nil {
				log.Warn("action failed", zap.String("action", act.Name()), zap.String("xpath", el.Xpath), zap.Error(err))
				continue
			}
			if dst == nil {
				continue
			}
			if inserted && !dst.Stub {
				results = append(results, expandResult{dst: dst, handle: handle, inserted: true})
			}
			if opts.Reduced && act.Repeatable() && inserted && !dst.Stub {
				chainResults, chain := repeatChain(ctx, g, ia, user, act, el, dst, handle, entryURL, opts.MaxRepeats)
				results = append(results, chainResults...)
				fullChain := append([]repeatFrame{{state: f.state, handle: f.handle}}, chain...)
				reverseChain(ctx, g, ia, user, act, el, fullChain)
			}

			if err := restore(ctx, ia, f.handle); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// applyAction performs one (action, element) step from f, recording the
// edge and discovery path on success. It leaves the interface positioned
// at dst on return (the caller restores afterward).
func applyAction(ctx context.Context, g *graphstore.Graph, ia access.InterfaceAccess, user access.Scorer, act access.Action, el access.Element, f frame, entryURL string) (*graphstore.State, access.StateHandle, bool, error) {
	before, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, access.StateHandle{}, false, err
	}

	m, err := ia.PerformActionOnElement(ctx, user, act, el)
	if err != nil || m.AbilityScore <= 0 {
		return nil, access.StateHandle{}, false, nil
	}

	after, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, access.StateHandle{}, false, err
	}
	after.ElementsToExplore = elementDelta(before.ElementsToExplore, after.ElementsToExplore)

	stub := isStub(entryURL, after.URL)
	inserted, dst, err := g.AddState(after, stub)
	if err != nil {
		return nil, access.StateHandle{}, false, err
	}

	edge := g.AddEdge(f.state, dst, el, act)
	edge.UpdateMetrics(user.Name(), m)
	g.RecordDiscovery(user.Name(), edge)

	handle := access.StateHandle{
		RawPage: entryURL,
		Replay:  append(append([]access.ReplayStep(nil), f.handle.Replay...), access.ReplayStep{Element: el, ActionName: act.Name()}),
	}

	if inserted && !dst.Stub {
		if tab, err := ia.GenerateTabOrder(ctx, el.Xpath); err == nil {
			dst.Data.TabOrder = tab.Order
			dst.Data.InitialFocus = tab.StartElementXPath
		}
	}

	return dst, handle, inserted, nil
}

// repeatFrame is one link of a repeat chain: the state reached and the
// handle that replays back to it, in order of discovery.
type repeatFrame struct {
	state  *graphstore.State
	handle access.StateHandle
}

// repeatChain applies a repeatable action again on the same element from
// the most recently produced state, chaining discoveries up to max times
// or until a repeat stops yielding a new non-stub state (spec.md §4.8
// Reduced DFS, point 2). It returns both the new-state results (for the
// caller's usual bookkeeping) and the chain of states visited, which
// reverseChain walks backward afterward.
func repeatChain(ctx context.Context, g *graphstore.Graph, ia access.InterfaceAccess, user access.Scorer, act access.Action, el access.Element, last *graphstore.State, lastHandle access.StateHandle, entryURL string, max int) ([]expandResult, []repeatFrame) {
	var out []expandResult
	chain := []repeatFrame{{state: last, handle: lastHandle}}
	cur, curHandle := last, lastHandle
	for i := 0; i < max; i++ {
		if err := restore(ctx, ia, curHandle); err != nil {
			break
		}
		f := frame{state: cur, handle: curHandle}
		dst, handle, inserted, err := applyAction(ctx, g, ia, user, act, el, f, entryURL)
		if err != nil || dst == nil || !inserted || dst.Stub {
			break
		}
		out = append(out, expandResult{dst: dst, handle: handle, inserted: true})
		chain = append(chain, repeatFrame{state: dst, handle: handle})
		cur, curHandle = dst, handle
	}
	return out, chain
}

// reverseChain attempts act's reverse against every link of chain, in
// reverse order of discovery -- from the last state the repeat chain
// reached back to the state the chain started from -- one step at a time.
// Each step restores to the later state, performs the reverse on the same
// element the forward action used, and verifies the result lands exactly
// on the prior chain element before recording a reverse edge. It stops at
// the first step that fails to verify, or after one step if the reverse
// action itself is not repeatable, since the spec restricts chained
// reversal to repeatable reverses (spec.md §4.8 Reduced DFS, point 3).
func reverseChain(ctx context.Context, g *graphstore.Graph, ia access.InterfaceAccess, user access.Scorer, act access.Action, el access.Element, chain []repeatFrame) {
	rev, ok := act.Reverse()
	if !ok {
		return
	}

	for i := len(chain) - 1; i > 0; i-- {
		cur, prior := chain[i], chain[i-1]
		if err := restore(ctx, ia, cur.handle); err != nil {
			return
		}

		m, err := ia.PerformActionOnElement(ctx, user, rev, el)
		if err != nil || m.AbilityScore <= 0 {
			return
		}
		after, err := ia.StateDataSnapshot(ctx)
		if err != nil {
			return
		}

		inserted, dst, err := g.AddState(after, false)
		if err != nil || inserted || dst.ID != prior.state.ID {
			// Reversal did not land exactly on the prior chain element;
			// stop rather than record an edge to the wrong state.
			return
		}

		edge := g.AddEdge(cur.state, dst, el, rev)
		edge.UpdateMetrics(user.Name(), m)

		if !rev.Repeatable() {
			return
		}
	}
}

func restore(ctx context.Context, ia access.InterfaceAccess, h access.StateHandle) error {
	ok, err := ia.SetState(ctx, h)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: restore to state failed", crawlerr.ErrInterfaceTransient)
	}
	return nil
}
