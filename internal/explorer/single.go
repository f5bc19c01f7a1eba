package explorer

import (
	"context"
	"fmt"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"

	"go.uber.org/zap"
)

// Build runs the single-threaded DFS explorer from entryPoint, returning a
// graph whose every state is reachable from start_state via edges
// supporting user, and whose every non-stub state has been fully expanded
// once (spec.md §4.8).
func Build(ctx context.Context, ia access.InterfaceAccess, user access.Scorer, actions []access.Action, pipeline *compare.Pipeline, entryPoint string, opts Options) (*graphstore.Graph, error) {
	ok, err := ia.Load(ctx, entryPoint)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn("initial load did not stabilize, proceeding with last snapshot", zap.String("entry_point", entryPoint))
	}

	data, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	g := graphstore.New(pipeline)
	_, start, err := g.AddState(data, false)
	if err != nil {
		return nil, err
	}
	if tab, err := ia.GenerateTabOrder(ctx, ""); err == nil {
		start.Data.TabOrder = tab.Order
		start.Data.InitialFocus = tab.StartElementXPath
	}

	startHandle := access.StateHandle{RawPage: entryPoint}
	stack := []frame{{state: start, handle: startHandle}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := restore(ctx, ia, top.handle); err != nil {
			log.Warn("restore to frontier state failed, abandoning branch", zap.Int("state_id", top.state.ID), zap.Error(err))
			continue
		}

		results, err := expandOnce(ctx, g, ia, user, actions, top, entryPoint, opts)
		if err != nil {
			return nil, fmt.Errorf("expand state %d: %w", top.state.ID, err)
		}
		for _, r := range results {
			stack = append(stack, frame{state: r.dst, handle: r.handle})
		}
	}

	return g, nil
}
