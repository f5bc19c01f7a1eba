package explorer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"

	"go.uber.org/zap"
)

// AccessFactory builds one worker's private InterfaceAccess (strict
// affinity: never shared across workers, per spec.md §5).
type AccessFactory func() (access.InterfaceAccess, error)

// task is one unit of pooled work: expand state at handle.
type task struct {
	frame frame
}

// BuildPooled runs the pooled explorer: a fixed worker pool shares one
// Graph and a work queue of expansion tasks. Each worker owns its own
// InterfaceAccess. A worker enqueues every new state it discovers, the
// last one included; it does not keep any of them for its own
// continuation, and whichever worker is free takes the next task
// (spec.md §4.8 Pooled explorer).
func BuildPooled(ctx context.Context, numWorkers int, newAccess AccessFactory, user access.Scorer, actions []access.Action, pipeline *compare.Pipeline, entryPoint string, opts Options) (*graphstore.Graph, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}

	seed, err := newAccess()
	if err != nil {
		return nil, err
	}
	if ok, err := seed.Load(ctx, entryPoint); err != nil {
		return nil, err
	} else if !ok {
		log.Warn("initial pooled load did not stabilize", zap.String("entry_point", entryPoint))
	}
	data, err := seed.StateDataSnapshot(ctx)
	if err != nil {
		_ = seed.Shutdown(ctx)
		return nil, err
	}

	g := graphstore.New(pipeline)
	_, start, err := g.AddState(data, false)
	if err != nil {
		_ = seed.Shutdown(ctx)
		return nil, err
	}
	if tab, err := seed.GenerateTabOrder(ctx, ""); err == nil {
		start.Data.TabOrder = tab.Order
		start.Data.InitialFocus = tab.StartElementXPath
	}

	queue := make(chan task, numWorkers*64)
	var (
		qmu     sync.Mutex
		pending int
		closed  bool
	)

	enqueue := func(t task) {
		qmu.Lock()
		pending++
		qmu.Unlock()
		queue <- t
	}
	// drained must be called exactly once per task taken off the queue,
	// after any of its follow-on tasks have already been enqueued, so the
	// pending count never touches zero while work is still in flight.
	drained := func() {
		qmu.Lock()
		pending--
		done := pending == 0 && !closed
		if done {
			closed = true
		}
		qmu.Unlock()
		if done {
			close(queue)
		}
	}
	enqueue(task{frame: frame{state: start, handle: access.StateHandle{RawPage: entryPoint}}})

	group, gctx := errgroup.WithContext(ctx)

	worker := func(id int, ia access.InterfaceAccess) error {
		defer ia.Shutdown(context.Background())
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case t, ok := <-queue:
				if !ok {
					return nil
				}
				results, err := func() ([]expandResult, error) {
					if err := restore(gctx, ia, t.frame.handle); err != nil {
						log.Warn("pooled restore failed, abandoning branch", zap.Int("worker", id), zap.Error(err))
						return nil, nil
					}
					return expandOnce(gctx, g, ia, user, actions, t.frame, entryPoint, opts)
				}()
				if err != nil {
					drained()
					return err
				}
				for _, r := range results {
					enqueue(task{frame: frame{state: r.dst, handle: r.handle}})
				}
				drained()
			}
		}
	}

	group.Go(func() error { return worker(0, seed) })
	for i := 1; i < numWorkers; i++ {
		i := i
		ia, err := newAccess()
		if err != nil {
			return g, err
		}
		if ok, err := ia.Load(gctx, entryPoint); err != nil || !ok {
			_ = ia.Shutdown(context.Background())
			continue
		}
		group.Go(func() error { return worker(i, ia) })
	}

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		return g, err
	}
	return g, nil
}
