// Package action implements the action model (C4): an interning registry
// of concrete Action implementations, keyed by (type, args) so equality and
// hashing are by identity of the interned tuple. The interface contract
// itself (access.Action) lives in internal/access to avoid an import cycle
// between the action model and the interface capability it operates on.
package action

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// key is the interning key: action type name plus a stable argument string.
type key struct {
	typeName string
	args     string
}

// Registry interns Action instances so that two requests for the same
// (type, args) pair receive the identical pointer.
type Registry struct {
	mu   sync.Mutex
	byID map[key]access.Action
}

// NewRegistry builds an empty interning registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[key]access.Action{}}
}

// Intern returns the interned instance for (typeName, args), constructing
// it via build on first request.
func (r *Registry) Intern(typeName, args string, build func() access.Action) access.Action {
	k := key{typeName, args}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[k]; ok {
		return a
	}
	a := build()
	r.byID[k] = a
	return a
}

// All returns every interned action, in insertion order is not guaranteed;
// callers needing determinism should sort by Name().
func (r *Registry) All() []access.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]access.Action, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out
}

// baseAction centralizes the bookkeeping shared by every concrete action:
// gating Execute on the user's combined PNA score before asking the
// interface to perform the step.
type baseAction struct {
	name       string
	repeatable bool
	reverseFn  func() (access.Action, bool)
	perform    func(ctx context.Context, ia access.InterfaceAccess, el access.Element) error
	getElems   func(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error)
}

func (b *baseAction) Name() string       { return b.name }
func (b *baseAction) Repeatable() bool   { return b.repeatable }

func (b *baseAction) Reverse() (access.Action, bool) {
	if b.reverseFn == nil {
		return nil, false
	}
	return b.reverseFn()
}

func (b *baseAction) GetElements(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error) {
	return b.getElems(ctx, ia)
}

// Execute gates on the user's combined PNA score (spec.md §4.4): if the
// score is positive, invoke the interface to perform the action and record
// act_time on m; otherwise leave m untouched and return 0.
func (b *baseAction) Execute(ctx context.Context, ia access.InterfaceAccess, user access.Scorer, el access.Element, m *metrics.EdgeMetrics) (float64, error) {
	res := user.Score(access.AxisPerceive|access.AxisNavigate|access.AxisAct, ia, el, *m, b.name)
	if res.Combined <= 0 {
		return 0, nil
	}
	start := time.Now()
	if err := b.perform(ctx, ia, el); err != nil {
		return 0, fmt.Errorf("action %s on %s: %w", b.name, el.Xpath, err)
	}
	m.ActTime = time.Since(start)
	m.PcvScore = res.Pcv
	m.NavScore = res.Nav
	m.ActScore = res.Act
	m.AbilityScore = res.Combined
	return res.Combined, nil
}

// New constructs an Action from its behavior, for use by the Registry or
// directly by tests/concrete action packages outside this module.
func New(name string, repeatable bool, getElems func(context.Context, access.InterfaceAccess) ([]access.Element, error), perform func(context.Context, access.InterfaceAccess, access.Element) error, reverseFn func() (access.Action, bool)) access.Action {
	return &baseAction{
		name:       name,
		repeatable: repeatable,
		getElems:   getElems,
		perform:    perform,
		reverseFn:  reverseFn,
	}
}
