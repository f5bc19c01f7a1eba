// Package access defines the InterfaceAccess capability contract (C7): the
// boundary between the core (state-space exploration, scoring, analysis)
// and a concrete browser/interface driver. The core depends only on this
// package; internal/webaccess provides the reference go-rod implementation.
package access

import (
	"context"
	"time"

	"github.com/a11ycrawl/a11ycrawl/internal/htmltemplate"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// Element identifies one DOM element by its xpath, the stable identifier
// used throughout the crawl (tab order, BuildData, action targeting).
type Element struct {
	Xpath string
	Tag   string
	Text  string
	Attrs map[string]string
}

// Style is a focused/unfocused style snapshot used by focus analysis.
type Style struct {
	Color           string
	BackgroundColor string
	Outline         string
	Border          string
	FontSize        float64
}

// TabEntry is one stop in the precomputed tab order.
type TabEntry struct {
	Element        Element
	FocusedStyle   Style
	UnfocusedStyle Style
	X, Y           int
	TabIndex       int
	VisitCount     int
}

// TabOrderResult is the output of GenerateTabOrder.
type TabOrderResult struct {
	Order             []TabEntry
	StartElementXPath string
}

// ReplayStep is one (element, action-name) pair in a user's path to a
// state, used to rebuild the UI by replay during SetState.
type ReplayStep struct {
	Element    Element
	ActionName string
}

// StateHandle carries everything SetState needs to deterministically
// return to a previously observed state: the raw page to reload, and the
// build user's path of replay steps from the entry point.
type StateHandle struct {
	RawPage string
	Replay  []ReplayStep
}

// StateData is the web specialization of the opaque per-state payload
// (spec.md data model "StateData (web specialization)").
type StateData struct {
	URL                string
	DOM                string
	Template           *htmltemplate.Template
	TabOrder           []TabEntry
	InitialFocus       string
	ElementsToExplore  []Element
}

// ScoreAxis selects which ability axis to evaluate.
type ScoreAxis int

const (
	AxisPerceive ScoreAxis = 1 << iota
	AxisNavigate
	AxisAct
)

// ScoreResult is the outcome of a Scorer evaluation.
type ScoreResult struct {
	Combined float64
	Ability  string
	Nav      float64
	Act      float64
	Pcv      float64
}

// Scorer is the minimal shape of a UserModel that Action.Execute needs to
// gate on. Declared here (rather than importing internal/ability) to keep
// the capability graph acyclic; ability.UserModel implements this.
type Scorer interface {
	Name() string
	Score(axes ScoreAxis, ia InterfaceAccess, el Element, m metrics.EdgeMetrics, actionName string) ScoreResult
	Claims(actionName string) bool
}

// Action is a polymorphic operation an Action model (C4) exposes on an
// element. Defined here, alongside InterfaceAccess, so both sides of the
// contract can reference each other without an import cycle; concrete
// actions live in internal/action and implement this interface.
type Action interface {
	Name() string
	Repeatable() bool
	Reverse() (Action, bool)
	GetElements(ctx context.Context, ia InterfaceAccess) ([]Element, error)
	Execute(ctx context.Context, ia InterfaceAccess, user Scorer, el Element, m *metrics.EdgeMetrics) (float64, error)
}

// InterfaceAccess is the capability object the core treats the browser (or
// any other interface driver) as (C7).
type InterfaceAccess interface {
	// Load materializes an initial state at entryPoint, including the
	// stability wait (spec.md §4.2).
	Load(ctx context.Context, entryPoint string) (bool, error)

	// StateDataSnapshot captures the current UI.
	StateDataSnapshot(ctx context.Context) (StateData, error)

	// SetState deterministically navigates back to a previously seen
	// state by reloading the raw page and replaying the build user's path.
	SetState(ctx context.Context, h StateHandle) (bool, error)

	// SetStateDirect rebinds the access's cursor without touching the UI;
	// used when the UI is known not to have drifted.
	SetStateDirect(ctx context.Context, h StateHandle) (bool, error)

	// IsStateValid gates whether a freshly observed state belongs in scope.
	IsStateValid(ctx context.Context) (bool, error)

	// Actions returns the fixed, class-level action inventory.
	Actions() []Action

	// PerformActionOnElement captures BuildData (if not revisiting), gates
	// by the user's score, attempts the action with bounded retries on
	// transient errors, then re-snapshots.
	PerformActionOnElement(ctx context.Context, user Scorer, act Action, el Element) (metrics.EdgeMetrics, error)

	// Interact performs one low-level primitive (click, fill, select,
	// focus, ...) on el. Concrete actions (internal/webaction) are built
	// from these primitives; the contract stays domain-agnostic per
	// spec.md §1 ("the core defines the action contract; concrete actions
	// live outside").
	Interact(ctx context.Context, el Element, verb string, args map[string]string) error

	// GenerateTabOrder advances focus from startXPath (or the current
	// focus if empty) until the first element is revisited or a
	// configured maximum count is reached.
	GenerateTabOrder(ctx context.Context, startXPath string) (TabOrderResult, error)

	Reset(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Delay is a human-visible pacing knob applied between interface
// operations; it never affects correctness (spec.md §9 Open Questions).
func Delay(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
