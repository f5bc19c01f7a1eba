// Package analyzer implements the accessibility analyzer (C10): per-user
// subgraph derivation, shortest-path diffing against the build user,
// accessible-if frontier expansion, network layouts, focus analysis, and
// an extensible rule-evaluator pipeline whose findings are aggregated into
// composite violations.
package analyzer

import (
	"github.com/a11ycrawl/a11ycrawl/internal/access"
)

// Level is a violation's severity.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Category groups violations by the concern they inspect.
type Category string

const (
	CategoryTargetSize   Category = "target_size"
	CategoryKeyboard     Category = "keyboard"
	CategoryFocusOrder   Category = "focus_order"
	CategoryFocusVisible Category = "focus_visible"
	CategoryContrast     Category = "contrast"
	CategoryComposite    Category = "composite"
)

// Violation is one finding attached to a state.
type Violation struct {
	Type     string
	Level    Level
	Category Category
	Element  access.Element
	Replay   []access.ReplayStep
	Code     string
	Count    int // populated only for CategoryComposite
}

// StateReport is one entry of the dense per-state output map.
type StateReport struct {
	Src        string
	Violations []Violation
}

// Report is the analyzer's final dense per-state map.
type Report map[int]StateReport

// PathDiffRow is one row of the path-diff table.
type PathDiffRow struct {
	From, To    int
	HopIncrease int
	WeightDelta float64
}

// FrontierCandidate is one state made reachable by extending the user's
// capability (spec.md §4.10 "Accessible-if frontier").
type FrontierCandidate struct {
	State             int
	NewStatesIncluded int
	ElementsNeeded    []access.Element
}

// NodePosition is one node's coordinates in a computed layout.
type NodePosition struct{ X, Y float64 }

// Layout maps state id to position.
type Layout map[int]NodePosition

// Thresholds is the fixed set of xpath-similarity edge-weight cutoffs the
// network layouts are computed at (spec.md §4.10).
var Thresholds = [5]float64{0.1, 0.3, 0.5, 0.7, 0.9}
