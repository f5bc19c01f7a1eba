package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/config"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// Rule inspects one state's incoming and outgoing edges and returns zero
// or more findings (spec.md §4.10 "Rule evaluators (extensible)").
type Rule interface {
	Name() string
	Check(s *graphstore.State, incoming, outgoing []*graphstore.Edge, buildUser string) []Violation
}

// Registry holds the ordered set of rules a report run applies.
type Registry struct {
	rules []Rule
}

// DefaultRegistry returns the built-in rule set spec.md §4.10 names.
func DefaultRegistry(cfg config.Config) *Registry {
	return &Registry{rules: []Rule{
		TargetSizeRule{},
		KeyboardOperabilityRule{},
		FocusOrderRule{MaxRevisits: cfg.NumRevisits},
		FocusVisibilityRule{},
		ContrastRule{},
	}}
}

// Register appends one more rule, used to install a scripted rule.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Check runs every registered rule against one state and concatenates
// their findings.
func (r *Registry) Check(s *graphstore.State, incoming, outgoing []*graphstore.Edge, buildUser string) []Violation {
	var out []Violation
	for _, rule := range r.rules {
		out = append(out, rule.Check(s, incoming, outgoing, buildUser)...)
	}
	return out
}

// minTargetSide is the WCAG 2.2 SC 2.5.8 minimum target dimension.
const minTargetSide = 44

// TargetSizeRule flags interactive elements smaller than 44x44, except
// inline anchors sitting inside running paragraph text.
type TargetSizeRule struct{}

func (TargetSizeRule) Name() string { return "target_size" }

func (TargetSizeRule) Check(s *graphstore.State, _, outgoing []*graphstore.Edge, buildUser string) []Violation {
	var out []Violation
	for _, e := range outgoing {
		m, ok := e.Metrics(buildUser)
		if !ok {
			continue
		}
		if isInlineAnchorInParagraph(e.Element) {
			continue
		}
		if m.ElementWidth > 0 && m.ElementHeight > 0 && (m.ElementWidth < minTargetSide || m.ElementHeight < minTargetSide) {
			out = append(out, Violation{
				Type:     "target_too_small",
				Level:    LevelError,
				Category: CategoryTargetSize,
				Element:  e.Element,
				Code:     "SC-2.5.8",
			})
		}
	}
	return out
}

// isInlineAnchorInParagraph reports whether el's xpath's immediate parent
// segment is a <p>, the carve-out spec.md names for the target-size rule.
func isInlineAnchorInParagraph(el access.Element) bool {
	if el.Tag != "a" {
		return false
	}
	segs := strings.Split(strings.Trim(el.Xpath, "/"), "/")
	if len(segs) < 2 {
		return false
	}
	parent := segs[len(segs)-2]
	if idx := strings.Index(parent, "["); idx >= 0 {
		parent = parent[:idx]
	}
	return strings.EqualFold(parent, "p")
}

// KeyboardOperabilityRule flags a state reachable only through an edge
// whose element never appeared in its source state's precomputed tab
// order -- a mouse-only path.
type KeyboardOperabilityRule struct{}

func (KeyboardOperabilityRule) Name() string { return "keyboard_operability" }

func (KeyboardOperabilityRule) Check(_ *graphstore.State, incoming, _ []*graphstore.Edge, buildUser string) []Violation {
	var out []Violation
	for _, e := range incoming {
		if !e.SupportsUser(buildUser) {
			continue
		}
		if inTabOrder(e.Src.Data.TabOrder, e.Element.Xpath) {
			continue
		}
		out = append(out, Violation{
			Type:     "mouse_only_path",
			Level:    LevelError,
			Category: CategoryKeyboard,
			Element:  e.Element,
			Code:     "SC-2.1.1",
		})
	}
	return out
}

func inTabOrder(order []access.TabEntry, xpath string) bool {
	for _, entry := range order {
		if entry.Element.Xpath == xpath {
			return true
		}
	}
	return false
}

// FocusOrderRule re-exposes AnalyzeFocus's ordering and keyboard-trap
// findings as rule-pipeline violations, scoped to this state's own tab
// order.
type FocusOrderRule struct{ MaxRevisits int }

func (FocusOrderRule) Name() string { return "focus_order" }

func (r FocusOrderRule) Check(s *graphstore.State, _, _ []*graphstore.Edge, _ string) []Violation {
	var out []Violation
	for _, v := range AnalyzeFocus(s.Data.TabOrder, r.MaxRevisits) {
		if v.Category == CategoryFocusOrder {
			out = append(out, v)
		}
	}
	return out
}

// FocusVisibilityRule re-exposes AnalyzeFocus's indicator findings.
type FocusVisibilityRule struct{}

func (FocusVisibilityRule) Name() string { return "focus_visibility" }

func (FocusVisibilityRule) Check(s *graphstore.State, _, _ []*graphstore.Edge, _ string) []Violation {
	var out []Violation
	for _, v := range AnalyzeFocus(s.Data.TabOrder, defaultMaxRevisits) {
		if v.Category == CategoryFocusVisible {
			out = append(out, v)
		}
	}
	return out
}

const defaultMaxRevisits = 3

// ContrastRule flags text below the WCAG AA minimum ratio captured at
// build time (4.5:1; EdgeMetrics does not carry font size, so the large-
// text 3:1 carve-out is not evaluated here -- see DESIGN.md).
type ContrastRule struct{}

func (ContrastRule) Name() string { return "contrast" }

const minTextContrast = 4.5

func (ContrastRule) Check(_ *graphstore.State, _, outgoing []*graphstore.Edge, buildUser string) []Violation {
	var out []Violation
	for _, e := range outgoing {
		m, ok := e.Metrics(buildUser)
		if !ok || m.ContrastRatio == 0 {
			continue
		}
		if m.ContrastRatio < minTextContrast {
			out = append(out, Violation{
				Type:     "insufficient_text_contrast",
				Level:    LevelError,
				Category: CategoryContrast,
				Element:  e.Element,
				Code:     "SC-1.4.3",
			})
		}
	}
	return out
}

// ScriptedRule wraps a yaegi-interpreted Go rule (spec.md §4.10 "extensible"):
// the script must define `func CheckRule(inputJSON string) (string, error)`
// taking a JSON-encoded ScriptRuleInput and returning a JSON-encoded
// []ScriptViolation. Only stdlib imports are permitted.
type ScriptedRule struct {
	RuleName string
	Code     string
}

// ScriptRuleInput is the JSON view handed to a scripted rule; it carries
// plain data rather than our internal types so the interpreter never needs
// symbols from this module.
type ScriptRuleInput struct {
	StateID  int              `json:"state_id"`
	Incoming []ScriptEdgeView `json:"incoming"`
	Outgoing []ScriptEdgeView `json:"outgoing"`
}

// ScriptEdgeView is one edge's measurement-relevant fields.
type ScriptEdgeView struct {
	DstStateID    int     `json:"dst_state_id"`
	Xpath         string  `json:"xpath"`
	Tag           string  `json:"tag"`
	ActionName    string  `json:"action_name"`
	AbilityScore  float64 `json:"ability_score"`
	ContrastRatio float64 `json:"contrast_ratio"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
}

// ScriptViolation is the JSON shape a scripted rule emits.
type ScriptViolation struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Code  string `json:"code"`
	Xpath string `json:"xpath"`
}

func (s ScriptedRule) Name() string { return s.RuleName }

var scriptedRuleAllowedPackages = map[string]bool{
	"strings": true, "strconv": true, "fmt": true, "math": true,
	"encoding/json": true, "sort": true,
}

func (s ScriptedRule) Check(state *graphstore.State, incoming, outgoing []*graphstore.Edge, buildUser string) []Violation {
	if err := validateScriptImports(s.Code); err != nil {
		return nil
	}

	input := ScriptRuleInput{StateID: state.ID}
	for _, e := range incoming {
		input.Incoming = append(input.Incoming, scriptEdgeView(e, buildUser))
	}
	for _, e := range outgoing {
		input.Outgoing = append(input.Outgoing, scriptEdgeView(e, buildUser))
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil
	}
	if _, err := i.Eval(s.Code); err != nil {
		return nil
	}
	fn, err := i.Eval("main.CheckRule")
	if err != nil {
		return nil
	}
	checkRule, ok := fn.Interface().(func(string) (string, error))
	if !ok {
		return nil
	}
	outJSON, err := checkRule(string(inputJSON))
	if err != nil {
		return nil
	}

	var scriptOut []ScriptViolation
	if err := json.Unmarshal([]byte(outJSON), &scriptOut); err != nil {
		return nil
	}

	var out []Violation
	for _, sv := range scriptOut {
		out = append(out, Violation{
			Type:     sv.Type,
			Level:    Level(sv.Level),
			Category: CategoryComposite,
			Element:  access.Element{Xpath: sv.Xpath},
			Code:     sv.Code,
		})
	}
	return out
}

func scriptEdgeView(e *graphstore.Edge, buildUser string) ScriptEdgeView {
	m, _ := e.Metrics(buildUser)
	return ScriptEdgeView{
		DstStateID:    e.Dst.ID,
		Xpath:         e.Element.Xpath,
		Tag:           e.Element.Tag,
		ActionName:    e.Action.Name(),
		AbilityScore:  m.AbilityScore,
		ContrastRatio: m.ContrastRatio,
		Width:         m.ElementWidth,
		Height:        m.ElementHeight,
	}
}

func validateScriptImports(code string) error {
	lines := strings.Split(code, "\n")
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, ")"):
			inBlock = false
		case inBlock:
			pkg := strings.Trim(trimmed, `"`)
			if pkg != "" && !scriptedRuleAllowedPackages[pkg] {
				return fmt.Errorf("scripted rule imports disallowed package %q", pkg)
			}
		case strings.HasPrefix(trimmed, "import "):
			pkg := strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`)
			if !scriptedRuleAllowedPackages[pkg] {
				return fmt.Errorf("scripted rule imports disallowed package %q", pkg)
			}
		}
	}
	return nil
}
