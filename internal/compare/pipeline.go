// Package compare implements the ordered comparator pipeline (C1) that
// decides state equality. Each stage is a pure predicate over two
// StateDataRepresentation values; flags control whether the pipeline
// short-circuits on that stage's result.
package compare

import (
	"fmt"
	"regexp"
	"strings"
)

// Flag is a short-circuit policy bit attached to a pipeline stage.
type Flag int

const (
	// StopIfTrue returns early with true when the stage evaluates true.
	StopIfTrue Flag = 1 << iota
	// StopIfFalse returns early with false when the stage evaluates false.
	StopIfFalse
)

// StateDataRepresentation is whatever a comparator needs to see of a state.
// Concrete StateData implementations (e.g. access.StateData) satisfy it by
// exposing the fields a given comparator cares about; comparators type-
// assert to the representation they need.
type StateDataRepresentation interface{}

// Comparator is a pure equality predicate. It may return an error instead
// of a verdict (compare.ErrComparator-wrapped by the pipeline), in which
// case the pair is treated as "different".
type Comparator func(a, b StateDataRepresentation) (bool, error)

// Stage pairs a comparator with its short-circuit flags.
type Stage struct {
	Name       string
	Compare    Comparator
	Flags      Flag
}

// Pipeline is an ordered, non-empty sequence of stages.
type Pipeline struct {
	stages []Stage
}

// ErrEmptyPipeline is a configuration error: an empty pipeline can never
// produce a verdict.
var ErrEmptyPipeline = fmt.Errorf("compare: empty pipeline is a configuration error")

// ErrComparator wraps a comparator failure; the caller treats the pair as
// "different" per spec.md §7.
var ErrComparator = fmt.Errorf("compare: comparator failed")

// New builds a pipeline from stages, in order. It does not validate
// non-emptiness eagerly so zero-value construction followed by appends is
// possible; Compare itself rejects an empty pipeline.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Compare runs the stages in order. On the last stage the result is always
// returned, regardless of its flags. On any earlier stage, it returns early
// only if the corresponding StopIf* flag is set for that stage's outcome.
func (p *Pipeline) Compare(a, b StateDataRepresentation) (bool, error) {
	if len(p.stages) == 0 {
		return false, ErrEmptyPipeline
	}
	var last bool
	for i, st := range p.stages {
		m, err := st.Compare(a, b)
		if err != nil {
			return false, fmt.Errorf("%w: stage %q: %v", ErrComparator, st.Name, err)
		}
		last = m
		if i == len(p.stages)-1 {
			return last, nil
		}
		if m && st.Flags&StopIfTrue != 0 {
			return true, nil
		}
		if !m && st.Flags&StopIfFalse != 0 {
			return false, nil
		}
	}
	return last, nil
}

var whitespaceOrSemicolons = regexp.MustCompile(`[\s;]+`)

func squash(s string) string {
	return strings.TrimSpace(whitespaceOrSemicolons.ReplaceAllString(s, " "))
}

// StrictStringComparator compares two strings for equality after squashing
// runs of whitespace and semicolons. It is the cheapest, most precise stage:
// identical markup is identical state.
func StrictStringComparator(extract func(StateDataRepresentation) (string, error)) Comparator {
	return func(a, b StateDataRepresentation) (bool, error) {
		sa, err := extract(a)
		if err != nil {
			return false, err
		}
		sb, err := extract(b)
		if err != nil {
			return false, err
		}
		return squash(sa) == squash(sb), nil
	}
}
