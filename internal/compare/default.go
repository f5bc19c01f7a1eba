package compare

import (
	"fmt"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/htmltemplate"
)

func domOf(r StateDataRepresentation) (string, error) {
	sd, ok := r.(access.StateData)
	if !ok {
		return "", fmt.Errorf("compare: expected access.StateData, got %T", r)
	}
	return sd.DOM, nil
}

func structuralComparator(a, b StateDataRepresentation) (bool, error) {
	da, err := domOf(a)
	if err != nil {
		return false, err
	}
	db, err := domOf(b)
	if err != nil {
		return false, err
	}
	na, err := htmltemplate.ParseDOM(da)
	if err != nil {
		return false, err
	}
	nb, err := htmltemplate.ParseDOM(db)
	if err != nil {
		return false, err
	}
	return htmltemplate.StructuralFingerprint(na) == htmltemplate.StructuralFingerprint(nb), nil
}

func textualComparator(a, b StateDataRepresentation) (bool, error) {
	da, err := domOf(a)
	if err != nil {
		return false, err
	}
	db, err := domOf(b)
	if err != nil {
		return false, err
	}
	na, err := htmltemplate.ParseDOM(da)
	if err != nil {
		return false, err
	}
	nb, err := htmltemplate.ParseDOM(db)
	if err != nil {
		return false, err
	}
	return htmltemplate.TextFingerprint(na) == htmltemplate.TextFingerprint(nb), nil
}

// Default builds the default three-stage pipeline described in spec.md
// §4.1: strict string equality (stop if true), then structural (stop if
// false), then textual (stop if false).
func Default() *Pipeline {
	return New(
		Stage{
			Name:    "strict-string",
			Compare: StrictStringComparator(domOf),
			Flags:   StopIfTrue,
		},
		Stage{
			Name:    "structural",
			Compare: structuralComparator,
			Flags:   StopIfFalse,
		},
		Stage{
			Name:    "textual",
			Compare: textualComparator,
			Flags:   StopIfFalse,
		},
	)
}
