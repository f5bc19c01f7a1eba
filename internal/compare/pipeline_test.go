package compare

import (
	"errors"
	"testing"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/stretchr/testify/require"
)

func sd(dom string) access.StateData {
	return access.StateData{DOM: dom}
}

func TestPipeline_EmptyIsConfigError(t *testing.T) {
	p := New()
	_, err := p.Compare(sd("a"), sd("a"))
	require.ErrorIs(t, err, ErrEmptyPipeline)
}

func TestPipeline_LastStageResultAlwaysReturned(t *testing.T) {
	always := func(v bool) Comparator {
		return func(a, b StateDataRepresentation) (bool, error) { return v, nil }
	}
	p := New(
		Stage{Name: "first", Compare: always(false), Flags: StopIfFalse},
		Stage{Name: "last", Compare: always(true), Flags: 0},
	)
	ok, err := p.Compare(sd("x"), sd("y"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPipeline_StopIfTrueShortCircuits(t *testing.T) {
	calledSecond := false
	p := New(
		Stage{Name: "first", Compare: func(a, b StateDataRepresentation) (bool, error) { return true, nil }, Flags: StopIfTrue},
		Stage{Name: "second", Compare: func(a, b StateDataRepresentation) (bool, error) {
			calledSecond = true
			return false, nil
		}, Flags: 0},
	)
	ok, err := p.Compare(sd("x"), sd("x"))
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, calledSecond)
}

func TestPipeline_ComparatorErrorWraps(t *testing.T) {
	boom := errors.New("boom")
	p := New(Stage{Name: "broken", Compare: func(a, b StateDataRepresentation) (bool, error) { return false, boom }})
	_, err := p.Compare(sd("x"), sd("y"))
	require.ErrorIs(t, err, ErrComparator)
}

func TestDefaultPipeline_IdenticalDOMsEqual(t *testing.T) {
	p := Default()
	dom := `<html><body><div id="a">hi</div></body></html>`
	ok, err := p.Compare(sd(dom), sd(dom))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDefaultPipeline_DifferentStructureNotEqual(t *testing.T) {
	p := Default()
	a := `<html><body><div>hi</div></body></html>`
	b := `<html><body><span>bye</span><p>x</p></body></html>`
	ok, err := p.Compare(sd(a), sd(b))
	require.NoError(t, err)
	require.False(t, ok)
}
