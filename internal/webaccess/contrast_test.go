package webaccess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContrastRatio_BlackOnWhiteIsMax(t *testing.T) {
	r := contrastRatio("rgb(0, 0, 0)", "rgb(255, 255, 255)")
	require.InDelta(t, 21.0, r, 0.01)
}

func TestContrastRatio_IdenticalColorsIsOne(t *testing.T) {
	r := contrastRatio("rgb(120, 120, 120)", "rgb(120, 120, 120)")
	require.InDelta(t, 1.0, r, 0.01)
}

func TestContrastRatio_OrderIndependent(t *testing.T) {
	a := contrastRatio("rgb(10, 10, 10)", "rgb(200, 200, 200)")
	b := contrastRatio("rgb(200, 200, 200)", "rgb(10, 10, 10)")
	require.InDelta(t, a, b, 0.001)
}

func TestContrastRatio_UnparseableYieldsOne(t *testing.T) {
	r := contrastRatio("currentcolor", "rgb(255, 255, 255)")
	require.Equal(t, 1.0, r)
}
