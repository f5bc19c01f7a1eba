package webaccess

import "github.com/a11ycrawl/a11ycrawl/internal/colorcontrast"

// contrastRatio computes the WCAG contrast ratio between two CSS color
// strings captured from getComputedStyle.
func contrastRatio(fg, bg string) float64 {
	return colorcontrast.Ratio(fg, bg)
}
