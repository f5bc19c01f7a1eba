// Package colorcontrast computes WCAG relative-luminance contrast ratios.
// It is a leaf package with no dependency on the browser driver or the
// analyzer, so both internal/webaccess (build-time capture) and
// internal/analyzer (focus-indicator rule evaluation) can share it without
// creating an import cycle.
package colorcontrast

import (
	"math"
	"strconv"
	"strings"
)

// Ratio computes the WCAG contrast ratio between two CSS color strings (as
// produced by getComputedStyle, which always normalizes to rgb()/rgba()).
// Unparseable colors yield a ratio of 1 (no contrast), so gated abilities
// treat them as failing rather than panicking on a format surprise.
func Ratio(fg, bg string) float64 {
	fr, fgc, fb, ok1 := ParseRGB(fg)
	br, bgc, bb, ok2 := ParseRGB(bg)
	if !ok1 || !ok2 {
		return 1
	}
	l1 := RelativeLuminance(fr, fgc, fb)
	l2 := RelativeLuminance(br, bgc, bb)
	lighter, darker := l1, l2
	if l2 > l1 {
		lighter, darker = l2, l1
	}
	return (lighter + 0.05) / (darker + 0.05)
}

// ParseRGB extracts integer channels from a CSS "rgb(r, g, b)" or
// "rgba(r, g, b, a)" string.
func ParseRGB(s string) (r, g, b int, ok bool) {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "(")
	end := strings.Index(s, ")")
	if start < 0 || end <= start {
		return 0, 0, 0, false
	}
	parts := strings.Split(s[start+1:end], ",")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	vals := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, 0, 0, false
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], true
}

// RelativeLuminance is the WCAG sRGB gamma-corrected relative luminance.
func RelativeLuminance(r, g, b int) float64 {
	channel := func(c int) float64 {
		v := float64(c) / 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*channel(r) + 0.7152*channel(g) + 0.0722*channel(b)
}
