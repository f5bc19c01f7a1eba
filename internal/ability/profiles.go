package ability

import (
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// Build is the maximally capable user used to discover the full graph: it
// perceives, navigates, and acts on anything, so the build crawl never
// stalls for a reason other than the interface itself.
type Build struct{ BaseAbility }

func (Build) Name() string          { return "build" }
func (Build) ActionSet() []string   { return []string{"*"} }
func (Build) Describe() string      { return "maximally capable build user" }
func (Build) ScorePerceive(access.InterfaceAccess, access.Element, metrics.EdgeMetrics) float64 {
	return 1
}
func (Build) ScoreNavigate(access.InterfaceAccess, access.Element, metrics.EdgeMetrics) float64 {
	return 1
}
func (Build) ScoreAct(access.InterfaceAccess, access.Element, metrics.EdgeMetrics, string) float64 {
	return 1
}

// LowVision perceives an element well only when its contrast ratio clears
// the WCAG AA text threshold; navigation is full strength, and action is
// full strength on targets of at least 44x44 and half strength on smaller
// ones.
type LowVision struct{ BaseAbility }

func (LowVision) Name() string        { return "low_vision" }
func (LowVision) ActionSet() []string { return []string{"click", "toggle", "follow", "form_fill"} }
func (LowVision) Describe() string    { return "low vision, requires sufficient contrast to perceive elements" }

func (LowVision) ScorePerceive(_ access.InterfaceAccess, _ access.Element, m metrics.EdgeMetrics) float64 {
	if m.ContrastRatio >= 4.5 {
		return 1
	}
	if m.ContrastRatio >= 3.0 {
		return 0.5
	}
	return 0
}
func (LowVision) ScoreNavigate(access.InterfaceAccess, access.Element, metrics.EdgeMetrics) float64 {
	return 1
}
func (LowVision) ScoreAct(_ access.InterfaceAccess, _ access.Element, m metrics.EdgeMetrics, actionName string) float64 {
	if m.ElementWidth >= 44 && m.ElementHeight >= 44 {
		return 1
	}
	return 0.5
}

// ScreenReader perceives and navigates by traversing the tab order only;
// it cannot perform a mouse-only action that has no keyboard-reachable
// equivalent. It perceives anything with reasonable text content.
type ScreenReader struct{ BaseAbility }

func (ScreenReader) Name() string        { return "screen_reader" }
func (ScreenReader) ActionSet() []string { return []string{"key_activate", "toggle", "follow", "form_fill"} }
func (ScreenReader) Describe() string    { return "keyboard/screen-reader only, cannot reach mouse-only controls" }

func (ScreenReader) ScorePerceive(_ access.InterfaceAccess, el access.Element, _ metrics.EdgeMetrics) float64 {
	if el.Text != "" || el.Attrs["aria-label"] != "" {
		return 1
	}
	return 0.3
}
func (ScreenReader) ScoreNavigate(_ access.InterfaceAccess, _ access.Element, m metrics.EdgeMetrics) float64 {
	if m.NavigationDistance > 0 && m.NavigationDistance <= 50 {
		return 1
	}
	if m.NavigationDistance == 0 {
		return 1
	}
	return 0
}
func (ScreenReader) ScoreAct(access.InterfaceAccess, access.Element, metrics.EdgeMetrics, string) float64 {
	return 1
}

// Motor is slowed by distance between interactive elements (navigation
// scores 0.3 once NavigationDistance exceeds 30) and by small targets
// (action scores 0.2 below 44x44); it perceives fully.
type Motor struct{ BaseAbility }

func (Motor) Name() string        { return "motor" }
func (Motor) ActionSet() []string { return []string{"click", "toggle", "follow", "form_fill"} }
func (Motor) Describe() string    { return "motor impairment, penalized by distance between targets" }

func (Motor) ScorePerceive(access.InterfaceAccess, access.Element, metrics.EdgeMetrics) float64 {
	return 1
}
func (Motor) ScoreNavigate(_ access.InterfaceAccess, _ access.Element, m metrics.EdgeMetrics) float64 {
	if m.NavigationDistance > 30 {
		return 0.3
	}
	return 1
}
func (Motor) ScoreAct(_ access.InterfaceAccess, _ access.Element, m metrics.EdgeMetrics, _ string) float64 {
	if m.ElementWidth >= 44 && m.ElementHeight >= 44 {
		return 1
	}
	return 0.2
}
