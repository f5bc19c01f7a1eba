// Package metrics defines EdgeMetrics, the per-user, per-edge numeric
// outcome record (spec.md data model), and its monotone-best update rule:
// overwrite a field only if the new observation is strictly better on that
// field, with time fields taking the minimum.
package metrics

import (
	"time"
)

// BuildDataAttachment is the minimal shape EdgeMetrics needs from a
// builddata.Cache. Declared locally (rather than importing
// internal/builddata) so metrics stays a leaf package with no dependency
// on the capture machinery; builddata.Cache satisfies this structurally.
type BuildDataAttachment interface {
	IsCaptured() bool
}

// EdgeMetrics is the per-user outcome of attempting one edge's action.
type EdgeMetrics struct {
	AbilityScore float64
	PcvScore     float64
	NavScore     float64
	ActScore     float64
	ActTime      time.Duration

	Err error

	BuildData BuildDataAttachment

	// Extensions, scored by domain-specific rules (C10).
	NavigationDistance int
	ContrastRatio      float64
	ElementWidth        float64
	ElementHeight       float64
}

// Zero returns a zero-ability EdgeMetrics carrying an error marker, used
// when an action could not be attempted or scored positively.
func Zero(err error) EdgeMetrics {
	return EdgeMetrics{Err: err}
}

// UpdateBest merges incoming into the receiver in place, keeping whichever
// value is "more able" per field: numeric ability/score fields are
// overwritten only if strictly greater, time fields and NavigationDistance
// take the smallest nonzero value. Non-numeric fields (BuildData, Err) move over whenever the overall
// ability improves, since they describe the same better observation.
func (m *EdgeMetrics) UpdateBest(incoming EdgeMetrics) {
	improved := false
	if incoming.AbilityScore > m.AbilityScore {
		m.AbilityScore = incoming.AbilityScore
		improved = true
	}
	if incoming.PcvScore > m.PcvScore {
		m.PcvScore = incoming.PcvScore
	}
	if incoming.NavScore > m.NavScore {
		m.NavScore = incoming.NavScore
	}
	if incoming.ActScore > m.ActScore {
		m.ActScore = incoming.ActScore
	}
	if m.ActTime == 0 || (incoming.ActTime > 0 && incoming.ActTime < m.ActTime) {
		m.ActTime = incoming.ActTime
	}
	if m.NavigationDistance == 0 || (incoming.NavigationDistance > 0 && incoming.NavigationDistance < m.NavigationDistance) {
		m.NavigationDistance = incoming.NavigationDistance
	}
	if incoming.ContrastRatio > m.ContrastRatio {
		m.ContrastRatio = incoming.ContrastRatio
	}
	if incoming.ElementWidth > m.ElementWidth {
		m.ElementWidth = incoming.ElementWidth
	}
	if incoming.ElementHeight > m.ElementHeight {
		m.ElementHeight = incoming.ElementHeight
	}
	if improved || m.BuildData == nil {
		if incoming.BuildData != nil {
			m.BuildData = incoming.BuildData
		}
		m.Err = incoming.Err
	}
}
