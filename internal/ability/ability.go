// Package ability implements UserAbility/UserModel PNA (Perceive/
// Navigate/Act) scoring (C5). Scoring never performs side-effecting
// interface operations beyond queries, so it is safe to call during
// simulated re-crawl (C9).
package ability

import (
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// UserAbility produces three scores in [0,1] for one capability dimension
// (e.g. "sees high contrast only", "uses keyboard only"). Default
// implementations return zero; a concrete ability overrides the axes it
// actually models.
type UserAbility interface {
	Name() string
	// ActionSet lists the action names this ability can perform; used to
	// gate the ACT axis before scoring.
	ActionSet() []string
	ScorePerceive(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics) float64
	ScoreNavigate(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics) float64
	ScoreAct(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics, actionName string) float64
	Describe() string
}

// BaseAbility is embedded by concrete abilities to get the zero-score
// defaults spec.md requires, overriding only the axes they model.
type BaseAbility struct{}

func (BaseAbility) ScorePerceive(access.InterfaceAccess, access.Element, metrics.EdgeMetrics) float64 {
	return 0
}
func (BaseAbility) ScoreNavigate(access.InterfaceAccess, access.Element, metrics.EdgeMetrics) float64 {
	return 0
}
func (BaseAbility) ScoreAct(access.InterfaceAccess, access.Element, metrics.EdgeMetrics, string) float64 {
	return 0
}
func (BaseAbility) Describe() string { return "" }

// UserModel is a named set of abilities. Its effective action set is the
// union of its abilities' action sets.
type UserModel struct {
	name      string
	abilities []UserAbility
}

// New builds a UserModel from a name and a set of abilities.
func New(name string, abilities ...UserAbility) *UserModel {
	return &UserModel{name: name, abilities: abilities}
}

func (u *UserModel) Name() string { return u.name }

// Claims reports whether any ability claims actionName in its action set.
func (u *UserModel) Claims(actionName string) bool {
	for _, a := range u.abilities {
		for _, n := range a.ActionSet() {
			if n == "*" || n == actionName {
				return true
			}
		}
	}
	return false
}

// Score implements access.Scorer (spec.md §4.5).
func (u *UserModel) Score(axes access.ScoreAxis, ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics, actionName string) access.ScoreResult {
	if axes&access.AxisAct != 0 && actionName != "" && !u.Claims(actionName) {
		return access.ScoreResult{}
	}

	pcv := u.maxPerceive(ia, el, m)
	if pcv == 0 {
		return access.ScoreResult{}
	}

	if axes&access.AxisNavigate != 0 && axes&access.AxisAct != 0 {
		return u.scoreJoint(ia, el, m, actionName, pcv)
	}

	switch {
	case axes&access.AxisNavigate != 0:
		nav := u.maxNavigate(ia, el, m)
		return access.ScoreResult{Combined: nav, Pcv: pcv, Nav: nav}
	case axes&access.AxisAct != 0:
		act := u.maxAct(ia, el, m, actionName)
		return access.ScoreResult{Combined: act, Pcv: pcv, Act: act}
	default:
		return access.ScoreResult{Combined: pcv, Pcv: pcv}
	}
}

func (u *UserModel) maxPerceive(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics) float64 {
	best := 0.0
	for _, a := range u.abilities {
		if s := a.ScorePerceive(ia, el, m); s > best {
			best = s
		}
	}
	return best
}

func (u *UserModel) maxNavigate(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics) float64 {
	best := 0.0
	for _, a := range u.abilities {
		if s := a.ScoreNavigate(ia, el, m); s > best {
			best = s
		}
	}
	return best
}

func (u *UserModel) maxAct(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics, actionName string) float64 {
	best := 0.0
	for _, a := range u.abilities {
		if s := a.ScoreAct(ia, el, m, actionName); s > best {
			best = s
		}
	}
	return best
}

// scoreJoint computes NAV and ACT jointly so that act-capable abilities are
// ranked by their navigation score: the best nav-capable ability among
// those that can act wins (spec.md §4.5).
func (u *UserModel) scoreJoint(ia access.InterfaceAccess, el access.Element, m metrics.EdgeMetrics, actionName string, pcv float64) access.ScoreResult {
	var bestAbility UserAbility
	bestNav, bestAct := -1.0, 0.0
	for _, a := range u.abilities {
		act := a.ScoreAct(ia, el, m, actionName)
		if act <= 0 {
			continue
		}
		nav := a.ScoreNavigate(ia, el, m)
		if nav > bestNav {
			bestNav = nav
			bestAct = act
			bestAbility = a
		}
	}
	if bestAbility == nil {
		return access.ScoreResult{}
	}
	if bestNav < 0 {
		bestNav = 0
	}
	combined := bestNav
	if bestAct < combined {
		combined = bestAct
	}
	if pcv < combined {
		combined = pcv
	}
	return access.ScoreResult{
		Combined: combined,
		Ability:  bestAbility.Name(),
		Pcv:      pcv,
		Nav:      bestNav,
		Act:      bestAct,
	}
}
