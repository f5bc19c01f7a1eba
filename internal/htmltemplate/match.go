package htmltemplate

import "fmt"

// Disagreement describes the first pair of nodes the match walk found to
// disagree (spec.md §4.2 "Match walk" / "Failure modes").
type Disagreement struct {
	Template *Node
	Observed *Node
	Reason   string
}

func (d *Disagreement) Error() string {
	if d == nil {
		return "<no disagreement>"
	}
	return fmt.Sprintf("template mismatch at <%s>: %s", d.Template.Tag, d.Reason)
}

// matchWalk compares tpl (the template side) against obs (a freshly parsed
// DOM) without mutating either, returning the first disagreement found.
func matchWalk(tpl *Node, tplIdx *treeIndex, obs *Node, obsIdx *treeIndex) *Disagreement {
	if !tpl.Reachable || !obs.Reachable {
		return nil
	}
	if tpl.Tag != obs.Tag {
		return &Disagreement{tpl, obs, "tag mismatch"}
	}
	for k, v := range tpl.Attrs {
		if tpl.UnstableAttrs[k] {
			continue
		}
		ov, ok := obs.Attrs[k]
		if !ok {
			return &Disagreement{tpl, obs, fmt.Sprintf("required attribute %q missing", k)}
		}
		if ov != v {
			return &Disagreement{tpl, obs, fmt.Sprintf("required attribute %q value differs", k)}
		}
	}
	if !tpl.UnstableClass && !sameClassSet(tpl.Classes, obs.Classes) {
		return &Disagreement{tpl, obs, "class set differs"}
	}
	if !tpl.UnstableText && tpl.Text != obs.Text {
		return &Disagreement{tpl, obs, "text differs"}
	}
	return matchChildren(tpl, tplIdx, obs, obsIdx)
}

func matchChildren(tpl *Node, tplIdx *treeIndex, obs *Node, obsIdx *treeIndex) *Disagreement {
	tplChildren := tpl.Children
	obsChildren := obs.Children

	var backlogTpl, backlogObs []*Node
	i, j := 0, 0

	for i < len(tplChildren) && j < len(obsChildren) {
		a, b := tplChildren[i], obsChildren[j]
		if correspond(a, tplIdx, b, obsIdx) {
			if d := matchWalk(a, tplIdx, b, obsIdx); d != nil {
				return d
			}
			i++
			j++
			continue
		}
		if idx := findMatch(b, obsIdx, backlogTpl, tplIdx, true); idx >= 0 {
			if d := matchWalk(backlogTpl[idx], tplIdx, b, obsIdx); d != nil {
				return d
			}
			backlogTpl = append(backlogTpl[:idx], backlogTpl[idx+1:]...)
			j++
			continue
		}
		if idx := findMatch(a, tplIdx, backlogObs, obsIdx, false); idx >= 0 {
			if d := matchWalk(a, tplIdx, backlogObs[idx], obsIdx); d != nil {
				return d
			}
			backlogObs = append(backlogObs[:idx], backlogObs[idx+1:]...)
			i++
			continue
		}
		if !a.UnstableElement && !b.UnstableElement {
			return &Disagreement{a, b, "child with no correspondence"}
		}
		if i <= j {
			backlogTpl = append(backlogTpl, a)
			i++
		} else {
			backlogObs = append(backlogObs, b)
			j++
		}
	}
	for ; i < len(tplChildren); i++ {
		a := tplChildren[i]
		if idx := findMatch(a, tplIdx, backlogObs, obsIdx, false); idx >= 0 {
			if d := matchWalk(a, tplIdx, backlogObs[idx], obsIdx); d != nil {
				return d
			}
			backlogObs = append(backlogObs[:idx], backlogObs[idx+1:]...)
			continue
		}
		if !a.UnstableElement {
			return &Disagreement{a, nil, "template child missing from observed DOM"}
		}
	}
	for ; j < len(obsChildren); j++ {
		b := obsChildren[j]
		if idx := findMatch(b, obsIdx, backlogTpl, tplIdx, true); idx >= 0 {
			if d := matchWalk(backlogTpl[idx], tplIdx, b, obsIdx); d != nil {
				return d
			}
			backlogTpl = append(backlogTpl[:idx], backlogTpl[idx+1:]...)
			continue
		}
		// An unmatched observed child is tolerated only if some sibling
		// template slot is already known unstable (insertion into an
		// already-variable region); otherwise it's a genuine new element.
		tolerated := false
		for _, c := range tplChildren {
			if c.UnstableElement {
				tolerated = true
				break
			}
		}
		if !tolerated {
			return &Disagreement{tpl, b, "observed child with no template correspondence"}
		}
	}
	return nil
}

// findMatch looks for a node in backlog corresponding to target, returning
// its index or -1. tplSide indicates whether backlog holds template-side
// nodes (true) or observed-side nodes (false), which only affects argument
// order passed to correspond.
func findMatch(target *Node, targetIdx *treeIndex, backlog []*Node, backlogIdx *treeIndex, tplSide bool) int {
	for k, cand := range backlog {
		var ok bool
		if tplSide {
			ok = correspond(cand, backlogIdx, target, targetIdx)
		} else {
			ok = correspond(target, targetIdx, cand, backlogIdx)
		}
		if ok {
			return k
		}
	}
	return -1
}
