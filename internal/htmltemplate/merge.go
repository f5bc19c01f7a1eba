package htmltemplate

// mergeNodes merges src into dst in place (spec.md §4.2 ADD). dst is
// mutated to reflect both the content it already held and whatever src
// introduces that disagrees with it, recording disagreement as instability.
//
// overwrite controls attribute/text conflict resolution: off unions values
// and marks unstable; on takes the new value outright unless the field is
// already unstable. Children always union via the two-cursor algorithm
// regardless of overwrite, except that overwrite mode drops stable
// leftovers that vanished from src (spec.md §4.2 "Children merge").
func mergeNodes(dst *Node, dstIdx *treeIndex, src *Node, srcIdx *treeIndex, overwrite bool) {
	if !dst.Reachable || !src.Reachable {
		return
	}
	mergeAttrs(dst, src, overwrite)
	mergeClasses(dst, src)
	mergeText(dst, src, overwrite)
	mergeChildren(dst, dstIdx, src, srcIdx, overwrite)
}

func mergeAttrs(dst, src *Node, overwrite bool) {
	keys := map[string]bool{}
	for k := range dst.Attrs {
		keys[k] = true
	}
	for k := range src.Attrs {
		keys[k] = true
	}
	for k := range keys {
		dv, dok := dst.Attrs[k]
		sv, sok := src.Attrs[k]
		switch {
		case dok && sok && dv == sv:
			// agree: copy as-is, no change to stability.
		case overwrite && !dst.UnstableAttrs[k]:
			if sok {
				dst.Attrs[k] = sv
			} else {
				delete(dst.Attrs, k)
			}
		default:
			dst.UnstableAttrs[k] = true
			if sok {
				dst.Attrs[k] = unionValues(dv, sv)
			}
		}
	}
}

func mergeClasses(dst, src *Node) {
	if dst.UnstableClass {
		for c := range src.Classes {
			dst.Classes[c] = true
		}
		return
	}
	if sameClassSet(dst.Classes, src.Classes) {
		return
	}
	dst.UnstableClass = true
	for c := range src.Classes {
		dst.Classes[c] = true
	}
}

func sameClassSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for c := range a {
		if !b[c] {
			return false
		}
	}
	return true
}

func mergeText(dst, src *Node, overwrite bool) {
	if dst.Text == src.Text {
		return
	}
	if overwrite && !dst.UnstableText {
		dst.Text = src.Text
		return
	}
	dst.UnstableText = true
	dst.Text = unionValues(dst.Text, src.Text)
}

// mergeChildren walks dst's and src's children with two cursors, as
// described in spec.md §4.2. Unmatched children are skipped into a backlog
// on their own side and, outside overwrite mode, marked unstable_element;
// a later child on the
// opposite side may still resolve against that backlog.
func mergeChildren(dst *Node, dstIdx *treeIndex, src *Node, srcIdx *treeIndex, overwrite bool) {
	dstChildren := dst.Children
	srcChildren := src.Children

	var merged []*Node
	var backlog1, backlog2 []*Node // skipped-from-dst, skipped-from-src
	i, j := 0, 0

	placeFromBacklog1 := func(b *Node) bool {
		for k, cand := range backlog1 {
			if correspond(cand, dstIdx, b, srcIdx) {
				mergeNodes(cand, dstIdx, b, srcIdx, overwrite)
				merged = append(merged, cand)
				backlog1 = append(backlog1[:k], backlog1[k+1:]...)
				return true
			}
		}
		return false
	}
	placeFromBacklog2 := func(a *Node) bool {
		for k, cand := range backlog2 {
			if correspond(a, dstIdx, cand, srcIdx) {
				mergeNodes(a, dstIdx, cand, srcIdx, overwrite)
				merged = append(merged, a)
				backlog2 = append(backlog2[:k], backlog2[k+1:]...)
				return true
			}
		}
		return false
	}

	for i < len(dstChildren) && j < len(srcChildren) {
		a, b := dstChildren[i], srcChildren[j]
		if correspond(a, dstIdx, b, srcIdx) {
			mergeNodes(a, dstIdx, b, srcIdx, overwrite)
			merged = append(merged, a)
			i++
			j++
			continue
		}
		if placeFromBacklog1(b) {
			j++
			continue
		}
		if placeFromBacklog2(a) {
			i++
			continue
		}
		// No correspondence: skip one child. Prefer the side whose index
		// lags (shorter traversed-so-far), then the longer list, then side 1.
		skipDst := true
		if i == j {
			skipDst = len(dstChildren) >= len(srcChildren)
		} else {
			skipDst = i < j
		}
		if skipDst {
			if !overwrite {
				a.UnstableElement = true
			}
			backlog1 = append(backlog1, a)
			i++
		} else {
			if !overwrite {
				b.UnstableElement = true
			}
			backlog2 = append(backlog2, b)
			j++
		}
	}
	for i < len(dstChildren) {
		a := dstChildren[i]
		if !placeFromBacklog2(a) {
			a.UnstableElement = true
			merged = append(merged, a)
		}
		i++
	}
	for j < len(srcChildren) {
		b := srcChildren[j]
		if !placeFromBacklog1(b) {
			clone := b.clone()
			clone.UnstableElement = true
			merged = append(merged, clone)
		}
		j++
	}
	// Drain remaining backlogs: anything still unmatched is unstable and,
	// in overwrite mode, dropped from the dst side if it was never marked
	// unstable before this merge (it vanished from the new DOM).
	for _, a := range backlog1 {
		if overwrite && !a.UnstableElement {
			continue
		}
		merged = append(merged, a)
	}
	for _, b := range backlog2 {
		clone := b.clone()
		clone.UnstableElement = true
		merged = append(merged, clone)
	}
	dst.Children = merged
}
