package htmltemplate

// correspond decides whether two elements represent "the same" element
// across two DOM snapshots (spec.md §4.2 "Element correspondence").
//
// Unreachable subtrees are opaque: they always correspond to anything of
// the same tag, since their interior is never inspected.
func correspond(a *Node, idxA *treeIndex, b *Node, idxB *treeIndex) bool {
	if a.Tag != b.Tag {
		return false
	}
	if !a.Reachable || !b.Reachable {
		return true
	}
	if idA, ok := a.Attrs["id"]; ok && idA != "" {
		if idB, ok := b.Attrs["id"]; ok && idA == idB {
			return true
		}
	}
	if c, ok := idxA.uniqueClass(a.Classes); ok {
		if idxB.classes[c] == 1 && b.Classes[c] {
			return true
		}
	}
	if k, v, ok := idxA.uniqueAttr(a.Attrs); ok {
		if bv, exists := b.Attrs[k]; exists && bv == v && idxB.attrs[k+"\x00"+v] == 1 {
			return true
		}
	}
	// Fall through: absence of disqualifying differences. Both having
	// non-empty, wholly disjoint class sets disqualifies the match.
	if len(a.Classes) > 0 && len(b.Classes) > 0 {
		overlap := false
		for c := range a.Classes {
			if b.Classes[c] {
				overlap = true
				break
			}
		}
		if !overlap {
			return false
		}
	}
	return true
}
