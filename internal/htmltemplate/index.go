package htmltemplate

// treeIndex counts occurrences of ids, classes, and attribute values across
// a whole tree, so correspondence can test "globally unique in this tree".
type treeIndex struct {
	ids     map[string]int
	classes map[string]int
	attrs   map[string]int // key: attrName + "\x00" + value
}

func buildIndex(root *Node) *treeIndex {
	idx := &treeIndex{
		ids:     map[string]int{},
		classes: map[string]int{},
		attrs:   map[string]int{},
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if id, ok := n.Attrs["id"]; ok && id != "" {
			idx.ids[id]++
		}
		for c := range n.Classes {
			idx.classes[c]++
		}
		for k, v := range n.Attrs {
			if k == "id" {
				continue
			}
			idx.attrs[k+"\x00"+v]++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return idx
}

func (idx *treeIndex) uniqueClass(classes map[string]bool) (string, bool) {
	for c := range classes {
		if idx.classes[c] == 1 {
			return c, true
		}
	}
	return "", false
}

func (idx *treeIndex) uniqueAttr(attrs map[string]string) (string, string, bool) {
	for k, v := range attrs {
		if idx.attrs[k+"\x00"+v] == 1 {
			return k, v, true
		}
	}
	return "", "", false
}
