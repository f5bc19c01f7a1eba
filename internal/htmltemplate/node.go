// Package htmltemplate implements the HTML template engine (C2): merging
// multiple observed DOM snapshots of "the same" page into a template that
// marks which subtrees, attributes, and text nodes are unstable, and
// matching new DOMs against that template while tolerating reordering,
// insertion, and deletion of unstable children.
package htmltemplate

import "strings"

// Node is one element in the template tree (or a source DOM tree being
// merged/matched against it).
type Node struct {
	Tag string

	// Attrs holds the current attribute values, excluding "class". When an
	// attribute is unstable its value is the "||"-joined union of every
	// value observed for it.
	Attrs map[string]string
	// UnstableAttrs names the attributes in Attrs whose value varies.
	UnstableAttrs map[string]bool

	// Classes is the current class set. When UnstableClass is true it holds
	// the symmetric union of every class set observed.
	Classes       map[string]bool
	UnstableClass bool

	Text         string
	UnstableText bool

	// UnstableElement marks that this whole subtree may appear, disappear,
	// or reorder relative to its siblings.
	UnstableElement bool

	// Reachable is false for elements the interface flags as not reachable;
	// such subtrees are opaque during merge/match (never disagree).
	Reachable bool

	Children []*Node
}

func newNode(tag string) *Node {
	return &Node{
		Tag:           tag,
		Attrs:         map[string]string{},
		UnstableAttrs: map[string]bool{},
		Classes:       map[string]bool{},
		Reachable:     true,
	}
}

// clone deep-copies a node and its subtree. Templates must never be shared
// across goroutines (spec.md §5); callers copy on handoff.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Tag:             n.Tag,
		Attrs:           make(map[string]string, len(n.Attrs)),
		UnstableAttrs:   make(map[string]bool, len(n.UnstableAttrs)),
		Classes:         make(map[string]bool, len(n.Classes)),
		UnstableClass:   n.UnstableClass,
		Text:            n.Text,
		UnstableText:    n.UnstableText,
		UnstableElement: n.UnstableElement,
		Reachable:       n.Reachable,
		Children:        make([]*Node, len(n.Children)),
	}
	for k, v := range n.Attrs {
		c.Attrs[k] = v
	}
	for k, v := range n.UnstableAttrs {
		c.UnstableAttrs[k] = v
	}
	for k, v := range n.Classes {
		c.Classes[k] = v
	}
	for i, ch := range n.Children {
		c.Children[i] = ch.clone()
	}
	return c
}

func classSet(classes string) map[string]bool {
	out := map[string]bool{}
	for _, c := range strings.Fields(classes) {
		out[c] = true
	}
	return out
}

func classString(m map[string]bool) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for c := range m {
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}

func unionValues(existing, next string) string {
	if existing == "" {
		return next
	}
	seen := map[string]bool{}
	parts := strings.Split(existing, "||")
	for _, p := range parts {
		seen[p] = true
	}
	if seen[next] {
		return existing
	}
	return existing + "||" + next
}
