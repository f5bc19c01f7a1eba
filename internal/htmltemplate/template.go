package htmltemplate

import (
	"strconv"
	"sync"
)

// Template is a merged DOM tree annotating the parts that legitimately vary
// across loads of "the same" page.
type Template struct {
	mu         sync.Mutex
	root       *Node
	sources    map[string]bool
	xpathCache []string
	dirty      bool
}

// New builds a template from a single raw DOM string.
func New(raw string) (*Template, error) {
	t := &Template{sources: map[string]bool{}}
	if err := t.AddHTML(raw); err != nil {
		return nil, err
	}
	return t, nil
}

// AddHTML merges a new raw DOM string into the template (spec.md §4.2 ADD).
// A no-op if this exact string has already been merged.
func (t *Template) AddHTML(raw string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sources[raw] {
		return nil
	}
	node, err := parseHTML(raw, parseOptions{})
	if err != nil {
		return err
	}
	t.addLocked(node)
	t.sources[raw] = true
	return nil
}

// AddTemplate merges another template's tree into this one.
func (t *Template) AddTemplate(other *Template) {
	t.mu.Lock()
	defer t.mu.Unlock()
	other.mu.Lock()
	otherRoot := other.root.clone()
	otherSources := make(map[string]bool, len(other.sources))
	for k := range other.sources {
		otherSources[k] = true
	}
	other.mu.Unlock()

	t.addLocked(otherRoot)
	for k := range otherSources {
		t.sources[k] = true
	}
}

func (t *Template) addLocked(node *Node) {
	if t.root == nil {
		t.root = node
	} else {
		dstIdx := buildIndex(t.root)
		srcIdx := buildIndex(node)
		mergeNodes(t.root, dstIdx, node, srcIdx, false)
	}
	t.dirty = true
}

// MatchesHTML reports whether raw matches the template (spec.md §4.2 MATCH).
func (t *Template) MatchesHTML(raw string) (bool, *Disagreement, error) {
	node, err := parseHTML(raw, parseOptions{})
	if err != nil {
		return false, nil, err
	}
	d := t.Matches(node)
	return d == nil, d, nil
}

// Matches runs the match walk against an already-parsed node tree.
func (t *Template) Matches(obs *Node) *Disagreement {
	t.mu.Lock()
	root := t.root
	t.mu.Unlock()
	if root == nil {
		return &Disagreement{Reason: "template is empty"}
	}
	tplIdx := buildIndex(root)
	obsIdx := buildIndex(obs)
	return matchWalk(root, tplIdx, obs, obsIdx)
}

// GetUpdatedTemplate produces a new template that preserves every
// instability marker already present in t and overwrites all other content
// from raw (spec.md §4.2 UPDATE).
func (t *Template) GetUpdatedTemplate(raw string) (*Template, error) {
	node, err := parseHTML(raw, parseOptions{})
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	base := t.root.clone()
	t.mu.Unlock()

	dstIdx := buildIndex(base)
	srcIdx := buildIndex(node)
	mergeNodes(base, dstIdx, node, srcIdx, true)

	return &Template{
		root:    base,
		sources: map[string]bool{raw: true},
		dirty:   true,
	}, nil
}

// UnstableXPaths returns the flat set of xpaths whose node carries any
// instability marker, computed once and cached until the next mutation.
func (t *Template) UnstableXPaths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty && t.xpathCache != nil {
		return t.xpathCache
	}
	var paths []string
	collectUnstable(t.root, "", map[string]int{}, &paths)
	t.xpathCache = paths
	t.dirty = false
	return paths
}

func collectUnstable(n *Node, prefix string, siblingIdx map[string]int, out *[]string) {
	if n == nil {
		return
	}
	siblingIdx[n.Tag]++
	path := prefix + "/" + n.Tag + indexSuffix(siblingIdx[n.Tag])
	if n.UnstableElement || n.UnstableText || n.UnstableClass || len(n.UnstableAttrs) > 0 {
		*out = append(*out, path)
	}
	childIdx := map[string]int{}
	for _, c := range n.Children {
		collectUnstable(c, path, childIdx, out)
	}
}

func indexSuffix(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
