package htmltemplate

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// noisyTags are stripped on ingress alongside comments, scripts, and styles.
// Configurable in a real deployment; this is the conservative default set.
var noisyTags = map[string]bool{
	"script": true,
	"style":  true,
	"noscript": true,
	"link":   false, // kept: may carry meaningful rel/href state
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// parseOptions controls ingress normalization (stability checks, spec.md §4.2).
type parseOptions struct {
	baseURL *url.URL
}

// ParseDOM is the exported entry point for parsing a raw DOM string into a
// Node tree, for callers (e.g. internal/compare's structural/textual
// comparators) that need the tree without building a full Template.
func ParseDOM(raw string) (*Node, error) {
	return parseHTML(raw, parseOptions{})
}

// StructuralFingerprint summarizes a tree's tag shape, ignoring text and
// attribute values, for the comparator pipeline's structural stage.
func StructuralFingerprint(n *Node) string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		b.WriteString(n.Tag)
		b.WriteByte('(')
		for _, c := range n.Children {
			walk(c)
		}
		b.WriteByte(')')
	}
	walk(n)
	return b.String()
}

// TextFingerprint concatenates every text node's content in document order,
// for the comparator pipeline's textual stage.
func TextFingerprint(n *Node) string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		b.WriteString(n.Text)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return collapseWhitespace(b.String())
}

// parseHTML parses a raw DOM string into a Node tree, applying the ingress
// stability checks: strip comments/scripts/styles/noisy tags, absolute-ize
// relative links, collapse whitespace, ensure <html>/<body> wrappers.
func parseHTML(raw string, opts parseOptions) (*Node, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	root := convert(doc, opts)
	if root == nil {
		root = newNode("html")
	}
	return ensureWrappers(root), nil
}

func convert(n *html.Node, opts parseOptions) *Node {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return convert(c, opts)
			}
		}
		return nil
	case html.CommentNode:
		return nil
	case html.ElementNode:
		tag := n.Data
		if noisyTags[tag] {
			return nil
		}
		node := newNode(tag)
		for _, a := range n.Attr {
			val := a.Val
			if (a.Key == "href" || a.Key == "src") && opts.baseURL != nil {
				if u, err := opts.baseURL.Parse(val); err == nil {
					val = u.String()
				}
			}
			if a.Key == "class" {
				node.Classes = classSet(val)
				continue
			}
			node.Attrs[a.Key] = val
		}
		var text strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				text.WriteString(c.Data)
			case html.ElementNode:
				if child := convert(c, opts); child != nil {
					node.Children = append(node.Children, child)
				}
			}
		}
		node.Text = collapseWhitespace(text.String())
		return node
	default:
		return nil
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ensureWrappers guarantees the tree is rooted at <html> with a <body>
// child, matching browsers' DOM normalization.
func ensureWrappers(root *Node) *Node {
	if root.Tag != "html" {
		wrapped := newNode("html")
		wrapped.Children = []*Node{root}
		root = wrapped
	}
	hasBody := false
	for _, c := range root.Children {
		if c.Tag == "body" {
			hasBody = true
			break
		}
	}
	if !hasBody {
		body := newNode("body")
		body.Children = root.Children
		root.Children = []*Node{body}
	}
	return root
}

// Serialize renders a Node subtree back to an HTML string, used for
// equal-by-string checks (spec.md §8 boundary behavior).
func Serialize(n *Node) string {
	var b strings.Builder
	serialize(n, &b)
	return b.String()
}

func serialize(n *Node, b *strings.Builder) {
	if n == nil {
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	if len(n.Classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(classString(n.Classes))
		b.WriteByte('"')
	}
	for k, v := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(v)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(n.Text)
	for _, c := range n.Children {
		serialize(c, b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// voidTag reports whether atom a is a void element; unused directly but
// documents why self-closing normalization is unnecessary for our
// string-equality comparator (we never round-trip through a renderer).
func voidTag(a atom.Atom) bool {
	switch a {
	case atom.Br, atom.Img, atom.Input, atom.Hr, atom.Meta, atom.Link:
		return true
	default:
		return false
	}
}
