// Package report implements the two external-collaborator report formats
// spec.md §6 specifies in full but assigns to an outside writer: the
// extended-GML graph export and the per-state violation map. Both are
// thin serializers over *graphstore.Graph and analyzer.Report; neither
// holds crawl state of its own.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/a11ycrawl/a11ycrawl/internal/analyzer"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

// GMLWriter serializes a graph to the extended GML dialect of spec.md §6:
// a header naming the build user, per-node reachability/path/layout
// attributes for every crawl user, and per-edge element/action/metrics
// attributes.
type GMLWriter struct{}

// Write renders g to w. layouts is the output of analyzer.ComputeLayouts,
// keyed by analyzer.LayoutKey(algorithm, threshold); its node positions
// become each node's x_<key>/y_<key> attributes.
func (GMLWriter) Write(w io.Writer, g *graphstore.Graph, buildUser string, crawlUsers []string, layouts map[string]analyzer.Layout) error {
	states := g.States()
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })

	bw := newBlockWriter(w)
	bw.open("graph")
	bw.raw("directed", "1")
	bw.raw("multigraph", "1")
	bw.str("buildUser", buildUser)

	for _, s := range states {
		writeNode(bw, s, crawlUsers, layouts)
	}
	for _, s := range states {
		for _, e := range g.EdgesForState(s, "", true) {
			writeEdge(bw, e, buildUser, crawlUsers)
		}
	}

	bw.close()
	return bw.err
}

func writeNode(bw *blockWriter, s *graphstore.State, crawlUsers []string, layouts map[string]analyzer.Layout) {
	bw.open("node")
	bw.raw("id", strconv.Itoa(s.ID))
	bw.str("label", s.Data.URL)
	bw.str("stub", boolStr(s.Stub))

	var usersPresent []string
	for _, u := range crawlUsers {
		path, ok := s.UserPath(u)
		if !ok {
			continue
		}
		usersPresent = append(usersPresent, u)
		bw.str(u+"_reachable", boolStr(true))
		bw.raw(u+"_path_len", strconv.Itoa(len(path)))
	}
	if len(usersPresent) > 0 {
		bw.str("users", strings.Join(usersPresent, ","))
	}

	for key, layout := range layouts {
		pos, ok := layout[s.ID]
		if !ok {
			continue
		}
		bw.raw("x_"+key, formatFloat(pos.X))
		bw.raw("y_"+key, formatFloat(pos.Y))
	}
	bw.close()
}

func writeEdge(bw *blockWriter, e *graphstore.Edge, buildUser string, crawlUsers []string) {
	bw.open("edge")
	bw.raw("source", strconv.Itoa(e.Src.ID))
	bw.raw("target", strconv.Itoa(e.Dst.ID))
	bw.str("element", e.Element.Xpath)
	bw.str("action", e.Action.Name())

	var supporting []string
	if _, ok := e.Metrics(buildUser); ok {
		supporting = append(supporting, buildUser)
	}
	for _, u := range crawlUsers {
		if _, ok := e.Metrics(u); ok {
			supporting = append(supporting, u)
		}
	}
	if len(supporting) > 0 {
		bw.str("users", strings.Join(supporting, ","))
	}

	if m, ok := e.Metrics(buildUser); ok {
		writeMetricFields(bw, "", m)
	}
	for _, u := range crawlUsers {
		if m, ok := e.Metrics(u); ok {
			writeMetricFields(bw, u+"_", m)
		}
	}
	bw.close()
}

func writeMetricFields(bw *blockWriter, prefix string, m metrics.EdgeMetrics) {
	bw.raw(prefix+"ability_score", formatFloat(m.AbilityScore))
	bw.raw(prefix+"pcv_score", formatFloat(m.PcvScore))
	bw.raw(prefix+"nav_score", formatFloat(m.NavScore))
	bw.raw(prefix+"act_score", formatFloat(m.ActScore))
	bw.raw(prefix+"act_time_ms", formatFloat(float64(m.ActTime.Milliseconds())))
	bw.raw(prefix+"contrast_ratio", formatFloat(m.ContrastRatio))
	bw.raw(prefix+"element_width", formatFloat(m.ElementWidth))
	bw.raw(prefix+"element_height", formatFloat(m.ElementHeight))
	bw.raw(prefix+"navigation_distance", strconv.Itoa(m.NavigationDistance))
}

func boolStr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatFloat renders f in fixed-point form, never scientific notation
// (spec.md §6 "scientific notation expanded to fixed decimals").
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// blockWriter emits one nested GML block at a time, tracking the first
// write error so every call site can ignore err until Write's return.
type blockWriter struct {
	w      io.Writer
	indent int
	err    error
}

func newBlockWriter(w io.Writer) *blockWriter { return &blockWriter{w: w} }

func (b *blockWriter) open(name string) {
	b.line(name + " [")
	b.indent++
}

func (b *blockWriter) close() {
	b.indent--
	b.line("]")
}

// str writes a key/value pair whose value is GML-quoted: double-quoted
// normally, single-quoted if the value itself contains a double quote
// (spec.md §6 quoting rule), with non-ASCII characters stripped first.
func (b *blockWriter) str(key, value string) {
	b.line(fmt.Sprintf("%s %s", key, gmlQuote(value)))
}

// raw writes a key/value pair whose value is already a GML literal
// (an unquoted number).
func (b *blockWriter) raw(key, value string) {
	b.line(fmt.Sprintf("%s %s", key, value))
}

func (b *blockWriter) line(s string) {
	if b.err != nil {
		return
	}
	_, err := fmt.Fprintf(b.w, "%s%s\n", strings.Repeat("  ", b.indent), s)
	if err != nil {
		b.err = err
	}
}

func gmlQuote(s string) string {
	s = stripNonASCII(s)
	if strings.Contains(s, `"`) {
		return "'" + strings.ReplaceAll(s, "'", "") + "'"
	}
	return `"` + s + `"`
}

func stripNonASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
