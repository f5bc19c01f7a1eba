package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/analyzer"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// elementView is the JSON shape of an atomic violation's element, spec.md
// §6: "{x,y,width,height,xpath,text,tag}". Width/height/x/y are looked up
// from build-user edge metrics and tab-order entries, since access.Element
// itself only carries the xpath/tag/text identity (see DESIGN.md).
type elementView struct {
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Xpath         string  `json:"xpath"`
	Text          string  `json:"text"`
	Tag           string  `json:"tag"`
}

// atomicRecord is one atomic violation entry in the per-state array.
type atomicRecord struct {
	Type     string      `json:"type"`
	Level    string      `json:"level"`
	Category string      `json:"category"`
	Element  elementView `json:"element"`
	Replay   []replayStep `json:"replay,omitempty"`
	Code     string      `json:"code,omitempty"`
	GroupID  string      `json:"group_id"`
}

type replayStep struct {
	Xpath  string `json:"xpath"`
	Action string `json:"action"`
}

// compositeRecord is one composite violation entry.
type compositeRecord struct {
	Type      string      `json:"type"`
	Level     string      `json:"level"`
	Element   elementView `json:"element"`
	NumIssues int         `json:"num_issues"`
	StateLink int         `json:"state_link"`
	GroupID   string      `json:"group_id"`
}

// stateEntry is the per-state record keyed by state id in the output map.
type stateEntry struct {
	Src        string        `json:"src"`
	Violations []interface{} `json:"violations"`
}

// ViolationMapWriter renders an analyzer.Report to the element-map JSON
// format of spec.md §6.
type ViolationMapWriter struct {
	// ScreenshotDir, if set, is joined with "state-<id>.png" to build each
	// state's src field; otherwise src falls back to the report's own Src
	// (state URL).
	ScreenshotDir string
}

// Write renders report to w. g and buildUser supply the geometry lookups
// (tab-order position, edge metrics width/height) that analyzer.Violation
// does not carry directly, and the destination-state lookup for composite
// violations' state_link.
func (vw ViolationMapWriter) Write(w io.Writer, g *graphstore.Graph, report analyzer.Report, buildUser string) error {
	states := g.States()
	byID := make(map[int]*graphstore.State, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}

	ids := make([]int, 0, len(report))
	for id := range report {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make(map[string]stateEntry, len(ids))
	for _, id := range ids {
		sr := report[id]
		s := byID[id]

		entry := stateEntry{Src: vw.src(id, sr.Src)}
		for _, v := range sr.Violations {
			if v.Category == analyzer.CategoryComposite {
				entry.Violations = append(entry.Violations, vw.compositeRecord(g, s, buildUser, v))
				continue
			}
			entry.Violations = append(entry.Violations, atomicRecord{
				Type:     "atomic",
				Level:    string(v.Level),
				Category: string(v.Category),
				Element:  vw.elementView(g, s, buildUser, v.Element.Xpath, v.Element.Text, v.Element.Tag),
				Replay:   toReplaySteps(v.Replay),
				Code:     v.Code,
				GroupID:  groupID(v.Type, v.Element.Xpath),
			})
		}
		out[fmt.Sprintf("%d", id)] = entry
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (vw ViolationMapWriter) src(stateID int, fallback string) string {
	if vw.ScreenshotDir == "" {
		return fallback
	}
	return fmt.Sprintf("%s/state-%d.png", vw.ScreenshotDir, stateID)
}

func (vw ViolationMapWriter) compositeRecord(g *graphstore.Graph, s *graphstore.State, buildUser string, v analyzer.Violation) compositeRecord {
	stateLink := -1
	if s != nil {
		for _, e := range g.EdgesForState(s, buildUser, true) {
			if e.Element.Xpath == v.Element.Xpath {
				stateLink = e.Dst.ID
				break
			}
		}
	}
	return compositeRecord{
		Type:      "composite",
		Level:     string(v.Level),
		Element:   vw.elementView(g, s, buildUser, v.Element.Xpath, v.Element.Text, v.Element.Tag),
		NumIssues: v.Count,
		StateLink: stateLink,
		GroupID:   groupID(v.Type, v.Element.Xpath),
	}
}

// elementView fills in width/height from the build user's edge metrics on
// the first matching outgoing edge, and x/y from the first matching
// tab-order entry across the graph; both default to zero if absent
// (spec.md §7 "analyzer data gap: log a warning and skip").
func (vw ViolationMapWriter) elementView(g *graphstore.Graph, s *graphstore.State, buildUser, xpath, text, tag string) elementView {
	ev := elementView{Xpath: xpath, Text: text, Tag: tag}
	if s != nil {
		for _, e := range g.EdgesForState(s, buildUser, true) {
			if e.Element.Xpath != xpath {
				continue
			}
			if m, ok := e.Metrics(buildUser); ok {
				ev.Width, ev.Height = m.ElementWidth, m.ElementHeight
			}
			break
		}
	}
	for _, st := range g.States() {
		for _, entry := range st.Data.TabOrder {
			if entry.Element.Xpath == xpath {
				ev.X, ev.Y = entry.X, entry.Y
				return ev
			}
		}
	}
	return ev
}

func toReplaySteps(steps []access.ReplayStep) []replayStep {
	if len(steps) == 0 {
		return nil
	}
	out := make([]replayStep, len(steps))
	for i, step := range steps {
		out[i] = replayStep{Xpath: step.Element.Xpath, Action: step.ActionName}
	}
	return out
}

// groupID gives every occurrence of the same violation type at the same
// element a stable identifier, so a report consumer can dedupe repeated
// findings across re-crawls without re-deriving it from the other fields.
func groupID(violationType, xpath string) string {
	return violationType + "@" + xpath
}
