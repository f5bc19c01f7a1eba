package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// edgeMetricsRecord is one edge's per-user outcome, the flattened shape
// the "metrics" member of REPORTS dumps (spec.md §6 config bundle).
type edgeMetricsRecord struct {
	Source         int                `json:"source"`
	Target         int                `json:"target"`
	Element        string             `json:"element"`
	Action         string             `json:"action"`
	Users          map[string]userRow `json:"users"`
}

type userRow struct {
	AbilityScore  float64 `json:"ability_score"`
	PcvScore      float64 `json:"pcv_score"`
	NavScore      float64 `json:"nav_score"`
	ActScore      float64 `json:"act_score"`
	ContrastRatio float64 `json:"contrast_ratio,omitempty"`
	ElementWidth  float64 `json:"element_width,omitempty"`
	ElementHeight float64 `json:"element_height,omitempty"`
}

// MetricsWriter renders every edge's per-user EdgeMetrics as JSON, the
// counterpart to the violation map for downstream numeric analysis.
type MetricsWriter struct{}

// Write renders g's edges to w, in deterministic (source,target,element)
// order. users lists every user name worth inspecting (build + crawl
// users); a user absent from an edge's recorded metrics is omitted from
// that edge's Users map.
func (MetricsWriter) Write(w io.Writer, g *graphstore.Graph, users []string) error {
	states := g.States()
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })

	var records []edgeMetricsRecord
	for _, s := range states {
		for _, e := range g.EdgesForState(s, "", true) {
			rec := edgeMetricsRecord{
				Source:  e.Src.ID,
				Target:  e.Dst.ID,
				Element: e.Element.Xpath,
				Action:  e.Action.Name(),
				Users:   map[string]userRow{},
			}
			for _, u := range users {
				m, ok := e.Metrics(u)
				if !ok {
					continue
				}
				rec.Users[u] = userRow{
					AbilityScore:  m.AbilityScore,
					PcvScore:      m.PcvScore,
					NavScore:      m.NavScore,
					ActScore:      m.ActScore,
					ContrastRatio: m.ContrastRatio,
					ElementWidth:  m.ElementWidth,
					ElementHeight: m.ElementHeight,
				}
			}
			records = append(records, rec)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("report: encoding metrics: %w", err)
	}
	return nil
}
