package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/analyzer"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

func TestViolationMapWriter_AtomicRecordCarriesGeometryFromBuildMetrics(t *testing.T) {
	g, e := twoStateGraph(t)
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1, ElementWidth: 10, ElementHeight: 10})

	report := analyzer.Report{
		0: {Src: "/0", Violations: []analyzer.Violation{
			{Type: "target_too_small", Level: analyzer.LevelError, Category: analyzer.CategoryTargetSize, Element: access.Element{Xpath: "/html/body/a[1]", Tag: "a"}, Code: "SC-2.5.8"},
		}},
	}

	var sb strings.Builder
	require.NoError(t, ViolationMapWriter{}.Write(&sb, g, report, "build"))

	var decoded map[string]struct {
		Src        string                   `json:"src"`
		Violations []map[string]interface{} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &decoded))

	entry, ok := decoded["0"]
	require.True(t, ok)
	require.Equal(t, "/0", entry.Src)
	require.Len(t, entry.Violations, 1)
	v := entry.Violations[0]
	require.Equal(t, "atomic", v["type"])
	require.Equal(t, "error", v["level"])
	elem := v["element"].(map[string]interface{})
	require.Equal(t, "/html/body/a[1]", elem["xpath"])
	require.Equal(t, float64(10), elem["width"])
}

func TestViolationMapWriter_CompositeRecordResolvesStateLink(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "0", URL: "/0"}, false)
	_, s1, _ := g.AddState(access.StateData{DOM: "1", URL: "/1"}, false)
	e := g.AddEdge(s0, s1, access.Element{Xpath: "/html/body/a[1]", Tag: "a"}, click())
	e.UpdateMetrics("build", metrics.EdgeMetrics{AbilityScore: 1})

	report := analyzer.Report{
		0: {Src: "/0", Violations: []analyzer.Violation{
			{Type: "composite", Level: analyzer.LevelWarning, Category: analyzer.CategoryComposite, Element: access.Element{Xpath: "/html/body/a[1]"}, Count: 3},
		}},
	}

	var sb strings.Builder
	require.NoError(t, ViolationMapWriter{}.Write(&sb, g, report, "build"))

	var decoded map[string]struct {
		Violations []map[string]interface{} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &decoded))

	v := decoded["0"].Violations[0]
	require.Equal(t, "composite", v["type"])
	require.Equal(t, float64(3), v["num_issues"])
	require.Equal(t, float64(s1.ID), v["state_link"])
}

func TestViolationMapWriter_ScreenshotDirOverridesSrc(t *testing.T) {
	g, _ := twoStateGraph(t)
	report := analyzer.Report{0: {Src: "/0"}}

	var sb strings.Builder
	require.NoError(t, ViolationMapWriter{ScreenshotDir: "screenshots"}.Write(&sb, g, report, "build"))
	require.Contains(t, sb.String(), "screenshots/state-0.png")
}
