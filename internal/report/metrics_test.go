package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
)

func TestMetricsWriter_IncludesOnlyUsersWithRecordedMetrics(t *testing.T) {
	g, e := twoStateGraph(t)
	e.UpdateMetrics("motor", metrics.EdgeMetrics{AbilityScore: 0.2})

	var buf bytes.Buffer
	require.NoError(t, MetricsWriter{}.Write(&buf, g, []string{"build", "low_vision", "motor", "screen_reader"}))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)

	users := records[0]["users"].(map[string]interface{})
	require.Contains(t, users, "build")
	require.Contains(t, users, "low_vision")
	require.Contains(t, users, "motor")
	require.NotContains(t, users, "screen_reader")
}
