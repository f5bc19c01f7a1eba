package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCrawlDir(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state-fields-0.json"), []byte(`{"url":"https://example.test/home","stub":false,"tab_order_len":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state-fields-1.json"), []byte(`{"url":"https://example.test/page2","stub":false,"tab_order_len":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metrics.json"), []byte(`[
		{"source":0,"target":1,"element":"/a","action":"click","users":{"build":{"ability_score":1},"low_vision":{"ability_score":1}}}
	]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "violations.json"), []byte(`{
		"1": {"src":"/page2","violations":[
			{"type":"atomic","level":"moderate","category":"small_target","xpath":"/a"},
			{"type":"composite","level":"serious","num_issues":2,"state_link":1}
		]}
	}`), 0o644))
}

func TestSummarize_ReadsStatesMetricsAndViolationsBack(t *testing.T) {
	dir := t.TempDir()
	writeCrawlDir(t, dir)

	sum, err := Summarize(dir)
	require.NoError(t, err)
	require.Equal(t, "https://example.test/home", sum.EntryPoint)
	require.Equal(t, 2, sum.NumStates)
	require.Equal(t, 1, sum.UserEdges["build"])
	require.Equal(t, 1, sum.UserEdges["low_vision"])
	require.Equal(t, 1, sum.ViolationCounts["small_target"])
	require.NotContains(t, sum.ViolationCounts, "composite")
}

func TestCompileCSV_UnionsColumnsAcrossDirectories(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeCrawlDir(t, dirA)

	require.NoError(t, os.WriteFile(filepath.Join(dirB, "state-fields-0.json"), []byte(`{"url":"https://example.test/other","stub":false,"tab_order_len":0}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "metrics.json"), []byte(`[{"source":0,"target":1,"element":"/b","action":"click","users":{"screen_reader":{"ability_score":1}}}]`), 0o644))

	var buf bytes.Buffer
	require.NoError(t, CompileCSV(&buf, []string{dirA, dirB}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"entry_point", "num_states", "build_num_edges", "low_vision_num_edges", "screen_reader_num_edges", "small_target"}, rows[0])
	require.Equal(t, "https://example.test/home", rows[1][0])
	require.Equal(t, "https://example.test/other", rows[2][0])
}
