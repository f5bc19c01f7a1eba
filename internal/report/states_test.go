package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

func TestStateFilesWriter_WritesRawAndFields(t *testing.T) {
	g := graphstore.New(compare.Default())
	_, s0, _ := g.AddState(access.StateData{DOM: "<html></html>", URL: "/0"}, false)
	_ = s0

	dir := t.TempDir()
	require.NoError(t, StateFilesWriter{Dir: dir}.Write(g))

	raw, err := os.ReadFile(filepath.Join(dir, "state-0.html"))
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(raw))

	fieldsRaw, err := os.ReadFile(filepath.Join(dir, "state-fields-0.json"))
	require.NoError(t, err)
	var fields stateFields
	require.NoError(t, json.Unmarshal(fieldsRaw, &fields))
	require.Equal(t, "/0", fields.URL)
	require.False(t, fields.Stub)
}

func TestScreenshotWriter_WritesUnderScreenshotsSubdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ScreenshotWriter{Dir: dir}.Write(3, []byte{0x89, 'P', 'N', 'G'}))

	got, err := os.ReadFile(filepath.Join(dir, "screenshots", "state-3.png"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)
}
