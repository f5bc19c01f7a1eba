package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scratch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestPageScratch_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetPageScratch("https://example.test", "/html/body/a[1]")
	require.NoError(t, err)
	require.False(t, ok)

	want := PageScratch{RawPage: "<html></html>", Injected: "<html><!--probe--></html>", Sentinel: "a11ycrawl-done"}
	require.NoError(t, s.PutPageScratch("https://example.test", "/html/body/a[1]", want))

	got, ok, err := s.GetPageScratch("https://example.test", "/html/body/a[1]")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestPageScratch_PutIsUpsert(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutPageScratch("e", "k", PageScratch{RawPage: "v1"}))
	require.NoError(t, s.PutPageScratch("e", "k", PageScratch{RawPage: "v2"}))

	got, ok, err := s.GetPageScratch("e", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", got.RawPage)
}

func TestBuildDataCache_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetBuildData("e", "/a", "click")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.PutBuildData("e", "/a", "click", `{"width":44}`))
	payload, ok, err := s.GetBuildData("e", "/a", "click")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"width":44}`, payload)
}
