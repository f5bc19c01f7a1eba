package htmltemplate

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestTemplate_IdenticalDOMsMatch(t *testing.T) {
	raw := `<html><body><div id="a">hello</div></body></html>`
	tpl, err := New(raw)
	require.NoError(t, err)

	ok, disagree, err := tpl.MatchesHTML(raw)
	require.NoError(t, err)
	require.Nil(t, disagree)
	require.True(t, ok)
}

func TestTemplate_AddHTMLIsNoOpForKnownSource(t *testing.T) {
	raw := `<html><body><p>hi</p></body></html>`
	tpl, err := New(raw)
	require.NoError(t, err)
	before := tpl.UnstableXPaths()

	require.NoError(t, tpl.AddHTML(raw))
	after := tpl.UnstableXPaths()
	if diff := cmp.Diff(before, after, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unstable xpaths changed on a no-op AddHTML (-before +after):\n%s", diff)
	}
}

func TestTemplate_VaryingTextBecomesUnstable(t *testing.T) {
	raw1 := `<html><body><time>10:00</time></body></html>`
	raw2 := `<html><body><time>10:05</time></body></html>`

	tpl, err := New(raw1)
	require.NoError(t, err)
	require.NoError(t, tpl.AddHTML(raw2))

	ok, disagree, err := tpl.MatchesHTML(raw2)
	require.NoError(t, err)
	require.Nil(t, disagree)
	require.True(t, ok)

	raw3 := `<html><body><time>10:10</time></body></html>`
	ok, disagree, err = tpl.MatchesHTML(raw3)
	require.NoError(t, err)
	require.Nil(t, disagree)
	require.True(t, ok, "unstable text tolerates a third distinct value")

	paths := tpl.UnstableXPaths()
	require.NotEmpty(t, paths)
}

func TestTemplate_TagMismatchDisagrees(t *testing.T) {
	raw1 := `<html><body><div>x</div></body></html>`
	raw2 := `<html><body><span>x</span></body></html>`

	tpl, err := New(raw1)
	require.NoError(t, err)

	ok, disagree, err := tpl.MatchesHTML(raw2)
	require.NoError(t, err)
	require.False(t, ok)
	require.NotNil(t, disagree)
}

func TestTemplate_GetUpdatedTemplatePreservesInstability(t *testing.T) {
	raw1 := `<html><body><time>10:00</time><p>fixed</p></body></html>`
	raw2 := `<html><body><time>10:05</time><p>fixed</p></body></html>`
	tpl, err := New(raw1)
	require.NoError(t, err)
	require.NoError(t, tpl.AddHTML(raw2))
	originalUnstable := tpl.UnstableXPaths()
	require.NotEmpty(t, originalUnstable)

	raw3 := `<html><body><time>11:59</time><p>fixed</p></body></html>`
	updated, err := tpl.GetUpdatedTemplate(raw3)
	require.NoError(t, err)

	ok, disagree, err := updated.MatchesHTML(raw3)
	require.NoError(t, err)
	require.Nil(t, disagree)
	require.True(t, ok)

	updatedUnstable := xpathSet(updated.UnstableXPaths())
	for _, p := range originalUnstable {
		require.True(t, updatedUnstable[p], "xpath %s should remain unstable after update", p)
	}
}

func TestWaitForStable_StopsWhenUnchanging(t *testing.T) {
	const page = `<html><body><div>static</div></body></html>`
	calls := 0
	snap := func(ctx context.Context) (string, error) {
		calls++
		return page, nil
	}
	res, err := WaitForStable(context.Background(), snap, 5*time.Millisecond, 200*time.Millisecond, 15*time.Millisecond)
	require.NoError(t, err)
	require.True(t, res.Stable)
	require.NotNil(t, res.Template)
}

func TestWaitForStable_TimesOutAndStillReturnsTemplate(t *testing.T) {
	seq := []string{
		`<html><body><div>1</div></body></html>`,
		`<html><body><div>2</div></body></html>`,
		`<html><body><div>3</div></body></html>`,
	}
	i := 0
	snap := func(ctx context.Context) (string, error) {
		s := seq[i%len(seq)]
		i++
		return s, nil
	}
	res, err := WaitForStable(context.Background(), snap, 5*time.Millisecond, 40*time.Millisecond, 1*time.Hour)
	require.NoError(t, err)
	require.False(t, res.Stable)
	require.NotNil(t, res.Template)
}
