package explorer

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/stretchr/testify/require"

	"github.com/a11ycrawl/a11ycrawl/internal/ability"
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/action"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
)

// TestMain guards that every worker BuildPooled spawns actually exits once
// its queue drains (spec.md §5's pooled explorer termination guarantee); a
// worker stuck on a blocking send or a forgotten goroutine would show up
// here as a leak across any test in the package, not just the pooled ones.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBuildPooled_AllWorkersExitOnQueueDrain(t *testing.T) {
	reg := action.NewRegistry()
	actions := []access.Action{clickAction(reg)}
	user := ability.New("build", ability.Build{})

	g, err := BuildPooled(context.Background(), 4, func() (access.InterfaceAccess, error) {
		return newFakeAccess(), nil
	}, user, actions, compare.Default(), "https://example.test/home", Options{Reduced: false})
	require.NoError(t, err)
	require.Len(t, g.States(), 3)
}
