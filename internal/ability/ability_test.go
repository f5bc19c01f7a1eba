package ability

import (
	"testing"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestBuildUser_ScoresEverythingMax(t *testing.T) {
	u := New("build", Build{})
	res := u.Score(access.AxisPerceive|access.AxisNavigate|access.AxisAct, nil, access.Element{}, metrics.EdgeMetrics{}, "click")
	require.Equal(t, 1.0, res.Combined)
}

func TestUserModel_ActGateRejectsUnclaimedAction(t *testing.T) {
	u := New("low_vision", LowVision{})
	res := u.Score(access.AxisAct, nil, access.Element{}, metrics.EdgeMetrics{}, "drag_and_drop")
	require.Equal(t, 0.0, res.Combined)
}

func TestLowVision_ZeroContrastYieldsZeroPerceive(t *testing.T) {
	u := New("low_vision", LowVision{})
	res := u.Score(access.AxisPerceive, nil, access.Element{}, metrics.EdgeMetrics{ContrastRatio: 1.0}, "")
	require.Equal(t, 0.0, res.Combined)
}

func TestUserModel_JointNavActPicksBestNavAmongActCapable(t *testing.T) {
	u := New("motor", Motor{})
	res := u.Score(access.AxisNavigate|access.AxisAct, nil, access.Element{}, metrics.EdgeMetrics{NavigationDistance: 5, ElementWidth: 50, ElementHeight: 50}, "click")
	require.Greater(t, res.Combined, 0.0)
	require.Equal(t, "motor", res.Ability)
}

func TestUserModel_Claims(t *testing.T) {
	build := New("build", Build{})
	require.True(t, build.Claims("anything"))

	lv := New("low_vision", LowVision{})
	require.True(t, lv.Claims("click"))
	require.False(t, lv.Claims("drag_and_drop"))
}
