package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekdi/faction-services/internal/fpmath"
)

const (
	curveTarget = 1_000 * fpmath.One
	curveMax    = 100_000 * fpmath.One
	curvePeak   = 6 * fpmath.One
)

func TestCurveBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		value int64
		want  int64
	}{
		{"zero", 0, fpmath.One},
		{"negative", -fpmath.One, fpmath.One},
		{"at target", curveTarget, curvePeak},
		{"at max", curveMax, fpmath.One},
		{"beyond max", 10 * curveMax, fpmath.One},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Curve(tc.value, curveTarget, curveMax, curvePeak)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCurveMonotonicRise(t *testing.T) {
	prev := int64(0)
	for v := int64(0); v <= curveTarget; v += curveTarget / 20 {
		got, err := Curve(v, curveTarget, curveMax, curvePeak)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "curve must not decrease below target (v=%d)", v)
		assert.GreaterOrEqual(t, got, fpmath.One)
		assert.LessOrEqual(t, got, curvePeak)
		prev = got
	}
}

func TestCurveMonotonicFall(t *testing.T) {
	prev := curvePeak + 1
	for v := curveTarget; v <= curveMax; v += (curveMax - curveTarget) / 20 {
		got, err := Curve(v, curveTarget, curveMax, curvePeak)
		require.NoError(t, err)
		assert.LessOrEqual(t, got, prev, "curve must not increase past target (v=%d)", v)
		assert.GreaterOrEqual(t, got, fpmath.One)
		prev = got
	}
}

func TestCurveMidpointSmoothstep(t *testing.T) {
	// h(0.5) = 0.5, so halfway up the rise the bonus is half the span
	got, err := Curve(curveTarget/2, curveTarget, curveMax, curvePeak)
	require.NoError(t, err)
	want := fpmath.One + (curvePeak-fpmath.One)/2
	assert.InDelta(t, float64(want), float64(got), 2)
}

func TestCombinedMultiplierPeakIdentity(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig()

	// both axes at target simultaneously: the product must land on the
	// headline peak within one least-significant unit of truncation
	got, err := f.eng.combinedMultiplier(cfg.TargetAmount, cfg.TargetHoldSecs)
	require.NoError(t, err)
	assert.InDelta(t, float64(cfg.PeakMultiplier), float64(got), 1)
}

func TestCombinedMultiplierColdStart(t *testing.T) {
	f := newFixture(t)

	// no balance, no holding time: exactly 1.0
	got, err := f.eng.combinedMultiplier(0, 0)
	require.NoError(t, err)
	assert.Equal(t, fpmath.One, got)
}
