package fpmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulFloor(t *testing.T) {
	// 1.5 * 2.0 = 3.0
	got, err := MulFloor(15_000_000, 20_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(30_000_000), got)

	// truncation toward zero
	got, err = MulFloor(1, 1) // 1e-7 * 1e-7 rounds to 0
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = MulFloor(-15_000_000, 20_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(-30_000_000), got)
}

func TestMulFloorOverflow(t *testing.T) {
	_, err := MulFloor(math.MaxInt64, math.MaxInt64)
	assert.ErrorIs(t, err, ErrOverflow)

	// MaxInt64 * 1.0 is fine
	got, err := MulFloor(math.MaxInt64, One)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestDivFloor(t *testing.T) {
	got, err := DivFloor(30_000_000, 20_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000_000), got)

	// 1/3 truncates
	got, err = DivFloor(10_000_000, 30_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(3_333_333), got)

	_, err = DivFloor(1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAddSub(t *testing.T) {
	got, err := Add(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	_, err = Add(math.MaxInt64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err = Sub(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)

	_, err = Sub(math.MinInt64, 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSqrtFloor(t *testing.T) {
	// sqrt(4.0) = 2.0
	got, err := SqrtFloor(4 * One)
	require.NoError(t, err)
	assert.Equal(t, 2*One, got)

	// sqrt(6.0) = 2.4494897...
	got, err = SqrtFloor(6 * One)
	require.NoError(t, err)
	assert.Equal(t, int64(24_494_897), got)

	got, err = SqrtFloor(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	_, err = SqrtFloor(-One)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSqrtSquareRoundTrip(t *testing.T) {
	// component peak squared must land on the headline peak within one
	// least-significant unit of truncation error
	peak := 6 * One
	component, err := SqrtFloor(peak)
	require.NoError(t, err)

	back, err := MulFloor(component, component)
	require.NoError(t, err)
	assert.InDelta(t, float64(peak), float64(back), 2)
}
