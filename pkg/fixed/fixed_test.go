package fixed

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISqrtPerfectSquares(t *testing.T) {
	for _, n := range []int64{0, 1, 2, 3, 10, 255, 1024, 65535, 1 << 20} {
		assert.Equal(t, n, ISqrt(n*n), "sqrt(%d^2)", n)
	}
}

func TestISqrtIsFloorForRandomValues(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 0))
	for i := 0; i < 2000; i++ {
		v := r.Int64N(1 << 40)
		s := ISqrt(v)
		require.LessOrEqual(t, s*s, v, "v=%d", v)
		require.Greater(t, (s+1)*(s+1), v, "v=%d", v)
	}
}

func TestISqrtSmallAndNegative(t *testing.T) {
	assert.Equal(t, int64(0), ISqrt(-5))
	assert.Equal(t, int64(1), ISqrt(3))
	assert.Equal(t, int64(2), ISqrt(4))
	assert.Equal(t, int64(2), ISqrt(8))
}

func TestSqrtTracksFloat(t *testing.T) {
	for _, v := range []float64{0.25, 1, 2, 9, 42.5, 1000} {
		got := Sqrt(FromFloat(v)).Float()
		assert.InDelta(t, math.Sqrt(v), got, 0.05, "sqrt(%v)", v)
	}
	assert.Equal(t, Q(0), Sqrt(-One))
}

func TestMulDivRoundTrip(t *testing.T) {
	a := FromFloat(3.5)
	b := FromFloat(-1.25)
	assert.InDelta(t, -4.375, Mul(a, b).Float(), 1.0/Scale)
	assert.InDelta(t, -2.8, Div(a, b).Float(), 2.0/Scale)
	assert.Equal(t, Q(0), Div(a, 0))
}

func TestFromFloatRejectsNonFinite(t *testing.T) {
	assert.Equal(t, Q(0), FromFloat(math.NaN()))
	assert.Equal(t, Q(0), FromFloat(math.Inf(1)))
	assert.Equal(t, FromInt(3), FromFloat(3))
}

func TestClampMinMaxAbs(t *testing.T) {
	assert.Equal(t, One, Clamp(FromInt(5), -One, One))
	assert.Equal(t, -One, Clamp(FromInt(-5), -One, One))
	assert.Equal(t, One, Abs(-One))
	assert.Equal(t, One, Max(One, -One))
	assert.Equal(t, -One, Min(One, -One))
}
