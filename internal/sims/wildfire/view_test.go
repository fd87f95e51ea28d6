package wildfire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindVectorAtClampsToGrid(t *testing.T) {
	w := New(10, 8)
	require.True(t, w.SetFloatParameter("wind_speed", 4))
	require.True(t, w.SetFloatParameter("wind_heading", 90))

	vx, vy := w.WindVectorAt(3.5, 2.5)
	assert.InDelta(t, 4, vx, 1e-9)
	assert.InDelta(t, 0, vy, 1e-9)

	vx, _ = w.WindVectorAt(-20, 400)
	assert.InDelta(t, 4, vx, 1e-9)
}

func TestStatusLines(t *testing.T) {
	w := grassWorld(t, 24)
	assert.Len(t, w.StatusLines(), 5, "no centroid before the first tick")
	assert.Contains(t, w.StatusLines()[0], "tick 0")
	assert.Len(t, w.ElevationField(), 24*24)

	for tick := 0; tick < 5; tick++ {
		require.NoError(t, w.StepErr())
	}
	lines := w.StatusLines()
	assert.Contains(t, lines[0], "tick 5")
	assert.Contains(t, lines[4], "wind 5.0 m/s")
}
