package main

import (
	"context"
	"testing"

	"firefront/internal/sims/wildfire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	got, err := parseList(" 1, 2.5,,4 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 4}, got)

	_, err = parseList("1,x")
	assert.Error(t, err)
	_, err = parseList("-1")
	assert.Error(t, err)
	_, err = parseList(" , ")
	assert.Error(t, err)
}

func TestSweepOrdersByBurnedArea(t *testing.T) {
	base := wildfire.DefaultConfig()
	base.Width, base.Height = 24, 24
	base.Workers = 1

	scenarios := crossProduct([]float64{0, 8}, []float64{0.04, 0.5})
	require.Len(t, scenarios, 4)

	results, err := sweep(context.Background(), base, scenarios, 20, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].BurnedArea, results[i].BurnedArea)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.HeadRun, 0.0)
		assert.NotEmpty(t, r.Elapsed)
	}
}

func TestSweepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	base := wildfire.DefaultConfig()
	base.Width, base.Height = 16, 16
	_, err := sweep(ctx, base, crossProduct([]float64{1}, []float64{0.05}), 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
