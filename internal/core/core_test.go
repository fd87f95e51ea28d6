package core

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorsVisitEveryIndexOnce(t *testing.T) {
	cases := []struct {
		name string
		exec Executor
		n    int
	}{
		{"serial", SerialExecutor{}, 5000},
		{"parallel", ParallelExecutor{Workers: 4, Chunk: 64}, 5000},
		{"parallel-small", ParallelExecutor{Workers: 4, Chunk: 64}, 10},
		{"parallel-default", NewParallelExecutor(0), 3 * DefaultChunk},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hits := make([]int32, tc.n)
			tc.exec.For(tc.n, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				require.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestExecutorEmptyRange(t *testing.T) {
	called := false
	NewExecutor(4).For(0, func(lo, hi int) { called = true })
	SerialExecutor{}.For(-1, func(lo, hi int) { called = true })
	assert.False(t, called)
	assert.Equal(t, "serial", NewExecutor(1).Name())
}

func TestFieldSwap(t *testing.T) {
	f := NewField(4, 1)
	f.Next[2] = 7
	f.Swap()
	assert.Equal(t, 7.0, f.Cur[2])
	assert.Equal(t, 1.0, f.Next[2])
	f.Sync()
	assert.Equal(t, f.Cur, f.Next)
}

func TestGridHelpers(t *testing.T) {
	g := NewGrid(4, 3, 2)
	assert.Equal(t, 12, g.Len())
	x, y := g.Coords(g.Index(3, 2))
	assert.Equal(t, [2]int{3, 2}, [2]int{x, y})
	assert.True(t, g.Boundary(0, 1))
	assert.False(t, g.Boundary(1, 1))
	assert.False(t, g.InBounds(4, 0))
	assert.Equal(t, 4.0, g.CellArea())
}

func TestLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, "fire", false)
	l.Debugf("hidden %d", 1)
	l.Infof("tick %d", 2)
	l.Warnf("clamped")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[fire] INFO: tick 2")
	assert.Contains(t, errOut.String(), "[fire] WARN: clamped")

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

func TestFixedStepDue(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }
	assert.Equal(t, 1, fs.Due())
	clock = clock.Add(250 * time.Millisecond)
	assert.Equal(t, 2, fs.Due())
	clock = clock.Add(10 * time.Second)
	assert.Equal(t, 4, fs.Due())
	assert.Equal(t, 10, fs.TPS())
}

func TestSnapshotFind(t *testing.T) {
	s := ParameterSnapshot{Groups: []ParameterGroup{{Name: "A", Params: []Parameter{{Key: "dt", Value: "1"}}}}}
	p, ok := s.Find("dt")
	require.True(t, ok)
	assert.Equal(t, "1", p.Value)
	_, ok = s.Find("nope")
	assert.False(t, ok)
	c := ParameterControl{Min: 0, Max: 1}
	assert.Equal(t, 1.0, c.Clamp(3))
	assert.Equal(t, 0.0, c.Clamp(-2))
	assert.Equal(t, -2.0, ParameterControl{}.Clamp(-2), "no bounds set")
}
