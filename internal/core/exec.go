package core

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultChunk is the number of indices handed to one worker at a time.
const DefaultChunk = 1024

// Executor runs a kernel over the index range [0, n). The kernel receives
// half-open chunks [lo, hi) and must only write to indices inside its chunk.
// For returns once every chunk has completed.
type Executor interface {
	Name() string
	For(n int, kernel func(lo, hi int))
}

// SerialExecutor runs every chunk on the calling goroutine in index order.
type SerialExecutor struct{}

// Name identifies the executor in logs.
func (SerialExecutor) Name() string { return "serial" }

// For runs kernel over [0, n) as a single chunk.
func (SerialExecutor) For(n int, kernel func(lo, hi int)) {
	if n <= 0 {
		return
	}
	kernel(0, n)
}

// ParallelExecutor splits the range into chunks and runs them on a bounded
// set of goroutines.
type ParallelExecutor struct {
	Workers int
	Chunk   int
}

// NewParallelExecutor returns an executor using workers goroutines. A
// non-positive count uses GOMAXPROCS.
func NewParallelExecutor(workers int) ParallelExecutor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return ParallelExecutor{Workers: workers, Chunk: DefaultChunk}
}

// Name identifies the executor in logs.
func (p ParallelExecutor) Name() string { return "parallel" }

// For runs kernel over [0, n) in chunks of p.Chunk indices.
func (p ParallelExecutor) For(n int, kernel func(lo, hi int)) {
	if n <= 0 {
		return
	}
	chunk := p.Chunk
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n <= chunk || workers == 1 {
		kernel(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			kernel(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// NewExecutor returns a serial executor for workers == 1 and a parallel one
// otherwise.
func NewExecutor(workers int) Executor {
	if workers == 1 {
		return SerialExecutor{}
	}
	return NewParallelExecutor(workers)
}
