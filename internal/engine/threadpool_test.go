package engine

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadPoolSubmitAndWait(t *testing.T) {
	pool := NewThreadPool(4)
	defer pool.Stop()

	var sum atomic.Int64
	jobs := make([]Job, 0, 10)
	for i := 1; i <= 10; i++ {
		i := i
		jobs = append(jobs, func() { sum.Add(int64(i)) })
	}
	pool.SubmitAndWait(jobs)

	assert.Equal(t, int64(55), sum.Load())
}

// TestThreadPoolSubmitAfterStopIsNoop checks Submit after Stop neither
// blocks nor panics — a host job with no consumer left must be dropped.
func TestThreadPoolSubmitAfterStopIsNoop(t *testing.T) {
	pool := NewThreadPool(1)
	pool.Stop()

	done := make(chan struct{})
	go func() {
		pool.Submit(func() {})
		close(done)
	}()
	<-done // Submit returned without blocking on the closed channel
}

func TestThreadPoolStopIsIdempotent(t *testing.T) {
	pool := NewThreadPool(2)
	pool.Stop()
	pool.Stop()
}
