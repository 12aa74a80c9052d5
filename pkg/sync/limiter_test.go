package sync_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	blogsync "github.com/blogforge/core/pkg/sync"
)

func TestLimiter_CapsConcurrentHolders(t *testing.T) {
	limiter := blogsync.NewLimiter(2)
	var inFlight atomic.Int32
	var maxSeen atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Acquire()
			defer limiter.Release()

			n := inFlight.Add(1)
			for {
				old := maxSeen.Load()
				if n <= old || maxSeen.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxSeen.Load(), int32(2))
}

func TestNewLimiter_PanicsOnNonPositiveMax(t *testing.T) {
	assert.Panics(t, func() { blogsync.NewLimiter(0) })
	assert.Panics(t, func() { blogsync.NewLimiter(-1) })
}
