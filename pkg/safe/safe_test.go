package safe_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/pkg/safe"
)

func TestGo_RecoversPanicAndReportsIt(t *testing.T) {
	var wg sync.WaitGroup
	var caught error
	wg.Add(1)

	safe.Go(func() {
		defer wg.Done()
		panic("boom")
	}, func(err error) {
		caught = err
	})

	wg.Wait()
	require.Error(t, caught)
	assert.Contains(t, caught.Error(), "boom")
}

func TestGo_NoPanicNeverCallsHandler(t *testing.T) {
	var wg sync.WaitGroup
	called := false
	wg.Add(1)

	safe.Go(func() {
		defer wg.Done()
	}, func(error) {
		called = true
	})

	wg.Wait()
	assert.False(t, called)
}

func TestWithRecover_NilFuncReturnsNil(t *testing.T) {
	assert.Nil(t, safe.WithRecover(nil))
}

func TestWithRecover_RunsWrappedFuncWithoutPanicking(t *testing.T) {
	ran := false
	fn := safe.WithRecover(func() { ran = true })
	require.NotPanics(t, fn)
	assert.True(t, ran)
}
