package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/knowledge/cache"
)

type payload struct {
	Value string `json:"value"`
}

func TestCache_SetThenGetRoundTrips(t *testing.T) {
	c := cache.New(t.TempDir(), time.Hour)
	key := cache.Key("query", "transformer attention")
	require.NoError(t, c.Set(key, payload{Value: "hello"}))

	var got payload
	ok := c.Get(key, &got)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Value)
}

func TestCache_GetMissingKeyReturnsFalse(t *testing.T) {
	c := cache.New(t.TempDir(), time.Hour)
	var got payload
	assert.False(t, c.Get(cache.Key("never", "set"), &got))
}

func TestCache_ExpiredEntryIsEvicted(t *testing.T) {
	c := cache.New(t.TempDir(), time.Hour)
	key := cache.Key("stale")
	require.NoError(t, c.SetTTL(key, payload{Value: "old"}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var got payload
	assert.False(t, c.Get(key, &got))
}

func TestCache_KeyIsStableForSameInputs(t *testing.T) {
	a := cache.Key("one", "two")
	b := cache.Key("one", "two")
	c := cache.Key("one", "three")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCache_DeleteRemovesEntry(t *testing.T) {
	c := cache.New(t.TempDir(), time.Hour)
	key := cache.Key("to-delete")
	require.NoError(t, c.Set(key, payload{Value: "x"}))
	require.NoError(t, c.Delete(key))

	var got payload
	assert.False(t, c.Get(key, &got))
}
