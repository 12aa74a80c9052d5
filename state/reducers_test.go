package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/state"
)

func TestMergeSections_IDKeyedOverwriteAndAppend(t *testing.T) {
	existing := []state.Section{
		{ID: "s1", Title: "old s1"},
		{ID: "s2", Title: "s2"},
	}
	incoming := []state.Section{
		{ID: "s1", Title: "new s1"},
		{ID: "s3", Title: "s3"},
	}

	merged := state.MergeSections(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, "s1", merged[0].ID)
	assert.Equal(t, "new s1", merged[0].Title, "later write of same id must overwrite")
	assert.Equal(t, "s2", merged[1].ID)
	assert.Equal(t, "s3", merged[2].ID, "new id appends at the end")
}

func TestMergeListDedup_PreservesFirstSeenOrder(t *testing.T) {
	existing := []state.ReferenceLink{
		{Title: "A", URL: "http://a"},
		{Title: "B", URL: "http://b"},
	}
	incoming := []state.ReferenceLink{
		{Title: "B", URL: "http://b"}, // duplicate
		{Title: "C", URL: "http://c"},
	}

	merged := state.MergeListDedup(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Title)
	assert.Equal(t, "B", merged[1].Title)
	assert.Equal(t, "C", merged[2].Title)
}

func TestMergeListDedup_EmptyInputs(t *testing.T) {
	assert.Empty(t, state.MergeListDedup[string](nil, nil))
	assert.Equal(t, []string{"a"}, state.MergeListDedup[string](nil, []string{"a"}))
	assert.Equal(t, []string{"a"}, state.MergeListDedup[string]([]string{"a"}, nil))
}
