package keyspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenSeparatesDirsAndLeaves(t *testing.T) {
	root := &Node{
		Key: "/tests",
		Dir: true,
		Nodes: Nodes{
			{Key: "/tests/1", Value: "a"},
			{Key: "/tests/2", Value: "b"},
			{Key: "/tests/sub", Dir: true},
		},
	}

	dirs, values := flatten(root)

	assert.Equal(t, []string{"/tests/sub"}, dirs, "leaves must not be listed as directories")
	assert.Equal(t, map[string]string{"/tests/1": "a", "/tests/2": "b"}, values)
}

func TestFlattenDocumentOrder(t *testing.T) {
	root := &Node{
		Key: "/",
		Dir: true,
		Nodes: Nodes{
			{
				Key: "/b",
				Dir: true,
				Nodes: Nodes{
					{Key: "/b/inner", Dir: true},
					{Key: "/b/leaf", Value: "1"},
				},
			},
			{Key: "/a", Dir: true},
		},
	}

	dirs, values := flatten(root)

	// Depth-first, children in the order the server returned them: the
	// server is not required to sort.
	assert.Equal(t, []string{"/b", "/b/inner", "/a"}, dirs)
	assert.Equal(t, map[string]string{"/b/leaf": "1"}, values)
}

func TestFlattenExcludesTraversalRoot(t *testing.T) {
	root := &Node{Key: "/only", Dir: true}

	dirs, values := flatten(root)

	assert.Empty(t, dirs, "the listed directory itself is not part of the result")
	assert.Empty(t, values)
}

func TestFlattenNilAndEmpty(t *testing.T) {
	dirs, values := flatten(nil)
	require.NotNil(t, values)
	assert.Empty(t, dirs)

	dirs, values = flatten(&Node{Key: "/", Dir: true, Nodes: Nodes{nil}})
	assert.Empty(t, dirs)
	assert.Empty(t, values)
}

func TestFlattenMalformedDirWithValue(t *testing.T) {
	root := &Node{
		Key: "/",
		Dir: true,
		Nodes: Nodes{
			{Key: "/broken", Dir: true, Value: "stray", Nodes: Nodes{
				{Key: "/broken/leaf", Value: "x"},
			}},
		},
	}

	dirs, values := flatten(root)

	assert.Equal(t, []string{"/broken"}, dirs, "a dir claiming a value stays a dir")
	assert.Equal(t, map[string]string{"/broken/leaf": "x"}, values)
}

func TestFlattenRebuildsStateEachCall(t *testing.T) {
	first := &Node{Key: "/", Dir: true, Nodes: Nodes{
		{Key: "/one", Value: "1"},
		{Key: "/dir", Dir: true},
	}}
	second := &Node{Key: "/", Dir: true, Nodes: Nodes{
		{Key: "/two", Value: "2"},
	}}

	_, _ = flatten(first)
	dirs, values := flatten(second)

	assert.Empty(t, dirs)
	assert.Equal(t, map[string]string{"/two": "2"}, values, "previous results must not leak into later calls")
}
