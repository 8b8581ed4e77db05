package objects

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTreeHashOrderIndependent(t *testing.T) {
	files := map[string]Entry{
		"b.txt": {Hash: "hashb"},
		"a.txt": {Hash: "hasha"},
		"c.txt": {Hash: "hashc"},
	}

	h1 := ComputeTreeHash(files)

	reordered := map[string]Entry{
		"c.txt": {Hash: "hashc"},
		"a.txt": {Hash: "hasha"},
		"b.txt": {Hash: "hashb"},
	}
	h2 := ComputeTreeHash(reordered)

	require.Equal(t, h1, h2)
}

func TestCreateAndGetTreeRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	trees := NewTreeStore(r)

	files := map[string]Entry{
		"hello.txt": {Hash: HashBytesHex([]byte("hello\n"))},
	}

	hash, err := trees.CreateTree(files)
	require.NoError(t, err)
	require.Equal(t, ComputeTreeHash(files), hash)

	tree, err := trees.GetTree(hash)
	require.NoError(t, err)
	require.Equal(t, hash, tree.Hash)
	require.Equal(t, files["hello.txt"].Hash, tree.Index.Files["hello.txt"].Hash)
}

func TestCreateTreeIsNoOpWhenPresent(t *testing.T) {
	r := newTestRepo(t)
	trees := NewTreeStore(r)

	files := map[string]Entry{"a.txt": {Hash: "h"}}
	hash1, err := trees.CreateTree(files)
	require.NoError(t, err)
	hash2, err := trees.CreateTree(files)
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)
}
