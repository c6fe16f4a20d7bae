package rbtree

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveInternalNode(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 4, 2, 6, 1, 3, 5, 7)

	require.NoError(t, tree.Remove(4))

	for _, k := range []int64{1, 2, 3, 5, 6, 7} {
		v, err := tree.Search(k)
		require.NoError(t, err)
		assert.Equal(t, int(k)*10, v, "search %d", k)
	}
	v, err := tree.Search(4)
	require.NoError(t, err)
	assert.Equal(t, nilVal, v)

	assert.Equal(t, int64(5), tree.Root().Key())
	assert.True(t, tree.LinkInvariant())
	assert.Equal(t, []int64{1, 2, 3, 5, 6, 7}, inorder(tree.Root(), nil))
}

func TestRemoveDoesNotRebalance(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 1, 2, 3, 4, 5, 6, 7)
	requireInvariants(t, tree)

	require.NoError(t, tree.Remove(4))

	// 5 takes the root and 6 keeps its color with an empty left slot.
	root := tree.Root()
	requireNode(t, root, 5, Black)
	requireNode(t, root.Right(), 6, Black)
	assert.Nil(t, root.Right().Left())
	requireNode(t, root.Right().Right(), 7, Black)

	assert.False(t, tree.HeightInvariant())
	assert.True(t, tree.ColorInvariant())
	assert.True(t, tree.LinkInvariant())
}

func TestRemoveRightChildWithoutLeft(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 1, 2, 3)

	require.NoError(t, tree.Remove(2))

	requireNode(t, tree.Root(), 3, Black)
	requireNode(t, tree.Root().Left(), 1, Black)
	assert.Nil(t, tree.Root().Right())
	assert.True(t, tree.LinkInvariant())
}

func TestRemoveRedLeaf(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 2, 1, 3)

	require.NoError(t, tree.Remove(3))

	requireInvariants(t, tree)
	requireNode(t, tree.Root(), 2, Black)
	requireNode(t, tree.Root().Left(), 1, Red)
	assert.Nil(t, tree.Root().Right())
}

func TestRemoveMissingKeyIsNoop(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 1, 2, 3)
	root := tree.Root()

	require.NoError(t, tree.Remove(10))
	require.NoError(t, tree.Remove(0))

	assert.Same(t, root, tree.Root())
	assert.Equal(t, []int64{1, 2, 3}, inorder(tree.Root(), nil))
	requireInvariants(t, tree)
}

func TestRemoveClearsNodeLinks(t *testing.T) {
	tree := newIntTree()
	nodes := insertAll(t, tree, 2, 1, 3)

	require.NoError(t, tree.Remove(2))

	assert.Nil(t, nodes[0].Left())
	assert.Nil(t, nodes[0].Right())
	assert.Equal(t, 20, nodes[0].Value())
}

func TestRemoveEveryKey(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 17))
	keys := r.Perm(300)

	tree := newIntTree()
	for _, k := range keys {
		_, err := tree.Insert(int64(k), k*10)
		require.NoError(t, err)
	}

	remaining := make([]int64, 0, len(keys))
	for _, k := range keys {
		remaining = append(remaining, int64(k))
	}
	slices.Sort(remaining)

	r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for _, k := range keys {
		require.NoError(t, tree.Remove(int64(k)))

		i, found := slices.BinarySearch(remaining, int64(k))
		require.True(t, found)
		remaining = slices.Delete(remaining, i, i+1)

		v, err := tree.Search(int64(k))
		require.NoError(t, err)
		require.Equal(t, nilVal, v, "removed key %d still found", k)
		require.True(t, tree.LinkInvariant())
		require.Equal(t, remaining, inorder(tree.Root(), []int64{}))
	}

	assert.True(t, tree.Empty())
	assert.Equal(t, len(keys), tree.N(), "N counts insertions")
}

func TestInsertAfterRemove(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	for _, k := range []int64{4, 8, 1} {
		require.NoError(t, tree.Remove(k))
	}

	insertAll(t, tree, 4, 11, 12, 0)

	assert.True(t, tree.LinkInvariant())
	assert.Equal(t, []int64{0, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12}, inorder(tree.Root(), nil))
	for _, k := range []int64{0, 4, 12} {
		v, err := tree.Search(k)
		require.NoError(t, err)
		assert.Equal(t, int(k)*10, v)
	}
}
