package rbtree

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlb(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 2, 3, 5, 8)

	tests := []struct {
		key  int64
		want int64
		ok   bool
	}{
		{0, lowest, false},
		{1, lowest, false},
		{2, 2, true},
		{3, 3, true},
		{4, 3, true},
		{5, 5, true},
		{6, 5, true},
		{7, 5, true},
		{8, 8, true},
		{9, 8, true},
	}
	for _, tt := range tests {
		n, ok, err := tree.Glb(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, "glb(%d)", tt.key)
		assert.Equal(t, tt.want, n.Key(), "glb(%d)", tt.key)
	}
}

func TestLub(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 2, 3, 5, 8)

	tests := []struct {
		key  int64
		want int64
		ok   bool
	}{
		{0, 2, true},
		{1, 2, true},
		{2, 2, true},
		{3, 3, true},
		{4, 5, true},
		{5, 5, true},
		{6, 8, true},
		{7, 8, true},
		{8, 8, true},
		{9, highest, false},
	}
	for _, tt := range tests {
		n, ok, err := tree.Lub(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, "lub(%d)", tt.key)
		assert.Equal(t, tt.want, n.Key(), "lub(%d)", tt.key)
	}
}

func TestBoundsReturnStoredNodes(t *testing.T) {
	tree := newIntTree()
	nodes := insertAll(t, tree, 2, 3, 5, 8)

	g, ok, err := tree.Glb(5)
	require.NoError(t, err)
	require.True(t, ok)
	l, ok, err := tree.Lub(5)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Same(t, nodes[2], g)
	assert.Same(t, nodes[2], l)
	assert.Equal(t, 50, g.Value())
}

func TestBoundsOnEmptyTree(t *testing.T) {
	tree := newIntTree()

	g, ok, err := tree.Glb(42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, lowest, g.Key())
	assert.Equal(t, nilVal, g.Value())

	l, ok, err := tree.Lub(42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, highest, l.Key())
}

func TestLubMissOnLowBoundedTree(t *testing.T) {
	tree := NewLowBounded[int64, int](0, nilVal, Ordered[int64]())
	insertAll(t, tree, 10, 20)

	_, ok, err := tree.Lub(21)
	require.NoError(t, err)
	assert.False(t, ok)

	n, ok, err := tree.Lub(11)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(20), n.Key())
}

func TestBoundsMatchSortedGaps(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	keys := make([]int64, 0, 100)
	for k := int64(2); k <= 200; k += 2 {
		keys = append(keys, k)
	}
	r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	tree := newIntTree()
	insertAll(t, tree, keys...)

	for k := int64(1); k <= 201; k++ {
		g, gok, err := tree.Glb(k)
		require.NoError(t, err)
		l, lok, err := tree.Lub(k)
		require.NoError(t, err)

		wantGlb, wantLub := k-k%2, k+k%2
		if wantGlb < 2 {
			assert.False(t, gok, "glb(%d)", k)
			assert.Equal(t, lowest, g.Key())
		} else {
			assert.True(t, gok, "glb(%d)", k)
			assert.Equal(t, wantGlb, g.Key(), "glb(%d)", k)
		}
		if wantLub > 200 {
			assert.False(t, lok, "lub(%d)", k)
			assert.Equal(t, highest, l.Key())
		} else {
			assert.True(t, lok, "lub(%d)", k)
			assert.Equal(t, wantLub, l.Key(), "lub(%d)", k)
		}
	}
}
