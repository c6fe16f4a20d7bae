package rbtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type formationKit struct {
	leaf *Node[int64, int]
}

func newKit() formationKit {
	return formationKit{leaf: newLeaf[int64](nilVal)}
}

func (k formationKit) node(key int64, c Color) *Node[int64, int] {
	n := newNode(key, int(key))
	n.color = c
	n.left, n.right = k.leaf, k.leaf
	return n
}

func setLeft(p, c *Node[int64, int]) {
	p.left = c
	c.parent = p
}

func setRight(p, c *Node[int64, int]) {
	p.right = c
	c.parent = p
}

func TestColorFlip(t *testing.T) {
	k := newKit()
	lead, p, aunt := k.node(20, Black), k.node(10, Red), k.node(30, Red)
	setLeft(lead, p)
	setRight(lead, aunt)

	got := colorFlip(p, lead, aunt)

	assert.Same(t, lead, got)
	assert.True(t, lead.Red())
	assert.True(t, p.Black())
	assert.True(t, aunt.Black())
	assert.Same(t, p, lead.left)
	assert.Same(t, aunt, lead.right)
}

func TestDiamondLeft(t *testing.T) {
	k := newKit()
	m := k.node(100, Black)
	z, x, y := k.node(30, Black), k.node(10, Red), k.node(20, Red)
	a, b := k.node(15, Black), k.node(25, Black)
	setLeft(m, z)
	setLeft(z, x)
	setRight(x, y)
	setLeft(y, a)
	setRight(y, b)

	got := diamondLeft(z)

	assert.Same(t, y, got)
	assert.Same(t, y, m.left)
	assert.Same(t, m, y.parent)
	assert.Same(t, x, y.left)
	assert.Same(t, z, y.right)
	assert.Same(t, y, x.parent)
	assert.Same(t, y, z.parent)
	assert.Same(t, a, x.right)
	assert.Same(t, x, a.parent)
	assert.Same(t, b, z.left)
	assert.Same(t, z, b.parent)

	assert.True(t, y.Red())
	assert.True(t, x.Black())
	assert.True(t, z.Black())
}

func TestDiamondRightWithLeafGrandchildren(t *testing.T) {
	k := newKit()
	m := k.node(0, Black)
	x, z, y := k.node(10, Black), k.node(30, Red), k.node(20, Red)
	setRight(m, x)
	setRight(x, z)
	setLeft(z, y)

	got := diamondRight(x)

	assert.Same(t, y, got)
	assert.Same(t, y, m.right)
	assert.Same(t, x, y.left)
	assert.Same(t, z, y.right)
	assert.Same(t, k.leaf, x.right)
	assert.Same(t, k.leaf, z.left)
	assert.Same(t, k.leaf, k.leaf.parent, "sentinel links must not be written")

	assert.True(t, y.Red())
	assert.True(t, x.Black())
	assert.True(t, z.Black())
}

func TestEchelonLeft(t *testing.T) {
	k := newKit()
	m := k.node(100, Black)
	z, y, n := k.node(30, Black), k.node(20, Red), k.node(10, Red)
	a := k.node(25, Black)
	setRight(m, z)
	setLeft(z, y)
	setLeft(y, n)
	setRight(y, a)

	got := echelonLeft(z)

	assert.Same(t, y, got)
	assert.Same(t, y, m.right)
	assert.Same(t, m, y.parent)
	assert.Same(t, n, y.left)
	assert.Same(t, z, y.right)
	assert.Same(t, y, z.parent)
	assert.Same(t, a, z.left)
	assert.Same(t, z, a.parent)

	assert.True(t, y.Red())
	assert.True(t, n.Black())
	assert.True(t, z.Black())
}

func TestEchelonRight(t *testing.T) {
	k := newKit()
	m := k.node(0, Black)
	x, y, n := k.node(10, Black), k.node(20, Red), k.node(30, Red)
	a := k.node(15, Black)
	setLeft(m, x)
	setRight(x, y)
	setRight(y, n)
	setLeft(y, a)

	got := echelonRight(x)

	assert.Same(t, y, got)
	assert.Same(t, y, m.left)
	assert.Same(t, x, y.left)
	assert.Same(t, n, y.right)
	assert.Same(t, y, x.parent)
	assert.Same(t, a, x.right)
	assert.Same(t, x, a.parent)

	assert.True(t, y.Red())
	assert.True(t, n.Black())
	assert.True(t, x.Black())
}

func TestFixupRejectsBlackParent(t *testing.T) {
	tree := newIntTree()
	insertAll(t, tree, 2)

	n := newNode[int64, int](3, 30)
	n.left, n.right = tree.z(), tree.z()
	setRight(tree.Root(), n)

	err := tree.fixup(n)
	assert.ErrorIs(t, err, ErrCorrupt)
}
