package rbtree

import "fmt"

type Color uint8

const (
	Red   Color = 0
	Black Color = 1
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Node is a single record of a Tree. Nodes returned by Insert, Glb and
// Lub remain valid handles until their key is removed.
type Node[K, V any] struct {
	key    K
	value  V
	color  Color
	left   *Node[K, V]
	right  *Node[K, V]
	parent *Node[K, V]
	leaf   bool
}

// newNode returns an unattached black node. Links stay nil until the
// node is linked into a tree.
func newNode[K, V any](key K, value V) *Node[K, V] {
	return &Node[K, V]{key: key, value: value, color: Black}
}

// newLeaf returns the shared sentinel every empty child slot points at.
func newLeaf[K, V any](nilValue V) *Node[K, V] {
	z := &Node[K, V]{value: nilValue, color: Black, leaf: true}
	z.left, z.right, z.parent = z, z, z
	return z
}

func (n *Node[K, V]) Key() K       { return n.key }
func (n *Node[K, V]) Value() V     { return n.value }
func (n *Node[K, V]) Color() Color { return n.color }
func (n *Node[K, V]) Red() bool    { return n.color == Red }
func (n *Node[K, V]) Black() bool  { return n.color == Black }

// Left returns the left child, or nil when the slot is empty.
func (n *Node[K, V]) Left() *Node[K, V] { return child(n.left) }

// Right returns the right child, or nil when the slot is empty.
func (n *Node[K, V]) Right() *Node[K, V] { return child(n.right) }

func (n *Node[K, V]) String() string {
	return fmt.Sprintf("%s %v", n.color, n.key)
}

func child[K, V any](c *Node[K, V]) *Node[K, V] {
	if c == nil || c.leaf {
		return nil
	}
	return c
}

// adopt points c's parent link at p. The sentinel's links are never
// written.
func adopt[K, V any](c, p *Node[K, V]) {
	if !c.leaf {
		c.parent = p
	}
}
