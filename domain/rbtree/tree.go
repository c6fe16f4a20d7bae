package rbtree

import (
	"cmp"
	"fmt"
)

// Comparator orders keys. It must return a negative number when a < b,
// zero when a == b and a positive number when a > b, and impose a strict
// total order.
type Comparator[K any] func(a, b K) int

// Ordered returns the natural Comparator for an ordered key type.
func Ordered[K cmp.Ordered]() Comparator[K] {
	return cmp.Compare[K]
}

type Tree[K, V any] struct {
	// head is a pseudo-node keyed by the low bound. Its right link is the
	// root and its left link holds the leaf sentinel.
	head *Node[K, V]

	// low and high are returned by Glb and Lub when nothing in the tree
	// qualifies.
	low     *Node[K, V]
	high    *Node[K, V]
	hasHigh bool

	cmp Comparator[K]

	// n counts insertions. Remove does not decrement it.
	n int
}

// New returns an empty tree accepting keys strictly between low and
// high. nilValue is what Search returns for a missing key.
func New[K, V any](low, high K, nilValue V, cmp Comparator[K]) *Tree[K, V] {
	t := NewLowBounded(low, nilValue, cmp)
	t.high = newNode(high, nilValue)
	t.hasHigh = true
	return t
}

// NewLowBounded returns an empty tree accepting every key greater than
// low. Lub misses on such a tree carry no bound key.
func NewLowBounded[K, V any](low K, nilValue V, cmp Comparator[K]) *Tree[K, V] {
	z := newLeaf[K](nilValue)
	head := newNode(low, nilValue)
	head.left = z
	head.right = z
	head.parent = head

	var noKey K
	return &Tree[K, V]{
		head: head,
		low:  newNode(low, nilValue),
		high: newNode(noKey, nilValue),
		cmp:  cmp,
	}
}

// N returns the number of keys inserted.
func (t *Tree[K, V]) N() int { return t.n }

// Root returns the root node, or nil for an empty tree.
func (t *Tree[K, V]) Root() *Node[K, V] { return child(t.root()) }

func (t *Tree[K, V]) Empty() bool { return t.root().leaf }

func (t *Tree[K, V]) Low() K { return t.head.key }

// High returns the declared high bound, if the tree has one.
func (t *Tree[K, V]) High() (K, bool) { return t.high.key, t.hasHigh }

// ---- internal helpers ----

func (t *Tree[K, V]) root() *Node[K, V] { return t.head.right }

// z is the leaf sentinel.
func (t *Tree[K, V]) z() *Node[K, V] { return t.head.left }

func (t *Tree[K, V]) checkKey(key K) error {
	if t.cmp(key, t.head.key) <= 0 {
		return fmt.Errorf("%w: key %v must be greater than the low key %v", ErrOutOfBounds, key, t.head.key)
	}
	if t.hasHigh && t.cmp(key, t.high.key) >= 0 {
		return fmt.Errorf("%w: key %v must be less than the high key %v", ErrOutOfBounds, key, t.high.key)
	}
	return nil
}

// find returns the node holding key, or the sentinel.
func (t *Tree[K, V]) find(key K) *Node[K, V] {
	x := t.root()
	for !x.leaf {
		c := t.cmp(key, x.key)
		if c == 0 {
			return x
		}
		if c < 0 {
			x = x.left
		} else {
			x = x.right
		}
	}
	return x
}

// Search returns the value stored under key, or the tree's nil value.
func (t *Tree[K, V]) Search(key K) (V, error) {
	if err := t.checkKey(key); err != nil {
		var zero V
		return zero, err
	}
	return t.find(key).value, nil
}
