package rbtree

// Glb returns the node with the greatest key <= key. When no such node
// exists ok is false and the returned node is the tree's low bound.
func (t *Tree[K, V]) Glb(key K) (n *Node[K, V], ok bool, err error) {
	if err := t.checkKey(key); err != nil {
		return nil, false, err
	}
	n = t.glb(t.root(), key)
	return n, n != t.low, nil
}

// Lub returns the node with the least key >= key. When no such node
// exists ok is false and the returned node is the tree's high bound.
func (t *Tree[K, V]) Lub(key K) (n *Node[K, V], ok bool, err error) {
	if err := t.checkKey(key); err != nil {
		return nil, false, err
	}
	n = t.lub(t.root(), key)
	return n, n != t.high, nil
}

func (t *Tree[K, V]) glb(x *Node[K, V], key K) *Node[K, V] {
	if x.leaf {
		return t.low
	}
	if t.cmp(key, x.key) >= 0 {
		// x qualifies; a larger candidate can only be on the right.
		return t.greater(x, t.glb(x.right, key))
	}
	return t.glb(x.left, key)
}

func (t *Tree[K, V]) lub(x *Node[K, V], key K) *Node[K, V] {
	if x.leaf {
		return t.high
	}
	if t.cmp(key, x.key) <= 0 {
		return t.lesser(x, t.lub(x.left, key))
	}
	return t.lub(x.right, key)
}

// greater returns the larger of a and b, preferring a on ties and
// ignoring the low bound.
func (t *Tree[K, V]) greater(a, b *Node[K, V]) *Node[K, V] {
	if b == t.low || t.cmp(a.key, b.key) >= 0 {
		return a
	}
	return b
}

func (t *Tree[K, V]) lesser(a, b *Node[K, V]) *Node[K, V] {
	if b == t.high || t.cmp(a.key, b.key) <= 0 {
		return a
	}
	return b
}
