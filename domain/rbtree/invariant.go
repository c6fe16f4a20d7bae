package rbtree

// The checkers below walk the whole tree. They exist for tests and
// diagnostics.

// HeightInvariant reports whether every root-to-leaf path holds the
// same number of black nodes.
func (t *Tree[K, V]) HeightInvariant() bool {
	return blackHeight(t.root()) >= 0
}

// ColorInvariant reports whether no red node has a red parent.
func (t *Tree[K, V]) ColorInvariant() bool {
	return colorOK(t.root(), t.head.color == Red)
}

// LinkInvariant reports whether every child's parent link points back
// at the node holding it.
func (t *Tree[K, V]) LinkInvariant() bool {
	r := t.root()
	if !r.leaf && r.parent != t.head {
		return false
	}
	return linksOK(r)
}

// blackHeight returns the number of black nodes on every path from x
// down to a leaf, or -1 when two paths disagree.
func blackHeight[K, V any](x *Node[K, V]) int {
	if x.leaf {
		return 0
	}
	hl := blackHeight(x.left)
	if hl < 0 {
		return -1
	}
	hr := blackHeight(x.right)
	if hr < 0 || hl != hr {
		return -1
	}
	if x.color == Red {
		return hl
	}
	return hl + 1
}

func colorOK[K, V any](x *Node[K, V], redParent bool) bool {
	if x.leaf {
		return true
	}
	if redParent && x.color == Red {
		return false
	}
	return colorOK(x.left, x.color == Red) && colorOK(x.right, x.color == Red)
}

func linksOK[K, V any](x *Node[K, V]) bool {
	if x.leaf {
		return true
	}
	for _, c := range [2]*Node[K, V]{x.left, x.right} {
		if !c.leaf && c.parent != x {
			return false
		}
	}
	return linksOK(x.left) && linksOK(x.right)
}
