package rbtree

// Remove splices the node holding key out of the tree. Removing a
// missing key does nothing. Colors are left as they were, so a removal
// may break the height or color invariant.
func (t *Tree[K, V]) Remove(key K) error {
	if err := t.checkKey(key); err != nil {
		return err
	}

	z := t.z()
	p := t.head
	x := t.root()
	for x != z {
		c := t.cmp(key, x.key)
		if c == 0 {
			break
		}
		p = x
		if c < 0 {
			x = x.left
		} else {
			x = x.right
		}
	}
	if x == z {
		return nil
	}

	// From here on x becomes the node that replaces target.
	target := x
	switch {
	case target.right == z:
		x = target.left
	case target.right.left == z:
		// The right child has a free left slot for target's left subtree.
		x = target.right
		x.left = target.left
		adopt(x.left, x)
	default:
		// The successor is the end of the left spine of target.right.
		c := target.right
		for c.left.left != z {
			c = c.left
		}
		x = c.left
		c.left = x.right
		adopt(c.left, c)
		x.left = target.left
		adopt(x.left, x)
		x.right = target.right
		adopt(x.right, x)
	}

	if t.cmp(key, p.key) < 0 {
		p.left = x
	} else {
		p.right = x
	}
	adopt(x, p)

	target.left, target.right, target.parent = nil, nil, nil
	return nil
}
