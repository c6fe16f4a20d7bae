package rbtree

import "fmt"

// Insert links a new node for key and rebalances. Keys are assumed
// unique: inserting a key that is already present is not detected and
// leaves two nodes with equal keys.
func (t *Tree[K, V]) Insert(key K, value V) (*Node[K, V], error) {
	if err := t.checkKey(key); err != nil {
		return nil, err
	}

	n := newNode(key, value)
	if err := t.link(n); err != nil {
		return n, err
	}

	t.root().color = Black
	t.n++
	return n, nil
}

// link descends to the insertion point and attaches n. Parent links on
// the path are re-derived from the descent itself.
func (t *Tree[K, V]) link(n *Node[K, V]) error {
	z := t.z()
	parent := t.head
	x := t.root()
	for x != z {
		x.parent = parent
		parent = x
		if t.cmp(n.key, x.key) < 0 {
			x = x.left
		} else {
			x = x.right
		}
	}

	n.parent = parent
	n.left = z
	n.right = z
	switch {
	case parent == t.head:
		t.head.right = n
	case t.cmp(n.key, parent.key) < 0:
		parent.left = n
	default:
		parent.right = n
	}

	if parent.color == Red {
		return t.fixup(n)
	}
	n.color = Red
	return nil
}

// fixup walks up from the freshly linked red node n while it has a red
// parent, rebuilding each offending formation.
func (t *Tree[K, V]) fixup(n *Node[K, V]) error {
	n.color = Red
	if n.parent.color != Red {
		return fmt.Errorf("%w: fixup entered below black parent of %v", ErrCorrupt, n.key)
	}

	for n.color == Red {
		p := n.parent
		root := t.root()
		if n == root || p == root {
			break
		}

		lead := p.parent
		if p.color != Red || lead.color != Black {
			break
		}

		if p == lead.left {
			aunt := lead.right
			switch {
			case aunt.color == Red:
				n = colorFlip(p, lead, aunt)
			case n == p.right:
				n = diamondLeft(lead)
			default:
				n = echelonLeft(lead)
			}
		} else {
			aunt := lead.left
			switch {
			case aunt.color == Red:
				n = colorFlip(p, lead, aunt)
			case n == p.left:
				n = diamondRight(lead)
			default:
				n = echelonRight(lead)
			}
		}
	}

	t.root().color = Black
	return nil
}
