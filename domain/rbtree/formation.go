package rbtree

// The transforms below take the formation led by lead (a black node with
// a red child and a red grandchild) and return the root of the rebuilt
// subtree, already linked under lead's former parent. Every node they
// move gets its parent link repaired.

// colorFlip blackens p and its red aunt and reddens the lead. The shape
// is unchanged; the red violation moves up to lead.
func colorFlip[K, V any](p, lead, aunt *Node[K, V]) *Node[K, V] {
	p.color = Black
	lead.color = Red
	aunt.color = Black
	return lead
}

// diamondLeft promotes y, the right child of lead's left child x.
//
//	   z          y
//	x    =>    x     z
//	   y        a   b
//	 a   b
func diamondLeft[K, V any](lead *Node[K, V]) *Node[K, V] {
	m := lead.parent
	z := lead
	x := z.left
	y := x.right
	a, b := y.left, y.right

	x.color = Black
	y.left = x
	x.parent = y
	y.right = z
	z.parent = y
	x.right = a
	adopt(a, x)
	z.left = b
	adopt(b, z)

	relink(m, lead, y)
	return y
}

// diamondRight promotes y, the left child of lead's right child z.
//
//	x             y
//	   z  =>   x     z
//	 y          a   b
//	a b
func diamondRight[K, V any](lead *Node[K, V]) *Node[K, V] {
	m := lead.parent
	x := lead
	z := x.right
	y := z.left
	a, b := y.left, y.right

	z.color = Black
	y.left = x
	x.parent = y
	y.right = z
	z.parent = y
	x.right = a
	adopt(a, x)
	z.left = b
	adopt(b, z)

	relink(m, lead, y)
	return y
}

// echelonLeft promotes y, the left child of lead, whose own left child
// is the red grandchild.
//
//	    z
//	  y    =>    y
//	n  a       n   z
//	              a
func echelonLeft[K, V any](lead *Node[K, V]) *Node[K, V] {
	m := lead.parent
	z := lead
	y := z.left
	a := y.right

	y.left.color = Black
	y.right = z
	z.parent = y
	z.left = a
	adopt(a, z)

	relink(m, lead, y)
	return y
}

// echelonRight mirrors echelonLeft.
func echelonRight[K, V any](lead *Node[K, V]) *Node[K, V] {
	m := lead.parent
	x := lead
	y := x.right
	a := y.left

	y.right.color = Black
	y.left = x
	x.parent = y
	x.right = a
	adopt(a, x)

	relink(m, lead, y)
	return y
}

// relink puts y in the slot of m that held lead.
func relink[K, V any](m, lead, y *Node[K, V]) {
	if m.right == lead {
		m.right = y
	} else {
		m.left = y
	}
	y.parent = m
}
