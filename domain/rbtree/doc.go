// Package rbtree implements an ordered key/value container on a
// red-black tree bounded below (and optionally above) by caller supplied
// keys. It supports point lookup, insertion with rebalancing, removal by
// splicing, and greatest-lower-bound / least-upper-bound queries.
//
// Insertion descends from the root re-deriving parent links, then walks
// back up classifying each three-generation formation and applying one
// of five whole-subtree transforms: a color flip, or a diamond (double
// rotation) or echelon (single rotation) in either direction.
//
// Remove only splices: it does not restore the height or color
// invariants. HeightInvariant and ColorInvariant report whether a tree
// is still balanced after removals.
//
// A Tree is not safe for concurrent mutation. Callers sharing a tree
// across goroutines must serialize access themselves.
package rbtree
