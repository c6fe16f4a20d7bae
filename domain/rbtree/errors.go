package rbtree

import "errors"

var (
	// ErrOutOfBounds is returned when a key is not strictly between the
	// tree's low and high bounds. No mutation takes place.
	ErrOutOfBounds = errors.New("rbtree: key out of bounds")

	// ErrCorrupt is returned when the insertion fixup finds the tree in a
	// shape it can never produce itself.
	ErrCorrupt = errors.New("rbtree: structural invariant violated")
)
