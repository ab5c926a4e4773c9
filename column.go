package morph

// column is a growable array of lattice data. All per-position arrays are
// columns, so growing a position grows all of its columns alike.
type column[T any] []T

// ensure makes index i addressable, keeping existing values.
func (c *column[T]) ensure(i int) {
	if i < len(*c) {
		return
	}
	grown := make(column[T], oversize(i+1))
	copy(grown, *c)
	*c = grown
}

// oversize returns a capacity for at least n elements, leaving room for
// further growth.
func oversize(n int) int {
	return max(8, n+n>>1)
}
