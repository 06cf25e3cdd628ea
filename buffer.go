package kdtree

// ownership records whether a buffer referenced by the tree was supplied by
// the caller or allocated by the tree itself.
type ownership uint8

const (
	unset ownership = iota
	borrowed
	owned
)

func (o ownership) String() string {
	switch o {
	case borrowed:
		return "borrowed"
	case owned:
		return "owned"
	default:
		return "unset"
	}
}

// buffer is a slice tagged with its ownership. release drops an owned slice
// exactly once and leaves borrowed slices to the caller.
type buffer[T any] struct {
	s   []T
	own ownership
}

// use installs s if it is non-nil (borrowed) or allocates n elements (owned).
// A non-nil s must have exactly n elements.
func (b *buffer[T]) use(s []T, n int) bool {
	if s != nil {
		if len(s) != n {
			return false
		}
		b.s, b.own = s, borrowed
		return true
	}
	b.s, b.own = make([]T, n), owned
	return true
}

// release reports whether an owned allocation was freed.
func (b *buffer[T]) release() bool {
	freed := b.own == owned
	b.s, b.own = nil, unset
	return freed
}
