package kdtree

// StackElem is a pending node of a search together with the lower bound on
// the squared distance from the query to any point below it.
type StackElem struct {
	Node int
	Dist float32
}

// Stack is the growable LIFO buffer driving the iterative search. A Stack
// must not be shared between concurrent searches.
type Stack struct {
	buf []StackElem
}

// NewStack returns an empty stack with room for size elements.
func NewStack(size int) *Stack {
	return &Stack{buf: make([]StackElem, 0, max(size, 1))}
}

// Grow makes room for at least alloc elements without reallocation.
func (s *Stack) Grow(alloc int) {
	if alloc <= cap(s.buf) {
		return
	}
	buf := make([]StackElem, len(s.buf), alloc)
	copy(buf, s.buf)
	s.buf = buf
}

// Push adds a node with its bound distance.
func (s *Stack) Push(node int, dist float32) {
	if len(s.buf) == cap(s.buf) {
		s.Grow(2 * cap(s.buf))
	}
	s.buf = append(s.buf, StackElem{Node: node, Dist: dist})
}

// Pop removes and returns the most recently pushed element.
func (s *Stack) Pop() (StackElem, bool) {
	n := len(s.buf)
	if n == 0 {
		return StackElem{}, false
	}
	e := s.buf[n-1]
	s.buf = s.buf[:n-1]
	return e, true
}

// Len returns the number of elements on the stack.
func (s *Stack) Len() int { return len(s.buf) }

// Cap returns the number of elements the stack holds without growing.
func (s *Stack) Cap() int { return cap(s.buf) }

// Reset empties the stack and keeps its buffer.
func (s *Stack) Reset() { s.buf = s.buf[:0] }
