package kdtree

// candidate is a data row found during search with its squared distance.
type candidate struct {
	index int
	dist  float32
}

// farther orders candidates by distance, breaking ties by row index, so the
// set of k nearest neighbours is unique.
func (c candidate) farther(o candidate) bool {
	if c.dist != o.dist {
		return c.dist > o.dist
	}
	return c.index > o.index
}

// candidates is a bounded max-heap keeping the k best candidates seen so
// far, with the worst one on top.
type candidates struct {
	k     int
	items []candidate
}

func (h *candidates) reset(k int) {
	h.k = k
	if cap(h.items) < k {
		h.items = make([]candidate, 0, k)
	}
	h.items = h.items[:0]
}

func (h *candidates) full() bool { return len(h.items) >= h.k }

// worst returns the distance of the k-th best candidate. Only valid when full.
func (h *candidates) worst() float32 { return h.items[0].dist }

// offer inserts c if the heap is not full or c is strictly closer than the
// current worst, which is then evicted.
func (h *candidates) offer(c candidate) {
	if len(h.items) < h.k {
		h.items = append(h.items, c)
		h.siftUp(len(h.items) - 1)
		return
	}
	if !h.items[0].farther(c) {
		return
	}
	h.items[0] = c
	h.siftDown(0, len(h.items))
}

func (h *candidates) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.items[i].farther(h.items[p]) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *candidates) siftDown(i, n int) {
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && h.items[r].farther(h.items[l]) {
			best = r
		}
		if !h.items[best].farther(h.items[i]) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}

// drain copies the candidates into idx and dist and empties the heap. With
// sorted the output is in ascending order of distance (heapsort in place);
// otherwise it is in heap order.
func (h *candidates) drain(idx []int, dist []float32, sorted bool) int {
	n := len(h.items)
	if sorted {
		for end := n - 1; end > 0; end-- {
			h.items[0], h.items[end] = h.items[end], h.items[0]
			h.siftDown(0, end)
		}
	}
	for i, c := range h.items {
		idx[i] = c.index
		dist[i] = c.dist
	}
	h.items = h.items[:0]
	return n
}
