package kdtree

// BruteForceKNN scans all n rows of the flat row-major data and returns the
// k nearest neighbours of the strided query, with the same distance, radius
// and tie-breaking rules as the tree search. With sigma non-nil, distances
// are weighted over its nonzero dimensions. Results are sorted by distance.
func BruteForceKNN(data []float32, n, dims int, query []float32, stride, k int, radius float32, sigma []float32) ([]int, []float32) {
	if k <= 0 {
		return nil, nil
	}
	m := metric{ndim: dims}
	if sigma != nil {
		m.sigma = sigma
		m.nz = NonzeroDims(sigma)
	}

	var h candidates
	h.reset(k)
	for i := 0; i < n; i++ {
		d := m.dist(query, stride, data[i*dims:(i+1)*dims])
		if radius > 0 && d > radius {
			continue
		}
		h.offer(candidate{index: i, dist: d})
	}
	idx := make([]int, len(h.items))
	dist := make([]float32, len(h.items))
	h.drain(idx, dist, true)
	return idx, dist
}

// BruteForce answers queries by linear scan over a borrowed matrix. It
// serves as the reference the tree is checked against.
type BruteForce struct {
	data  []float32
	n     int
	dims  int
	sigma []float32
}

// NewBruteForce returns a linear scanner over n rows of dims values. sigma
// may be nil; it is read on every weighted query.
func NewBruteForce(data []float32, n, dims int, sigma []float32) *BruteForce {
	return &BruteForce{data: data, n: n, dims: dims, sigma: sigma}
}

func (b *BruteForce) NumPoints() int   { return b.n }
func (b *BruteForce) NumFeatures() int { return b.dims }

func (b *BruteForce) SearchKNN(query []float32, stride, k int, radius float32, useSigma bool) ([]int, []float32, error) {
	if k <= 0 {
		return nil, nil, ErrInvalidK
	}
	if need := (b.dims-1)*stride + 1; stride < 1 || len(query) < need {
		return nil, nil, &DimensionMismatchError{Expected: need, Actual: len(query)}
	}
	var sigma []float32
	if useSigma {
		if b.sigma == nil {
			return nil, nil, ErrNoSigma
		}
		sigma = b.sigma
	}
	idx, dist := BruteForceKNN(b.data, b.n, b.dims, query, stride, k, radius, sigma)
	return idx, dist, nil
}
