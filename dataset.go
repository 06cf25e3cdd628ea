package kdtree

import (
	"fmt"
	"math/bits"
)

// dataset is the borrowed data matrix together with its indirection array
// and the weight vector. Logical row i is physical row index[i].
type dataset struct {
	data  []float32 // ndata*ndim, row-major, never written
	index buffer[int]
	ndata int
	ndim  int

	sigma   []float32 // borrowed, may be nil
	nz      []int     // nonzero sigma dimensions, ascending
	nzValid bool
}

// row returns physical row i.
func (d *dataset) row(i int) []float32 {
	return d.data[i*d.ndim : (i+1)*d.ndim]
}

// vector returns logical row i through the indirection array.
func (d *dataset) vector(i int) []float32 {
	return d.row(d.index.s[i])
}

// element returns column j of logical row i.
func (d *dataset) element(i, j int) float32 {
	return d.data[d.index.s[i]*d.ndim+j]
}

// metric returns the distance configuration for useSigma.
func (d *dataset) metric(useSigma bool) (metric, error) {
	if !useSigma {
		return metric{ndim: d.ndim}, nil
	}
	if d.sigma == nil {
		return metric{}, ErrNoSigma
	}
	if !d.nzValid {
		return metric{}, ErrSigmaStale
	}
	return metric{ndim: d.ndim, sigma: d.sigma, nz: d.nz}, nil
}

// ceilLog2 returns ceil(log2(n)) for n >= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// SetData installs the m×n row-major matrix data and the indirection array
// index and returns the number of nodes the tree will build.
//
// If index is nil the tree allocates it; otherwise it must hold at least m
// entries and is overwritten with the identity permutation. The caller must
// keep data (and a supplied index) alive and unmodified until Close.
func (t *Tree) SetData(data []float32, index []int, m, n int) (int, error) {
	if t.state != stateUninitialized && t.state != stateDataSet {
		return 0, stateError("SetData", t.state)
	}
	if m < 0 || n < 1 {
		return 0, fmt.Errorf("kdtree: SetData needs m >= 0 and n >= 1, got m=%d n=%d", m, n)
	}
	if len(data) < m*n {
		return 0, fmt.Errorf("%w: data has %d values, need %d", ErrBufferSize, len(data), m*n)
	}
	if index != nil {
		if len(index) < m {
			return 0, fmt.Errorf("%w: index has %d entries, need %d", ErrBufferSize, len(index), m)
		}
		index = index[:m]
	}

	t.ds.index.release()
	t.ds.index.use(index, m)
	for i := range t.ds.index.s {
		t.ds.index.s[i] = i
	}
	t.ds.data = data[:m*n]
	t.ds.ndata = m
	if t.ds.ndim != n {
		t.ds.sigma = nil
		t.ds.nz = nil
		t.ds.nzValid = false
	}
	t.ds.ndim = n

	t.computeHeight()
	t.state = stateDataSet
	return t.nnodes, nil
}

// computeHeight applies the height policy to the current data size.
func (t *Tree) computeHeight() {
	t.maxheight = max(1, ceilLog2(t.ds.ndata))
	switch {
	case t.givenheight > 0:
		t.height = min(t.givenheight, t.maxheight)
	case t.givenheight < 0:
		t.maxheight = max(1, t.maxheight+t.givenheight)
		t.height = t.maxheight
	default:
		t.height = t.maxheight
	}
	t.nnodes = 1 << t.height
	t.ninner = t.nnodes / 2
}

// SetSigma installs a borrowed weight vector of length NumFeatures. A
// dimension's weight is 1/sigma; sigma == 0 removes the dimension from
// every weighted distance. SetSigma does not scan the vector: call
// RefreshNonzeroWeights afterwards, and again whenever sigma's contents
// change.
func (t *Tree) SetSigma(sigma []float32) error {
	if t.state == stateUninitialized || t.state == stateClosed {
		return stateError("SetSigma", t.state)
	}
	if len(sigma) != t.ds.ndim {
		return &DimensionMismatchError{Expected: t.ds.ndim, Actual: len(sigma)}
	}
	t.ds.sigma = sigma
	t.ds.nzValid = false
	return nil
}

// RefreshNonzeroWeights rescans the sigma vector and rebuilds the list of
// dimensions taken into account by weighted build and search. It returns the
// number of nonzero weights, or 0 if no sigma is set.
func (t *Tree) RefreshNonzeroWeights() int {
	if t.ds.sigma == nil {
		return 0
	}
	t.ds.nz = t.ds.nz[:0]
	for j, s := range t.ds.sigma {
		if s != 0 {
			t.ds.nz = append(t.ds.nz, j)
		}
	}
	t.ds.nzValid = true
	return len(t.ds.nz)
}

// NonzeroWeights returns the cached nonzero sigma dimensions. The slice is
// owned by the tree.
func (t *Tree) NonzeroWeights() []int { return t.ds.nz }

// NumPoints returns the number of data vectors.
func (t *Tree) NumPoints() int { return t.ds.ndata }

// NumFeatures returns the dimension of the data vectors.
func (t *Tree) NumFeatures() int { return t.ds.ndim }

// Index returns the indirection array mapping tree order to original rows.
func (t *Tree) Index() []int { return t.ds.index.s }

// Element returns column j of the i'th vector in tree order.
func (t *Tree) Element(i, j int) float32 { return t.ds.element(i, j) }

// Vector returns the i'th vector in tree order. The slice aliases the data
// matrix.
func (t *Tree) Vector(i int) []float32 { return t.ds.vector(i) }

// Row returns row i of the data matrix in original order.
func (t *Tree) Row(i int) []float32 { return t.ds.row(i) }
