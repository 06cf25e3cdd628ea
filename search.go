package kdtree

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Searcher runs k-NN queries against a built tree with its own stack and
// candidate buffer. A Searcher must not be used by two goroutines at once,
// but any number of Searchers may query the same tree concurrently as long
// as the tree is not being built or closed.
type Searcher struct {
	t     *Tree
	stack *Stack
	cands candidates
}

// NewSearcher returns a Searcher for t.
func (t *Tree) NewSearcher() *Searcher {
	return &Searcher{t: t, stack: NewStack(2*t.height + 2)}
}

// SearchKNN returns the (at most k) nearest neighbours of query using the
// tree's own Searcher. It is not safe for concurrent use; see NewSearcher.
func (t *Tree) SearchKNN(query []float32, stride, k int, radius float32, useSigma bool) ([]int, []float32, error) {
	if t.searcher == nil {
		t.searcher = t.NewSearcher()
	}
	return t.searcher.SearchKNN(query, stride, k, radius, useSigma)
}

// SearchKNN returns the indices into the original data rows and the squared
// distances of the (at most k) nearest neighbours of query.
//
// The query holds NumFeatures elements, element j at query[j*stride]. If
// radius > 0, neighbours with a squared distance above radius are left out.
// With useSigma, distances are weighted by 1/sigma over the nonzero-sigma
// dimensions only. Results are in ascending order of distance when sorting
// is enabled.
func (s *Searcher) SearchKNN(query []float32, stride, k int, radius float32, useSigma bool) ([]int, []float32, error) {
	if k <= 0 {
		return nil, nil, ErrInvalidK
	}
	k = min(k, max(s.t.ds.ndata, 1))
	idx := make([]int, k)
	dist := make([]float32, k)
	n, err := s.SearchKNNInto(query, stride, k, radius, useSigma, idx, dist)
	if err != nil {
		return nil, nil, err
	}
	return idx[:n], dist[:n], nil
}

// SearchKNNInto is SearchKNN writing into caller-supplied buffers, which
// must hold at least k entries. It returns the number of neighbours found.
func (s *Searcher) SearchKNNInto(query []float32, stride, k int, radius float32, useSigma bool, idx []int, dist []float32) (int, error) {
	t := s.t
	if t.state != stateBuilt {
		return 0, stateError("SearchKNN", t.state)
	}
	if k <= 0 {
		return 0, ErrInvalidK
	}
	if len(idx) < k || len(dist) < k {
		return 0, fmt.Errorf("%w: output buffers hold %d and %d entries, need %d", ErrBufferSize, len(idx), len(dist), k)
	}
	if stride < 1 {
		return 0, fmt.Errorf("kdtree: stride must be >= 1, got %d", stride)
	}
	ndim := t.ds.ndim
	if need := (ndim-1)*stride + 1; len(query) < need {
		return 0, &DimensionMismatchError{Expected: need, Actual: len(query)}
	}
	m, err := t.ds.metric(useSigma)
	if err != nil {
		return 0, err
	}

	s.cands.reset(k)
	s.stack.Reset()
	s.stack.Push(1, 0)
	for {
		e, ok := s.stack.Pop()
		if !ok {
			break
		}
		if radius > 0 && e.Dist > radius {
			continue
		}
		if s.cands.full() && e.Dist > s.cands.worst() {
			continue
		}
		if t.IsLeaf(e.Node) {
			s.scanLeaf(e.Node, query, stride, radius, m)
			continue
		}

		lb, rb := t.childBounds(e.Node, query, stride, m, e.Dist)
		left, right := 2*e.Node, 2*e.Node+1
		// The nearer child goes on top so it is visited first.
		if lb <= rb {
			s.stack.Push(right, rb)
			s.stack.Push(left, lb)
		} else {
			s.stack.Push(left, lb)
			s.stack.Push(right, rb)
		}
		t.obs.StackDepth(s.stack.Len())
	}

	n := s.cands.drain(idx, dist, t.sort)
	t.obs.SearchDone(n)
	return n, nil
}

// scanLeaf offers every vector of a terminal node to the candidate buffer.
func (s *Searcher) scanLeaf(id int, query []float32, stride int, radius float32, m metric) {
	t := s.t
	node := t.nodes.s[id]
	for i := node.Start; i < node.End; i++ {
		row := t.ds.index.s[i]
		d := m.dist(query, stride, t.ds.row(row))
		t.obs.VectorDistance()
		if radius > 0 && d > radius {
			continue
		}
		s.cands.offer(candidate{index: row, dist: d})
	}
}

// childBounds returns lower bounds on the squared distance from x to any
// point in the left and right child of inner node id. Each bound is the
// squared distance from x to the node's split plane when x lies on the far
// side of it, combined with the parent's bound.
func (t *Tree) childBounds(id int, x []float32, stride int, m metric, parent float32) (left, right float32) {
	t.obs.NodeDistance()
	t.obs.NodeDistance()
	d := t.splitDistance(id, x, stride, m)
	left, right = parent, parent
	switch {
	case d > 0:
		left = max(parent, d*d)
	case d < 0:
		right = max(parent, d*d)
	}
	return left, right
}

// splitDistance returns the signed distance, in the metric's units, from x
// to the split plane of inner node id: positive on the right child's side.
// It returns 0 when the plane cannot separate points in this metric.
//
// Orthogonal distances are exact. Plane distances are evaluated in float32
// and are reduced by their worst-case rounding error, so that a point tied
// with the current k-th neighbour is never pruned.
func (t *Tree) splitDistance(id int, x []float32, stride int, m metric) float32 {
	node := t.nodes.s[id]
	if node.SplitDim >= 0 {
		s := node.SplitDim
		d := x[s*stride] - t.mean.s[id*t.ds.ndim+s]
		if m.weighted() {
			if m.sigma[s] == 0 {
				return 0
			}
			d /= m.sigma[s]
		}
		return d
	}
	p := t.Plane(id)
	norm := m.planeNorm(p)
	if norm == 0 {
		return 0
	}
	v := planeEval(p, x, stride)
	slack := planeSlack(p, x, stride)
	switch {
	case v > slack:
		v -= slack
	case v < -slack:
		v += slack
	default:
		return 0
	}
	// Shrink once more for the square root, the division and the rounding
	// of the point distances the bound is compared against.
	return v / math32.Sqrt(norm) * (1 - float32(len(p)+4)*float32Epsilon)
}
