package kdtree

import (
	"math"
	"time"

	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Build partitions the data into the node tables. With useSigma the split
// geometry is chosen in the weighted space of the nonzero-sigma dimensions,
// which must have been refreshed with RefreshNonzeroWeights.
//
// Build never fails on degenerate data: duplicate points or fewer points
// than leaf slots produce empty or single-point leaves.
func (t *Tree) Build(useSigma bool) error {
	if t.state != stateNodesInitialized {
		return stateError("Build", t.state)
	}
	m, err := t.ds.metric(useSigma)
	if err != nil {
		return err
	}

	start := time.Now()
	b := newBuilder(t, m)
	clear(t.nodes.s)
	b.build(1, 0, t.ds.ndata)

	t.builtWithSigma = useSigma
	t.state = stateBuilt
	t.logBuild(useSigma, b.fallbacks, time.Since(start))
	return nil
}

// builder holds the scratch space of one Build call.
type builder struct {
	t    *Tree
	m    metric
	ndim int
	act  []int // active dimensions, ascending

	keys     []float32 // per position: coordinate or projection being split on
	lo, hi   []float32 // bounding box of the current range
	centroid []float32
	normal   []float32 // a_j in data coordinates
	unit     []float64 // unit normal over act, in metric space
	cov      []float64 // len(act)^2

	fallbacks int
}

func newBuilder(t *Tree, m metric) *builder {
	n := t.ds.ndim
	b := &builder{
		t:        t,
		m:        m,
		ndim:     n,
		keys:     make([]float32, t.ds.ndata),
		lo:       make([]float32, n),
		hi:       make([]float32, n),
		centroid: make([]float32, n),
	}
	m.dims(func(j int) { b.act = append(b.act, j) })
	if t.dmode.usesPlanes() {
		b.normal = make([]float32, n)
		b.unit = make([]float64, len(b.act))
		if t.dmode == DecompositionPCA {
			b.cov = make([]float64, len(b.act)*len(b.act))
		}
	}
	return b
}

// build fills node id with the range [start, end) and recurses into its
// children until a leaf slot or an unsplittable range is reached.
func (b *builder) build(id, start, end int) {
	t := b.t
	t.nodes.s[id] = Node{Start: start, End: end, Size: end - start, SplitDim: noSplit}
	if id >= t.ninner {
		return
	}
	mid, ok := -1, false
	if end-start > 1 && len(b.act) > 0 {
		mid, ok = b.split(id, start, end)
	}
	if !ok {
		b.clearBelow(id, end)
		return
	}
	b.build(2*id, start, mid)
	b.build(2*id+1, mid, end)
}

// clearBelow gives every descendant of an unsplit node an empty range at pos.
func (b *builder) clearBelow(id, pos int) {
	nnodes := b.t.nnodes
	for first, width := 2*id, 2; first < nnodes; first, width = 2*first, 2*width {
		for c := first; c < first+width && c < nnodes; c++ {
			b.t.nodes.s[c] = Node{Start: pos, End: pos, SplitDim: noSplit}
		}
	}
}

// split chooses the split geometry of node id, reorders the indirection
// range and returns the boundary between the children.
func (b *builder) split(id, start, end int) (int, bool) {
	b.bounds(start, end)
	if b.t.dmode.usesPlanes() {
		if b.planeNormal(start, end) {
			return b.splitPlane(id, start, end), true
		}
		b.fallbacks++
	}
	return b.splitOrthogonal(id, start, end), true
}

// bounds computes the bounding box and the centroid of [start, end).
func (b *builder) bounds(start, end int) {
	ds := &b.t.ds
	copy(b.lo, ds.vector(start))
	copy(b.hi, b.lo)
	for j := range b.centroid {
		b.centroid[j] = 0
	}
	for i := start; i < end; i++ {
		v := ds.vector(i)
		for j, x := range v {
			if x < b.lo[j] {
				b.lo[j] = x
			}
			if x > b.hi[j] {
				b.hi[j] = x
			}
		}
		vek32.Add_Inplace(b.centroid, v)
	}
	vek32.MulNumber_Inplace(b.centroid, 1/float32(end-start))
}

// splitOrthogonal splits along the active dimension of largest weighted
// spread at the pivot's coordinate.
func (b *builder) splitOrthogonal(id, start, end int) int {
	t := b.t
	s, best := b.act[0], float32(-1)
	for _, j := range b.act {
		if spread := (b.hi[j] - b.lo[j]) * b.m.scale(j); spread > best {
			s, best = j, spread
		}
	}
	for i := start; i < end; i++ {
		b.keys[i] = t.ds.element(i, s)
	}

	pivot := t.Mean(id)
	b.pivot(pivot)
	var mid int
	if t.mmode == PivotMedian {
		k := start + (end-start)/2
		selectKth(t.ds.index.s, b.keys, start, end, k)
		pivot[s] = b.keys[k]
		mid = k
	} else {
		mid = partitionLE(t.ds.index.s, b.keys, start, end, pivot[s])
	}

	node := &t.nodes.s[id]
	node.SplitDim = s
	node.SplitNorm = b.hi[s] - b.lo[s]
	return mid
}

// pivot writes the mean or middle pivot of the current range into dst. The
// median pivot starts from the mean and is fixed up by the caller.
func (b *builder) pivot(dst []float32) {
	b.t.obs.PivotComputed()
	if b.t.mmode == PivotMiddle {
		for j := range dst {
			dst[j] = (b.lo[j] + b.hi[j]) / 2
		}
		return
	}
	copy(dst, b.centroid)
}

// planeNormal computes the split direction for the plane decompositions in
// b.normal. It reports false when the node's geometry is degenerate.
func (b *builder) planeNormal(start, end int) bool {
	switch b.t.dmode {
	case DecompositionHyperplane:
		// Diagonal of the bounding box in the metric space.
		for k, j := range b.act {
			b.unit[k] = float64((b.hi[j] - b.lo[j]) * b.m.scale(j))
		}
	case DecompositionPCA:
		if !b.principalAxis(start, end) {
			return false
		}
	}

	var norm float64
	for _, u := range b.unit {
		norm += u * u
	}
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return false
	}
	norm = 1 / math.Sqrt(norm)
	for j := range b.normal {
		b.normal[j] = 0
	}
	for k, j := range b.act {
		b.normal[j] = float32(b.unit[k]*norm) * b.m.scale(j)
	}
	return true
}

// principalAxis fills b.unit with the dominant eigenvector of the weighted
// covariance of [start, end).
func (b *builder) principalAxis(start, end int) bool {
	n := end - start
	na := len(b.act)
	if n < 2 {
		return false
	}
	for i := range b.cov {
		b.cov[i] = 0
	}
	ds := &b.t.ds
	for i := start; i < end; i++ {
		v := ds.vector(i)
		for p, jp := range b.act {
			dp := float64((v[jp] - b.centroid[jp]) * b.m.scale(jp))
			if dp == 0 {
				continue
			}
			row := b.cov[p*na:]
			for q := p; q < na; q++ {
				jq := b.act[q]
				row[q] += dp * float64((v[jq]-b.centroid[jq])*b.m.scale(jq))
			}
		}
	}
	var trace float64
	for p := 0; p < na; p++ {
		for q := p; q < na; q++ {
			c := b.cov[p*na+q] / float64(n-1)
			b.cov[p*na+q] = c
			b.cov[q*na+p] = c
		}
		trace += b.cov[p*na+p]
	}
	if trace <= 0 {
		return false
	}
	lambda, ok := b.t.eigen.DominantEigenvector(b.cov, na, b.unit)
	return ok && lambda > degenerateSpread*trace
}

// degenerateSpread is the share of the total variance below which the
// principal axis is considered numerically meaningless.
const degenerateSpread = 1e-9

// splitPlane splits [start, end) by the plane with normal b.normal through
// the node's pivot.
func (b *builder) splitPlane(id, start, end int) int {
	t := b.t
	n := b.ndim
	p := t.Plane(id)
	copy(p, b.normal)
	p[n] = 0
	t.obs.PlaneComputed()

	lo, hi := math32.Inf(1), math32.Inf(-1)
	for i := start; i < end; i++ {
		k := planeEval(p, t.ds.vector(i), 1)
		b.keys[i] = k
		lo = min(lo, k)
		hi = max(hi, k)
	}

	pivot := t.Mean(id)
	b.pivot(pivot)
	var c float32
	var mid int
	if t.mmode == PivotMedian {
		k := start + (end-start)/2
		selectKth(t.ds.index.s, b.keys, start, end, k)
		c = b.keys[k]
		mid = k
		// Move the centroid along the normal onto the median plane.
		var nn float32
		for _, a := range b.normal {
			nn += a * a
		}
		if nn > 0 {
			shift := (c - planeEval(p, pivot, 1)) / nn
			for j, a := range b.normal {
				pivot[j] += shift * a
			}
		}
	} else {
		c = planeEval(p, pivot, 1)
		mid = partitionLE(t.ds.index.s, b.keys, start, end, c)
	}
	p[n] = -c

	node := &t.nodes.s[id]
	node.SplitDim = splitPlane
	node.SplitNorm = hi - lo
	return mid
}

// partitionLE reorders positions [lo, hi) of idx (and the parallel keys)
// so that entries with key <= v come first, and returns the first position
// of the remainder.
func partitionLE(idx []int, keys []float32, lo, hi int, v float32) int {
	i, j := lo, hi-1
	for {
		for i <= j && keys[i] <= v {
			i++
		}
		for i <= j && !(keys[j] <= v) {
			j--
		}
		if i >= j {
			return i
		}
		idx[i], idx[j] = idx[j], idx[i]
		keys[i], keys[j] = keys[j], keys[i]
		i++
		j--
	}
}

// selectKth reorders positions [lo, hi) of idx (and the parallel keys) so
// that keys[k] holds the value it would have in sorted order, every key
// before it is <= keys[k] and every key after it is >= keys[k].
func selectKth(idx []int, keys []float32, lo, hi, k int) {
	swap := func(a, c int) {
		idx[a], idx[c] = idx[c], idx[a]
		keys[a], keys[c] = keys[c], keys[a]
	}
	for hi-lo > 1 {
		p := keys[lo+(hi-lo)/2]
		// Three-way partition: [lo,lt) < p, [lt,gt) == p, [gt,hi) > p.
		lt, i, gt := lo, lo, hi
		for i < gt {
			switch {
			case keys[i] < p:
				swap(lt, i)
				lt++
				i++
			case keys[i] > p:
				gt--
				swap(i, gt)
			default:
				i++
			}
		}
		switch {
		case k < lt:
			hi = lt
		case k >= gt:
			lo = gt
		default:
			return
		}
	}
}
