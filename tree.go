package kdtree

import (
	"fmt"
	"io"
	"log/slog"
)

type state uint8

const (
	stateUninitialized state = iota
	stateDataSet
	stateNodesInitialized
	stateBuilt
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateDataSet:
		return "data-set"
	case stateNodesInitialized:
		return "nodes-initialized"
	case stateBuilt:
		return "built"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

const (
	// noSplit marks a node that was not split: a leaf slot or a node whose
	// range was too small (or too degenerate) to divide.
	noSplit = -1
	// splitPlane marks a node split by its row in the hyperplane table.
	splitPlane = -2
)

// Node is one node of the tree. It owns the contiguous range [Start, End)
// of the indirection array.
type Node struct {
	Start int // first position in the indirection array
	End   int // one past the last position
	Size  int // End - Start

	// SplitDim is the dimension an orthogonally split node was divided
	// along, -2 for a node divided by its hyperplane and -1 for a node
	// that was not divided.
	SplitDim int

	// SplitNorm is the extent of the node's points along the split
	// direction.
	SplitNorm float32
}

// Split reports whether the node was divided into two children.
func (n Node) Split() bool { return n.SplitDim != noSplit }

// Tree is a k-d tree over a borrowed data matrix.
//
// Nodes live in a flat array addressed by id: the root is node 1, the
// children of node i are 2i and 2i+1, and ids at or above NumInner are leaf
// slots. Node 0 is unused. Pivots are stored per inner node in a mean table
// of NumInner rows, and for the hyperplane and pca decompositions the split
// planes a·x + b = 0 in a plane table of NumInner rows of ndim+1 values.
//
// The call sequence is New, SetData, InitNodes, optionally SetSigma and
// RefreshNonzeroWeights, Build, then any number of searches, and finally
// Close. A Tree is not safe for concurrent use while building; after Build,
// concurrent searches must each use their own Searcher.
type Tree struct {
	dmode  Decomposition
	mmode  Pivot
	sort   bool
	eigen  EigenSolver
	obs    Observer
	logger *slog.Logger

	ds dataset

	height      int
	maxheight   int
	givenheight int
	nnodes      int
	ninner      int

	nodes buffer[Node]
	mean  buffer[float32]
	plane buffer[float32]

	builtWithSigma bool
	state          state
	searcher       *Searcher
}

// New returns an empty tree configured by cfg.
func New(cfg Config) (*Tree, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	t := &Tree{
		dmode:       cfg.Decomposition,
		mmode:       cfg.Pivot,
		sort:        cfg.Sort,
		eigen:       cfg.Eigen,
		obs:         cfg.Observer,
		logger:      cfg.Logger,
		givenheight: cfg.Height,
	}
	if t.obs == nil {
		t.obs = nopObserver{}
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t, nil
}

// NewKDTree builds a tree from flat row-major data with n points of
// dimensionality dims in one call. The tree allocates its own buffers but
// borrows data, which must stay unmodified until Close.
func NewKDTree(data []float32, n, dims int, cfg Config) (*Tree, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := t.SetData(data, nil, n, dims); err != nil {
		return nil, err
	}
	if err := t.InitNodes(nil, nil, nil); err != nil {
		return nil, err
	}
	if err := t.Build(false); err != nil {
		return nil, err
	}
	return t, nil
}

// SetDecomposition changes the decomposition mode. It must be called before
// InitNodes, since the hyperplane modes need the plane table.
func (t *Tree) SetDecomposition(d Decomposition) error {
	if t.state != stateUninitialized && t.state != stateDataSet {
		return stateError("SetDecomposition", t.state)
	}
	if !d.valid() {
		return fmt.Errorf("%w: unknown decomposition %q", ErrInvalidConfig, d)
	}
	if d == DecompositionPCA && t.eigen == nil {
		t.eigen = SymEigen{}
	}
	t.dmode = d
	return nil
}

// SetPivot changes the pivot mode. It must be called before Build.
func (t *Tree) SetPivot(p Pivot) error {
	if t.state == stateBuilt || t.state == stateClosed {
		return stateError("SetPivot", t.state)
	}
	if !p.valid() {
		return fmt.Errorf("%w: unknown pivot %q", ErrInvalidConfig, p)
	}
	t.mmode = p
	return nil
}

// SetHeight changes the height policy (see Config.Height). It must be called
// before SetData.
func (t *Tree) SetHeight(given int) error {
	if t.state != stateUninitialized {
		return stateError("SetHeight", t.state)
	}
	t.givenheight = given
	return nil
}

// SetSort enables or disables sorting of search results.
func (t *Tree) SetSort(sort bool) { t.sort = sort }

// InitNodes installs the node, mean and plane tables. A nil argument makes
// the tree allocate that table itself; a non-nil argument is borrowed and
// must have exactly the documented size:
//
//	nodes:  NumNodes()
//	means:  NumInner() * NumFeatures()
//	planes: NumInner() * (NumFeatures() + 1), ignored for DecompositionOrthogonal
func (t *Tree) InitNodes(nodes []Node, means, planes []float32) error {
	if t.state != stateDataSet {
		return stateError("InitNodes", t.state)
	}
	ndim := t.ds.ndim
	t.releaseTables()
	if !t.nodes.use(nodes, t.nnodes) {
		return fmt.Errorf("%w: nodes has %d entries, need %d", ErrBufferSize, len(nodes), t.nnodes)
	}
	if !t.mean.use(means, t.ninner*ndim) {
		t.releaseTables()
		return fmt.Errorf("%w: means has %d values, need %d", ErrBufferSize, len(means), t.ninner*ndim)
	}
	if t.dmode.usesPlanes() && !t.plane.use(planes, t.ninner*(ndim+1)) {
		t.releaseTables()
		return fmt.Errorf("%w: planes has %d values, need %d", ErrBufferSize, len(planes), t.ninner*(ndim+1))
	}
	t.state = stateNodesInitialized
	return nil
}

// releaseTables drops the node tables and returns how many owned ones were freed.
func (t *Tree) releaseTables() int {
	freed := 0
	for _, ok := range []bool{t.nodes.release(), t.mean.release(), t.plane.release()} {
		if ok {
			freed++
		}
	}
	return freed
}

// Close releases the buffers the tree allocated itself. Buffers supplied by
// the caller are left untouched. Close is idempotent; the tree cannot be
// used afterwards.
func (t *Tree) Close() error {
	if t.state == stateClosed {
		return nil
	}
	freed := t.releaseTables()
	if t.ds.index.release() {
		freed++
	}
	t.ds = dataset{}
	t.searcher = nil
	t.state = stateClosed
	t.logger.Debug("kdtree: closed", "owned_buffers_freed", freed)
	return nil
}

// Decomposition returns the decomposition mode.
func (t *Tree) Decomposition() Decomposition { return t.dmode }

// Pivot returns the pivot mode.
func (t *Tree) Pivot() Pivot { return t.mmode }

// Height returns the number of levels of the tree.
func (t *Tree) Height() int { return t.height }

// MaxHeight returns the largest height the data supports under the height policy.
func (t *Tree) MaxHeight() int { return t.maxheight }

// NumNodes returns the size of the node table, a power of two.
func (t *Tree) NumNodes() int { return t.nnodes }

// NumInner returns the id of the first leaf slot.
func (t *Tree) NumInner() int { return t.ninner }

// Built reports whether Build has completed.
func (t *Tree) Built() bool { return t.state == stateBuilt }

// Nodes returns the node table. Entry 0 is unused.
func (t *Tree) Nodes() []Node { return t.nodes.s }

// Mean returns the pivot of inner node id.
func (t *Tree) Mean(id int) []float32 {
	n := t.ds.ndim
	return t.mean.s[id*n : (id+1)*n]
}

// Plane returns the split plane (a_0..a_{n-1}, b) of inner node id, or nil
// for the orthogonal decomposition.
func (t *Tree) Plane(id int) []float32 {
	if t.plane.s == nil {
		return nil
	}
	n := t.ds.ndim + 1
	return t.plane.s[id*n : (id+1)*n]
}

// IsLeaf reports whether node id is terminal: a leaf slot or a node that
// was not split.
func (t *Tree) IsLeaf(id int) bool {
	return id >= t.ninner || !t.nodes.s[id].Split()
}

// Leaves returns the ids of the terminal nodes in depth-first, left-to-right
// order. Their ranges, concatenated, cover [0, NumPoints()) exactly once.
func (t *Tree) Leaves() []int {
	if t.state != stateBuilt {
		return nil
	}
	var leaves []int
	stack := NewStack(2 * t.height)
	stack.Push(1, 0)
	for {
		e, ok := stack.Pop()
		if !ok {
			return leaves
		}
		if t.IsLeaf(e.Node) {
			leaves = append(leaves, e.Node)
			continue
		}
		stack.Push(2*e.Node+1, 0)
		stack.Push(2*e.Node, 0)
	}
}
