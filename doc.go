// Package kdtree implements a k-dimensional binary search tree for
// weighted nearest-neighbour queries over a fixed matrix of feature vectors.
//
// The tree borrows a flat row-major []float32 matrix and reorders only an
// indirection array, never the data itself. Dimensions can be weighted while
// building and while searching: the weight of dimension j is 1/sigma[j], and
// sigma[j] == 0 removes the dimension from every distance. All distances are
// squared.
//
// Basic usage:
//
//	tree, err := kdtree.NewKDTree(data, n, dims, kdtree.DefaultConfig())
//	idx, dist, err := tree.SearchKNN(query, 1, 5, 0, false)
//	// idx[i] is a row of data, dist[i] its squared distance to query
//	defer tree.Close()
//
// The step-by-step sequence gives control over buffers and weights:
//
//	tree, _ := kdtree.New(cfg)
//	nnodes, _ := tree.SetData(data, nil, n, dims)
//	_ = tree.InitNodes(nil, nil, nil) // or caller-allocated tables of the documented sizes
//	_ = tree.SetSigma(sigma)
//	tree.RefreshNonzeroWeights()      // again after every change to sigma
//	_ = tree.Build(true)
//
// # Decomposition and pivot
//
// Each inner node splits its points in two by a plane through a pivot. The
// plane is orthogonal to the axis of largest spread (DecompositionOrthogonal),
// along the diagonal of the node's bounding box (DecompositionHyperplane), or
// orthogonal to the principal component of the node's points
// (DecompositionPCA, computed by a pluggable EigenSolver). The pivot is the
// mean (PivotMean), the middle of the bounding box (PivotMiddle) or the
// median (PivotMedian, which keeps the tree balanced).
//
// # Concurrency
//
// Build and Close need exclusive access. A built tree may be searched from
// many goroutines if each uses its own Searcher (see Tree.NewSearcher and
// Tree.QueryKNN).
package kdtree
