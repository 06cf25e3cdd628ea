package kdtree

// NearestNeighbors is the query interface shared by Tree and BruteForce.
type NearestNeighbors interface {
	// SearchKNN returns the indices and squared distances of the (at most
	// k) nearest rows to the strided query.
	SearchKNN(query []float32, stride, k int, radius float32, useSigma bool) (indices []int, distances []float32, err error)

	// NumPoints returns the number of rows searched.
	NumPoints() int

	// NumFeatures returns the dimensionality of each row.
	NumFeatures() int
}

var (
	_ NearestNeighbors = (*Tree)(nil)
	_ NearestNeighbors = (*BruteForce)(nil)
)
