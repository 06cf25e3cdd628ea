package kdtree

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// EigenSolver provides the dominant eigenvector of a symmetric matrix. It is
// the only linear algebra the tree needs, used by DecompositionPCA to orient
// split planes along the principal component of a node's points.
type EigenSolver interface {
	// DominantEigenvector writes into dst (length n) the unit eigenvector of
	// the largest eigenvalue of the n×n symmetric row-major matrix a and
	// returns that eigenvalue. ok is false if no decomposition was found.
	DominantEigenvector(a []float64, n int, dst []float64) (lambda float64, ok bool)
}

// SymEigen is an EigenSolver backed by gonum's symmetric eigendecomposition.
type SymEigen struct{}

var _ EigenSolver = SymEigen{}

func (SymEigen) DominantEigenvector(a []float64, n int, dst []float64) (float64, bool) {
	if n < 1 || len(a) < n*n || len(dst) < n {
		return 0, false
	}
	var es mat.EigenSym
	if !es.Factorize(mat.NewSymDense(n, a[:n*n]), true) {
		return 0, false
	}
	// Values are in ascending order.
	vals := es.Values(nil)
	top := len(vals) - 1

	var vecs mat.Dense
	es.VectorsTo(&vecs)
	v := mat.Col(dst[:n], top, &vecs)

	norm := floats.Norm(v, 2)
	if norm == 0 {
		return 0, false
	}
	floats.Scale(1/norm, v)
	return vals[top], true
}
