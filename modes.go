package kdtree

import "fmt"

// Decomposition selects how each inner node orients its separating plane.
type Decomposition string

const (
	// DecompositionOrthogonal splits orthogonal to the coordinate axis of
	// largest spread. Fastest to build.
	DecompositionOrthogonal Decomposition = "orthogonal"
	// DecompositionHyperplane splits by a plane through the pivot that is
	// generally not aligned to any axis. Provided for comparison and testing.
	DecompositionHyperplane Decomposition = "hyperplane"
	// DecompositionPCA splits orthogonal to the principal component of the
	// node's points. Needs Config.Eigen.
	DecompositionPCA Decomposition = "pca"
)

// Pivot selects how the point a node is split at is computed.
type Pivot string

const (
	// PivotMean splits at the arithmetic mean of the node's points.
	PivotMean Pivot = "mean"
	// PivotMiddle splits at the middle of the node's bounding box.
	PivotMiddle Pivot = "middle"
	// PivotMedian splits at the true median, so both children differ in
	// size by at most one.
	PivotMedian Pivot = "median"
)

func (d Decomposition) String() string { return string(d) }

func (p Pivot) String() string { return string(p) }

func (d Decomposition) valid() bool {
	switch d {
	case DecompositionOrthogonal, DecompositionHyperplane, DecompositionPCA:
		return true
	}
	return false
}

func (p Pivot) valid() bool {
	switch p {
	case PivotMean, PivotMiddle, PivotMedian:
		return true
	}
	return false
}

// usesPlanes reports whether the mode needs the hyperplane table.
func (d Decomposition) usesPlanes() bool {
	return d == DecompositionHyperplane || d == DecompositionPCA
}

// ParseDecomposition converts a mode name into a Decomposition.
func ParseDecomposition(s string) (Decomposition, error) {
	d := Decomposition(s)
	if !d.valid() {
		return "", fmt.Errorf("%w: unknown decomposition %q", ErrInvalidConfig, s)
	}
	return d, nil
}

// ParsePivot converts a mode name into a Pivot.
func ParsePivot(s string) (Pivot, error) {
	p := Pivot(s)
	if !p.valid() {
		return "", fmt.Errorf("%w: unknown pivot %q", ErrInvalidConfig, s)
	}
	return p, nil
}
