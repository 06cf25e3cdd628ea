package kdtree

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// float32Epsilon is the spacing of float32 values just above 1.
const float32Epsilon = 0x1p-23

// All distances in this package are squared: the square root is never taken,
// and search radii and results are expressed in the same squared units.

// SquaredDistance returns the squared Euclidean distance between a and b.
// Assumes len(a) == len(b).
func SquaredDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// SquaredDistanceStride returns the squared Euclidean distance between the
// vector embedded in x with the given stride (element j at x[j*stride]) and
// the contiguous vector y.
func SquaredDistanceStride(x []float32, stride int, y []float32) float32 {
	if stride == 1 {
		return SquaredDistance(x[:len(y)], y)
	}
	var sum float32
	for j := range y {
		d := x[j*stride] - y[j]
		sum += d * d
	}
	return sum
}

// WeightedSquaredDistance returns sum(((x_j - y_j) / sigma_j)^2) over the
// dimensions listed in nz. Dimensions with sigma_j == 0 must not appear in
// nz; they are ignored rather than given infinite weight.
func WeightedSquaredDistance(x []float32, stride int, y, sigma []float32, nz []int) float32 {
	var sum float32
	for _, j := range nz {
		d := (x[j*stride] - y[j]) / sigma[j]
		sum += d * d
	}
	return sum
}

// NonzeroDims returns the sorted indices of the nonzero entries of sigma.
func NonzeroDims(sigma []float32) []int {
	nz := make([]int, 0, len(sigma))
	for j, s := range sigma {
		if s != 0 {
			nz = append(nz, j)
		}
	}
	return nz
}

// metric is the distance configuration of one build or search: either all
// dimensions unit-weighted, or only the nonzero-sigma dimensions weighted by
// 1/sigma.
type metric struct {
	ndim  int
	sigma []float32 // nil when unweighted
	nz    []int
}

func (m metric) weighted() bool { return m.sigma != nil }

// dist returns the squared distance between the strided query x and y.
func (m metric) dist(x []float32, stride int, y []float32) float32 {
	if m.sigma != nil {
		return WeightedSquaredDistance(x, stride, y, m.sigma, m.nz)
	}
	return SquaredDistanceStride(x, stride, y)
}

// scale returns the factor that maps coordinate j into the metric space:
// 1/sigma_j when weighted, 1 otherwise. Inactive dimensions return 0.
func (m metric) scale(j int) float32 {
	if m.sigma == nil {
		return 1
	}
	if m.sigma[j] == 0 {
		return 0
	}
	return 1 / m.sigma[j]
}

// dims calls fn for every active dimension in ascending order.
func (m metric) dims(fn func(j int)) {
	if m.sigma != nil {
		for _, j := range m.nz {
			fn(j)
		}
		return
	}
	for j := 0; j < m.ndim; j++ {
		fn(j)
	}
}

// planeEval returns a·x + b for the plane row p = (a_0..a_{n-1}, b) and the
// strided vector x.
func planeEval(p []float32, x []float32, stride int) float32 {
	n := len(p) - 1
	if stride == 1 {
		return vek32.Dot(p[:n], x[:n]) + p[n]
	}
	var s float32
	for j := 0; j < n; j++ {
		s += p[j] * x[j*stride]
	}
	return s + p[n]
}

// planeSlack returns an upper bound on the rounding error of planeEval(p, x,
// stride), proportional to the magnitude of the terms summed.
func planeSlack(p []float32, x []float32, stride int) float32 {
	n := len(p) - 1
	mag := math32.Abs(p[n])
	for j := 0; j < n; j++ {
		mag += math32.Abs(p[j] * x[j*stride])
	}
	return mag * float32(8*(n+2)) * float32Epsilon
}

// planeNorm returns the squared length of the plane normal measured in the
// metric's space, sum(a_j^2 * sigma_j^2). It returns 0 when the normal has a
// component along an ignored dimension, in which case points on either side
// of the plane can be arbitrarily close in the metric.
func (m metric) planeNorm(p []float32) float32 {
	n := len(p) - 1
	var s float32
	for j := 0; j < n; j++ {
		a := p[j]
		if a == 0 {
			continue
		}
		if m.sigma != nil {
			if m.sigma[j] == 0 {
				return 0
			}
			a *= m.sigma[j]
		}
		s += a * a
	}
	return s
}
