package kdtree

import (
	"errors"
	"fmt"
)

var (
	// ErrState is returned when an operation is called out of order, for
	// example searching before Build or building before SetData.
	ErrState = errors.New("kdtree: operation not allowed in current state")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("kdtree: k must be positive")

	// ErrBufferSize is returned when a caller-supplied buffer does not have
	// the documented length.
	ErrBufferSize = errors.New("kdtree: buffer has wrong size")

	// ErrNoSigma is returned when weighting is requested but no sigma
	// vector was installed with SetSigma.
	ErrNoSigma = errors.New("kdtree: no sigma vector set")

	// ErrSigmaStale is returned when weighting is requested after SetSigma
	// without a following RefreshNonzeroWeights.
	ErrSigmaStale = errors.New("kdtree: nonzero weight cache not refreshed")

	// ErrInvalidConfig wraps every Config validation failure.
	ErrInvalidConfig = errors.New("kdtree: invalid config")
)

// DimensionMismatchError indicates a query or sigma vector that does not
// match the dimensionality of the data.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("kdtree: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// stateError wraps ErrState with the operation and the state it was called in.
func stateError(op string, s state) error {
	return fmt.Errorf("%w: %s called in state %s", ErrState, op, s)
}
