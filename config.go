package kdtree

import (
	"fmt"
	"log/slog"
)

// Config controls how a Tree is built and how search results are returned.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Decomposition chooses the orientation of each node's split plane.
	// Default: DecompositionOrthogonal.
	Decomposition Decomposition

	// Pivot chooses the point each node is split at.
	// Default: PivotMean.
	Pivot Pivot

	// Height overrides the tree height. A positive value sets the height
	// directly (clamped to the maximum useful height for the data); a
	// negative value lowers the maximum height by its magnitude. 0 derives
	// the height from the number of points. Default: 0.
	Height int

	// Sort orders search results by non-decreasing squared distance.
	// Default: true.
	Sort bool

	// Eigen computes the dominant eigenvector of a node's covariance
	// matrix. Only used with DecompositionPCA. Default: SymEigen{}.
	Eigen EigenSolver

	// Observer receives profiling callbacks during build and search.
	// nil disables profiling. Default: nil.
	Observer Observer

	// Logger receives debug messages about build and search. nil discards
	// everything. Default: nil.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with orthogonal decomposition, mean pivot
// and sorted results.
func DefaultConfig() Config {
	return Config{
		Decomposition: DecompositionOrthogonal,
		Pivot:         PivotMean,
		Sort:          true,
		Eigen:         SymEigen{},
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if !cfg.Decomposition.valid() {
		return fmt.Errorf("%w: Decomposition must be %q, %q or %q, got %q", ErrInvalidConfig,
			DecompositionOrthogonal, DecompositionHyperplane, DecompositionPCA, cfg.Decomposition)
	}
	if !cfg.Pivot.valid() {
		return fmt.Errorf("%w: Pivot must be %q, %q or %q, got %q", ErrInvalidConfig,
			PivotMean, PivotMiddle, PivotMedian, cfg.Pivot)
	}
	if cfg.Decomposition == DecompositionPCA && cfg.Eigen == nil {
		return fmt.Errorf("%w: Decomposition %q needs an EigenSolver", ErrInvalidConfig, DecompositionPCA)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Decomposition == "" {
		cfg.Decomposition = DecompositionOrthogonal
	}
	if cfg.Pivot == "" {
		cfg.Pivot = PivotMean
	}
	if cfg.Eigen == nil && cfg.Decomposition == DecompositionPCA {
		cfg.Eigen = SymEigen{}
	}
}
