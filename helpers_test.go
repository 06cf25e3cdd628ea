package kdtree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// allModes lists every decomposition × pivot combination.
var allModes = func() []Config {
	var cfgs []Config
	for _, d := range []Decomposition{DecompositionOrthogonal, DecompositionHyperplane, DecompositionPCA} {
		for _, p := range []Pivot{PivotMean, PivotMiddle, PivotMedian} {
			cfg := DefaultConfig()
			cfg.Decomposition = d
			cfg.Pivot = p
			cfgs = append(cfgs, cfg)
		}
	}
	return cfgs
}()

func modeName(cfg Config) string {
	return string(cfg.Decomposition) + "/" + string(cfg.Pivot)
}

func generateFlatData(n, dims int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, n*dims)
	for i := range data {
		data[i] = rng.Float32() * 100
	}
	return data
}

// generateGridData returns integer coordinates in [0, side), so rows share
// coordinates and many distances tie.
func generateGridData(n, dims, side int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, n*dims)
	for i := range data {
		data[i] = float32(rng.Intn(side))
	}
	return data
}

// buildTree runs the full call sequence. sigma may be nil.
func buildTree(t testing.TB, data []float32, n, dims int, cfg Config, sigma []float32, useSigma bool) *Tree {
	t.Helper()
	tree, err := New(cfg)
	require.NoError(t, err)
	_, err = tree.SetData(data, nil, n, dims)
	require.NoError(t, err)
	require.NoError(t, tree.InitNodes(nil, nil, nil))
	if sigma != nil {
		require.NoError(t, tree.SetSigma(sigma))
		tree.RefreshNonzeroWeights()
	}
	require.NoError(t, tree.Build(useSigma))
	return tree
}

// checkPartition verifies that the terminal node ranges tile [0, n) and that
// the indirection array is a permutation.
func checkPartition(t *testing.T, tree *Tree) {
	t.Helper()
	n := tree.NumPoints()
	pos := 0
	for _, id := range tree.Leaves() {
		node := tree.Nodes()[id]
		require.Equal(t, pos, node.Start, "leaf %d starts at wrong position", id)
		require.Equal(t, node.End-node.Start, node.Size)
		pos = node.End
	}
	require.Equal(t, n, pos, "leaves do not cover all points")

	seen := make([]bool, n)
	for _, v := range tree.Index() {
		require.True(t, v >= 0 && v < n, "index %d out of range", v)
		require.False(t, seen[v], "index %d appears twice", v)
		seen[v] = true
	}
}
