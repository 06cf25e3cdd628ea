package kdtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryKNN_MatchesSequential(t *testing.T) {
	n, dims, rows, k := 500, 3, 97, 6
	data := generateFlatData(n, dims, 41)
	queries := generateFlatData(rows, dims, 42)
	for _, cfg := range allModes {
		t.Run(modeName(cfg), func(t *testing.T) {
			tree := buildTree(t, data, n, dims, cfg, nil, false)
			idx, dist, err := tree.QueryKNN(context.Background(), queries, rows, k, 0, false, 8)
			require.NoError(t, err)
			require.Len(t, idx, rows)
			for q := 0; q < rows; q++ {
				wantIdx, wantDist, err := tree.SearchKNN(queries[q*dims:(q+1)*dims], 1, k, 0, false)
				require.NoError(t, err)
				assert.Equal(t, wantIdx, idx[q], "query %d", q)
				assert.Equal(t, wantDist, dist[q], "query %d", q)
			}
		})
	}
}

func TestQueryKNN_Weighted(t *testing.T) {
	n, dims, rows := 200, 2, 40
	data := generateFlatData(n, dims, 43)
	queries := generateFlatData(rows, dims, 44)
	sigma := []float32{1, 5}
	tree := buildTree(t, data, n, dims, DefaultConfig(), sigma, true)
	idx, dist, err := tree.QueryKNN(context.Background(), queries, rows, 3, 0, true, 4)
	require.NoError(t, err)
	for q := 0; q < rows; q++ {
		wantIdx, wantDist := BruteForceKNN(data, n, dims, queries[q*dims:(q+1)*dims], 1, 3, 0, sigma)
		assert.Equal(t, wantIdx, idx[q])
		assert.Equal(t, wantDist, dist[q])
	}
}

func TestQueryKNN_MoreWorkersThanRows(t *testing.T) {
	data := generateFlatData(20, 2, 45)
	tree := buildTree(t, data, 20, 2, DefaultConfig(), nil, false)
	idx, _, err := tree.QueryKNN(context.Background(), data[:6], 3, 2, 0, false, 16)
	require.NoError(t, err)
	for q := 0; q < 3; q++ {
		assert.Equal(t, q, idx[q][0])
	}
}

func TestQueryKNN_SequentialWorkers(t *testing.T) {
	data := generateFlatData(20, 2, 46)
	tree := buildTree(t, data, 20, 2, DefaultConfig(), nil, false)
	idx, _, err := tree.QueryKNN(context.Background(), data, 20, 1, 0, false, 0)
	require.NoError(t, err)
	for q := range idx {
		assert.Equal(t, []int{q}, idx[q])
	}
}

func TestQueryKNN_Errors(t *testing.T) {
	data := generateFlatData(20, 2, 47)
	tree := buildTree(t, data, 20, 2, DefaultConfig(), nil, false)

	_, _, err := tree.QueryKNN(context.Background(), data[:3], 2, 1, 0, false, 2)
	assert.ErrorIs(t, err, ErrBufferSize)

	_, _, err = tree.QueryKNN(context.Background(), data, 20, 0, 0, false, 2)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, _, err = tree.QueryKNN(context.Background(), data, -1, 1, 0, false, 2)
	assert.ErrorContains(t, err, "rows >= 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = tree.QueryKNN(ctx, data, 20, 1, 0, false, 4)
	assert.ErrorIs(t, err, context.Canceled)

	unbuilt, err := New(DefaultConfig())
	require.NoError(t, err)
	_, _, err = unbuilt.QueryKNN(context.Background(), data, 20, 1, 0, false, 1)
	assert.ErrorIs(t, err, ErrState)
}
