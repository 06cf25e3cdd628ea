package kdtree

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// QueryKNN finds the k nearest neighbours for each row of queries, a flat
// row-major array of rows query vectors of NumFeatures elements each. Rows
// are split into contiguous ranges across workers goroutines, each with its
// own Searcher; workers <= 1 runs sequentially. The result is identical to
// calling SearchKNN for each row in turn.
//
// The tree must not be built or closed while QueryKNN runs.
func (t *Tree) QueryKNN(ctx context.Context, queries []float32, rows, k int, radius float32, useSigma bool, workers int) ([][]int, [][]float32, error) {
	if t.state != stateBuilt {
		return nil, nil, stateError("QueryKNN", t.state)
	}
	if rows < 0 {
		return nil, nil, fmt.Errorf("kdtree: QueryKNN needs rows >= 0, got %d", rows)
	}
	dims := t.ds.ndim
	if len(queries) < rows*dims {
		return nil, nil, fmt.Errorf("%w: queries has %d values, need %d", ErrBufferSize, len(queries), rows*dims)
	}
	indices := make([][]int, rows)
	distances := make([][]float32, rows)

	run := func(ctx context.Context, start, end int) error {
		s := t.NewSearcher()
		for q := start; q < end; q++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, dist, err := s.SearchKNN(queries[q*dims:(q+1)*dims], 1, k, radius, useSigma)
			if err != nil {
				return fmt.Errorf("kdtree: query %d: %w", q, err)
			}
			indices[q] = idx
			distances[q] = dist
		}
		return nil
	}

	if workers <= 1 || rows <= 1 {
		if err := run(ctx, 0, rows); err != nil {
			return nil, nil, err
		}
		t.logSearch(rows, k, 1)
		return indices, distances, nil
	}

	// Row ranges don't overlap, so workers write their slots without locking.
	g, gctx := errgroup.WithContext(ctx)
	rowsPerWorker := (rows + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		if start >= rows {
			break
		}
		end := min(start+rowsPerWorker, rows)
		g.Go(func() error { return run(gctx, start, end) })
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	t.logSearch(rows, k, workers)
	return indices, distances, nil
}
