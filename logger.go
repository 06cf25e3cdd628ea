package kdtree

import (
	"context"
	"log/slog"
	"time"
)

// logBuild logs a completed build.
func (t *Tree) logBuild(useSigma bool, fallbacks int, elapsed time.Duration) {
	ctx := context.Background()
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	t.logger.DebugContext(ctx, "kdtree: build completed",
		"decomposition", t.dmode,
		"pivot", t.mmode,
		"ndata", t.ds.ndata,
		"ndim", t.ds.ndim,
		"height", t.height,
		"nnodes", t.nnodes,
		"use_sigma", useSigma,
		"orthogonal_fallbacks", fallbacks,
		"elapsed", elapsed,
	)
}

// logSearch logs a completed batch query.
func (t *Tree) logSearch(rows, k, workers int) {
	t.logger.Debug("kdtree: batch query completed",
		"rows", rows,
		"k", k,
		"workers", workers,
	)
}

// LogInfo writes the tree's configuration and size to logger at info level.
func (t *Tree) LogInfo(ctx context.Context, logger *slog.Logger) {
	logger.InfoContext(ctx, "kdtree: info",
		"state", t.state.String(),
		"decomposition", t.dmode,
		"pivot", t.mmode,
		"ndata", t.ds.ndata,
		"ndim", t.ds.ndim,
		"height", t.height,
		"maxheight", t.maxheight,
		"givenheight", t.givenheight,
		"nnodes", t.nnodes,
		"ninner", t.ninner,
		"sigma_nonzero", len(t.ds.nz),
		"nodes_buffer", t.nodes.own.String(),
		"index_buffer", t.ds.index.own.String(),
	)
}
