package kdtree

import (
	"context"
	"testing"
)

// --- Build ---

func benchBuild(b *testing.B, n, dims int, d Decomposition, p Pivot) {
	b.Helper()
	data := generateFlatData(n, dims, 42)
	cfg := DefaultConfig()
	cfg.Decomposition = d
	cfg.Pivot = p
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tree, err := New(cfg)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := tree.SetData(data, nil, n, dims); err != nil {
			b.Fatal(err)
		}
		if err := tree.InitNodes(nil, nil, nil); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := tree.Build(false); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_Orthogonal_Mean_10000(b *testing.B) {
	benchBuild(b, 10000, 8, DecompositionOrthogonal, PivotMean)
}

func BenchmarkBuild_Orthogonal_Median_10000(b *testing.B) {
	benchBuild(b, 10000, 8, DecompositionOrthogonal, PivotMedian)
}

func BenchmarkBuild_Hyperplane_Mean_10000(b *testing.B) {
	benchBuild(b, 10000, 8, DecompositionHyperplane, PivotMean)
}

func BenchmarkBuild_PCA_Mean_10000(b *testing.B) {
	benchBuild(b, 10000, 8, DecompositionPCA, PivotMean)
}

// --- Search ---

func benchSearch(b *testing.B, n, dims, k int, d Decomposition) {
	b.Helper()
	data := generateFlatData(n, dims, 42)
	queries := generateFlatData(1000, dims, 43)
	cfg := DefaultConfig()
	cfg.Decomposition = d
	tree := buildTree(b, data, n, dims, cfg, nil, false)
	s := tree.NewSearcher()
	idx := make([]int, k)
	dist := make([]float32, k)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := i % 1000
		if _, err := s.SearchKNNInto(queries[q*dims:(q+1)*dims], 1, k, 0, false, idx, dist); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch_Orthogonal_K10_10000(b *testing.B) {
	benchSearch(b, 10000, 8, 10, DecompositionOrthogonal)
}
func BenchmarkSearch_Hyperplane_K10_10000(b *testing.B) {
	benchSearch(b, 10000, 8, 10, DecompositionHyperplane)
}
func BenchmarkSearch_PCA_K10_10000(b *testing.B) { benchSearch(b, 10000, 8, 10, DecompositionPCA) }

func BenchmarkBruteForce_K10_10000(b *testing.B) {
	n, dims := 10000, 8
	data := generateFlatData(n, dims, 42)
	queries := generateFlatData(1000, dims, 43)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := i % 1000
		BruteForceKNN(data, n, dims, queries[q*dims:(q+1)*dims], 1, 10, 0, nil)
	}
}

func BenchmarkQueryKNN_Workers4_10000(b *testing.B) {
	n, dims := 10000, 8
	data := generateFlatData(n, dims, 42)
	queries := generateFlatData(1000, dims, 43)
	tree := buildTree(b, data, n, dims, DefaultConfig(), nil, false)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := tree.QueryKNN(context.Background(), queries, 1000, 10, 0, false, 4); err != nil {
			b.Fatal(err)
		}
	}
}
