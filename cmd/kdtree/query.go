package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/TrevorS/kdtree"
	"github.com/spf13/cobra"
)

// queryFlags are the query settings that may override the config file.
type queryFlags struct {
	k        int
	radius   float32
	sigma    string
	weighted bool
	workers  int
	verify   bool
	json     bool
	profile  bool
}

// queryResult is one query's answer in --json output.
type queryResult struct {
	Query     []float32 `json:"query"`
	Indices   []int     `json:"indices"`
	Distances []float32 `json:"distances"`
}

func newQueryCmd(opts *options) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "query <vector>...",
		Short: "Find the nearest neighbours of query vectors",
		Long: `Find the k nearest rows of the data file for each query vector.
Each vector is a comma-separated list of numbers. Distances are squared.

Examples:
  kdtree query --data points.csv --k 3 0.9,0.1
  kdtree query --data points.csv --sigma 1,0,2 --weighted 1,2,3
  kdtree query --data points.csv --config tree.yaml --json 0,0 1,1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyQueryFlags(cmd, &opts.cfg, qf); err != nil {
				return err
			}
			var profile *kdtree.Profile
			if qf.profile {
				profile = &kdtree.Profile{}
			}
			return runQuery(cmd, opts, args, qf, profile)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&qf.k, "k", "k", 1, "Number of neighbours to return")
	f.Float32VarP(&qf.radius, "radius", "r", 0, "Maximum squared distance (0 = unlimited)")
	f.StringVar(&qf.sigma, "sigma", "", "Comma-separated per-dimension sigma (weight 1/sigma, 0 ignores the dimension)")
	f.BoolVarP(&qf.weighted, "weighted", "w", false, "Weight distances by 1/sigma when building and searching")
	f.IntVar(&qf.workers, "workers", 1, "Goroutines used for multiple queries")
	f.BoolVar(&qf.verify, "verify", false, "Check every result against a linear scan")
	f.BoolVar(&qf.json, "json", false, "Output results as JSON")
	f.BoolVar(&qf.profile, "profile", false, "Print operation counters after the queries")
	return cmd
}

// applyQueryFlags copies explicitly set flags over the config file values.
func applyQueryFlags(cmd *cobra.Command, cfg *fileConfig, qf queryFlags) error {
	f := cmd.Flags()
	if f.Changed("k") {
		cfg.K = qf.k
	}
	if f.Changed("radius") {
		cfg.Radius = qf.radius
	}
	if f.Changed("weighted") {
		cfg.Weighted = qf.weighted
	}
	if f.Changed("workers") {
		cfg.Workers = qf.workers
	}
	if f.Changed("sigma") {
		sigma, err := parseVector(qf.sigma)
		if err != nil {
			return fmt.Errorf("--sigma: %w", err)
		}
		cfg.Sigma = sigma
	}
	if cfg.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", cfg.K)
	}
	return nil
}

func runQuery(cmd *cobra.Command, opts *options, args []string, qf queryFlags, profile *kdtree.Profile) error {
	queries := make([]float32, 0)
	var dims int
	for i, arg := range args {
		v, err := parseVector(arg)
		if err != nil {
			return err
		}
		if i == 0 {
			dims = len(v)
		} else if len(v) != dims {
			return &kdtree.DimensionMismatchError{Expected: dims, Actual: len(v)}
		}
		queries = append(queries, v...)
	}

	if profile != nil {
		opts.cfg.observer = profile
	}
	tree, data, err := buildTree(cmd, opts)
	if err != nil {
		return err
	}
	defer tree.Close()
	if dims != tree.NumFeatures() {
		return &kdtree.DimensionMismatchError{Expected: tree.NumFeatures(), Actual: dims}
	}

	cfg := opts.cfg
	indices, distances, err := tree.QueryKNN(cmd.Context(), queries, len(args), cfg.K, cfg.Radius, cfg.Weighted, cfg.Workers)
	if err != nil {
		return err
	}

	if qf.verify {
		brute := kdtree.NewBruteForce(data, tree.NumPoints(), dims, cfg.Sigma)
		if err := verify(brute, queries, dims, cfg, indices); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if qf.json {
		results := make([]queryResult, len(args))
		for q := range results {
			results[q] = queryResult{
				Query:     queries[q*dims : (q+1)*dims],
				Indices:   indices[q],
				Distances: distances[q],
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		writeResults(out, args, indices, distances)
	}
	if profile != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), profile.String())
	}
	return nil
}

// verify compares the tree's answers with a linear scan.
func verify(brute kdtree.NearestNeighbors, queries []float32, dims int, cfg fileConfig, indices [][]int) error {
	for q := range indices {
		want, _, err := brute.SearchKNN(queries[q*dims:(q+1)*dims], 1, cfg.K, cfg.Radius, cfg.Weighted)
		if err != nil {
			return err
		}
		got := slices.Clone(indices[q])
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return fmt.Errorf("query %d: tree returned %v, linear scan %v", q, indices[q], want)
		}
	}
	return nil
}

func writeResults(w io.Writer, args []string, indices [][]int, distances [][]float32) {
	for q, arg := range args {
		fmt.Fprintf(w, "query %d (%s): %d found\n", q, arg, len(indices[q]))
		for i := range indices[q] {
			fmt.Fprintf(w, "  %d\t%g\n", indices[q][i], distances[q][i])
		}
	}
}
