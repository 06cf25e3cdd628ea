package main

import (
	"fmt"
	"log/slog"

	"github.com/TrevorS/kdtree"
	"github.com/spf13/cobra"
)

// options holds the flags shared by all subcommands.
type options struct {
	dataPath   string
	configPath string
	cfg        fileConfig
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "kdtree",
		Short: "Weighted k-d tree nearest-neighbour search over CSV data",
		Long: `kdtree builds a k-dimensional search tree over the rows of a CSV file
and answers k-nearest-neighbour queries with optional per-dimension weights.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.dataPath, "data", "d", "", "CSV file with one data vector per row")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	_ = root.MarkPersistentFlagRequired("data")

	root.AddCommand(newInfoCmd(opts), newQueryCmd(opts))
	return root
}

// buildTree loads the data file and builds a tree according to opts.
// The returned tree borrows data, which stays referenced by the tree.
func buildTree(cmd *cobra.Command, opts *options) (*kdtree.Tree, []float32, error) {
	level, err := opts.cfg.logLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	data, rows, dims, err := readMatrixFile(opts.dataPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := opts.cfg.treeConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	tree, err := kdtree.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if _, err := tree.SetData(data, nil, rows, dims); err != nil {
		return nil, nil, err
	}
	if err := tree.InitNodes(nil, nil, nil); err != nil {
		return nil, nil, err
	}
	if opts.cfg.Sigma != nil {
		if err := tree.SetSigma(opts.cfg.Sigma); err != nil {
			return nil, nil, fmt.Errorf("sigma: %w", err)
		}
		tree.RefreshNonzeroWeights()
	}
	if err := tree.Build(opts.cfg.Weighted); err != nil {
		return nil, nil, err
	}
	return tree, data, nil
}
