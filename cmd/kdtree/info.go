package main

import (
	"github.com/spf13/cobra"
)

func newInfoCmd(opts *options) *cobra.Command {
	var verbosity int
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Build the tree and print its structure",
		Long: `Build the tree over the data file and print a summary. With --verbose 1
every node is listed, with --verbose 2 also the vectors in each leaf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, _, err := buildTree(cmd, opts)
			if err != nil {
				return err
			}
			defer tree.Close()
			return tree.WriteData(cmd.OutOrStdout(), verbosity)
		},
	}
	cmd.Flags().IntVarP(&verbosity, "verbose", "v", 0, "Detail level: 0 summary, 1 nodes, 2 nodes and vectors")
	return cmd
}
