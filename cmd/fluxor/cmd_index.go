package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	fluxorblob "github.com/quadgate/fluxor-blob"
	"github.com/quadgate/fluxor-blob/batchindex"
)

var indexCompress bool

var cmdIndex = &cobra.Command{
	Use:               "index",
	Short:             "Manage the dynamic index for a bucket",
	DisableAutoGenTag: true,
}

var cmdIndexRebuild = &cobra.Command{
	Use:               "rebuild <root>",
	Short:             "Rebuild the index by scanning the bucket, then save it",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openIndexed(cmd, args[0])
		if err != nil {
			return err
		}
		if err := store.RebuildIndex(cmd.Context()); err != nil {
			return err
		}
		if err := store.SaveIndex(); err != nil {
			return err
		}
		fmt.Printf("Indexed %d keys (%d bytes)\n", store.Count(), store.TotalBytes())
		return nil
	},
}

var cmdIndexSave = &cobra.Command{
	Use:               "save <root>",
	Short:             "Persist the index snapshot",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openIndexed(cmd, args[0])
		if err != nil {
			return err
		}
		return store.SaveIndex()
	},
}

func openIndexed(cmd *cobra.Command, root string) (*fluxorblob.IndexedStore, error) {
	return fluxorblob.Open(cmd.Context(), root, globalOptions.Bucket,
		fluxorblob.WithLogger(logger()),
		fluxorblob.WithSnapshotCompression(indexCompress),
	)
}

var batchParallel bool

var cmdBatchIndex = &cobra.Command{
	Use:   "batch-index <input> [output]",
	Short: "Run the static batch indexer over an input stream",
	Long: `
Reads an input file of the form

	N
	key size offset   (N times)
	Q
	qkey              (Q times)

and writes one line per query, in order: "<size> <offset>" for present
keys, "NOTFOUND" otherwise. Output goes to stdout unless a path is given.
`,
	Args:              cobra.RangeArgs(1, 2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := os.Stdout
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		stats, err := batchindex.Run(args[0], out,
			batchindex.WithLogger(logger().Logger),
			batchindex.WithParallelQueries(batchParallel),
		)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "entries=%d queries=%d found=%d\n", stats.Entries, stats.Queries, stats.Found)
		return nil
	},
}

func init() {
	cmdIndex.PersistentFlags().BoolVar(&indexCompress, "compress", false, "zstd-compress the snapshot")
	cmdIndex.AddCommand(cmdIndexRebuild, cmdIndexSave)

	cmdBatchIndex.Flags().BoolVar(&batchParallel, "parallel", false, "answer queries on a worker pool")

	cmdRoot.AddCommand(cmdIndex, cmdBatchIndex)
}
