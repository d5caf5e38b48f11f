package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quadgate/fluxor-blob/blobstore"
)

func newStore(root string) *blobstore.Store {
	return blobstore.New(root, blobstore.WithLogger(logger().Logger))
}

var cmdInit = &cobra.Command{
	Use:               "init <root>",
	Short:             "Initialize a storage root and bucket",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		if err := store.Init(cmd.Context(), globalOptions.Bucket); err != nil {
			return err
		}
		fmt.Printf("Initialized at %s\n", store.Root())
		return nil
	},
}

var putVersion string

var cmdPut = &cobra.Command{
	Use:               "put <root> <key> <file>",
	Short:             "Store a file under a key",
	Args:              cobra.ExactArgs(3),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		if err := store.Init(cmd.Context(), globalOptions.Bucket); err != nil {
			return err
		}
		if err := store.PutFromFile(cmd.Context(), globalOptions.Bucket, args[1], args[2], putVersion); err != nil {
			return err
		}
		size, _ := store.SizeOf(cmd.Context(), globalOptions.Bucket, args[1], putVersion)
		fmt.Printf("Stored key %q size=%d\n", args[1], size)
		return nil
	},
}

var getVersion string

var cmdGet = &cobra.Command{
	Use:               "get <root> <key> <out_file>",
	Short:             "Write a blob to a file",
	Args:              cobra.ExactArgs(3),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		if err := store.GetToFile(cmd.Context(), globalOptions.Bucket, args[1], args[2], getVersion); err != nil {
			return err
		}
		fmt.Printf("Wrote to %s\n", args[2])
		return nil
	},
}

var cmdExists = &cobra.Command{
	Use:               "exists <root> <key>",
	Short:             "Check whether a key exists",
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		ok, err := store.Exists(cmd.Context(), globalOptions.Bucket, args[1])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("0")
			os.Exit(2)
		}
		fmt.Println("1")
		return nil
	},
}

var cmdList = &cobra.Command{
	Use:               "list <root>",
	Short:             "List all keys in the bucket",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		keys, err := store.List(cmd.Context(), globalOptions.Bucket)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	},
}

var rmVersion string

var cmdRm = &cobra.Command{
	Use:               "rm <root> <key>",
	Short:             "Remove a key (all versions, or one with --version)",
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		removed, err := store.Remove(cmd.Context(), globalOptions.Bucket, args[1], rmVersion)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("key %q: %w", args[1], blobstore.ErrNotFound)
		}
		fmt.Printf("Removed %q\n", args[1])
		return nil
	},
}

var cmdStat = &cobra.Command{
	Use:               "stat <root> <key>",
	Short:             "Print size and versions of a key",
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		size, err := store.SizeOf(cmd.Context(), globalOptions.Bucket, args[1], "")
		if err != nil {
			return err
		}
		versions, err := store.ListVersions(cmd.Context(), globalOptions.Bucket, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("size=%d versions=%d\n", size, len(versions))
		return nil
	},
}

func init() {
	cmdPut.Flags().StringVar(&putVersion, "version", "", "version id (empty writes the unversioned blob)")
	cmdGet.Flags().StringVar(&getVersion, "version", "", "version id (empty reads the greatest)")
	cmdRm.Flags().StringVar(&rmVersion, "version", "", "version id (empty removes all versions)")

	cmdRoot.AddCommand(cmdInit, cmdPut, cmdGet, cmdExists, cmdList, cmdRm, cmdStat)
}
