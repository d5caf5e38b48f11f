package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	fluxorblob "github.com/quadgate/fluxor-blob"
	"github.com/quadgate/fluxor-blob/blobstore"
)

var version = "0.3.0"

var globalOptions = struct {
	Bucket  string
	Verbose bool
}{}

// cmdRoot is the base command when no other command has been specified.
var cmdRoot = &cobra.Command{
	Use:   "fluxor",
	Short: "Embeddable blob storage engine",
	Long: `
fluxor stores arbitrary byte blobs in a bucketed, versioned, content-sharded
directory tree with atomic writes and an in-memory index for fast lookups
and ordered key scans.

EXIT STATUS
===========

Exit status is 0 on success, 1 on usage or I/O errors, and 2 when a key or
version was not found.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	Version:           version,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(0)
	},
}

func init() {
	pf := cmdRoot.PersistentFlags()
	pf.StringVar(&globalOptions.Bucket, "bucket", "default", "bucket to operate on")
	pf.BoolVarP(&globalOptions.Verbose, "verbose", "v", false, "enable debug logging")
}

func logger() *fluxorblob.Logger {
	if globalOptions.Verbose {
		return fluxorblob.NewTextLogger(slog.LevelDebug)
	}
	return fluxorblob.NoopLogger()
}

func main() {
	err := cmdRoot.Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	if errors.Is(err, blobstore.ErrNotFound) {
		os.Exit(2)
	}
	os.Exit(1)
}
