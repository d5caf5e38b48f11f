package main

import (
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/quadgate/fluxor-blob/blobstore/minio"
	"github.com/quadgate/fluxor-blob/blobstore/s3"
)

var cmdExport = &cobra.Command{
	Use:               "export <root> <archive>",
	Short:             "Export the bucket as an lz4-compressed tar archive",
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		store := newStore(args[0])
		if err := store.Export(cmd.Context(), globalOptions.Bucket, f); err != nil {
			return err
		}
		return f.Sync()
	},
}

var cmdImport = &cobra.Command{
	Use:               "import <root> <archive>",
	Short:             "Restore a bucket from an exported archive",
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		store := newStore(args[0])
		return store.Import(cmd.Context(), globalOptions.Bucket, f)
	},
}

var offloadOptions = struct {
	Target    string // "s3" or "minio"
	Bucket    string // object-storage bucket
	Prefix    string
	Endpoint  string // minio only
	AccessKey string
	SecretKey string
	UseSSL    bool
}{}

var cmdOffload = &cobra.Command{
	Use:               "offload",
	Short:             "Archive buckets to object storage",
	DisableAutoGenTag: true,
}

var cmdOffloadPush = &cobra.Command{
	Use:               "push <root>",
	Short:             "Upload the bucket's archive to object storage",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		switch offloadOptions.Target {
		case "s3":
			off, err := s3Offloader(cmd)
			if err != nil {
				return err
			}
			if err := off.Push(cmd.Context(), store, globalOptions.Bucket); err != nil {
				return err
			}
		case "minio":
			off, err := minioOffloader()
			if err != nil {
				return err
			}
			if err := off.Push(cmd.Context(), store, globalOptions.Bucket); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown offload target %q", offloadOptions.Target)
		}
		fmt.Printf("Pushed bucket %q\n", globalOptions.Bucket)
		return nil
	},
}

var cmdOffloadPull = &cobra.Command{
	Use:               "pull <root>",
	Short:             "Restore the bucket's archive from object storage",
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(args[0])
		switch offloadOptions.Target {
		case "s3":
			off, err := s3Offloader(cmd)
			if err != nil {
				return err
			}
			if err := off.Pull(cmd.Context(), store, globalOptions.Bucket); err != nil {
				return err
			}
		case "minio":
			off, err := minioOffloader()
			if err != nil {
				return err
			}
			if err := off.Pull(cmd.Context(), store, globalOptions.Bucket); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown offload target %q", offloadOptions.Target)
		}
		fmt.Printf("Pulled bucket %q\n", globalOptions.Bucket)
		return nil
	},
}

func s3Offloader(cmd *cobra.Command) (*s3.Offloader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	client := awss3.NewFromConfig(cfg)
	return s3.NewOffloader(client, offloadOptions.Bucket, offloadOptions.Prefix), nil
}

func minioOffloader() (*minio.Offloader, error) {
	client, err := miniogo.New(offloadOptions.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(offloadOptions.AccessKey, offloadOptions.SecretKey, ""),
		Secure: offloadOptions.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return minio.NewOffloader(client, offloadOptions.Bucket, offloadOptions.Prefix), nil
}

func init() {
	pf := cmdOffload.PersistentFlags()
	pf.StringVar(&offloadOptions.Target, "target", "s3", "object-storage backend (s3|minio)")
	pf.StringVar(&offloadOptions.Bucket, "remote-bucket", "", "object-storage bucket")
	pf.StringVar(&offloadOptions.Prefix, "prefix", "fluxor", "object key prefix")
	pf.StringVar(&offloadOptions.Endpoint, "endpoint", "", "minio endpoint host:port")
	pf.StringVar(&offloadOptions.AccessKey, "access-key", "", "minio access key")
	pf.StringVar(&offloadOptions.SecretKey, "secret-key", "", "minio secret key")
	pf.BoolVar(&offloadOptions.UseSSL, "ssl", true, "use TLS for minio")

	cmdOffload.AddCommand(cmdOffloadPush, cmdOffloadPull)
	cmdRoot.AddCommand(cmdExport, cmdImport, cmdOffload)
}
