package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/quadgate/fluxor-blob/blobstore"
)

const archiveSuffix = ".tar.lz4"

// Offloader archives store buckets to an S3 bucket.
type Offloader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewOffloader creates an Offloader writing to the given S3 bucket.
// rootPrefix is prepended to all object keys (e.g. "blob-archives/").
func NewOffloader(client *s3.Client, bucket, rootPrefix string) *Offloader {
	return &Offloader{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (o *Offloader) key(bucket string) string {
	return path.Join(o.prefix, bucket+archiveSuffix)
}

// Push exports the store bucket and uploads the archive. The upload is
// streamed through a pipe so the archive never materializes on disk.
func (o *Offloader) Push(ctx context.Context, store *blobstore.Store, bucket string) error {
	pr, pw := io.Pipe()

	uploader := manager.NewUploader(o.client)
	done := make(chan error, 1)
	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(o.bucket),
			Key:    aws.String(o.key(bucket)),
			Body:   pr,
		})
		// Unblock the exporter if the upload died mid-stream.
		_ = pr.CloseWithError(err)
		done <- err
	}()

	exportErr := store.Export(ctx, bucket, pw)
	_ = pw.CloseWithError(exportErr)
	uploadErr := <-done

	if exportErr != nil {
		return fmt.Errorf("s3: export %s: %w", bucket, exportErr)
	}
	if uploadErr != nil {
		return fmt.Errorf("s3: upload %s: %w", bucket, uploadErr)
	}
	return nil
}

// Pull downloads the bucket's archive and restores it into the store.
func (o *Offloader) Pull(ctx context.Context, store *blobstore.Store, bucket string) error {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key(bucket)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return fmt.Errorf("s3: archive for %s: %w", bucket, blobstore.ErrNotFound)
		}
		return err
	}
	defer out.Body.Close()

	if err := store.Import(ctx, bucket, out.Body); err != nil {
		return fmt.Errorf("s3: restore %s: %w", bucket, err)
	}
	return nil
}

// List returns the names of buckets with an archive under the prefix.
func (o *Offloader) List(ctx context.Context) ([]string, error) {
	var buckets []string

	paginator := s3.NewListObjectsV2Paginator(o.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(o.bucket),
		Prefix: aws.String(o.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if strings.HasSuffix(name, archiveSuffix) {
				buckets = append(buckets, strings.TrimSuffix(name, archiveSuffix))
			}
		}
	}
	sort.Strings(buckets)
	return buckets, nil
}
