package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/quadgate/fluxor-blob/blobstore"
)

const archiveSuffix = ".tar.lz4"

// Offloader archives store buckets to an S3-compatible object store.
type Offloader struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewOffloader creates an Offloader writing to the given object-store bucket.
// rootPrefix is prepended to all object keys.
func NewOffloader(client *minio.Client, bucket, rootPrefix string) *Offloader {
	return &Offloader{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (o *Offloader) key(bucket string) string {
	return path.Join(o.prefix, bucket+archiveSuffix)
}

// Push exports the store bucket and streams the archive to object storage.
func (o *Offloader) Push(ctx context.Context, store *blobstore.Store, bucket string) error {
	pr, pw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		// Size -1 enables streaming multipart upload.
		_, err := o.client.PutObject(ctx, o.bucket, o.key(bucket), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		done <- err
	}()

	exportErr := store.Export(ctx, bucket, pw)
	_ = pw.CloseWithError(exportErr)
	uploadErr := <-done

	if exportErr != nil {
		return fmt.Errorf("minio: export %s: %w", bucket, exportErr)
	}
	if uploadErr != nil {
		return fmt.Errorf("minio: upload %s: %w", bucket, uploadErr)
	}
	return nil
}

// Pull downloads the bucket's archive and restores it into the store.
func (o *Offloader) Pull(ctx context.Context, store *blobstore.Store, bucket string) error {
	obj, err := o.client.GetObject(ctx, o.bucket, o.key(bucket), minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	if err := store.Import(ctx, bucket, obj); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return fmt.Errorf("minio: archive for %s: %w", bucket, blobstore.ErrNotFound)
		}
		return fmt.Errorf("minio: restore %s: %w", bucket, err)
	}
	return nil
}

// List returns the names of buckets with an archive under the prefix.
func (o *Offloader) List(ctx context.Context) ([]string, error) {
	var buckets []string
	for obj := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    o.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := path.Base(obj.Key)
		if strings.HasSuffix(name, archiveSuffix) {
			buckets = append(buckets, strings.TrimSuffix(name, archiveSuffix))
		}
	}
	sort.Strings(buckets)
	return buckets, nil
}
