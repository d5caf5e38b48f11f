// Package minio offloads bucket archives to MinIO or any S3-compatible
// object store. Functionally identical to the s3 package; pick whichever
// client stack your deployment already carries.
package minio
