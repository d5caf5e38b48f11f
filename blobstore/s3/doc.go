// Package s3 offloads bucket archives to Amazon S3.
//
// An Offloader pushes a bucket's Export archive to an object key and pulls
// it back through Import. This is an operator-driven archive operation, not
// replication: nothing here keeps the copies in sync.
//
// The client is injected, so credentials and region resolution stay with
// the caller (the CLI loads the default AWS config chain).
package s3
