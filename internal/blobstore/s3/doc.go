// Package s3 stores blobs in Amazon S3.
package s3
