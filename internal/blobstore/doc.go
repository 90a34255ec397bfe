// Package blobstore persists whole named blobs.
//
// The embedding index is written and read as a single unit, so a store only
// needs Get and Put of complete byte slices. Backends live in this package
// (local file system, memory) and in the s3 and minio subpackages.
//
// Missing blobs are reported with an error that satisfies
// errors.Is(err, ErrNotFound).
package blobstore
