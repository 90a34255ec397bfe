// Package minio stores blobs in MinIO or another S3-compatible service.
package minio
