// Package index is an exact nearest-neighbor index over template image
// embeddings.
//
// Records are (path, vector) pairs kept in an append-only arena: one
// contiguous float32 buffer holding every vector back to back and a
// parallel slice of paths. A record is identified by its position. Vectors
// are L2-normalized on insertion so the dot product of two stored vectors
// is their cosine similarity.
//
// # Concurrency
//
// Any number of searches may run concurrently. Writers are serialized by a
// single lock held across encoding, persisting and appending, so a record
// becomes visible only after the blob containing it has been written.
//
// # Persistence
//
// The whole index is stored as one blob through a blobstore.Store. A
// missing or unreadable blob yields an empty index and a logged warning.
// See codec.go for the format.
package index
