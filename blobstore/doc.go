// Package blobstore provides storage for archived scan statuses.
//
// Store is the interface for writing and reading whole blobs by name.
// Names are slash-separated paths relative to the store root.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral scans
//   - LocalStore: local filesystem with atomic renames and mmap reads
//   - CachingStore: read-through cache in front of any Store
//   - s3.Store: Amazon S3 through the upload manager
//   - s3.DDBCommitStore: S3 with DynamoDB conditional pointer commits
//   - minio.Store: MinIO and other S3-compatible services
//
// # Pointers
//
// A blob whose base name is PointerName holds the name of another blob.
// Stores with compare-and-swap support commit pointers atomically and
// return ErrConcurrentModification when a concurrent writer won.
package blobstore
