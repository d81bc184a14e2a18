// Package blobstore provides the storage abstraction for persisted models.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with atomic writes
//   - CachingStore: read-through cache in front of a remote store
//   - s3.Store: Amazon S3 with multipart uploads and range reads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Version Commits
//
// A Committer records which blob is the current version of a logical
// object. PointerCommitter keeps the pointer in a BlobStore; s3.DDBCommitter
// uses DynamoDB conditional writes so concurrent publishers cannot
// overwrite each other.
package blobstore
