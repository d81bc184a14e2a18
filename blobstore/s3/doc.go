// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface and a DynamoDB-backed blobstore.Committer.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("models/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	registry := model.NewRegistry(store, s3.NewDDBCommitter(ddb, "clustr-commits", "s3://my-bucket/models/"))
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large models
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
