// Package s3 provides Amazon S3 implementations of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "scans/")
//
// Pointer blobs can be committed through DynamoDB so that concurrent
// writers never lose an update:
//
//	commits := s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), "slicescan-commits", "s3://my-bucket/scans")
//
// # Features
//
//   - Uploads through the S3 upload manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
