package main

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/slicescan/blobstore"
	"github.com/hupe1980/slicescan/blobstore/minio"
	"github.com/hupe1980/slicescan/blobstore/s3"
	"github.com/hupe1980/slicescan/internal/config"
)

// openStore builds the archive store named by cfg. It returns nil when
// archiving is disabled.
func openStore(ctx context.Context, cfg config.ArchiveConfig) (blobstore.Store, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BackendLocal:
		return blobstore.NewCachingStore(blobstore.NewLocalStore(cfg.Path), cfg.CacheBytes), nil
	case config.BackendS3:
		return openS3(ctx, cfg)
	case config.BackendMinIO:
		client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

func openS3(ctx context.Context, cfg config.ArchiveConfig) (blobstore.Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var store blobstore.Store = s3.NewStore(awss3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix)
	if cfg.CommitTable == "" {
		return store, nil
	}

	baseURI := "s3://" + cfg.Bucket
	if p := strings.Trim(cfg.Prefix, "/"); p != "" {
		baseURI += "/" + p
	}
	return s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), cfg.CommitTable, baseURI), nil
}
