package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	minioCreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketClient is the part of an S3 client the object store check uses.
type BucketClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// ObjectStoreCheckerConfig configures an S3-compatible bucket check.
type ObjectStoreCheckerConfig struct {
	Name      string
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// ObjectStoreChecker passes when the configured bucket exists.
type ObjectStoreChecker struct {
	name   string
	bucket string
	client BucketClient
}

// NewObjectStoreChecker creates a bucket check backed by a MinIO client.
// Empty credentials make anonymous requests.
func NewObjectStoreChecker(config ObjectStoreCheckerConfig) (*ObjectStoreChecker, error) {
	if config.Name == "" || config.Bucket == "" {
		return nil, fmt.Errorf("%w: objectstore check needs a name and a bucket", ErrInvalidConfig)
	}
	endpoint := strings.TrimSpace(config.Endpoint)
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if endpoint == "" {
		return nil, fmt.Errorf("%w: objectstore check needs an endpoint", ErrInvalidConfig)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  minioCreds.NewStaticV4(strings.TrimSpace(config.AccessKey), strings.TrimSpace(config.SecretKey), ""),
		Secure: config.Secure,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return NewObjectStoreCheckerWithClient(config.Name, config.Bucket, client), nil
}

// NewObjectStoreCheckerWithClient checks bucket using client.
func NewObjectStoreCheckerWithClient(name, bucket string, client BucketClient) *ObjectStoreChecker {
	return &ObjectStoreChecker{name: name, bucket: bucket, client: client}
}

// Name returns the check name.
func (o *ObjectStoreChecker) Name() string { return o.name }

// Type returns "objectstore".
func (o *ObjectStoreChecker) Type() string { return "objectstore" }

// Probe verifies that the bucket exists and is reachable.
func (o *ObjectStoreChecker) Probe(ctx context.Context) error {
	ok, err := o.client.BucketExists(ctx, o.bucket)
	if err != nil {
		return fmt.Errorf("bucket %q: %w", o.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", o.bucket)
	}
	return nil
}
