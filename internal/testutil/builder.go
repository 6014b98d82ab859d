// Package testutil provides a builder for creating mock S3 clients.
package testutil

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithListBuckets configures the ListBuckets behavior.
func (b *MockBuilder) WithListBuckets(
	fn func(context.Context, *s3.ListBucketsInput) (*s3.ListBucketsOutput, error),
) *MockBuilder {
	b.client.ListBucketsFunc = func(ctx context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithListObjectVersions configures the ListObjectVersions behavior.
func (b *MockBuilder) WithListObjectVersions(
	fn func(context.Context, *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error),
) *MockBuilder {
	b.client.ListObjectVersionsFunc = func(ctx context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithDeleteObjects configures the DeleteObjects behavior.
func (b *MockBuilder) WithDeleteObjects(
	fn func(context.Context, *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error),
) *MockBuilder {
	b.client.DeleteObjectsFunc = func(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithDeleteBucket configures the DeleteBucket behavior.
func (b *MockBuilder) WithDeleteBucket(
	fn func(context.Context, *s3.DeleteBucketInput) (*s3.DeleteBucketOutput, error),
) *MockBuilder {
	b.client.DeleteBucketFunc = func(ctx context.Context, params *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithBuckets configures ListBuckets to return the given bucket names in one page.
func (b *MockBuilder) WithBuckets(names ...string) *MockBuilder {
	buckets := make([]types.Bucket, 0, len(names))
	for _, name := range names {
		buckets = append(buckets, types.Bucket{Name: aws.String(name)})
	}
	return b.WithListBuckets(func(context.Context, *s3.ListBucketsInput) (*s3.ListBucketsOutput, error) {
		return &s3.ListBucketsOutput{Buckets: buckets}, nil
	})
}

// WithVersionPages configures ListObjectVersions to serve the given pages in order,
// chaining them through key markers the way S3 does.
func (b *MockBuilder) WithVersionPages(pages ...*s3.ListObjectVersionsOutput) *MockBuilder {
	chained := ChainVersionPages(pages...)
	return b.WithListObjectVersions(func(_ context.Context, params *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
		index := 0
		if params.KeyMarker != nil {
			for i, page := range chained {
				if aws.ToString(page.NextKeyMarker) == aws.ToString(params.KeyMarker) &&
					aws.ToString(page.NextVersionIdMarker) == aws.ToString(params.VersionIdMarker) {
					index = i + 1
					break
				}
			}
		}
		if index >= len(chained) {
			return nil, errors.New("testutil: no version page for marker")
		}
		return chained[index], nil
	})
}

// WithAllDeleted configures DeleteObjects to confirm every requested record.
func (b *MockBuilder) WithAllDeleted() *MockBuilder {
	return b.WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		return DeletedOutput(params), nil
	})
}

// WithError configures all operations to return the specified error.
func (b *MockBuilder) WithError(err error) *MockBuilder {
	b.client.ListBucketsFunc = func(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
		return nil, err
	}
	b.client.ListObjectVersionsFunc = func(context.Context, *s3.ListObjectVersionsInput, ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
		return nil, err
	}
	b.client.DeleteObjectsFunc = func(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
		return nil, err
	}
	b.client.DeleteBucketFunc = func(context.Context, *s3.DeleteBucketInput, ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
		return nil, err
	}
	return b
}
