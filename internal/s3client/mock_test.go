package s3client

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3API routes each call to an optional function field.
type mockS3API struct {
	ListObjectsV2Func     func(ctx context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	GetObjectFunc         func(ctx context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	DeleteObjectsFunc     func(ctx context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error)
	ListBucketsFunc       func(ctx context.Context, params *s3.ListBucketsInput) (*s3.ListBucketsOutput, error)
	GetBucketLocationFunc func(ctx context.Context, params *s3.GetBucketLocationInput) (*s3.GetBucketLocationOutput, error)
}

var errNotMocked = errors.New("not mocked")

func (m *mockS3API) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.ListObjectsV2Func == nil {
		return nil, errNotMocked
	}
	return m.ListObjectsV2Func(ctx, params)
}

func (m *mockS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc == nil {
		return nil, errNotMocked
	}
	return m.GetObjectFunc(ctx, params)
}

func (m *mockS3API) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if m.DeleteObjectsFunc == nil {
		return nil, errNotMocked
	}
	return m.DeleteObjectsFunc(ctx, params)
}

func (m *mockS3API) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if m.ListBucketsFunc == nil {
		return nil, errNotMocked
	}
	return m.ListBucketsFunc(ctx, params)
}

func (m *mockS3API) GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	if m.GetBucketLocationFunc == nil {
		return nil, errNotMocked
	}
	return m.GetBucketLocationFunc(ctx, params)
}
