package s3client

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3sync/config"
	"s3sync/internal/listing"
)

func testConfig() *config.Config {
	return &config.Config{BucketName: "test-bucket", Region: "eu-central-1"}
}

func TestListPage_MapsRequestAndResponse(t *testing.T) {
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock := &mockS3API{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "test-bucket", aws.ToString(params.Bucket))
			assert.Equal(t, "docs/", aws.ToString(params.Prefix))
			assert.Equal(t, "/", aws.ToString(params.Delimiter))
			assert.EqualValues(t, 1000, aws.ToInt32(params.MaxKeys))
			assert.Equal(t, "token-1", aws.ToString(params.ContinuationToken))

			return &s3.ListObjectsV2Output{
				CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("docs/sub/")}},
				Contents: []types.Object{
					{Key: aws.String("docs/a.txt"), Size: aws.Int64(12), LastModified: &modified},
				},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("token-2"),
			}, nil
		},
	}
	client := NewWithAPI(mock, testConfig())

	page, err := client.ListPage(context.Background(), listing.PageRequest{
		Prefix:    "docs/",
		Delimiter: "/",
		MaxKeys:   listing.MaxKeys,
		Marker:    "token-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/sub/"}, page.CommonPrefixes)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, "docs/a.txt", page.Objects[0].Key)
	assert.EqualValues(t, 12, *page.Objects[0].Size)
	assert.Equal(t, modified, *page.Objects[0].LastModified)
	assert.True(t, page.IsTruncated)
	assert.Equal(t, "token-2", page.NextMarker)
}

func TestListPage_FlatRequestOmitsDelimiterAndToken(t *testing.T) {
	mock := &mockS3API{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			assert.Nil(t, params.Delimiter)
			assert.Nil(t, params.ContinuationToken)
			return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil
		},
	}

	page, err := NewWithAPI(mock, testConfig()).ListPage(context.Background(), listing.PageRequest{MaxKeys: listing.MaxKeys})
	require.NoError(t, err)
	assert.False(t, page.IsTruncated)
}

func TestListPage_DrivesLister(t *testing.T) {
	calls := 0
	mock := &mockS3API{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			calls++
			if calls == 1 {
				return &s3.ListObjectsV2Output{
					Contents:              []types.Object{{Key: aws.String("a"), Size: aws.Int64(1)}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("next"),
				}, nil
			}
			assert.Equal(t, "next", aws.ToString(params.ContinuationToken))
			return &s3.ListObjectsV2Output{
				Contents:    []types.Object{{Key: aws.String("b"), Size: aws.Int64(2)}},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}

	entries, err := listing.NewLister(NewWithAPI(mock, testConfig())).ListAllFlat(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, calls)
}

func TestListBuckets_FiltersByRegion(t *testing.T) {
	mock := &mockS3API{
		ListBucketsFunc: func(context.Context, *s3.ListBucketsInput) (*s3.ListBucketsOutput, error) {
			return &s3.ListBucketsOutput{Buckets: []types.Bucket{
				{Name: aws.String("zeta"), BucketRegion: aws.String("eu-central-1")},
				{Name: aws.String("other"), BucketRegion: aws.String("us-west-2")},
				{Name: aws.String("alpha")},
			}}, nil
		},
	}

	buckets, err := NewWithAPI(mock, testConfig()).ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "alpha", buckets[0].Name)
	assert.Equal(t, "zeta", buckets[1].Name)
}

func TestDeleteObjects_Batches(t *testing.T) {
	keys := make([]string, 0, 2001)
	for i := range 2001 {
		keys = append(keys, fmt.Sprintf("k%04d", i))
	}

	var batchSizes []int
	mock := &mockS3API{
		DeleteObjectsFunc: func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			batchSizes = append(batchSizes, len(params.Delete.Objects))
			out := &s3.DeleteObjectsOutput{}
			for _, obj := range params.Delete.Objects {
				if aws.ToString(obj.Key) == "k0005" {
					out.Errors = append(out.Errors, types.Error{
						Key: obj.Key, Code: aws.String("AccessDenied"), Message: aws.String("denied"),
					})
					continue
				}
				out.Deleted = append(out.Deleted, types.DeletedObject{Key: obj.Key})
			}
			return out, nil
		},
	}

	deleted, failures, err := NewWithAPI(mock, testConfig()).DeleteObjects(context.Background(), keys)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 1000, 1}, batchSizes)
	assert.Len(t, deleted, 2000)
	require.Len(t, failures, 1)
	assert.Equal(t, "k0005", failures[0].Key)
	assert.Equal(t, "AccessDenied", failures[0].Code)
}

func TestGetObjectText_Truncates(t *testing.T) {
	mock := &mockS3API{
		GetObjectFunc: func(_ context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "README.md", aws.ToString(params.Key))
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("# Title\nbody"))}, nil
		},
	}
	client := NewWithAPI(mock, testConfig())

	text, truncated, err := client.GetObjectText(context.Background(), "README.md", 7)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, "# Title", text)

	text, truncated, err = client.GetObjectText(context.Background(), "README.md", 1024)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, "# Title\nbody", text)
}

func TestGetObjectText_RejectsNonPositiveLimit(t *testing.T) {
	called := false
	mock := &mockS3API{
		GetObjectFunc: func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			called = true
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("body"))}, nil
		},
	}
	client := NewWithAPI(mock, testConfig())

	for _, limit := range []int64{-1, 0} {
		_, _, err := client.GetObjectText(context.Background(), "README.md", limit)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
	assert.False(t, called)
}

func TestGetObjectText_KeepsRunesWhole(t *testing.T) {
	mock := &mockS3API{
		GetObjectFunc: func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("héllo 世界"))}, nil
		},
	}
	client := NewWithAPI(mock, testConfig())

	tests := []struct {
		limit    int64
		expected string
	}{
		{1, "h"},
		{2, "h"},
		{3, "hé"},
		{8, "héllo "},
		{10, "héllo 世"},
	}
	for _, tt := range tests {
		text, truncated, err := client.GetObjectText(context.Background(), "notes.md", tt.limit)
		require.NoError(t, err)
		assert.True(t, truncated)
		assert.Equal(t, tt.expected, text, "limit %d", tt.limit)
		assert.True(t, utf8.ValidString(text))
	}
}

func TestDownload_WritesBody(t *testing.T) {
	mock := &mockS3API{
		GetObjectFunc: func(_ context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "test-bucket", aws.ToString(params.Bucket))
			return &s3.GetObjectOutput{
				Body:          io.NopCloser(strings.NewReader("payload")),
				ContentLength: aws.Int64(7),
				ContentRange:  aws.String("bytes 0-6/7"),
			}, nil
		},
	}

	buf := manager.NewWriteAtBuffer(nil)
	n, err := NewWithAPI(mock, testConfig()).Download(context.Background(), "a.bin", buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.Equal(t, "payload", string(buf.Bytes()))
}

// Integration tests for S3 client
// These tests require a real S3 connection and are skipped by default
// To run these tests, set the environment variable S3_INTEGRATION_TEST=true

func TestListPrefixIntegration(t *testing.T) {
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}

	cfg := &config.Config{
		BucketName: os.Getenv("TEST_BUCKET_NAME"),
		Region:     os.Getenv("TEST_REGION"),
		ApiURL:     os.Getenv("TEST_API_URL"),
		AccessKey:  os.Getenv("TEST_ACCESS_KEY"),
		SecretKey:  os.Getenv("TEST_SECRET_KEY"),
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	page, err := listing.NewLister(client).ListPrefix(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPrefix() error = %v", err)
	}

	seenFile := false
	for _, e := range page.Entries {
		if !e.IsDirectory {
			seenFile = true
		} else if seenFile {
			t.Errorf("directory %s listed after a file", e.Key)
		}
	}
}
