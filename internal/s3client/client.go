package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appConfig "s3sync/config"
	"s3sync/internal/listing"
	"s3sync/internal/models"
)

// deleteBatchSize is the DeleteObjects per-request key limit.
const deleteBatchSize = 1000

const fallbackRegion = "us-east-1"

var ErrInvalidLimit = errors.New("limit must be greater than 0")

type Client struct {
	s3Client   S3API
	downloader *manager.Downloader
	config     *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = fallbackRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}))
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return NewWithAPI(s3Client, cfg), nil
}

// NewWithAPI wraps an existing S3API implementation.
func NewWithAPI(api S3API, cfg *appConfig.Config) *Client {
	return &Client{
		s3Client:   api,
		downloader: manager.NewDownloader(api),
		config:     cfg,
	}
}

func (c *Client) BucketName() string {
	return c.config.BucketName
}

// ListPage performs one ListObjectsV2 call.
func (c *Client) ListPage(ctx context.Context, req listing.PageRequest) (*listing.RawPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.config.BucketName),
		Prefix:  aws.String(req.Prefix),
		MaxKeys: aws.Int32(req.MaxKeys),
	}
	if req.Delimiter != "" {
		input.Delimiter = aws.String(req.Delimiter)
	}
	if req.Marker != "" {
		input.ContinuationToken = aws.String(req.Marker)
	}

	resp, err := c.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	page := &listing.RawPage{
		IsTruncated: aws.ToBool(resp.IsTruncated),
		NextMarker:  aws.ToString(resp.NextContinuationToken),
	}
	for _, cp := range resp.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(cp.Prefix))
	}
	for _, obj := range resp.Contents {
		page.Objects = append(page.Objects, listing.ObjectSummary{
			Key:          aws.ToString(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return page, nil
}

// ListBuckets returns the buckets located in the configured region, sorted by
// name. Buckets that report no region are kept.
func (c *Client) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	resp, err := c.s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	var buckets []models.Bucket
	for _, b := range resp.Buckets {
		region := aws.ToString(b.BucketRegion)
		if region != "" && c.config.Region != "" && region != c.config.Region {
			continue
		}
		buckets = append(buckets, models.Bucket{
			Name:         aws.ToString(b.Name),
			Region:       region,
			CreationDate: aws.ToTime(b.CreationDate),
		})
	}

	slices.SortFunc(buckets, func(a, b models.Bucket) int {
		return strings.Compare(a.Name, b.Name)
	})
	return buckets, nil
}

// GetBucketInfo fills the bucket-level fields of a BucketInfo. Object
// statistics are computed by the caller from a listing.
func (c *Client) GetBucketInfo(ctx context.Context) (*models.BucketInfo, error) {
	bucketName := c.config.BucketName

	locationResp, err := c.s3Client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket location: %w", err)
	}

	region := string(locationResp.LocationConstraint)
	if region == "" {
		region = c.config.Region // Use configured region as fallback
	}

	bucketsResp, err := c.s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	info := &models.BucketInfo{
		BucketName:  bucketName,
		Region:      region,
		APIEndpoint: c.config.ApiURL,
	}
	for _, bucket := range bucketsResp.Buckets {
		if aws.ToString(bucket.Name) == bucketName {
			info.CreationDate = aws.ToTime(bucket.CreationDate)
			break
		}
	}
	return info, nil
}

// Download writes the object at key to w and returns the bytes written.
func (c *Client) Download(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	n, err := c.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return n, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return n, nil
}

// GetObjectText reads at most limit bytes of the object at key. truncated
// reports whether the object was longer than limit. A cut never splits a
// UTF-8 sequence.
func (c *Client) GetObjectText(ctx context.Context, key string, limit int64) (text string, truncated bool, err error) {
	if limit <= 0 {
		return "", false, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	resp, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", false, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	if int64(len(data)) > limit {
		return string(trimPartialRune(data[:limit])), true, nil
	}
	return string(data), false, nil
}

// trimPartialRune drops an incomplete UTF-8 sequence from the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}
		if !utf8.FullRune(b[start:]) {
			return b[:start]
		}
		return b
	}
	return b
}

// DeleteObjects removes keys in batches. Keys the store refused are returned
// as failures; a failed request aborts the remaining batches.
func (c *Client) DeleteObjects(ctx context.Context, keys []string) ([]string, []models.DeleteFailure, error) {
	var deleted []string
	var failures []models.DeleteFailure

	for i := 0; i < len(keys); i += deleteBatchSize {
		end := min(i+deleteBatchSize, len(keys))

		batch := make([]types.ObjectIdentifier, 0, end-i)
		for _, key := range keys[i:end] {
			batch = append(batch, types.ObjectIdentifier{Key: aws.String(key)})
		}

		resp, err := c.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.config.BucketName),
			Delete: &types.Delete{
				Objects: batch,
			},
		})
		if err != nil {
			return deleted, failures, fmt.Errorf("failed to delete objects batch: %w", err)
		}

		for _, d := range resp.Deleted {
			deleted = append(deleted, aws.ToString(d.Key))
		}
		for _, e := range resp.Errors {
			failures = append(failures, models.DeleteFailure{
				Key:     aws.ToString(e.Key),
				Code:    aws.ToString(e.Code),
				Message: aws.ToString(e.Message),
			})
		}
	}

	return deleted, failures, nil
}
