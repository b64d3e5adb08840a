package scrapers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// S3ClientFactory builds a listing client for a region and optional custom endpoint.
type S3ClientFactory func(ctx context.Context, region, endpoint string) (s3.ListObjectsV2APIClient, error)

// NewS3Client loads the default AWS credential chain. A custom endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, region, endpoint string) (s3.ListObjectsV2APIClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Scraper lists objects under a bucket prefix.
//
// Source config keys: bucket (required), prefix, region (default us-east-1),
// endpoint. Object paths are reported as s3://bucket/key.
type S3Scraper struct {
	source    domain.Source
	bucket    string
	prefix    string
	region    string
	endpoint  string
	newClient S3ClientFactory
	client    s3.ListObjectsV2APIClient
	logger    interfaces.Logger
}

// NewS3Scraper creates an object-store scraper for source.
func NewS3Scraper(source domain.Source, newClient S3ClientFactory, logger interfaces.Logger) (*S3Scraper, error) {
	bucket := configString(source, "bucket", "")
	prefix := configString(source, "prefix", "")

	// base_url may carry the location as s3://bucket/prefix
	if bucket == "" {
		if u, err := url.Parse(source.BaseURL); err == nil && u.Scheme == "s3" {
			bucket = u.Host
			if prefix == "" {
				prefix = strings.TrimPrefix(u.Path, "/")
			}
		}
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 source %q has no bucket", source.Name)
	}
	if newClient == nil {
		newClient = NewS3Client
	}

	return &S3Scraper{
		source:    source,
		bucket:    bucket,
		prefix:    prefix,
		region:    configString(source, "region", "us-east-1"),
		endpoint:  configString(source, "endpoint", ""),
		newClient: newClient,
		logger: logger.WithFields(
			interfaces.String("scraper", "s3"),
			interfaces.String("bucket", bucket)),
	}, nil
}

func (s *S3Scraper) Name() string {
	return s.source.Name + " (s3)"
}

func (s *S3Scraper) TestConnection(ctx context.Context) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Scraper) Crawl(ctx context.Context) ([]File, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var files []File
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return files, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, newFile(fmt.Sprintf("s3://%s/%s", s.bucket, key), obj.Size))
		}
	}

	s.logger.Info("Crawl complete", interfaces.Int("found", len(files)))
	return files, nil
}

func (s *S3Scraper) getClient(ctx context.Context) (s3.ListObjectsV2APIClient, error) {
	if s.client != nil {
		return s.client, nil
	}
	client, err := s.newClient(ctx, s.region, s.endpoint)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}
