package scrapers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/scrapers"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

type MockListObjectsClient struct {
	mock.Mock
}

func (m *MockListObjectsClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

type S3ScraperTestSuite struct {
	suite.Suite

	ctx    context.Context
	client *MockListObjectsClient
	region string
}

func (s *S3ScraperTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.client = new(MockListObjectsClient)
	s.region = ""
}

func TestS3ScraperTestSuite(t *testing.T) {
	suite.Run(t, new(S3ScraperTestSuite))
}

func (s *S3ScraperTestSuite) newScraper(source domain.Source) *scrapers.S3Scraper {
	scraper, err := scrapers.NewS3Scraper(source, func(ctx context.Context, region, endpoint string) (s3.ListObjectsV2APIClient, error) {
		s.region = region
		return s.client, nil
	}, logger.NewNoop())
	s.Require().NoError(err)
	return scraper
}

func (s *S3ScraperTestSuite) TestCrawlPaginatesAndSkipsFolders() {
	// Arrange
	scraper := s.newScraper(domain.Source{Name: "Archive", BaseURL: "s3://media-archive/movies/", ScraperType: "s3"})
	s.client.On("ListObjectsV2", s.ctx, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("movies/"), Size: aws.Int64(0)},
			{Key: aws.String("movies/Inception.2010.1080p.mkv"), Size: aws.Int64(2048)},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
	}, nil).Once()
	s.client.On("ListObjectsV2", s.ctx, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("movies/Inception.2010.1080p.srt"), Size: aws.Int64(12)},
		},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	// Act
	files, err := scraper.Crawl(s.ctx)

	// Assert
	s.Require().NoError(err)
	s.Require().Len(files, 2)
	s.Equal("s3://media-archive/movies/Inception.2010.1080p.mkv", files[0].Path)
	s.Equal("Inception.2010.1080p.mkv", files[0].Filename)
	s.Equal(int64(2048), *files[0].Size)
	s.Equal("srt", files[1].Extension)
	s.Equal("us-east-1", s.region)
	s.client.AssertExpectations(s.T())
}

func (s *S3ScraperTestSuite) TestConfigOverridesBaseURL() {
	// Arrange
	scraper := s.newScraper(domain.Source{
		Name:   "Archive",
		Config: map[string]string{"bucket": "other", "prefix": "tv/", "region": "eu-west-1"},
	})
	s.client.On("ListObjectsV2", s.ctx, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Bucket) == "other" && aws.ToString(in.Prefix) == "tv/" && aws.ToInt32(in.MaxKeys) == 1
	})).Return(&s3.ListObjectsV2Output{}, nil)

	// Act
	err := scraper.TestConnection(s.ctx)

	// Assert
	s.NoError(err)
	s.Equal("eu-west-1", s.region)
}

func (s *S3ScraperTestSuite) TestCrawlPropagatesListError() {
	// Arrange
	scraper := s.newScraper(domain.Source{Name: "Archive", BaseURL: "s3://media-archive"})
	s.client.On("ListObjectsV2", s.ctx, mock.Anything).Return(nil, errors.New("access denied"))

	// Act
	_, err := scraper.Crawl(s.ctx)

	// Assert
	s.ErrorContains(err, "access denied")
}

func (s *S3ScraperTestSuite) TestMissingBucket() {
	// Act
	_, err := scrapers.NewS3Scraper(domain.Source{Name: "Broken", BaseURL: "http://example.com"}, nil, logger.NewNoop())

	// Assert
	s.Error(err)
}
