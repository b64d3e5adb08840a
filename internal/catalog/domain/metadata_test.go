package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

// MockMetadataProvider is a mock implementation of domain.MetadataProvider.
type MockMetadataProvider struct {
	mock.Mock
	name string
}

func NewMockMetadataProvider(name string) *MockMetadataProvider {
	return &MockMetadataProvider{name: name}
}

func (m *MockMetadataProvider) Name() string {
	return m.name
}

func (m *MockMetadataProvider) Search(ctx context.Context, query domain.MetadataQuery) (*domain.Metadata, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Metadata), args.Error(1)
}

type MetadataFetcherTestSuite struct {
	suite.Suite

	ctx      context.Context
	primary  *MockMetadataProvider
	fallback *MockMetadataProvider
	fetcher  *domain.MetadataFetcher
	query    domain.MetadataQuery
}

func (s *MetadataFetcherTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.primary = NewMockMetadataProvider("tmdb")
	s.fallback = NewMockMetadataProvider("omdb")
	s.fetcher = domain.NewMetadataFetcher(logger.NewNoop(), s.primary, s.fallback)
	year := 2010
	s.query = domain.MetadataQuery{Title: "Inception", Year: &year, Kind: domain.KindMovie}
}

func TestMetadataFetcherTestSuite(t *testing.T) {
	suite.Run(t, new(MetadataFetcherTestSuite))
}

func (s *MetadataFetcherTestSuite) TestPrimaryHitSkipsFallback() {
	// Arrange
	s.primary.On("Search", s.ctx, s.query).Return(&domain.Metadata{Title: "Inception"}, nil)

	// Act
	md, err := s.fetcher.Fetch(s.ctx, s.query)

	// Assert
	s.Require().NoError(err)
	s.Equal("Inception", md.Title)
	s.Equal("tmdb", md.Provider)
	s.fallback.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *MetadataFetcherTestSuite) TestPrimaryMissFallsThrough() {
	s.primary.On("Search", s.ctx, s.query).Return(nil, nil)
	s.fallback.On("Search", s.ctx, s.query).Return(&domain.Metadata{Title: "Inception", Provider: "omdb"}, nil)

	md, err := s.fetcher.Fetch(s.ctx, s.query)

	s.Require().NoError(err)
	s.Equal("omdb", md.Provider)
	s.primary.AssertExpectations(s.T())
	s.fallback.AssertExpectations(s.T())
}

func (s *MetadataFetcherTestSuite) TestProviderErrorIsTreatedAsMiss() {
	s.primary.On("Search", s.ctx, s.query).Return(nil, errors.New("502 bad gateway"))
	s.fallback.On("Search", s.ctx, s.query).Return(&domain.Metadata{Title: "Inception"}, nil)

	md, err := s.fetcher.Fetch(s.ctx, s.query)

	s.Require().NoError(err)
	s.Equal("omdb", md.Provider)
}

func (s *MetadataFetcherTestSuite) TestAllMissReturnsErrNoMatch() {
	s.primary.On("Search", s.ctx, s.query).Return(nil, errors.New("timeout"))
	s.fallback.On("Search", s.ctx, s.query).Return(nil, nil)

	md, err := s.fetcher.Fetch(s.ctx, s.query)

	s.Nil(md)
	s.ErrorIs(err, domain.ErrNoMatch)
}

func (s *MetadataFetcherTestSuite) TestCancelledContextStopsChain() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	md, err := s.fetcher.Fetch(ctx, s.query)

	s.Nil(md)
	s.ErrorIs(err, context.Canceled)
	s.primary.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *MetadataFetcherTestSuite) TestRegisterProviderReplacesByName() {
	replacement := NewMockMetadataProvider("tmdb")
	s.fetcher.RegisterProvider(replacement)

	providers := s.fetcher.Providers()
	s.Len(providers, 2)
	s.Same(replacement, providers[0])
}
