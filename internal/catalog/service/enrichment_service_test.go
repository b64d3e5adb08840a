package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	"github.com/narwhalmedia/catalogd/internal/catalog/service"
	"github.com/narwhalmedia/catalogd/pkg/events"
	"github.com/narwhalmedia/catalogd/pkg/logger"
	"github.com/narwhalmedia/catalogd/pkg/utils"
	"github.com/narwhalmedia/catalogd/test/testutil"
)

const testBatch = "batch-1"

type EnrichmentServiceTestSuite struct {
	suite.Suite

	ctx      context.Context
	repo     repository.Repository
	bus      *events.InMemoryEventBus
	cache    *utils.InMemoryCache
	control  *service.ControlStore
	primary  *MockMetadataProvider
	fallback *MockMetadataProvider
	service  *service.EnrichmentService
	source   *domain.Source
}

func TestEnrichmentServiceSuite(t *testing.T) {
	suite.Run(t, new(EnrichmentServiceTestSuite))
}

func (s *EnrichmentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	log := logger.NewNoop()

	s.repo = repository.NewGormRepository(testutil.NewSQLiteDB(s.T()))
	s.bus = events.NewInMemoryEventBus(log)
	s.cache = utils.NewInMemoryCache(0)
	s.control = service.NewControlStore(s.cache, time.Minute)
	s.primary = NewMockMetadataProvider("tmdb")
	s.fallback = NewMockMetadataProvider("omdb")

	parser := domain.NewFilenameParser(domain.WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	fetcher := domain.NewMetadataFetcher(log, s.primary, s.fallback)
	catalog := service.NewCatalogService(s.repo, s.bus, 80, log)
	s.service = service.NewEnrichmentService(s.repo, parser, fetcher, catalog, s.control, s.bus, log)

	s.source = testutil.CreateTestSource("Dflix")
	s.Require().NoError(s.repo.CreateSource(s.ctx, s.source))
}

func (s *EnrichmentServiceTestSuite) TearDownTest() {
	s.bus.Stop()
	s.cache.Close()
}

// seed inserts filenames in order under testBatch and returns them newest first.
func (s *EnrichmentServiceTestSuite) seed(filenames ...string) []*domain.ShadowEntry {
	entries := make([]*domain.ShadowEntry, 0, len(filenames))
	for _, name := range filenames {
		entries = append(entries, testutil.CreateTestShadowEntry(s.source.ID, testBatch, name))
	}
	n, err := s.repo.InsertShadowEntries(s.ctx, entries, 100)
	s.Require().NoError(err)
	s.Require().Equal(len(filenames), n)

	pending, err := s.repo.ListPendingByBatch(s.ctx, testBatch)
	s.Require().NoError(err)
	return pending
}

func (s *EnrichmentServiceTestSuite) status(id uint) domain.EnrichmentStatus {
	entry, err := s.repo.GetShadowEntry(s.ctx, id)
	s.Require().NoError(err)
	return entry.Status
}

func (s *EnrichmentServiceTestSuite) TestEnrichMatchedMovie() {
	// Arrange
	entry := s.seed("Inception.2010.1080p.BluRay.x264.mkv")[0]
	s.primary.On("Search", mock.Anything, mock.MatchedBy(func(q domain.MetadataQuery) bool {
		return q.Title == "Inception" && q.Year != nil && *q.Year == 2010 && q.Kind == domain.KindMovie
	})).Run(func(mock.Arguments) {
		s.Equal(domain.StatusProcessing, s.status(entry.ID))
	}).Return(testutil.CreateTestMetadata(27205, "Inception", 2010), nil)

	// Act
	status, err := s.service.Enrich(s.ctx, entry)

	// Assert
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, status)
	s.Equal(domain.StatusCompleted, s.status(entry.ID))

	content, err := s.repo.FindContentByTMDbID(s.ctx, 27205)
	s.Require().NoError(err)
	s.Equal(domain.CatalogCompleted, content.EnrichmentStatus)
	s.Equal(float64(100), content.ConfidenceScore)

	s.primary.AssertExpectations(s.T())
	s.fallback.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *EnrichmentServiceTestSuite) TestLowConfidenceMatchIsFlagged() {
	// Arrange
	entry := s.seed("The.Dark.Knight.2008.720p.mkv")[0]
	s.primary.On("Search", mock.Anything, titleQuery("The Dark Knight")).
		Return(testutil.CreateTestMetadata(272, "Batman Begins", 2005), nil)

	// Act
	status, err := s.service.Enrich(s.ctx, entry)

	// Assert
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, status)

	content, err := s.repo.FindContentByTMDbID(s.ctx, 272)
	s.Require().NoError(err)
	s.Equal(domain.CatalogFlagged, content.EnrichmentStatus)
	s.False(content.IsPublished)
	s.Less(content.ConfidenceScore, float64(80))
}

func (s *EnrichmentServiceTestSuite) TestNoMatchIsUnmatched() {
	// Arrange
	entry := s.seed("Some.Home.Video.2011.mkv")[0]
	s.primary.On("Search", mock.Anything, mock.Anything).Return(nil, nil)
	s.fallback.On("Search", mock.Anything, mock.Anything).Return(nil, nil)

	// Act
	status, err := s.service.Enrich(s.ctx, entry)

	// Assert
	s.Require().NoError(err)
	s.Equal(domain.StatusUnmatched, status)
	s.Equal(domain.StatusUnmatched, s.status(entry.ID))

	count, err := s.repo.CountCatalogEntries(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *EnrichmentServiceTestSuite) TestEmptyTitleFailsWithoutLookup() {
	// Arrange
	entry := s.seed("BluRay.x264.mkv")[0]

	// Act
	status, err := s.service.Enrich(s.ctx, entry)

	// Assert
	s.Require().NoError(err)
	s.Equal(domain.StatusFailed, status)
	s.Equal(domain.StatusFailed, s.status(entry.ID))
	s.primary.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
	s.fallback.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *EnrichmentServiceTestSuite) TestPrimaryFailureFallsBack() {
	// Arrange
	entry := s.seed("Dune.2021.2160p.WEB-DL.mkv")[0]
	s.primary.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("tmdb: 503"))
	md := testutil.CreateTestMetadata(438631, "Dune", 2021)
	md.Provider = "omdb"
	s.fallback.On("Search", mock.Anything, titleQuery("Dune")).Return(md, nil)

	// Act
	status, err := s.service.Enrich(s.ctx, entry)

	// Assert
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, status)
	s.primary.AssertExpectations(s.T())
	s.fallback.AssertExpectations(s.T())
}

func (s *EnrichmentServiceTestSuite) TestPanicMarksEntryFailed() {
	// Arrange
	entry := s.seed("Inception.2010.mkv")[0]
	s.primary.On("Search", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("decoder exploded") }).
		Return(nil, nil)

	// Act
	status, err := s.service.Enrich(s.ctx, entry)

	// Assert
	s.Require().NoError(err)
	s.Equal(domain.StatusFailed, status)
	s.Equal(domain.StatusFailed, s.status(entry.ID))
}

func (s *EnrichmentServiceTestSuite) TestCancelledContextReturnsEntryToPending() {
	// Arrange
	entries := s.seed("Inception.2010.mkv", "Dune.2021.mkv")
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.primary.On("Search", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled).Once()

	// Act
	result, err := s.service.RunBatch(ctx, testBatch)

	// Assert
	s.ErrorIs(err, context.Canceled)
	s.Require().NotNil(result)
	s.Zero(result.Processed)
	for _, e := range entries {
		s.Equal(domain.StatusPending, s.status(e.ID))
	}
	s.fallback.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *EnrichmentServiceTestSuite) TestRunBatchProcessesNewestFirst() {
	// Arrange
	s.seed("Alpha.2001.mkv", "Bravo.2002.mkv", "Charlie.2003.mkv")
	var order []string
	s.primary.On("Search", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			order = append(order, args.Get(1).(domain.MetadataQuery).Title)
		}).
		Return(nil, nil)
	s.fallback.On("Search", mock.Anything, mock.Anything).Return(nil, nil)

	// Act
	result, err := s.service.RunBatch(s.ctx, testBatch)

	// Assert
	s.Require().NoError(err)
	s.Equal(3, result.Processed)
	s.Equal([]string{"Charlie", "Bravo", "Alpha"}, order)
}

func (s *EnrichmentServiceTestSuite) TestRunBatchRecordsTotals() {
	// Arrange
	s.seed("Inception.2010.mkv", "Dune.2021.mkv", "Unknown.Thing.2011.mkv")
	scanLog := &domain.ScanLog{
		ID:         uuid.New(),
		SourceID:   s.source.ID,
		Phase:      domain.PhaseCollector,
		Status:     domain.ScanCompleted,
		ItemsFound: 3,
		StartedAt:  time.Now().UTC(),
	}
	s.Require().NoError(s.repo.CreateScanLog(s.ctx, scanLog))

	s.primary.On("Search", mock.Anything, titleQuery("Inception")).
		Return(testutil.CreateTestMetadata(27205, "Inception", 2010), nil)
	s.primary.On("Search", mock.Anything, titleQuery("Dune")).
		Return(testutil.CreateTestMetadata(438631, "Dune", 2021), nil)
	s.primary.On("Search", mock.Anything, mock.Anything).Return(nil, nil)
	s.fallback.On("Search", mock.Anything, mock.Anything).Return(nil, nil)

	// Act
	result, err := s.service.RunBatch(s.ctx, testBatch)

	// Assert
	s.Require().NoError(err)
	s.Equal(&service.BatchResult{BatchID: testBatch, Processed: 3, Matched: 2, Failed: 1}, result)

	latest, err := s.repo.LatestScanLog(s.ctx, s.source.ID, domain.PhaseCollector)
	s.Require().NoError(err)
	s.Equal(3, latest.ItemsFound)
	s.Equal(2, latest.ItemsMatched)
	s.Equal(1, latest.ItemsFailed)

	processed, err := s.control.LastProcessed(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, processed)

	counts, err := s.repo.CountByBatchStatus(s.ctx, testBatch)
	s.Require().NoError(err)
	s.Equal(int64(2), counts[domain.StatusCompleted])
	s.Equal(int64(1), counts[domain.StatusUnmatched])
}

func (s *EnrichmentServiceTestSuite) TestRunBatchSharesCatalogEntryAcrossFiles() {
	// Arrange
	s.seed("Inception.2010.720p.mkv", "Inception.2010.1080p.BluRay.mkv")
	s.primary.On("Search", mock.Anything, titleQuery("Inception")).
		Return(testutil.CreateTestMetadata(27205, "Inception", 2010), nil)

	// Act
	result, err := s.service.RunBatch(s.ctx, testBatch)

	// Assert
	s.Require().NoError(err)
	s.Equal(2, result.Matched)

	count, err := s.repo.CountCatalogEntries(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	content, err := s.repo.FindContentByTMDbID(s.ctx, 27205)
	s.Require().NoError(err)
	links, err := s.repo.ListSourceLinks(s.ctx, domain.LinkableContent, content.ID)
	s.Require().NoError(err)
	s.Len(links, 2)
}

func (s *EnrichmentServiceTestSuite) TestPausedBeforeBatchDoesNothing() {
	// Arrange
	entries := s.seed("Inception.2010.mkv", "Dune.2021.mkv")
	s.Require().NoError(s.control.Pause(s.ctx))

	// Act
	result, err := s.service.RunBatch(s.ctx, testBatch)

	// Assert
	s.Require().NoError(err)
	s.True(result.Paused)
	s.Zero(result.Processed)
	for _, e := range entries {
		s.Equal(domain.StatusPending, s.status(e.ID))
	}
	s.primary.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *EnrichmentServiceTestSuite) TestPauseMidBatchStopsAfterCurrentEntry() {
	// Arrange
	s.seed("Alpha.2001.mkv", "Bravo.2002.mkv", "Charlie.2003.mkv")
	s.primary.On("Search", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			s.Require().NoError(s.control.Pause(context.Background()))
		}).
		Return(nil, nil)
	s.fallback.On("Search", mock.Anything, mock.Anything).Return(nil, nil)

	// Act
	result, err := s.service.RunBatch(s.ctx, testBatch)

	// Assert
	s.Require().NoError(err)
	s.True(result.Paused)
	s.Equal(1, result.Processed)
	s.primary.AssertNumberOfCalls(s.T(), "Search", 1)

	counts, err := s.repo.CountByBatchStatus(s.ctx, testBatch)
	s.Require().NoError(err)
	s.Equal(int64(2), counts[domain.StatusPending])
	s.Equal(int64(1), counts[domain.StatusUnmatched])

	// Resuming picks up the rest.
	s.Require().NoError(s.control.Resume(s.ctx))
	s.primary.ExpectedCalls = nil
	s.primary.On("Search", mock.Anything, mock.Anything).Return(nil, nil)

	result, err = s.service.RunBatch(s.ctx, testBatch)
	s.Require().NoError(err)
	s.False(result.Paused)
	s.Equal(2, result.Processed)
}

func (s *EnrichmentServiceTestSuite) TestRunBatchPublishesSummary() {
	// Arrange
	handler := &recordingHandler{eventType: domain.EventBatchEnriched}
	s.Require().NoError(s.bus.Subscribe(handler.EventType(), handler))
	s.seed("Inception.2010.mkv")
	s.primary.On("Search", mock.Anything, mock.Anything).
		Return(testutil.CreateTestMetadata(27205, "Inception", 2010), nil)

	// Act
	_, err := s.service.RunBatch(s.ctx, testBatch)
	s.Require().NoError(err)
	s.bus.Stop()

	// Assert
	got := handler.Events()
	s.Require().Len(got, 1)
	event := got[0].(*domain.BatchEnrichedEvent)
	s.Equal(testBatch, event.BatchID)
	s.Equal(1, event.Processed)
	s.Equal(1, event.Matched)
	s.False(event.Paused)
}

func (s *EnrichmentServiceTestSuite) TestRunBatchUnknownBatch() {
	// Act
	result, err := s.service.RunBatch(s.ctx, "no-such-batch")

	// Assert
	s.Nil(result)
	s.ErrorIs(err, domain.ErrBatchNotFound)
}

func (s *EnrichmentServiceTestSuite) TestRequeueMovesFailedAndUnmatched() {
	// Arrange
	entries := s.seed("Alpha.2001.mkv", "Bravo.2002.mkv", "Charlie.2003.mkv")
	s.Require().NoError(s.repo.UpdateShadowStatus(s.ctx, entries[0].ID, domain.StatusFailed))
	s.Require().NoError(s.repo.UpdateShadowStatus(s.ctx, entries[1].ID, domain.StatusUnmatched))
	s.Require().NoError(s.repo.UpdateShadowStatus(s.ctx, entries[2].ID, domain.StatusCompleted))

	// Act
	newBatch, n, err := s.service.Requeue(s.ctx, testBatch)

	// Assert
	s.Require().NoError(err)
	s.Equal(int64(2), n)
	s.NotEqual(testBatch, newBatch)

	pending, err := s.repo.ListPendingByBatch(s.ctx, newBatch)
	s.Require().NoError(err)
	s.Len(pending, 2)

	sourceID, err := s.repo.BatchSourceID(s.ctx, newBatch)
	s.Require().NoError(err)
	s.Equal(s.source.ID, sourceID)

	s.Equal(domain.StatusCompleted, s.status(entries[2].ID))
}

func (s *EnrichmentServiceTestSuite) TestRequeueUnknownBatch() {
	// Act
	_, _, err := s.service.Requeue(s.ctx, "no-such-batch")

	// Assert
	s.ErrorIs(err, domain.ErrBatchNotFound)
}
