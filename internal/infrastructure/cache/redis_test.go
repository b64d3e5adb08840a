//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/narwhalmedia/catalogd/internal/infrastructure/cache"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

type RedisCacheTestSuite struct {
	suite.Suite

	ctx       context.Context
	container testcontainers.Container
	cache     *cache.RedisCache
}

func (s *RedisCacheTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	addr, err := container.Endpoint(s.ctx, "")
	s.Require().NoError(err)

	client, err := cache.Dial(s.ctx, addr, "", 0)
	s.Require().NoError(err)
	s.cache = cache.NewRedisCache(client, "catalogd:test:")
}

func (s *RedisCacheTestSuite) TearDownSuite() {
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *RedisCacheTestSuite) SetupTest() {
	s.Require().NoError(s.cache.Clear(s.ctx))
}

func TestRedisCacheTestSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}

func (s *RedisCacheTestSuite) TestSetGetWithoutExpiry() {
	s.Require().NoError(s.cache.Set(s.ctx, "enrichment:paused", "1", 0))

	v, err := s.cache.Get(s.ctx, "enrichment:paused")
	s.Require().NoError(err)
	s.Equal("1", v)

	ttl, err := s.cache.TTL(s.ctx, "enrichment:paused")
	s.Require().NoError(err)
	s.Zero(ttl)
}

func (s *RedisCacheTestSuite) TestTTLIsApplied() {
	s.Require().NoError(s.cache.Set(s.ctx, "enrichment:rate", 12, 300*time.Second))

	v, err := s.cache.Get(s.ctx, "enrichment:rate")
	s.Require().NoError(err)
	s.Equal("12", v)

	ttl, err := s.cache.TTL(s.ctx, "enrichment:rate")
	s.Require().NoError(err)
	s.InDelta(300, ttl.Seconds(), 2)
}

func (s *RedisCacheTestSuite) TestMissingKey() {
	_, err := s.cache.Get(s.ctx, "absent")
	s.ErrorIs(err, interfaces.ErrCacheMiss)

	_, err = s.cache.TTL(s.ctx, "absent")
	s.ErrorIs(err, interfaces.ErrCacheMiss)

	ok, err := s.cache.Exists(s.ctx, "absent")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheTestSuite) TestDeleteAndClear() {
	s.Require().NoError(s.cache.Set(s.ctx, "a", "1", 0))
	s.Require().NoError(s.cache.Set(s.ctx, "b", "2", 0))

	s.Require().NoError(s.cache.Delete(s.ctx, "a"))
	ok, _ := s.cache.Exists(s.ctx, "a")
	s.False(ok)

	s.Require().NoError(s.cache.Clear(s.ctx))
	ok, _ = s.cache.Exists(s.ctx, "b")
	s.False(ok)
}
