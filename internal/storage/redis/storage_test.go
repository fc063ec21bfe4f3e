package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorepad/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSetAndGet() {
	err := s.storage.Set(s.ctx, "customGames", []byte(`[{"id":"g1"}]`))
	s.Require().NoError(err)

	value, err := s.storage.Get(s.ctx, "customGames")
	s.Require().NoError(err)
	s.Equal(`[{"id":"g1"}]`, string(value))
}

func (s *StorageSuite) TestGetNotFound() {
	_, err := s.storage.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestKeysArePrefixed() {
	_ = s.storage.Set(s.ctx, "gameSessions", []byte("[]"))

	value, err := s.mini.Get("scorepad:gameSessions")
	s.Require().NoError(err)
	s.Equal("[]", value)
}

func (s *StorageSuite) TestCustomPrefix() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "other"
	store := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)
	defer store.Close()

	_ = store.Set(s.ctx, "customGames", []byte("[]"))

	s.True(s.mini.Exists("other:customGames"))
	s.False(s.mini.Exists("scorepad:customGames"))
}

func (s *StorageSuite) TestValuesHaveNoTTL() {
	_ = s.storage.Set(s.ctx, "customGames", []byte("[]"))

	s.Equal(time.Duration(0), s.mini.TTL("scorepad:customGames"))
}

func (s *StorageSuite) TestDelete() {
	_ = s.storage.Set(s.ctx, "key", []byte("v"))

	s.Require().NoError(s.storage.Delete(s.ctx, "key"))

	_, err := s.storage.Get(s.ctx, "key")
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestGetFailsWhenServerDown() {
	s.mini.Close()

	_, err := s.storage.Get(s.ctx, "key")
	s.Error(err)
	s.NotErrorIs(err, model.ErrKeyNotFound)
}

func (s *StorageSuite) TestNewFailsOnBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not a url"

	_, err := New(cfg)
	s.Error(err)
}

func (s *StorageSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(cfg)
	s.Require().NoError(err)
	defer store.Close()

	s.Require().NoError(store.Set(s.ctx, "key", []byte("v")))
	value, err := store.Get(s.ctx, "key")
	s.Require().NoError(err)
	s.Equal("v", string(value))
}
