// Package tokenstore remembers revoked auth tokens until they expire.
package tokenstore

import (
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/log"
	"context"
	"errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"sync"
	"time"
)

const keyPrefix = "foodgram:revoked:"

type (
	TokenStore interface {
		Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
		IsRevoked(ctx context.Context, tokenID string) (bool, error)
		// Claim revokes tokenID and reports whether this call did it. Only
		// one of several concurrent claims of the same id succeeds.
		Claim(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	}

	redisStore struct {
		client *redis.Client
	}

	memoryStore struct {
		mu      sync.Mutex
		revoked map[string]time.Time
		now     func() time.Time
	}
)

func NewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     utils.GetConfig("REDIS_ADDR"),
		Password: utils.GetConfig("REDIS_PASSWORD"),
		DB:       utils.GetConfigInt("REDIS_DB", 0),
	})
	if _, err := client.Ping(context.TODO()).Result(); err != nil {
		log.L.Fatal("connect redis error", zap.Error(err))
	}
	log.L.Info("redis client success")
	return client
}

// New picks the redis store when REDIS_ADDR is configured and the process
// local store otherwise.
func New() TokenStore {
	if utils.GetConfig("REDIS_ADDR") == "" {
		log.L.Warn("REDIS_ADDR is empty, revoked tokens are kept in memory")
		return NewMemoryStore()
	}
	return NewRedisStore(NewRedisClient())
}

func NewRedisStore(client *redis.Client) TokenStore {
	return &redisStore{client: client}
}

func (s *redisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err()
}

func (s *redisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, keyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisStore) Claim(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return s.client.SetNX(ctx, keyPrefix+tokenID, 1, ttl).Result()
}

func NewMemoryStore() TokenStore {
	return &memoryStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *memoryStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(s.now())
	s.revoked[tokenID] = s.now().Add(ttl)
	return nil
}

func (s *memoryStore) Claim(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)
	if _, ok := s.revoked[tokenID]; ok {
		return false, nil
	}
	s.revoked[tokenID] = now.Add(ttl)
	return true, nil
}

// prune drops expired entries. The caller holds mu.
func (s *memoryStore) prune(now time.Time) {
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
		}
	}
}

func (s *memoryStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
