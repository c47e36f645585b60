package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// CacheService caches evaluation results in redis, keyed by schedule
// id, schedule version, a hash of the games, and a hash of the
// constraint set, so an accepted modification, a different inline
// schedule, or a changed set naturally misses.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("key not found")
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

func (s *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache: %w", err)
	}
	return val > 0, nil
}

// EvaluationKey builds the cache key for one evaluation request. The
// game content is fingerprinted alongside id and version: inline
// schedules arrive with neither, and two different inline schedules
// must never share a key.
func EvaluationKey(schedule *models.Schedule, set models.ConstraintSet) string {
	return fmt.Sprintf("eval:%s:v%d:%s:%s", schedule.ID, schedule.Version, HashSchedule(schedule), HashConstraintSet(set))
}

// HashSchedule fingerprints a schedule's games.
func HashSchedule(schedule *models.Schedule) string {
	data, err := json.Marshal(schedule.Games)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// HashConstraintSet fingerprints a constraint set. Sets are sorted
// by id before they reach here, so equal sets hash equal.
func HashConstraintSet(set models.ConstraintSet) string {
	data, err := json.Marshal(set)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
