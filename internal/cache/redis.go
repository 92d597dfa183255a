package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nflpickem/pool/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TTL constants
const (
	// WeekSnapshotTTL bounds how long a synced week can serve reads
	// before the next sync must hit the feed again.
	WeekSnapshotTTL = 60 * time.Second

	// CurrentWeekTTL covers the last-known-good week pointer. A week
	// lasts seven days; anything older is stale enough to rediscover.
	CurrentWeekTTL = 7 * 24 * time.Hour
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache caches synced week snapshots and the last-known-good
// current week pointer. The worker treats it as optional: when Redis is
// unreachable the caller runs without it.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis client and verifies connectivity
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() {
	if err := c.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing Redis connection")
	}
}

func snapshotKey(week int, seasonType models.SeasonType, year int) string {
	return fmt.Sprintf("pickem:snapshot:%d:%d:%d", year, int(seasonType), week)
}

// StoreWeekSnapshot caches the post-sync game list for a week
func (c *RedisCache) StoreWeekSnapshot(ctx context.Context, week int, seasonType models.SeasonType, year int, games []*models.Game) error {
	data, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("failed to marshal week snapshot: %w", err)
	}

	key := snapshotKey(week, seasonType, year)
	if err := c.client.Set(ctx, key, data, WeekSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to store week snapshot: %w", err)
	}

	return nil
}

// GetWeekSnapshot returns the cached game list for a week, or
// (nil, nil) on a cache miss.
func (c *RedisCache) GetWeekSnapshot(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	key := snapshotKey(week, seasonType, year)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get week snapshot: %w", err)
	}

	var games []*models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal week snapshot: %w", err)
	}

	return games, nil
}

// StoreCurrentWeek persists the last-known-good current week pointer
func (c *RedisCache) StoreCurrentWeek(ctx context.Context, info models.WeekInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal current week: %w", err)
	}

	if err := c.client.Set(ctx, "pickem:current_week", data, CurrentWeekTTL).Err(); err != nil {
		return fmt.Errorf("failed to store current week: %w", err)
	}

	return nil
}

// GetCurrentWeek returns the last-known-good current week pointer, or
// (nil, nil) when none is cached.
func (c *RedisCache) GetCurrentWeek(ctx context.Context) (*models.WeekInfo, error) {
	data, err := c.client.Get(ctx, "pickem:current_week").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current week: %w", err)
	}

	var info models.WeekInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal current week: %w", err)
	}

	return &info, nil
}
