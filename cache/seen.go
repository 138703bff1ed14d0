// Package cache keeps a short-lived record of URLs handled by earlier runs.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "newsreel:seen:"

// SeenURLs is a Redis-backed set of article URLs already enriched. A nil
// receiver is valid and disables the cache, so the pipeline works without
// Redis configured.
type SeenURLs struct {
	client *redis.Client
	ttl    time.Duration
}

// Config wires the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewSeenURLs connects to Redis. A failed ping is logged and returns a nil
// cache rather than an error: the cache is an optimization, not a dependency.
func NewSeenURLs(cfg Config) *SeenURLs {
	if cfg.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[cache] redis unavailable: %v (seen-URL cache disabled)", err)
		return nil
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SeenURLs{client: rdb, ttl: ttl}
}

// Seen reports whether the URL was marked by a previous run.
func (s *SeenURLs) Seen(ctx context.Context, url string) bool {
	if s == nil || url == "" {
		return false
	}
	n, err := s.client.Exists(ctx, keyPrefix+url).Result()
	if err != nil {
		log.Printf("[cache] seen check failed for %s: %v", url, err)
		return false
	}
	return n > 0
}

// Mark records the URL with the configured TTL.
func (s *SeenURLs) Mark(ctx context.Context, url string) {
	if s == nil || url == "" {
		return
	}
	if err := s.client.Set(ctx, keyPrefix+url, "1", s.ttl).Err(); err != nil {
		log.Printf("[cache] mark failed for %s: %v", url, err)
	}
}

// Close releases the Redis connection.
func (s *SeenURLs) Close() error {
	if s == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
