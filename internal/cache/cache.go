package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalysisCache provides Redis-backed caching of LLM critiques so identical
// (description, tone, persona) requests skip the model call.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns an AnalysisCache.
func New(addr, password string, db int, ttl time.Duration) (*AnalysisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &AnalysisCache{client: client, ttl: ttl}, nil
}

// Get retrieves a cached analysis, returning ok=false on miss or any error.
func (c *AnalysisCache) Get(ctx context.Context, description, tone, persona string) (string, bool) {
	val, err := c.client.Get(ctx, Key(description, tone, persona)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores an analysis with the configured TTL.
func (c *AnalysisCache) Set(ctx context.Context, description, tone, persona, analysis string) error {
	return c.client.Set(ctx, Key(description, tone, persona), analysis, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *AnalysisCache) Close() error {
	return c.client.Close()
}

// Key derives a stable cache key from the analysis inputs. The description
// is hashed; tone and persona stay readable for debugging.
func Key(description, tone, persona string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(description)))
	return fmt.Sprintf("dejargon:analysis:%s:%s:%x", tone, persona, hash[:12])
}
