package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"insighthub/internal/models"
)

// Redis stores snapshots as JSON strings under keys namespaced by profile,
// e.g. insighthub:<profile>:projects.
type Redis struct {
	rdb     *redis.Client
	profile string
	ttl     time.Duration
}

// NewRedis builds a Redis cache. ttl of zero keeps snapshots forever.
func NewRedis(opts *redis.Options, profile string, ttl time.Duration) (*Redis, error) {
	if profile == "" {
		return nil, fmt.Errorf("cache profile cannot be empty")
	}
	return &Redis{rdb: redis.NewClient(opts), profile: profile, ttl: ttl}, nil
}

// NewRedisFromURL parses a redis:// URL.
func NewRedisFromURL(rawURL, profile string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(opts, profile, ttl)
}

func (r *Redis) Close() error { return r.rdb.Close() }

func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// Key returns the namespaced key for a snapshot kind.
func Key(profile, kind string) string {
	return fmt.Sprintf("insighthub:%s:%s", profile, kind)
}

func (r *Redis) LoadProjects(ctx context.Context) ([]models.ProjectRecord, error) {
	out := []models.ProjectRecord{}
	if err := r.get(ctx, "projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Redis) StoreProjects(ctx context.Context, records []models.ProjectRecord) error {
	if records == nil {
		records = []models.ProjectRecord{}
	}
	return r.set(ctx, "projects", records)
}

func (r *Redis) LoadGoals(ctx context.Context) ([]models.GoalRecord, error) {
	out := []models.GoalRecord{}
	if err := r.get(ctx, "goals", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Redis) StoreGoals(ctx context.Context, records []models.GoalRecord) error {
	if records == nil {
		records = []models.GoalRecord{}
	}
	return r.set(ctx, "goals", records)
}

func (r *Redis) get(ctx context.Context, kind string, out any) error {
	raw, err := r.rdb.Get(ctx, Key(r.profile, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read %s snapshot: %w", kind, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s snapshot: %w", kind, err)
	}
	return nil
}

func (r *Redis) set(ctx context.Context, kind string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}
	if err := r.rdb.Set(ctx, Key(r.profile, kind), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", kind, err)
	}
	return nil
}
