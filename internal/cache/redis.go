package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskpad/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// TaskCache stores each user's task list in Redis under its own key, so
// invalidation on a write touches only the owning user.
type TaskCache struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		TTL:          5 * time.Minute,
	}
}

func NewTaskCache(config *Config) *TaskCache {
	if config == nil {
		config = DefaultConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return NewTaskCacheWithClient(rdb, config.TTL)
}

// NewTaskCacheWithClient wraps an existing client; tests use this with
// miniredis.
func NewTaskCacheWithClient(client *redis.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TaskCache{client: client, ttl: ttl}
}

func userTasksKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s", ownerID.String())
}

func (c *TaskCache) GetUserTasks(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	data, err := c.client.Get(ctx, userTasksKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached tasks: %w", err)
	}
	return tasks, nil
}

func (c *TaskCache) SetUserTasks(ctx context.Context, ownerID uuid.UUID, tasks []models.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return c.client.Set(ctx, userTasksKey(ownerID), data, c.ttl).Err()
}

func (c *TaskCache) InvalidateUser(ctx context.Context, ownerID uuid.UUID) error {
	return c.client.Del(ctx, userTasksKey(ownerID)).Err()
}

func (c *TaskCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TaskCache) Close() error {
	return c.client.Close()
}
