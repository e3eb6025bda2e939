package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 500 * time.Millisecond

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

// * LimitCounter returns a sliding-window counter for httprate shared by every
// instance that points at the same Redis. Keys start with prefix as given.
func (r *RedisRepo) LimitCounter(prefix string) httprate.LimitCounter {
	return &limitCounter{client: r.client, prefix: prefix}
}

// * Close closes the connection pool.
func (r *RedisRepo) Close() {
	_ = r.client.Close()
}

type limitCounter struct {
	client       *redis.Client
	prefix       string
	windowLength time.Duration
}

var _ httprate.LimitCounter = (*limitCounter)(nil)

func (c *limitCounter) Config(_ int, windowLength time.Duration) {
	c.windowLength = windowLength
}

func (c *limitCounter) key(key string, window time.Time) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, window.Unix(), key)
}

func (c *limitCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c *limitCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	const op = "storage.redis.IncrementBy"

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	k := c.key(key, currentWindow)

	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, k, int64(amount))
	pipe.Expire(ctx, k, 3*c.windowLength)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *limitCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	const op = "storage.redis.Get"

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	values, err := c.client.MGet(ctx, c.key(key, currentWindow), c.key(key, previousWindow)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(values) != 2 {
		return 0, 0, fmt.Errorf("%s: %w", op, errors.New("unexpected reply length"))
	}

	curr, err := toInt(values[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	prev, err := toInt(values[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	return curr, prev, nil
}

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.Atoi(val)
	case int64:
		return int(val), nil
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}
