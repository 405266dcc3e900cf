// Package redis provides Redis-backed adapters: a thread checkpointer and a distributed locker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the checkpointer and the locker.
// Under a prefix, checkpoints live at "thread:<id>", the index at "index" and
// locks at "lock:<id>", so no thread id can collide with another key.
const DefaultPrefix = "harbor:"

// Checkpointer implements ports.Checkpointer using Redis.
// Checkpoints are stored as JSON; thread ids are indexed in a sorted set scored by expiry.
type Checkpointer struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Checkpointer)

// WithTTL sets the expiration for checkpoints.
func WithTTL(ttl time.Duration) Option {
	return func(c *Checkpointer) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for checkpoints.
func WithPrefix(prefix string) Option {
	return func(c *Checkpointer) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// New creates a Redis checkpointer with its own client.
func New(address, password string, db int, opts ...Option) *Checkpointer {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis checkpointer from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Checkpointer {
	c := &Checkpointer{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (c *Checkpointer) Client() *backend.Client {
	return c.client
}

func (c *Checkpointer) key(thread string) string {
	return c.prefix + "thread:" + thread
}

func (c *Checkpointer) indexKey() string {
	return c.prefix + "index"
}

// Save persists the checkpoint to Redis.
func (c *Checkpointer) Save(ctx context.Context, cp *ports.Checkpoint) error {
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	// Score = expiry. Without TTL the member never expires.
	score := float64(time.Now().Add(c.ttl).Unix())
	if c.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(cp.Thread), data, c.ttl)
	pipe.ZAdd(ctx, c.indexKey(), backend.Z{Score: score, Member: cp.Thread})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the checkpoint from Redis.
func (c *Checkpointer) Load(ctx context.Context, thread string) (*ports.Checkpoint, error) {
	val, err := c.client.Get(ctx, c.key(thread)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var cp ports.Checkpoint
	if err := json.Unmarshal(val, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint and its index entry.
func (c *Checkpointer) Delete(ctx context.Context, thread string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(thread))
	pipe.ZRem(ctx, c.indexKey(), thread)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns threads with a live checkpoint, pruning expired index entries first.
func (c *Checkpointer) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := c.client.ZRemRangeByScore(ctx, c.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired threads: %w", err)
	}

	threads, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

// Close closes the redis client.
func (c *Checkpointer) Close() error {
	return c.client.Close()
}
