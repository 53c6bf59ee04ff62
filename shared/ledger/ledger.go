package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger records payment references that were already processed
type Ledger interface {
	// Claim marks ref as processed. It returns false when ref was claimed before.
	Claim(ctx context.Context, ref string) (bool, error)
	// Release forgets ref so a later redelivery is processed again.
	Release(ctx context.Context, ref string) error
}

// Options holds Redis ledger settings
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis is a Ledger backed by SET NX with a TTL covering the provider retry window
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisWithClient(client, opts.Prefix, opts.TTL), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *Redis) key(ref string) string {
	return r.prefix + ref
}

// Claim stores the first-processing time under the reference key
func (r *Redis) Claim(ctx context.Context, ref string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(ref), r.now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim reference %s: %w", ref, err)
	}
	return ok, nil
}

// Release deletes the reference key
func (r *Redis) Release(ctx context.Context, ref string) error {
	if err := r.client.Del(ctx, r.key(ref)).Err(); err != nil {
		return fmt.Errorf("failed to release reference %s: %w", ref, err)
	}
	return nil
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

// Nop accepts every reference. Used when the ledger is disabled.
type Nop struct{}

// Claim always succeeds
func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }

// Release does nothing
func (Nop) Release(context.Context, string) error { return nil }
