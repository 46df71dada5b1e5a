package tempstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

const DefaultKeyPrefix = "glowguide:temp:"

// Redis stores tickets as JSON with a native TTL, so every API replica sees
// the same tickets.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ domain.TempStore = (*Redis)(nil)

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not check redis connectivity: %w", err)
	}
	return NewRedisWithClient(client, opts.KeyPrefix), nil
}

func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(id domain.TempID) string { return r.prefix + string(id) }

func (r *Redis) Put(ctx context.Context, t *domain.TempAnalysis, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode temp analysis: %w", err)
	}
	return r.client.Set(ctx, r.key(t.ID), b, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, id domain.TempID) (*domain.TempAnalysis, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	return decode(b, err)
}

// Take relies on GETDEL so two concurrent claims cannot both win.
func (r *Redis) Take(ctx context.Context, id domain.TempID) (*domain.TempAnalysis, error) {
	b, err := r.client.GetDel(ctx, r.key(id)).Bytes()
	return decode(b, err)
}

func (r *Redis) Delete(ctx context.Context, id domain.TempID) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func decode(b []byte, err error) (*domain.TempAnalysis, error) {
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	var t domain.TempAnalysis
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode temp analysis: %w", err)
	}
	return &t, nil
}
