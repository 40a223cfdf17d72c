// Package cache is the bounded, time-expiring store in front of public menu reads.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores opaque values under string keys. Misses and backend failures
// both read as a miss; callers always have the database to fall back on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, keys ...string)
}

// Memory is an in-process LRU with a fixed TTL per entry.
type Memory struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.lru.Add(key, value)
}

func (m *Memory) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		m.lru.Remove(k)
	}
}

// Redis shares the cache between replicas.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte) {}
func (Nop) Delete(context.Context, ...string) {}

type instrumented struct {
	Cache
	requests *prometheus.CounterVec
}

// WithMetrics counts hits and misses on requests, labelled by result.
func WithMetrics(c Cache, requests *prometheus.CounterVec) Cache {
	if requests == nil {
		return c
	}
	return &instrumented{Cache: c, requests: requests}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := i.Cache.Get(ctx, key)
	if ok {
		i.requests.WithLabelValues("hit").Inc()
	} else {
		i.requests.WithLabelValues("miss").Inc()
	}
	return v, ok
}
