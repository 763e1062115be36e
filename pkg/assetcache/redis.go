// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package assetcache

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a [Store] backed by a redis instance, for deployments
// where several reader instances share one asset cache. Every key
// operation uses the configured prefix as a namespace.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a [RedisStore] using the given client and
// key prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *RedisStore) key(uri string) string {
	return s.prefix + ":" + uri
}

// Get returns the bytes stored for a URL.
func (s *RedisStore) Get(uri string) ([]byte, bool) {
	data, err := s.rdb.Get(context.Background(), s.key(uri)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("asset cache read", slog.String("url", uri), slog.Any("err", err))
		return nil, false
	}
	return data, true
}

// Set stores the bytes for a URL, replacing any previous entry.
func (s *RedisStore) Set(uri string, data []byte) {
	if err := s.rdb.Set(context.Background(), s.key(uri), data, 0).Err(); err != nil {
		slog.Warn("asset cache write", slog.String("url", uri), slog.Any("err", err))
	}
}

// Clear removes every entry under the store's prefix.
func (s *RedisStore) Clear() {
	ctx := context.Background()
	iter := s.rdb.Scan(ctx, 0, s.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("asset cache clear", slog.Any("err", err))
		}
	}
	if err := iter.Err(); err != nil {
		slog.Warn("asset cache clear", slog.Any("err", err))
	}
}
