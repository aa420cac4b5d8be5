// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrCacheMiss = errors.New("cache miss")
)

const defaultLocalCacheSize = 128

var rdb *redis.Client
var cache *lru.Cache

// SetupCache creates the local LRU response cache and, when `cache.redis`
// is set, a shared redis client. Values are lz4 compressed in both tiers.
func SetupCache() error {
	var err error
	rdb = nil

	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			return err
		}

		rdb = redis.NewClient(opt)
	}

	size := viper.GetInt("cache.local_size")
	if size <= 0 {
		size = defaultLocalCacheSize
	}

	cache, err = lru.New(size)
	if err != nil {
		log.Error().Err(err).Int("Size", size).Msg("could not create LRU cache")
		return err
	}
	return nil
}

func cacheTTL() time.Duration {
	return time.Duration(viper.GetInt("cache.ttl")) * time.Second
}

// CacheSet stores a value. Calling CacheSet before SetupCache is a no-op.
func CacheSet(ctx context.Context, key string, data []byte) error {
	if cache == nil {
		return nil
	}

	compressed, err := Compress(data)
	if err != nil {
		return err
	}
	cache.Add(key, compressed)

	if rdb != nil {
		return rdb.Set(ctx, key, compressed, cacheTTL()).Err()
	}
	return nil
}

// CacheGet returns a stored value, checking the local LRU before redis.
// Missing keys return ErrCacheMiss.
func CacheGet(ctx context.Context, key string) ([]byte, error) {
	if cache == nil {
		return nil, ErrCacheMiss
	}

	if val, ok := cache.Get(key); ok {
		return Decompress(val.([]byte))
	}

	if rdb != nil {
		val, err := rdb.GetEx(ctx, key, cacheTTL()).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		if err != nil {
			return nil, err
		}
		cache.Add(key, val)
		return Decompress(val)
	}

	return nil, ErrCacheMiss
}
