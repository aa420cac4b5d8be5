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

package asset

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
)

// Source supplies a loaded catalog
type Source interface {
	Catalog() (*Catalog, error)
}

// Loader reads the catalog file on every call. Parsed catalogs are kept in
// an LRU keyed by the BLAKE3 digest of the file contents, so an unchanged
// file is only decoded once while edits are always picked up.
type Loader struct {
	Path  string
	cache *lru.Cache
}

const loaderCacheSize = 8

func NewLoader(path string) *Loader {
	cache, err := lru.New(loaderCacheSize)
	if err != nil {
		// only fails for a non-positive size
		log.Panic().Err(err).Msg("could not create catalog cache")
	}
	return &Loader{
		Path:  path,
		cache: cache,
	}
}

// NewLoaderFromConfig resolves the catalog path from the `setting.asset_file`
// key; relative paths are resolved against `setting.data_dir`
func NewLoaderFromConfig() (*Loader, error) {
	path, err := ConfiguredPath()
	if err != nil {
		return nil, err
	}
	return NewLoader(path), nil
}

// ConfiguredPath returns the catalog file path from configuration
func ConfiguredPath() (string, error) {
	name := viper.GetString("setting.asset_file")
	if name == "" {
		log.Error().Str("Key", "setting.asset_file").Msg("catalog file not configured")
		return "", ErrCatalogPathUnset
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(viper.GetString("setting.data_dir"), name)
	}
	return name, nil
}

// Catalog returns the catalog currently stored on disk. The file is read on
// every call; decoding is skipped when its digest matches a cached catalog.
// The returned catalog and its assets may be modified by the caller without
// affecting the cache.
func (l *Loader) Catalog() (*Catalog, error) {
	if l.Path == "" {
		log.Error().Msg("catalog loader has no path")
		return nil, ErrCatalogPathUnset
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		log.Error().Err(err).Str("Path", l.Path).Msg("could not read catalog file")
		return nil, err
	}

	sum := blake3.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := l.cache.Get(key); ok {
		log.Debug().Str("Path", l.Path).Str("Digest", key).Msg("catalog cache hit")
		return cached.(*Catalog).Clone(), nil
	}

	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Str("Path", l.Path).Msg("could not decode catalog file")
		return nil, err
	}

	l.cache.Add(key, c)
	return c.Clone(), nil
}

// Save writes the catalog to the loader's path
func (l *Loader) Save(c *Catalog) error {
	if l.Path == "" {
		return ErrCatalogPathUnset
	}
	return c.Save(l.Path)
}

type staticSource struct {
	catalog *Catalog
}

// Static returns a Source that always yields c
func Static(c *Catalog) Source {
	return &staticSource{catalog: c}
}

func (s *staticSource) Catalog() (*Catalog, error) {
	return s.catalog, nil
}
