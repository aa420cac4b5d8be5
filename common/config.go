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
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the sections of config.toml read through viper
type Config struct {
	Setting  SettingConfig     `toml:"setting"`
	Calendar map[string]string `toml:"calendar"`
	Log      LogConfig         `toml:"log"`
	Vendor   VendorConfig      `toml:"vendor"`
	Quandl   QuandlConfig      `toml:"quandl"`
	Cache    CacheConfig       `toml:"cache"`
	OTLP     OTLPConfig        `toml:"otlp"`
}

type SettingConfig struct {
	AssetFile string `toml:"asset_file"`
	DataDir   string `toml:"data_dir"`
}

type LogConfig struct {
	Level        string `toml:"level"`
	Output       string `toml:"output"`
	Pretty       bool   `toml:"pretty"`
	ReportCaller bool   `toml:"report_caller"`
}

type VendorConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
	Cache   bool   `toml:"cache"`
}

type QuandlConfig struct {
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
	Database string `toml:"database"`
}

type CacheConfig struct {
	LocalSize int    `toml:"local_size"`
	Redis     bool   `toml:"redis"`
	RedisURL  string `toml:"redis_url"`
	TTL       int    `toml:"ttl"`
}

type OTLPConfig struct {
	Enabled     bool              `toml:"enabled"`
	HTTP        bool              `toml:"http"`
	Insecure    bool              `toml:"insecure"`
	Endpoint    string            `toml:"endpoint"`
	SampleRatio float64           `toml:"sample_ratio"`
	Headers     map[string]string `toml:"headers"`
}

// DefaultConfig is the configuration written by `comex config init`
func DefaultConfig() Config {
	return Config{
		Setting: SettingConfig{
			AssetFile: "assets.xml",
			DataDir:   ".",
		},
		Calendar: map[string]string{
			"nym": "nymex.txt",
			"ice": "ice.txt",
		},
		Log: LogConfig{
			Level:  "warn",
			Output: "stderr",
			Pretty: true,
		},
		Vendor: VendorConfig{
			URL:     "http://localhost:8194",
			Timeout: "30s",
		},
		Quandl: QuandlConfig{
			URL:      "https://data.nasdaq.com",
			Database: "CME",
		},
		Cache: CacheConfig{
			LocalSize: defaultLocalCacheSize,
			RedisURL:  "redis://localhost:6379/0",
			TTL:       3600,
		},
		OTLP: OTLPConfig{
			Endpoint:    "localhost:4317",
			SampleRatio: 1,
			Headers:     map[string]string{},
		},
	}
}

// WriteConfig encodes cfg as TOML
func WriteConfig(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(cfg)
}
