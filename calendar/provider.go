// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package calendar

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Provider maps calendar names to holiday files. Calendars are built fresh
// from disk on every call.
type Provider struct {
	DataDir string
	Files   map[string]string
}

// NewProvider creates a provider from a name to path mapping; names are
// matched case-insensitively
func NewProvider(dataDir string, files map[string]string) *Provider {
	p := &Provider{
		DataDir: dataDir,
		Files:   make(map[string]string, len(files)),
	}
	for k, v := range files {
		p.Files[strings.ToLower(k)] = v
	}
	return p
}

// NewProviderFromConfig reads the `calendar` section of the configuration
func NewProviderFromConfig() (*Provider, error) {
	if !viper.IsSet("calendar") {
		log.Error().Str("Section", "calendar").Msg("configuration section missing")
		return nil, ErrConfigSectionMissing
	}
	return NewProvider(viper.GetString("setting.data_dir"), viper.GetStringMapString("calendar")), nil
}

// Calendar loads the named calendar
func (p *Provider) Calendar(name string) (*Calendar, error) {
	key := strings.ToLower(name)
	path, ok := p.Files[key]
	if !ok || path == "" {
		log.Warn().Str("Calendar", key).Msg("calendar not configured")
		return nil, fmt.Errorf("%w: %s", ErrCalendarNotConfigured, key)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(p.DataDir, path)
	}

	return LoadFile(key, path)
}

// Names returns the sorted configured calendar names
func (p *Provider) Names() []string {
	names := make([]string, 0, len(p.Files))
	for k := range p.Files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
