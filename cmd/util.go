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

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/comex/asset"
	"github.com/penny-vault/comex/calendar"
	"github.com/penny-vault/comex/expiry"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"20060102",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// parseDate accepts a day, a month (first of month) or a timestamp; values
// without a zone are UTC
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD, YYYY-MM or YYYYMMDD", s)
}

// parseDateOr returns def when s is empty
func parseDateOr(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return parseDate(s)
}

func today() time.Time {
	return calendar.Date(time.Now())
}

func parseExpiryType(s string) (expiry.Type, error) {
	typ, ok := expiry.ParseType(s)
	if !ok {
		return expiry.Unknown, fmt.Errorf("%w: expiry type %q", expiry.ErrMalformedInput, s)
	}
	return typ, nil
}

func catalogSource() (*asset.Loader, error) {
	loader, err := asset.NewLoaderFromConfig()
	if err != nil {
		return nil, err
	}
	return loader, nil
}

func newEngine() (*expiry.Engine, error) {
	loader, err := catalogSource()
	if err != nil {
		return nil, err
	}
	calendars, err := calendar.NewProviderFromConfig()
	if err != nil {
		return nil, err
	}
	return expiry.NewEngine(loader, calendars), nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("could not marshal output")
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printTable(header []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}
