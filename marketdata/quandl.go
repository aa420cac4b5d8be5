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

package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/dataframe"
)

const (
	DefaultQuandlURL      = "https://data.nasdaq.com"
	DefaultQuandlDatabase = "CME"
)

// Quandl fetches daily futures history from the Quandl dataset API
type Quandl struct {
	BaseURL  string
	APIKey   string
	Database string
	Client   *http.Client
	UseCache bool
}

func NewQuandl(apiKey string) *Quandl {
	return &Quandl{
		BaseURL:  DefaultQuandlURL,
		APIKey:   apiKey,
		Database: DefaultQuandlDatabase,
		Client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// NewQuandlFromConfig reads the `quandl.*` keys; `vendor.timeout` and
// `vendor.cache` are shared with the gateway
func NewQuandlFromConfig() (*Quandl, error) {
	apiKey := viper.GetString("quandl.api_key")
	if apiKey == "" {
		log.Error().Str("Key", "quandl.api_key").Msg("quandl api key not configured")
		return nil, ErrMissingAPIKey
	}

	q := NewQuandl(apiKey)
	if u := viper.GetString("quandl.url"); u != "" {
		q.BaseURL = strings.TrimRight(u, "/")
	}
	if db := viper.GetString("quandl.database"); db != "" {
		q.Database = db
	}
	if timeout := viper.GetDuration("vendor.timeout"); timeout > 0 {
		q.Client.Timeout = timeout
	}
	q.UseCache = viper.GetBool("vendor.cache")
	return q, nil
}

type quandlResponse struct {
	QuandlError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"quandl_error"`
	DatasetData struct {
		ColumnNames []string        `json:"column_names"`
		Data        [][]interface{} `json:"data"`
	} `json:"dataset_data"`
}

func (r *quandlResponse) vendorErr() error {
	if r.QuandlError == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrVendorResponse, r.QuandlError.Code, r.QuandlError.Message)
}

// HistoricalData returns the dataset of a Quandl ticker (e.g. CLZ2015)
// between begin and end, keyed by `<database>/<ticker>`. Every non-date
// column of the dataset becomes a dataframe column.
func (q *Quandl) HistoricalData(ctx context.Context, ticker string, begin, end time.Time) (dataframe.Map, error) {
	subLog := log.With().Str("Ticker", ticker).Str("Database", q.Database).Logger()

	if ticker == "" {
		subLog.Error().Msg("no ticker requested")
		return nil, fmt.Errorf("%w: no ticker", ErrInvalidRequest)
	}
	if end.Before(begin) {
		subLog.Error().Time("Begin", begin).Time("End", end).Msg("end is before begin")
		return nil, fmt.Errorf("%w: end before begin", ErrInvalidRequest)
	}

	dataset := q.Database + "/" + ticker
	u, err := url.Parse(fmt.Sprintf("%s/api/v3/datasets/%s/data.json", q.BaseURL, dataset))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	query := url.Values{}
	query.Set("start_date", begin.Format("2006-01-02"))
	query.Set("end_date", end.Format("2006-01-02"))
	query.Set("order", "asc")
	cacheKey := u.String() + "?" + query.Encode()
	query.Set("api_key", q.APIKey)
	u.RawQuery = query.Encode()

	resp := &quandlResponse{}
	if err := fetchJSON(ctx, q.Client, "quandl.HistoricalData", u, cacheKey, q.UseCache, resp); err != nil {
		return nil, err
	}

	df, err := quandlFrame(resp.DatasetData.ColumnNames, resp.DatasetData.Data)
	if err != nil {
		subLog.Error().Err(err).Msg("could not parse quandl dataset")
		return nil, err
	}

	return dataframe.Map{dataset: df}, nil
}

func quandlFrame(columns []string, rows [][]interface{}) (*dataframe.DataFrame, error) {
	dateCol := -1
	for idx, col := range columns {
		if strings.EqualFold(col, "date") {
			dateCol = idx
			break
		}
	}
	if dateCol == -1 {
		return nil, fmt.Errorf("%w: dataset has no date column", ErrVendorResponse)
	}

	colNames := make([]string, 0, len(columns)-1)
	colIdx := make([]int, 0, len(columns)-1)
	for idx, col := range columns {
		if idx != dateCol {
			colNames = append(colNames, col)
			colIdx = append(colIdx, idx)
		}
	}

	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, 0, len(rows)),
		ColNames: colNames,
		Vals:     make([][]float64, len(colNames)),
	}

	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row has %d values for %d columns", ErrVendorResponse, len(row), len(columns))
		}
		dateStr, ok := row[dateCol].(string)
		if !ok {
			return nil, fmt.Errorf("%w: date is not a string", ErrVendorResponse)
		}
		date, err := parseTime(dateStr)
		if err != nil {
			return nil, err
		}
		df.Dates = append(df.Dates, date)
		for ii, idx := range colIdx {
			df.Vals[ii] = append(df.Vals[ii], number(row[idx]))
		}
	}

	if !sort.SliceIsSorted(df.Dates, func(i, j int) bool { return df.Dates[i].Before(df.Dates[j]) }) {
		return nil, fmt.Errorf("%w: dataset is not in ascending date order", ErrVendorResponse)
	}

	return df, nil
}
