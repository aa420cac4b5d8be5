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
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/dataframe"
)

const (
	DefaultGatewayURL = "http://localhost:8194"
	DefaultTimeout    = 30 * time.Second

	PeriodicityDaily   = "DAILY"
	FillActiveDaysOnly = "ACTIVE_DAYS_ONLY"
	DefaultField       = "PX_LAST"
)

var (
	DefaultEventTypes = []string{"TRADE", "AT_TRADE"}
)

const (
	dateParam     = "20060102"
	dateTimeParam = "2006-01-02T15:04:05"
)

// HistoricalOptions controls sampling of historical requests. Empty values
// fall back to daily periodicity on active days only.
type HistoricalOptions struct {
	Periodicity string
	Fill        string
}

// Gateway is a client of the market data gateway that fronts the vendor's
// reference data service. Every call is a single best-effort request
// bounded by the client timeout.
type Gateway struct {
	BaseURL  string
	Client   *http.Client
	UseCache bool
}

func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// NewGatewayFromConfig reads `vendor.url`, `vendor.timeout` and `vendor.cache`
func NewGatewayFromConfig() *Gateway {
	baseURL := viper.GetString("vendor.url")
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}
	g := NewGateway(baseURL, viper.GetDuration("vendor.timeout"))
	g.UseCache = viper.GetBool("vendor.cache")
	return g
}

func (g *Gateway) endpoint(name string, query url.Values) (*url.URL, error) {
	u, err := url.Parse(g.BaseURL + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	u.RawQuery = query.Encode()
	return u, nil
}

type historicalResponse struct {
	ResponseError *vendorError `json:"responseError"`
	SecurityData  []struct {
		Security      string                   `json:"security"`
		SecurityError *vendorError             `json:"securityError"`
		FieldData     []map[string]interface{} `json:"fieldData"`
	} `json:"securityData"`
}

func (r *historicalResponse) vendorErr() error {
	return r.ResponseError.asError()
}

// HistoricalData returns one dataframe per security with a column per field.
// Missing field values are NaN.
func (g *Gateway) HistoricalData(ctx context.Context, securities, fields []string, begin, end time.Time, opts HistoricalOptions) (dataframe.Map, error) {
	subLog := log.With().Strs("Securities", securities).Logger()

	if len(securities) == 0 {
		subLog.Error().Msg("no securities requested")
		return nil, fmt.Errorf("%w: no securities", ErrInvalidRequest)
	}
	if end.Before(begin) {
		subLog.Error().Time("Begin", begin).Time("End", end).Msg("end is before begin")
		return nil, fmt.Errorf("%w: end before begin", ErrInvalidRequest)
	}
	if len(fields) == 0 {
		fields = []string{DefaultField}
	}
	if opts.Periodicity == "" {
		opts.Periodicity = PeriodicityDaily
	}
	if opts.Fill == "" {
		opts.Fill = FillActiveDaysOnly
	}

	query := url.Values{}
	query["securities"] = securities
	query["fields"] = fields
	query.Set("startDate", begin.Format(dateParam))
	query.Set("endDate", end.Format(dateParam))
	query.Set("periodicitySelection", opts.Periodicity)
	query.Set("nonTradingDayFillOption", opts.Fill)

	u, err := g.endpoint("historical", query)
	if err != nil {
		return nil, err
	}

	resp := &historicalResponse{}
	if err := fetchJSON(ctx, g.Client, "gateway.HistoricalData", u, u.String(), g.UseCache, resp); err != nil {
		return nil, err
	}

	res := make(dataframe.Map, len(resp.SecurityData))
	for _, sec := range resp.SecurityData {
		if err := sec.SecurityError.asError(); err != nil {
			subLog.Error().Err(err).Str("Security", sec.Security).Msg("vendor rejected security")
			return nil, fmt.Errorf("%s: %w", sec.Security, err)
		}

		df, err := fieldFrame(sec.FieldData, fields)
		if err != nil {
			subLog.Error().Err(err).Str("Security", sec.Security).Msg("could not parse field data")
			return nil, err
		}
		res[sec.Security] = df
	}

	return res, nil
}

func fieldFrame(rows []map[string]interface{}, fields []string) (*dataframe.DataFrame, error) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i]["date"].(string)
		b, _ := rows[j]["date"].(string)
		return a < b
	})

	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, 0, len(rows)),
		ColNames: fields,
		Vals:     make([][]float64, len(fields)),
	}
	for colIdx := range df.Vals {
		df.Vals[colIdx] = make([]float64, 0, len(rows))
	}

	for _, row := range rows {
		dateStr, ok := row["date"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: field data row without date", ErrVendorResponse)
		}
		date, err := parseTime(dateStr)
		if err != nil {
			return nil, err
		}

		df.Dates = append(df.Dates, date)
		for colIdx, field := range fields {
			df.Vals[colIdx] = append(df.Vals[colIdx], number(row[field]))
		}
	}

	return df, nil
}

func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

type tickResponse struct {
	ResponseError *vendorError `json:"responseError"`
	TickData      []struct {
		Time  string  `json:"time"`
		Type  string  `json:"type"`
		Value float64 `json:"value"`
		Size  float64 `json:"size"`
	} `json:"tickData"`
}

func (r *tickResponse) vendorErr() error {
	return r.ResponseError.asError()
}

// IntradayTicks returns the raw ticks of one security in [begin, end]
func (g *Gateway) IntradayTicks(ctx context.Context, security string, eventTypes []string, begin, end time.Time) ([]Tick, error) {
	subLog := log.With().Str("Security", security).Logger()

	if security == "" {
		subLog.Error().Msg("no security requested")
		return nil, fmt.Errorf("%w: no security", ErrInvalidRequest)
	}
	if end.Before(begin) {
		subLog.Error().Time("Begin", begin).Time("End", end).Msg("end is before begin")
		return nil, fmt.Errorf("%w: end before begin", ErrInvalidRequest)
	}
	if len(eventTypes) == 0 {
		eventTypes = DefaultEventTypes
	}

	query := url.Values{}
	query.Set("security", security)
	query["eventTypes"] = eventTypes
	query.Set("startDateTime", begin.UTC().Format(dateTimeParam))
	query.Set("endDateTime", end.UTC().Format(dateTimeParam))

	u, err := g.endpoint("ticks", query)
	if err != nil {
		return nil, err
	}

	resp := &tickResponse{}
	if err := fetchJSON(ctx, g.Client, "gateway.IntradayTicks", u, u.String(), g.UseCache, resp); err != nil {
		return nil, err
	}

	ticks := make([]Tick, 0, len(resp.TickData))
	for _, t := range resp.TickData {
		ts, err := parseTime(t.Time)
		if err != nil {
			subLog.Error().Err(err).Msg("could not parse tick time")
			return nil, err
		}
		ticks = append(ticks, Tick{Time: ts, Type: t.Type, Value: t.Value, Size: t.Size})
	}

	return ticks, nil
}

type barResponse struct {
	ResponseError *vendorError `json:"responseError"`
	BarData       []struct {
		Time      string  `json:"time"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Close     float64 `json:"close"`
		Volume    float64 `json:"volume"`
		NumEvents int     `json:"numEvents"`
	} `json:"barData"`
}

func (r *barResponse) vendorErr() error {
	return r.ResponseError.asError()
}

// IntradayBars returns bars of interval minutes for one security
func (g *Gateway) IntradayBars(ctx context.Context, security, eventType string, interval int, begin, end time.Time) ([]Bar, error) {
	subLog := log.With().Str("Security", security).Logger()

	if security == "" {
		subLog.Error().Msg("no security requested")
		return nil, fmt.Errorf("%w: no security", ErrInvalidRequest)
	}
	if interval < 1 || interval > 1440 {
		subLog.Error().Int("Interval", interval).Msg("bar interval must be between 1 and 1440 minutes")
		return nil, fmt.Errorf("%w: interval %d", ErrInvalidRequest, interval)
	}
	if end.Before(begin) {
		subLog.Error().Time("Begin", begin).Time("End", end).Msg("end is before begin")
		return nil, fmt.Errorf("%w: end before begin", ErrInvalidRequest)
	}
	if eventType == "" {
		eventType = DefaultEventTypes[0]
	}

	query := url.Values{}
	query.Set("security", security)
	query.Set("eventType", eventType)
	query.Set("interval", strconv.Itoa(interval))
	query.Set("startDateTime", begin.UTC().Format(dateTimeParam))
	query.Set("endDateTime", end.UTC().Format(dateTimeParam))

	u, err := g.endpoint("bars", query)
	if err != nil {
		return nil, err
	}

	resp := &barResponse{}
	if err := fetchJSON(ctx, g.Client, "gateway.IntradayBars", u, u.String(), g.UseCache, resp); err != nil {
		return nil, err
	}

	bars := make([]Bar, 0, len(resp.BarData))
	for _, b := range resp.BarData {
		ts, err := parseTime(b.Time)
		if err != nil {
			subLog.Error().Err(err).Msg("could not parse bar time")
			return nil, err
		}
		bars = append(bars, Bar{
			Time:      ts,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			NumEvents: b.NumEvents,
		})
	}

	return bars, nil
}
