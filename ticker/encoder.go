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

package ticker

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/penny-vault/comex/asset"
)

const (
	commoditySuffix = "Comdty"
	indexSuffix     = "Index"
)

// Request describes a Bloomberg ticker. Spread takes precedence when it
// holds month codes separated by "/" (e.g. "z5/z6"); otherwise Month selects
// an outright future, or an option when Strike or OptionType is set.
type Request struct {
	Month      time.Time
	Spread     string
	Strike     float64
	OptionType string
	Suffix     bool
}

// Encoder builds vendor tickers for the assets of a catalog
type Encoder struct {
	Assets asset.Source
}

// NewEncoder creates an encoder that looks up tickers in assets
func NewEncoder(assets asset.Source) *Encoder {
	return &Encoder{
		Assets: assets,
	}
}

type tickerInfo struct {
	root   string
	suffix string
	family asset.Family
	factor float64
}

func (e *Encoder) lookup(name string, subLog zerolog.Logger) (*tickerInfo, error) {
	catalog, err := e.Assets.Catalog()
	if err != nil {
		subLog.Error().Err(err).Msg("could not load asset catalog")
		return nil, err
	}

	a, err := catalog.Get(name)
	if err != nil {
		subLog.Error().Err(err).Msg("missing asset")
		return nil, err
	}

	info := &tickerInfo{
		root:   a.Meta().Ticker,
		family: asset.FamilyUnknown,
		factor: 1,
	}

	switch v := a.(type) {
	case *asset.Commodity:
		info.suffix = commoditySuffix
		info.family = v.Family
		info.factor = v.Factor
	case *asset.Index:
		info.suffix = indexSuffix
	}

	return info, nil
}

// Bloomberg returns the Bloomberg ticker for a future, an option or a
// calendar spread on the named asset
func (e *Encoder) Bloomberg(name string, req Request) (string, error) {
	subLog := log.With().Str("Asset", name).Logger()

	info, err := e.lookup(name, subLog)
	if err != nil {
		return "", err
	}

	var ticker string
	switch {
	case strings.Contains(req.Spread, "/"):
		root := info.root
		if info.family == asset.Agriculture {
			root += "_"
		}
		var sb strings.Builder
		for _, leg := range strings.Split(req.Spread, "/") {
			sb.WriteString(root)
			sb.WriteString(leg)
		}
		ticker = sb.String()

	case !req.Month.IsZero():
		root := info.root
		if info.family == asset.Agriculture {
			root += " "
		}
		ticker = root + FuturesCode(req.Month, true)

		if req.Strike != 0 || req.OptionType != "" {
			optType, ok := ParseOptionType(req.OptionType)
			if !ok {
				subLog.Error().Str("OptionType", req.OptionType).Msg("unrecognized option type")
				return "", fmt.Errorf("%w: option type %q", ErrMalformedInput, req.OptionType)
			}
			strike := decimal.NewFromFloat(req.Strike).Mul(decimal.NewFromFloat(info.factor))
			ticker += optType.Letter() + " " + strike.String()
		}

	default:
		subLog.Error().Str("Spread", req.Spread).Msg("request has neither a contract month nor a spread")
		return "", fmt.Errorf("%w: no contract month or spread", ErrMalformedInput)
	}

	ticker = strings.ToUpper(ticker)
	if req.Suffix {
		ticker += " " + info.suffix
	}
	return ticker, nil
}

// Quandl returns the Quandl ticker of a contract: root plus the month code
// and full year, without any spacing convention
func (e *Encoder) Quandl(name string, month time.Time) (string, error) {
	subLog := log.With().Str("Asset", name).Logger()

	if month.IsZero() {
		subLog.Error().Msg("zero contract month")
		return "", fmt.Errorf("%w: zero contract month", ErrMalformedInput)
	}

	info, err := e.lookup(name, subLog)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(info.root + FuturesCode(month, false)), nil
}
