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

package expiry

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/comex/asset"
	"github.com/penny-vault/comex/calendar"
)

// MaxFrontMonthScan bounds the number of contract months FrontMonth will
// examine before giving up
const MaxFrontMonthScan = 120

// CalendarSource resolves a calendar name to a business-day calendar
type CalendarSource interface {
	Calendar(name string) (*calendar.Calendar, error)
}

// Engine computes expiry dates for the commodities of a catalog
type Engine struct {
	Assets    asset.Source
	Calendars CalendarSource
}

// Contract is a single listed month of a commodity
type Contract struct {
	Month  time.Time `json:"month"`
	Expiry time.Time `json:"expiry"`
}

// NewEngine creates an engine resolving assets and calendars from the given sources
func NewEngine(assets asset.Source, calendars CalendarSource) *Engine {
	return &Engine{
		Assets:    assets,
		Calendars: calendars,
	}
}

// resolve loads the commodity and its calendar
func (e *Engine) resolve(name string) (*asset.Commodity, *calendar.Calendar, zerolog.Logger, error) {
	subLog := log.With().Str("Asset", name).Logger()

	catalog, err := e.Assets.Catalog()
	if err != nil {
		subLog.Error().Err(err).Msg("could not load asset catalog")
		return nil, nil, subLog, err
	}

	com, err := catalog.Commodity(name)
	if err != nil {
		subLog.Error().Err(err).Msg("could not resolve commodity")
		return nil, nil, subLog, err
	}

	if com.Rule == asset.RuleUnsupported {
		err = fmt.Errorf("%w: %s", ErrUnsupportedRule, name)
		subLog.Error().Err(err).Msg("commodity has no expiry rule")
		return nil, nil, subLog, err
	}

	cal, err := e.Calendars.Calendar(com.Calendar)
	if err != nil {
		subLog.Error().Err(err).Str("Calendar", com.Calendar).Msg("could not load calendar")
		return nil, nil, subLog, err
	}

	return com, cal, subLog, nil
}

// ExpiryDate returns the last trade date of the given contract month. For
// typ == Notice the first notice date is returned, which for the supported
// rules coincides with the futures expiry.
func (e *Engine) ExpiryDate(name string, month time.Time, typ Type) (time.Time, error) {
	if month.IsZero() {
		err := fmt.Errorf("%w: zero contract month", ErrMalformedInput)
		log.Error().Err(err).Str("Asset", name).Msg("invalid contract month")
		return time.Time{}, err
	}

	com, cal, subLog, err := e.resolve(name)
	if err != nil {
		return time.Time{}, err
	}

	exp, err := Compute(com.Rule, cal, month, typ)
	if err != nil {
		subLog.Error().Err(err).Msg("expiry computation failed")
		return time.Time{}, err
	}

	subLog.Debug().Time("Month", month).Stringer("Type", typ).Time("Expiry", exp).Msg("computed expiry")
	return exp, nil
}

// FrontMonth returns the first contract month whose expiry is on or after
// base moved by lag business days. A positive lag rolls into the next
// contract earlier; a negative lag holds the expiring contract longer.
func (e *Engine) FrontMonth(name string, base time.Time, typ Type, lag int) (time.Time, error) {
	if base.IsZero() {
		err := fmt.Errorf("%w: zero base date", ErrMalformedInput)
		log.Error().Err(err).Str("Asset", name).Msg("invalid base date")
		return time.Time{}, err
	}

	com, cal, subLog, err := e.resolve(name)
	if err != nil {
		return time.Time{}, err
	}

	adjusted := cal.Offset(calendar.Date(base), lag)
	candidate := asset.ContractMonth(adjusted)

	for ii := 0; ii < MaxFrontMonthScan; ii++ {
		exp, err := Compute(com.Rule, cal, candidate, typ)
		if err != nil {
			subLog.Error().Err(err).Time("Month", candidate).Msg("expiry computation failed during front month scan")
			return time.Time{}, err
		}
		if !exp.Before(adjusted) {
			return candidate, nil
		}
		candidate = candidate.AddDate(0, 1, 0)
	}

	subLog.Error().Time("Base", base).Int("Lag", lag).Int("Limit", MaxFrontMonthScan).Msg("front month scan exhausted")
	return time.Time{}, fmt.Errorf("%w: %s from %s", ErrScanExhausted, name, base.Format("2006-01-02"))
}

// Chain lists the next count contracts in the commodity's cycle starting at
// the contract month of from, with their expiries
func (e *Engine) Chain(name string, from time.Time, count int, typ Type) ([]Contract, error) {
	if count <= 0 {
		return []Contract{}, nil
	}
	if from.IsZero() {
		return nil, fmt.Errorf("%w: zero start month", ErrMalformedInput)
	}

	com, cal, subLog, err := e.resolve(name)
	if err != nil {
		return nil, err
	}

	contracts := make([]Contract, 0, count)
	month := asset.ContractMonth(from)
	for ii := 0; len(contracts) < count && ii < MaxFrontMonthScan; ii++ {
		if com.Trades(month.Month()) {
			exp, err := Compute(com.Rule, cal, month, typ)
			if err != nil {
				subLog.Error().Err(err).Time("Month", month).Msg("expiry computation failed while listing chain")
				return nil, err
			}
			contracts = append(contracts, Contract{Month: month, Expiry: exp})
		}
		month = month.AddDate(0, 1, 0)
	}

	return contracts, nil
}
