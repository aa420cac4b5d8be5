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

// Package settle reconstructs exchange settlement prices from the trades
// printed during the settlement window.
package settle

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/penny-vault/comex/dataframe"
	"github.com/penny-vault/comex/marketdata"
)

// aggregated prices carry float noise from the size weighting; values are
// snapped to this many places before truncating to the tick
const roundPlaces = 8

// TickSource supplies the raw trades of a security
type TickSource interface {
	IntradayTicks(ctx context.Context, security string, eventTypes []string, begin, end time.Time) ([]marketdata.Tick, error)
}

type Stats struct {
	VWAP   float64 `json:"vwap"`
	TWAP   float64 `json:"twap"`
	Volume float64 `json:"volume"`
}

// Analysis holds the trades of one settlement window, aggregated per
// timestamp and truncated to the tick size
type Analysis struct {
	Security string
	Tick     float64
	Window   time.Duration
	Settle   time.Time

	frame *dataframe.DataFrame
}

// New fetches the trades printed in the window minutes up to and including
// settle and prepares them for analysis
func New(ctx context.Context, src TickSource, security string, tick float64, window int, settle time.Time) (*Analysis, error) {
	subLog := log.With().Str("Security", security).Time("Settle", settle).Logger()

	if security == "" || tick <= 0 || window <= 0 || settle.IsZero() {
		err := fmt.Errorf("%w: security=%q tick=%g window=%d", ErrInvalidInput, security, tick, window)
		subLog.Error().Err(err).Msg("cannot analyze settlement")
		return nil, err
	}

	a := &Analysis{
		Security: security,
		Tick:     tick,
		Window:   time.Duration(window) * time.Minute,
		Settle:   settle,
	}

	begin := settle.Add(-a.Window)
	ticks, err := src.IntradayTicks(ctx, security, nil, begin, settle)
	if err != nil {
		subLog.Error().Err(err).Msg("could not fetch settlement ticks")
		return nil, err
	}

	df := marketdata.AggregateTicks(ticks).Trim(begin, settle)
	step := decimal.NewFromFloat(tick)
	for idx, v := range df.Vals[0] {
		df.Vals[0][idx] = floor(v, step)
	}
	df = df.Drop(math.NaN())

	if df.Len() == 0 {
		subLog.Warn().Time("Begin", begin).Msg("no trades in settlement window")
		return nil, fmt.Errorf("%w: %s %s", ErrNoTicks, security, settle.Format(time.RFC3339))
	}

	subLog.Debug().Int("Rows", df.Len()).Int("Ticks", len(ticks)).Msg("prepared settlement window")
	a.frame = df
	return a, nil
}

// floor truncates v down to a multiple of step
func floor(v float64, step decimal.Decimal) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	d := decimal.NewFromFloat(v).Round(roundPlaces)
	res, _ := d.Sub(d.Mod(step)).Float64()
	return res
}

// Frame returns the per timestamp prices (`value`) and sizes (`size`)
func (a *Analysis) Frame() *dataframe.DataFrame {
	return a.frame.Copy()
}

// Stats summarizes the window: volume weighted price, time weighted price
// and total traded size
func (a *Analysis) Stats() Stats {
	values := a.frame.Vals[0]
	sizes := a.frame.Vals[1]

	volume := floats.Sum(sizes)
	return Stats{
		VWAP:   floats.Dot(values, sizes) / volume,
		TWAP:   stat.Mean(values, nil),
		Volume: volume,
	}
}

// Running returns the cumulative `vwap` and `twap` at each timestamp of the
// window
func (a *Analysis) Running() *dataframe.DataFrame {
	value, size := a.frame.Split("value")
	size = size.Rename("value")

	vwap := value.Mul(size).CumSum().Div(size.CumSum()).Rename("vwap")

	counts := value.MulScalar(0).AddScalar(1).CumSum()
	twap := value.CumSum().Div(counts)

	if err := vwap.Insert("twap", twap.Vals[0]); err != nil {
		log.Error().Err(err).Str("Security", a.Security).Msg("could not assemble running statistics")
	}
	return vwap
}
