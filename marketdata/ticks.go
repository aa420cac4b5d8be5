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
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/penny-vault/comex/dataframe"
)

// Tick is a single intraday event
type Tick struct {
	Time  time.Time `json:"time"`
	Type  string    `json:"type"`
	Value float64   `json:"value"`
	Size  float64   `json:"size"`
}

// Bar is an intraday OHLC bar
type Bar struct {
	Time      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	NumEvents int
}

// AggregateTicks collapses ticks sharing a timestamp into one row holding
// the size weighted average value and the total size. Ticks with a
// non-positive size are ignored.
func AggregateTicks(ticks []Tick) *dataframe.DataFrame {
	notional := make(map[int64]float64)
	size := make(map[int64]float64)

	for _, t := range ticks {
		if t.Size <= 0 || math.IsNaN(t.Size) {
			continue
		}
		key := t.Time.UnixNano()
		notional[key] += t.Size * t.Value
		size[key] += t.Size
	}

	keys := make([]int64, 0, len(size))
	for k := range size {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, len(keys)),
		ColNames: []string{"value", "size"},
		Vals:     [][]float64{make([]float64, len(keys)), make([]float64, len(keys))},
	}

	for idx, k := range keys {
		df.Dates[idx] = time.Unix(0, k).UTC()
		df.Vals[0][idx] = notional[k] / size[k]
		df.Vals[1][idx] = size[k]
	}

	return df
}

// BarFrame converts bars into a dataframe with open, high, low, close and
// volume columns
func BarFrame(bars []Bar) *dataframe.DataFrame {
	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, len(bars)),
		ColNames: []string{"open", "high", "low", "close", "volume"},
		Vals:     make([][]float64, 5),
	}
	for colIdx := range df.Vals {
		df.Vals[colIdx] = make([]float64, len(bars))
	}

	for idx, b := range bars {
		df.Dates[idx] = b.Time
		df.Vals[0][idx] = b.Open
		df.Vals[1][idx] = b.High
		df.Vals[2][idx] = b.Low
		df.Vals[3][idx] = b.Close
		df.Vals[4][idx] = b.Volume
	}

	return df
}

// SummarizeBars collapses a bar frame into a single session row dated at the
// last bar. The session high and low are taken over every price column so a
// bar whose open or close lies outside its own high/low still counts.
func SummarizeBars(df *dataframe.DataFrame) *dataframe.DataFrame {
	summary := &dataframe.DataFrame{
		Dates:    []time.Time{},
		ColNames: []string{"open", "high", "low", "close", "volume"},
		Vals:     make([][]float64, 5),
	}
	if df.Len() == 0 {
		return summary
	}

	prices, _ := df.Split("open", "high", "low", "close")
	last := df.Last()
	row := map[string]float64{
		"open":  df.Column("open")[0],
		"high":  floats.Max(prices.Max().Vals[0]),
		"low":   floats.Min(prices.Min().Vals[0]),
		"close": last.Column("close")[0],
	}
	if vol := df.Column("volume"); vol != nil {
		row["volume"] = floats.Sum(vol)
	}

	// cannot fail: the summary starts empty and row keys are its columns
	_ = summary.InsertMap(last.Start(), row)
	return summary
}
