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

package dataframe

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// mapColumns applies fn in place to every column of a copy of df
func (df *DataFrame) mapColumns(fn func(col []float64)) *DataFrame {
	df = df.Copy()
	for _, col := range df.Vals {
		fn(col)
	}
	return df
}

// zipColumns applies fn to each column of a copy of df and the column of
// other with the same name. Columns missing from other are left unchanged.
// Panics if the row counts differ.
func (df *DataFrame) zipColumns(other *DataFrame, fn func(dst, s []float64)) *DataFrame {
	df = df.Copy()
	for idx, colName := range df.ColNames {
		if otherIdx := other.ColIndex(colName); otherIdx != -1 {
			fn(df.Vals[idx], other.Vals[otherIdx])
		}
	}
	return df
}

// AddScalar returns a copy of df with scalar added to every value
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	return df.mapColumns(func(col []float64) {
		floats.AddConst(scalar, col)
	})
}

// MulScalar returns a copy of df with every value multiplied by scalar
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	return df.mapColumns(func(col []float64) {
		floats.Scale(scalar, col)
	})
}

// CumSum returns a copy of df where each column holds its running total
func (df *DataFrame) CumSum() *DataFrame {
	return df.mapColumns(func(col []float64) {
		if len(col) != 0 {
			floats.CumSum(col, col)
		}
	})
}

// Div divides each column by the column of other with the same name
func (df *DataFrame) Div(other *DataFrame) *DataFrame {
	return df.zipColumns(other, floats.Div)
}

// Mul multiplies each column by the column of other with the same name
func (df *DataFrame) Mul(other *DataFrame) *DataFrame {
	return df.zipColumns(other, floats.Mul)
}

// Rename returns a shallow copy of df with new column names
func (df *DataFrame) Rename(colNames ...string) *DataFrame {
	if len(colNames) != len(df.ColNames) {
		log.Error().Strs("Old", df.ColNames).Strs("New", colNames).Msg("rename requires one name per column")
		return df
	}
	return &DataFrame{
		Dates:    df.Dates,
		ColNames: colNames,
		Vals:     df.Vals,
	}
}

// SMA returns the simple moving average of every column over lookback rows.
// Rows before the first full window are NaN, as is every row when lookback
// is not in (0, Len()]. A NaN only affects the windows containing it.
func (df *DataFrame) SMA(lookback int) *DataFrame {
	res := &DataFrame{
		Dates:    df.Dates,
		ColNames: df.ColNames,
		Vals:     make([][]float64, len(df.Vals)),
	}

	valid := lookback > 0 && lookback <= df.Len()
	if !valid {
		log.Error().Int("Lookback", lookback).Int("NRows", df.Len()).Msg("lookback must be: 0 < lookback <= NRows")
	}

	for colIdx, col := range df.Vals {
		sma := make([]float64, len(col))
		for rowIdx := range col {
			if !valid || rowIdx+1 < lookback {
				sma[rowIdx] = math.NaN()
				continue
			}
			sma[rowIdx] = stat.Mean(col[rowIdx+1-lookback:rowIdx+1], nil)
		}
		res.Vals[colIdx] = sma
	}

	return res
}
