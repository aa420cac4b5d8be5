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
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
)

// New creates a dataframe from a date index and named columns. All columns
// must have the same length as the index.
func New(dates []time.Time, colNames []string, vals ...[]float64) (*DataFrame, error) {
	if len(colNames) != len(vals) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrColumnCount, len(colNames), len(vals))
	}
	for idx, col := range vals {
		if len(col) != len(dates) {
			return nil, fmt.Errorf("%w: column %s has %d rows, index has %d", ErrDateIndexNotAligned, colNames[idx], len(col), len(dates))
		}
	}
	return &DataFrame{
		Dates:    dates,
		ColNames: colNames,
		Vals:     vals,
	}, nil
}

// Breakout takes a dataframe with multiple columns and returns a map of dataframes, one per column
func (df *DataFrame) Breakout() Map {
	dfMap := Map{}
	for idx, col := range df.ColNames {
		dfMap[col] = &DataFrame{
			Dates:    df.Dates,
			ColNames: []string{col},
			Vals:     [][]float64{df.Vals[idx]},
		}
	}
	return dfMap
}

// ColIndex returns the index of the specified column or -1 if the column doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// Column returns the values of the named column or nil if it does not exist
func (df *DataFrame) Column(colName string) []float64 {
	idx := df.ColIndex(colName)
	if idx == -1 {
		return nil
	}
	return df.Vals[idx]
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// Copy creates a deep copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    make([]time.Time, len(df.Dates)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Dates, df.Dates)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// Drop removes rows that contain the value `val` from the dataframe; NaN
// drops rows holding any NaN
func (df *DataFrame) Drop(val float64) *DataFrame {
	isNA := math.IsNaN(val)
	newVals := make([][]float64, len(df.Vals))
	newDates := make([]time.Time, 0, len(df.Dates))

	for rowIdx, rowDate := range df.Dates {
		keep := true
		for _, col := range df.Vals {
			rowVal := col[rowIdx]
			if rowVal == val || (isNA && math.IsNaN(rowVal)) {
				keep = false
				break
			}
		}

		if keep {
			newDates = append(newDates, rowDate)
			for colIdx, col := range df.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[rowIdx])
			}
		}
	}

	df.Vals = newVals
	df.Dates = newDates
	return df
}

// End returns the last time in the DataFrame
func (df *DataFrame) End() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}
	return df.Dates[len(df.Dates)-1]
}

// ForEach calls lambda for every row with the row values keyed by column
// name; columns present in the returned map are updated in place
func (df *DataFrame) ForEach(lambda func(int, time.Time, map[string]float64) map[string]float64) {
	colMap := make(map[string]int, len(df.ColNames))
	for colIdx, colName := range df.ColNames {
		colMap[colName] = colIdx
	}

	for rowIdx, rowDate := range df.Dates {
		row := make(map[string]float64, len(df.ColNames))
		for colIdx, colName := range df.ColNames {
			row[colName] = df.Vals[colIdx][rowIdx]
		}
		ret := lambda(rowIdx, rowDate, row)
		for colName, val := range ret {
			if colIdx, ok := colMap[colName]; ok {
				df.Vals[colIdx][rowIdx] = val
			}
		}
	}
}

// Insert a new column to the end of the dataframe
func (df *DataFrame) Insert(name string, col []float64) error {
	if len(col) != len(df.Dates) {
		return fmt.Errorf("%w: column %s has %d rows, index has %d", ErrDateIndexNotAligned, name, len(col), len(df.Dates))
	}
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return nil
}

// InsertRow adds a new row to the dataframe. The date must be after the last
// date in the dataframe and there must be one value per column.
func (df *DataFrame) InsertRow(date time.Time, vals ...float64) error {
	if len(df.Dates) != 0 && !df.End().Before(date) {
		return fmt.Errorf("%w: %s is not after %s", ErrDateNotIncreasing, date, df.End())
	}

	if len(vals) != len(df.ColNames) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrColumnCount, len(vals), len(df.ColNames))
	}

	if len(df.Vals) < len(df.ColNames) {
		df.Vals = append(df.Vals, make([][]float64, len(df.ColNames)-len(df.Vals))...)
	}

	df.Dates = append(df.Dates, date)
	for colIdx := range df.ColNames {
		df.Vals[colIdx] = append(df.Vals[colIdx], vals[colIdx])
	}

	return nil
}

// InsertMap adds a new row to the dataframe. Columns missing from vals are
// filled with NaN; keys that are not columns are ignored.
func (df *DataFrame) InsertMap(date time.Time, vals map[string]float64) error {
	row := make([]float64, len(df.ColNames))
	for colIdx, colName := range df.ColNames {
		if val, ok := vals[colName]; ok {
			row[colIdx] = val
		} else {
			row[colIdx] = math.NaN()
		}
	}
	return df.InsertRow(date, row...)
}

// Last returns a new dataframe with only the last row of the current dataframe
func (df *DataFrame) Last() *DataFrame {
	if df.Len() == 0 {
		return df
	}

	lastRow := len(df.Dates) - 1
	lastVals := make([][]float64, len(df.ColNames))
	for idx, col := range df.Vals {
		lastVals[idx] = []float64{col[lastRow]}
	}

	return &DataFrame{
		ColNames: df.ColNames,
		Dates:    []time.Time{df.Dates[lastRow]},
		Vals:     lastVals,
	}
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// Max selects the max value for each row and returns a new dataframe
func (df *DataFrame) Max() *DataFrame {
	return df.reduceRows("max", floats.Max)
}

// Min selects the min value for each row and returns a new dataframe
func (df *DataFrame) Min() *DataFrame {
	return df.reduceRows("min", floats.Min)
}

func (df *DataFrame) reduceRows(name string, fn func([]float64) float64) *DataFrame {
	res := &DataFrame{
		ColNames: []string{name},
		Dates:    df.Dates,
		Vals:     [][]float64{make([]float64, len(df.Dates))},
	}

	if len(df.ColNames) == 0 {
		for rowIdx := range df.Dates {
			res.Vals[0][rowIdx] = math.NaN()
		}
		return res
	}

	row := make([]float64, len(df.ColNames))
	for rowIdx := range df.Dates {
		for colIdx := range df.ColNames {
			row[colIdx] = df.Vals[colIdx][rowIdx]
		}
		res.Vals[0][rowIdx] = fn(row)
	}

	return res
}

// Split the dataframe into 2, with columns being in the first dataframe and
// all remaining columns in the second
func (df *DataFrame) Split(columns ...string) (*DataFrame, *DataFrame) {
	one := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	two := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	colMap := make(map[string]bool, len(columns))
	for _, col := range columns {
		colMap[col] = true
	}

	for idx, col := range df.ColNames {
		if colMap[col] {
			one.ColNames = append(one.ColNames, col)
			one.Vals = append(one.Vals, df.Vals[idx])
		} else {
			two.ColNames = append(two.ColNames, col)
			two.Vals = append(two.Vals, df.Vals[idx])
		}
	}

	return one, two
}

// Start returns the first date of the dataframe
func (df *DataFrame) Start() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}
	return df.Dates[0]
}

// Table renders the dataframe as an ASCII table. Dates are printed with a
// time component when any row is not at midnight.
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>"
	}

	layout := "2006-01-02"
	for _, d := range df.Dates {
		if !d.Equal(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())) {
			layout = "2006-01-02 15:04:05"
			break
		}
	}

	tableCols := append([]string{"Date"}, df.ColNames...)

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false)

	for rowIdx, rowDate := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, rowDate.Format(layout))
		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[rowIdx]))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}

// Trim the dataframe to the specified date range (inclusive). The returned
// dataframe shares its backing arrays with df.
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	df2 := &DataFrame{
		ColNames: df.ColNames,
		Dates:    []time.Time{},
		Vals:     make([][]float64, len(df.Vals)),
	}

	for colIdx := range df2.Vals {
		df2.Vals[colIdx] = []float64{}
	}

	if end.Before(begin) || df.Len() == 0 {
		return df2
	}

	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		return !df.Dates[i].Before(begin)
	})

	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		return df.Dates[i].After(end)
	})

	if beginIdx >= endIdx {
		return df2
	}

	df2.Dates = df.Dates[beginIdx:endIdx]
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}
