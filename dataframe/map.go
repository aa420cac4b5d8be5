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
	"sort"
	"strings"
	"time"
)

// Map holds one dataframe per security
type Map map[string]*DataFrame

// Keys returns the map keys in sorted order
func (dfMap Map) Keys() []string {
	keys := make([]string, 0, len(dfMap))
	for k := range dfMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Align finds the maximum start and minimum end across all dataframes and trims them to match
func (dfMap Map) Align() Map {
	var start time.Time
	var end time.Time

	first := true
	for _, df := range dfMap {
		if first {
			start = df.Start()
			end = df.End()
			first = false
			continue
		}
		if df.Start().After(start) {
			start = df.Start()
		}
		if df.End().Before(end) {
			end = df.End()
		}
	}

	dfMapTrimmed := make(Map, len(dfMap))
	for k, df := range dfMap {
		dfMapTrimmed[k] = df.Trim(start, end)
	}

	return dfMapTrimmed
}

// Drop calls DataFrame.Drop on each dataframe in the map
func (dfMap Map) Drop(val float64) Map {
	for _, v := range dfMap {
		v.Drop(val)
	}
	return dfMap
}

// DataFrame merges the map into a single dataframe after aligning the
// members; column names are prefixed with the map key. Members whose dates
// still differ after alignment cannot be merged.
func (dfMap Map) DataFrame() (*DataFrame, error) {
	df := &DataFrame{
		Dates:    []time.Time{},
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	aligned := dfMap.Align()
	first := true
	for _, key := range aligned.Keys() {
		v := aligned[key]
		if first {
			df.Dates = v.Dates
			first = false
		} else if !sameDates(df.Dates, v.Dates) {
			return nil, fmt.Errorf("%w: %s", ErrDateIndexNotAligned, key)
		}

		for colIdx, colName := range v.ColNames {
			df.ColNames = append(df.ColNames, key+":"+colName)
			df.Vals = append(df.Vals, v.Vals[colIdx])
		}
	}

	return df, nil
}

// Pivot regroups a map of frames keyed by security into frames keyed by
// column name, each holding one column per security. Every group is merged
// with DataFrame so the securities share an aligned date index.
func (dfMap Map) Pivot() (Map, error) {
	groups := make(map[string]Map)
	for key, df := range dfMap {
		for colName, col := range df.Breakout() {
			if _, ok := groups[colName]; !ok {
				groups[colName] = Map{}
			}
			groups[colName][key] = col
		}
	}

	pivoted := make(Map, len(groups))
	for colName, group := range groups {
		merged, err := group.DataFrame()
		if err != nil {
			return nil, err
		}
		for idx, name := range merged.ColNames {
			merged.ColNames[idx] = strings.TrimSuffix(name, ":"+colName)
		}
		pivoted[colName] = merged
	}
	return pivoted, nil
}

// Table renders every member of the map, ordered by key
func (dfMap Map) Table() string {
	s := &strings.Builder{}
	for _, key := range dfMap.Keys() {
		fmt.Fprintf(s, "%s\n%s\n", key, dfMap[key].Table())
	}
	return s.String()
}

func sameDates(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if !a[idx].Equal(b[idx]) {
			return false
		}
	}
	return true
}
