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
	"errors"
	"time"
)

// DataFrame is a date indexed table of float columns. Vals is column major:
// Vals[colIdx][rowIdx] is the value of ColNames[colIdx] on Dates[rowIdx].
// Dates are expected to be strictly increasing.
type DataFrame struct {
	Dates    []time.Time
	ColNames []string
	Vals     [][]float64
}

var (
	ErrDateIndexNotAligned = errors.New("date index does not align")
	ErrColumnCount         = errors.New("number of values does not match number of columns")
	ErrDateNotIncreasing   = errors.New("date must be after the last date in the dataframe")
)
