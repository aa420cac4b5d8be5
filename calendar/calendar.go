// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package calendar provides exchange business-day calendars: Monday through
// Friday minus a list of holidays.
package calendar

import (
	"sort"
	"time"
)

type Calendar struct {
	Name     string
	holidays map[int64]struct{}
}

// New creates a calendar with the given holidays. Time of day and location
// of the holidays are ignored.
func New(name string, holidays []time.Time) *Calendar {
	cal := &Calendar{
		Name:     name,
		holidays: make(map[int64]struct{}, len(holidays)),
	}
	for _, h := range holidays {
		cal.holidays[Date(h).Unix()] = struct{}{}
	}
	return cal
}

// Date truncates t to midnight UTC of the same calendar day
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsHoliday returns true if the specified date is in the holiday list
func (cal *Calendar) IsHoliday(t time.Time) bool {
	_, ok := cal.holidays[Date(t).Unix()]
	return ok
}

// IsBusinessDay returns true if the specified date is a weekday and not a holiday
func (cal *Calendar) IsBusinessDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !cal.IsHoliday(t)
}

// Offset moves t by n business days. A positive n returns the n-th business
// day strictly after t, a negative n the n-th business day strictly before
// t; t itself does not need to be a business day. Zero returns t truncated
// to its date.
func (cal *Calendar) Offset(t time.Time, n int) time.Time {
	d := Date(t)
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	for n > 0 {
		d = d.AddDate(0, 0, step)
		if cal.IsBusinessDay(d) {
			n--
		}
	}

	return d
}

// Roll returns t if it is a business day, otherwise the next business day
func (cal *Calendar) Roll(t time.Time) time.Time {
	d := Date(t)
	for !cal.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// BusinessDays counts the business days in [begin, end]
func (cal *Calendar) BusinessDays(begin, end time.Time) int {
	cnt := 0
	for d := Date(begin); !d.After(Date(end)); d = d.AddDate(0, 0, 1) {
		if cal.IsBusinessDay(d) {
			cnt++
		}
	}
	return cnt
}

// Holidays returns the sorted holiday list
func (cal *Calendar) Holidays() []time.Time {
	res := make([]time.Time, 0, len(cal.holidays))
	for k := range cal.holidays {
		res = append(res, time.Unix(k, 0).UTC())
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Before(res[j])
	})
	return res
}
