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

	"github.com/penny-vault/comex/asset"
	"github.com/penny-vault/comex/calendar"
)

type ruleFunc func(cal *calendar.Calendar, month time.Time, typ Type) time.Time

var rules = map[asset.Rule]ruleFunc{
	asset.RuleWtiNymex:  wtiNymex,
	asset.RuleWtiIce:    wtiIce,
	asset.RuleBrentIce:  brentIce,
	asset.RuleHoRbNymex: hoRbNymex,
	asset.RuleNgNymex:   ngNymex,
	asset.RuleGoIce:     goIce,
}

// brentCutover is the first contract month using the 2016 ICE Brent expiry rule
var brentCutover = time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)

// Compute applies rule to the contract month on the given calendar
func Compute(rule asset.Rule, cal *calendar.Calendar, month time.Time, typ Type) (time.Time, error) {
	fn, ok := rules[rule]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnsupportedRule, rule)
	}
	if cal == nil {
		return time.Time{}, fmt.Errorf("%w: nil calendar", ErrMalformedInput)
	}
	if month.IsZero() {
		return time.Time{}, fmt.Errorf("%w: zero contract month", ErrMalformedInput)
	}
	return calendar.Date(fn(cal, asset.ContractMonth(month), typ)), nil
}

func prevMonth(month time.Time, day int) time.Time {
	return time.Date(month.Year(), month.Month()-1, day, 0, 0, 0, 0, time.UTC)
}

// WTI NYMEX: three business days before the 25th of the prior month, four
// if the 25th is not a business day. Options three business days earlier.
func wtiNymex(cal *calendar.Calendar, month time.Time, typ Type) time.Time {
	anchor := prevMonth(month, 25)

	var exp time.Time
	if cal.IsBusinessDay(anchor) {
		exp = cal.Offset(anchor, -3)
	} else {
		exp = cal.Offset(anchor, -4)
	}

	if typ == Options {
		exp = cal.Offset(exp, -3)
	}
	return exp
}

// WTI ICE: WTI NYMEX, then one more business day for futures and notice
func wtiIce(cal *calendar.Calendar, month time.Time, typ Type) time.Time {
	exp := wtiNymex(cal, month, typ)
	if typ == Futures || typ == Notice {
		exp = cal.Offset(exp, -1)
	}
	return exp
}

// Brent ICE
func brentIce(cal *calendar.Calendar, month time.Time, typ Type) time.Time {
	var exp time.Time
	if month.Before(brentCutover) {
		exp = month.AddDate(0, 0, -15)
		if cal.IsBusinessDay(exp) {
			exp = cal.Offset(exp, -1)
		} else {
			exp = cal.Offset(exp, -2)
		}
	} else {
		exp = cal.Offset(prevMonth(month, 1), -1)
	}

	// December contracts step back once more when they collide with the
	// business day before Christmas or before the prior December
	if month.Month() == time.December {
		xmas := cal.Offset(time.Date(month.Year(), time.December, 25, 0, 0, 0, 0, time.UTC), -1)
		newYear := cal.Offset(time.Date(month.Year()-1, time.December, 1, 0, 0, 0, 0, time.UTC), -1)
		if exp.Equal(xmas) || exp.Equal(newYear) {
			exp = cal.Offset(exp, -1)
		}
	}

	if typ == Options {
		exp = cal.Offset(exp, -3)
	}
	return exp
}

// Heating oil and gasoline NYMEX: last business day of the prior month
func hoRbNymex(cal *calendar.Calendar, month time.Time, typ Type) time.Time {
	exp := cal.Offset(month, -1)
	if typ == Options {
		exp = cal.Offset(exp, -3)
	}
	return exp
}

// Natural gas NYMEX: three business days before the first of the month
func ngNymex(cal *calendar.Calendar, month time.Time, typ Type) time.Time {
	exp := cal.Offset(month, -3)
	if typ == Options {
		exp = cal.Offset(exp, -1)
	}
	return exp
}

// Gasoil ICE: two business days before the 14th of the contract month
func goIce(cal *calendar.Calendar, month time.Time, typ Type) time.Time {
	exp := cal.Offset(time.Date(month.Year(), month.Month(), 14, 0, 0, 0, 0, time.UTC), -2)
	if typ == Options {
		exp = cal.Offset(exp, -5)
	}
	return exp
}
