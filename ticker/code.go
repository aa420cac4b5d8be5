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
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/comex/asset"
)

// Now is the clock used to resolve decade-relative years
var Now = time.Now

// decade returns the first year of the current decade
func decade() int {
	year := Now().Year()
	return year - year%10
}

// FuturesCode returns the month letter followed by the year of month. With
// decadeYear the year is relative to the current decade (2015 -> 5 during
// the 2010s), which makes codes ambiguous across decades.
func FuturesCode(month time.Time, decadeYear bool) string {
	year := month.Year()
	if decadeYear {
		year -= decade()
	}
	return asset.MonthCodeFor(month.Month()).String() + strconv.Itoa(year)
}

// ContractMonth parses a 2 or 3 character decade-relative futures code such
// as Z5 back into the first day of the contract month
func ContractMonth(code string) (time.Time, error) {
	if len(code) < 2 || len(code) > 3 {
		log.Error().Str("Code", code).Msg("futures code must be 2 or 3 characters")
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}

	mc, err := asset.ParseMonthCode(code[:1])
	if err != nil {
		log.Error().Str("Code", code).Msg("unknown month letter in futures code")
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}

	year, err := strconv.Atoi(code[1:])
	if err != nil {
		log.Error().Err(err).Str("Code", code).Msg("invalid year in futures code")
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}

	return time.Date(year+decade(), mc.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// OptionType is the right of an option ticker
type OptionType int

const (
	OptionUnknown OptionType = iota
	Forward
	Call
	Put
)

var optionTypeNames = map[string]OptionType{
	"forward": Forward,
	"f":       Forward,
	"call":    Call,
	"c":       Call,
	"put":     Put,
	"p":       Put,
}

// ParseOptionType maps a case-insensitive name or letter to an OptionType;
// the boolean reports whether the string was recognized
func ParseOptionType(s string) (OptionType, bool) {
	t, ok := optionTypeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return OptionUnknown, false
	}
	return t, true
}

// Letter returns the ticker letter of the option type
func (t OptionType) Letter() string {
	switch t {
	case Forward:
		return "F"
	case Call:
		return "C"
	case Put:
		return "P"
	default:
		return ""
	}
}

func (t OptionType) String() string {
	switch t {
	case Forward:
		return "Forward"
	case Call:
		return "Call"
	case Put:
		return "Put"
	default:
		return "Unknown"
	}
}
