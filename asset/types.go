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

package asset

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the asset variant
type Kind int

const (
	KindCommodity Kind = iota + 1
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindCommodity:
		return "commodity"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Family is the product family of a commodity. The names match the
// abbreviations written to the catalog file.
type Family int

const (
	FamilyUnknown Family = iota
	Agriculture
	Energy
	Metal
	PGM
)

var familyNames = []string{"Unknown", "AGS", "NRG", "MTL", "PGM"}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return familyNames[0]
	}
	return familyNames[f]
}

// ParseFamily returns the family for a catalog abbreviation (case-insensitive)
func ParseFamily(s string) (Family, error) {
	for idx, name := range familyNames {
		if strings.EqualFold(name, s) {
			return Family(idx), nil
		}
	}
	return FamilyUnknown, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Family) UnmarshalText(text []byte) error {
	v, err := ParseFamily(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MonthCode is the single letter futures code of a contract month
type MonthCode int

const (
	CodeUnknown MonthCode = iota
	CodeF
	CodeG
	CodeH
	CodeJ
	CodeK
	CodeM
	CodeN
	CodeQ
	CodeU
	CodeV
	CodeX
	CodeZ
)

const monthLetters = "FGHJKMNQUVXZ"

// MonthCodeFor returns the code for a calendar month
func MonthCodeFor(m time.Month) MonthCode {
	if m < time.January || m > time.December {
		return CodeUnknown
	}
	return MonthCode(m)
}

// ParseMonthCode parses a single month letter (case-insensitive)
func ParseMonthCode(s string) (MonthCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return CodeUnknown, fmt.Errorf("%w: %q", ErrUnknownMonthCode, s)
	}
	idx := strings.Index(monthLetters, s)
	if idx == -1 {
		return CodeUnknown, fmt.Errorf("%w: %q", ErrUnknownMonthCode, s)
	}
	return MonthCode(idx + 1), nil
}

// Month returns the calendar month; zero for CodeUnknown
func (c MonthCode) Month() time.Month {
	if c < CodeF || c > CodeZ {
		return 0
	}
	return time.Month(c)
}

func (c MonthCode) String() string {
	if c < CodeF || c > CodeZ {
		return "Unknown"
	}
	return string(monthLetters[c-1])
}

func (c MonthCode) MarshalText() ([]byte, error) {
	if c < CodeF || c > CodeZ {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMonthCode, int(c))
	}
	return []byte(c.String()), nil
}

func (c *MonthCode) UnmarshalText(text []byte) error {
	v, err := ParseMonthCode(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Rule selects the expiry calendar arithmetic applied to a commodity
type Rule int

const (
	RuleUnsupported Rule = iota
	RuleWtiNymex
	RuleWtiIce
	RuleBrentIce
	RuleHoRbNymex
	RuleNgNymex
	RuleGoIce
)

var ruleNames = []string{"Unsupported", "WtiNymex", "WtiIce", "BrentIce", "HoRbNymex", "NgNymex", "GoIce"}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return ruleNames[0]
	}
	return ruleNames[r]
}

// ParseRule returns the rule for its name (case-insensitive)
func ParseRule(s string) (Rule, error) {
	for idx, name := range ruleNames {
		if strings.EqualFold(name, s) {
			return Rule(idx), nil
		}
	}
	return RuleUnsupported, fmt.Errorf("%w: %q", ErrUnknownRule, s)
}

// RuleFor infers the expiry rule from a commodity name. Any name that is
// not one of the exact NYMEX/ICE names but contains "BR" is treated as a
// Brent contract.
func RuleFor(name string) Rule {
	switch name {
	case "WTI_NYMEX":
		return RuleWtiNymex
	case "WTI_ICE":
		return RuleWtiIce
	case "HO_NYMEX", "RB_NYMEX":
		return RuleHoRbNymex
	case "NG_NYMEX":
		return RuleNgNymex
	case "GO_ICE":
		return RuleGoIce
	}

	if strings.Contains(name, "BR") {
		return RuleBrentIce
	}

	return RuleUnsupported
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rule) UnmarshalText(text []byte) error {
	v, err := ParseRule(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Clock is a time of day with second resolution, stored as seconds since
// midnight
type Clock int

const clockLayout = "15:04:05"

// DefaultClose is used for commodities that do not specify a close time
const DefaultClose = Clock(19*3600 + 30*60)

// ParseClock parses HH:MM:SS
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// On returns the instant of the clock on the day of d, in d's location
func (c Clock) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), int(c)/3600, (int(c)%3600)/60, int(c)%60, 0, d.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, (int(c)%3600)/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(text []byte) error {
	v, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ContractMonth truncates t to the first day of its month (UTC midnight)
func ContractMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
