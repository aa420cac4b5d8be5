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

import "strings"

// Type selects which date of a contract is computed
type Type int

const (
	Unknown Type = iota
	Futures
	Options
	Notice
)

var typeNames = map[string]Type{
	"futures": Futures,
	"f":       Futures,
	"notice":  Notice,
	"n":       Notice,
	"options": Options,
	"of":      Options,
	"o":       Options,
}

// ParseType maps a case-insensitive name or short code to a Type. The
// boolean is false when the string is not recognized, in which case Unknown
// is returned and the caller decides whether to treat it as an error.
func ParseType(s string) (Type, bool) {
	t, ok := typeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Unknown, false
	}
	return t, true
}

func (t Type) String() string {
	switch t {
	case Futures:
		return "F"
	case Options:
		return "OF"
	case Notice:
		return "N"
	default:
		return "Unknown"
	}
}
