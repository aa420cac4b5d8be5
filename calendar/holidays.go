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

package calendar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// ReadHolidays parses a holiday list: one holiday per line, comma separated,
// where the last column holds the date. Blank lines and lines starting with
// '#' are skipped.
func ReadHolidays(r io.Reader) ([]time.Time, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	holidays := make([]time.Time, 0, 64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		token := strings.TrimSpace(record[len(record)-1])
		if token == "" {
			continue
		}

		dt, err := parseDate(token)
		if err != nil {
			line, _ := reader.FieldPos(len(record) - 1)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		holidays = append(holidays, dt)
	}

	return holidays, nil
}

func parseDate(token string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if dt, err := time.Parse(layout, token); err == nil {
			return dt, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidHolidayDate, token)
}

// LoadFile reads the holiday list at path and builds a calendar from it
func LoadFile(name, path string) (*Calendar, error) {
	fh, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("Calendar", name).Str("Path", path).Msg("could not open holiday file")
		return nil, err
	}
	defer fh.Close()

	holidays, err := ReadHolidays(fh)
	if err != nil {
		log.Error().Err(err).Str("Calendar", name).Str("Path", path).Msg("could not parse holiday file")
		return nil, err
	}

	log.Debug().Str("Calendar", name).Int("NumHolidays", len(holidays)).Msg("loaded holiday file")
	return New(name, holidays), nil
}
