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

package calendar_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Calendar", func() {
	var (
		cal *calendar.Calendar
	)

	BeforeEach(func() {
		var err error
		cal, err = calendar.LoadFile("nym", "../testdata/nymex.txt")
		Expect(err).To(BeNil())
	})

	It("loads every holiday", func() {
		holidays := cal.Holidays()
		Expect(holidays).To(HaveLen(36))
		Expect(holidays[0]).To(Equal(date(2014, 1, 1)))
		Expect(holidays[35]).To(Equal(date(2017, 12, 25)))
	})

	DescribeTable("checks business days",
		func(d time.Time, expected bool) {
			Expect(cal.IsBusinessDay(d)).To(Equal(expected))
		},
		Entry("regular weekday", date(2015, 11, 25), true),
		Entry("Thanksgiving", date(2015, 11, 26), false),
		Entry("Saturday", date(2015, 11, 28), false),
		Entry("Sunday", date(2015, 11, 29), false),
		Entry("time of day is ignored", time.Date(2015, 12, 25, 15, 30, 0, 0, time.UTC), false),
		Entry("location is ignored", time.Date(2015, 12, 24, 23, 0, 0, 0, time.FixedZone("EST", -5*3600)), true),
	)

	DescribeTable("offsets by business days",
		func(d time.Time, n int, expected time.Time) {
			Expect(cal.Offset(d, n)).To(Equal(expected))
		},
		Entry("zero keeps the date", date(2015, 11, 28), 0, date(2015, 11, 28)),
		Entry("back three from a business day", date(2015, 11, 25), -3, date(2015, 11, 20)),
		Entry("back one from a Saturday", date(2015, 11, 28), -1, date(2015, 11, 27)),
		Entry("back one from a Monday", date(2015, 11, 30), -1, date(2015, 11, 27)),
		Entry("back across a holiday", date(2015, 11, 27), -1, date(2015, 11, 25)),
		Entry("forward one from a Friday", date(2015, 11, 20), 1, date(2015, 11, 23)),
		Entry("forward one from a Sunday", date(2015, 11, 22), 1, date(2015, 11, 23)),
		Entry("forward across Christmas", date(2015, 12, 24), 1, date(2015, 12, 28)),
		Entry("back across new year", date(2016, 1, 4), -2, date(2015, 12, 30)),
	)

	It("rolls to the next business day", func() {
		Expect(cal.Roll(date(2015, 11, 26))).To(Equal(date(2015, 11, 27)))
		Expect(cal.Roll(date(2015, 11, 25))).To(Equal(date(2015, 11, 25)))
	})

	It("counts business days", func() {
		Expect(cal.BusinessDays(date(2015, 11, 23), date(2015, 11, 29))).To(Equal(4))
	})

	Context("when reading holiday lists", func() {
		It("uses the last column and skips comments", func() {
			holidays, err := calendar.ReadHolidays(strings.NewReader("# header\nChristmas,extra,2015-12-25\n\n2016/01/01\n01/18/2016\n20160215\n"))
			Expect(err).To(BeNil())
			Expect(holidays).To(Equal([]time.Time{date(2015, 12, 25), date(2016, 1, 1), date(2016, 1, 18), date(2016, 2, 15)}))
		})

		It("reports invalid dates", func() {
			_, err := calendar.ReadHolidays(strings.NewReader("Christmas,2015-12-25\nBoxing Day,tomorrow\n"))
			Expect(err).To(MatchError(calendar.ErrInvalidHolidayDate))
			Expect(err.Error()).To(ContainSubstring("line 2"))
		})
	})

	Context("when resolving calendars by name", func() {
		AfterEach(func() {
			viper.Reset()
		})

		It("matches names case-insensitively", func() {
			p := calendar.NewProvider("../testdata", map[string]string{"NYM": "nymex.txt", "ice": "ice.txt"})
			Expect(p.Names()).To(Equal([]string{"ice", "nym"}))

			nym, err := p.Calendar("Nym")
			Expect(err).To(BeNil())
			Expect(nym.Name).To(Equal("nym"))
			Expect(nym.IsBusinessDay(date(2015, 11, 26))).To(BeFalse())

			ice, err := p.Calendar("ICE")
			Expect(err).To(BeNil())
			Expect(ice.IsBusinessDay(date(2015, 11, 26))).To(BeTrue())
			Expect(ice.IsBusinessDay(date(2015, 12, 28))).To(BeFalse())
		})

		It("fails for unknown calendars", func() {
			p := calendar.NewProvider("../testdata", map[string]string{"nym": "nymex.txt"})
			_, err := p.Calendar("LME")
			Expect(err).To(MatchError(calendar.ErrCalendarNotConfigured))
		})

		It("fails for missing files", func() {
			p := calendar.NewProvider("../testdata", map[string]string{"nym": "missing.txt"})
			_, err := p.Calendar("nym")
			Expect(err).NotTo(BeNil())
		})

		It("requires the calendar configuration section", func() {
			_, err := calendar.NewProviderFromConfig()
			Expect(err).To(MatchError(calendar.ErrConfigSectionMissing))
		})

		It("reads the calendar configuration section", func() {
			viper.Set("setting.data_dir", "../testdata")
			viper.Set("calendar", map[string]interface{}{"nym": "nymex.txt"})

			p, err := calendar.NewProviderFromConfig()
			Expect(err).To(BeNil())
			_, err = p.Calendar("NYM")
			Expect(err).To(BeNil())
		})
	})
})
