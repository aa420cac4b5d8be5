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

package cmd

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/asset"
	"github.com/penny-vault/comex/common"
	"github.com/penny-vault/comex/dataframe"
)

// captureStdout runs fn and returns what it printed to stdout
func captureStdout(fn func() error) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	out := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		out <- data
	}()

	runErr := fn()
	w.Close()
	return string(<-out), runErr
}

var _ = Describe("Cmd", func() {
	DescribeTable("parses dates",
		func(input string, expected time.Time) {
			d, err := parseDate(input)
			Expect(err).To(BeNil())
			Expect(d).To(Equal(expected))
		},
		Entry("day", "2015-11-20", time.Date(2015, 11, 20, 0, 0, 0, 0, time.UTC)),
		Entry("month", "2015-12", time.Date(2015, 12, 1, 0, 0, 0, 0, time.UTC)),
		Entry("compact", "20151120", time.Date(2015, 11, 20, 0, 0, 0, 0, time.UTC)),
		Entry("timestamp", "2015-11-20T19:28:00", time.Date(2015, 11, 20, 19, 28, 0, 0, time.UTC)),
		Entry("zoned timestamp", "2015-11-20T14:28:00-05:00", time.Date(2015, 11, 20, 19, 28, 0, 0, time.UTC)),
	)

	It("rejects unknown dates", func() {
		_, err := parseDate("next tuesday")
		Expect(err).NotTo(BeNil())
	})

	It("returns the contract month of a date", func() {
		Expect(monthArg("2015-11-20")).To(Equal(time.Date(2015, 11, 1, 0, 0, 0, 0, time.UTC)))
	})

	It("converts dataframes to JSON records", func() {
		df, err := dataframe.New([]time.Time{
			time.Date(2015, 11, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2015, 11, 23, 0, 0, 0, 0, time.UTC),
		}, []string{"PX_LAST"}, []float64{40.39, math.NaN()})
		Expect(err).To(BeNil())

		records := frameRecords(df)
		Expect(records).To(Equal([]map[string]interface{}{
			{"date": "2015-11-20", "PX_LAST": 40.39},
			{"date": "2015-11-23", "PX_LAST": nil},
		}))
	})

	Context("when printing the version", func() {
		AfterEach(func() {
			versionShort = false
			versionDeps = false
			jsonOutput = false
		})

		It("prints the comex release", func() {
			rootCmd.SetArgs([]string{"version", "--short"})
			out, err := captureStdout(rootCmd.Execute)
			Expect(err).To(BeNil())
			Expect(out).To(Equal("v" + common.CurrentVersion.String() + "\n"))
		})

		It("emits build information as JSON", func() {
			rootCmd.SetArgs([]string{"version", "--json"})
			out, err := captureStdout(rootCmd.Execute)
			Expect(err).To(BeNil())

			var info common.BuildInfo
			Expect(json.Unmarshal([]byte(out), &info)).To(Succeed())
			Expect(info.Program).To(Equal("comex"))
			Expect(info.Version).To(Equal(common.Build().Version))
			Expect(info.Platform).To(Equal(common.Build().Platform))
		})
	})

	Context("when editing the catalog", func() {
		var (
			dir  string
			path string
		)

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "comex-cmd")
			Expect(err).To(BeNil())

			content, err := os.ReadFile("../testdata/assets.xml")
			Expect(err).To(BeNil())
			path = filepath.Join(dir, "assets.xml")
			Expect(os.WriteFile(path, content, 0o644)).To(Succeed())
			viper.Set("setting.asset_file", path)
		})

		AfterEach(func() {
			os.RemoveAll(dir)
			viper.Reset()
			rootCmd.SetArgs(nil)
		})

		It("adds and removes commodities", func() {
			rootCmd.SetArgs([]string{"catalog", "add-commodity", "BRENT_TEST",
				"--ticker", "CO", "--calendar", "ice", "--family", "NRG", "--cycle", "F,Z", "--log-output", "stderr"})
			Expect(rootCmd.Execute()).To(Succeed())

			catalog, err := asset.Load(path)
			Expect(err).To(BeNil())
			com, err := catalog.Commodity("BRENT_TEST")
			Expect(err).To(BeNil())
			Expect(com.Ticker).To(Equal("CO"))
			Expect(com.Rule).To(Equal(asset.RuleBrentIce))
			Expect(com.Family).To(Equal(asset.Energy))
			Expect(com.Trades(time.December)).To(BeTrue())
			Expect(com.Trades(time.June)).To(BeFalse())

			rootCmd.SetArgs([]string{"catalog", "remove", "BRENT_TEST"})
			Expect(rootCmd.Execute()).To(Succeed())

			catalog, err = asset.Load(path)
			Expect(err).To(BeNil())
			_, err = catalog.Get("BRENT_TEST")
			Expect(err).To(MatchError(asset.ErrAssetNotFound))
		})

		It("reports unknown assets", func() {
			rootCmd.SetArgs([]string{"catalog", "remove", "NOPE"})
			Expect(rootCmd.Execute()).To(MatchError(asset.ErrAssetNotFound))
		})
	})
})
