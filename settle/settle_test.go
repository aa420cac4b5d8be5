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

package settle_test

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/comex/marketdata"
	"github.com/penny-vault/comex/settle"
)

type fakeSource struct {
	ticks []marketdata.Tick
	err   error
	begin time.Time
	end   time.Time
}

func (f *fakeSource) IntradayTicks(ctx context.Context, security string, eventTypes []string, begin, end time.Time) ([]marketdata.Tick, error) {
	f.begin = begin
	f.end = end
	return f.ticks, f.err
}

var settleTime = time.Date(2015, 11, 20, 19, 30, 0, 0, time.UTC)

var _ = Describe("Analysis", func() {
	Context("with ticks from the gateway", func() {
		var (
			analysis *settle.Analysis
		)

		BeforeEach(func() {
			gw := marketdata.NewGateway("http://gateway.test", time.Second)
			httpmock.ActivateNonDefault(gw.Client)

			content, err := os.ReadFile("../testdata/ticks.json")
			Expect(err).To(BeNil())
			httpmock.RegisterResponder("GET", "http://gateway.test/ticks", httpmock.NewBytesResponder(200, content))

			analysis, err = settle.New(context.Background(), gw, "CLZ5 Comdty", 0.01, 2, settleTime)
			Expect(err).To(BeNil())
		})

		AfterEach(func() {
			httpmock.DeactivateAndReset()
		})

		It("truncates prices to the tick", func() {
			df := analysis.Frame()
			Expect(df.Len()).To(Equal(4))
			Expect(df.Column("value")).To(Equal([]float64{40.54, 40.57, 40.62, 40.58}))
			Expect(df.Column("size")).To(Equal([]float64{4, 1, 5, 3}))
		})

		It("computes settlement statistics", func() {
			stats := analysis.Stats()
			Expect(stats.VWAP).To(BeNumerically("~", 40.58230769230769, 1e-9))
			Expect(stats.TWAP).To(BeNumerically("~", 40.5775, 1e-9))
			Expect(stats.Volume).To(Equal(13.0))
		})

		It("computes running statistics", func() {
			running := analysis.Running()
			Expect(running.ColNames).To(Equal([]string{"vwap", "twap"}))
			Expect(running.Dates[3]).To(Equal(settleTime))

			expectedVWAP := []float64{40.54, 40.546, 40.583, 40.58230769230769}
			expectedTWAP := []float64{40.54, 40.555, 40.57666666666667, 40.5775}
			for idx := range expectedVWAP {
				Expect(running.Vals[0][idx]).To(BeNumerically("~", expectedVWAP[idx], 1e-9))
				Expect(running.Vals[1][idx]).To(BeNumerically("~", expectedTWAP[idx], 1e-9))
			}
		})
	})

	It("requests the settlement window", func() {
		src := &fakeSource{ticks: []marketdata.Tick{{Time: settleTime, Value: 40.5, Size: 1}}}
		_, err := settle.New(context.Background(), src, "CLZ5 Comdty", 0.01, 2, settleTime)
		Expect(err).To(BeNil())
		Expect(src.begin).To(Equal(time.Date(2015, 11, 20, 19, 28, 0, 0, time.UTC)))
		Expect(src.end).To(Equal(settleTime))
	})

	It("ignores ticks outside the window", func() {
		src := &fakeSource{ticks: []marketdata.Tick{
			{Time: settleTime.Add(-5 * time.Minute), Value: 39.0, Size: 10},
			{Time: settleTime, Value: 40.5, Size: 1},
			{Time: settleTime.Add(time.Second), Value: 41.0, Size: 10},
		}}
		analysis, err := settle.New(context.Background(), src, "CLZ5 Comdty", 0.25, 2, settleTime)
		Expect(err).To(BeNil())
		Expect(analysis.Stats()).To(Equal(settle.Stats{VWAP: 40.5, TWAP: 40.5, Volume: 1}))
	})

	It("fails when no trades printed", func() {
		src := &fakeSource{ticks: []marketdata.Tick{{Time: settleTime, Value: 40.5, Size: 0}}}
		_, err := settle.New(context.Background(), src, "CLZ5 Comdty", 0.01, 2, settleTime)
		Expect(err).To(MatchError(settle.ErrNoTicks))
	})

	It("passes source errors through", func() {
		boom := errors.New("gateway down")
		_, err := settle.New(context.Background(), &fakeSource{err: boom}, "CLZ5 Comdty", 0.01, 2, settleTime)
		Expect(err).To(MatchError(boom))
	})

	DescribeTable("validates parameters",
		func(security string, tick float64, window int) {
			_, err := settle.New(context.Background(), &fakeSource{}, security, tick, window, settleTime)
			Expect(err).To(MatchError(settle.ErrInvalidInput))
		},
		Entry("empty security", "", 0.01, 2),
		Entry("zero tick", "CLZ5 Comdty", 0.0, 2),
		Entry("negative window", "CLZ5 Comdty", 0.01, -1),
	)
})
