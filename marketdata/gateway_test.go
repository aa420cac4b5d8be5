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

package marketdata_test

import (
	"context"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/common"
	"github.com/penny-vault/comex/marketdata"
)

const gatewayURL = "http://gateway.test:8194"

func fixture(name string) []byte {
	content, err := os.ReadFile("../testdata/" + name)
	if err != nil {
		panic(err)
	}
	return content
}

var _ = Describe("Gateway", func() {
	var (
		gw       *marketdata.Gateway
		ctx      context.Context
		captured *http.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		gw = marketdata.NewGateway(gatewayURL+"/", 5*time.Second)
		httpmock.ActivateNonDefault(gw.Client)
		captured = nil
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
		viper.Reset()
	})

	respondWith := func(path string, status int, body []byte) {
		httpmock.RegisterResponder("GET", gatewayURL+path, func(req *http.Request) (*http.Response, error) {
			captured = req
			return httpmock.NewBytesResponse(status, body), nil
		})
	}

	Context("when requesting historical data", func() {
		BeforeEach(func() {
			respondWith("/historical", 200, fixture("historical.json"))
		})

		It("returns one dataframe per security", func() {
			res, err := gw.HistoricalData(ctx, []string{"CLZ5 Comdty", "COF6 Comdty"}, []string{"PX_LAST", "PX_VOLUME"},
				time.Date(2015, 11, 2, 0, 0, 0, 0, time.UTC), time.Date(2015, 11, 4, 0, 0, 0, 0, time.UTC), marketdata.HistoricalOptions{})
			Expect(err).To(BeNil())
			Expect(res.Keys()).To(Equal([]string{"CLZ5 Comdty", "COF6 Comdty"}))

			cl := res["CLZ5 Comdty"]
			Expect(cl.ColNames).To(Equal([]string{"PX_LAST", "PX_VOLUME"}))
			Expect(cl.Dates).To(Equal([]time.Time{
				time.Date(2015, 11, 2, 0, 0, 0, 0, time.UTC),
				time.Date(2015, 11, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2015, 11, 4, 0, 0, 0, 0, time.UTC),
			}))
			Expect(cl.Vals[0]).To(Equal([]float64{46.14, 47.90, 46.32}))
			Expect(math.IsNaN(cl.Vals[1][2])).To(BeTrue())
		})

		It("sends the request parameters", func() {
			_, err := gw.HistoricalData(ctx, []string{"CLZ5 Comdty"}, nil,
				time.Date(2015, 11, 2, 0, 0, 0, 0, time.UTC), time.Date(2015, 11, 4, 0, 0, 0, 0, time.UTC), marketdata.HistoricalOptions{Periodicity: "WEEKLY"})
			Expect(err).To(BeNil())
			Expect(captured).NotTo(BeNil())

			q := captured.URL.Query()
			Expect(q["securities"]).To(Equal([]string{"CLZ5 Comdty"}))
			Expect(q["fields"]).To(Equal([]string{"PX_LAST"}))
			Expect(q.Get("startDate")).To(Equal("20151102"))
			Expect(q.Get("endDate")).To(Equal("20151104"))
			Expect(q.Get("periodicitySelection")).To(Equal("WEEKLY"))
			Expect(q.Get("nonTradingDayFillOption")).To(Equal("ACTIVE_DAYS_ONLY"))
			Expect(captured.Header.Get(marketdata.CorrelationHeader)).To(HaveLen(36))
		})

		It("serves repeated requests from the cache", func() {
			viper.Set("cache.local_size", 16)
			Expect(common.SetupCache()).To(Succeed())
			gw.UseCache = true

			for ii := 0; ii < 2; ii++ {
				res, err := gw.HistoricalData(ctx, []string{"COF6 Comdty"}, []string{"PX_LAST"},
					time.Date(2015, 11, 2, 0, 0, 0, 0, time.UTC), time.Date(2015, 11, 4, 0, 0, 0, 0, time.UTC), marketdata.HistoricalOptions{})
				Expect(err).To(BeNil())
				Expect(res["COF6 Comdty"].Vals[0]).To(Equal([]float64{48.79, 50.54, 48.58}))
			}
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
		})

		It("validates the request", func() {
			_, err := gw.HistoricalData(ctx, nil, nil, time.Now(), time.Now(), marketdata.HistoricalOptions{})
			Expect(err).To(MatchError(marketdata.ErrInvalidRequest))
			_, err = gw.HistoricalData(ctx, []string{"CLZ5 Comdty"}, nil,
				time.Date(2015, 11, 4, 0, 0, 0, 0, time.UTC), time.Date(2015, 11, 2, 0, 0, 0, 0, time.UTC), marketdata.HistoricalOptions{})
			Expect(err).To(MatchError(marketdata.ErrInvalidRequest))
			Expect(httpmock.GetTotalCallCount()).To(Equal(0))
		})
	})

	It("reports vendor errors", func() {
		respondWith("/historical", 200, []byte(`{"responseError":{"category":"BAD_ARGS","message":"Invalid field"}}`))
		_, err := gw.HistoricalData(ctx, []string{"CLZ5 Comdty"}, []string{"PX_BOGUS"}, time.Now(), time.Now(), marketdata.HistoricalOptions{})
		Expect(err).To(MatchError(marketdata.ErrVendorResponse))
		Expect(err.Error()).To(ContainSubstring("Invalid field"))
	})

	It("reports security errors", func() {
		respondWith("/historical", 200, []byte(`{"securityData":[{"security":"XXZ5 Comdty","securityError":{"category":"BAD_SEC","message":"Unknown/Invalid security"}}]}`))
		_, err := gw.HistoricalData(ctx, []string{"XXZ5 Comdty"}, nil, time.Now(), time.Now(), marketdata.HistoricalOptions{})
		Expect(err).To(MatchError(marketdata.ErrVendorResponse))
	})

	It("reports error status codes", func() {
		respondWith("/ticks", 503, []byte(`service unavailable`))
		_, err := gw.IntradayTicks(ctx, "CLZ5 Comdty", nil, time.Now().Add(-time.Minute), time.Now())
		Expect(err).To(MatchError(marketdata.ErrVendorStatus))
	})

	It("reports malformed responses", func() {
		respondWith("/bars", 200, []byte(`{"barData": [`))
		_, err := gw.IntradayBars(ctx, "CLZ5 Comdty", "TRADE", 1, time.Now().Add(-time.Minute), time.Now())
		Expect(err).To(MatchError(marketdata.ErrVendorResponse))
	})

	It("fetches intraday ticks", func() {
		respondWith("/ticks", 200, fixture("ticks.json"))
		begin := time.Date(2015, 11, 20, 19, 28, 0, 0, time.UTC)
		end := time.Date(2015, 11, 20, 19, 30, 0, 0, time.UTC)

		ticks, err := gw.IntradayTicks(ctx, "CLZ5 Comdty", nil, begin, end)
		Expect(err).To(BeNil())
		Expect(ticks).To(HaveLen(6))
		Expect(ticks[1]).To(Equal(marketdata.Tick{Time: begin, Type: "AT_TRADE", Value: 40.55, Size: 2}))

		q := captured.URL.Query()
		Expect(q.Get("security")).To(Equal("CLZ5 Comdty"))
		Expect(q["eventTypes"]).To(Equal([]string{"TRADE", "AT_TRADE"}))
		Expect(q.Get("startDateTime")).To(Equal("2015-11-20T19:28:00"))
		Expect(q.Get("endDateTime")).To(Equal("2015-11-20T19:30:00"))
	})

	It("fetches intraday bars", func() {
		respondWith("/bars", 200, fixture("bars.json"))
		begin := time.Date(2015, 11, 20, 19, 25, 0, 0, time.UTC)

		bars, err := gw.IntradayBars(ctx, "CLZ5 Comdty", "", 1, begin, begin.Add(2*time.Minute))
		Expect(err).To(BeNil())
		Expect(bars).To(HaveLen(2))
		Expect(bars[0]).To(Equal(marketdata.Bar{Time: begin, Open: 40.41, High: 40.49, Low: 40.40, Close: 40.47, Volume: 812, NumEvents: 301}))
		Expect(captured.URL.Query().Get("eventType")).To(Equal("TRADE"))
		Expect(captured.URL.Query().Get("interval")).To(Equal("1"))

		df := marketdata.BarFrame(bars)
		Expect(df.ColNames).To(Equal([]string{"open", "high", "low", "close", "volume"}))
		Expect(df.Column("close")).To(Equal([]float64{40.47, 40.50}))
	})

	It("summarizes a session of bars", func() {
		respondWith("/bars", 200, fixture("bars.json"))
		begin := time.Date(2015, 11, 20, 19, 25, 0, 0, time.UTC)

		bars, err := gw.IntradayBars(ctx, "CLZ5 Comdty", "TRADE", 1, begin, begin.Add(2*time.Minute))
		Expect(err).To(BeNil())

		summary := marketdata.SummarizeBars(marketdata.BarFrame(bars))
		Expect(summary.Dates).To(Equal([]time.Time{begin.Add(time.Minute)}))
		Expect(summary.Column("open")).To(Equal([]float64{40.41}))
		Expect(summary.Column("high")).To(Equal([]float64{40.52}))
		Expect(summary.Column("low")).To(Equal([]float64{40.40}))
		Expect(summary.Column("close")).To(Equal([]float64{40.50}))
		Expect(summary.Column("volume")).To(Equal([]float64{1716}))

		Expect(marketdata.SummarizeBars(marketdata.BarFrame(nil)).Len()).To(Equal(0))
	})

	It("rejects invalid bar intervals", func() {
		_, err := gw.IntradayBars(ctx, "CLZ5 Comdty", "TRADE", 0, time.Now(), time.Now())
		Expect(err).To(MatchError(marketdata.ErrInvalidRequest))
	})

	It("reads its configuration", func() {
		viper.Set("vendor.url", "http://bbg.example.com:8194/")
		viper.Set("vendor.timeout", "10s")
		viper.Set("vendor.cache", true)

		g := marketdata.NewGatewayFromConfig()
		Expect(g.BaseURL).To(Equal("http://bbg.example.com:8194"))
		Expect(g.Client.Timeout).To(Equal(10 * time.Second))
		Expect(g.UseCache).To(BeTrue())
	})
})

var _ = Describe("AggregateTicks", func() {
	It("weights values by size per timestamp", func() {
		t0 := time.Date(2015, 11, 20, 19, 28, 0, 0, time.UTC)
		df := marketdata.AggregateTicks([]marketdata.Tick{
			{Time: t0.Add(30 * time.Second), Value: 40.57, Size: 1},
			{Time: t0, Value: 40.53, Size: 2},
			{Time: t0, Value: 40.55, Size: 2},
			{Time: t0.Add(time.Minute), Value: 40.60, Size: 0},
		})

		Expect(df.ColNames).To(Equal([]string{"value", "size"}))
		Expect(df.Dates).To(Equal([]time.Time{t0, t0.Add(30 * time.Second)}))
		Expect(df.Vals[0][0]).To(BeNumerically("~", 40.54, 1e-9))
		Expect(df.Vals[0][1]).To(BeNumerically("~", 40.57, 1e-9))
		Expect(df.Vals[1]).To(Equal([]float64{4, 1}))
	})

	It("handles no ticks", func() {
		Expect(marketdata.AggregateTicks(nil).Len()).To(Equal(0))
	})
})
