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

package asset_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/comex/asset"
)

var _ = Describe("XML", func() {
	BeforeEach(func() {
		asset.Now = func() time.Time {
			return time.Date(2015, 5, 29, 18, 0, 0, 0, time.UTC)
		}
	})

	AfterEach(func() {
		asset.Now = time.Now
	})

	Context("with the test catalog", func() {
		var (
			catalog *asset.Catalog
		)

		BeforeEach(func() {
			var err error
			catalog, err = asset.Load("../testdata/assets.xml")
			Expect(err).To(BeNil())
		})

		It("loads every asset", func() {
			Expect(catalog.Len()).To(Equal(10))
			Expect(catalog.Exported).To(Equal(time.Date(2015, 5, 29, 18, 0, 0, 0, time.UTC)))
		})

		It("reads commodity fields", func() {
			wti, err := catalog.Commodity("WTI_NYMEX")
			Expect(err).To(BeNil())
			Expect(wti.Currency).To(Equal("USD"))
			Expect(wti.Ticker).To(Equal("CL"))
			Expect(wti.Calendar).To(Equal("NYM"))
			Expect(wti.Lot).To(Equal(1000.0))
			Expect(wti.Factor).To(Equal(1.0))
			Expect(wti.Close.String()).To(Equal("14:30:00"))
			Expect(wti.Family).To(Equal(asset.Energy))
			Expect(wti.Cycle).To(HaveLen(12))
			Expect(wti.Cycle[11]).To(Equal(asset.CodeZ))
		})

		It("resolves rules at load time", func() {
			brent, err := catalog.Commodity("BRENT_ICE")
			Expect(err).To(BeNil())
			Expect(brent.Rule).To(Equal(asset.RuleBrentIce))

			corn, err := catalog.Commodity("CORN_CBOT")
			Expect(err).To(BeNil())
			Expect(corn.Rule).To(Equal(asset.RuleUnsupported))
			Expect(corn.Family).To(Equal(asset.Agriculture))
			Expect(corn.Cycle).To(Equal([]asset.MonthCode{asset.CodeH, asset.CodeK, asset.CodeN, asset.CodeU, asset.CodeZ}))
		})

		It("prefers an explicit rule element", func() {
			dubai, err := catalog.Commodity("DUBAI_PLATTS")
			Expect(err).To(BeNil())
			Expect(dubai.Rule).To(Equal(asset.RuleWtiNymex))
		})

		It("reads index baskets", func() {
			index, err := catalog.Index("SPGSCLP")
			Expect(err).To(BeNil())
			Expect(index.Divisor).To(Equal(1.0))
			Expect(index.Basket).To(Equal(map[string]float64{"CLN5": 0.5, "CLQ5": 0.5}))
		})

		It("round trips", func() {
			buf := &bytes.Buffer{}
			Expect(catalog.Encode(buf)).To(Succeed())

			c2, err := asset.Decode(buf)
			Expect(err).To(BeNil())
			Expect(c2.Assets).To(Equal(catalog.Assets))
		})
	})

	It("round trips a commodity and an index through a file", func() {
		c := asset.New()
		wti := asset.NewCommodity("WTI_NYMEX", "USD", "CL", "NYM")
		wti.Lot = 1000
		wti.Factor = 0.01
		wti.VWAP = 0
		wti.Family = asset.Energy
		wti.Close = asset.Clock(14*3600 + 28*60 + 30)
		wti.Cycle = []asset.MonthCode{asset.CodeF, asset.CodeZ}
		Expect(c.Put(wti)).To(Succeed())

		index := asset.NewIndex("SPGSCLP", "USD", "SPGSCLP", "NYC")
		index.Divisor = 2.5
		index.Basket["CLN5"] = 0.25
		index.Basket["CLQ5"] = 0.75
		Expect(c.Put(index)).To(Succeed())

		dir, err := os.MkdirTemp("", "comex-asset")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "assets.xml")
		Expect(c.Save(path)).To(Succeed())

		contents, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(string(contents)).To(ContainSubstring(`<assets exported="29-05-2015 18:00:00">`))
		Expect(string(contents)).To(ContainSubstring("\n  <asset type=\"commodity\">\n    <name>WTI_NYMEX</name>"))
		Expect(string(contents)).To(ContainSubstring(`<constituent contract="CLQ5" weight="0.75"></constituent>`))

		c2, err := asset.Load(path)
		Expect(err).To(BeNil())
		Expect(c2.Names()).To(Equal([]string{"SPGSCLP", "WTI_NYMEX"}))
		Expect(c2.Assets).To(Equal(c.Assets))
	})

	DescribeTable("rejects corrupt documents",
		func(doc string) {
			c, err := asset.Decode(strings.NewReader(doc))
			Expect(err).To(MatchError(asset.ErrCatalogCorrupt))
			Expect(c).To(BeNil())
		},
		Entry("not xml", "this is not xml"),
		Entry("unknown type", `<assets><asset type="bond"><name>X</name></asset></assets>`),
		Entry("bad family", `<assets><asset type="commodity"><name>X</name><family>SOFT</family></asset></assets>`),
		Entry("bad close", `<assets><asset type="commodity"><name>X</name><close>late</close></asset></assets>`),
		Entry("bad month code", `<assets><asset type="commodity"><name>X</name><cycle><code>A</code></cycle></asset></assets>`),
		Entry("missing name", `<assets><asset type="index"><divisor>1</divisor></asset></assets>`),
	)

	It("fills commodity defaults for missing elements", func() {
		c, err := asset.Decode(strings.NewReader(`<assets><asset type="commodity"><name>BR_TEST</name></asset></assets>`))
		Expect(err).To(BeNil())
		com, err := c.Commodity("BR_TEST")
		Expect(err).To(BeNil())
		Expect(com.Lot).To(Equal(1.0))
		Expect(com.Close).To(Equal(asset.DefaultClose))
		Expect(com.Rule).To(Equal(asset.RuleBrentIce))
	})

	It("fails on missing files", func() {
		_, err := asset.Load("../testdata/does-not-exist.xml")
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})
