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

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/penny-vault/comex/asset"
)

var _ = Describe("Loader", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "comex-loader")
		Expect(err).To(BeNil())

		contents, err := os.ReadFile("../testdata/assets.xml")
		Expect(err).To(BeNil())
		path = filepath.Join(dir, "assets.xml")
		Expect(os.WriteFile(path, contents, 0600)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
		viper.Reset()
	})

	It("loads the catalog from disk", func() {
		loader := asset.NewLoader(path)
		c, err := loader.Catalog()
		Expect(err).To(BeNil())
		Expect(c.Len()).To(Equal(10))
	})

	It("hands out independent copies", func() {
		loader := asset.NewLoader(path)
		c, err := loader.Catalog()
		Expect(err).To(BeNil())
		Expect(c.Remove("WTI_NYMEX")).To(Succeed())

		c2, err := loader.Catalog()
		Expect(err).To(BeNil())
		Expect(c2.Len()).To(Equal(10))
	})

	It("does not share assets with the cache", func() {
		loader := asset.NewLoader(path)
		c, err := loader.Catalog()
		Expect(err).To(BeNil())

		com, err := c.Commodity("WTI_NYMEX")
		Expect(err).To(BeNil())
		com.Ticker = "XX"
		com.Rule = asset.RuleUnsupported
		com.Cycle[0] = asset.CodeZ

		idx, err := c.Index("SPGSCLP")
		Expect(err).To(BeNil())
		idx.Basket["CLN5"] = 1

		c2, err := loader.Catalog()
		Expect(err).To(BeNil())
		com2, err := c2.Commodity("WTI_NYMEX")
		Expect(err).To(BeNil())
		Expect(com2.Ticker).To(Equal("CL"))
		Expect(com2.Rule).To(Equal(asset.RuleWtiNymex))
		Expect(com2.Cycle[0]).To(Equal(asset.CodeF))

		idx2, err := c2.Index("SPGSCLP")
		Expect(err).To(BeNil())
		Expect(idx2.Basket["CLN5"]).To(Equal(0.5))
	})

	It("picks up changes to the file", func() {
		loader := asset.NewLoader(path)
		c, err := loader.Catalog()
		Expect(err).To(BeNil())

		Expect(c.Remove("SPGSCLP")).To(Succeed())
		Expect(loader.Save(c)).To(Succeed())

		c2, err := loader.Catalog()
		Expect(err).To(BeNil())
		Expect(c2.Len()).To(Equal(9))
		_, err = c2.Get("SPGSCLP")
		Expect(err).To(MatchError(asset.ErrAssetNotFound))
	})

	It("fails when no path is configured", func() {
		_, err := asset.NewLoader("").Catalog()
		Expect(err).To(MatchError(asset.ErrCatalogPathUnset))

		_, err = asset.NewLoaderFromConfig()
		Expect(err).To(MatchError(asset.ErrCatalogPathUnset))
	})

	It("resolves relative paths against the data directory", func() {
		viper.Set("setting.asset_file", "assets.xml")
		viper.Set("setting.data_dir", dir)

		loader, err := asset.NewLoaderFromConfig()
		Expect(err).To(BeNil())
		Expect(loader.Path).To(Equal(path))
	})

	It("serves a static catalog", func() {
		c := asset.New()
		Expect(c.Put(asset.NewCommodity("NG_NYMEX", "USD", "NG", "NYM"))).To(Succeed())
		src := asset.Static(c)
		c2, err := src.Catalog()
		Expect(err).To(BeNil())
		Expect(c2).To(BeIdenticalTo(c))
	})

	Context("when exporting", func() {
		var (
			c *asset.Catalog
		)

		BeforeEach(func() {
			var err error
			c, err = asset.Load(path)
			Expect(err).To(BeNil())
		})

		It("writes json", func() {
			buf := &bytes.Buffer{}
			Expect(c.Export(buf, "json")).To(Succeed())

			doc := map[string]interface{}{}
			Expect(json.Unmarshal(buf.Bytes(), &doc)).To(Succeed())
			Expect(doc["commodities"]).To(HaveLen(9))
			Expect(doc["indices"]).To(HaveLen(1))
			Expect(buf.String()).To(ContainSubstring(`"family": "NRG"`))
			Expect(buf.String()).To(ContainSubstring(`"close": "14:30:00"`))
		})

		It("writes yaml", func() {
			buf := &bytes.Buffer{}
			Expect(c.Export(buf, "YAML")).To(Succeed())

			doc := map[string]interface{}{}
			Expect(yaml.Unmarshal(buf.Bytes(), &doc)).To(Succeed())
			Expect(doc["commodities"]).To(HaveLen(9))
			Expect(buf.String()).To(ContainSubstring("ticker: CL"))
		})

		It("writes xml", func() {
			buf := &bytes.Buffer{}
			Expect(c.Export(buf, "xml")).To(Succeed())
			c2, err := asset.Decode(buf)
			Expect(err).To(BeNil())
			Expect(c2.Len()).To(Equal(10))
		})

		It("rejects unknown formats", func() {
			Expect(c.Export(&bytes.Buffer{}, "csv")).To(MatchError(asset.ErrUnsupportedFormat))
		})
	})
})
