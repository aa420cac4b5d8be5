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
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

const exportedLayout = "02-01-2006 15:04:05"

// Now is used to stamp exported catalogs
var Now = time.Now

type xmlCatalog struct {
	XMLName  xml.Name   `xml:"assets"`
	Exported string     `xml:"exported,attr"`
	Assets   []xmlAsset `xml:"asset"`
}

type xmlAsset struct {
	Type     string `xml:"type,attr"`
	Name     string `xml:"name"`
	Currency string `xml:"currency"`
	Ticker   string `xml:"ticker"`
	Calendar string `xml:"calendar"`

	// commodity
	Lot    *float64  `xml:"lot,omitempty"`
	Factor *float64  `xml:"factor,omitempty"`
	Close  *Clock    `xml:"close,omitempty"`
	VWAP   *float64  `xml:"vwap,omitempty"`
	Family *Family   `xml:"family,omitempty"`
	Rule   *Rule     `xml:"rule,omitempty"`
	Cycle  *xmlCycle `xml:"cycle,omitempty"`

	// index
	Divisor *float64   `xml:"divisor,omitempty"`
	Basket  *xmlBasket `xml:"basket,omitempty"`
}

type xmlCycle struct {
	Codes []MonthCode `xml:"code"`
}

type xmlBasket struct {
	Constituents []xmlConstituent `xml:"constituent"`
}

type xmlConstituent struct {
	Contract string  `xml:"contract,attr"`
	Weight   float64 `xml:"weight,attr"`
}

// Load reads a catalog from the XML file at path
func Load(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("Path", path).Msg("could not open catalog file")
		return nil, err
	}
	defer fh.Close()

	c, err := Decode(fh)
	if err != nil {
		log.Error().Err(err).Str("Path", path).Msg("could not decode catalog file")
		return nil, err
	}
	return c, nil
}

// Decode parses a catalog document. Nothing is returned unless every
// asset in the document is valid.
func Decode(r io.Reader) (*Catalog, error) {
	doc := xmlCatalog{}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCatalogCorrupt, err)
	}

	c := New()
	if doc.Exported != "" {
		if exported, err := time.Parse(exportedLayout, doc.Exported); err == nil {
			c.Exported = exported
		} else {
			log.Warn().Str("Exported", doc.Exported).Msg("could not parse catalog export timestamp")
		}
	}

	for idx := range doc.Assets {
		a, err := doc.Assets[idx].asset()
		if err != nil {
			return nil, fmt.Errorf("%w: asset %d (%s): %s", ErrCatalogCorrupt, idx, doc.Assets[idx].Name, err)
		}
		if err := c.Put(a); err != nil {
			return nil, fmt.Errorf("%w: asset %d: %s", ErrCatalogCorrupt, idx, err)
		}
	}

	return c, nil
}

func (x *xmlAsset) asset() (Asset, error) {
	base := Base{
		Name:     x.Name,
		Currency: x.Currency,
		Ticker:   x.Ticker,
		Calendar: x.Calendar,
	}

	switch x.Type {
	case KindCommodity.String():
		com := NewCommodity(base.Name, base.Currency, base.Ticker, base.Calendar)
		if x.Lot != nil {
			com.Lot = *x.Lot
		}
		if x.Factor != nil {
			com.Factor = *x.Factor
		}
		if x.Close != nil {
			com.Close = *x.Close
		}
		if x.VWAP != nil {
			com.VWAP = *x.VWAP
		}
		if x.Family != nil {
			com.Family = *x.Family
		}
		if x.Rule != nil {
			com.Rule = *x.Rule
		}
		if x.Cycle != nil {
			com.Cycle = append(com.Cycle, x.Cycle.Codes...)
		}
		return com, nil
	case KindIndex.String():
		index := NewIndex(base.Name, base.Currency, base.Ticker, base.Calendar)
		if x.Divisor != nil {
			index.Divisor = *x.Divisor
		}
		if x.Basket != nil {
			for _, item := range x.Basket.Constituents {
				index.Basket[item.Contract] = item.Weight
			}
		}
		return index, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetType, x.Type)
	}
}

func toXML(a Asset) xmlAsset {
	meta := a.Meta()
	x := xmlAsset{
		Type:     a.Kind().String(),
		Name:     meta.Name,
		Currency: meta.Currency,
		Ticker:   meta.Ticker,
		Calendar: meta.Calendar,
	}

	switch v := a.(type) {
	case *Commodity:
		lot, factor, vwap := v.Lot, v.Factor, v.VWAP
		closeTime, family, rule := v.Close, v.Family, v.Rule
		x.Lot = &lot
		x.Factor = &factor
		x.Close = &closeTime
		x.VWAP = &vwap
		x.Family = &family
		x.Rule = &rule
		x.Cycle = &xmlCycle{Codes: append([]MonthCode{}, v.Cycle...)}
	case *Index:
		divisor := v.Divisor
		x.Divisor = &divisor
		contracts := make([]string, 0, len(v.Basket))
		for k := range v.Basket {
			contracts = append(contracts, k)
		}
		sort.Strings(contracts)
		x.Basket = &xmlBasket{Constituents: make([]xmlConstituent, 0, len(contracts))}
		for _, k := range contracts {
			x.Basket.Constituents = append(x.Basket.Constituents, xmlConstituent{Contract: k, Weight: v.Basket[k]})
		}
	}

	return x
}

// Encode writes the catalog as an indented XML document, assets sorted by name
func (c *Catalog) Encode(w io.Writer) error {
	doc := xmlCatalog{
		Exported: Now().Format(exportedLayout),
		Assets:   make([]xmlAsset, 0, c.Len()),
	}
	for _, name := range c.Names() {
		doc.Assets = append(doc.Assets, toXML(c.Assets[name]))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Save writes the catalog to path. A failure part way through may leave a
// partially written file behind.
func (c *Catalog) Save(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Str("Path", path).Msg("could not create catalog file")
		return err
	}

	if err := c.Encode(fh); err != nil {
		fh.Close()
		log.Error().Err(err).Str("Path", path).Msg("could not encode catalog")
		return err
	}

	return fh.Close()
}
