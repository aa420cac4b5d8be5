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

// Package asset holds the static reference catalog of tradable commodities
// and indices.
package asset

import (
	"fmt"
	"sort"
	"time"
)

// Asset is implemented by every catalog entry
type Asset interface {
	Meta() Base
	Kind() Kind
}

// Base holds the fields shared by all assets
type Base struct {
	Name     string `json:"name" yaml:"name"`
	Currency string `json:"currency" yaml:"currency"`
	Ticker   string `json:"ticker" yaml:"ticker"`
	Calendar string `json:"calendar" yaml:"calendar"`
}

func (b Base) Meta() Base {
	return b
}

// Commodity is a futures contract family with its trading conventions and
// expiry rule
type Commodity struct {
	Base   `yaml:",inline"`
	Lot    float64     `json:"lot" yaml:"lot"`
	Factor float64     `json:"factor" yaml:"factor"`
	Close  Clock       `json:"close" yaml:"close"`
	VWAP   float64     `json:"vwap" yaml:"vwap"`
	Family Family      `json:"family" yaml:"family"`
	Rule   Rule        `json:"rule" yaml:"rule"`
	Cycle  []MonthCode `json:"cycle" yaml:"cycle"`
}

// NewCommodity creates a commodity with the catalog defaults and an expiry
// rule inferred from its name
func NewCommodity(name, currency, ticker, calendar string) *Commodity {
	return &Commodity{
		Base: Base{
			Name:     name,
			Currency: currency,
			Ticker:   ticker,
			Calendar: calendar,
		},
		Lot:    1,
		Factor: 1,
		Close:  DefaultClose,
		VWAP:   1,
		Rule:   RuleFor(name),
		Cycle:  []MonthCode{},
	}
}

func (c *Commodity) Kind() Kind {
	return KindCommodity
}

// Copy returns a commodity that shares no memory with c
func (c *Commodity) Copy() *Commodity {
	c2 := *c
	c2.Cycle = append([]MonthCode{}, c.Cycle...)
	return &c2
}

// Trades returns true if the month is part of the contract cycle. An empty
// cycle trades every month.
func (c *Commodity) Trades(m time.Month) bool {
	if len(c.Cycle) == 0 {
		return true
	}
	for _, code := range c.Cycle {
		if code.Month() == m {
			return true
		}
	}
	return false
}

// Index is a weighted basket of commodities
type Index struct {
	Base    `yaml:",inline"`
	Divisor float64            `json:"divisor" yaml:"divisor"`
	Basket  map[string]float64 `json:"basket" yaml:"basket"`
}

// NewIndex creates an index with a unit divisor and an empty basket
func NewIndex(name, currency, ticker, calendar string) *Index {
	return &Index{
		Base: Base{
			Name:     name,
			Currency: currency,
			Ticker:   ticker,
			Calendar: calendar,
		},
		Divisor: 1,
		Basket:  make(map[string]float64),
	}
}

func (i *Index) Kind() Kind {
	return KindIndex
}

// Copy returns an index that shares no memory with i
func (i *Index) Copy() *Index {
	i2 := *i
	i2.Basket = make(map[string]float64, len(i.Basket))
	for k, v := range i.Basket {
		i2.Basket[k] = v
	}
	return &i2
}

// Catalog maps asset names to assets
type Catalog struct {
	Exported time.Time
	Assets   map[string]Asset
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		Assets: make(map[string]Asset),
	}
}

// Put adds or replaces an asset keyed by its name
func (c *Catalog) Put(a Asset) error {
	name := a.Meta().Name
	if name == "" {
		return ErrEmptyName
	}
	c.Assets[name] = a
	return nil
}

// Get returns the named asset
func (c *Catalog) Get(name string) (Asset, error) {
	a, ok := c.Assets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}
	return a, nil
}

// Commodity returns the named asset if it is a commodity
func (c *Catalog) Commodity(name string) (*Commodity, error) {
	a, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	com, ok := a.(*Commodity)
	if !ok {
		return nil, fmt.Errorf("%w: %s is an %s", ErrWrongAssetVariant, name, a.Kind())
	}
	return com, nil
}

// Index returns the named asset if it is an index
func (c *Catalog) Index(name string) (*Index, error) {
	a, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	idx, ok := a.(*Index)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongAssetVariant, name, a.Kind())
	}
	return idx, nil
}

// Remove deletes the named asset
func (c *Catalog) Remove(name string) error {
	if _, ok := c.Assets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}
	delete(c.Assets, name)
	return nil
}

// Names returns the sorted asset names
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Assets))
	for k := range c.Assets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int {
	return len(c.Assets)
}

// Clone returns a deep copy of the catalog; no asset is shared with c
func (c *Catalog) Clone() *Catalog {
	c2 := &Catalog{
		Exported: c.Exported,
		Assets:   make(map[string]Asset, len(c.Assets)),
	}
	for k, v := range c.Assets {
		switch a := v.(type) {
		case *Commodity:
			c2.Assets[k] = a.Copy()
		case *Index:
			c2.Assets[k] = a.Copy()
		default:
			c2.Assets[k] = v
		}
	}
	return c2
}
