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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/comex/asset"
)

var (
	catalogFormat string
	catalogOutput string

	newCurrency string
	newTicker   string
	newCalendar string

	newLot    float64
	newFactor float64
	newClose  string
	newVWAP   float64
	newFamily string
	newRule   string
	newCycle  []string

	newDivisor float64
	newBasket  []string
)

func init() {
	catalogCmd.AddCommand(catalogListCmd)

	catalogShowCmd.Flags().StringVarP(&catalogFormat, "format", "f", "yaml", "output format: xml, json or yaml")
	catalogCmd.AddCommand(catalogShowCmd)

	catalogExportCmd.Flags().StringVarP(&catalogFormat, "format", "f", "xml", "output format: xml, json or yaml")
	catalogExportCmd.Flags().StringVarP(&catalogOutput, "output", "o", "", "write to file instead of stdout")
	catalogCmd.AddCommand(catalogExportCmd)

	for _, c := range []*cobra.Command{addCommodityCmd, addIndexCmd} {
		c.Flags().StringVar(&newCurrency, "currency", "USD", "quote currency")
		c.Flags().StringVar(&newTicker, "ticker", "", "vendor root ticker")
		c.Flags().StringVar(&newCalendar, "calendar", "", "holiday calendar name")
		catalogCmd.AddCommand(c)
	}

	addCommodityCmd.Flags().Float64Var(&newLot, "lot", 1, "lot size")
	addCommodityCmd.Flags().Float64Var(&newFactor, "factor", 1, "price factor applied to option strikes")
	addCommodityCmd.Flags().StringVar(&newClose, "close", asset.DefaultClose.String(), "settlement time of day (HH:MM:SS)")
	addCommodityCmd.Flags().Float64Var(&newVWAP, "vwap", 1, "settlement window in minutes")
	addCommodityCmd.Flags().StringVar(&newFamily, "family", "Unknown", "family: Unknown, AGS, NRG, MTL or PGM")
	addCommodityCmd.Flags().StringVar(&newRule, "rule", "", "expiry rule (default inferred from the name)")
	addCommodityCmd.Flags().StringSliceVar(&newCycle, "cycle", nil, "traded month codes, e.g. H,K,N,U,Z (default every month)")

	addIndexCmd.Flags().Float64Var(&newDivisor, "divisor", 1, "index divisor")
	addIndexCmd.Flags().StringSliceVar(&newBasket, "basket", nil, "constituents as CONTRACT:WEIGHT")

	catalogCmd.AddCommand(catalogRemoveCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and edit the asset catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the assets of the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := catalogSource()
		if err != nil {
			return err
		}
		catalog, err := loader.Catalog()
		if err != nil {
			return err
		}

		if jsonOutput {
			return catalog.Export(os.Stdout, "json")
		}

		rows := make([][]string, 0, catalog.Len())
		for _, name := range catalog.Names() {
			a := catalog.Assets[name]
			meta := a.Meta()
			rule := ""
			if com, ok := a.(*asset.Commodity); ok {
				rule = com.Rule.String()
			}
			rows = append(rows, []string{meta.Name, a.Kind().String(), meta.Ticker, meta.Calendar, meta.Currency, rule})
		}
		printTable([]string{"Name", "Type", "Ticker", "Calendar", "Currency", "Rule"}, rows)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a single asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := catalogSource()
		if err != nil {
			return err
		}
		catalog, err := loader.Catalog()
		if err != nil {
			return err
		}
		a, err := catalog.Get(args[0])
		if err != nil {
			return err
		}

		single := asset.New()
		if err := single.Put(a); err != nil {
			return err
		}
		format := catalogFormat
		if jsonOutput {
			format = "json"
		}
		return single.Export(os.Stdout, format)
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as xml, json or yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := catalogSource()
		if err != nil {
			return err
		}
		catalog, err := loader.Catalog()
		if err != nil {
			return err
		}

		if catalogOutput == "" {
			return catalog.Export(os.Stdout, catalogFormat)
		}

		fh, err := os.Create(catalogOutput)
		if err != nil {
			log.Error().Err(err).Str("Path", catalogOutput).Msg("could not create export file")
			return err
		}
		defer fh.Close()
		return catalog.Export(fh, catalogFormat)
	},
}

// editCatalog loads the catalog, applies fn and saves the result
func editCatalog(fn func(*asset.Catalog) error) error {
	loader, err := catalogSource()
	if err != nil {
		return err
	}
	catalog, err := loader.Catalog()
	if err != nil {
		return err
	}
	if err := fn(catalog); err != nil {
		return err
	}
	return loader.Save(catalog)
}

var addCommodityCmd = &cobra.Command{
	Use:     "add-commodity NAME",
	Short:   "Add or replace a commodity",
	Example: `  comex catalog add-commodity WTI_NYMEX --ticker CL --calendar nym --cycle F,G,H,J,K,M,N,Q,U,V,X,Z`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		com := asset.NewCommodity(args[0], newCurrency, newTicker, newCalendar)
		com.Lot = newLot
		com.Factor = newFactor
		com.VWAP = newVWAP

		var err error
		if com.Close, err = asset.ParseClock(newClose); err != nil {
			return err
		}
		if com.Family, err = asset.ParseFamily(newFamily); err != nil {
			return err
		}
		if newRule != "" {
			if com.Rule, err = asset.ParseRule(newRule); err != nil {
				return err
			}
		}
		for _, code := range newCycle {
			mc, err := asset.ParseMonthCode(code)
			if err != nil {
				return err
			}
			com.Cycle = append(com.Cycle, mc)
		}

		return editCatalog(func(c *asset.Catalog) error {
			log.Info().Str("Asset", com.Name).Stringer("Rule", com.Rule).Msg("adding commodity")
			return c.Put(com)
		})
	},
}

var addIndexCmd = &cobra.Command{
	Use:     "add-index NAME",
	Short:   "Add or replace an index",
	Example: `  comex catalog add-index SPGSCLP --ticker SPGSCLP --calendar nym --basket CLZ5:0.5,CLF6:0.5`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx := asset.NewIndex(args[0], newCurrency, newTicker, newCalendar)
		idx.Divisor = newDivisor

		for _, item := range newBasket {
			parts := strings.SplitN(item, ":", 2)
			if len(parts) != 2 || parts[0] == "" {
				return fmt.Errorf("invalid basket constituent %q: expected CONTRACT:WEIGHT", item)
			}
			weight, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return fmt.Errorf("invalid weight for %s: %w", parts[0], err)
			}
			idx.Basket[parts[0]] = weight
		}

		return editCatalog(func(c *asset.Catalog) error {
			log.Info().Str("Asset", idx.Name).Int("Constituents", len(idx.Basket)).Msg("adding index")
			return c.Put(idx)
		})
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove an asset from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editCatalog(func(c *asset.Catalog) error {
			return c.Remove(args[0])
		})
	},
}
