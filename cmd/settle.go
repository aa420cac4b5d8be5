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
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/comex/asset"
	"github.com/penny-vault/comex/expiry"
	"github.com/penny-vault/comex/marketdata"
	"github.com/penny-vault/comex/settle"
	"github.com/penny-vault/comex/ticker"
)

var (
	settleAsset   string
	settleDate    string
	settleAt      string
	settleWindow  int
	settleTick    float64
	settleRunning bool
)

func init() {
	settleCmd.Flags().StringVarP(&settleAsset, "asset", "a", "", "catalog commodity supplying the close time, window and front month ticker")
	settleCmd.Flags().StringVarP(&settleDate, "date", "d", "", "trade date (default today)")
	settleCmd.Flags().StringVar(&settleAt, "at", "", "settlement time of day HH:MM:SS in UTC (default the asset close)")
	settleCmd.Flags().IntVarP(&settleWindow, "window", "w", 2, "settlement window in minutes")
	settleCmd.Flags().Float64VarP(&settleTick, "tick", "t", 0.01, "price tick size")
	settleCmd.Flags().BoolVarP(&settleRunning, "running", "r", false, "print the running VWAP and TWAP through the window")
	rootCmd.AddCommand(settleCmd)
}

// frontTicker returns the Bloomberg ticker of the asset's front month on date
func frontTicker(name string, date time.Time, loader asset.Source) (string, error) {
	engine, err := newEngine()
	if err != nil {
		return "", err
	}
	month, err := engine.FrontMonth(name, date, expiry.Futures, 0)
	if err != nil {
		return "", err
	}
	return ticker.NewEncoder(loader).Bloomberg(name, ticker.Request{Month: month, Suffix: true})
}

var settleCmd = &cobra.Command{
	Use:   "settle [SECURITY]",
	Short: "Reconstruct the settlement price from the trades of the settlement window",
	Example: `  comex settle "CLZ5 Comdty" --date 2015-11-20 --at 19:30:00 --window 2
  comex settle --asset WTI_NYMEX --date 2015-11-20 --running`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOr(settleDate, today())
		if err != nil {
			return err
		}

		security := ""
		if len(args) == 1 {
			security = args[0]
		}
		closeAt := asset.DefaultClose
		window := settleWindow

		if settleAsset != "" {
			loader, err := catalogSource()
			if err != nil {
				return err
			}
			catalog, err := loader.Catalog()
			if err != nil {
				return err
			}
			com, err := catalog.Commodity(settleAsset)
			if err != nil {
				return err
			}

			closeAt = com.Close
			if !cmd.Flags().Changed("window") && com.VWAP >= 1 {
				window = int(com.VWAP)
			}
			if security == "" {
				if security, err = frontTicker(settleAsset, date, loader); err != nil {
					return err
				}
			}
		}
		if security == "" {
			return fmt.Errorf("a SECURITY argument or --asset is required")
		}
		if settleAt != "" {
			if closeAt, err = asset.ParseClock(settleAt); err != nil {
				return err
			}
		}

		at := closeAt.On(date)
		log.Info().Str("Security", security).Time("Settle", at).Int("Window", window).Msg("analyzing settlement")

		analysis, err := settle.New(cmd.Context(), marketdata.NewGatewayFromConfig(), security, settleTick, window, at)
		if err != nil {
			return err
		}

		if settleRunning {
			return printFrame(analysis.Running())
		}

		stats := analysis.Stats()
		if jsonOutput {
			return printJSON(map[string]interface{}{
				"security": security,
				"settle":   at,
				"window":   window,
				"stats":    stats,
			})
		}
		printTable([]string{"Security", "Settle", "VWAP", "TWAP", "Volume"}, [][]string{{
			security,
			at.Format(time.RFC3339),
			strconv.FormatFloat(stats.VWAP, 'f', 6, 64),
			strconv.FormatFloat(stats.TWAP, 'f', 6, 64),
			strconv.FormatFloat(stats.Volume, 'f', -1, 64),
		}})
		return nil
	},
}
