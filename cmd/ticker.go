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

	"github.com/spf13/cobra"

	"github.com/penny-vault/comex/ticker"
)

var (
	tickerMonth      string
	tickerSpread     string
	tickerStrike     float64
	tickerOptionType string
	tickerSuffix     bool
	tickerDecade     bool
)

func init() {
	bbgCmd.Flags().StringVarP(&tickerMonth, "month", "m", "", "contract month (YYYY-MM)")
	bbgCmd.Flags().StringVarP(&tickerSpread, "spread", "s", "", "calendar spread as month codes separated by / (e.g. z5/z6)")
	bbgCmd.Flags().Float64VarP(&tickerStrike, "strike", "k", 0, "option strike price")
	bbgCmd.Flags().StringVarP(&tickerOptionType, "option-type", "o", "", "option type: C (call), P (put) or F (forward)")
	bbgCmd.Flags().BoolVar(&tickerSuffix, "suffix", false, "append the market sector (Comdty or Index)")
	tickerCmd.AddCommand(bbgCmd)

	tickerCmd.AddCommand(qdlCmd)

	codeCmd.Flags().BoolVar(&tickerDecade, "full-year", false, "print the full year instead of the last digit")
	tickerCmd.AddCommand(codeCmd)

	tickerCmd.AddCommand(monthCmd)

	rootCmd.AddCommand(tickerCmd)
}

var tickerCmd = &cobra.Command{
	Use:   "ticker",
	Short: "Build and parse vendor tickers",
}

func printTicker(kind, value string) error {
	if jsonOutput {
		return printJSON(map[string]string{kind: value})
	}
	fmt.Println(value)
	return nil
}

var bbgCmd = &cobra.Command{
	Use:   "bbg ASSET",
	Short: "Print the Bloomberg ticker of a future, option or spread",
	Example: `  comex ticker bbg WTI_NYMEX --month 2015-12
  comex ticker bbg WTI_NYMEX --month 2015-12 --strike 100 --option-type C
  comex ticker bbg BRENT_ICE --spread f6/g6 --suffix`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := catalogSource()
		if err != nil {
			return err
		}

		req := ticker.Request{
			Spread:     tickerSpread,
			Strike:     tickerStrike,
			OptionType: tickerOptionType,
			Suffix:     tickerSuffix,
		}
		if tickerMonth != "" {
			if req.Month, err = monthArg(tickerMonth); err != nil {
				return err
			}
		}

		code, err := ticker.NewEncoder(loader).Bloomberg(args[0], req)
		if err != nil {
			return err
		}
		return printTicker("bloomberg", code)
	},
}

var qdlCmd = &cobra.Command{
	Use:     "qdl ASSET MONTH",
	Short:   "Print the Quandl ticker of a future",
	Example: `  comex ticker qdl WTI_NYMEX 2015-12`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := monthArg(args[1])
		if err != nil {
			return err
		}
		loader, err := catalogSource()
		if err != nil {
			return err
		}

		code, err := ticker.NewEncoder(loader).Quandl(args[0], month)
		if err != nil {
			return err
		}
		return printTicker("quandl", code)
	},
}

var codeCmd = &cobra.Command{
	Use:   "code MONTH",
	Short: "Print the futures month code of a contract month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := monthArg(args[0])
		if err != nil {
			return err
		}
		return printTicker("code", ticker.FuturesCode(month, tickerDecade))
	},
}

var monthCmd = &cobra.Command{
	Use:   "month CODE",
	Short: "Print the contract month of a futures month code in the current decade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := ticker.ContractMonth(args[0])
		if err != nil {
			return err
		}
		return printTicker("month", month.Format("2006-01"))
	},
}
