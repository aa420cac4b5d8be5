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

	"github.com/spf13/cobra"

	"github.com/penny-vault/comex/asset"
)

var (
	expiryType string
	frontLag   int
	chainCount int
)

func init() {
	expiryCmd.Flags().StringVarP(&expiryType, "type", "t", "F", "expiry type: F (futures), OF (options) or N (first notice)")
	rootCmd.AddCommand(expiryCmd)

	frontCmd.Flags().StringVarP(&expiryType, "type", "t", "F", "expiry type: F (futures), OF (options) or N (first notice)")
	frontCmd.Flags().IntVarP(&frontLag, "lag", "l", 0, "business days to move the date before resolving; positive rolls earlier")
	rootCmd.AddCommand(frontCmd)

	chainCmd.Flags().StringVarP(&expiryType, "type", "t", "F", "expiry type: F (futures), OF (options) or N (first notice)")
	chainCmd.Flags().IntVarP(&chainCount, "count", "n", 12, "number of contracts to list")
	rootCmd.AddCommand(chainCmd)
}

var expiryCmd = &cobra.Command{
	Use:   "expiry ASSET MONTH",
	Short: "Print the expiry date of a contract month",
	Example: `  comex expiry WTI_NYMEX 2015-12
  comex expiry BRENT_ICE 2016-03 --type OF`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseExpiryType(expiryType)
		if err != nil {
			return err
		}
		month, err := monthArg(args[1])
		if err != nil {
			return err
		}
		engine, err := newEngine()
		if err != nil {
			return err
		}

		exp, err := engine.ExpiryDate(args[0], month, typ)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]interface{}{
				"asset":  args[0],
				"type":   typ.String(),
				"month":  month.Format("2006-01"),
				"expiry": exp.Format("2006-01-02"),
			})
		}
		fmt.Println(exp.Format("2006-01-02"))
		return nil
	},
}

var frontCmd = &cobra.Command{
	Use:   "front ASSET [DATE]",
	Short: "Print the front contract month as of a date (default today)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseExpiryType(expiryType)
		if err != nil {
			return err
		}
		base := today()
		if len(args) == 2 {
			if base, err = parseDate(args[1]); err != nil {
				return err
			}
		}
		engine, err := newEngine()
		if err != nil {
			return err
		}

		month, err := engine.FrontMonth(args[0], base, typ, frontLag)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]interface{}{
				"asset": args[0],
				"date":  base.Format("2006-01-02"),
				"lag":   frontLag,
				"month": month.Format("2006-01"),
			})
		}
		fmt.Println(month.Format("2006-01"))
		return nil
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain ASSET [FROM]",
	Short: "List the upcoming contracts of an asset with their expiries",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseExpiryType(expiryType)
		if err != nil {
			return err
		}
		from := today()
		if len(args) == 2 {
			if from, err = parseDate(args[1]); err != nil {
				return err
			}
		}
		engine, err := newEngine()
		if err != nil {
			return err
		}

		contracts, err := engine.Chain(args[0], from, chainCount, typ)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(contracts)
		}
		rows := make([][]string, 0, len(contracts))
		for idx, c := range contracts {
			rows = append(rows, []string{strconv.Itoa(idx + 1), c.Month.Format("2006-01"), c.Expiry.Format("2006-01-02"), c.Expiry.Weekday().String()[:3]})
		}
		printTable([]string{"#", "Month", "Expiry", "Day"}, rows)
		return nil
	},
}

// monthArg parses a date and returns its contract month
func monthArg(s string) (time.Time, error) {
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return asset.ContractMonth(t), nil
}
