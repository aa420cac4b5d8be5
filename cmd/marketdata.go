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
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/comex/dataframe"
	"github.com/penny-vault/comex/marketdata"
)

var (
	mdBegin       string
	mdEnd         string
	mdFields      []string
	mdPeriodicity string
	mdSource      string
	mdSMA         int
	mdEventTypes  []string
	mdAggregate   bool
	mdInterval    int
	mdMerge       bool
	mdByField     bool
	mdSummary     bool
)

func init() {
	historyCmd.Flags().StringVarP(&mdBegin, "begin", "b", "", "first date (default one month ago)")
	historyCmd.Flags().StringVarP(&mdEnd, "end", "e", "", "last date (default today)")
	historyCmd.Flags().StringSliceVarP(&mdFields, "field", "f", []string{marketdata.DefaultField}, "fields to request from the gateway")
	historyCmd.Flags().StringVar(&mdPeriodicity, "periodicity", marketdata.PeriodicityDaily, "DAILY, WEEKLY, MONTHLY, QUARTERLY or YEARLY")
	historyCmd.Flags().StringVar(&mdSource, "source", "gateway", "data source: gateway or quandl")
	historyCmd.Flags().IntVar(&mdSMA, "sma", 0, "append a simple moving average of each column over this many rows")
	historyCmd.Flags().BoolVar(&mdMerge, "merge", false, "print all securities as one table over their common date range")
	historyCmd.Flags().BoolVar(&mdByField, "by-field", false, "print one table per field with a column per security")
	rootCmd.AddCommand(historyCmd)

	ticksCmd.Flags().StringVarP(&mdBegin, "begin", "b", "", "start time (required)")
	ticksCmd.Flags().StringVarP(&mdEnd, "end", "e", "", "end time (required)")
	ticksCmd.Flags().StringSliceVar(&mdEventTypes, "event-type", marketdata.DefaultEventTypes, "tick event types")
	ticksCmd.Flags().BoolVarP(&mdAggregate, "aggregate", "a", false, "aggregate ticks sharing a timestamp")
	rootCmd.AddCommand(ticksCmd)

	barsCmd.Flags().StringVarP(&mdBegin, "begin", "b", "", "start time (required)")
	barsCmd.Flags().StringVarP(&mdEnd, "end", "e", "", "end time (required)")
	barsCmd.Flags().StringSliceVar(&mdEventTypes, "event-type", marketdata.DefaultEventTypes[:1], "bar event type")
	barsCmd.Flags().IntVarP(&mdInterval, "interval", "i", 1, "bar length in minutes (1-1440)")
	barsCmd.Flags().BoolVarP(&mdSummary, "summary", "s", false, "print a single session summary row")
	rootCmd.AddCommand(barsCmd)
}

func timeRange(defBegin, defEnd time.Time) (time.Time, time.Time, error) {
	begin, err := parseDateOr(mdBegin, defBegin)
	if err != nil {
		return begin, begin, err
	}
	end, err := parseDateOr(mdEnd, defEnd)
	if err != nil {
		return begin, end, err
	}
	if begin.IsZero() || end.IsZero() {
		return begin, end, fmt.Errorf("--begin and --end are required")
	}
	return begin, end, nil
}

// frameRecords converts a dataframe to JSON friendly rows; NaN becomes null
func frameRecords(df *dataframe.DataFrame) []map[string]interface{} {
	layout := "2006-01-02"
	for _, d := range df.Dates {
		if !d.Equal(d.Truncate(24 * time.Hour)) {
			layout = time.RFC3339
			break
		}
	}

	records := make([]map[string]interface{}, df.Len())
	df.ForEach(func(rowIdx int, d time.Time, row map[string]float64) map[string]float64 {
		rec := make(map[string]interface{}, df.ColCount()+1)
		rec["date"] = d.Format(layout)
		for name, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rec[name] = nil
			} else {
				rec[name] = v
			}
		}
		records[rowIdx] = rec
		return nil
	})
	return records
}

func printFrameMap(dfMap dataframe.Map) error {
	if jsonOutput {
		out := make(map[string]interface{}, len(dfMap))
		for k, df := range dfMap {
			out[k] = frameRecords(df)
		}
		return printJSON(out)
	}
	fmt.Print(dfMap.Table())
	return nil
}

func printFrame(df *dataframe.DataFrame) error {
	if jsonOutput {
		return printJSON(frameRecords(df))
	}
	fmt.Print(df.Table())
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history SECURITY...",
	Short: "Print daily history of securities",
	Example: `  comex history "CLZ5 Comdty" "COF6 Comdty" -f PX_LAST -f PX_VOLUME -b 2015-11-01
  comex history CLZ2015 --source quandl --sma 5
  comex history "CLZ5 Comdty" "CLF6 Comdty" --merge`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		end := today()
		begin, end, err := timeRange(end.AddDate(0, -1, 0), end)
		if err != nil {
			return err
		}

		var res dataframe.Map
		switch mdSource {
		case "gateway":
			gw := marketdata.NewGatewayFromConfig()
			res, err = gw.HistoricalData(cmd.Context(), args, mdFields, begin, end, marketdata.HistoricalOptions{Periodicity: mdPeriodicity})
			if err != nil {
				return err
			}
		case "quandl":
			q, err := marketdata.NewQuandlFromConfig()
			if err != nil {
				return err
			}
			res = make(dataframe.Map, len(args))
			for _, code := range args {
				one, err := q.HistoricalData(cmd.Context(), code, begin, end)
				if err != nil {
					return err
				}
				for k, v := range one {
					res[k] = v
				}
			}
		default:
			return fmt.Errorf("unknown source %q: expected gateway or quandl", mdSource)
		}

		if mdSMA > 0 {
			for key, df := range res {
				sma := df.SMA(mdSMA)
				for colIdx, name := range sma.ColNames {
					if err := df.Insert(name+"_sma"+strconv.Itoa(mdSMA), sma.Vals[colIdx]); err != nil {
						log.Error().Err(err).Str("Security", key).Msg("could not add moving average")
						return err
					}
				}
			}
		}

		switch {
		case mdMerge && mdByField:
			return fmt.Errorf("--merge and --by-field cannot be combined")
		case mdMerge:
			merged, err := res.DataFrame()
			if err != nil {
				log.Error().Err(err).Msg("could not merge securities")
				return err
			}
			return printFrame(merged)
		case mdByField:
			pivoted, err := res.Pivot()
			if err != nil {
				log.Error().Err(err).Msg("could not group securities by field")
				return err
			}
			return printFrameMap(pivoted)
		}
		return printFrameMap(res)
	},
}

var ticksCmd = &cobra.Command{
	Use:     "ticks SECURITY",
	Short:   "Print intraday ticks of a security",
	Example: `  comex ticks "CLZ5 Comdty" -b 2015-11-20T19:28:00 -e 2015-11-20T19:30:00 --aggregate`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		begin, end, err := timeRange(time.Time{}, time.Time{})
		if err != nil {
			return err
		}

		gw := marketdata.NewGatewayFromConfig()
		ticks, err := gw.IntradayTicks(cmd.Context(), args[0], mdEventTypes, begin, end)
		if err != nil {
			return err
		}

		if mdAggregate {
			return printFrame(marketdata.AggregateTicks(ticks))
		}

		if jsonOutput {
			return printJSON(ticks)
		}
		rows := make([][]string, 0, len(ticks))
		for _, t := range ticks {
			rows = append(rows, []string{
				t.Time.Format(time.RFC3339),
				t.Type,
				strconv.FormatFloat(t.Value, 'f', -1, 64),
				strconv.FormatFloat(t.Size, 'f', -1, 64),
			})
		}
		printTable([]string{"Time", "Type", "Value", "Size"}, rows)
		return nil
	},
}

var barsCmd = &cobra.Command{
	Use:   "bars SECURITY",
	Short: "Print intraday bars of a security",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		begin, end, err := timeRange(time.Time{}, time.Time{})
		if err != nil {
			return err
		}

		eventType := ""
		if len(mdEventTypes) > 0 {
			eventType = mdEventTypes[0]
		}

		gw := marketdata.NewGatewayFromConfig()
		bars, err := gw.IntradayBars(cmd.Context(), args[0], eventType, mdInterval, begin, end)
		if err != nil {
			return err
		}
		df := marketdata.BarFrame(bars)
		if mdSummary {
			df = marketdata.SummarizeBars(df)
		}
		return printFrame(df)
	},
}
