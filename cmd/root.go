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
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/common"
	"github.com/penny-vault/comex/observability/opentelemetry"
)

var (
	cfgFile    string
	jsonOutput bool
	shutdown   func(context.Context) error
)

func init() {
	cobra.OnInitialize(readConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.toml in /etc/comex, $HOME/.config/comex or .)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	// Catalog
	rootCmd.PersistentFlags().String("asset-file", "", "Asset catalog XML file")
	viper.BindPFlag("setting.asset_file", rootCmd.PersistentFlags().Lookup("asset-file"))

	rootCmd.PersistentFlags().String("data-dir", "", "Base directory for relative catalog and holiday file paths")
	viper.BindPFlag("setting.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	// Logging configuration
	rootCmd.PersistentFlags().String("log-level", "warn", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", true, "Format log messages for the console")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Market data gateway
	rootCmd.PersistentFlags().String("vendor-url", "", "Market data gateway URL")
	viper.BindPFlag("vendor.url", rootCmd.PersistentFlags().Lookup("vendor-url"))
}

// readConfig loads the config file. A missing file is not an error; every
// setting can also come from flags or COMEX_ environment variables.
func readConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "could not read config file: %s\n", err)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:     "comex",
	Version: common.CurrentVersion.String(),
	Short:   "Commodity futures reference data and expiry toolkit",
	Long: `comex computes futures and options expiry dates, front months and vendor tickers
for the commodities of an asset catalog, and pulls market data for settlement analysis.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.SetupLogging(); err != nil {
			log.Warn().Err(err).Msg("logging fell back to stderr")
		}
		if err := common.SetupCache(); err != nil {
			log.Warn().Err(err).Msg("response cache disabled")
		}

		var err error
		shutdown, err = opentelemetry.Setup(cmd.Context())
		if err != nil {
			log.Error().Err(err).Msg("could not setup tracing")
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdown == nil {
			return
		}
		if err := shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("could not flush traces")
		}
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
