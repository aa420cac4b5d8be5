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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/comex/common"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the comex configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default config.toml (default $HOME/.config/comex/config.toml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".config", "comex", "config.toml")
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error().Err(err).Str("Dir", dir).Msg("could not create config directory")
			return err
		}

		cfg := common.DefaultConfig()
		cfg.Setting.DataDir = dir

		fh, err := os.Create(path)
		if err != nil {
			log.Error().Err(err).Str("Path", path).Msg("could not create config file")
			return err
		}
		defer fh.Close()

		if err := common.WriteConfig(fh, cfg); err != nil {
			log.Error().Err(err).Str("Path", path).Msg("could not write config file")
			return err
		}

		fmt.Println(path)
		return nil
	},
}
