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

	"github.com/penny-vault/comex/common"
)

var (
	versionShort bool
	versionDeps  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the comex version")
	versionCmd.Flags().BoolVar(&versionDeps, "deps", false, "include the module dependencies comex was built with")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print comex build information",
	Long: `Print the comex release, target platform, Go toolchain, build date and
commit recorded by mage at link time. --json emits the same fields along with
the module dependency list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := common.Build()
		switch {
		case jsonOutput:
			return printJSON(info)
		case versionShort:
			fmt.Println(info.Version)
		case versionDeps:
			fmt.Println(common.BuildVersionString())
		default:
			printTable([]string{"Field", "Value"}, [][]string{
				{"Program", info.Program},
				{"Version", info.Version},
				{"Platform", info.Platform},
				{"Go", info.GoVersion},
				{"Build Date", info.BuildDate},
				{"Commit", info.Commit},
			})
		}
		return nil
	},
}
