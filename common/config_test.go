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

package common_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/comex/common"
)

var _ = Describe("Config", func() {
	AfterEach(func() {
		viper.Reset()
	})

	It("writes a default config viper can read", func() {
		var buf bytes.Buffer
		Expect(common.WriteConfig(&buf, common.DefaultConfig())).To(Succeed())

		viper.SetConfigType("toml")
		Expect(viper.ReadConfig(&buf)).To(Succeed())

		Expect(viper.GetString("setting.asset_file")).To(Equal("assets.xml"))
		Expect(viper.GetStringMapString("calendar")).To(Equal(map[string]string{"nym": "nymex.txt", "ice": "ice.txt"}))
		Expect(viper.GetString("log.level")).To(Equal("warn"))
		Expect(viper.GetBool("log.pretty")).To(BeTrue())
		Expect(viper.GetDuration("vendor.timeout")).To(Equal(30 * time.Second))
		Expect(viper.GetString("quandl.database")).To(Equal("CME"))
		Expect(viper.GetInt("cache.local_size")).To(Equal(128))
		Expect(viper.GetBool("otlp.enabled")).To(BeFalse())
	})
})
