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

package marketdata

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid market data request")
	ErrVendorStatus   = errors.New("vendor returned an error status code")
	ErrVendorResponse = errors.New("vendor reported an error")
	ErrMissingAPIKey  = errors.New("no API key configured")
)
