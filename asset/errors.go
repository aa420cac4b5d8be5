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

package asset

import "errors"

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrWrongAssetVariant = errors.New("asset is not of the requested variant")
	ErrCatalogPathUnset  = errors.New("catalog file is not configured")
	ErrCatalogCorrupt    = errors.New("catalog file is corrupt")
	ErrUnknownAssetType  = errors.New("unknown asset type")
	ErrUnknownFamily     = errors.New("unknown commodity family")
	ErrUnknownMonthCode  = errors.New("unknown futures month code")
	ErrUnknownRule       = errors.New("unknown expiry rule")
	ErrInvalidClock      = errors.New("invalid time of day; expected HH:MM:SS")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmptyName         = errors.New("asset name must not be empty")
)
