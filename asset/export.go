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

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type exportDoc struct {
	Exported    string       `json:"exported" yaml:"exported"`
	Commodities []*Commodity `json:"commodities" yaml:"commodities"`
	Indices     []*Index     `json:"indices" yaml:"indices"`
}

// Export writes the catalog in the requested format: xml, json or yaml
func (c *Catalog) Export(w io.Writer, format string) error {
	format = strings.ToLower(format)
	if format == "xml" {
		return c.Encode(w)
	}

	doc := exportDoc{
		Exported:    Now().Format(exportedLayout),
		Commodities: []*Commodity{},
		Indices:     []*Index{},
	}
	for _, name := range c.Names() {
		switch v := c.Assets[name].(type) {
		case *Commodity:
			doc.Commodities = append(doc.Commodities, v)
		case *Index:
			doc.Indices = append(doc.Indices, v)
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
