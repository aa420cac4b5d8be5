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

package common

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

var (
	ErrCorruptBlock = errors.New("corrupt compressed block")
)

// Cached values are stored as a one byte block kind, the uncompressed length
// as a little endian uint32, then the body. Payloads lz4 cannot shrink are
// stored raw.
const (
	rawBlock   byte = 0
	lz4Block   byte = 1
	headerSize      = 5
)

// Compress encodes in as a single lz4 block
func Compress(in []byte) ([]byte, error) {
	out := make([]byte, headerSize+lz4.CompressBlockBound(len(in)))
	binary.LittleEndian.PutUint32(out[1:headerSize], uint32(len(in)))

	var c lz4.Compressor
	n, err := c.CompressBlock(in, out[headerSize:])
	if err != nil {
		return nil, err
	}

	if n == 0 || n >= len(in) {
		out[0] = rawBlock
		return append(out[:headerSize], in...), nil
	}

	out[0] = lz4Block
	return out[:headerSize+n], nil
}

// Decompress reverses Compress
func Decompress(in []byte) ([]byte, error) {
	if len(in) < headerSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrCorruptBlock, len(in))
	}

	size := int(binary.LittleEndian.Uint32(in[1:headerSize]))
	body := in[headerSize:]

	switch in[0] {
	case rawBlock:
		if len(body) != size {
			return nil, fmt.Errorf("%w: raw body has %d bytes, expected %d", ErrCorruptBlock, len(body), size)
		}
		out := make([]byte, size)
		copy(out, body)
		return out, nil
	case lz4Block:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptBlock, err.Error())
		}
		if n != size {
			return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrCorruptBlock, n, size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown block kind %d", ErrCorruptBlock, in[0])
	}
}
