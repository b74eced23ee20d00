/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package idset

import (
	"encoding/binary"
	"math"

	"github.com/cnkcodec/cnk-go/internal"
)

const rawIDBytes = 4

// rawCompressor stores ids as little-endian uint32 after the tag and a
// uvarint count.
type rawCompressor struct{}

func (c *rawCompressor) Method() Method {
	return MethodNone
}

func (c *rawCompressor) CompressSet(ids []uint32, universe uint64) ([]byte, error) {
	if err := internal.ValidateIDs(ids, universe); err != nil {
		return nil, err
	}
	bytes := make([]byte, 0, c.EstimateSize(len(ids), universe))
	bytes = append(bytes, MethodNone.Id)
	bytes = binary.AppendUvarint(bytes, uint64(len(ids)))
	for _, id := range ids {
		bytes = binary.LittleEndian.AppendUint32(bytes, id)
	}
	return bytes, nil
}

func (c *rawCompressor) DecompressSet(bytes []byte, universe uint64) ([]uint32, error) {
	if err := internal.ValidateUniverse(universe); err != nil {
		return nil, err
	}
	method, err := MethodOf(bytes)
	if err != nil {
		return nil, err
	}
	if method != MethodNone {
		return nil, internal.InvalidInputf("buffer holds a %s encoded set", method)
	}

	n, offset, err := internal.ReadUvarint(bytes, 1)
	if err != nil {
		return nil, err
	}
	if n > universe {
		return nil, internal.CorruptStreamf("%d ids cannot fit in a universe of %d", n, universe)
	}
	if uint64(len(bytes)-offset) != n*rawIDBytes {
		return nil, internal.CorruptStreamf("%d ids need %d bytes, got %d", n, n*rawIDBytes, len(bytes)-offset)
	}

	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(bytes[offset+i*rawIDBytes:])
		if uint64(ids[i]) >= universe {
			return nil, internal.CorruptStreamf("id %d exceeds universe size %d", ids[i], universe)
		}
		if i > 0 && ids[i] <= ids[i-1] {
			return nil, internal.CorruptStreamf("ids not increasing at %d", ids[i])
		}
	}
	return ids, nil
}

func (c *rawCompressor) EstimateSize(n int, universe uint64) int {
	if n < 0 || universe == 0 || uint64(n) > universe {
		return 0
	}
	return 1 + internal.UvarintLen(uint64(n)) + n*rawIDBytes
}

func (c *rawCompressor) BitsPerID(n int, universe uint64) float64 {
	if n <= 0 {
		return 0
	}
	size := c.EstimateSize(n, universe)
	if size == 0 {
		return math.NaN()
	}
	return float64(size*8) / float64(n)
}
