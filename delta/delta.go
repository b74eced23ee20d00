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

// Package delta compresses sorted id sets as varint coded gaps. It is the
// baseline the other methods are measured against.
package delta

import (
	"encoding/binary"
	"math"

	"github.com/cnkcodec/cnk-go/internal"
)

var (
	ErrInvalidInput  = internal.ErrInvalidInput
	ErrCorruptStream = internal.ErrCorruptStream
)

// Buffer layout:
//
//	[ method tag : 1 byte  ]
//	[ n          : uvarint ]
//	[ gap_0..n-1 : uvarint each ]
//
// gap_0 is the first id and gap_i = ids[i] - ids[i-1] - 1, so a run of
// consecutive ids codes as zero bytes of value.
const methodTagOffset = 0

// Compressor is the gap + varint codec. The zero value is ready to use.
type Compressor struct{}

// NewCompressor returns a delta compressor.
func NewCompressor() *Compressor {
	return &Compressor{}
}

// Method returns the method tag written at the start of every buffer.
func (c *Compressor) Method() internal.Method {
	return internal.MethodEnum.Delta
}

// CompressSet encodes ids, which must be strictly increasing and below
// universe.
func (c *Compressor) CompressSet(ids []uint32, universe uint64) ([]byte, error) {
	if err := internal.ValidateIDs(ids, universe); err != nil {
		return nil, err
	}

	bytes := make([]byte, 0, 1+binary.MaxVarintLen64+len(ids)*2)
	bytes = append(bytes, internal.MethodEnum.Delta.Id)
	bytes = binary.AppendUvarint(bytes, uint64(len(ids)))

	next := uint64(0)
	for _, id := range ids {
		bytes = binary.AppendUvarint(bytes, uint64(id)-next)
		next = uint64(id) + 1
	}
	return bytes, nil
}

// DecompressSet decodes a buffer produced by CompressSet. An id at or above
// universe means the buffer was not written for this universe.
func (c *Compressor) DecompressSet(bytes []byte, universe uint64) ([]uint32, error) {
	return decompress(bytes, universe)
}

func decompress(bytes []byte, universe uint64) ([]uint32, error) {
	if err := internal.ValidateUniverse(universe); err != nil {
		return nil, err
	}
	if len(bytes) == 0 {
		return nil, internal.CorruptStreamf("empty buffer")
	}
	if tag := bytes[methodTagOffset]; tag != internal.MethodEnum.Delta.Id {
		if m, ok := internal.MethodByID(tag); ok {
			return nil, internal.InvalidInputf("buffer holds a %s encoded set", m)
		}
		return nil, internal.CorruptStreamf("unknown method tag %d", tag)
	}

	n, offset, err := internal.ReadUvarint(bytes, methodTagOffset+1)
	if err != nil {
		return nil, err
	}
	if n > universe {
		return nil, internal.CorruptStreamf("%d ids cannot fit in a universe of %d", n, universe)
	}
	// every gap takes at least one byte
	if n > uint64(len(bytes)-offset) {
		return nil, internal.CorruptStreamf("%d ids declared, %d bytes left", n, len(bytes)-offset)
	}

	ids := make([]uint32, 0, n)
	next := uint64(0)
	for i := uint64(0); i < n; i++ {
		var gap uint64
		gap, offset, err = internal.ReadUvarint(bytes, offset)
		if err != nil {
			return nil, err
		}
		if gap >= universe-next {
			return nil, internal.CorruptStreamf("id %d exceeds universe size %d", next+gap, universe)
		}
		id := next + gap
		ids = append(ids, uint32(id))
		next = id + 1
	}

	if offset != len(bytes) {
		return nil, internal.CorruptStreamf("%d trailing bytes", len(bytes)-offset)
	}
	return ids, nil
}

// EstimateSize returns the size in bytes of a set of n ids spread evenly
// over universe.
func (c *Compressor) EstimateSize(n int, universe uint64) int {
	if n < 0 || universe == 0 || uint64(n) > universe {
		return 0
	}
	size := 1 + internal.UvarintLen(uint64(n))
	if n == 0 {
		return size
	}
	meanGap := (universe - uint64(n)) / uint64(n)
	return size + n*internal.UvarintLen(meanGap)
}

// BitsPerID returns EstimateSize in bits divided by n.
func (c *Compressor) BitsPerID(n int, universe uint64) float64 {
	if n <= 0 {
		return 0
	}
	size := c.EstimateSize(n, universe)
	if size == 0 {
		return math.NaN()
	}
	return float64(size*8) / float64(n)
}

// CompressSet encodes ids with a default Compressor.
func CompressSet(ids []uint32, universe uint64) ([]byte, error) {
	return NewCompressor().CompressSet(ids, universe)
}

// DecompressSet decodes a buffer produced by CompressSet.
func DecompressSet(bytes []byte, universe uint64) ([]uint32, error) {
	return decompress(bytes, universe)
}
