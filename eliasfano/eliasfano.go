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

// Package eliasfano compresses sorted id sets with the Elias-Fano
// representation: every id is split into l low bits, stored verbatim, and
// high bits, stored in unary as a bit vector with one set bit per id. With
// l = floor(log2(N/n)) a set costs at most 2 + ceil(log2(N/n)) bits per id.
package eliasfano

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/bits-and-blooms/bitset"

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
//	[ N          : uvarint ]
//	[ low bits l : 1 byte  ]
//	[ low part   : n*l bits, MSB first, zero padded to a byte ]
//	[ high part  : n + ((N-1)>>l) + 1 bits, LSB first, zero padded to a byte ]
//
// Bit high(id_i)+i of the high part is set for the i-th id. An empty set
// has no low or high part.
const (
	methodTagOffset = 0
	countsOffset    = 1
)

type layout struct {
	numIDs    uint64
	universe  uint64
	lowBits   uint8
	lowBytes  int
	highBits  uint64
	highBytes int
}

// lowBitsFor returns floor(log2(universe/numIDs)), or 0 for an empty set.
func lowBitsFor(numIDs, universe uint64) uint8 {
	if numIDs == 0 {
		return 0
	}
	return uint8(bits.Len64(universe/numIDs) - 1)
}

func newLayout(numIDs, universe uint64) layout {
	l := layout{numIDs: numIDs, universe: universe, lowBits: lowBitsFor(numIDs, universe)}
	if numIDs == 0 {
		return l
	}
	l.lowBytes = int(internal.WholeBytesToHoldBits(numIDs * uint64(l.lowBits)))
	l.highBits = numIDs + (universe-1)>>l.lowBits + 1
	l.highBytes = int(internal.WholeBytesToHoldBits(l.highBits))
	return l
}

func (l layout) preambleBytes() int {
	return countsOffset + internal.UvarintLen(l.numIDs) + internal.UvarintLen(l.universe) + 1
}

func (l layout) sizeBytes() int {
	return l.preambleBytes() + l.lowBytes + l.highBytes
}

// Compressor is the Elias-Fano codec. The zero value is ready to use.
type Compressor struct{}

// NewCompressor returns an Elias-Fano compressor.
func NewCompressor() *Compressor {
	return &Compressor{}
}

// Method returns the method tag written at the start of every buffer.
func (c *Compressor) Method() internal.Method {
	return internal.MethodEnum.EliasFano
}

// CompressSet encodes ids, which must be strictly increasing and below
// universe.
func (c *Compressor) CompressSet(ids []uint32, universe uint64) ([]byte, error) {
	if err := internal.ValidateIDs(ids, universe); err != nil {
		return nil, err
	}
	l := newLayout(uint64(len(ids)), universe)

	bytes := make([]byte, 0, l.sizeBytes())
	bytes = append(bytes, internal.MethodEnum.EliasFano.Id)
	bytes = binary.AppendUvarint(bytes, l.numIDs)
	bytes = binary.AppendUvarint(bytes, l.universe)
	bytes = append(bytes, l.lowBits)
	if len(ids) == 0 {
		return bytes, nil
	}

	low := bitWriter{bytes: make([]byte, l.lowBytes)}
	mask := uint64(1)<<l.lowBits - 1
	high := bitset.New(uint(l.highBits))
	for i, id := range ids {
		low.write(uint64(id)&mask, l.lowBits)
		high.Set(uint(uint64(id)>>l.lowBits) + uint(i))
	}
	bytes = append(bytes, low.bytes...)

	start := len(bytes)
	for _, word := range high.Bytes() {
		bytes = binary.LittleEndian.AppendUint64(bytes, word)
	}
	return bytes[:start+l.highBytes], nil
}

// DecompressSet decodes a buffer produced by CompressSet.
func (c *Compressor) DecompressSet(bytes []byte, universe uint64) ([]uint32, error) {
	return decompress(bytes, universe)
}

func decompress(bytes []byte, universe uint64) ([]uint32, error) {
	if err := internal.ValidateUniverse(universe); err != nil {
		return nil, err
	}
	l, offset, err := extractLayout(bytes)
	if err != nil {
		return nil, err
	}
	if err := internal.CheckUniverse(l.universe, universe); err != nil {
		return nil, err
	}
	if size := l.sizeBytes(); len(bytes) != size {
		return nil, internal.CorruptStreamf("expected %d bytes, got %d", size, len(bytes))
	}
	if l.numIDs == 0 {
		return []uint32{}, nil
	}

	low := bitReader{bytes: bytes[offset : offset+l.lowBytes]}
	offset += l.lowBytes

	words := make([]uint64, (l.highBytes+7)/8)
	padded := make([]byte, len(words)*8)
	copy(padded, bytes[offset:])
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(padded[i*8:])
	}
	high := bitset.From(words)
	if count := high.Count(); uint64(count) != l.numIDs {
		return nil, internal.CorruptStreamf("high part has %d set bits, expected %d", count, l.numIDs)
	}

	ids := make([]uint32, 0, l.numIDs)
	pos, ok := high.NextSet(0)
	for i := uint64(0); i < l.numIDs; i++ {
		if !ok || uint64(pos) >= l.highBits {
			return nil, internal.CorruptStreamf("high part bit %d out of range", pos)
		}
		id := (uint64(pos)-i)<<l.lowBits | low.read(l.lowBits)
		if id >= l.universe {
			return nil, internal.CorruptStreamf("id %d exceeds universe size %d", id, l.universe)
		}
		if i > 0 && uint32(id) <= ids[i-1] {
			return nil, internal.CorruptStreamf("ids not increasing at %d", id)
		}
		ids = append(ids, uint32(id))
		pos, ok = high.NextSet(pos + 1)
	}
	if low.padding() != 0 {
		return nil, internal.CorruptStreamf("nonzero padding in low part")
	}
	return ids, nil
}

func extractLayout(bytes []byte) (layout, int, error) {
	if len(bytes) == 0 {
		return layout{}, 0, internal.CorruptStreamf("empty buffer")
	}
	if tag := bytes[methodTagOffset]; tag != internal.MethodEnum.EliasFano.Id {
		if m, ok := internal.MethodByID(tag); ok {
			return layout{}, 0, internal.InvalidInputf("buffer holds a %s encoded set", m)
		}
		return layout{}, 0, internal.CorruptStreamf("unknown method tag %d", tag)
	}
	numIDs, offset, err := internal.ReadUvarint(bytes, countsOffset)
	if err != nil {
		return layout{}, 0, err
	}
	universe, offset, err := internal.ReadUvarint(bytes, offset)
	if err != nil {
		return layout{}, 0, err
	}
	if offset >= len(bytes) {
		return layout{}, 0, internal.CorruptStreamf("missing low bit width")
	}
	lowBits := bytes[offset]
	offset++

	if universe == 0 || universe > internal.MaxUniverse {
		return layout{}, 0, internal.CorruptStreamf("universe size %d out of range", universe)
	}
	if numIDs > universe {
		return layout{}, 0, internal.CorruptStreamf("%d ids cannot fit in a universe of %d", numIDs, universe)
	}
	l := newLayout(numIDs, universe)
	if lowBits != l.lowBits {
		return layout{}, 0, internal.CorruptStreamf("low bit width %d, expected %d", lowBits, l.lowBits)
	}
	return l, offset, nil
}

// EstimateSize returns the exact size in bytes of a compressed set of n ids
// from universe. Elias-Fano sizes do not depend on the ids themselves.
func (c *Compressor) EstimateSize(n int, universe uint64) int {
	if n < 0 || universe == 0 || universe > internal.MaxUniverse || uint64(n) > universe {
		return 0
	}
	return newLayout(uint64(n), universe).sizeBytes()
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
