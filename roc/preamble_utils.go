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

package roc

import (
	"encoding/binary"

	"github.com/cnkcodec/cnk-go/ans"
	"github.com/cnkcodec/cnk-go/internal"
)

// Buffer layout:
//
//	[ method tag : 1 byte  ]
//	[ n          : uvarint ]
//	[ N          : uvarint ]
//	[ precision  : 1 byte  ] probability bits the stream was quantized with
//	[ state      : 8 bytes ] final coder state, little endian
//	[ words      : 4 bytes each, little endian, in decode order ]
const (
	methodTagOffset = 0
	countsOffset    = 1

	minPreambleBytes = 4 // tag, one-byte n, one-byte N, precision
)

type preamble struct {
	numIDs        uint64
	universe      uint64
	precisionBits uint
}

func preambleSize(numIDs, universe uint64) int {
	return countsOffset + internal.UvarintLen(numIDs) + internal.UvarintLen(universe) + 1
}

func appendPreamble(dst []byte, p preamble) []byte {
	dst = append(dst, internal.MethodEnum.Roc.Id)
	dst = binary.AppendUvarint(dst, p.numIDs)
	dst = binary.AppendUvarint(dst, p.universe)
	return append(dst, uint8(p.precisionBits))
}

// extractPreamble parses the header and returns it with the offset of the
// coder stream.
func extractPreamble(bytes []byte) (preamble, int, error) {
	if len(bytes) < minPreambleBytes {
		return preamble{}, 0, internal.CorruptStreamf("need at least %d bytes, got %d", minPreambleBytes, len(bytes))
	}
	if tag := bytes[methodTagOffset]; tag != internal.MethodEnum.Roc.Id {
		if m, ok := internal.MethodByID(tag); ok {
			return preamble{}, 0, internal.InvalidInputf("buffer holds a %s encoded set", m)
		}
		return preamble{}, 0, internal.CorruptStreamf("unknown method tag %d", tag)
	}

	var p preamble
	numIDs, offset, err := internal.ReadUvarint(bytes, countsOffset)
	if err != nil {
		return preamble{}, 0, err
	}
	universe, offset, err := internal.ReadUvarint(bytes, offset)
	if err != nil {
		return preamble{}, 0, err
	}
	if offset >= len(bytes) {
		return preamble{}, 0, internal.CorruptStreamf("missing precision byte")
	}
	p.numIDs, p.universe, p.precisionBits = numIDs, universe, uint(bytes[offset])
	offset++

	if universe == 0 || universe > internal.MaxUniverse {
		return preamble{}, 0, internal.CorruptStreamf("universe size %d out of range", universe)
	}
	if numIDs > universe {
		return preamble{}, 0, internal.CorruptStreamf("%d ids cannot fit in a universe of %d", numIDs, universe)
	}
	if p.precisionBits < ans.MinPrecisionBits || p.precisionBits > ans.MaxPrecisionBits {
		return preamble{}, 0, internal.CorruptStreamf("precision %d bits out of range", p.precisionBits)
	}
	return p, offset, nil
}
