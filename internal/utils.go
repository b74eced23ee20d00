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

package internal

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// MaxUniverse bounds the universe size: ids are uint32.
const MaxUniverse uint64 = 1 << 32

// ValidateUniverse checks that universe is in [1, MaxUniverse].
func ValidateUniverse(universe uint64) error {
	if universe == 0 {
		return InvalidInputf("universe size must be positive")
	}
	if universe > MaxUniverse {
		return InvalidInputf("universe size %d exceeds %d", universe, MaxUniverse)
	}
	return nil
}

// ValidateIDs checks in one pass that ids is strictly increasing and that
// every id is below universe.
func ValidateIDs(ids []uint32, universe uint64) error {
	if err := ValidateUniverse(universe); err != nil {
		return err
	}
	if uint64(len(ids)) > universe {
		return InvalidInputf("%d ids cannot fit in a universe of %d", len(ids), universe)
	}
	for i, id := range ids {
		if uint64(id) >= universe {
			return InvalidInputf("id %d exceeds universe size %d", id, universe)
		}
		if i > 0 && id <= ids[i-1] {
			return InvalidInputf("ids must be sorted and unique, found %d <= %d", id, ids[i-1])
		}
	}
	return nil
}

// CheckUniverse compares a caller supplied universe with the one recorded
// in a buffer header.
func CheckUniverse(header, supplied uint64) error {
	if header != supplied {
		return InvalidInputf("universe size mismatch: buffer has %d, caller supplied %d", header, supplied)
	}
	return nil
}

// ReadUvarint decodes a uvarint at offset and returns the value and the
// offset just past it.
func ReadUvarint(buf []byte, offset int) (uint64, int, error) {
	if offset >= len(buf) {
		return 0, offset, CorruptStreamf("unexpected end of data at offset %d", offset)
	}
	v, n := binary.Uvarint(buf[offset:])
	if n == 0 {
		return 0, offset, CorruptStreamf("unexpected end of data at offset %d", offset)
	}
	if n < 0 {
		return 0, offset, CorruptStreamf("varint overflow at offset %d", offset)
	}
	return v, offset + n, nil
}

// WholeBytesToHoldBits returns the number of bytes needed for the given
// number of bits.
func WholeBytesToHoldBits[T constraints.Integer](bits T) T {
	return (bits >> 3) + T(BoolToInt(bits&7 > 0))
}

// UvarintLen returns the encoded length of v.
func UvarintLen[T constraints.Unsigned](v T) int {
	return (bits.Len64(uint64(v)|1) + 6) / 7
}

func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
