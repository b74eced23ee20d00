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

package eliasfano

// bitWriter packs fixed width values MSB first into a byte slice sized
// by the caller.
type bitWriter struct {
	bytes  []byte
	idx    int
	offset uint8 // bits already used in bytes[idx], 0-7
}

func (w *bitWriter) write(value uint64, bits uint8) {
	if bits == 0 {
		return
	}
	if w.offset > 0 {
		chunkBits := 8 - w.offset
		mask := uint8((1 << chunkBits) - 1)

		if bits < chunkBits {
			w.bytes[w.idx] |= uint8(value<<(chunkBits-bits)) & mask
			w.offset += bits
			return
		}

		w.bytes[w.idx] |= uint8(value>>(bits-chunkBits)) & mask
		w.idx++
		w.offset = 0
		bits -= chunkBits
	}

	for bits >= 8 {
		w.bytes[w.idx] = uint8(value >> (bits - 8))
		w.idx++
		bits -= 8
	}

	if bits > 0 {
		w.bytes[w.idx] = uint8(value << (8 - bits))
		w.offset = bits
	}
}

// bitReader reads values written by bitWriter.
type bitReader struct {
	bytes  []byte
	idx    int
	offset uint8
}

func (r *bitReader) read(bits uint8) uint64 {
	if bits == 0 {
		return 0
	}
	availBits := 8 - r.offset
	chunkBits := min(availBits, bits)
	mask := uint8((1 << chunkBits) - 1)
	value := uint64((r.bytes[r.idx] >> (availBits - chunkBits)) & mask)

	if availBits == chunkBits {
		r.idx++
	}
	r.offset = (r.offset + chunkBits) & 7
	bits -= chunkBits

	for bits >= 8 {
		value = value<<8 | uint64(r.bytes[r.idx])
		r.idx++
		bits -= 8
	}

	if bits > 0 {
		value = value<<bits | uint64(r.bytes[r.idx]>>(8-bits))
		r.offset = bits
	}
	return value
}

// padding returns the unused low bits of the last partially written byte.
func (r *bitReader) padding() uint8 {
	if r.offset == 0 {
		return 0
	}
	return r.bytes[r.idx] & uint8((1<<(8-r.offset))-1)
}
