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

package ans

import (
	"encoding/binary"

	"github.com/cnkcodec/cnk-go/internal"
)

// Encoder pushes symbols onto an rANS state.
type Encoder struct {
	cfg   Config
	state uint64
	words []uint32 // in emission order
}

// NewEncoder creates an encoder in the initial state.
func NewEncoder(cfg Config) (*Encoder, error) {
	if !cfg.valid() {
		return nil, internal.InvalidInputf("unconfigured coder")
	}
	return &Encoder{cfg: cfg, state: StateLow}, nil
}

// Encode pushes the symbol [start, start+freq).
func (e *Encoder) Encode(start, freq uint32) error {
	if freq == 0 || uint64(start)+uint64(freq) > e.cfg.Total() {
		return internal.InvalidInputf("symbol [%d, %d) outside [0, %d)", start, uint64(start)+uint64(freq), e.cfg.Total())
	}
	p := e.cfg.precisionBits
	f := uint64(freq)

	// one word is always enough: state>>32 is below every xMax
	xMax := ((StateLow >> p) << WordBits) * f
	if e.state >= xMax {
		e.words = append(e.words, uint32(e.state))
		e.state >>= WordBits
	}
	e.state = ((e.state / f) << p) + e.state%f + uint64(start)
	return nil
}

// EncodeBit pushes bit under distribution b. Forced distributions
// leave the state untouched.
func (e *Encoder) EncodeBit(b Binary, bit bool) error {
	if b.forced {
		if bit != b.value {
			return internal.InvalidInputf("bit %v has probability zero", bit)
		}
		return nil
	}
	if b.total != e.cfg.Total() {
		return internal.InvalidInputf("distribution quantized for total %d, coder uses %d", b.total, e.cfg.Total())
	}
	return e.Encode(b.symbol(bit))
}

// State returns the current state.
func (e *Encoder) State() uint64 {
	return e.state
}

// NumWords returns the number of words emitted so far.
func (e *Encoder) NumWords() int {
	return len(e.words)
}

// FlushedSize returns the number of bytes AppendFlushed writes.
func (e *Encoder) FlushedSize() int {
	return StateBytes + len(e.words)*WordBytes
}

// AppendFlushed appends the final state and the emitted words, in decode
// order, to dst.
func (e *Encoder) AppendFlushed(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, e.state)
	for i := len(e.words) - 1; i >= 0; i-- {
		dst = binary.LittleEndian.AppendUint32(dst, e.words[i])
	}
	return dst
}

// Flush returns the final state and the emitted words in decode order.
func (e *Encoder) Flush() (uint64, []uint32) {
	words := make([]uint32, len(e.words))
	for i, w := range e.words {
		words[len(words)-1-i] = w
	}
	return e.state, words
}
