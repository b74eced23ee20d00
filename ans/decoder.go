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

// Decoder pops symbols from a flushed rANS stream.
type Decoder struct {
	cfg   Config
	state uint64
	words []byte // remaining words, WordBytes each
}

// NewDecoder seeds a decoder from a flushed stream as written by
// Encoder.AppendFlushed. The stream must be consumed entirely.
func NewDecoder(cfg Config, stream []byte) (*Decoder, error) {
	if !cfg.valid() {
		return nil, internal.InvalidInputf("unconfigured coder")
	}
	if len(stream) < StateBytes {
		return nil, internal.CorruptStreamf("need %d bytes of coder state, got %d", StateBytes, len(stream))
	}
	words := stream[StateBytes:]
	if len(words)%WordBytes != 0 {
		return nil, internal.CorruptStreamf("word stream of %d bytes is not a multiple of %d", len(words), WordBytes)
	}
	state := binary.LittleEndian.Uint64(stream)
	if state < StateLow || state >= StateHigh {
		return nil, internal.CorruptStreamf("initial state %#x outside [%#x, %#x)", state, StateLow, StateHigh)
	}
	return &Decoder{cfg: cfg, state: state, words: words}, nil
}

// Peek returns the interval position of the next symbol, in [0, M).
// The caller maps it to a symbol and calls Advance with that symbol.
func (d *Decoder) Peek() uint32 {
	return uint32(d.state & (d.cfg.Total() - 1))
}

// Advance pops the symbol [start, start+freq), which must contain Peek(),
// and pulls a word when the state drops below StateLow.
func (d *Decoder) Advance(start, freq uint32) error {
	slot := uint64(d.Peek())
	if slot < uint64(start) || slot >= uint64(start)+uint64(freq) {
		return internal.CorruptStreamf("position %d outside symbol [%d, %d)", slot, start, uint64(start)+uint64(freq))
	}
	x := uint64(freq)*(d.state>>d.cfg.precisionBits) + slot - uint64(start)
	if x < StateLow {
		if len(d.words) == 0 {
			return internal.CorruptStreamf("word stream exhausted")
		}
		x = x<<WordBits | uint64(binary.LittleEndian.Uint32(d.words))
		d.words = d.words[WordBytes:]
	}
	if x < StateLow || x >= StateHigh {
		return internal.CorruptStreamf("state %#x left [%#x, %#x)", x, StateLow, StateHigh)
	}
	d.state = x
	return nil
}

// DecodeBit pops a bit coded under distribution b. Forced distributions
// return their value without touching the state.
func (d *Decoder) DecodeBit(b Binary) (bool, error) {
	if b.forced {
		return b.value, nil
	}
	if b.total != d.cfg.Total() {
		return false, internal.InvalidInputf("distribution quantized for total %d, coder uses %d", b.total, d.cfg.Total())
	}
	bit := d.Peek() < b.one
	if err := d.Advance(b.symbol(bit)); err != nil {
		return false, err
	}
	return bit, nil
}

// Finish checks that the stream was consumed exactly: no words left and
// the state returned to StateLow.
func (d *Decoder) Finish() error {
	if len(d.words) != 0 {
		return internal.CorruptStreamf("%d unread bytes in word stream", len(d.words))
	}
	if d.state != StateLow {
		return internal.CorruptStreamf("final state %#x, expected %#x", d.state, StateLow)
	}
	return nil
}
