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

// Package ans implements a range asymmetric numeral system (rANS) coder with
// a 64-bit state and 32-bit renormalization words.
//
// Symbols are intervals [start, start+freq) of a total M = 2^PrecisionBits.
// Encoding pushes symbols onto the state, decoding pops them, so symbols are
// decoded in the reverse of the order they were encoded. After every
// operation the state lies in [StateLow, StateHigh).
//
// A flushed stream is the final state as 8 little-endian bytes followed by
// the emitted words, 4 little-endian bytes each, in the order the decoder
// consumes them. A decoder that has consumed every symbol must end with all
// words read and the state back at StateLow; anything else means the stream
// was damaged or decoded against the wrong model.
package ans

import (
	"math/bits"

	"github.com/cnkcodec/cnk-go/internal"
	"github.com/cnkcodec/cnk-go/internal/combinatorics"
)

const (
	// StateLow is the inclusive lower bound of the coder state and the
	// initial encoder state.
	StateLow uint64 = 1 << 31
	// StateHigh is the exclusive upper bound of the coder state.
	StateHigh uint64 = 1 << 63

	WordBits   = 32
	StateBytes = 8
	WordBytes  = WordBits / 8

	MinPrecisionBits     uint = 8
	MaxPrecisionBits     uint = 31
	DefaultPrecisionBits uint = 28
)

// Config holds the probability precision of a coder. The zero value is not
// valid; use NewConfig or DefaultConfig.
type Config struct {
	precisionBits uint
}

// NewConfig returns a configuration quantizing probabilities to
// precisionBits bits.
func NewConfig(precisionBits uint) (Config, error) {
	if precisionBits < MinPrecisionBits || precisionBits > MaxPrecisionBits {
		return Config{}, internal.InvalidInputf("precision must be in [%d, %d] bits: %d",
			MinPrecisionBits, MaxPrecisionBits, precisionBits)
	}
	return Config{precisionBits: precisionBits}, nil
}

// DefaultConfig returns the configuration with DefaultPrecisionBits.
func DefaultConfig() Config {
	return Config{precisionBits: DefaultPrecisionBits}
}

func (c Config) PrecisionBits() uint {
	return c.precisionBits
}

// Total returns M, the sum of all symbol frequencies.
func (c Config) Total() uint64 {
	return 1 << c.precisionBits
}

func (c Config) valid() bool {
	return c.precisionBits >= MinPrecisionBits && c.precisionBits <= MaxPrecisionBits
}

// Binary is a quantized distribution over {true, false}. true occupies
// [0, one) and false occupies [one, M). A forced distribution has
// probability 1 for value and costs nothing to code.
type Binary struct {
	one    uint32
	total  uint64
	forced bool
	value  bool
}

// Quantize converts an exact probability of true into a Binary. Rounding is
// integer only, so the encoder and the decoder derive identical tables.
// Probabilities other than exactly 0 or 1 get both symbols a frequency of
// at least one.
func (c Config) Quantize(p combinatorics.Rational) (Binary, error) {
	if !c.valid() {
		return Binary{}, internal.InvalidInputf("unconfigured coder")
	}
	if p.Denom == 0 || p.Numer > p.Denom {
		return Binary{}, internal.InvalidInputf("not a probability: %d/%d", p.Numer, p.Denom)
	}
	if p.IsZero() {
		return Binary{forced: true, value: false}, nil
	}
	if p.IsOne() {
		return Binary{forced: true, value: true}, nil
	}

	total := c.Total()
	// round(numer * M / denom); numer < denom keeps the quotient below M
	hi, lo := bits.Mul64(p.Numer, total)
	lo, carry := bits.Add64(lo, p.Denom/2, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, p.Denom)
	q = min(max(q, 1), total-1)
	return Binary{one: uint32(q), total: total}, nil
}

// Forced reports whether the distribution is deterministic, and its value.
func (b Binary) Forced() (bool, bool) {
	return b.forced, b.value
}

// symbol returns the interval coding bit.
func (b Binary) symbol(bit bool) (start, freq uint32) {
	if bit {
		return 0, b.one
	}
	return b.one, uint32(b.total - uint64(b.one))
}
