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
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cnkcodec/cnk-go/internal"
	"github.com/cnkcodec/cnk-go/internal/combinatorics"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(12)
	assert.NoError(t, err)
	assert.Equal(t, uint(12), cfg.PrecisionBits())
	assert.Equal(t, uint64(4096), cfg.Total())

	for _, bad := range []uint{0, 7, 32, 64} {
		_, err := NewConfig(bad)
		assert.True(t, errors.Is(err, internal.ErrInvalidInput), "bits=%d", bad)
	}

	assert.Equal(t, DefaultPrecisionBits, DefaultConfig().PrecisionBits())

	_, err = NewEncoder(Config{})
	assert.Error(t, err)
	_, err = NewDecoder(Config{}, make([]byte, StateBytes))
	assert.Error(t, err)
}

func TestQuantize(t *testing.T) {
	cfg, err := NewConfig(16)
	assert.NoError(t, err)

	testCases := []struct {
		name     string
		p        combinatorics.Rational
		expected uint32
	}{
		{name: "half", p: combinatorics.Rational{Numer: 1, Denom: 2}, expected: 32768},
		{name: "third rounds", p: combinatorics.Rational{Numer: 1, Denom: 3}, expected: 21845},
		{name: "two thirds rounds", p: combinatorics.Rational{Numer: 2, Denom: 3}, expected: 43691},
		{name: "tiny clamps to one", p: combinatorics.Rational{Numer: 1, Denom: 1 << 40}, expected: 1},
		{name: "near one clamps", p: combinatorics.Rational{Numer: 1<<40 - 1, Denom: 1 << 40}, expected: 65535},
		{name: "huge denominator", p: combinatorics.Rational{Numer: 1 << 62, Denom: 1 << 63}, expected: 32768},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := cfg.Quantize(tc.p)
			assert.NoError(t, err)
			forced, _ := b.Forced()
			assert.False(t, forced)
			assert.Equal(t, tc.expected, b.one)
			assert.Equal(t, cfg.Total(), b.total)
		})
	}

	b, err := cfg.Quantize(combinatorics.Rational{Numer: 0, Denom: 5})
	assert.NoError(t, err)
	forced, value := b.Forced()
	assert.True(t, forced)
	assert.False(t, value)

	b, err = cfg.Quantize(combinatorics.Rational{Numer: 5, Denom: 5})
	assert.NoError(t, err)
	forced, value = b.Forced()
	assert.True(t, forced)
	assert.True(t, value)

	_, err = cfg.Quantize(combinatorics.Rational{Numer: 6, Denom: 5})
	assert.True(t, errors.Is(err, internal.ErrInvalidInput))
	_, err = cfg.Quantize(combinatorics.Rational{})
	assert.True(t, errors.Is(err, internal.ErrInvalidInput))
}

func TestRoundTripSymbols(t *testing.T) {
	for _, precision := range []uint{MinPrecisionBits, 12, 16, DefaultPrecisionBits, MaxPrecisionBits} {
		cfg, err := NewConfig(precision)
		assert.NoError(t, err)
		total := cfg.Total()

		// a fixed four-symbol alphabet with uneven frequencies
		freqs := []uint64{1, total / 8, total / 2}
		freqs = append(freqs, total-freqs[0]-freqs[1]-freqs[2])
		starts := make([]uint64, len(freqs))
		for i := 1; i < len(freqs); i++ {
			starts[i] = starts[i-1] + freqs[i-1]
		}

		rng := rand.New(rand.NewSource(int64(precision)))
		msg := make([]int, 5000)
		for i := range msg {
			msg[i] = 1 + rng.Intn(3)
			if rng.Intn(1000) == 0 {
				msg[i] = 0
			}
		}

		enc, err := NewEncoder(cfg)
		assert.NoError(t, err)
		for i := len(msg) - 1; i >= 0; i-- {
			s := msg[i]
			assert.NoError(t, enc.Encode(uint32(starts[s]), uint32(freqs[s])))
			assert.GreaterOrEqual(t, enc.State(), StateLow)
			assert.Less(t, enc.State(), StateHigh)
		}
		stream := enc.AppendFlushed(nil)
		assert.Equal(t, enc.FlushedSize(), len(stream))
		assert.Equal(t, StateBytes+enc.NumWords()*WordBytes, len(stream))

		state, words := enc.Flush()
		assert.Equal(t, state, binary.LittleEndian.Uint64(stream))
		for i, w := range words {
			assert.Equal(t, w, binary.LittleEndian.Uint32(stream[StateBytes+i*WordBytes:]))
		}

		dec, err := NewDecoder(cfg, stream)
		assert.NoError(t, err)
		for i := range msg {
			pos := uint64(dec.Peek())
			s := len(starts) - 1
			for pos < starts[s] {
				s--
			}
			assert.Equal(t, msg[i], s, "precision %d symbol %d", precision, i)
			assert.NoError(t, dec.Advance(uint32(starts[s]), uint32(freqs[s])))
		}
		assert.NoError(t, dec.Finish())
	}
}

func TestEncodeRejectsBadSymbols(t *testing.T) {
	cfg, _ := NewConfig(8)
	enc, _ := NewEncoder(cfg)
	assert.True(t, errors.Is(enc.Encode(0, 0), internal.ErrInvalidInput))
	assert.True(t, errors.Is(enc.Encode(200, 100), internal.ErrInvalidInput))
	assert.Equal(t, StateLow, enc.State())
}

func TestForcedBitsAreFree(t *testing.T) {
	cfg := DefaultConfig()
	always, _ := cfg.Quantize(combinatorics.Rational{Numer: 3, Denom: 3})
	never, _ := cfg.Quantize(combinatorics.Rational{Numer: 0, Denom: 3})

	enc, _ := NewEncoder(cfg)
	for i := 0; i < 1000; i++ {
		assert.NoError(t, enc.EncodeBit(always, true))
		assert.NoError(t, enc.EncodeBit(never, false))
	}
	assert.Equal(t, StateLow, enc.State())
	assert.Equal(t, 0, enc.NumWords())

	assert.True(t, errors.Is(enc.EncodeBit(always, false), internal.ErrInvalidInput))
	assert.True(t, errors.Is(enc.EncodeBit(never, true), internal.ErrInvalidInput))

	dec, err := NewDecoder(cfg, enc.AppendFlushed(nil))
	assert.NoError(t, err)
	bit, err := dec.DecodeBit(always)
	assert.NoError(t, err)
	assert.True(t, bit)
	bit, err = dec.DecodeBit(never)
	assert.NoError(t, err)
	assert.False(t, bit)
	assert.NoError(t, dec.Finish())
}

func TestBitCostApproachesEntropy(t *testing.T) {
	cfg := DefaultConfig()
	p := combinatorics.Rational{Numer: 1, Denom: 10}
	b, err := cfg.Quantize(p)
	assert.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	const count = 100000
	bitsIn := make([]bool, count)
	ones := 0
	for i := range bitsIn {
		bitsIn[i] = rng.Intn(10) == 0
		if bitsIn[i] {
			ones++
		}
	}

	enc, _ := NewEncoder(cfg)
	for i := count - 1; i >= 0; i-- {
		assert.NoError(t, enc.EncodeBit(b, bitsIn[i]))
	}
	stream := enc.AppendFlushed(nil)

	entropy := -float64(ones)*math.Log2(0.1) - float64(count-ones)*math.Log2(0.9)
	assert.LessOrEqual(t, float64(len(stream)*8), entropy+2*64)

	dec, _ := NewDecoder(cfg, stream)
	for i := 0; i < count; i++ {
		bit, err := dec.DecodeBit(b)
		assert.NoError(t, err)
		if bit != bitsIn[i] {
			t.Fatalf("bit %d mismatch", i)
		}
	}
	assert.NoError(t, dec.Finish())
}

func TestDecoderDetectsCorruption(t *testing.T) {
	cfg := DefaultConfig()
	b, _ := cfg.Quantize(combinatorics.Rational{Numer: 1, Denom: 3})

	enc, _ := NewEncoder(cfg)
	for i := 0; i < 200; i++ {
		assert.NoError(t, enc.EncodeBit(b, i%3 == 0))
	}
	stream := enc.AppendFlushed(nil)
	assert.Greater(t, enc.NumWords(), 0)

	t.Run("short state", func(t *testing.T) {
		_, err := NewDecoder(cfg, stream[:StateBytes-1])
		assert.True(t, errors.Is(err, internal.ErrCorruptStream))
	})

	t.Run("partial word", func(t *testing.T) {
		_, err := NewDecoder(cfg, stream[:len(stream)-1])
		assert.True(t, errors.Is(err, internal.ErrCorruptStream))
	})

	t.Run("state out of range", func(t *testing.T) {
		bad := append([]byte(nil), stream...)
		binary.LittleEndian.PutUint64(bad, StateLow-1)
		_, err := NewDecoder(cfg, bad)
		assert.True(t, errors.Is(err, internal.ErrCorruptStream))
		binary.LittleEndian.PutUint64(bad, StateHigh)
		_, err = NewDecoder(cfg, bad)
		assert.True(t, errors.Is(err, internal.ErrCorruptStream))
	})

	t.Run("missing words", func(t *testing.T) {
		dec, err := NewDecoder(cfg, stream[:len(stream)-WordBytes])
		assert.NoError(t, err)
		var failed error
		for i := 0; i < 200 && failed == nil; i++ {
			_, failed = dec.DecodeBit(b)
		}
		if failed == nil {
			failed = dec.Finish()
		}
		assert.True(t, errors.Is(failed, internal.ErrCorruptStream))
	})

	t.Run("extra symbols", func(t *testing.T) {
		dec, _ := NewDecoder(cfg, stream)
		for i := 0; i < 100; i++ {
			_, _ = dec.DecodeBit(b)
		}
		assert.True(t, errors.Is(dec.Finish(), internal.ErrCorruptStream))
	})

	t.Run("wrong symbol", func(t *testing.T) {
		dec, _ := NewDecoder(cfg, stream)
		pos := dec.Peek()
		if pos < b.one {
			assert.True(t, errors.Is(dec.Advance(b.symbol(false)), internal.ErrCorruptStream))
		} else {
			assert.True(t, errors.Is(dec.Advance(b.symbol(true)), internal.ErrCorruptStream))
		}
	})

	t.Run("mismatched precision", func(t *testing.T) {
		other, _ := NewConfig(12)
		dec, _ := NewDecoder(other, stream)
		_, err := dec.DecodeBit(b)
		assert.True(t, errors.Is(err, internal.ErrInvalidInput))
	})
}
