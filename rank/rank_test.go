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

package rank

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cnkcodec/cnk-go/ans"
	"github.com/cnkcodec/cnk-go/internal"
)

func randomSet(rng *rand.Rand, n int, universe uint64) []uint32 {
	seen := make(map[uint32]bool, n)
	ids := make([]uint32, 0, n)
	for len(ids) < n {
		id := uint32(rng.Int63n(int64(universe)))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// encodeEverySlot visits all universe slots, forced or not.
func encodeEverySlot(t *testing.T, m Model, ids []uint32, universe uint64) []byte {
	enc, err := ans.NewEncoder(m.Config())
	assert.NoError(t, err)
	members := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		members[uint64(id)] = true
	}
	above := uint64(0)
	for slot := universe; slot > 0; {
		slot--
		occupied := members[slot]
		s := State{SlotsRemaining: universe - slot, MembersRemaining: above + uint64(internal.BoolToInt(occupied))}
		dist, err := m.distribution(s)
		assert.NoError(t, err)
		assert.NoError(t, enc.EncodeBit(dist, occupied))
		if occupied {
			above++
		}
	}
	return enc.AppendFlushed(nil)
}

func roundTrip(t *testing.T, m Model, ids []uint32, universe uint64) []byte {
	enc, err := ans.NewEncoder(m.Config())
	assert.NoError(t, err)
	assert.NoError(t, m.Encode(enc, ids, universe))
	stream := enc.AppendFlushed(nil)

	dec, err := ans.NewDecoder(m.Config(), stream)
	assert.NoError(t, err)
	got, err := m.Decode(dec, uint64(len(ids)), universe)
	assert.NoError(t, err)
	assert.NoError(t, dec.Finish())
	if len(ids) == 0 {
		assert.Empty(t, got)
	} else {
		assert.Equal(t, ids, got)
	}
	return stream
}

func TestStateTransitions(t *testing.T) {
	s, err := NewState(5, 2)
	assert.NoError(t, err)
	forced, _ := s.Forced()
	assert.False(t, forced)

	p, err := s.Probability()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), p.Numer)
	assert.Equal(t, uint64(5), p.Denom)

	s, err = s.Advance(true)
	assert.NoError(t, err)
	assert.Equal(t, State{SlotsRemaining: 4, MembersRemaining: 1}, s)

	for i := 0; i < 2; i++ {
		s, err = s.Advance(false)
		assert.NoError(t, err)
		forced, _ := s.Forced()
		assert.False(t, forced)
	}
	s, err = s.Advance(false)
	assert.NoError(t, err)
	assert.Equal(t, State{SlotsRemaining: 1, MembersRemaining: 1}, s)
	forced, occupied := s.Forced()
	assert.True(t, forced)
	assert.True(t, occupied)

	_, err = s.Advance(false)
	assert.True(t, errors.Is(err, internal.ErrCorruptStream))

	s, err = s.Advance(true)
	assert.NoError(t, err)
	assert.True(t, s.Done())
	_, err = s.Advance(false)
	assert.True(t, errors.Is(err, internal.ErrCorruptStream))

	_, err = NewState(3, 4)
	assert.True(t, errors.Is(err, internal.ErrInvalidInput))

	_, err = State{SlotsRemaining: 3}.Advance(true)
	assert.True(t, errors.Is(err, internal.ErrCorruptStream))
}

func TestRoundTrip(t *testing.T) {
	m := NewModel(ans.DefaultConfig())
	rng := rand.New(rand.NewSource(42))
	for _, tc := range []struct {
		n        int
		universe uint64
	}{
		{0, 1}, {1, 1}, {0, 100}, {1, 100}, {5, 1000}, {50, 64}, {64, 64},
		{500, 1000}, {999, 1000}, {100, 100000}, {3000, 4096},
	} {
		for trial := 0; trial < 5; trial++ {
			roundTrip(t, m, randomSet(rng, tc.n, tc.universe), tc.universe)
		}
	}
}

func TestMatchesFullScan(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, precision := range []uint{ans.MinPrecisionBits, 16, ans.DefaultPrecisionBits} {
		cfg, err := ans.NewConfig(precision)
		assert.NoError(t, err)
		m := NewModel(cfg)

		sets := [][]uint32{
			nil,
			{0},
			{9},
			{7, 8, 9},
			{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			{0, 1, 5, 8, 9},
			{2, 3, 4},
		}
		for i := 0; i < 20; i++ {
			sets = append(sets, randomSet(rng, rng.Intn(10), 10))
		}
		for _, ids := range sets {
			stream := roundTrip(t, m, ids, 10)
			assert.Equal(t, encodeEverySlot(t, m, ids, 10), stream, "ids %v", ids)
		}
	}
}

func TestDegenerateSetsCostNothing(t *testing.T) {
	m := NewModel(ans.DefaultConfig())
	full := make([]uint32, 300)
	for i := range full {
		full[i] = uint32(i)
	}
	for _, ids := range [][]uint32{nil, full} {
		stream := roundTrip(t, m, ids, 300)
		assert.Len(t, stream, ans.StateBytes)
	}
}

func TestEncodeRejectsInvalidSets(t *testing.T) {
	m := NewModel(ans.DefaultConfig())
	enc, _ := ans.NewEncoder(m.Config())
	for _, ids := range [][]uint32{{5, 3}, {3, 3}, {10}} {
		assert.True(t, errors.Is(m.Encode(enc, ids, 10), internal.ErrInvalidInput), "ids %v", ids)
	}
	assert.True(t, errors.Is(m.Encode(enc, nil, 0), internal.ErrInvalidInput))
}

func TestDecodeRejectsImpossibleHeaders(t *testing.T) {
	m := NewModel(ans.DefaultConfig())
	enc, _ := ans.NewEncoder(m.Config())
	stream := enc.AppendFlushed(nil)

	dec, _ := ans.NewDecoder(m.Config(), stream)
	_, err := m.Decode(dec, 11, 10)
	assert.True(t, errors.Is(err, internal.ErrCorruptStream))

	dec, _ = ans.NewDecoder(m.Config(), stream)
	_, err = m.Decode(dec, 0, 0)
	assert.True(t, errors.Is(err, internal.ErrInvalidInput))
}

func TestDecodeWithWrongCountFails(t *testing.T) {
	m := NewModel(ans.DefaultConfig())
	ids := []uint32{3, 17, 40, 41, 77}
	enc, _ := ans.NewEncoder(m.Config())
	assert.NoError(t, m.Encode(enc, ids, 100))
	stream := enc.AppendFlushed(nil)

	for _, n := range []uint64{4, 6} {
		dec, _ := ans.NewDecoder(m.Config(), stream)
		got, err := m.Decode(dec, n, 100)
		if err == nil {
			err = dec.Finish()
		}
		assert.True(t, errors.Is(err, internal.ErrCorruptStream), "n=%d decoded %v", n, got)
	}
}
