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
	"github.com/cnkcodec/cnk-go/ans"
	"github.com/cnkcodec/cnk-go/internal"
)

// Encode pushes the occupancy bits of ids onto enc. Slots are pushed from
// universe-1 down to 0 so that a decoder pops them in ascending order.
//
// Slots whose occupancy is forced cost nothing and are skipped: those are
// exactly the slots above the largest id, or the run of ids ending at
// universe-1. Skipping them yields the same stream as visiting every slot.
func (m Model) Encode(enc *ans.Encoder, ids []uint32, universe uint64) error {
	if err := internal.ValidateIDs(ids, universe); err != nil {
		return err
	}
	n := len(ids)

	// start of the forced suffix
	tail := 0
	for tail < n && uint64(ids[n-1-tail]) == universe-1-uint64(tail) {
		tail++
	}
	end := universe - uint64(tail)
	if tail == 0 && n > 0 {
		end = uint64(ids[n-1]) + 1
	} else if n == 0 {
		end = 0
	}

	above := uint64(tail) // members at or above the current slot, excluding it
	j := n - 1 - tail
	for slot := end; slot > 0; {
		slot--
		occupied := j >= 0 && uint64(ids[j]) == slot
		s := State{SlotsRemaining: universe - slot, MembersRemaining: above}
		if occupied {
			s.MembersRemaining++
		}
		dist, err := m.distribution(s)
		if err != nil {
			return err
		}
		if err := enc.EncodeBit(dist, occupied); err != nil {
			return err
		}
		if occupied {
			above++
			j--
		}
	}
	return nil
}

// maxPreallocIDs caps the capacity reserved from an untrusted member count.
const maxPreallocIDs = 1 << 16

// Decode pops the occupancy bits of an n-member set from dec and returns
// the ids in ascending order. It stops as soon as the rest of the scan is
// forced.
func (m Model) Decode(dec *ans.Decoder, n, universe uint64) ([]uint32, error) {
	if err := internal.ValidateUniverse(universe); err != nil {
		return nil, err
	}
	if n > universe {
		return nil, internal.CorruptStreamf("%d members cannot fit in %d slots", n, universe)
	}
	s := State{SlotsRemaining: universe, MembersRemaining: n}
	ids := make([]uint32, 0, min(n, maxPreallocIDs))

	for slot := uint64(0); !s.Done(); slot++ {
		if forced, occupied := s.Forced(); forced {
			if occupied {
				for ; slot < universe; slot++ {
					ids = append(ids, uint32(slot))
				}
			}
			s = State{}
			break
		}
		dist, err := m.distribution(s)
		if err != nil {
			return nil, err
		}
		occupied, err := dec.DecodeBit(dist)
		if err != nil {
			return nil, err
		}
		if occupied {
			ids = append(ids, uint32(slot))
		}
		if s, err = s.Advance(occupied); err != nil {
			return nil, err
		}
	}

	if uint64(len(ids)) != n {
		return nil, internal.CorruptStreamf("decoded %d ids, header declares %d", len(ids), n)
	}
	return ids, nil
}
