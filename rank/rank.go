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

// Package rank models a sorted id set as a scan over the universe: at each
// slot the only question is whether the slot is occupied, and the answer's
// probability depends only on how many slots and members remain.
//
// The product of those probabilities over a scan is exactly 1/C(N, n), so
// coding the occupancy bits costs log2 C(N, n) bits and never pays for the
// order of the members.
package rank

import (
	"github.com/cnkcodec/cnk-go/ans"
	"github.com/cnkcodec/cnk-go/internal"
	"github.com/cnkcodec/cnk-go/internal/combinatorics"
)

// State is the bookkeeping of a scan before visiting a slot.
type State struct {
	SlotsRemaining   uint64
	MembersRemaining uint64
}

// NewState returns the state before the first slot of a scan placing
// members ids into universe slots.
func NewState(universe, members uint64) (State, error) {
	s := State{SlotsRemaining: universe, MembersRemaining: members}
	if members > universe {
		return State{}, internal.InvalidInputf("%d members cannot fit in %d slots", members, universe)
	}
	return s, nil
}

// Done reports whether the scan reached its terminal state (0, 0).
func (s State) Done() bool {
	return s.SlotsRemaining == 0 && s.MembersRemaining == 0
}

// Forced reports whether every remaining slot has a known occupancy, and
// whether those slots are occupied. Forced slots cost no bits.
func (s State) Forced() (bool, bool) {
	if s.MembersRemaining == 0 {
		return true, false
	}
	if s.MembersRemaining == s.SlotsRemaining {
		return true, true
	}
	return false, false
}

// Probability returns the exact probability that the current slot is
// occupied.
func (s State) Probability() (combinatorics.Rational, error) {
	return combinatorics.StepProbability(s.SlotsRemaining, s.MembersRemaining)
}

// Advance moves past the current slot.
func (s State) Advance(occupied bool) (State, error) {
	if s.SlotsRemaining == 0 {
		return s, internal.CorruptStreamf("scan past the end of the universe")
	}
	if occupied {
		if s.MembersRemaining == 0 {
			return s, internal.CorruptStreamf("slot occupied with no members remaining")
		}
		s.MembersRemaining--
	} else if s.MembersRemaining == s.SlotsRemaining {
		return s, internal.CorruptStreamf("slot empty with %d members in %d slots", s.MembersRemaining, s.SlotsRemaining)
	}
	s.SlotsRemaining--
	return s, nil
}

// Model drives an ans coder over the occupancy bits of a set.
type Model struct {
	cfg ans.Config
}

// NewModel returns a model quantizing with cfg.
func NewModel(cfg ans.Config) Model {
	return Model{cfg: cfg}
}

// Config returns the coder configuration of the model.
func (m Model) Config() ans.Config {
	return m.cfg
}

// distribution returns the quantized occupancy distribution of the slot
// at which the scan is in state s.
func (m Model) distribution(s State) (ans.Binary, error) {
	p, err := s.Probability()
	if err != nil {
		return ans.Binary{}, err
	}
	return m.cfg.Quantize(p)
}
