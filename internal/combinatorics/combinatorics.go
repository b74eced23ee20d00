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

// Package combinatorics provides the exact integer arithmetic behind set
// coding: binomial coefficients, their base-2 logarithms, the single-step
// occupancy probability of a universe scan and the combinatorial number
// system.
//
// Binomials are diagnostics only. The coding path uses StepProbability,
// whose result is an exact rational so that encoder and decoder always
// quantize the same value.
package combinatorics

import (
	"math"
	"math/big"

	"github.com/cnkcodec/cnk-go/internal"
)

// Rational is an exact probability Numer/Denom.
type Rational struct {
	Numer uint64
	Denom uint64
}

// IsZero reports a probability of exactly 0.
func (r Rational) IsZero() bool {
	return r.Numer == 0
}

// IsOne reports a probability of exactly 1.
func (r Rational) IsOne() bool {
	return r.Numer == r.Denom
}

// Float64 returns the probability as a float. Never used for coding.
func (r Rational) Float64() float64 {
	return float64(r.Numer) / float64(r.Denom)
}

// StepProbability returns the probability that the current slot of a scan is
// occupied when membersRemaining of the slotsRemaining unvisited slots hold
// set members.
func StepProbability(slotsRemaining, membersRemaining uint64) (Rational, error) {
	if slotsRemaining == 0 {
		return Rational{}, internal.InvalidInputf("no slots remaining")
	}
	if membersRemaining > slotsRemaining {
		return Rational{}, internal.InvalidInputf("%d members cannot fit in %d slots", membersRemaining, slotsRemaining)
	}
	return Rational{Numer: membersRemaining, Denom: slotsRemaining}, nil
}

// Binomial returns C(n, k), or 0 when k > n.
func Binomial(n, k uint64) *big.Int {
	out := new(big.Int)
	if k > n {
		return out
	}
	if k > n-k {
		k = n - k
	}
	// C(n, i+1) = C(n, i) * (n-i) / (i+1) stays integral at every step
	out.SetUint64(1)
	var num, den big.Int
	for i := uint64(0); i < k; i++ {
		num.SetUint64(n - i)
		den.SetUint64(i + 1)
		out.Mul(out, &num)
		out.Quo(out, &den)
	}
	return out
}

// Log2Binomial returns log2 C(n, k). It is -Inf when k > n.
func Log2Binomial(n, k uint64) float64 {
	if k > n {
		return math.Inf(-1)
	}
	if k == 0 || k == n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	if k < 32 {
		// product form for small k
		sum := 0.0
		for i := uint64(0); i < k; i++ {
			sum += math.Log2(float64(n-i)) - math.Log2(float64(i+1))
		}
		return sum
	}
	a, _ := math.Lgamma(float64(n) + 1)
	b, _ := math.Lgamma(float64(k) + 1)
	c, _ := math.Lgamma(float64(n-k) + 1)
	return (a - b - c) / math.Ln2
}

// InformationBits returns ceil(log2 C(n, k)), the fewest bits any code can
// spend on a k-subset of an n-element universe.
func InformationBits(n, k uint64) uint64 {
	bits := Log2Binomial(n, k)
	if bits <= 0 {
		return 0
	}
	// absorb float noise on exact powers of two
	return uint64(math.Ceil(bits - 1e-9))
}
