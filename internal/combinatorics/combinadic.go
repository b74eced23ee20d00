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

package combinatorics

import (
	"math/big"

	"github.com/cnkcodec/cnk-go/internal"
)

// Rank maps a sorted, duplicate-free id set to its index in the
// combinatorial number system: sum over i of C(ids[i], i+1). The result is
// in [0, C(universe, len(ids))).
func Rank(ids []uint32, universe uint64) (*big.Int, error) {
	if err := internal.ValidateIDs(ids, universe); err != nil {
		return nil, err
	}
	index := new(big.Int)
	for i, id := range ids {
		index.Add(index, Binomial(uint64(id), uint64(i+1)))
	}
	return index, nil
}

// Unrank is the inverse of Rank for sets of k ids.
func Unrank(index *big.Int, k, universe uint64) ([]uint32, error) {
	if universe == 0 || k > universe {
		return nil, internal.InvalidInputf("cannot choose %d ids from a universe of %d", k, universe)
	}
	if index.Sign() < 0 || index.Cmp(Binomial(universe, k)) >= 0 {
		return nil, internal.InvalidInputf("index %s out of range for C(%d, %d)", index, universe, k)
	}

	ids := make([]uint32, k)
	rem := new(big.Int).Set(index)
	hi := universe
	for i := k; i >= 1; i-- {
		// largest c in [i-1, hi) with C(c, i) <= rem
		lo, top := i-1, hi-1
		for lo < top {
			mid := lo + (top-lo+1)/2
			if Binomial(mid, i).Cmp(rem) <= 0 {
				lo = mid
			} else {
				top = mid - 1
			}
		}
		ids[i-1] = uint32(lo)
		rem.Sub(rem, Binomial(lo, i))
		hi = lo
	}
	return ids, nil
}
