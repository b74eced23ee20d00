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

package roc

import (
	"math/big"

	"github.com/cnkcodec/cnk-go/internal/combinatorics"
)

// Index returns the position of ids among all len(ids)-subsets of
// [0, universe) in colexicographic order, in [0, C(universe, len(ids))).
// A compressed set codes the same information as this integer.
func Index(ids []uint32, universe uint64) (*big.Int, error) {
	return combinatorics.Rank(ids, universe)
}

// SetAt is the inverse of Index: it returns the n-subset of [0, universe)
// at position index.
func SetAt(index *big.Int, n, universe uint64) ([]uint32, error) {
	return combinatorics.Unrank(index, n, universe)
}

// IndexBits returns the number of bits needed to write any index of an
// n-subset of [0, universe) in fixed width.
func IndexBits(n, universe uint64) int {
	if n > universe {
		return 0
	}
	count := combinatorics.Binomial(universe, n)
	return count.Sub(count, big.NewInt(1)).BitLen()
}
