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
	"fmt"
	"math/rand"
	"testing"
)

func BenchmarkCompressSet(b *testing.B) {
	for _, n := range []int{100, 1000, 10_000} {
		universe := uint64(n) * 100
		ids := randomIDs(rand.New(rand.NewSource(int64(n))), n, universe)
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := CompressSet(ids, universe); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecompressSet(b *testing.B) {
	for _, n := range []int{100, 1000, 10_000} {
		universe := uint64(n) * 100
		ids := randomIDs(rand.New(rand.NewSource(int64(n))), n, universe)
		buf, err := CompressSet(ids, universe)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := DecompressSet(buf, universe); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRoundTrip(b *testing.B) {
	for _, n := range []int{100, 1000, 10_000} {
		universe := uint64(n) * 100
		ids := randomIDs(rand.New(rand.NewSource(int64(n))), n, universe)
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				buf, err := CompressSet(ids, universe)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := DecompressSet(buf, universe); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
