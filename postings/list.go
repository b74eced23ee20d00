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

// Package postings stores posting lists, the sorted document ids a term
// occurs in, as compressed id sets.
package postings

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"

	"github.com/cnkcodec/cnk-go/idset"
	"github.com/cnkcodec/cnk-go/internal"
)

var (
	ErrInvalidInput  = internal.ErrInvalidInput
	ErrCorruptStream = internal.ErrCorruptStream
)

// List is an immutable compressed posting list.
type List struct {
	bytes    []byte
	universe uint64
	numIDs   int
	method   idset.Method
}

// NewList compresses ids with method. ids must be strictly increasing and
// below universe.
func NewList(ids []uint32, universe uint64, method idset.Method) (*List, error) {
	bytes, err := idset.Compress(method, ids, universe)
	if err != nil {
		return nil, err
	}
	return &List{bytes: bytes, universe: universe, numIDs: len(ids), method: method}, nil
}

// NewBestList compresses ids with whichever method yields the smallest
// buffer.
func NewBestList(ids []uint32, universe uint64) (*List, error) {
	bytes, method, err := idset.Best(ids, universe)
	if err != nil {
		return nil, err
	}
	return &List{bytes: bytes, universe: universe, numIDs: len(ids), method: method}, nil
}

// FromBytes wraps a compressed buffer, decoding it once to validate it.
func FromBytes(bytes []byte, universe uint64) (*List, error) {
	ids, err := idset.Decompress(bytes, universe)
	if err != nil {
		return nil, err
	}
	method, _ := idset.MethodOf(bytes)
	return &List{bytes: slices.Clone(bytes), universe: universe, numIDs: len(ids), method: method}, nil
}

// FromBitmap compresses the contents of bm.
func FromBitmap(bm *roaring.Bitmap, universe uint64, method idset.Method) (*List, error) {
	return NewList(bm.ToArray(), universe, method)
}

// FromBitSet compresses the set bits of bs.
func FromBitSet(bs *bitset.BitSet, universe uint64, method idset.Method) (*List, error) {
	ids := make([]uint32, 0, bs.Count())
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		if uint64(i) >= universe || uint64(i) > math.MaxUint32 {
			return nil, internal.InvalidInputf("bit %d exceeds universe size %d", i, universe)
		}
		ids = append(ids, uint32(i))
	}
	return NewList(ids, universe, method)
}

// Bytes returns the compressed buffer. It must not be modified.
func (l *List) Bytes() []byte {
	return l.bytes
}

func (l *List) Universe() uint64 {
	return l.universe
}

func (l *List) Method() idset.Method {
	return l.method
}

// Len returns the number of ids.
func (l *List) Len() int {
	return l.numIDs
}

// SizeBytes returns the compressed size.
func (l *List) SizeBytes() int {
	return len(l.bytes)
}

// Fingerprint returns the xxhash of the compressed buffer. Equal lists
// compressed with the same method have equal fingerprints.
func (l *List) Fingerprint() uint64 {
	return xxhash.Sum64(l.bytes)
}

// IDs decompresses the list.
func (l *List) IDs() ([]uint32, error) {
	return idset.Decompress(l.bytes, l.universe)
}

// Contains reports whether id is in the list.
func (l *List) Contains(id uint32) (bool, error) {
	ids, err := l.IDs()
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(ids, id)
	return found, nil
}

// Bitmap decompresses the list into a roaring bitmap.
func (l *List) Bitmap() (*roaring.Bitmap, error) {
	ids, err := l.IDs()
	if err != nil {
		return nil, err
	}
	return roaring.BitmapOf(ids...), nil
}

// BitSet decompresses the list into a bit set of Universe() bits.
func (l *List) BitSet() (*bitset.BitSet, error) {
	ids, err := l.IDs()
	if err != nil {
		return nil, err
	}
	bs := bitset.New(uint(l.universe))
	for _, id := range ids {
		bs.Set(uint(id))
	}
	return bs, nil
}

// And returns the ids present in both lists, compressed with method.
func And(a, b *List, method idset.Method) (*List, error) {
	return combine(roaring.FastAnd, method, a, b)
}

// Or returns the ids present in either list, compressed with method.
func Or(a, b *List, method idset.Method) (*List, error) {
	return combine(roaring.FastOr, method, a, b)
}

func combine(op func(...*roaring.Bitmap) *roaring.Bitmap, method idset.Method, lists ...*List) (*List, error) {
	bm, err := combineBitmaps(op, lists)
	if err != nil {
		return nil, err
	}
	return FromBitmap(bm, lists[0].universe, method)
}

func combineBitmaps(op func(...*roaring.Bitmap) *roaring.Bitmap, lists []*List) (*roaring.Bitmap, error) {
	bitmaps := make([]*roaring.Bitmap, 0, len(lists))
	for _, l := range lists {
		if l.universe != lists[0].universe {
			return nil, internal.InvalidInputf("universe size mismatch: %d and %d", lists[0].universe, l.universe)
		}
		bm, err := l.Bitmap()
		if err != nil {
			return nil, err
		}
		bitmaps = append(bitmaps, bm)
	}
	return op(bitmaps...), nil
}
