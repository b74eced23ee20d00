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

package postings

import (
	"bytes"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/twmb/murmur3"

	"github.com/cnkcodec/cnk-go/idset"
	"github.com/cnkcodec/cnk-go/internal"
)

const (
	// DefaultSeed seeds the term hash.
	DefaultSeed = uint64(9001)

	DefaultShards = 16
)

type storeOptions struct {
	seed      uint64
	shards    int
	method    idset.Method
	hasMethod bool
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

// WithSeed sets the seed of the term hash that assigns terms to shards.
func WithSeed(seed uint64) StoreOption {
	return func(opts *storeOptions) {
		opts.seed = seed
	}
}

// WithShards sets the number of independently locked shards.
func WithShards(shards int) StoreOption {
	return func(opts *storeOptions) {
		opts.shards = shards
	}
}

// WithMethod compresses every list with method instead of picking the
// smallest encoding per list.
func WithMethod(method idset.Method) StoreOption {
	return func(opts *storeOptions) {
		opts.method = method
		opts.hasMethod = true
	}
}

type shard struct {
	mu    sync.RWMutex
	terms map[string]*List
}

type sharedList struct {
	list *List
	refs int
}

// Store maps terms to posting lists over one universe of document ids.
// Terms whose lists compress to identical buffers share a single List.
// A Store is safe for concurrent use.
type Store struct {
	universe uint64
	opts     storeOptions
	shards   []*shard

	mu    sync.Mutex // guards lists
	lists map[uint64][]*sharedList
}

// NewStore creates an empty store for document ids below universe.
func NewStore(universe uint64, opts ...StoreOption) (*Store, error) {
	if err := internal.ValidateUniverse(universe); err != nil {
		return nil, err
	}
	options := storeOptions{
		seed:   DefaultSeed,
		shards: DefaultShards,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.shards <= 0 {
		return nil, internal.InvalidInputf("shards must be positive: %d", options.shards)
	}
	if options.hasMethod {
		if _, err := idset.NewCompressor(options.method); err != nil {
			return nil, err
		}
	}

	shards := make([]*shard, options.shards)
	for i := range shards {
		shards[i] = &shard{terms: make(map[string]*List)}
	}
	return &Store{
		universe: universe,
		opts:     options,
		shards:   shards,
		lists:    make(map[uint64][]*sharedList),
	}, nil
}

func (s *Store) shardFor(term string) *shard {
	h := murmur3.SeedSum64(s.opts.seed, []byte(term))
	return s.shards[h%uint64(len(s.shards))]
}

// Universe returns the universe size of every list in the store.
func (s *Store) Universe() uint64 {
	return s.universe
}

// Put compresses ids and stores them under term, replacing any previous
// list.
func (s *Store) Put(term string, ids []uint32) error {
	var (
		list *List
		err  error
	)
	if s.opts.hasMethod {
		list, err = NewList(ids, s.universe, s.opts.method)
	} else {
		list, err = NewBestList(ids, s.universe)
	}
	if err != nil {
		return err
	}
	return s.PutList(term, list)
}

// PutList stores an already compressed list under term.
func (s *Store) PutList(term string, list *List) error {
	if list.universe != s.universe {
		return internal.InvalidInputf("universe size mismatch: store has %d, list has %d", s.universe, list.universe)
	}
	shared := s.acquire(list)

	sh := s.shardFor(term)
	sh.mu.Lock()
	old := sh.terms[term]
	sh.terms[term] = shared
	sh.mu.Unlock()

	if old != nil {
		s.release(old)
	}
	return nil
}

// Get returns the list stored under term.
func (s *Store) Get(term string) (*List, bool) {
	sh := s.shardFor(term)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	list, ok := sh.terms[term]
	return list, ok
}

// Delete removes term and reports whether it was present.
func (s *Store) Delete(term string) bool {
	sh := s.shardFor(term)
	sh.mu.Lock()
	old, ok := sh.terms[term]
	delete(sh.terms, term)
	sh.mu.Unlock()

	if ok {
		s.release(old)
	}
	return ok
}

// acquire returns the shared copy of list, registering list if no
// identical buffer is stored yet.
func (s *Store) acquire(list *List) *List {
	fp := list.Fingerprint()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.lists[fp] {
		if bytes.Equal(sl.list.bytes, list.bytes) {
			sl.refs++
			return sl.list
		}
	}
	s.lists[fp] = append(s.lists[fp], &sharedList{list: list, refs: 1})
	return list
}

func (s *Store) release(list *List) {
	fp := list.Fingerprint()
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.lists[fp]
	for i, sl := range bucket {
		if sl.list != list {
			continue
		}
		sl.refs--
		if sl.refs == 0 {
			bucket = append(bucket[:i], bucket[i+1:]...)
		}
		break
	}
	if len(bucket) == 0 {
		delete(s.lists, fp)
	} else {
		s.lists[fp] = bucket
	}
}

// Len returns the number of terms.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.terms)
		sh.mu.RUnlock()
	}
	return n
}

// Terms returns every term in sorted order.
func (s *Store) Terms() []string {
	var terms []string
	for _, sh := range s.shards {
		sh.mu.RLock()
		for term := range sh.terms {
			terms = append(terms, term)
		}
		sh.mu.RUnlock()
	}
	sort.Strings(terms)
	return terms
}

// UniqueLists returns the number of distinct buffers held.
func (s *Store) UniqueLists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, bucket := range s.lists {
		n += len(bucket)
	}
	return n
}

// SizeBytes returns the total size of the distinct buffers held.
func (s *Store) SizeBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := 0
	for _, bucket := range s.lists {
		for _, sl := range bucket {
			size += sl.list.SizeBytes()
		}
	}
	return size
}

// Intersect returns the documents containing every term. A missing term
// yields an empty result.
func (s *Store) Intersect(terms ...string) ([]uint32, error) {
	if len(terms) == 0 {
		return []uint32{}, nil
	}
	lists := make([]*List, 0, len(terms))
	for _, term := range terms {
		list, ok := s.Get(term)
		if !ok {
			return []uint32{}, nil
		}
		lists = append(lists, list)
	}
	bm, err := combineBitmaps(roaring.FastAnd, lists)
	if err != nil {
		return nil, err
	}
	return bm.ToArray(), nil
}

// Union returns the documents containing any of the terms. Missing terms
// are ignored.
func (s *Store) Union(terms ...string) ([]uint32, error) {
	lists := make([]*List, 0, len(terms))
	for _, term := range terms {
		if list, ok := s.Get(term); ok {
			lists = append(lists, list)
		}
	}
	if len(lists) == 0 {
		return []uint32{}, nil
	}
	bm, err := combineBitmaps(roaring.FastOr, lists)
	if err != nil {
		return nil, err
	}
	return bm.ToArray(), nil
}
