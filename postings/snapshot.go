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
	"encoding/binary"
	"io"
	"runtime"

	"github.com/klauspost/compress/zstd"

	"github.com/cnkcodec/cnk-go/internal"
)

// Snapshot layout, zstd compressed as a single frame:
//
//	[ magic    : 4 bytes "CNKP" ]
//	[ version  : 1 byte  ]
//	[ universe : uvarint ]
//	[ terms    : uvarint ]
//	per term, in sorted order:
//	[ len(term) : uvarint ][ term ][ len(list) : uvarint ][ list buffer ]
const (
	snapshotMagic   = "CNKP"
	snapshotVersion = 1
)

var (
	snapshotEncoder *zstd.Encoder
	snapshotDecoder *zstd.Decoder
)

func init() {
	var err error
	snapshotEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	snapshotDecoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
}

// WriteTo writes a compressed snapshot of every term and list in s.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	raw := make([]byte, 0, 64+s.SizeBytes())
	raw = append(raw, snapshotMagic...)
	raw = append(raw, snapshotVersion)
	raw = binary.AppendUvarint(raw, s.universe)

	type entry struct {
		term string
		list *List
	}
	terms := s.Terms()
	entries := make([]entry, 0, len(terms))
	for _, term := range terms {
		if list, ok := s.Get(term); ok {
			entries = append(entries, entry{term: term, list: list})
		}
	}

	raw = binary.AppendUvarint(raw, uint64(len(entries)))
	for _, e := range entries {
		raw = binary.AppendUvarint(raw, uint64(len(e.term)))
		raw = append(raw, e.term...)
		raw = binary.AppendUvarint(raw, uint64(len(e.list.bytes)))
		raw = append(raw, e.list.bytes...)
	}

	compressed := snapshotEncoder.EncodeAll(raw, nil)
	n, err := w.Write(compressed)
	if err != nil {
		return int64(n), err
	}
	if n != len(compressed) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// ReadStore reads a snapshot written by WriteTo. opts configure the new
// store; lists keep the encoding they were written with.
func ReadStore(r io.Reader, opts ...StoreOption) (*Store, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err := snapshotDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, internal.CorruptStreamf("snapshot frame: %v", err)
	}

	if len(raw) < len(snapshotMagic)+1 || string(raw[:len(snapshotMagic)]) != snapshotMagic {
		return nil, internal.CorruptStreamf("not a posting store snapshot")
	}
	offset := len(snapshotMagic)
	if version := raw[offset]; version != snapshotVersion {
		return nil, internal.CorruptStreamf("unsupported snapshot version %d", version)
	}
	offset++

	universe, offset, err := internal.ReadUvarint(raw, offset)
	if err != nil {
		return nil, err
	}
	if universe == 0 || universe > internal.MaxUniverse {
		return nil, internal.CorruptStreamf("universe size %d out of range", universe)
	}
	s, err := NewStore(universe, opts...)
	if err != nil {
		return nil, err
	}

	numTerms, offset, err := internal.ReadUvarint(raw, offset)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < numTerms; i++ {
		var term, buf []byte
		if term, offset, err = readChunk(raw, offset); err != nil {
			return nil, err
		}
		if buf, offset, err = readChunk(raw, offset); err != nil {
			return nil, err
		}
		list, err := FromBytes(buf, universe)
		if err != nil {
			return nil, err
		}
		if err := s.PutList(string(term), list); err != nil {
			return nil, err
		}
	}
	if offset != len(raw) {
		return nil, internal.CorruptStreamf("%d trailing bytes in snapshot", len(raw)-offset)
	}
	return s, nil
}

func readChunk(raw []byte, offset int) ([]byte, int, error) {
	size, offset, err := internal.ReadUvarint(raw, offset)
	if err != nil {
		return nil, offset, err
	}
	if size > uint64(len(raw)-offset) {
		return nil, offset, internal.CorruptStreamf("chunk of %d bytes, %d left", size, len(raw)-offset)
	}
	end := offset + int(size)
	return raw[offset:end], end, nil
}
