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

// Package roc compresses sorted sets of integer ids with random order
// coding: the set is coded as its occupancy bits under the probability that
// a uniformly random n-subset of [0, N) has each slot occupied, so a set of
// n ids from a universe of N costs close to log2 C(N, n) bits rather than
// n*log2(N).
package roc

import (
	"math"

	"github.com/cnkcodec/cnk-go/ans"
	"github.com/cnkcodec/cnk-go/internal"
	"github.com/cnkcodec/cnk-go/internal/combinatorics"
	"github.com/cnkcodec/cnk-go/rank"
)

var (
	ErrInvalidInput  = internal.ErrInvalidInput
	ErrCorruptStream = internal.ErrCorruptStream
)

type options struct {
	precisionBits uint
}

// Option configures a Compressor.
type Option func(*options)

// WithPrecisionBits sets the number of bits probabilities are quantized to.
// Buffers record the precision they were written with, so compressors with
// different precisions read each other's output.
func WithPrecisionBits(bits uint) Option {
	return func(opts *options) {
		opts.precisionBits = bits
	}
}

// Compressor encodes and decodes id sets. It holds no mutable state and is
// safe for concurrent use.
type Compressor struct {
	cfg ans.Config
}

var defaultCompressor = &Compressor{cfg: ans.DefaultConfig()}

// NewCompressor creates a compressor. It returns ErrInvalidInput when the
// precision is outside [ans.MinPrecisionBits, ans.MaxPrecisionBits].
func NewCompressor(opts ...Option) (*Compressor, error) {
	o := &options{
		precisionBits: ans.DefaultPrecisionBits,
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := ans.NewConfig(o.precisionBits)
	if err != nil {
		return nil, err
	}
	return &Compressor{cfg: cfg}, nil
}

// PrecisionBits returns the probability precision used when compressing.
func (c *Compressor) PrecisionBits() uint {
	return c.cfg.PrecisionBits()
}

// Method returns the method tag written at the start of every buffer.
func (c *Compressor) Method() internal.Method {
	return internal.MethodEnum.Roc
}

// CompressSet encodes ids, which must be strictly increasing and below
// universe.
func (c *Compressor) CompressSet(ids []uint32, universe uint64) ([]byte, error) {
	if err := internal.ValidateIDs(ids, universe); err != nil {
		return nil, err
	}

	enc, err := ans.NewEncoder(c.cfg)
	if err != nil {
		return nil, err
	}
	if err := rank.NewModel(c.cfg).Encode(enc, ids, universe); err != nil {
		return nil, err
	}

	p := preamble{
		numIDs:        uint64(len(ids)),
		universe:      universe,
		precisionBits: c.cfg.PrecisionBits(),
	}
	bytes := make([]byte, 0, preambleSize(p.numIDs, p.universe)+enc.FlushedSize())
	bytes = appendPreamble(bytes, p)
	return enc.AppendFlushed(bytes), nil
}

// DecompressSet decodes a buffer produced by CompressSet. universe must match
// the universe the buffer was written with.
func (c *Compressor) DecompressSet(bytes []byte, universe uint64) ([]uint32, error) {
	return decompress(bytes, universe)
}

func decompress(bytes []byte, universe uint64) ([]uint32, error) {
	if err := internal.ValidateUniverse(universe); err != nil {
		return nil, err
	}
	p, offset, err := extractPreamble(bytes)
	if err != nil {
		return nil, err
	}
	if err := internal.CheckUniverse(p.universe, universe); err != nil {
		return nil, err
	}

	cfg, err := ans.NewConfig(p.precisionBits)
	if err != nil {
		return nil, internal.CorruptStreamf("precision %d bits out of range", p.precisionBits)
	}
	dec, err := ans.NewDecoder(cfg, bytes[offset:])
	if err != nil {
		return nil, err
	}
	ids, err := rank.NewModel(cfg).Decode(dec, p.numIDs, p.universe)
	if err != nil {
		return nil, err
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return ids, nil
}

// EstimateSize returns the approximate size in bytes of a compressed set of
// n ids from universe. The payload is within a few bytes of
// ceil(log2 C(universe, n) / 8).
func (c *Compressor) EstimateSize(n int, universe uint64) int {
	if n < 0 || universe == 0 || uint64(n) > universe {
		return 0
	}
	info := combinatorics.InformationBits(universe, uint64(n))
	words := 0
	if info > ans.WordBits {
		words = int((info - ans.WordBits + ans.WordBits - 1) / ans.WordBits)
	}
	return preambleSize(uint64(n), universe) + ans.StateBytes + words*ans.WordBytes
}

// BitsPerID returns EstimateSize in bits divided by n.
func (c *Compressor) BitsPerID(n int, universe uint64) float64 {
	if n <= 0 {
		return 0
	}
	size := c.EstimateSize(n, universe)
	if size == 0 {
		return math.NaN()
	}
	return float64(size*8) / float64(n)
}

// CompressSet encodes ids with the default precision.
func CompressSet(ids []uint32, universe uint64) ([]byte, error) {
	return defaultCompressor.CompressSet(ids, universe)
}

// DecompressSet decodes a buffer produced by any Compressor.
func DecompressSet(bytes []byte, universe uint64) ([]uint32, error) {
	return decompress(bytes, universe)
}
