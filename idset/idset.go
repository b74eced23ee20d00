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

// Package idset is the common surface over the id set codecs. Every
// compressed buffer starts with a method tag byte, so Decompress needs
// nothing but the buffer and the universe size.
package idset

import (
	"github.com/cnkcodec/cnk-go/delta"
	"github.com/cnkcodec/cnk-go/eliasfano"
	"github.com/cnkcodec/cnk-go/internal"
	"github.com/cnkcodec/cnk-go/roc"
)

var (
	ErrInvalidInput  = internal.ErrInvalidInput
	ErrCorruptStream = internal.ErrCorruptStream
)

// Method identifies an encoding.
type Method = internal.Method

var (
	MethodNone      = internal.MethodEnum.None
	MethodDelta     = internal.MethodEnum.Delta
	MethodRoc       = internal.MethodEnum.Roc
	MethodEliasFano = internal.MethodEnum.EliasFano
)

// Methods returns every supported method in tag order.
func Methods() []Method {
	return []Method{MethodNone, MethodDelta, MethodRoc, MethodEliasFano}
}

// ParseMethod returns the method with the given name.
func ParseMethod(name string) (Method, error) {
	for _, m := range Methods() {
		if m.Name == name {
			return m, nil
		}
	}
	return Method{}, internal.InvalidInputf("unknown method %q", name)
}

// Compressor encodes and decodes sorted sets of unique ids drawn from
// [0, universe).
type Compressor interface {
	// Method returns the tag this compressor writes.
	Method() Method
	// CompressSet encodes ids, which must be strictly increasing and below
	// universe.
	CompressSet(ids []uint32, universe uint64) ([]byte, error)
	// DecompressSet decodes a buffer written by CompressSet for the same
	// universe.
	DecompressSet(bytes []byte, universe uint64) ([]uint32, error)
	// EstimateSize returns the approximate size in bytes of n ids.
	EstimateSize(n int, universe uint64) int
	// BitsPerID returns EstimateSize in bits per id.
	BitsPerID(n int, universe uint64) float64
}

var (
	_ Compressor = (*rawCompressor)(nil)
	_ Compressor = (*delta.Compressor)(nil)
	_ Compressor = (*roc.Compressor)(nil)
	_ Compressor = (*eliasfano.Compressor)(nil)
)

// NewCompressor returns the compressor for method. Roc compressors use the
// default precision; construct one with roc.NewCompressor for others.
func NewCompressor(method Method) (Compressor, error) {
	switch method {
	case MethodNone:
		return &rawCompressor{}, nil
	case MethodDelta:
		return delta.NewCompressor(), nil
	case MethodRoc:
		return roc.NewCompressor()
	case MethodEliasFano:
		return eliasfano.NewCompressor(), nil
	default:
		return nil, internal.InvalidInputf("unknown method %v", method)
	}
}

// Compress encodes ids with method.
func Compress(method Method, ids []uint32, universe uint64) ([]byte, error) {
	c, err := NewCompressor(method)
	if err != nil {
		return nil, err
	}
	return c.CompressSet(ids, universe)
}

// Decompress decodes a buffer written by any method.
func Decompress(bytes []byte, universe uint64) ([]uint32, error) {
	method, err := MethodOf(bytes)
	if err != nil {
		return nil, err
	}
	c, err := NewCompressor(method)
	if err != nil {
		return nil, err
	}
	return c.DecompressSet(bytes, universe)
}

// MethodOf returns the method a buffer was written with.
func MethodOf(bytes []byte) (Method, error) {
	if len(bytes) == 0 {
		return Method{}, internal.CorruptStreamf("empty buffer")
	}
	m, ok := internal.MethodByID(bytes[0])
	if !ok {
		return Method{}, internal.CorruptStreamf("unknown method tag %d", bytes[0])
	}
	return m, nil
}

// Best compresses ids with every method and returns the smallest buffer.
// Ties go to the method listed first in Methods.
func Best(ids []uint32, universe uint64) ([]byte, Method, error) {
	var (
		best   []byte
		method Method
	)
	for _, m := range Methods() {
		bytes, err := Compress(m, ids, universe)
		if err != nil {
			return nil, Method{}, err
		}
		if best == nil || len(bytes) < len(best) {
			best, method = bytes, m
		}
	}
	return best, method, nil
}
