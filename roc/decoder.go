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
	"io"
)

// Decoder reads a compressed id set from a reader.
type Decoder struct {
	universe uint64
}

// NewDecoder creates a decoder for sets drawn from universe.
func NewDecoder(universe uint64) Decoder {
	return Decoder{universe: universe}
}

// Decode reads r to the end and decodes its contents as one set.
func (dec Decoder) Decode(r io.Reader) ([]uint32, error) {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecompressSet(bytes, dec.universe)
}
