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

// Encoder writes compressed id sets to a writer.
type Encoder struct {
	w          io.Writer
	compressor *Compressor
}

// NewEncoder creates an encoder. A nil compressor uses the default
// precision.
func NewEncoder(w io.Writer, compressor *Compressor) Encoder {
	if compressor == nil {
		compressor = defaultCompressor
	}
	return Encoder{w: w, compressor: compressor}
}

// Encode compresses ids and writes the buffer.
func (enc Encoder) Encode(ids []uint32, universe uint64) error {
	bytes, err := enc.compressor.CompressSet(ids, universe)
	if err != nil {
		return err
	}

	n, err := enc.w.Write(bytes)
	if err != nil {
		return err
	}
	if n != len(bytes) {
		return io.ErrShortWrite
	}
	return nil
}
