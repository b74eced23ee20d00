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

package internal

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports a violated caller precondition: unsorted or
	// duplicate ids, an id outside the universe, an empty universe, or a
	// universe that does not match the one a buffer was written with.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptStream reports a buffer that cannot be decoded: truncated,
	// trailing bytes, a coder state outside its interval or counts that do
	// not reach zero together.
	ErrCorruptStream = errors.New("corrupt stream")
)

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

// CorruptStreamf wraps ErrCorruptStream with a formatted message.
func CorruptStreamf(format string, args ...any) error {
	return errors.Wrapf(ErrCorruptStream, format, args...)
}
