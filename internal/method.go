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

// Method identifies an id set encoding. Id is the tag byte written at
// offset zero of every compressed buffer.
type Method struct {
	Id   uint8
	Name string
}

type methods struct {
	None      Method
	Delta     Method
	Roc       Method
	EliasFano Method
}

var MethodEnum = &methods{
	None: Method{
		Id:   0,
		Name: "none",
	},
	Delta: Method{
		Id:   1,
		Name: "delta",
	},
	Roc: Method{
		Id:   2,
		Name: "roc",
	},
	EliasFano: Method{
		Id:   3,
		Name: "elias-fano",
	},
}

// MethodByID returns the method registered under the given tag.
func MethodByID(id uint8) (Method, bool) {
	for _, m := range []Method{MethodEnum.None, MethodEnum.Delta, MethodEnum.Roc, MethodEnum.EliasFano} {
		if m.Id == id {
			return m, true
		}
	}
	return Method{}, false
}

func (m Method) String() string {
	return m.Name
}
