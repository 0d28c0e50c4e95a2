// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package convert

// Successor returns the immediate successor of b in unsigned byte order,
// i.e. the smallest key strictly greater than b. It appends a zero byte,
// which never reallocates the semantics of b.
func Successor(b []byte) []byte {
	s := make([]byte, len(b)+1)
	copy(s, b)
	return s
}

// PrefixUpperBound returns the smallest key greater than every key that
// has b as a prefix. The second result is false when no such bound
// exists, which happens when every byte of b is 0xFF.
func PrefixUpperBound(b []byte) ([]byte, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			up := make([]byte, i+1)
			copy(up, b[:i+1])
			up[i]++
			return up, true
		}
	}
	return nil, false
}

// Concat joins byte slices into a fresh buffer.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
