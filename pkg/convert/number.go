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

// Package convert implements byte-level codecs shared by the key planners.
// All multi-byte encodings are big-endian so that encoded values sort the
// same way the decoded values do.
package convert

import (
	"encoding/binary"
	"math"
)

// Uint64ToBytes encodes u as 8 big-endian bytes.
func Uint64ToBytes(u uint64) []byte {
	bs := make([]byte, 8)
	binary.BigEndian.PutUint64(bs, u)
	return bs
}

// Uint32ToBytes encodes u as 4 big-endian bytes.
func Uint32ToBytes(u uint32) []byte {
	bs := make([]byte, 4)
	binary.BigEndian.PutUint32(bs, u)
	return bs
}

// Uint16ToBytes encodes u as 2 big-endian bytes.
func Uint16ToBytes(u uint16) []byte {
	bs := make([]byte, 2)
	binary.BigEndian.PutUint16(bs, u)
	return bs
}

// BytesToUint64 decodes 8 big-endian bytes.
func BytesToUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// BytesToUint32 decodes 4 big-endian bytes.
func BytesToUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// BytesToUint16 decodes 2 big-endian bytes.
func BytesToUint16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// Int64ToOrderedBytes encodes i so that the unsigned byte order of the
// encodings matches the signed order of the values. The sign bit is
// flipped before the big-endian write.
func Int64ToOrderedBytes(i int64) []byte {
	return Uint64ToBytes(uint64(i) ^ (1 << 63))
}

// OrderedBytesToInt64 reverses Int64ToOrderedBytes.
func OrderedBytesToInt64(b []byte) int64 {
	return int64(BytesToUint64(b) ^ (1 << 63))
}

// Int32ToOrderedBytes is the 4-byte variant of Int64ToOrderedBytes.
func Int32ToOrderedBytes(i int32) []byte {
	return Uint32ToBytes(uint32(i) ^ (1 << 31))
}

// OrderedBytesToInt32 reverses Int32ToOrderedBytes.
func OrderedBytesToInt32(b []byte) int32 {
	return int32(BytesToUint32(b) ^ (1 << 31))
}

// Float64ToOrderedBytes encodes f preserving IEEE-754 total order:
// positive values get the sign bit set, negative values are bitwise
// inverted.
func Float64ToOrderedBytes(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) == 0 {
		bits ^= 1 << 63
	} else {
		bits = ^bits
	}
	return Uint64ToBytes(bits)
}

// OrderedBytesToFloat64 reverses Float64ToOrderedBytes.
func OrderedBytesToFloat64(b []byte) float64 {
	bits := BytesToUint64(b)
	if bits&(1<<63) != 0 {
		bits ^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits)
}

// Float32ToOrderedBytes is the 4-byte variant of Float64ToOrderedBytes.
func Float32ToOrderedBytes(f float32) []byte {
	bits := math.Float32bits(f)
	if bits&(1<<31) == 0 {
		bits ^= 1 << 31
	} else {
		bits = ^bits
	}
	return Uint32ToBytes(bits)
}

// OrderedBytesToFloat32 reverses Float32ToOrderedBytes.
func OrderedBytesToFloat32(b []byte) float32 {
	bits := BytesToUint32(b)
	if bits&(1<<31) != 0 {
		bits ^= 1 << 31
	} else {
		bits = ^bits
	}
	return math.Float32frombits(bits)
}
