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

package sft

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openspatial/geotable/pkg/convert"
)

var errUnencodableValue = errors.New("value cannot be encoded for this attribute kind")

// EncodeValue encodes a literal as index bytes whose unsigned order
// matches the value order of the attribute kind. Strings pass through
// verbatim; numbers, dates and booleans use order-preserving codecs.
func EncodeValue(kind Kind, literal interface{}) ([]byte, error) {
	switch kind {
	case KindString:
		s, ok := literal.(string)
		if !ok {
			return nil, errors.WithMessagef(errUnencodableValue, "%T as String", literal)
		}
		return []byte(s), nil
	case KindInt:
		i, err := toInt64(literal)
		if err != nil {
			return nil, err
		}
		return convert.Int32ToOrderedBytes(int32(i)), nil
	case KindLong:
		i, err := toInt64(literal)
		if err != nil {
			return nil, err
		}
		return convert.Int64ToOrderedBytes(i), nil
	case KindFloat:
		f, err := toFloat64(literal)
		if err != nil {
			return nil, err
		}
		return convert.Float32ToOrderedBytes(float32(f)), nil
	case KindDouble:
		f, err := toFloat64(literal)
		if err != nil {
			return nil, err
		}
		return convert.Float64ToOrderedBytes(f), nil
	case KindBool:
		b, ok := literal.(bool)
		if !ok {
			return nil, errors.WithMessagef(errUnencodableValue, "%T as Bool", literal)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindUUID:
		switch v := literal.(type) {
		case uuid.UUID:
			return v[:], nil
		case string:
			id, err := uuid.Parse(v)
			if err != nil {
				return nil, errors.Wrap(err, "parse uuid literal")
			}
			return id[:], nil
		}
		return nil, errors.WithMessagef(errUnencodableValue, "%T as Uuid", literal)
	case KindDate:
		t, ok := literal.(time.Time)
		if !ok {
			return nil, errors.WithMessagef(errUnencodableValue, "%T as Date", literal)
		}
		return convert.Int64ToOrderedBytes(t.UnixMilli()), nil
	}
	return nil, errors.WithMessagef(errUnencodableValue, "kind %s", kind)
}

// MinValue returns the smallest encodable value of the kind, used as
// the closed end of half-open ranges.
func MinValue(kind Kind) []byte {
	switch kind {
	case KindInt:
		return convert.Int32ToOrderedBytes(math.MinInt32)
	case KindLong, KindDate:
		return convert.Int64ToOrderedBytes(math.MinInt64)
	case KindFloat:
		return convert.Float32ToOrderedBytes(float32(math.Inf(-1)))
	case KindDouble:
		return convert.Float64ToOrderedBytes(math.Inf(-1))
	case KindBool:
		return []byte{0}
	default:
		return []byte{}
	}
}

// MaxValue returns the largest encodable value of the kind, or nil when
// the kind has no finite upper encoding (strings).
func MaxValue(kind Kind) []byte {
	switch kind {
	case KindInt:
		return convert.Int32ToOrderedBytes(math.MaxInt32)
	case KindLong, KindDate:
		return convert.Int64ToOrderedBytes(math.MaxInt64)
	case KindFloat:
		return convert.Float32ToOrderedBytes(float32(math.Inf(1)))
	case KindDouble:
		return convert.Float64ToOrderedBytes(math.Inf(1))
	case KindBool:
		return []byte{1}
	default:
		return nil
	}
}

func toInt64(literal interface{}) (int64, error) {
	switch v := literal.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, errors.WithMessagef(errUnencodableValue, "%T as integer", literal)
}

func toFloat64(literal interface{}) (float64, error) {
	switch v := literal.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	}
	return 0, errors.WithMessagef(errUnencodableValue, "%T as float", literal)
}
