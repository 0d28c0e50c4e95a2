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

package logical

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	assert := require.New(t)
	f, err := DecodeJSON([]byte(`{
		"and": [
			{"eq": {"name": "attr2", "value": "val56"}},
			{"bbox": {"name": "geom", "minX": -10, "minY": -10, "maxX": 10, "maxY": 10}},
			{"temporal": {"op": "during", "name": "dtg", "start": "2012-01-01T11:00:00Z", "end": "2014-01-01T12:15:00Z"}}
		]
	}`))
	assert.NoError(err)
	and, ok := f.(And)
	assert.True(ok)
	assert.Len(and.Children, 3)
	assert.Equal("attr2 = 'val56'", Render(and.Children[0]))
	assert.Equal("BBOX(geom, -10, -10, 10, 10)", Render(and.Children[1]))
	assert.Equal("dtg DURING 2012-01-01T11:00:00Z/2014-01-01T12:15:00Z", Render(and.Children[2]))
}

func TestDecodeJSONSpatialWKT(t *testing.T) {
	assert := require.New(t)
	f, err := DecodeJSON([]byte(`{"spatial": {"op": "intersects", "name": "geom",
		"wkt": "POLYGON ((45 23, 48 23, 48 27, 45 27, 45 23))"}}`))
	assert.NoError(err)
	sp, ok := f.(Spatial)
	assert.True(ok)
	assert.Equal(SpatialIntersects, sp.Op)
	b := sp.Geometry.Bounds()
	assert.Equal(45.0, b.Min(0))
	assert.Equal(27.0, b.Max(1))
}

func TestDecodeJSONIdSet(t *testing.T) {
	assert := require.New(t)
	f, err := DecodeJSON([]byte(`{"in": ["val56"]}`))
	assert.NoError(err)
	assert.Equal(IdIn{IDs: []string{"val56"}}, f)
}

func TestDecodeJSONRejectsEmpty(t *testing.T) {
	assert := require.New(t)
	_, err := DecodeJSON([]byte(`{}`))
	assert.Error(err)
	_, err = DecodeJSON([]byte(`{"compare": {"name": "a", "op": "!=", "value": 1}}`))
	assert.Error(err)
}
