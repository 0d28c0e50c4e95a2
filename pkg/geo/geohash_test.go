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

package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeohashEncodeKnownCells(t *testing.T) {
	assert := require.New(t)
	// Reference values from the public geohash tables.
	assert.Equal("u4pruydqqvj", GeohashEncode(10.40744, 57.64911, 11))
	assert.Equal("ezs42", GeohashEncode(-5.6, 42.6, 5))
	assert.Equal("s", GeohashEncode(1, 1, 1))
}

func TestGeohashBoundsRoundTrip(t *testing.T) {
	assert := require.New(t)
	for _, hash := range []string{"s", "ezs42", "u4pru"} {
		b := GeohashBounds(hash).Bounds()
		lon := (b.Min(0) + b.Max(0)) / 2
		lat := (b.Min(1) + b.Max(1)) / 2
		assert.Equal(hash, GeohashEncode(lon, lat, len(hash)))
	}
}

func TestGeohashCoverContainsQueryArea(t *testing.T) {
	assert := require.New(t)
	area := FromBounds(45, 23, 48, 27)
	cells := GeohashCover(area, 2)
	assert.NotEmpty(cells)
	for _, c := range cells {
		assert.NotNil(Intersect(GeohashBounds(c), area), "cell %s does not touch the area", c)
	}
	// Every corner of the area must land inside some cell.
	for _, corner := range [][2]float64{{45, 23}, {48, 23}, {48, 27}, {45, 27}} {
		hash := GeohashEncode(corner[0], corner[1], 2)
		assert.Contains(cells, hash)
	}
}

func TestGeohashCoverWithinCapsCells(t *testing.T) {
	assert := require.New(t)
	cells, p := GeohashCoverWithin(FromBounds(-10, -10, 10, 10), 3, 16)
	assert.LessOrEqual(len(cells), 16)
	assert.GreaterOrEqual(p, 1)
	assert.LessOrEqual(p, 3)
}

func TestNetHelpers(t *testing.T) {
	assert := require.New(t)
	world := FromBounds(-200, -95, 200, 95)
	assert.True(Covers(world, Everywhere))
	assert.False(Covers(Everywhere, world))

	clipped := Intersect(world, Everywhere)
	assert.NotNil(clipped)
	assert.True(Covers(Everywhere, clipped))
	assert.True(Covers(clipped, Everywhere))

	assert.Nil(Intersect(FromBounds(0, 0, 1, 1), FromBounds(2, 2, 3, 3)))
	assert.True(IsRectangle(Everywhere))
}
