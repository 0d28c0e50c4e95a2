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

// Package geo models the spatial side of predicates: polygonal bounds,
// the representable domain of the index, and the geohash cells that
// tile it.
package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// Everywhere is the representable spatial domain of the index: the
// whole WGS84 rectangle. Polygons are clamped to it before key
// planning.
var Everywhere = FromBounds(-180, -90, 180, 90)

// FromBounds builds a closed rectangular polygon from the given corners.
func FromBounds(minX, minY, maxX, maxY float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
		{minX, minY},
	}})
}

// BoundsPolygon returns the rectangular hull of any geometry.
func BoundsPolygon(g geom.T) *geom.Polygon {
	b := g.Bounds()
	return FromBounds(b.Min(0), b.Min(1), b.Max(0), b.Max(1))
}

// Covers reports whether the bounds of a contain the bounds of b.
func Covers(a, b geom.T) bool {
	ab, bb := a.Bounds(), b.Bounds()
	return ab.Min(0) <= bb.Min(0) && ab.Min(1) <= bb.Min(1) &&
		ab.Max(0) >= bb.Max(0) && ab.Max(1) >= bb.Max(1)
}

// Intersect returns the rectangular intersection of the bounds of a and
// b, or nil when they are disjoint.
func Intersect(a, b geom.T) *geom.Polygon {
	ab, bb := a.Bounds(), b.Bounds()
	minX := maxf(ab.Min(0), bb.Min(0))
	minY := maxf(ab.Min(1), bb.Min(1))
	maxX := minf(ab.Max(0), bb.Max(0))
	maxY := minf(ab.Max(1), bb.Max(1))
	if minX > maxX || minY > maxY {
		return nil
	}
	return FromBounds(minX, minY, maxX, maxY)
}

// IsRectangle reports whether p is a single closed ring equal to its
// own bounds.
func IsRectangle(p *geom.Polygon) bool {
	if p == nil || p.NumLinearRings() != 1 {
		return false
	}
	ring := p.LinearRing(0)
	coords := ring.Coords()
	if len(coords) != 5 {
		return false
	}
	b := p.Bounds()
	for _, c := range coords {
		onX := c[0] == b.Min(0) || c[0] == b.Max(0)
		onY := c[1] == b.Min(1) || c[1] == b.Max(1)
		if !onX || !onY {
			return false
		}
	}
	return true
}

// MarshalWKT renders g as well-known text.
func MarshalWKT(g geom.T) (string, error) {
	return wkt.Marshal(g)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
