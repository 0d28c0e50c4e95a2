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
	"github.com/twpayne/go-geom"

	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/sft"
	"github.com/openspatial/geotable/pkg/timestamp"
)

// SpaceTimeQuery is the space-time predicate extracted from a
// conjunction, plus the residual conjuncts that were not fully
// absorbed. Empty marks a provably empty intersection: the whole query
// short-circuits to zero results.
type SpaceTimeQuery struct {
	Polygon  *geom.Polygon
	Interval *timestamp.TimeRange
	Residual Filter
	Empty    bool
}

// Extract partitions conjuncts into spatial, temporal and other
// predicates, intersects the spatial bounds and the temporal intervals,
// nets the results to the index domain, and carries everything not
// fully absorbed as residual.
func Extract(conjuncts []Filter, schema *sft.Schema) SpaceTimeQuery {
	var (
		spatial  []Spatial
		residual []Filter
		interval *timestamp.TimeRange
	)
	for _, c := range conjuncts {
		switch Classify(c, schema) {
		case ClassSpatial:
			spatial = append(spatial, c.(Spatial))
		case ClassTemporal:
			r := temporalRange(c.(Temporal))
			if interval == nil {
				interval = &r
				continue
			}
			overlap, ok := interval.Overlap(r)
			if !ok {
				return excludeAllQuery()
			}
			interval = &overlap
		default:
			residual = append(residual, c)
		}
	}

	polygon, spatialResidual, empty := intersectSpatial(spatial)
	if empty {
		return excludeAllQuery()
	}
	residual = append(spatialResidual, residual...)

	polygon = NetPolygon(polygon)
	netted, ok := NetInterval(interval)
	if !ok {
		return excludeAllQuery()
	}
	interval = netted

	return SpaceTimeQuery{
		Polygon:  polygon,
		Interval: interval,
		Residual: foldResidual(residual),
	}
}

// intersectSpatial folds spatial conjuncts into one polygon. A conjunct
// whose predicate is unbounded (the feature must contain the query
// geometry) defeats bounding entirely: the polygon is dropped and every
// spatial conjunct rides along as residual. A bounded conjunct is
// consumed exactly only when its geometry is its own rectangle hull;
// otherwise its bounds tighten the polygon and the conjunct stays
// residual for the fine filter.
func intersectSpatial(spatial []Spatial) (*geom.Polygon, []Filter, bool) {
	for _, s := range spatial {
		if s.Op == SpatialContains {
			residual := make([]Filter, 0, len(spatial))
			for _, r := range spatial {
				residual = append(residual, r)
			}
			return nil, residual, false
		}
	}
	var (
		polygon  *geom.Polygon
		residual []Filter
	)
	for _, s := range spatial {
		bounds := geo.BoundsPolygon(s.Geometry)
		if polygon == nil {
			polygon = bounds
		} else {
			polygon = geo.Intersect(polygon, bounds)
			if polygon == nil {
				return nil, nil, true
			}
		}
		exact := false
		if p, ok := s.Geometry.(*geom.Polygon); ok {
			exact = geo.IsRectangle(p)
		}
		if !exact {
			residual = append(residual, s)
		}
	}
	return polygon, residual, false
}

func temporalRange(t Temporal) timestamp.TimeRange {
	switch t.Op {
	case TemporalBefore:
		return timestamp.NewTimeRange(timestamp.Everywhen.Start, t.Range.Start, true, false)
	case TemporalAfter:
		return timestamp.NewTimeRange(t.Range.End, timestamp.Everywhen.End, false, true)
	case TemporalEquals:
		return timestamp.NewInclusiveTimeRange(t.Range.Start, t.Range.Start)
	default:
		return t.Range
	}
}

// NetPolygon clamps a polygon to the representable spatial domain.
func NetPolygon(p *geom.Polygon) *geom.Polygon {
	switch {
	case p == nil:
		return nil
	case geo.Covers(p, geo.Everywhere):
		return geo.Everywhere
	case geo.Covers(geo.Everywhere, p):
		return p
	default:
		return geo.Intersect(p, geo.Everywhere)
	}
}

// NetInterval clamps an interval to the representable temporal domain.
// The second result is false when the interval misses the domain
// entirely; a nil interval nets to nil.
func NetInterval(i *timestamp.TimeRange) (*timestamp.TimeRange, bool) {
	if i == nil {
		return nil, true
	}
	out, ok := timestamp.Everywhen.Overlap(*i)
	if !ok {
		return nil, false
	}
	return &out, true
}

func foldResidual(residual []Filter) Filter {
	switch len(residual) {
	case 0:
		return IncludeAll{}
	case 1:
		return residual[0]
	default:
		return And{Children: residual}
	}
}

func excludeAllQuery() SpaceTimeQuery {
	return SpaceTimeQuery{Residual: ExcludeAll{}, Empty: true}
}
