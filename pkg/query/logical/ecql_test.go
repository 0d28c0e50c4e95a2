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

	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/timestamp"
)

func TestRender(t *testing.T) {
	assert := require.New(t)
	during := timestamp.NewInclusiveTimeRange(
		ts(t, "2012-01-01T11:00:00Z"), ts(t, "2014-01-01T12:15:00Z"))

	for _, tc := range []struct {
		filter Filter
		want   string
	}{
		{PropertyEq{Name: "attr2", Literal: "val56"}, "attr2 = 'val56'"},
		{PropertyEq{Name: "attr2", Literal: "it's"}, "attr2 = 'it''s'"},
		{PropertyCompare{Name: "attr2", Op: OpGe, Literal: 11}, "attr2 >= 11"},
		{PropertyBetween{Name: "attr2", Lo: 10, Hi: 20}, "attr2 BETWEEN 10 AND 20"},
		{PropertyLike{Name: "attr2", Pattern: "2nd1%", CaseInsensitive: true}, "attr2 ILIKE '2nd1%'"},
		{PropertyLike{Name: "attr2", Pattern: "2nd1%"}, "attr2 LIKE '2nd1%'"},
		{IdIn{IDs: []string{"b", "a"}}, "IN ('a', 'b')"},
		{Temporal{Name: "dtg", Op: TemporalDuring, Range: during},
			"dtg DURING 2012-01-01T11:00:00Z/2014-01-01T12:15:00Z"},
		{Spatial{Name: "geom", Op: SpatialBBox, Geometry: geo.FromBounds(-10, -10, 10, 10)},
			"BBOX(geom, -10, -10, 10, 10)"},
		{And{Children: []Filter{
			PropertyEq{Name: "a", Literal: "1"},
			Or{Children: []Filter{PropertyEq{Name: "b", Literal: "2"}, PropertyEq{Name: "c", Literal: "3"}}},
		}}, "a = '1' AND (b = '2' OR c = '3')"},
		{Not{Child: PropertyEq{Name: "a", Literal: "1"}}, "NOT (a = '1')"},
		{IncludeAll{}, "INCLUDE"},
		{ExcludeAll{}, "EXCLUDE"},
	} {
		assert.Equal(tc.want, Render(tc.filter))
	}
}

func TestRenderIntersects(t *testing.T) {
	assert := require.New(t)
	out := Render(Spatial{Name: "geom", Op: SpatialIntersects, Geometry: geo.FromBounds(45, 23, 48, 27)})
	assert.Contains(out, "INTERSECTS(geom, POLYGON")
	assert.Contains(out, "45 23")
}
