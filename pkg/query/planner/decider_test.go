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

package planner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/query/logical"
	"github.com/openspatial/geotable/pkg/query/planner"
	"github.com/openspatial/geotable/pkg/sft"
	"github.com/openspatial/geotable/pkg/timestamp"
)

const testSpec = "attr1:String,attr2:String:index=true,count:Long:index=true," +
	"high:String:index=true:cardinality=high,low:String:index=true:cardinality=low," +
	"updated:Date:index=true,dtg:Date:index=true:default=true,geom:Point:srid=4326:default=true"

func testContext(t *testing.T) planner.Context {
	schema, err := sft.Parse("test", testSpec)
	require.NoError(t, err)
	return planner.Context{
		Schema: schema,
		Tables: planner.TableConfig{
			AttributeIndex: "test_attr_idx",
			Record:         "test_records",
			SpatioTemporal: "test_st_idx",
		},
		Version: 1,
	}
}

func ts(t *testing.T, s string) time.Time {
	tp, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tp
}

func bboxGeom() logical.Filter {
	return logical.Spatial{Op: logical.SpatialBBox, Name: "geom", Geometry: geo.FromBounds(-10, -10, 10, 10)}
}

func decide(t *testing.T, ctx planner.Context, f logical.Filter) planner.StrategyTag {
	d, err := planner.Decide(ctx, f)
	require.NoError(t, err)
	return d.Strategy
}

func TestDecideScenarios(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	during := timestamp.NewInclusiveTimeRange(
		ts(t, "2012-01-01T11:00:00Z"), ts(t, "2014-01-01T12:15:00Z"))

	for _, tc := range []struct {
		name   string
		filter logical.Filter
		want   planner.StrategyTag
	}{
		{"indexed equality", logical.PropertyEq{Name: "attr2", Literal: "val56"}, planner.StrategyAttrEq},
		{"unindexed equality", logical.PropertyEq{Name: "attr1", Literal: "val56"}, planner.StrategyStIdx},
		{"indexed prefix pattern", logical.PropertyLike{Name: "attr2", Pattern: "2nd1%", CaseInsensitive: true}, planner.StrategyAttrLike},
		{"unindexed prefix pattern", logical.PropertyLike{Name: "attr1", Pattern: "2nd1%", CaseInsensitive: true}, planner.StrategyStIdx},
		{"between", logical.PropertyBetween{Name: "attr2", Lo: "10", Hi: "20"}, planner.StrategyAttrRange},
		{"closed-open range pair", logical.And{Children: []logical.Filter{
			logical.PropertyCompare{Name: "count", Op: logical.OpGe, Literal: int64(11)},
			logical.PropertyCompare{Name: "count", Op: logical.OpLt, Literal: int64(20)},
		}}, planner.StrategyAttrRange},
		{"id dominance", logical.And{Children: []logical.Filter{
			logical.IdIn{IDs: []string{"val56"}},
			logical.Spatial{Op: logical.SpatialIntersects, Name: "geom", Geometry: geo.FromBounds(45, 23, 48, 27)},
		}}, planner.StrategyRecordID},
		{"temporal range on indexed attribute", logical.Temporal{Name: "updated", Op: logical.TemporalDuring, Range: during}, planner.StrategyAttrRange},
		{"embedded wildcard falls through", logical.PropertyLike{Name: "attr2", Pattern: "2%d1%"}, planner.StrategyStIdx},
		{"leading wildcard falls through", logical.PropertyLike{Name: "attr2", Pattern: "%2nd1"}, planner.StrategyStIdx},
		{"underscore falls through", logical.PropertyLike{Name: "attr2", Pattern: "2_d1%"}, planner.StrategyStIdx},
	} {
		assert.Equal(tc.want, decide(t, ctx, tc.filter), tc.name)
	}
}

func TestDecideCardinalityPrecedence(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	conjuncts := []logical.Filter{
		bboxGeom(),
		logical.PropertyEq{Name: "high", Literal: "x"},
		logical.PropertyEq{Name: "low", Literal: "y"},
	}
	for _, perm := range permutations(conjuncts) {
		d, err := planner.Decide(ctx, logical.And{Children: perm})
		assert.NoError(err)
		assert.Equal(planner.StrategyAttrEq, d.Strategy)

		plan, err := planner.Compile(ctx, d, planner.QueryHints{})
		assert.NoError(err)
		assert.NotNil(plan.IndexScan)
		assert.Equal([]byte("high\x00x\x00"), plan.IndexScan.Ranges[0].Start)
	}
}

func TestDecideLowCardinalityDefersToSpaceTime(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	conjuncts := []logical.Filter{
		bboxGeom(),
		logical.PropertyEq{Name: "low", Literal: "y"},
	}
	for _, perm := range permutations(conjuncts) {
		assert.Equal(planner.StrategyStIdx, decide(t, ctx, logical.And{Children: perm}))
	}
}

func TestDecideLegacyVersionBypass(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	ctx.Version = 0
	for _, f := range []logical.Filter{
		logical.IdIn{IDs: []string{"a"}},
		logical.PropertyEq{Name: "high", Literal: "x"},
		logical.PropertyEq{Name: "attr2", Literal: "val56"},
	} {
		assert.Equal(planner.StrategyStIdx, decide(t, ctx, f))
	}
}

func TestDecideIdDominatesHighCardinality(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	f := logical.And{Children: []logical.Filter{
		logical.PropertyEq{Name: "high", Literal: "x"},
		logical.IdIn{IDs: []string{"a"}},
	}}
	assert.Equal(planner.StrategyRecordID, decide(t, ctx, f))
}

func TestDecideFlattenedIdRaisesToTopLevel(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	f := logical.And{Children: []logical.Filter{
		logical.And{Children: []logical.Filter{
			logical.IdIn{IDs: []string{"a"}},
			logical.PropertyEq{Name: "attr2", Literal: "v"},
		}},
		bboxGeom(),
	}}
	assert.Equal(planner.StrategyRecordID, decide(t, ctx, f))
}

func TestDecideIsDeterministic(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	conjuncts := []logical.Filter{
		bboxGeom(),
		logical.PropertyEq{Name: "attr2", Literal: "v"},
		logical.Temporal{Name: "dtg", Op: logical.TemporalDuring, Range: timestamp.NewInclusiveTimeRange(
			ts(t, "2012-01-01T00:00:00Z"), ts(t, "2012-02-01T00:00:00Z"))},
	}
	var first planner.StrategyTag
	for i, perm := range permutations(conjuncts) {
		got := decide(t, ctx, logical.And{Children: perm})
		if i == 0 {
			first = got
			continue
		}
		assert.Equal(first, got)
	}
}

func permutations(in []logical.Filter) [][]logical.Filter {
	if len(in) <= 1 {
		return [][]logical.Filter{append([]logical.Filter(nil), in...)}
	}
	var out [][]logical.Filter
	for i := range in {
		rest := make([]logical.Filter, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]logical.Filter{in[i]}, p...))
		}
	}
	return out
}
