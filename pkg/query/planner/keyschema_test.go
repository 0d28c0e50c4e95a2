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
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/query/planner"
	"github.com/openspatial/geotable/pkg/timestamp"
)

func TestKeyPlanAcceptEverything(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	kp := ks.GetKeyPlan(planner.PlanningFilter{})
	_, ok := kp.(planner.KeyAcceptAll)
	assert.True(ok)
	_, hasRegex := kp.Regex()
	assert.False(hasRegex)
}

func TestKeyPlanDateOnly(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	interval := timestamp.NewInclusiveTimeRange(
		ts(t, "2012-01-01T11:00:00Z"), ts(t, "2012-01-01T12:00:00Z"))
	kp := ks.GetKeyPlan(planner.PlanningFilter{Interval: &interval})

	accept, ok := kp.(planner.KeyAcceptAll)
	assert.True(ok)
	expr, hasRegex := accept.Regex()
	assert.True(hasRegex)

	re, err := regexp.Compile(expr)
	assert.NoError(err)
	// rows inside the interval match, rows outside do not
	inside, _ := ks.WriteKey("rec-1", 4.5, 2.3, ts(t, "2012-01-01T11:30:00Z"))
	outside, _ := ks.WriteKey("rec-2", 4.5, 2.3, ts(t, "2012-01-01T14:30:00Z"))
	assert.True(re.Match(inside))
	assert.False(re.Match(outside))
}

func TestKeyPlanSpatialRangesCoverWrite(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	area := geo.FromBounds(4, 2, 5, 3)
	interval := timestamp.NewInclusiveTimeRange(
		ts(t, "2012-01-01T11:00:00Z"), ts(t, "2012-01-01T12:00:00Z"))
	kp := ks.GetKeyPlan(planner.PlanningFilter{Polygon: area, Interval: &interval})

	ranges, ok := kp.(planner.KeyRanges)
	assert.True(ok)
	assert.NotEmpty(ranges.Ranges)

	// a record inside the predicate lands in some planned range
	row, _ := ks.WriteKey("rec-1", 4.5, 2.5, ts(t, "2012-01-01T11:30:00Z"))
	assert.True(rowCovered(ranges.Ranges, row), "row %q not covered", row)

	// the regex is a sound over-approximation of the predicate
	if expr, hasRegex := ranges.Regex(); hasRegex {
		re, err := regexp.Compile(expr)
		assert.NoError(err)
		assert.True(re.Match(row))
	}

	// a record in a distant cell is covered by no range
	far, _ := ks.WriteKey("rec-2", 120, 45, ts(t, "2012-01-01T11:30:00Z"))
	assert.False(rowCovered(ranges.Ranges, far))
}

func rowCovered(ranges []planner.ByteRange, row []byte) bool {
	for _, r := range ranges {
		if bytes.Compare(row, r.Start) >= 0 && (r.End == nil || bytes.Compare(row, r.End) < 0) {
			return true
		}
	}
	return false
}

func TestKeyPlanShardFanOut(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	area := geo.FromBounds(4, 2, 5, 3)
	kp := ks.GetKeyPlan(planner.PlanningFilter{Polygon: area})
	ranges, ok := kp.(planner.KeyRanges)
	assert.True(ok)

	shards := make(map[byte]struct{})
	for _, r := range ranges.Ranges {
		shards[r.Start[0]] = struct{}{}
	}
	assert.Len(shards, ks.Shards)
}

func TestColumnFamiliesForTightPolygon(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	area := geo.FromBounds(4.5, 2.5, 4.51, 2.51)
	cf := ks.GetColumnFamiliesToFetch(planner.PlanningFilter{Polygon: area})
	list, ok := cf.(planner.CFList)
	assert.True(ok)
	assert.NotEmpty(list.Families)

	// the write path produces a family the plan fetches
	_, family := ks.WriteKey("rec-1", 4.505, 2.505, ts(t, "2012-01-01T11:30:00Z"))
	found := false
	for _, f := range list.Families {
		if bytes.Equal(f, family) {
			found = true
		}
	}
	assert.True(found)
}

func TestColumnFamiliesFallBackToAll(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	_, ok := ks.GetColumnFamiliesToFetch(planner.PlanningFilter{}).(planner.CFAll)
	assert.True(ok)

	wide := geo.FromBounds(-170, -80, 170, 80)
	_, ok = ks.GetColumnFamiliesToFetch(planner.PlanningFilter{Polygon: wide}).(planner.CFAll)
	assert.True(ok)
}

func TestWriteKeyShardIsStable(t *testing.T) {
	assert := require.New(t)
	ks := planner.DefaultSTKeySchema()
	at := ts(t, "2012-01-01T11:30:00Z")
	r1, _ := ks.WriteKey("rec-1", 4.5, 2.5, at)
	r2, _ := ks.WriteKey("rec-1", 4.5, 2.5, at)
	assert.Equal(r1, r2)
	assert.Less(int(r1[0]), ks.Shards)
}
