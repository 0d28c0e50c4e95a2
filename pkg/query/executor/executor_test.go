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

package executor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openspatial/geotable/geotable/kv"
	"github.com/openspatial/geotable/pkg/convert"
	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/query/executor"
	"github.com/openspatial/geotable/pkg/query/logical"
	"github.com/openspatial/geotable/pkg/query/planner"
	"github.com/openspatial/geotable/pkg/sft"
	"github.com/openspatial/geotable/pkg/timestamp"
)

const (
	attrTable   = "test_attr_idx"
	recordTable = "test_records"
	stTable     = "test_st_idx"

	testSpec = "attr2:String:index=true,dtg:Date:index=true:default=true,geom:Point:srid=4326:default=true"
)

func testContext(t *testing.T) planner.Context {
	schema, err := sft.Parse("test", testSpec)
	require.NoError(t, err)
	return planner.Context{
		Schema: schema,
		Tables: planner.TableConfig{
			AttributeIndex: attrTable,
			Record:         recordTable,
			SpatioTemporal: stTable,
		},
		Version: 1,
	}
}

func ts(t *testing.T, s string) time.Time {
	tp, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tp
}

// putRecord writes a record and its attribute index entry the way the
// ingest path lays them out.
func putRecord(t *testing.T, store *kv.MemStore, id, attr2 string) {
	value, err := sft.EncodeValue(sft.KindString, attr2)
	require.NoError(t, err)
	indexRow := convert.Concat([]byte("attr2"), []byte{0x00}, value, []byte{0x00}, []byte(id))
	require.NoError(t, store.Put(attrTable, indexRow, []byte(id), nil))
	require.NoError(t, store.Put(recordTable, []byte(id), []byte("F"), []byte("payload-"+id)))
}

func TestBindAttrEqTwoPhase(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	store := kv.NewMemStore()
	putRecord(t, store, "rec-1", "val56")
	putRecord(t, store, "rec-2", "val56")
	putRecord(t, store, "rec-3", "other")
	// values extending the literal sort inside a naive prefix range and
	// must not come back
	putRecord(t, store, "rec-4", "val560")
	putRecord(t, store, "rec-5", "val56abc")

	p, err := planner.Plan(ctx, logical.PropertyEq{Name: "attr2", Literal: "val56"}, planner.QueryHints{})
	assert.NoError(err)

	it, err := executor.Bind(store, p, nil)
	assert.NoError(err)
	var ids []string
	for it.Next() {
		ids = append(ids, string(it.Entry().Key))
	}
	assert.NoError(it.Err())
	assert.NoError(it.Close())
	assert.Equal([]string{"rec-1", "rec-2"}, ids)
}

func TestBindAttrEqNoMatches(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	store := kv.NewMemStore()
	putRecord(t, store, "rec-1", "other")

	p, err := planner.Plan(ctx, logical.PropertyEq{Name: "attr2", Literal: "val56"}, planner.QueryHints{})
	assert.NoError(err)

	it, err := executor.Bind(store, p, nil)
	assert.NoError(err)
	assert.False(it.Next())
	assert.NoError(it.Err())
	assert.NoError(it.Close())
}

func TestBindRecordIDKeyList(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	store := kv.NewMemStore()
	putRecord(t, store, "rec-1", "a")
	putRecord(t, store, "rec-2", "b")
	putRecord(t, store, "rec-3", "c")

	p, err := planner.Plan(ctx, logical.IdIn{IDs: []string{"rec-3", "rec-1"}}, planner.QueryHints{})
	assert.NoError(err)

	it, err := executor.Bind(store, p, nil)
	assert.NoError(err)
	var ids []string
	for it.Next() {
		ids = append(ids, string(it.Entry().Key))
	}
	assert.NoError(it.Err())
	assert.NoError(it.Close())
	assert.Equal([]string{"rec-1", "rec-3"}, ids)
}

func TestBindStIdxScan(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	store := kv.NewMemStore()
	ks := planner.DefaultSTKeySchema()
	at := ts(t, "2012-01-01T11:30:00Z")

	inRow, inFam := ks.WriteKey("rec-in", 4.5, 2.5, at)
	assert.NoError(store.Put(stTable, inRow, inFam, []byte("payload-in")))
	farRow, farFam := ks.WriteKey("rec-far", 120, 45, at)
	assert.NoError(store.Put(stTable, farRow, farFam, []byte("payload-far")))

	during := timestamp.NewInclusiveTimeRange(ts(t, "2012-01-01T11:00:00Z"), ts(t, "2012-01-01T12:00:00Z"))
	p, err := planner.Plan(ctx, logical.And{Children: []logical.Filter{
		logical.Spatial{Op: logical.SpatialBBox, Name: "geom", Geometry: geo.FromBounds(4, 2, 5, 3)},
		logical.Temporal{Name: "dtg", Op: logical.TemporalDuring, Range: during},
	}}, planner.QueryHints{})
	assert.NoError(err)
	assert.Equal(planner.StrategyStIdx, p.Strategy)

	it, err := executor.Bind(store, p, nil)
	assert.NoError(err)
	var values []string
	for it.Next() {
		values = append(values, string(it.Entry().Value))
	}
	assert.NoError(it.Err())
	assert.NoError(it.Close())
	assert.Equal([]string{"payload-in"}, values)
}

func TestBindEmptyPlanTouchesNoTables(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	// an empty store would reject any scanner creation
	store := kv.NewMemStore()

	p, err := planner.Plan(ctx, logical.And{Children: []logical.Filter{
		logical.Temporal{Name: "dtg", Op: logical.TemporalDuring, Range: timestamp.NewInclusiveTimeRange(
			ts(t, "2012-01-01T00:00:00Z"), ts(t, "2012-02-01T00:00:00Z"))},
		logical.Temporal{Name: "dtg", Op: logical.TemporalDuring, Range: timestamp.NewInclusiveTimeRange(
			ts(t, "2013-01-01T00:00:00Z"), ts(t, "2013-02-01T00:00:00Z"))},
	}}, planner.QueryHints{})
	assert.NoError(err)
	assert.True(p.IsEmpty())

	it, err := executor.Bind(store, p, nil)
	assert.NoError(err)
	assert.False(it.Next())
	assert.NoError(it.Err())
	assert.NoError(it.Close())
}

func TestBindCloseIsIdempotent(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	store := kv.NewMemStore()
	putRecord(t, store, "rec-1", "val56")

	p, err := planner.Plan(ctx, logical.PropertyEq{Name: "attr2", Literal: "val56"}, planner.QueryHints{})
	assert.NoError(err)

	it, err := executor.Bind(store, p, nil)
	assert.NoError(err)
	// abandon without draining
	assert.NoError(it.Close())
	assert.NoError(it.Close())
	assert.False(it.Next())
}

func TestBindUnknownTableSurfaces(t *testing.T) {
	assert := require.New(t)
	ctx := testContext(t)
	store := kv.NewMemStore()

	p, err := planner.Plan(ctx, logical.PropertyEq{Name: "attr2", Literal: "val56"}, planner.QueryHints{})
	assert.NoError(err)
	_, err = executor.Bind(store, p, nil)
	assert.Error(err)
}
