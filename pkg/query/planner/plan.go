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

// Package planner turns a canonicalized filter into a physical access
// plan: one strategy, a set of scan ranges over a sorted key space, an
// optional row regex and column-family list, and a prioritized stack of
// server-side iterator stages.
package planner

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/openspatial/geotable/pkg/logger"
	"github.com/openspatial/geotable/pkg/sft"
)

// ErrConfiguration indicates a plan request missing a required hint,
// e.g. a density plan without raster dimensions.
var ErrConfiguration = errors.New("invalid query configuration")

// StrategyTag identifies the physical access strategy of a plan.
type StrategyTag int

// The five strategies.
const (
	StrategyStIdx StrategyTag = iota
	StrategyAttrEq
	StrategyAttrRange
	StrategyAttrLike
	StrategyRecordID
)

func (s StrategyTag) String() string {
	switch s {
	case StrategyAttrEq:
		return "attr-eq"
	case StrategyAttrRange:
		return "attr-range"
	case StrategyAttrLike:
		return "attr-like"
	case StrategyRecordID:
		return "record-id"
	default:
		return "st-idx"
	}
}

// ByteRange is a half-open row-key range [Start, End). A nil End leaves
// the range unbounded above.
type ByteRange struct {
	Start []byte
	End   []byte
}

// Iterator stage priority bands. Smaller priorities run earlier in the
// server-side stack.
const (
	BandRowRegex    uint16 = 0
	BandFamilyRegex uint16 = 100
	BandSTIntersect uint16 = 200
	BandFineFilter  uint16 = 300
	BandAggregation uint16 = 400
)

// Iterator stage class names.
const (
	ClassRowRegexFilter            = "geotable.iterators.RowRegexFilter"
	ClassSpatioTemporalFilter      = "geotable.iterators.SpatioTemporalIntersect"
	ClassSimpleFeatureFilter       = "geotable.iterators.SimpleFeatureFilter"
	ClassDensityAggregator         = "geotable.iterators.DensityAggregator"
	ClassTemporalDensityAggregator = "geotable.iterators.TemporalDensityAggregator"
)

// Option keys of the iterator configuration contract. The planner owns
// this vocabulary; the server-side stages accept it.
const (
	OptRegex           = "regex"
	OptFeatureEncoding = "FEATURE_ENCODING"
	OptSTFilter        = "ST_FILTER"
	OptSFT             = "SFT"
	OptSFTName         = "SFT_NAME"
	OptSFTIndexValue   = "SFT_INDEX_VALUE"
	OptAttrName        = "ATTR_NAME"
	OptECQLFilter      = "ECQL_FILTER"
	OptTransforms      = "TRANSFORMS"
	OptTransformSchema = "TRANSFORM_SCHEMA"
	OptDefaultSchema   = "DEFAULT_SCHEMA"
	OptPolygon         = "POLYGON"
	OptWidth           = "WIDTH"
	OptHeight          = "HEIGHT"
	OptInterval        = "INTERVAL"
	OptBuckets         = "BUCKETS"
)

// IteratorStage is one configured server-side iterator.
type IteratorStage struct {
	Options   map[string]string `json:"options"`
	Name      string            `json:"name"`
	ClassName string            `json:"class"`
	Priority  uint16            `json:"priority"`
}

// IndexScan is the first phase of a two-phase strategy: a scan of the
// attribute index table whose returned column families carry the record
// ids the second phase fetches.
type IndexScan struct {
	Table  string
	Ranges []ByteRange
}

// QueryPlan is the compiled physical plan. It is immutable and is
// consumed exactly once when bound onto a scanner handle.
type QueryPlan struct {
	Table          string
	IndexScan      *IndexScan
	Ranges         []ByteRange
	Keys           [][]byte
	ColumnFamilies [][]byte
	Iterators      []IteratorStage
	Strategy       StrategyTag
	AcceptAll      bool
}

// IsEmpty reports whether the plan provably selects nothing; execution
// yields zero entries without touching the store.
func (p QueryPlan) IsEmpty() bool {
	return !p.AcceptAll && len(p.Ranges) == 0 && len(p.Keys) == 0 && p.IndexScan == nil
}

func (p QueryPlan) String() string {
	out := map[string]interface{}{
		"strategy": p.Strategy.String(),
		"table":    p.Table,
		"ranges":   len(p.Ranges),
		"keys":     len(p.Keys),
		"families": len(p.ColumnFamilies),
	}
	if p.AcceptAll {
		out["ranges"] = "all"
	}
	if p.IndexScan != nil {
		out["indexScan"] = map[string]interface{}{
			"table":  p.IndexScan.Table,
			"ranges": len(p.IndexScan.Ranges),
		}
	}
	stages := make([]string, len(p.Iterators))
	for i, s := range p.Iterators {
		stages[i] = s.Name
	}
	out["iterators"] = stages
	bb, err := json.Marshal(out)
	if err != nil {
		return err.Error()
	}
	return string(bb)
}

// TableConfig names the tables a plan can target.
type TableConfig struct {
	AttributeIndex string
	Record         string
	SpatioTemporal string
}

// QueryHints carries caller-side execution hints: projections and the
// aggregation modes.
type QueryHints struct {
	Transforms      []string
	TransformSchema string
	Width           int
	Height          int
	Buckets         int
	Density         bool
	TemporalDensity bool
}

// Context bundles everything compilation needs. Version is the index
// layout generation; generations at or below zero predate attribute
// indexing and only the spatio-temporal index exists for them.
type Context struct {
	Schema          *sft.Schema
	KeySchema       *STKeySchema
	Log             *logger.Logger
	Tables          TableConfig
	FeatureEncoding string
	Version         int
}

func (c Context) log() *logger.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logger.GetLogger("planner")
}
