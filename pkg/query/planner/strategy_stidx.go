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

package planner

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/query/logical"
	"github.com/openspatial/geotable/pkg/timestamp"
)

// compileStIdx plans a scan of the spatio-temporal index: ranges and
// families from the key schema, an optional row-regex prefilter, the
// coarse intersect stage, the fine filter, and an aggregation stage
// when the hints ask for one.
func compileStIdx(ctx Context, decision Decision, hints QueryHints) (QueryPlan, error) {
	plan := QueryPlan{Strategy: StrategyStIdx, Table: ctx.Tables.SpatioTemporal}
	if decision.Query.Empty {
		return plan, nil
	}

	ks := ctx.keySchema()
	filter := PlanningFilter{Polygon: decision.Query.Polygon, Interval: decision.Query.Interval}
	namer := &stageNamer{}

	keyPlan := ks.GetKeyPlan(filter)
	switch kp := keyPlan.(type) {
	case KeyRanges:
		plan.Ranges = kp.Ranges
	case KeyList:
		plan.Keys = kp.Keys
	default:
		plan.AcceptAll = true
	}
	if expr, ok := keyPlan.Regex(); ok {
		plan.Iterators = append(plan.Iterators, IteratorStage{
			Priority:  BandRowRegex,
			Name:      namer.name("row-regex"),
			ClassName: ClassRowRegexFilter,
			Options:   map[string]string{OptRegex: expr},
		})
	}
	if cf, ok := ks.GetColumnFamiliesToFetch(filter).(CFList); ok {
		plan.ColumnFamilies = cf.Families
	}

	if !filter.AcceptsEverything() {
		stage, err := coarseIntersectStage(ctx, ks, namer, decision.Query)
		if err != nil {
			return QueryPlan{}, err
		}
		plan.Iterators = append(plan.Iterators, stage)
	}

	aggregating := hints.Density || hints.TemporalDensity
	plan.Iterators = append(plan.Iterators,
		fineFilterStage(ctx, namer, decision.Query.Residual, hints, !aggregating, nil))

	if aggregating {
		stage, err := aggregationStage(namer, decision.Query, hints)
		if err != nil {
			return QueryPlan{}, err
		}
		plan.Iterators = append(plan.Iterators, stage)
	}
	return plan, nil
}

func coarseIntersectStage(ctx Context, ks *STKeySchema, namer *stageNamer, query logical.SpaceTimeQuery) (IteratorStage, error) {
	opts := map[string]string{
		OptDefaultSchema: ks.Spec(),
		OptSFT:           ctx.Schema.Spec(),
		OptSFTName:       ctx.Schema.TypeName,
	}
	if query.Polygon != nil {
		data, err := wkb.Marshal(query.Polygon, wkb.NDR)
		if err != nil {
			return IteratorStage{}, errors.Wrap(err, "encode coarse filter polygon")
		}
		opts[OptSTFilter] = hex.EncodeToString(data)
	}
	if query.Interval != nil {
		opts[OptInterval] = renderIntervalMillis(*query.Interval)
	}
	return IteratorStage{
		Priority:  BandSTIntersect,
		Name:      namer.name("st-intersect"),
		ClassName: ClassSpatioTemporalFilter,
		Options:   opts,
	}, nil
}

// aggregationStage builds the density stage. Density owns the output
// schema, so the fine filter keeps its predicate but loses its
// projection.
func aggregationStage(namer *stageNamer, query logical.SpaceTimeQuery, hints QueryHints) (IteratorStage, error) {
	if hints.Density && hints.TemporalDensity {
		return IteratorStage{}, errors.WithMessage(ErrConfiguration, "density and temporal density are mutually exclusive")
	}
	if hints.Density {
		if hints.Width <= 0 || hints.Height <= 0 {
			return IteratorStage{}, errors.WithMessagef(ErrConfiguration, "density raster %dx%d", hints.Width, hints.Height)
		}
		polygon := query.Polygon
		if polygon == nil {
			polygon = geo.Everywhere
		}
		wktText, err := geo.MarshalWKT(polygon)
		if err != nil {
			return IteratorStage{}, errors.Wrap(err, "encode density polygon")
		}
		return IteratorStage{
			Priority:  BandAggregation,
			Name:      namer.name("density"),
			ClassName: ClassDensityAggregator,
			Options: map[string]string{
				OptPolygon: wktText,
				OptWidth:   fmt.Sprintf("%d", hints.Width),
				OptHeight:  fmt.Sprintf("%d", hints.Height),
			},
		}, nil
	}
	if hints.Buckets <= 0 {
		return IteratorStage{}, errors.WithMessagef(ErrConfiguration, "temporal density buckets %d", hints.Buckets)
	}
	interval := timestamp.Everywhen
	if query.Interval != nil {
		interval = *query.Interval
	}
	return IteratorStage{
		Priority:  BandAggregation,
		Name:      namer.name("temporal-density"),
		ClassName: ClassTemporalDensityAggregator,
		Options: map[string]string{
			OptInterval: renderIntervalMillis(interval),
			OptBuckets:  fmt.Sprintf("%d", hints.Buckets),
		},
	}, nil
}

func renderIntervalMillis(r timestamp.TimeRange) string {
	return fmt.Sprintf("%d/%d", r.Start.UnixMilli(), r.End.UnixMilli())
}
