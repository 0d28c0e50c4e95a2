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
	"fmt"
	"strings"

	"github.com/openspatial/geotable/pkg/query/logical"
)

// Plan decides a strategy for the filter and compiles it into a
// physical plan. It is pure: no I/O happens until the plan is bound.
func Plan(ctx Context, filter logical.Filter, hints QueryHints) (QueryPlan, error) {
	decision, err := Decide(ctx, filter)
	if err != nil {
		return QueryPlan{}, err
	}
	ctx.log().Debug().
		Stringer("strategy", decision.Strategy).
		Str("filter", logical.Render(filter)).
		Msg("strategy selected")
	return Compile(ctx, decision, hints)
}

// Compile dispatches a decision to its strategy compiler.
func Compile(ctx Context, decision Decision, hints QueryHints) (QueryPlan, error) {
	switch decision.Strategy {
	case StrategyAttrEq:
		return compileAttrEq(ctx, decision, hints)
	case StrategyAttrRange:
		return compileAttrRange(ctx, decision, hints)
	case StrategyAttrLike:
		return compileAttrLike(ctx, decision, hints)
	case StrategyRecordID:
		return compileRecordID(ctx, decision, hints)
	default:
		return compileStIdx(ctx, decision, hints)
	}
}

// stageNamer hands out plan-unique iterator names. A counter keeps
// plans deterministic.
type stageNamer struct {
	n int
}

func (sn *stageNamer) name(base string) string {
	sn.n++
	return fmt.Sprintf("%s-%d", base, sn.n)
}

func (ctx Context) featureEncoding() string {
	if ctx.FeatureEncoding != "" {
		return ctx.FeatureEncoding
	}
	return "avro"
}

func (ctx Context) keySchema() *STKeySchema {
	if ctx.KeySchema != nil {
		return ctx.KeySchema
	}
	return DefaultSTKeySchema()
}

// fineFilterStage builds the record-decoding stage: schema, feature
// encoding, the residual predicate as ECQL, and the projection unless
// an aggregation stage owns the output schema.
func fineFilterStage(ctx Context, namer *stageNamer, residual logical.Filter, hints QueryHints, withTransforms bool, extra map[string]string) IteratorStage {
	opts := map[string]string{
		OptSFT:             ctx.Schema.Spec(),
		OptSFTName:         ctx.Schema.TypeName,
		OptFeatureEncoding: ctx.featureEncoding(),
	}
	if _, include := residual.(logical.IncludeAll); !include {
		opts[OptECQLFilter] = logical.Render(residual)
	}
	if withTransforms && len(hints.Transforms) > 0 {
		opts[OptTransforms] = strings.Join(hints.Transforms, ";")
		if hints.TransformSchema != "" {
			opts[OptTransformSchema] = hints.TransformSchema
		}
	}
	for k, v := range extra {
		opts[k] = v
	}
	return IteratorStage{
		Priority:  BandFineFilter,
		Name:      namer.name("fine-filter"),
		ClassName: ClassSimpleFeatureFilter,
		Options:   opts,
	}
}

// residualExcept folds every conjunct but the consumed one back into a
// single filter for the fine stage.
func residualExcept(conjuncts []logical.Filter, consumed int) logical.Filter {
	return residualExceptSet(conjuncts, map[int]bool{consumed: true})
}

func residualExceptSet(conjuncts []logical.Filter, consumed map[int]bool) logical.Filter {
	var rest []logical.Filter
	for i, c := range conjuncts {
		if consumed[i] {
			continue
		}
		if _, include := c.(logical.IncludeAll); include {
			continue
		}
		rest = append(rest, c)
	}
	switch len(rest) {
	case 0:
		return logical.IncludeAll{}
	case 1:
		return rest[0]
	default:
		return logical.And{Children: rest}
	}
}
