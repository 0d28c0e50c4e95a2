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
	"sort"

	"github.com/pkg/errors"

	"github.com/openspatial/geotable/pkg/query/logical"
)

// compileRecordID plans a direct fetch of the record table by id. Id
// sets from multiple conjuncts union; every non-id conjunct becomes the
// fine filter.
func compileRecordID(ctx Context, decision Decision, hints QueryHints) (QueryPlan, error) {
	plan := QueryPlan{Strategy: StrategyRecordID, Table: ctx.Tables.Record}
	if decision.Query.Empty {
		return plan, nil
	}
	seen := make(map[string]struct{})
	var residual []logical.Filter
	for _, c := range decision.Conjuncts {
		if in, ok := c.(logical.IdIn); ok {
			for _, id := range in.IDs {
				seen[id] = struct{}{}
			}
			continue
		}
		if _, include := c.(logical.IncludeAll); include {
			continue
		}
		residual = append(residual, c)
	}
	if len(seen) == 0 {
		return QueryPlan{}, errors.WithMessage(logical.ErrUnsupportedExpression, "no id conjunct")
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	plan.Keys = make([][]byte, len(ids))
	for i, id := range ids {
		plan.Keys[i] = []byte(id)
	}

	namer := &stageNamer{}
	var fineResidual logical.Filter = logical.IncludeAll{}
	switch len(residual) {
	case 0:
	case 1:
		fineResidual = residual[0]
	default:
		fineResidual = logical.And{Children: residual}
	}
	plan.Iterators = append(plan.Iterators, fineFilterStage(ctx, namer, fineResidual, hints, true, nil))
	return plan, nil
}
