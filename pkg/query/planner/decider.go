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
	"strings"

	"github.com/openspatial/geotable/pkg/query/logical"
	"github.com/openspatial/geotable/pkg/sft"
)

// Decision is the outcome of strategy selection: the chosen strategy
// plus the canonicalized conjuncts and the extracted space-time
// predicate, which the compilers reuse.
type Decision struct {
	Query     logical.SpaceTimeQuery
	Conjuncts []logical.Filter
	Strategy  StrategyTag
}

// Decide picks exactly one strategy for a filter. The rules run in a
// fixed order and the first match wins:
//
//  1. layout generations without attribute indexes always scan the
//     spatio-temporal index;
//  2. an id predicate dominates everything else;
//  3. equality on an indexed high-cardinality attribute wins over any
//     space-time predicate;
//  4. without any space-time predicate, an indexed attribute predicate
//     rides the attribute index (equality, then prefix LIKE, then
//     range);
//  5. a low-cardinality attribute equality combined with a spatial
//     predicate defers to the spatio-temporal index;
//  6. everything else scans the spatio-temporal index.
func Decide(ctx Context, filter logical.Filter) (Decision, error) {
	normalized, err := logical.Normalize(filter)
	if err != nil {
		return Decision{}, err
	}
	conjuncts := canonicalize(logical.Conjuncts(normalized), ctx.Schema)
	query := logical.Extract(conjuncts, ctx.Schema)
	d := Decision{Conjuncts: conjuncts, Query: query}

	// 1. legacy layout bypass
	if ctx.Version <= 0 {
		d.Strategy = StrategyStIdx
		return d, nil
	}

	// 2. id predicate dominance
	for _, c := range conjuncts {
		if _, ok := c.(logical.IdIn); ok {
			d.Strategy = StrategyRecordID
			return d, nil
		}
	}

	// 3. high-cardinality equality
	for _, c := range conjuncts {
		if eq, ok := c.(logical.PropertyEq); ok {
			if indexed, attr := ctx.Schema.IndexDefined(eq.Name); indexed && attr.Cardinality == sft.CardinalityHigh {
				d.Strategy = StrategyAttrEq
				return d, nil
			}
		}
	}

	// 4. pure attribute query
	if query.Polygon == nil && query.Interval == nil && !query.Empty {
		if tag, ok := pureAttributeStrategy(ctx.Schema, conjuncts); ok {
			d.Strategy = tag
			return d, nil
		}
	}

	// 5 and 6 both land on the spatio-temporal index: low-cardinality
	// equality fans out too widely to beat a coarse space-time scan.
	d.Strategy = StrategyStIdx
	return d, nil
}

func pureAttributeStrategy(schema *sft.Schema, conjuncts []logical.Filter) (StrategyTag, bool) {
	for _, c := range conjuncts {
		if eq, ok := c.(logical.PropertyEq); ok {
			if indexed, _ := schema.IndexDefined(eq.Name); indexed {
				return StrategyAttrEq, true
			}
		}
	}
	for _, c := range conjuncts {
		if like, ok := c.(logical.PropertyLike); ok {
			indexed, attr := schema.IndexDefined(like.Name)
			if !indexed || attr.Kind != sft.KindString {
				continue
			}
			if _, ok := likePrefix(like); ok {
				return StrategyAttrLike, true
			}
		}
	}
	for _, c := range conjuncts {
		switch v := c.(type) {
		case logical.PropertyCompare:
			if indexed, _ := schema.IndexDefined(v.Name); indexed {
				return StrategyAttrRange, true
			}
		case logical.PropertyBetween:
			if indexed, _ := schema.IndexDefined(v.Name); indexed {
				return StrategyAttrRange, true
			}
		case logical.Temporal:
			if indexed, attr := schema.IndexDefined(v.Name); indexed && attr.Kind == sft.KindDate {
				return StrategyAttrRange, true
			}
		}
	}
	return StrategyStIdx, false
}

// likePrefix accepts patterns of a literal prefix followed by one or
// more trailing wildcards: no underscores, no embedded percent signs.
// Case-insensitive patterns fold the prefix to lower case.
func likePrefix(like logical.PropertyLike) (string, bool) {
	pattern := like.Pattern
	if like.CaseInsensitive {
		pattern = strings.ToLower(pattern)
	}
	trimmed := pattern
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '%' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if len(trimmed) == len(pattern) || len(trimmed) == 0 {
		return "", false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] == '%' || trimmed[i] == '_' {
			return "", false
		}
	}
	return trimmed, true
}

// canonicalize stably orders top-level conjuncts by (class, attribute,
// rendered form) so the decision table is invariant under conjunct
// reordering.
func canonicalize(conjuncts []logical.Filter, schema *sft.Schema) []logical.Filter {
	out := append([]logical.Filter(nil), conjuncts...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := logical.Classify(out[i], schema), logical.Classify(out[j], schema)
		if ci != cj {
			return ci < cj
		}
		ni, _ := logical.AttributeName(out[i])
		nj, _ := logical.AttributeName(out[j])
		if ni != nj {
			return ni < nj
		}
		return logical.Render(out[i]) < logical.Render(out[j])
	})
	return out
}
