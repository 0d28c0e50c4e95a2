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
	"bytes"

	"github.com/pkg/errors"

	"github.com/openspatial/geotable/pkg/convert"
	"github.com/openspatial/geotable/pkg/query/logical"
	"github.com/openspatial/geotable/pkg/sft"
)

// The attribute index stores one row per (attribute, value, record):
//
//	attribute name | 0x00 | encoded value | 0x00 | record id
//
// with the record id repeated in the column family, which is all phase
// one reads. Phase two fetches the collected ids from the record table.
//
// Bounds must respect the 0x00 field delimiter: for variable-length
// string encodings, incrementing the value's last byte would also admit
// values that merely extend it ('val56' must not match 'val560').

func attrValuePrefix(name string, value []byte) []byte {
	return convert.Concat([]byte(name), []byte{0x00}, value)
}

func attrSectionStart(name string, kind sft.Kind) []byte {
	return attrValuePrefix(name, sft.MinValue(kind))
}

func attrSectionEnd(name string) []byte {
	return convert.Concat([]byte(name), []byte{0x01})
}

// valueStart is the first possible row of an exact value: the value
// terminated by its field delimiter.
func valueStart(name string, value []byte) []byte {
	return convert.Concat([]byte(name), []byte{0x00}, value, []byte{0x00})
}

// closedUpper returns the end key of a bound that still admits every
// row of the given value and nothing beyond it. 0x01 sorts right after
// the field delimiter, so value||0x00||id rows stay in while any longer
// value extending the bytes falls out.
func closedUpper(name string, value []byte) []byte {
	return convert.Concat([]byte(name), []byte{0x00}, value, []byte{0x01})
}

// compileAttrEq plans the two-phase equality lookup: one index range
// per literal, then a record fetch by collected ids.
func compileAttrEq(ctx Context, decision Decision, hints QueryHints) (QueryPlan, error) {
	plan := QueryPlan{Strategy: StrategyAttrEq, Table: ctx.Tables.Record}
	if decision.Query.Empty {
		return plan, nil
	}
	consumed, eq, attr, err := chooseEqConjunct(ctx.Schema, decision.Conjuncts)
	if err != nil {
		return QueryPlan{}, err
	}
	value, err := sft.EncodeValue(attr.Kind, eq.Literal)
	if err != nil {
		return QueryPlan{}, errors.Wrapf(err, "attribute %s", attr.Name)
	}
	plan.IndexScan = &IndexScan{
		Table:  ctx.Tables.AttributeIndex,
		Ranges: []ByteRange{{Start: valueStart(attr.Name, value), End: closedUpper(attr.Name, value)}},
	}
	namer := &stageNamer{}
	plan.Iterators = append(plan.Iterators, fineFilterStage(
		ctx, namer, residualExcept(decision.Conjuncts, consumed), hints, true,
		map[string]string{
			OptAttrName:      attr.Name,
			OptSFTIndexValue: logical.Render(eq),
		}))
	return plan, nil
}

// chooseEqConjunct picks the equality conjunct the index scan consumes:
// the first high-cardinality indexed one, or failing that the first
// indexed one. Conjuncts arrive canonicalized, so the pick is stable
// under reordering of the source filter.
func chooseEqConjunct(schema *sft.Schema, conjuncts []logical.Filter) (int, logical.PropertyEq, sft.Attribute, error) {
	fallback := -1
	var fallbackEq logical.PropertyEq
	var fallbackAttr sft.Attribute
	for i, c := range conjuncts {
		eq, ok := c.(logical.PropertyEq)
		if !ok {
			continue
		}
		indexed, attr := schema.IndexDefined(eq.Name)
		if !indexed {
			continue
		}
		if attr.Cardinality == sft.CardinalityHigh {
			return i, eq, attr, nil
		}
		if fallback < 0 {
			fallback = i
			fallbackEq = eq
			fallbackAttr = attr
		}
	}
	if fallback < 0 {
		return 0, logical.PropertyEq{}, sft.Attribute{}, errors.WithMessage(
			logical.ErrUnsupportedExpression, "no indexed equality conjunct")
	}
	return fallback, fallbackEq, fallbackAttr, nil
}

// compileAttrRange plans the two-phase range lookup. Closed bounds keep
// every row of the bounding value; open bounds stop right before it.
// Range conjuncts on the same attribute intersect into a single range;
// an empty intersection empties the plan.
func compileAttrRange(ctx Context, decision Decision, hints QueryHints) (QueryPlan, error) {
	plan := QueryPlan{Strategy: StrategyAttrRange, Table: ctx.Tables.Record}
	if decision.Query.Empty {
		return plan, nil
	}
	var (
		attrName string
		start    []byte
		end      []byte
		consumed = make(map[int]bool)
	)
	for i, c := range decision.Conjuncts {
		name, bounds, ok, err := rangeBoundsOf(ctx, c)
		if err != nil {
			return QueryPlan{}, err
		}
		if !ok {
			continue
		}
		if attrName == "" {
			attrName, start, end = name, bounds.Start, bounds.End
			consumed[i] = true
			continue
		}
		if name != attrName {
			continue
		}
		if bytes.Compare(bounds.Start, start) > 0 {
			start = bounds.Start
		}
		if bytes.Compare(bounds.End, end) < 0 {
			end = bounds.End
		}
		consumed[i] = true
	}
	if attrName == "" {
		return QueryPlan{}, errors.WithMessage(logical.ErrUnsupportedExpression, "no indexed range conjunct")
	}
	if bytes.Compare(start, end) >= 0 {
		return plan, nil
	}
	plan.IndexScan = &IndexScan{
		Table:  ctx.Tables.AttributeIndex,
		Ranges: []ByteRange{{Start: start, End: end}},
	}
	namer := &stageNamer{}
	plan.Iterators = append(plan.Iterators, fineFilterStage(
		ctx, namer, residualExceptSet(decision.Conjuncts, consumed), hints, true, nil))
	return plan, nil
}

// rangeBoundsOf maps one conjunct to its attribute index range. The
// bool result is false when the conjunct is not an indexed range
// predicate.
func rangeBoundsOf(ctx Context, conjunct logical.Filter) (string, ByteRange, bool, error) {
	none := ByteRange{}
	switch v := conjunct.(type) {
	case logical.PropertyBetween:
		indexed, attr := ctx.Schema.IndexDefined(v.Name)
		if !indexed {
			return "", none, false, nil
		}
		lo, err := sft.EncodeValue(attr.Kind, v.Lo)
		if err != nil {
			return "", none, false, errors.Wrapf(err, "attribute %s", attr.Name)
		}
		hi, err := sft.EncodeValue(attr.Kind, v.Hi)
		if err != nil {
			return "", none, false, errors.Wrapf(err, "attribute %s", attr.Name)
		}
		return attr.Name, ByteRange{Start: attrValuePrefix(attr.Name, lo), End: closedUpper(attr.Name, hi)}, true, nil
	case logical.PropertyCompare:
		indexed, attr := ctx.Schema.IndexDefined(v.Name)
		if !indexed {
			return "", none, false, nil
		}
		value, err := sft.EncodeValue(attr.Kind, v.Literal)
		if err != nil {
			return "", none, false, errors.Wrapf(err, "attribute %s", attr.Name)
		}
		switch v.Op {
		case logical.OpLt:
			return attr.Name, ByteRange{Start: attrSectionStart(attr.Name, attr.Kind), End: attrValuePrefix(attr.Name, value)}, true, nil
		case logical.OpLe:
			return attr.Name, ByteRange{Start: attrSectionStart(attr.Name, attr.Kind), End: closedUpper(attr.Name, value)}, true, nil
		case logical.OpGt:
			return attr.Name, ByteRange{Start: closedUpper(attr.Name, value), End: attrSectionEnd(attr.Name)}, true, nil
		case logical.OpGe:
			return attr.Name, ByteRange{Start: attrValuePrefix(attr.Name, value), End: attrSectionEnd(attr.Name)}, true, nil
		}
		return "", none, false, nil
	case logical.Temporal:
		indexed, attr := ctx.Schema.IndexDefined(v.Name)
		if !indexed || attr.Kind != sft.KindDate {
			return "", none, false, nil
		}
		switch v.Op {
		case logical.TemporalDuring:
			lo, err := sft.EncodeValue(attr.Kind, v.Range.Start)
			if err != nil {
				return "", none, false, err
			}
			hi, err := sft.EncodeValue(attr.Kind, v.Range.End)
			if err != nil {
				return "", none, false, err
			}
			return attr.Name, ByteRange{Start: attrValuePrefix(attr.Name, lo), End: closedUpper(attr.Name, hi)}, true, nil
		case logical.TemporalAfter:
			value, err := sft.EncodeValue(attr.Kind, v.Range.End)
			if err != nil {
				return "", none, false, err
			}
			return attr.Name, ByteRange{Start: closedUpper(attr.Name, value), End: attrSectionEnd(attr.Name)}, true, nil
		case logical.TemporalBefore:
			value, err := sft.EncodeValue(attr.Kind, v.Range.Start)
			if err != nil {
				return "", none, false, err
			}
			return attr.Name, ByteRange{Start: attrSectionStart(attr.Name, attr.Kind), End: attrValuePrefix(attr.Name, value)}, true, nil
		}
		return "", none, false, nil
	default:
		return "", none, false, nil
	}
}

// compileAttrLike plans the two-phase prefix lookup. The prefix is the
// range floor; incrementing its last byte yields the ceiling.
func compileAttrLike(ctx Context, decision Decision, hints QueryHints) (QueryPlan, error) {
	plan := QueryPlan{Strategy: StrategyAttrLike, Table: ctx.Tables.Record}
	if decision.Query.Empty {
		return plan, nil
	}
	for _, c := range decision.Conjuncts {
		like, ok := c.(logical.PropertyLike)
		if !ok {
			continue
		}
		indexed, attr := ctx.Schema.IndexDefined(like.Name)
		if !indexed || attr.Kind != sft.KindString {
			continue
		}
		prefix, ok := likePrefix(like)
		if !ok {
			return QueryPlan{}, errors.WithMessagef(logical.ErrUnsupportedExpression,
				"pattern %q is not a prefix query", like.Pattern)
		}
		start := attrValuePrefix(attr.Name, []byte(prefix))
		end, bounded := convert.PrefixUpperBound(start)
		if !bounded {
			end = attrSectionEnd(attr.Name)
		}
		plan.IndexScan = &IndexScan{
			Table:  ctx.Tables.AttributeIndex,
			Ranges: []ByteRange{{Start: start, End: end}},
		}
		namer := &stageNamer{}
		// The range is prefix-exact only for case-sensitive patterns, so
		// the pattern itself stays in the fine filter.
		plan.Iterators = append(plan.Iterators, fineFilterStage(
			ctx, namer, residualExcept(decision.Conjuncts, -1), hints, true, nil))
		return plan, nil
	}
	return QueryPlan{}, errors.WithMessage(logical.ErrUnsupportedExpression, "no indexed prefix conjunct")
}
