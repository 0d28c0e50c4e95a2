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
	"github.com/pkg/errors"
)

// Normalize canonicalizes a filter tree: nested conjunctions and
// disjunctions are flattened, double negations collapse, and raw
// comparisons are rewritten into property predicates. Negations of
// composite filters are left untouched.
func Normalize(f Filter) (Filter, error) {
	switch v := f.(type) {
	case And:
		children, err := normalizeChildren(v.Children, isAnd)
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case Or:
		children, err := normalizeChildren(v.Children, isOr)
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	case Not:
		if inner, ok := v.Child.(Not); ok {
			return Normalize(inner.Child)
		}
		child, err := Normalize(v.Child)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case Compare:
		return normalizeCompare(v)
	case nil:
		return nil, errors.WithMessage(ErrUnsupportedExpression, "nil filter")
	default:
		return f, nil
	}
}

func isAnd(f Filter) ([]Filter, bool) {
	v, ok := f.(And)
	if !ok {
		return nil, false
	}
	return v.Children, true
}

func isOr(f Filter) ([]Filter, bool) {
	v, ok := f.(Or)
	if !ok {
		return nil, false
	}
	return v.Children, true
}

func normalizeChildren(children []Filter, same func(Filter) ([]Filter, bool)) ([]Filter, error) {
	out := make([]Filter, 0, len(children))
	for _, c := range children {
		n, err := Normalize(c)
		if err != nil {
			return nil, err
		}
		if nested, ok := same(n); ok {
			out = append(out, nested...)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// normalizeCompare pairs a property with a literal. Literal-on-literal
// and property-on-property comparisons are opaque and pass through
// unchanged; any other operand shape cannot be planned.
func normalizeCompare(c Compare) (Filter, error) {
	lp, leftProp := c.Left.(Property)
	rp, rightProp := c.Right.(Property)
	ll, leftLit := c.Left.(Literal)
	rl, rightLit := c.Right.(Literal)

	switch {
	case leftProp && rightLit:
		if c.Op == OpEq {
			return PropertyEq{Name: lp.Name, Literal: rl.Value}, nil
		}
		return PropertyCompare{Name: lp.Name, Literal: rl.Value, Op: c.Op}, nil
	case leftLit && rightProp:
		if c.Op == OpEq {
			return PropertyEq{Name: rp.Name, Literal: ll.Value}, nil
		}
		return PropertyCompare{Name: rp.Name, Literal: ll.Value, Op: c.Op.Reflect(), Flipped: true}, nil
	case leftLit && rightLit, leftProp && rightProp:
		return c, nil
	default:
		return nil, errors.WithMessagef(ErrUnsupportedExpression, "comparison operands %T %s %T", c.Left, c.Op, c.Right)
	}
}

// Conjuncts splits a top-level conjunction into its children. Any other
// filter is its own single conjunct.
func Conjuncts(f Filter) []Filter {
	if and, ok := f.(And); ok {
		return and.Children
	}
	return []Filter{f}
}
